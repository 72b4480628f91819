package setup

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/tidalbridge/tidalbridge/internal/tidal"
)

const (
	authURL  = "https://login.tidal.com/authorize"
	tokenURL = "https://auth.tidal.com/v1/oauth2/token"

	// redirectURI uses explicit IPv4 loopback; Tidal requires the registered
	// redirect to match exactly.
	redirectURI  = "http://127.0.0.1:8585/callback"
	callbackAddr = "127.0.0.1:8585"

	callbackTimeout    = 2 * time.Minute
	defaultCountryCode = "US"
)

// scopes are requested on every authorization; the bridge reads the
// library and collection, edits playlists, and starts playback.
var scopes = []string{
	"user.read",
	"collection.read",
	"collection.write",
	"playlists.read",
	"playlists.write",
	"playback",
	"search.read",
}

var (
	// ErrMissingCredentials is returned when the client id or secret is empty.
	ErrMissingCredentials = errors.New("missing Tidal client id or client secret")

	// ErrAuthTimeout is returned when the OAuth callback is not received in time.
	ErrAuthTimeout = errors.New("authentication timed out waiting for callback")

	// ErrStateMismatch is returned when the OAuth state parameter doesn't match.
	ErrStateMismatch = errors.New("OAuth state mismatch")
)

func oauthConfig(clientID, clientSecret string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
		},
		RedirectURL: redirectURI,
		Scopes:      scopes,
	}
}

// Flow runs the interactive account configuration: it prompts for client
// credentials, walks the user through the browser authorization, verifies
// the token against the API, and saves the resulting entry.
type Flow struct {
	store *Store
}

// NewFlow creates a Flow persisting into the given store.
func NewFlow(store *Store) *Flow {
	return &Flow{store: store}
}

// FlowOptions control a configuration run.
type FlowOptions struct {
	// Reauth forces a new browser authorization even when an entry exists.
	Reauth bool
	// Country overrides the stored country code.
	Country string
}

// Run executes the flow. With an existing entry and no Reauth it only
// applies a country change; otherwise it runs the full authorization.
func (f *Flow) Run(ctx context.Context, opts FlowOptions) (*Entry, error) {
	existing, err := f.store.Load()
	if err != nil {
		return nil, err
	}

	country := strings.ToUpper(strings.TrimSpace(opts.Country))

	if existing != nil && !opts.Reauth {
		if country == "" || country == existing.CountryCode {
			return existing, nil
		}
		existing.CountryCode = country
		if err := f.store.Save(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	var clientID, clientSecret string
	if existing != nil {
		clientID = existing.ClientID
		clientSecret = existing.ClientSecret
		if country == "" {
			country = existing.CountryCode
		}
	}
	if country == "" {
		country = defaultCountryCode
	}

	if err := huh.NewInput().Title("Tidal client ID").Value(&clientID).Run(); err != nil {
		return nil, fmt.Errorf("reading client id: %w", err)
	}
	if err := huh.NewInput().Title("Tidal client secret").EchoMode(huh.EchoModePassword).Value(&clientSecret).Run(); err != nil {
		return nil, fmt.Errorf("reading client secret: %w", err)
	}
	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)
	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	token, err := f.authorize(ctx, clientID, clientSecret)
	if err != nil {
		return nil, err
	}

	// Verify the token works and resolve which account it belongs to.
	conf := oauthConfig(clientID, clientSecret)
	client := tidal.NewClient(tidal.Config{
		CountryCode: country,
		TokenSource: conf.TokenSource(ctx, token),
	})

	var user *tidal.Resource
	verify := func(ctx context.Context) error {
		var err error
		user, err = client.CurrentUser(ctx)
		return err
	}
	if err := spinner.New().Title("Verifying credentials...").Context(ctx).ActionWithErr(verify).Run(); err != nil {
		return nil, fmt.Errorf("verifying credentials: %w", err)
	}

	entry := newEntry(existing, clientID, clientSecret, country, user.ID, token)
	if err := f.store.Save(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// newEntry builds the entry to persist after authorization. Reauthorizing
// the account an existing entry already tracks keeps that entry's identity
// instead of minting a duplicate.
func newEntry(existing *Entry, clientID, clientSecret, country, userID string, token *oauth2.Token) *Entry {
	entry := &Entry{
		EntryID:      uuid.New(),
		ClientID:     clientID,
		ClientSecret: clientSecret,
		UserID:       userID,
		CountryCode:  country,
		Token:        token,
		CreatedAt:    time.Now().UTC(),
	}
	if existing != nil && existing.UserID == userID {
		entry.EntryID = existing.EntryID
		entry.CreatedAt = existing.CreatedAt
	}
	return entry
}

// authorize performs the authorization code flow with PKCE, receiving the
// callback on a local HTTP server.
func (f *Flow) authorize(ctx context.Context, clientID, clientSecret string) (*oauth2.Token, error) {
	conf := oauthConfig(clientID, clientSecret)

	state, err := generateState()
	if err != nil {
		return nil, fmt.Errorf("generating state: %w", err)
	}
	verifier := oauth2.GenerateVerifier()

	tokenCh := make(chan *oauth2.Token, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		handleCallback(w, r, conf, state, verifier, tokenCh, errCh)
	})

	server := &http.Server{
		Addr:    callbackAddr,
		Handler: mux,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("callback server error: %w", err)
		}
	}()

	fmt.Println("\nTo authenticate, open this URL in your browser:")
	fmt.Println(conf.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)))
	fmt.Println("\nWaiting for authentication...")

	var token *oauth2.Token
	select {
	case token = <-tokenCh:
		// Success
	case err := <-errCh:
		_ = server.Shutdown(ctx)
		return nil, err
	case <-time.After(callbackTimeout):
		_ = server.Shutdown(ctx)
		return nil, ErrAuthTimeout
	case <-ctx.Done():
		_ = server.Shutdown(ctx)
		return nil, ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)

	return token, nil
}

// handleCallback processes the OAuth callback from Tidal.
func handleCallback(w http.ResponseWriter, r *http.Request, conf *oauth2.Config, expectedState, verifier string, tokenCh chan<- *oauth2.Token, errCh chan<- error) {
	if r.URL.Query().Get("state") != expectedState {
		http.Error(w, "State mismatch", http.StatusBadRequest)
		errCh <- ErrStateMismatch
		return
	}

	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		http.Error(w, "Authentication failed: "+errMsg, http.StatusBadRequest)
		errCh <- fmt.Errorf("tidal auth error: %s", errMsg)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		errCh <- errors.New("authorization response missing code")
		return
	}

	token, err := conf.Exchange(r.Context(), code, oauth2.VerifierOption(verifier))
	if err != nil {
		http.Error(w, "Failed to get token", http.StatusInternalServerError)
		errCh <- fmt.Errorf("exchanging code for token: %w", err)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>Authentication Successful</title></head>
<body>
<h1>Authentication Successful!</h1>
<p>You can close this window and return to the terminal.</p>
</body>
</html>`)

	tokenCh <- token
}

// generateState creates a random state string for OAuth.
func generateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
