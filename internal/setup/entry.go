// Package setup stores the bridge's account entry and runs the interactive
// OAuth flow that creates it.
package setup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	configDirName = "tidalbridge"
	entryFileName = "entry.json"
)

// Entry is the persisted account configuration: the OAuth client
// credentials, the authenticated user, and the current token. It is the
// only state the bridge keeps between runs.
type Entry struct {
	EntryID      uuid.UUID     `json:"entry_id"`
	ClientID     string        `json:"client_id"`
	ClientSecret string        `json:"client_secret"`
	UserID       string        `json:"user_id"`
	CountryCode  string        `json:"country_code"`
	Token        *oauth2.Token `json:"token"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Store handles persistent storage of the config entry.
type Store struct {
	path string
}

// DefaultStore returns a Store using the default location:
// ~/.config/tidalbridge/entry.json
func DefaultStore() (*Store, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("getting user config dir: %w", err)
	}

	path := filepath.Join(configDir, configDirName, entryFileName)
	return &Store{path: path}, nil
}

// NewStore creates a Store with a custom path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file path where the entry is stored.
func (s *Store) Path() string {
	return s.path
}

// Load reads the entry from disk.
// Returns (nil, nil) if the entry file does not exist.
func (s *Store) Load() (*Entry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading entry file: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("parsing entry file: %w", err)
	}

	return &entry, nil
}

// Save writes the entry to disk, creating the parent directory if needed.
// The file carries 0600 permissions since it holds credentials.
func (s *Store) Save(entry *Entry) error {
	if entry == nil {
		return errors.New("cannot save nil entry")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding entry: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("writing entry file: %w", err)
	}

	return nil
}

// Delete removes the entry file.
// Returns nil if the file does not exist.
func (s *Store) Delete() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing entry file: %w", err)
	}
	return nil
}

// TokenSource returns an auto-refreshing token source for the entry that
// persists refreshed tokens back to the store.
func (s *Store) TokenSource(ctx context.Context, entry *Entry) oauth2.TokenSource {
	conf := oauthConfig(entry.ClientID, entry.ClientSecret)
	last := ""
	if entry.Token != nil {
		last = entry.Token.AccessToken
	}
	return &persistingSource{
		store:  s,
		entry:  entry,
		source: conf.TokenSource(ctx, entry.Token),
		last:   last,
	}
}

// persistingSource wraps a token source and saves the entry whenever the
// access token changes, so a refreshed token survives a restart.
type persistingSource struct {
	store  *Store
	entry  *Entry
	source oauth2.TokenSource

	mu   sync.Mutex
	last string
}

func (p *persistingSource) Token() (*oauth2.Token, error) {
	token, err := p.source.Token()
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if token.AccessToken != p.last {
		p.last = token.AccessToken
		p.entry.Token = token
		if err := p.store.Save(p.entry); err != nil {
			// Keep serving the token; the refresh itself succeeded.
			log.Printf("persisting refreshed token: %v", err)
		}
	}

	return token, nil
}
