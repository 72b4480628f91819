// Package tidal provides a typed client for the Tidal v2 REST API.
//
// The client maps method calls onto HTTPS requests against the JSON:API
// surface at openapi.tidal.com and translates failures into a small error
// taxonomy: *AuthError for rejected credentials, *RateLimitError for 429s
// with the server's retry hint, *ConnectionError for transport failures,
// and *APIError for every other non-2xx response. The client never retries;
// retry policy belongs to the caller.
package tidal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"
)

const (
	baseURL     = "https://openapi.tidal.com/v2"
	contentType = "application/vnd.api+json"

	requestTimeout = 15 * time.Second

	// maxErrorBody caps how much of a failed response is kept for diagnostics.
	maxErrorBody = 512
)

// Config carries what the client needs to reach the API on a user's behalf.
type Config struct {
	// UserID is the Tidal account the collection endpoints operate on.
	UserID string

	// CountryCode is attached to every request as the countryCode parameter.
	CountryCode string

	// TokenSource supplies bearer tokens, refreshing them as needed. A nil
	// source sends unauthenticated requests, which only suits tests.
	TokenSource oauth2.TokenSource
}

// Client is a Tidal API client scoped to one user account.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	userID      string
	countryCode string
}

// NewClient creates a Tidal API client from the provided configuration.
func NewClient(cfg Config) *Client {
	var transport http.RoundTripper = http.DefaultTransport
	if cfg.TokenSource != nil {
		transport = &oauth2.Transport{Source: cfg.TokenSource, Base: transport}
	}

	return &Client{
		httpClient: &http.Client{
			Timeout:   requestTimeout,
			Transport: otelhttp.NewTransport(transport),
		},
		baseURL:     baseURL,
		userID:      cfg.UserID,
		countryCode: cfg.CountryCode,
	}
}

// UserID returns the account the client is scoped to.
func (c *Client) UserID() string {
	return c.userID
}

// CurrentUser fetches the account behind the client's credentials.
func (c *Client) CurrentUser(ctx context.Context) (*Resource, error) {
	doc, err := c.do(ctx, http.MethodGet, "users/me", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("fetching current user: %w", err)
	}
	user := doc.Data.First()
	if user == nil {
		return nil, fmt.Errorf("fetching current user: empty response")
	}
	return user, nil
}

// do performs one request and decodes the JSON:API response document.
// Endpoints are joined to the base URL; the countryCode parameter is added
// unless the caller already set one.
func (c *Client) do(ctx context.Context, method, endpoint string, params url.Values, payload any) (*Document, error) {
	if params == nil {
		params = url.Values{}
	}
	if params.Get("countryCode") == "" {
		params.Set("countryCode", c.countryCode)
	}

	reqURL := c.baseURL + "/" + strings.TrimPrefix(endpoint, "/") + "?" + params.Encode()

	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}

	if err := responseError(resp, data); err != nil {
		return nil, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return &Document{}, nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing response body: %w", err)
	}
	return &doc, nil
}

// responseError maps a non-2xx response onto the client's error taxonomy.
func responseError(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{StatusCode: resp.StatusCode, Message: errorExcerpt(body)}
	case http.StatusTooManyRequests:
		return &RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		return &APIError{StatusCode: resp.StatusCode, Body: errorExcerpt(body)}
	}
}

// errorExcerpt trims a response body down to a log-friendly fragment.
func errorExcerpt(body []byte) string {
	excerpt := strings.TrimSpace(string(body))
	if len(excerpt) > maxErrorBody {
		excerpt = excerpt[:maxErrorBody]
	}
	return excerpt
}

// requireID rejects blank identifiers before any request is sent.
func requireID(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%w: %s is required", ErrInvalidInput, name)
	}
	return nil
}

// requireIDs rejects empty id lists and blank entries within them.
func requireIDs(name string, values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("%w: %s must not be empty", ErrInvalidInput, name)
	}
	for _, v := range values {
		if err := requireID(name, v); err != nil {
			return err
		}
	}
	return nil
}
