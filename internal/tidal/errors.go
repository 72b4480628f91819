package tidal

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// ErrInvalidInput is returned when a required identifier or parameter is
// missing or blank. No request is sent in that case.
var ErrInvalidInput = errors.New("invalid input")

// AuthError reports that the API rejected the request credentials (401 or 403).
// The coordinator treats it as fatal until the account is reconfigured.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("authentication rejected (HTTP %d)", e.StatusCode)
	}
	return fmt.Sprintf("authentication rejected (HTTP %d): %s", e.StatusCode, e.Message)
}

// RateLimitError reports a 429 response. RetryAfter carries the server's
// hint when one was sent, zero otherwise.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
	}
	return "rate limited"
}

// ConnectionError reports that the API could not be reached at all.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection failed: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// APIError reports a non-2xx response outside the authentication and rate
// limit cases. Body holds an excerpt of the response for diagnostics.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("API error (HTTP %d)", e.StatusCode)
	}
	return fmt.Sprintf("API error (HTTP %d): %s", e.StatusCode, e.Body)
}

// parseRetryAfter reads a Retry-After header value, accepting both the
// delta-seconds and HTTP-date forms. Unparseable or past values yield zero.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil {
		if secs < 0 {
			return 0
		}
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(value); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}
