package providers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

const maxErrorBody = 512

// RateLimitError reports that the backend refused a request because of rate
// limits.
type RateLimitError struct {
	Provider string
	// RetryAfter is the server's hint, if any. It is reported in the error
	// text only; retries follow the caller's fixed backoff schedule.
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := e.Provider + ": rate limited"
	if e.RetryAfter > 0 {
		msg += fmt.Sprintf(" (retry after %s)", e.RetryAfter)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// RateLimited marks the error as a rate-limit signal.
func (e *RateLimitError) RateLimited() bool { return true }

// AuthError reports rejected or missing credentials.
type AuthError struct {
	Provider string
	Message  string
}

func (e *AuthError) Error() string {
	return e.Provider + ": authentication error: " + e.Message
}

// StatusError reports any other non-success response.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// IsAuthError checks if an error is an authentication error.
func IsAuthError(err error) bool {
	var ae *AuthError
	return errors.As(err, &ae)
}

// checkStatus maps a non-200 HTTP response onto the typed errors above.
func checkStatus(provider string, resp *http.Response, body []byte) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	msg := truncate(string(body))
	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return &RateLimitError{
			Provider:   provider,
			RetryAfter: retryAfter(resp.Header),
			Message:    msg,
		}
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Provider: provider, Message: msg}
	default:
		return &StatusError{Provider: provider, StatusCode: resp.StatusCode, Body: msg}
	}
}

func retryAfter(h http.Header) time.Duration {
	v := h.Get("Retry-After")
	if v == "" {
		return 0
	}
	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}

func truncate(s string) string {
	if len(s) <= maxErrorBody {
		return s
	}
	return s[:maxErrorBody] + "..."
}
