package notion

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Sentinel errors for the conditions callers branch on. Match with
// errors.Is; the concrete *APIError carries status and body detail.
var (
	// ErrNotFound means the block id does not exist (or is not shared
	// with the integration, which the API reports identically).
	ErrNotFound = errors.New("block not found")

	// ErrAccessDenied means the token lacks permission for the block.
	ErrAccessDenied = errors.New("access denied")

	// ErrRateLimited means the API rejected the request for rate
	// limiting. Surfaced to callers only after the retry budget is
	// exhausted.
	ErrRateLimited = errors.New("rate limited")
)

// APIError is an error response from the document API.
type APIError struct {
	Status  int
	Code    string
	Message string

	// RetryAfter is the server-requested backoff for 429 responses,
	// zero when the header was absent.
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error (status %d, code %s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("API error (status %d): %s", e.Status, e.Message)
}

// Is maps HTTP statuses onto the sentinel errors so callers can use
// errors.Is(err, notion.ErrNotFound) without caring about the transport.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrAccessDenied:
		return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
	case ErrRateLimited:
		return e.Status == http.StatusTooManyRequests
	}
	return false
}

// IsRetryable reports whether the error is a rate-limit signal worth
// retrying with backoff. Every other API error indicates a permanent
// condition (bad id, permission, malformed payload) and propagates
// immediately.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
