package notion

import "time"

// RetryConfig bounds the rate-limit retry loop. Every retry path has a
// maximum attempt count and a maximum per-sleep backoff; nothing waits
// unbounded.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts per request,
	// including the first.
	MaxAttempts int

	// BackoffBase is the initial backoff duration.
	BackoffBase time.Duration

	// BackoffMultiplier is applied to the backoff on each retry.
	BackoffMultiplier float64

	// MaxBackoff caps a single backoff sleep, including server-requested
	// Retry-After waits.
	MaxBackoff time.Duration
}

// DefaultRetryConfig returns retry defaults tuned to the API's documented
// rate limit of roughly three requests per second.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       5,
		BackoffBase:       500 * time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxBackoff:        10 * time.Second,
	}
}
