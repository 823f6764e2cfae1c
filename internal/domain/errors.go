package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrConfiguration means the upstream credential is not configured.
	// It is returned before any network call is attempted.
	ErrConfiguration = errors.New("TM_API_KEY not configured")

	// ErrUpstreamUnavailable is returned while the upstream circuit is open.
	ErrUpstreamUnavailable = errors.New("ticketmaster: temporarily unavailable")

	// ErrRateLimited means the local outbound request budget could not be
	// met before the caller's deadline. No upstream call was made.
	ErrRateLimited = errors.New("outbound request budget exhausted")
)

// UpstreamError reports a failed round trip to the events API. Status is 0
// for transport failures (DNS, connection reset, timeout).
type UpstreamError struct {
	Status     int
	Message    string
	RetryAfter time.Duration
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.Status == 0 {
		return e.Message
	}
	return fmt.Sprintf("remote %d: %s", e.Status, e.Message)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// Temporary reports whether the failure should count against upstream health.
func (e *UpstreamError) Temporary() bool {
	return e.Status == 0 || e.Status == 429 || e.Status >= 500
}
