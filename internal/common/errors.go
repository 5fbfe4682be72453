package common

import "errors"

// Sentinel errors for failure kinds that must reach the caller instead of
// triggering the silent rule-based fallback.
var (
	// ErrInvalidCredential marks a rejected or missing AI credential (HTTP 401).
	ErrInvalidCredential = errors.New("invalid AI credential")

	// ErrRateLimited marks a provider rate-limit response (HTTP 429).
	ErrRateLimited = errors.New("AI rate limit exceeded")
)

// IsCredentialError reports whether err wraps ErrInvalidCredential.
func IsCredentialError(err error) bool {
	return errors.Is(err, ErrInvalidCredential)
}

// IsRateLimitError reports whether err wraps ErrRateLimited.
func IsRateLimitError(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
