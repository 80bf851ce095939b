package interpretation

import (
	"errors"
	"fmt"
)

// Common errors returned by interpretation clients. Each failure class is
// recorded as the task's failure message; operators can distinguish causes
// in the logs while the end user only sees a uniform failed status.
var (
	// ErrNotConfigured is returned when no API credential is available.
	// The client fails fast without making a network call.
	ErrNotConfigured = errors.New("interpretation service is not configured")

	// ErrTimeout is returned when the outbound call exceeds its deadline.
	ErrTimeout = errors.New("interpretation request timed out")

	// ErrTransport is returned for network or connection failures.
	ErrTransport = errors.New("interpretation request failed in transport")

	// ErrEmptyResponse is returned when the upstream answered 200 but no
	// usable content could be extracted.
	ErrEmptyResponse = errors.New("interpretation service returned no content")

	// ErrResponseParse is returned when the transport-level response
	// envelope is malformed.
	ErrResponseParse = errors.New("interpretation response could not be parsed")
)

// UpstreamStatusError is returned for a non-200 upstream response and
// carries the HTTP status code for operator diagnostics.
type UpstreamStatusError struct {
	StatusCode int
}

// Error implements the error interface for UpstreamStatusError.
func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("interpretation service request failed (HTTP %d)", e.StatusCode)
}
