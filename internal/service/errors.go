package service

import "errors"

// Service-level errors.
var (
	// ErrProcessingUnavailable is returned when a reading was persisted but
	// could not be handed to the background processor. The reading is marked
	// failed before this error is returned, so the caller may retry with a
	// new submission.
	ErrProcessingUnavailable = errors.New("reading processing is unavailable")
)
