package api

import (
	"errors"
	"net/http"

	"github.com/arcanalab/tarot-api/internal/domain"
	"github.com/arcanalab/tarot-api/internal/service"
	"github.com/arcanalab/tarot-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes without
// leaking internal error types or messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, store.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, store.ErrAlreadyDeleted):
		return http.StatusConflict

	case errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrEmptyQuestion),
		errors.Is(err, domain.ErrEmptyCards),
		errors.Is(err, domain.ErrEmptySpread),
		errors.Is(err, domain.ErrEmptyReadingOwner),
		errors.Is(err, domain.ErrInvalidOrientation):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrProcessingUnavailable):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the
// given error.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "an unexpected error occurred"
	}

	switch {
	case errors.Is(err, store.ErrForbidden):
		return "this reading belongs to another user"

	case errors.Is(err, store.ErrReadingNotFound):
		return "reading not found"

	case errors.Is(err, store.ErrUserNotFound):
		return "user not found"

	case errors.Is(err, store.ErrNotFound):
		return "not found"

	case errors.Is(err, store.ErrAlreadyDeleted):
		return "reading already deleted"

	case errors.Is(err, domain.ErrEmptyQuestion):
		return "question is required"

	case errors.Is(err, domain.ErrEmptyCards):
		return "at least one card is required"

	case errors.Is(err, domain.ErrEmptySpread):
		return "spread is required"

	case errors.Is(err, domain.ErrInvalidOrientation):
		return "card orientation must be upright or reversed"

	case errors.Is(err, store.ErrInvalidEntity):
		return "invalid request data"

	case errors.Is(err, service.ErrProcessingUnavailable):
		return "the reading service is busy, please try again later"

	default:
		return "an unexpected error occurred"
	}
}
