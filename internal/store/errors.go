package store

import (
	"errors"
	"fmt"
)

// Common store errors used across all store implementations.
var (
	// ErrNotFound is returned when a requested entity does not exist in the
	// store. This is a generic version of the entity-specific not found
	// errors (e.g., ErrReadingNotFound, ErrUserNotFound).
	ErrNotFound = errors.New("entity not found")

	// ErrForbidden is returned when the requesting owner does not match the
	// entity's owner. No detail about the entity leaks past this error.
	ErrForbidden = errors.New("operation not permitted for this owner")

	// ErrAlreadyDeleted is returned when a soft delete targets an entity
	// whose visibility flag is already set.
	ErrAlreadyDeleted = errors.New("entity already deleted")

	// ErrDuplicate is returned when an insert conflicts with an existing
	// entity on a unique constraint.
	ErrDuplicate = errors.New("duplicate entity")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. Check the wrapped error for specific validation details.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrInvalidTransition is returned when a status update would violate
	// the forward-only reading lifecycle.
	ErrInvalidTransition = errors.New("status transition not allowed")

	// Entity-specific "not found" errors

	// ErrReadingNotFound indicates that the requested reading does not exist.
	ErrReadingNotFound = fmt.Errorf("%w: reading", ErrNotFound)

	// ErrUserNotFound indicates that the requested user does not exist.
	ErrUserNotFound = fmt.Errorf("%w: user", ErrNotFound)
)

// IsNotFoundError checks if the error is any kind of "not found" error.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}
