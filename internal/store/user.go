package store

import (
	"context"

	"github.com/arcanalab/tarot-api/internal/domain"
)

// UserStore defines the persistence contract for owner records.
type UserStore interface {
	// EnsureExists upserts the owner row for the given openid: a row is
	// created on first contact, and the last-active timestamp is refreshed
	// on subsequent calls.
	EnsureExists(ctx context.Context, openID string) error

	// GetByOpenID returns the owner record, or ErrUserNotFound.
	GetByOpenID(ctx context.Context, openID string) (*domain.User, error)
}
