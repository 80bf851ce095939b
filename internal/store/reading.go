package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/arcanalab/tarot-api/internal/domain"
)

// ReadingPage is one page of an owner's reading history together with the
// total number of non-deleted readings the owner has.
type ReadingPage struct {
	Readings []*domain.ReadingTask
	Total    int
	Page     int
	PageSize int
}

// ReadingStore defines the persistence contract for reading tasks.
type ReadingStore interface {
	// Create persists a new pending reading. The id is assigned by the
	// caller (via domain.NewReadingTask) before the write; on error the
	// caller must not assume the record exists.
	Create(ctx context.Context, reading *domain.ReadingTask) error

	// GetByID returns a reading by id regardless of its soft-delete flag.
	// Returns ErrReadingNotFound if no such reading exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ReadingTask, error)

	// UpdateStatus moves a reading to the given status, storing result as
	// the terminal payload (structured JSON when completed, failure message
	// when failed). The forward-only rule is enforced at the storage layer:
	// a write that would leave a terminal state affects no rows and returns
	// ErrInvalidTransition. Returns ErrReadingNotFound for unknown ids.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReadingStatus, result string) error

	// ListByOwner returns the owner's non-deleted readings ordered by
	// creation time descending, paginated, with the total count.
	ListByOwner(ctx context.Context, ownerID string, page, pageSize int) (*ReadingPage, error)

	// SoftDelete flips the visibility flag of a single reading.
	// Returns ErrForbidden when ownerID does not match the reading's owner,
	// ErrAlreadyDeleted when the flag is already set, and
	// ErrReadingNotFound when the reading does not exist.
	SoftDelete(ctx context.Context, id uuid.UUID, ownerID string) error

	// SoftDeleteAll flips the visibility flag on every non-deleted reading
	// owned by ownerID and returns the number affected. The operation is
	// atomic as a whole.
	SoftDeleteAll(ctx context.Context, ownerID string) (int64, error)
}
