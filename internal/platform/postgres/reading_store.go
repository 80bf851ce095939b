package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arcanalab/tarot-api/internal/domain"
	"github.com/arcanalab/tarot-api/internal/platform/logger"
	"github.com/arcanalab/tarot-api/internal/store"
)

// PostgresReadingStore implements store.ReadingStore using PostgreSQL.
type PostgresReadingStore struct {
	db store.DBTX
}

var _ store.ReadingStore = (*PostgresReadingStore)(nil)

// NewPostgresReadingStore creates a new PostgresReadingStore.
func NewPostgresReadingStore(db store.DBTX) *PostgresReadingStore {
	return &PostgresReadingStore{db: db}
}

// Create implements store.ReadingStore.Create.
func (s *PostgresReadingStore) Create(ctx context.Context, reading *domain.ReadingTask) error {
	log := logger.FromContext(ctx)

	if err := reading.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	cards, err := json.Marshal(reading.Cards)
	if err != nil {
		return fmt.Errorf("encoding cards: %w", err)
	}
	positions, err := json.Marshal(reading.Positions)
	if err != nil {
		return fmt.Errorf("encoding positions: %w", err)
	}

	query := `
		INSERT INTO readings (id, owner_id, question, cards, spread, positions,
			status, result, is_deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err = s.db.ExecContext(ctx, query,
		reading.ID,
		reading.OwnerID,
		reading.Question,
		cards,
		reading.Spread,
		positions,
		reading.Status,
		reading.Result,
		reading.IsDeleted,
		reading.CreatedAt,
		reading.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create reading",
			"reading_id", reading.ID,
			"error", err)
		return MapError(err)
	}

	return nil
}

// GetByID implements store.ReadingStore.GetByID. Soft-deleted readings are
// still returned; visibility filtering is a listing concern only.
func (s *PostgresReadingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReadingTask, error) {
	query := `
		SELECT id, owner_id, question, cards, spread, positions,
			status, result, is_deleted, created_at, updated_at
		FROM readings
		WHERE id = $1
	`

	reading, err := scanReading(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrReadingNotFound
		}
		return nil, MapError(err)
	}

	return reading, nil
}

// UpdateStatus implements store.ReadingStore.UpdateStatus. The forward-only
// lifecycle is enforced in the WHERE clause, so a stale or repeated write
// affects no rows instead of clobbering a terminal state.
func (s *PostgresReadingStore) UpdateStatus(
	ctx context.Context,
	id uuid.UUID,
	status domain.ReadingStatus,
	result string,
) error {
	log := logger.FromContext(ctx)

	var query string
	switch status {
	case domain.ReadingStatusProcessing:
		query = `
			UPDATE readings
			SET status = $1, result = $2, updated_at = $3
			WHERE id = $4 AND status = 'pending'
		`
	case domain.ReadingStatusCompleted, domain.ReadingStatusFailed:
		query = `
			UPDATE readings
			SET status = $1, result = $2, updated_at = $3
			WHERE id = $4 AND status IN ('pending', 'processing')
		`
	default:
		return fmt.Errorf("%w: cannot move a reading to %q", store.ErrInvalidTransition, status)
	}

	res, err := s.db.ExecContext(ctx, query, status, result, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update reading status",
			"reading_id", id,
			"status", status,
			"error", err)
		return MapError(err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected > 0 {
		return nil
	}

	// Nothing matched: either the reading does not exist or it is already
	// past the states the write was allowed from.
	var current domain.ReadingStatus
	err = s.db.QueryRowContext(ctx, `SELECT status FROM readings WHERE id = $1`, id).
		Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrReadingNotFound
	}
	if err != nil {
		return MapError(err)
	}

	return fmt.Errorf("%w: reading is %q, cannot move to %q",
		store.ErrInvalidTransition, current, status)
}

// ListByOwner implements store.ReadingStore.ListByOwner.
func (s *PostgresReadingStore) ListByOwner(
	ctx context.Context,
	ownerID string,
	page, pageSize int,
) (*store.ReadingPage, error) {
	log := logger.FromContext(ctx)

	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	var total int
	countQuery := `
		SELECT COUNT(*)
		FROM readings
		WHERE owner_id = $1 AND is_deleted = FALSE
	`
	if err := s.db.QueryRowContext(ctx, countQuery, ownerID).Scan(&total); err != nil {
		return nil, MapError(err)
	}

	listQuery := `
		SELECT id, owner_id, question, cards, spread, positions,
			status, result, is_deleted, created_at, updated_at
		FROM readings
		WHERE owner_id = $1 AND is_deleted = FALSE
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, listQuery, ownerID, pageSize, (page-1)*pageSize)
	if err != nil {
		log.Error("failed to list readings",
			"owner_id", ownerID,
			"error", err)
		return nil, MapError(err)
	}
	defer rows.Close()

	readings := []*domain.ReadingTask{}
	for rows.Next() {
		reading, err := scanReading(rows)
		if err != nil {
			return nil, MapError(err)
		}
		readings = append(readings, reading)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return &store.ReadingPage{
		Readings: readings,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// SoftDelete implements store.ReadingStore.SoftDelete. The read-then-write
// split exists to tell the three failure cases apart; the UPDATE itself
// still guards on owner and flag, so a concurrent delete loses cleanly.
func (s *PostgresReadingStore) SoftDelete(ctx context.Context, id uuid.UUID, ownerID string) error {
	var (
		rowOwner  string
		isDeleted bool
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT owner_id, is_deleted FROM readings WHERE id = $1`, id).
		Scan(&rowOwner, &isDeleted)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrReadingNotFound
	}
	if err != nil {
		return MapError(err)
	}

	if rowOwner != ownerID {
		return store.ErrForbidden
	}
	if isDeleted {
		return store.ErrAlreadyDeleted
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE readings
		SET is_deleted = TRUE, updated_at = $1
		WHERE id = $2 AND owner_id = $3 AND is_deleted = FALSE
	`, time.Now().UTC(), id, ownerID)
	if err != nil {
		return MapError(err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrAlreadyDeleted
	}

	return nil
}

// SoftDeleteAll implements store.ReadingStore.SoftDeleteAll.
func (s *PostgresReadingStore) SoftDeleteAll(ctx context.Context, ownerID string) (int64, error) {
	log := logger.FromContext(ctx)

	res, err := s.db.ExecContext(ctx, `
		UPDATE readings
		SET is_deleted = TRUE, updated_at = $1
		WHERE owner_id = $2 AND is_deleted = FALSE
	`, time.Now().UTC(), ownerID)
	if err != nil {
		log.Error("failed to delete readings",
			"owner_id", ownerID,
			"error", err)
		return 0, MapError(err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for scanReading.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanReading decodes one readings row, including the JSONB cards and
// positions columns.
func scanReading(row rowScanner) (*domain.ReadingTask, error) {
	var (
		reading   domain.ReadingTask
		cards     []byte
		positions []byte
		result    sql.NullString
	)

	err := row.Scan(
		&reading.ID,
		&reading.OwnerID,
		&reading.Question,
		&cards,
		&reading.Spread,
		&positions,
		&reading.Status,
		&result,
		&reading.IsDeleted,
		&reading.CreatedAt,
		&reading.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(cards, &reading.Cards); err != nil {
		return nil, fmt.Errorf("decoding cards for reading %s: %w", reading.ID, err)
	}
	if len(positions) > 0 {
		if err := json.Unmarshal(positions, &reading.Positions); err != nil {
			return nil, fmt.Errorf("decoding positions for reading %s: %w", reading.ID, err)
		}
	}
	reading.Result = result.String

	return &reading, nil
}
