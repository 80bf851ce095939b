package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/arcanalab/tarot-api/internal/domain"
	"github.com/arcanalab/tarot-api/internal/interpretation"
	"github.com/arcanalab/tarot-api/internal/platform/logger"
	"github.com/arcanalab/tarot-api/internal/store"
	"github.com/arcanalab/tarot-api/internal/task"
)

// Pagination bounds for reading history.
const (
	defaultPage     = 1
	defaultPageSize = 10
	maxPageSize     = 100
)

// ReadingService coordinates the reading lifecycle: it persists
// submissions, hands them to the background processor, and answers polls
// and history queries with the ownership rules applied.
type ReadingService struct {
	readings    store.ReadingStore
	users       store.UserStore
	interpreter interpretation.Interpreter
	tasks       task.Submitter
	logger      *slog.Logger
}

// NewReadingService creates a ReadingService with the given dependencies.
func NewReadingService(
	readings store.ReadingStore,
	users store.UserStore,
	interpreter interpretation.Interpreter,
	tasks task.Submitter,
	log *slog.Logger,
) (*ReadingService, error) {
	if readings == nil {
		return nil, fmt.Errorf("reading store is required")
	}
	if users == nil {
		return nil, fmt.Errorf("user store is required")
	}
	if interpreter == nil {
		return nil, fmt.Errorf("interpreter is required")
	}
	if tasks == nil {
		return nil, fmt.Errorf("task submitter is required")
	}
	if log == nil {
		log = slog.Default()
	}

	return &ReadingService{
		readings:    readings,
		users:       users,
		interpreter: interpreter,
		tasks:       tasks,
		logger:      log.With(slog.String("component", "reading_service")),
	}, nil
}

// SubmitReading validates and persists a new reading, enqueues its
// interpretation, and returns the pending record immediately. The caller
// polls GetReading for the outcome.
func (s *ReadingService) SubmitReading(
	ctx context.Context,
	ownerID string,
	question string,
	cards domain.CardDraw,
	spread string,
	positions []string,
) (*domain.ReadingTask, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	reading, err := domain.NewReadingTask(ownerID, question, cards, spread, positions)
	if err != nil {
		return nil, err
	}

	if err := s.users.EnsureExists(ctx, ownerID); err != nil {
		log.Error("failed to ensure owner record",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("ensuring owner record: %w", err)
	}

	if err := s.readings.Create(ctx, reading); err != nil {
		log.Error("failed to persist reading",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("persisting reading: %w", err)
	}

	interpretTask, err := task.NewReadingInterpretationTask(reading, s.readings, s.interpreter, s.logger)
	if err != nil {
		return nil, fmt.Errorf("building interpretation task: %w", err)
	}

	if err := s.tasks.Submit(ctx, interpretTask); err != nil {
		// The row exists and must not stay pending forever; mark it failed
		// so pollers get a terminal answer.
		log.Error("failed to enqueue reading, marking it failed",
			slog.String("reading_id", reading.ID.String()),
			slog.String("error", err.Error()))
		if markErr := s.readings.UpdateStatus(ctx, reading.ID, domain.ReadingStatusFailed,
			"the reading could not be scheduled, please try again later"); markErr != nil {
			log.Error("failed to mark unscheduled reading as failed",
				slog.String("reading_id", reading.ID.String()),
				slog.String("error", markErr.Error()))
		}
		return nil, fmt.Errorf("%w: %v", ErrProcessingUnavailable, err)
	}

	log.Info("reading submitted",
		slog.String("reading_id", reading.ID.String()),
		slog.String("spread", reading.Spread),
		slog.Int("cards", len(reading.Cards)))

	return reading, nil
}

// GetReading returns one reading by id. When ownerID is non-empty it must
// match the reading's owner. Soft-deleted readings are still returned so
// an in-flight poll keeps working after a history delete.
func (s *ReadingService) GetReading(ctx context.Context, id uuid.UUID, ownerID string) (*domain.ReadingTask, error) {
	reading, err := s.readings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if ownerID != "" && reading.OwnerID != ownerID {
		return nil, store.ErrForbidden
	}

	return reading, nil
}

// ListReadings returns one page of the owner's visible history, newest
// first. Page and size are normalized to sane bounds.
func (s *ReadingService) ListReadings(ctx context.Context, ownerID string, page, pageSize int) (*store.ReadingPage, error) {
	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	return s.readings.ListByOwner(ctx, ownerID, page, pageSize)
}

// DeleteReading soft-deletes one reading owned by ownerID.
func (s *ReadingService) DeleteReading(ctx context.Context, id uuid.UUID, ownerID string) error {
	return s.readings.SoftDelete(ctx, id, ownerID)
}

// DeleteAllReadings soft-deletes the owner's whole visible history and
// returns how many readings were affected.
func (s *ReadingService) DeleteAllReadings(ctx context.Context, ownerID string) (int64, error) {
	return s.readings.SoftDeleteAll(ctx, ownerID)
}
