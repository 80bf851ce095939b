package task

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/arcanalab/tarot-api/internal/domain"
	"github.com/arcanalab/tarot-api/internal/interpretation"
	"github.com/arcanalab/tarot-api/internal/store"
)

// genericFailureMessage is stored when a fault leaves us without a usable
// error to report. Pollers see the reading as failed rather than stuck.
const genericFailureMessage = "the reading could not be completed, please try again later"

// ReadingInterpretationTask drives one submitted reading from pending to a
// terminal status. It is the only writer of reading status after
// submission: it best-effort marks the row processing, calls the
// interpreter, and records either the structured result or a failure
// message. Any panic is converted to a failed write so no reading is left
// pending forever.
type ReadingInterpretationTask struct {
	readingID   uuid.UUID
	request     interpretation.Request
	readings    store.ReadingStore
	interpreter interpretation.Interpreter
	logger      *slog.Logger
}

var _ Task = (*ReadingInterpretationTask)(nil)

// NewReadingInterpretationTask builds the task for an already-persisted
// reading. The request carries everything the interpreter needs so the task
// never has to re-read the row.
func NewReadingInterpretationTask(
	reading *domain.ReadingTask,
	readings store.ReadingStore,
	interpreter interpretation.Interpreter,
	log *slog.Logger,
) (*ReadingInterpretationTask, error) {
	if reading == nil {
		return nil, fmt.Errorf("reading is required")
	}
	if readings == nil {
		return nil, fmt.Errorf("reading store is required")
	}
	if interpreter == nil {
		return nil, fmt.Errorf("interpreter is required")
	}
	if log == nil {
		log = slog.Default()
	}

	return &ReadingInterpretationTask{
		readingID: reading.ID,
		request: interpretation.Request{
			Question:  reading.Question,
			Cards:     reading.Cards,
			Spread:    reading.Spread,
			Positions: reading.Positions,
		},
		readings:    readings,
		interpreter: interpreter,
		logger:      log.With(slog.String("component", "reading_task")),
	}, nil
}

// ID implements Task. The task shares the reading's identifier.
func (t *ReadingInterpretationTask) ID() uuid.UUID {
	return t.readingID
}

// Type implements Task.
func (t *ReadingInterpretationTask) Type() string {
	return TaskTypeReadingInterpretation
}

// Payload implements Task.
func (t *ReadingInterpretationTask) Payload() []byte {
	data, err := json.Marshal(map[string]string{"reading_id": t.readingID.String()})
	if err != nil {
		return nil
	}
	return data
}

// Execute implements Task.
func (t *ReadingInterpretationTask) Execute(ctx context.Context) (err error) {
	log := t.logger.With(slog.String("reading_id", t.readingID.String()))

	defer func() {
		if rec := recover(); rec != nil {
			t.markFailed(ctx, log, genericFailureMessage)
			err = fmt.Errorf("reading interpretation panicked: %v", rec)
		}
	}()

	// Best effort: losing this write only costs observers the transient
	// processing status, never correctness of the terminal write below.
	if markErr := t.readings.UpdateStatus(ctx, t.readingID, domain.ReadingStatusProcessing, ""); markErr != nil {
		log.Warn("could not mark reading as processing",
			slog.String("error", markErr.Error()))
	}

	outcome, callErr := t.interpreter.Interpret(ctx, t.request)
	if callErr != nil {
		t.markFailed(ctx, log, callErr.Error())
		return fmt.Errorf("interpretation failed: %w", callErr)
	}

	payload, marshalErr := json.Marshal(outcome.Result)
	if marshalErr != nil {
		t.markFailed(ctx, log, genericFailureMessage)
		return fmt.Errorf("serializing reading result: %w", marshalErr)
	}

	if saveErr := t.readings.UpdateStatus(ctx, t.readingID, domain.ReadingStatusCompleted, string(payload)); saveErr != nil {
		log.Error("could not save completed reading",
			slog.String("error", saveErr.Error()))
		return fmt.Errorf("saving completed reading: %w", saveErr)
	}

	if !outcome.Conforming {
		log.Warn("reading completed from non-conforming upstream reply")
	}
	return nil
}

// markFailed records a terminal failure with the given message. It is best
// effort: by this point there is nothing better to do with a second error
// than log it.
func (t *ReadingInterpretationTask) markFailed(ctx context.Context, log *slog.Logger, message string) {
	if err := t.readings.UpdateStatus(ctx, t.readingID, domain.ReadingStatusFailed, message); err != nil {
		log.Error("could not mark reading as failed",
			slog.String("error", err.Error()))
	}
}
