package task

import (
	"context"

	"github.com/google/uuid"
)

// Task type constants
const (
	// TaskTypeReadingInterpretation is the task type that interprets one
	// submitted tarot reading.
	TaskTypeReadingInterpretation = "reading_interpretation"
)

// Task represents a unit of background work to be processed.
type Task interface {
	// ID returns the task's unique identifier.
	ID() uuid.UUID

	// Type returns the task type identifier.
	Type() string

	// Payload returns the task data as a byte slice.
	Payload() []byte

	// Execute runs the task logic. Implementations must recover their own
	// faults and convert them to terminal state writes; the returned error
	// exists for logging, not for propagation to any caller.
	Execute(ctx context.Context) error
}

// Submitter is the write-side view of the runner, allowing services to
// enqueue work without access to lifecycle management.
type Submitter interface {
	// Submit adds a task to the queue for processing.
	// Returns an error if the queue is full or closed.
	Submit(ctx context.Context, t Task) error
}
