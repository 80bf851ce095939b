package task

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanalab/tarot-api/internal/domain"
	"github.com/arcanalab/tarot-api/internal/interpretation"
)

func newTestReading(t *testing.T) *domain.ReadingTask {
	t.Helper()
	reading, err := domain.NewReadingTask(
		"openid-123",
		"Will the project ship on time?",
		domain.CardDraw{
			{Name: "The Fool", Orientation: domain.OrientationUpright},
			{Name: "The Tower", Orientation: domain.OrientationReversed},
		},
		"two-card",
		[]string{"present", "obstacle"},
	)
	require.NoError(t, err)
	return reading
}

func TestReadingTaskIdentity(t *testing.T) {
	t.Parallel()

	reading := newTestReading(t)
	task, err := NewReadingInterpretationTask(reading, newMockReadingStore(), &mockInterpreter{}, nil)
	require.NoError(t, err)

	assert.Equal(t, reading.ID, task.ID())
	assert.Equal(t, TaskTypeReadingInterpretation, task.Type())
	assert.Contains(t, string(task.Payload()), reading.ID.String())
}

func TestNewReadingInterpretationTaskValidation(t *testing.T) {
	t.Parallel()

	reading := newTestReading(t)

	_, err := NewReadingInterpretationTask(nil, newMockReadingStore(), &mockInterpreter{}, nil)
	assert.Error(t, err)

	_, err = NewReadingInterpretationTask(reading, nil, &mockInterpreter{}, nil)
	assert.Error(t, err)

	_, err = NewReadingInterpretationTask(reading, newMockReadingStore(), nil, nil)
	assert.Error(t, err)
}

func TestReadingTaskExecuteSuccess(t *testing.T) {
	t.Parallel()

	reading := newTestReading(t)
	readings := newMockReadingStore()
	interp := &mockInterpreter{
		outcome: &interpretation.Outcome{
			Result: domain.ReadingResult{
				ReadingContent: "The Fool opens the path.",
				Analysis:       "A fresh start meets an old fear.",
				Quote:          "Leap, and the net appears.",
				Advice:         "1. Start small.\n2. Tell someone.\n3. Review in a week.",
			},
			Conforming: true,
		},
	}

	task, err := NewReadingInterpretationTask(reading, readings, interp, nil)
	require.NoError(t, err)
	require.NoError(t, task.Execute(context.Background()))

	writes := readings.statusWrites()
	require.Len(t, writes, 2)
	assert.Equal(t, domain.ReadingStatusProcessing, writes[0].status)
	assert.Equal(t, domain.ReadingStatusCompleted, writes[1].status)

	var stored domain.ReadingResult
	require.NoError(t, json.Unmarshal([]byte(writes[1].result), &stored))
	assert.Equal(t, interp.outcome.Result, stored)

	// The interpreter must see the draw exactly as submitted.
	require.Len(t, interp.requests, 1)
	assert.Equal(t, reading.Question, interp.requests[0].Question)
	assert.Equal(t, reading.Cards, interp.requests[0].Cards)
	assert.Equal(t, reading.Positions, interp.requests[0].Positions)
}

func TestReadingTaskExecuteInterpreterError(t *testing.T) {
	t.Parallel()

	reading := newTestReading(t)
	readings := newMockReadingStore()
	interp := &mockInterpreter{err: interpretation.ErrTimeout}

	task, err := NewReadingInterpretationTask(reading, readings, interp, nil)
	require.NoError(t, err)

	execErr := task.Execute(context.Background())
	assert.ErrorIs(t, execErr, interpretation.ErrTimeout)

	writes := readings.statusWrites()
	require.Len(t, writes, 2)
	assert.Equal(t, domain.ReadingStatusFailed, writes[1].status)
	assert.Equal(t, interpretation.ErrTimeout.Error(), writes[1].result)
}

func TestReadingTaskExecuteProcessingMarkFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	reading := newTestReading(t)
	readings := newMockReadingStore()
	readings.updateErrs[domain.ReadingStatusProcessing] = assert.AnError
	interp := &mockInterpreter{
		outcome: &interpretation.Outcome{
			Result:     domain.ReadingResult{ReadingContent: "still fine"},
			Conforming: true,
		},
	}

	task, err := NewReadingInterpretationTask(reading, readings, interp, nil)
	require.NoError(t, err)
	require.NoError(t, task.Execute(context.Background()))

	writes := readings.statusWrites()
	require.Len(t, writes, 2)
	assert.Equal(t, domain.ReadingStatusCompleted, writes[1].status)
}

func TestReadingTaskExecuteRecoversPanic(t *testing.T) {
	t.Parallel()

	reading := newTestReading(t)
	readings := newMockReadingStore()
	interp := &mockInterpreter{doPanic: true}

	task, err := NewReadingInterpretationTask(reading, readings, interp, nil)
	require.NoError(t, err)

	execErr := task.Execute(context.Background())
	require.Error(t, execErr)
	assert.Contains(t, execErr.Error(), "panicked")

	writes := readings.statusWrites()
	require.NotEmpty(t, writes)
	last := writes[len(writes)-1]
	assert.Equal(t, domain.ReadingStatusFailed, last.status)
	assert.Equal(t, genericFailureMessage, last.result)
}
