package task

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/arcanalab/tarot-api/internal/domain"
	"github.com/arcanalab/tarot-api/internal/interpretation"
	"github.com/arcanalab/tarot-api/internal/store"
)

// statusWrite records one UpdateStatus call.
type statusWrite struct {
	id     uuid.UUID
	status domain.ReadingStatus
	result string
}

// mockReadingStore records status writes and returns scripted errors.
type mockReadingStore struct {
	mu           sync.Mutex
	writes       []statusWrite
	updateErrs   map[domain.ReadingStatus]error
	panicOnWrite bool
}

var _ store.ReadingStore = (*mockReadingStore)(nil)

func newMockReadingStore() *mockReadingStore {
	return &mockReadingStore{updateErrs: map[domain.ReadingStatus]error{}}
}

func (m *mockReadingStore) Create(ctx context.Context, reading *domain.ReadingTask) error {
	return nil
}

func (m *mockReadingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReadingTask, error) {
	return nil, store.ErrReadingNotFound
}

func (m *mockReadingStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReadingStatus, result string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.panicOnWrite && status == domain.ReadingStatusProcessing {
		panic("store exploded")
	}
	m.writes = append(m.writes, statusWrite{id: id, status: status, result: result})
	return m.updateErrs[status]
}

func (m *mockReadingStore) ListByOwner(ctx context.Context, ownerID string, page, pageSize int) (*store.ReadingPage, error) {
	return &store.ReadingPage{}, nil
}

func (m *mockReadingStore) SoftDelete(ctx context.Context, id uuid.UUID, ownerID string) error {
	return nil
}

func (m *mockReadingStore) SoftDeleteAll(ctx context.Context, ownerID string) (int64, error) {
	return 0, nil
}

func (m *mockReadingStore) statusWrites() []statusWrite {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]statusWrite, len(m.writes))
	copy(out, m.writes)
	return out
}

// mockInterpreter returns a scripted outcome or error.
type mockInterpreter struct {
	outcome *interpretation.Outcome
	err     error
	doPanic bool

	mu       sync.Mutex
	requests []interpretation.Request
}

var _ interpretation.Interpreter = (*mockInterpreter)(nil)

func (m *mockInterpreter) Interpret(ctx context.Context, req interpretation.Request) (*interpretation.Outcome, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	if m.doPanic {
		panic("interpreter exploded")
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.outcome, nil
}

// mockTask is a minimal Task for runner tests.
type mockTask struct {
	id      uuid.UUID
	execute func(ctx context.Context) error
}

func newMockTask(execute func(ctx context.Context) error) *mockTask {
	return &mockTask{id: uuid.New(), execute: execute}
}

func (t *mockTask) ID() uuid.UUID  { return t.id }
func (t *mockTask) Type() string   { return "mock_task" }
func (t *mockTask) Payload() []byte { return nil }

func (t *mockTask) Execute(ctx context.Context) error {
	if t.execute != nil {
		return t.execute(ctx)
	}
	return nil
}
