package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcanalab/tarot-api/internal/domain"
	"github.com/arcanalab/tarot-api/internal/interpretation"
	"github.com/arcanalab/tarot-api/internal/store"
	"github.com/arcanalab/tarot-api/internal/task"
)

// mockReadingStore is a scriptable in-memory store.ReadingStore.
type mockReadingStore struct {
	readings map[uuid.UUID]*domain.ReadingTask

	createErr     error
	statusWrites  []domain.ReadingStatus
	softDeleteErr error
	deletedAll    int64
	listPage      *store.ReadingPage
}

var _ store.ReadingStore = (*mockReadingStore)(nil)

func newMockReadingStore() *mockReadingStore {
	return &mockReadingStore{readings: map[uuid.UUID]*domain.ReadingTask{}}
}

func (m *mockReadingStore) Create(ctx context.Context, reading *domain.ReadingTask) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.readings[reading.ID] = reading
	return nil
}

func (m *mockReadingStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReadingTask, error) {
	reading, ok := m.readings[id]
	if !ok {
		return nil, store.ErrReadingNotFound
	}
	return reading, nil
}

func (m *mockReadingStore) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ReadingStatus, result string) error {
	m.statusWrites = append(m.statusWrites, status)
	if reading, ok := m.readings[id]; ok {
		reading.Status = status
		reading.Result = result
	}
	return nil
}

func (m *mockReadingStore) ListByOwner(ctx context.Context, ownerID string, page, pageSize int) (*store.ReadingPage, error) {
	if m.listPage != nil {
		return m.listPage, nil
	}
	return &store.ReadingPage{Page: page, PageSize: pageSize}, nil
}

func (m *mockReadingStore) SoftDelete(ctx context.Context, id uuid.UUID, ownerID string) error {
	return m.softDeleteErr
}

func (m *mockReadingStore) SoftDeleteAll(ctx context.Context, ownerID string) (int64, error) {
	return m.deletedAll, nil
}

// mockUserStore records EnsureExists calls.
type mockUserStore struct {
	ensured   []string
	ensureErr error
}

var _ store.UserStore = (*mockUserStore)(nil)

func (m *mockUserStore) EnsureExists(ctx context.Context, openID string) error {
	if m.ensureErr != nil {
		return m.ensureErr
	}
	m.ensured = append(m.ensured, openID)
	return nil
}

func (m *mockUserStore) GetByOpenID(ctx context.Context, openID string) (*domain.User, error) {
	return nil, store.ErrUserNotFound
}

// mockSubmitter captures submitted tasks.
type mockSubmitter struct {
	submitted []task.Task
	submitErr error
}

var _ task.Submitter = (*mockSubmitter)(nil)

func (m *mockSubmitter) Submit(ctx context.Context, t task.Task) error {
	if m.submitErr != nil {
		return m.submitErr
	}
	m.submitted = append(m.submitted, t)
	return nil
}

// stubInterpreter satisfies the interface; the service never calls it
// directly.
type stubInterpreter struct{}

func (stubInterpreter) Interpret(ctx context.Context, req interpretation.Request) (*interpretation.Outcome, error) {
	return &interpretation.Outcome{Conforming: true}, nil
}

func newTestService(t *testing.T, readings *mockReadingStore, users *mockUserStore, tasks *mockSubmitter) *ReadingService {
	t.Helper()
	svc, err := NewReadingService(readings, users, stubInterpreter{}, tasks, nil)
	require.NoError(t, err)
	return svc
}

func testCards() domain.CardDraw {
	return domain.CardDraw{
		{Name: "The Star", Orientation: domain.OrientationUpright},
		{Name: "The Moon", Orientation: domain.OrientationReversed},
		{Name: "The Sun", Orientation: domain.OrientationUpright},
	}
}

func TestSubmitReading(t *testing.T) {
	t.Parallel()

	readings := newMockReadingStore()
	users := &mockUserStore{}
	tasks := &mockSubmitter{}
	svc := newTestService(t, readings, users, tasks)

	reading, err := svc.SubmitReading(context.Background(),
		"openid-1", "What should I focus on?", testCards(), "three-card",
		[]string{"past", "present", "future"})
	require.NoError(t, err)

	assert.Equal(t, domain.ReadingStatusPending, reading.Status)
	assert.Equal(t, []string{"openid-1"}, users.ensured)
	assert.Contains(t, readings.readings, reading.ID)

	require.Len(t, tasks.submitted, 1)
	assert.Equal(t, reading.ID, tasks.submitted[0].ID())
	assert.Equal(t, task.TaskTypeReadingInterpretation, tasks.submitted[0].Type())
}

func TestSubmitReadingValidation(t *testing.T) {
	t.Parallel()

	readings := newMockReadingStore()
	users := &mockUserStore{}
	tasks := &mockSubmitter{}
	svc := newTestService(t, readings, users, tasks)

	_, err := svc.SubmitReading(context.Background(),
		"openid-1", "", testCards(), "three-card", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyQuestion)

	_, err = svc.SubmitReading(context.Background(),
		"", "A question", testCards(), "three-card", nil)
	assert.ErrorIs(t, err, domain.ErrEmptyReadingOwner)

	// Nothing persisted, nothing enqueued.
	assert.Empty(t, readings.readings)
	assert.Empty(t, tasks.submitted)
}

func TestSubmitReadingQueueFull(t *testing.T) {
	t.Parallel()

	readings := newMockReadingStore()
	users := &mockUserStore{}
	tasks := &mockSubmitter{submitErr: task.ErrQueueFull}
	svc := newTestService(t, readings, users, tasks)

	_, err := svc.SubmitReading(context.Background(),
		"openid-1", "Will it rain?", testCards(), "three-card", nil)
	assert.ErrorIs(t, err, ErrProcessingUnavailable)

	// The persisted row must not be left pending.
	require.Len(t, readings.statusWrites, 1)
	assert.Equal(t, domain.ReadingStatusFailed, readings.statusWrites[0])
}

func TestGetReadingOwnership(t *testing.T) {
	t.Parallel()

	readings := newMockReadingStore()
	svc := newTestService(t, readings, &mockUserStore{}, &mockSubmitter{})

	reading, err := domain.NewReadingTask("openid-1", "q", testCards(), "three-card", nil)
	require.NoError(t, err)
	readings.readings[reading.ID] = reading

	got, err := svc.GetReading(context.Background(), reading.ID, "openid-1")
	require.NoError(t, err)
	assert.Equal(t, reading.ID, got.ID)

	_, err = svc.GetReading(context.Background(), reading.ID, "openid-2")
	assert.ErrorIs(t, err, store.ErrForbidden)

	// Absent identity skips the ownership check.
	_, err = svc.GetReading(context.Background(), reading.ID, "")
	assert.NoError(t, err)

	_, err = svc.GetReading(context.Background(), uuid.New(), "openid-1")
	assert.ErrorIs(t, err, store.ErrReadingNotFound)
}

func TestGetReadingSoftDeletedStillPollable(t *testing.T) {
	t.Parallel()

	readings := newMockReadingStore()
	svc := newTestService(t, readings, &mockUserStore{}, &mockSubmitter{})

	reading, err := domain.NewReadingTask("openid-1", "q", testCards(), "three-card", nil)
	require.NoError(t, err)
	reading.IsDeleted = true
	readings.readings[reading.ID] = reading

	got, err := svc.GetReading(context.Background(), reading.ID, "openid-1")
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
}

func TestListReadingsNormalizesPagination(t *testing.T) {
	t.Parallel()

	readings := newMockReadingStore()
	svc := newTestService(t, readings, &mockUserStore{}, &mockSubmitter{})

	page, err := svc.ListReadings(context.Background(), "openid-1", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, defaultPage, page.Page)
	assert.Equal(t, defaultPageSize, page.PageSize)

	page, err = svc.ListReadings(context.Background(), "openid-1", 2, 10_000)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, maxPageSize, page.PageSize)
}

func TestDeleteAllReadings(t *testing.T) {
	t.Parallel()

	readings := newMockReadingStore()
	readings.deletedAll = 7
	svc := newTestService(t, readings, &mockUserStore{}, &mockSubmitter{})

	count, err := svc.DeleteAllReadings(context.Background(), "openid-1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)
}
