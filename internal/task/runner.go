package task

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/arcanalab/tarot-api/internal/config"
)

// Queue submission errors.
var (
	// ErrQueueFull is returned by Submit when the bounded queue has no room.
	// Callers decide what to do with the already-persisted work item.
	ErrQueueFull = errors.New("task queue is full")

	// ErrRunnerStopped is returned by Submit after Stop has been called.
	ErrRunnerStopped = errors.New("task runner is stopped")
)

// TaskRunner manages background task processing: a bounded channel fed by
// Submit and drained by a fixed pool of worker goroutines. Task state lives
// with the task itself (see ReadingInterpretationTask); the runner only
// moves work and recovers worker faults.
type TaskRunner struct {
	taskQueue chan Task
	workers   int
	logger    *slog.Logger

	mu      sync.Mutex
	stopped bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

var _ Submitter = (*TaskRunner)(nil)

// NewTaskRunner creates a runner sized from configuration. Start must be
// called before submitted tasks are processed.
func NewTaskRunner(cfg config.TaskConfig, log *slog.Logger) *TaskRunner {
	if log == nil {
		log = slog.Default()
	}

	workers := cfg.WorkerCount
	if workers < 1 {
		workers = 1
	}
	queueSize := cfg.QueueSize
	if queueSize < 1 {
		queueSize = 1
	}

	return &TaskRunner{
		taskQueue: make(chan Task, queueSize),
		workers:   workers,
		logger:    log.With(slog.String("component", "task_runner")),
	}
}

// Start launches the worker pool. It returns immediately.
func (r *TaskRunner) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(runCtx, i)
	}

	r.logger.Info("task runner started",
		slog.Int("workers", r.workers),
		slog.Int("queue_size", cap(r.taskQueue)))
}

// Submit enqueues a task without blocking. A full queue is a visible error,
// never a silent drop or an unbounded wait on the request path.
func (r *TaskRunner) Submit(ctx context.Context, t Task) error {
	// The lock covers the send so Stop cannot close the queue between the
	// stopped check and the enqueue. The send is non-blocking, so holding
	// the lock here is cheap.
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return ErrRunnerStopped
	}

	select {
	case r.taskQueue <- t:
		r.logger.Debug("task enqueued",
			slog.String("task_id", t.ID().String()),
			slog.String("task_type", t.Type()),
			slog.Int("queue_length", len(r.taskQueue)))
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop drains the queue and waits for in-flight tasks to finish, up to the
// given timeout. After the timeout the worker context is cancelled and
// running tasks are expected to wind down via their contexts.
func (r *TaskRunner) Stop(timeout time.Duration) {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	r.mu.Unlock()

	close(r.taskQueue)

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("task runner stopped, queue drained")
	case <-time.After(timeout):
		r.logger.Warn("task runner stop timed out, cancelling in-flight tasks")
		if r.cancel != nil {
			r.cancel()
		}
		<-done
	}
}

// worker consumes tasks until the queue is closed and empty, or the run
// context is cancelled.
func (r *TaskRunner) worker(ctx context.Context, id int) {
	defer r.wg.Done()

	log := r.logger.With(slog.Int("worker_id", id))
	log.Debug("worker started")

	for {
		select {
		case <-ctx.Done():
			log.Debug("worker stopping, context cancelled")
			return
		case t, ok := <-r.taskQueue:
			if !ok {
				log.Debug("worker stopping, queue closed")
				return
			}
			r.runTask(ctx, t, log)
		}
	}
}

// runTask executes a single task with panic isolation so one bad task
// cannot take down the worker pool.
func (r *TaskRunner) runTask(ctx context.Context, t Task, log *slog.Logger) {
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("task panicked",
				slog.String("task_id", t.ID().String()),
				slog.String("task_type", t.Type()),
				slog.Any("panic", rec))
		}
	}()

	start := time.Now()
	log.Debug("task started",
		slog.String("task_id", t.ID().String()),
		slog.String("task_type", t.Type()))

	if err := t.Execute(ctx); err != nil {
		log.Error("task finished with error",
			slog.String("task_id", t.ID().String()),
			slog.String("task_type", t.Type()),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return
	}

	log.Info("task finished",
		slog.String("task_id", t.ID().String()),
		slog.String("task_type", t.Type()),
		slog.Duration("elapsed", time.Since(start)))
}
