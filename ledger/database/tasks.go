package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mmomarket/marketd/ledger/config"
)

var ErrTaskQueueClosed = errors.New("task queue closed")

type task struct {
	name       string
	fn         func(ctx context.Context) error
	onComplete func(error)
	timeout    time.Duration
}

// TaskQueue runs database work on a single writer goroutine, in submission
// order, off the caller's path.
type TaskQueue struct {
	ch      chan task
	mu      sync.RWMutex
	closed  bool
	worker  sync.WaitGroup
	once    sync.Once
	timeout time.Duration

	// pending counts submitted tasks that have not finished yet.
	pendingMu sync.Mutex
	idle      *sync.Cond
	pending   int
}

func NewTaskQueue(size int) *TaskQueue {
	if size <= 0 {
		size = config.TaskQueueSize
	}
	q := &TaskQueue{
		ch:      make(chan task, size),
		timeout: config.DefaultQueryTimeout,
	}
	q.idle = sync.NewCond(&q.pendingMu)
	q.worker.Add(1)
	go func() {
		defer q.worker.Done()
		q.loop()
	}()
	return q
}

// Submit queues fn. It blocks only while the queue is full.
func (q *TaskQueue) Submit(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	return q.SubmitWithCallback(ctx, name, fn, nil, 0)
}

// SubmitWithCallback queues fn and calls onComplete with its result on the
// worker goroutine. A zero timeout uses the queue default. Tasks must not
// submit to their own queue.
func (q *TaskQueue) SubmitWithCallback(ctx context.Context, name string, fn func(ctx context.Context) error, onComplete func(error), timeout time.Duration) error {
	if timeout <= 0 {
		timeout = q.timeout
	}

	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrTaskQueueClosed
	}

	q.addPending(1)
	select {
	case q.ch <- task{name: name, fn: fn, onComplete: onComplete, timeout: timeout}:
		return nil
	case <-ctx.Done():
		q.addPending(-1)
		return fmt.Errorf("failed to submit task %s: %w", name, ctx.Err())
	}
}

// Flush waits until every task submitted so far has finished.
func (q *TaskQueue) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		q.pendingMu.Lock()
		for q.pending > 0 {
			q.idle.Wait()
		}
		q.pendingMu.Unlock()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting tasks, drains what is queued and stops the worker.
func (q *TaskQueue) Close() {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		close(q.ch)
		q.mu.Unlock()
		q.worker.Wait()
	})
}

func (q *TaskQueue) addPending(n int) {
	q.pendingMu.Lock()
	q.pending += n
	if q.pending == 0 {
		q.idle.Broadcast()
	}
	q.pendingMu.Unlock()
}

func (q *TaskQueue) loop() {
	for t := range q.ch {
		q.run(t)
	}
}

func (q *TaskQueue) run(t task) {
	defer q.addPending(-1)

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	start := time.Now()
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("task %s panicked: %v", t.name, r)
			}
		}()
		return t.fn(ctx)
	}()

	if err != nil {
		slog.Error("Database task failed",
			slog.String("type", "db"),
			slog.String("task", t.name),
			slog.Duration("took", time.Since(start)),
			slog.Any("error", err))
	} else {
		slog.Debug("Database task finished",
			slog.String("type", "db"),
			slog.String("task", t.name),
			slog.Duration("took", time.Since(start)))
	}

	if t.onComplete != nil {
		t.onComplete(err)
	}
}
