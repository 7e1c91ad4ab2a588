package threadkit

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// Task is the unit of work executed on its own goroutine.
// It takes a context and returns a result of type R and an error.
// Use TaskFunc / TaskValue / TaskError helpers to adapt common function signatures.
//
// The context is never canceled by this package; tasks always run to completion.
type Task[R any] func(context.Context) (R, error)

// TaskFunc adapts func(ctx) (R, error) to Task[R].
func TaskFunc[R any](fn func(context.Context) (R, error)) Task[R] { return Task[R](fn) }

// TaskValue adapts func(ctx) R to Task[R].
func TaskValue[R any](fn func(context.Context) R) Task[R] {
	return func(ctx context.Context) (R, error) { return fn(ctx), nil }
}

// TaskError adapts func(ctx) error to Task[R].
// The returned Task yields the zero value of R alongside the error.
func TaskError[R any](fn func(context.Context) error) Task[R] {
	return func(ctx context.Context) (R, error) {
		var zero R
		return zero, fn(ctx)
	}
}

// Handle is a join-able reference to a running task.
//
// A handle must be joined exactly once. The first Join (or a JoinContext that observes
// termination) consumes the result; every later call returns ErrAlreadyJoined.
// Handle is safe for concurrent use, but only one caller receives the result.
type Handle[R any] struct {
	id    uuid.UUID
	index int
	done  chan struct{}

	// written by the task goroutine before done is closed
	result R
	err    error

	joined atomic.Bool
}

func newHandle[R any](index int) *Handle[R] {
	return &Handle[R]{id: uuid.New(), index: index, done: make(chan struct{})}
}

// ID returns the correlation identifier assigned at spawn time.
func (h *Handle[R]) ID() uuid.UUID { return h.id }

// Index returns the position the task was spawned at (zero for a standalone Spawn).
func (h *Handle[R]) Index() int { return h.index }

// Done returns a channel closed when the task terminates. Observing it does not join the handle.
func (h *Handle[R]) Done() <-chan struct{} { return h.done }

// Join blocks until the task terminates and returns its result.
// A panic inside the task is returned as an error wrapping ErrTaskPanicked.
func (h *Handle[R]) Join() (R, error) {
	return h.JoinContext(context.Background())
}

// JoinContext is like Join but stops waiting when ctx is done, returning ctx.Err().
// Giving up does not cancel the task and does not consume the handle: it can be joined later.
func (h *Handle[R]) JoinContext(ctx context.Context) (R, error) {
	var zero R
	if h.joined.Load() {
		return zero, ErrAlreadyJoined
	}

	select {
	case <-h.done:
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	if !h.joined.CompareAndSwap(false, true) {
		return zero, ErrAlreadyJoined
	}
	return h.result, h.err
}

// Spawn starts t on a new goroutine and returns its handle without waiting.
// The only possible error is an invalid option.
//
// Options that bound concurrency (WithFixedPool) apply to a single Spawn call only;
// use a Collector to share one bound across many tasks.
func Spawn[R any](ctx context.Context, t Task[R], opts ...Option) (*Handle[R], error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	return spawn(ctx, newExecutor(cfg), t, 0), nil
}

// spawn registers a handle and hands t to the executor.
func spawn[R any](ctx context.Context, e *executor, t Task[R], index int) *Handle[R] {
	h := newHandle[R](index)
	e.started()
	go func() {
		defer close(h.done)
		h.result, h.err = execute(ctx, e, h, t)
	}()
	return h
}
