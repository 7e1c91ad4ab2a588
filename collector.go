package threadkit

import (
	"context"
	"errors"
	"sync"
)

// JoinAll joins handles in slice order and returns their results in the same order.
//
// Semantics:
// - Every handle is joined, even after an earlier one failed, so no handle is left un-joined.
// - Join order is independent of completion order; a slow first task only delays the return.
// - If any handle fails, no results are returned. The error is errors.Join of one *ChunkError
//   per failed handle (in join order); ExtractChunkIndex reports the first one.
// - If ctx is done while waiting, the remaining handles are abandoned, not canceled, and each
//   one is reported with ctx.Err(). Abandoned handles can still be joined later.
func JoinAll[R any](ctx context.Context, handles []*Handle[R]) ([]R, error) {
	results := make([]R, 0, len(handles))
	var errs []error
	for _, h := range handles {
		r, err := h.JoinContext(ctx)
		if err != nil {
			errs = append(errs, newChunkError(err, h.ID(), h.Index()))
			continue
		}
		results = append(results, r)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return results, nil
}

// Collector fans tasks out and joins them back in spawn order.
// All tasks spawned through one Collector share its worker pool, logger and instruments.
// Collector is safe for concurrent use; a Collector is reusable after Wait.
type Collector[R any] struct {
	exec *executor

	mu      sync.Mutex
	handles []*Handle[R]
}

// NewCollector creates a Collector configured by opts.
func NewCollector[R any](opts ...Option) (*Collector[R], error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	return &Collector[R]{exec: newExecutor(cfg)}, nil
}

// Spawn starts t immediately and records its handle. The handle's index is its spawn position.
// The returned handle is owned by the Collector: it is joined by Wait and must not be joined directly.
func (c *Collector[R]) Spawn(ctx context.Context, t Task[R]) *Handle[R] {
	c.mu.Lock()
	defer c.mu.Unlock()
	h := spawn(ctx, c.exec, t, len(c.handles))
	c.handles = append(c.handles, h)
	return h
}

// Len returns the number of tasks spawned since the last Wait.
func (c *Collector[R]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.handles)
}

// Wait joins every task spawned since the last Wait, in spawn order. See JoinAll.
func (c *Collector[R]) Wait(ctx context.Context) ([]R, error) {
	c.mu.Lock()
	handles := c.handles
	c.handles = nil
	c.mu.Unlock()
	return JoinAll(ctx, handles)
}
