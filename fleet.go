package threadkit

import "context"

// RunFleet spawns n value-less tasks, passing each its number (0..n-1), and joins all of them.
// The returned error joins one *ChunkError per failed task; nil means every task succeeded.
func RunFleet(ctx context.Context, n int, fn func(ctx context.Context, id int) error, opts ...Option) error {
	c, err := NewCollector[struct{}](opts...)
	if err != nil {
		return err
	}
	for id := 0; id < n; id++ {
		c.Spawn(ctx, TaskError[struct{}](func(ctx context.Context) error { return fn(ctx, id) }))
	}
	_, err = c.Wait(ctx)
	return err
}
