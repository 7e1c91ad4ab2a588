// Package threadkit runs independent computations on their own goroutines and joins them back.
//
// Fan-out / fan-in
//   - Spawn starts a Task immediately and returns a Handle; the caller never blocks.
//   - Handle.Join blocks until that task terminates. A panic inside the task is surfaced as an
//     error wrapping ErrTaskPanicked; it never crashes the joining goroutine.
//   - A Handle must be joined exactly once. JoinAll and Collector enforce this by keeping all
//     handles in one ordered slice and draining it fully, even after failures.
//   - Join order is the spawn order and is independent of completion order.
//
// Digit sums
// SumDigits splits its input on whitespace, sums the decimal digits of every chunk on a separate
// task and reduces the partial sums. A chunk with a non-digit character fails its own task only;
// the overall call then fails with a *ChunkError naming the chunk, and no partial total is
// reported. SumDigitsChannel computes the same total with the tasks reporting through a broker.
//
// Identifier fan-in
// FanInIDs starts n producers that each send one identifier through a cloned broker sender. The
// receiver drains exactly n messages instead of waiting for the channel to close. Arrival order
// is not deterministic.
//
// Defaults
// Unless overridden, a dynamic pool (no concurrency cap), a no-op zap logger and a no-op metrics
// provider are used. Nothing in this package cancels a running task: contexts passed to
// JoinContext and JoinAll only bound the caller's wait.
package threadkit
