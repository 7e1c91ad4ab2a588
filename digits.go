package threadkit

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ygrebnov/threadkit/broker"
)

// Chunk is one whitespace-separated segment of the input together with its position.
type Chunk struct {
	Index int
	Data  string
}

// Split partitions data on whitespace into chunks. Empty segments are skipped.
func Split(data string) []Chunk {
	fields := strings.Fields(data)
	chunks := make([]Chunk, len(fields))
	for i, f := range fields {
		chunks[i] = Chunk{Index: i, Data: f}
	}
	return chunks
}

// DigitSum returns the sum of the base-10 digits of s. The empty string sums to zero.
// The first rune that is not an ASCII decimal digit fails the whole call.
func DigitSum(s string) (uint64, error) {
	var sum uint64
	for pos, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%w: %q at position %d", ErrInvalidDigit, r, pos)
		}
		sum += uint64(r - '0')
	}
	return sum, nil
}

// digitSumTask sums one chunk and emits a progress notification on success.
func digitSumTask(e *executor, c Chunk) Task[uint64] {
	return func(ctx context.Context) (uint64, error) {
		sum, err := DigitSum(c.Data)
		if err != nil {
			return 0, err
		}
		e.notify(ctx, Progress{Index: c.Index, Sum: sum})
		return sum, nil
	}
}

// PartialSums spawns one task per chunk of data and returns the per-chunk digit sums
// in chunk order. A failing chunk does not stop its siblings, but fails the whole call.
func PartialSums(ctx context.Context, data string, opts ...Option) ([]uint64, error) {
	c, err := NewCollector[uint64](opts...)
	if err != nil {
		return nil, err
	}
	for _, chunk := range Split(data) {
		c.Spawn(ctx, digitSumTask(c.exec, chunk))
	}
	return c.Wait(ctx)
}

// SumDigits splits data on whitespace, sums every chunk's digits on its own goroutine,
// joins the tasks in spawn order and reduces the partial sums to a total.
//
// If any chunk fails, SumDigits returns 0 and an error matching ErrAggregation;
// ExtractChunkIndex reports which chunk failed. Partial totals are never returned.
func SumDigits(ctx context.Context, data string, opts ...Option) (uint64, error) {
	partials, err := PartialSums(ctx, data, opts...)
	if err != nil {
		return 0, err
	}
	var total uint64
	for _, p := range partials {
		total += p
	}
	return total, nil
}

// Partial is the message a digit-sum task sends in SumDigitsChannel.
type Partial struct {
	Index int
	Sum   uint64
	Err   error
}

// SumDigitsChannel computes the same total as SumDigits, but the tasks report their partial
// sums through a broker channel instead of through their handles. The receiver drains exactly
// one message per chunk; arrival order is unspecified and does not affect the total.
//
// A failing chunk sends its Partial with Err set and also fails its task, so failures are
// counted and logged exactly as in SumDigits. When several chunks fail, the one with the
// lowest index is reported.
func SumDigitsChannel(ctx context.Context, data string, opts ...Option) (uint64, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return 0, err
	}
	e := newExecutor(cfg)
	chunks := Split(data)

	tx, rx := broker.New[Partial]()
	defer rx.Close()

	handles := make([]*Handle[struct{}], 0, len(chunks))
	for _, chunk := range chunks {
		producer := tx.Clone()
		sum := digitSumTask(e, chunk)
		handles = append(handles, spawn(ctx, e, TaskError[struct{}](func(ctx context.Context) error {
			defer producer.Close()
			s, err := sum(ctx)
			return errors.Join(err, producer.Send(Partial{Index: chunk.Index, Sum: s, Err: err}))
		}), chunk.Index))
	}
	tx.Close()

	partials, recvErr := rx.RecvN(ctx, len(chunks))
	// Tasks are joined even when the drain failed so that none is left behind.
	if _, err := JoinAll(ctx, handles); err != nil {
		// JoinAll reports failures in index order: the first one is the lowest chunk.
		var ce *ChunkError
		if errors.As(err, &ce) {
			return 0, ce
		}
		return 0, err
	}
	if recvErr != nil {
		return 0, fmt.Errorf("%w: %w", ErrAggregation, recvErr)
	}

	var total uint64
	for _, p := range partials {
		total += p.Sum
	}
	return total, nil
}
