package threadkit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/ygrebnov/threadkit/broker"
)

// DefaultProducers is the number of producers used by the identifier fan-in example.
const DefaultProducers = 10

// FanInIDs starts n producers, each sending its own identifier (0..n-1) through a clone
// of one broker sender, and drains exactly n messages from the single receiver.
//
// The returned slice is in arrival order, which varies between runs; only its contents
// are guaranteed. Every received identifier is validated: a value outside [0, n) or a
// duplicate fails the call with ErrUnexpectedMessage. All producers have finished when
// FanInIDs returns.
func FanInIDs(ctx context.Context, n int, opts ...Option) ([]int, error) {
	if n < 0 {
		return nil, fmt.Errorf("%w: negative producer count %d", ErrInvalidConfig, n)
	}
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger

	tx, rx := broker.New[int]()
	defer rx.Close()

	var (
		wg      conc.WaitGroup
		mu      sync.Mutex
		sendErr []error
	)
	for id := 0; id < n; id++ {
		producer := tx.Clone()
		wg.Go(func() {
			defer producer.Close()
			if err := producer.Send(id); err != nil {
				mu.Lock()
				sendErr = append(sendErr, fmt.Errorf("producer %d: %w", id, err))
				mu.Unlock()
				return
			}
			logger.Debug("producer finished", zap.Int("producer", id))
		})
	}
	tx.Close()

	ids, recvErr := rx.RecvN(ctx, n)
	wg.Wait()

	if err := errors.Join(append(sendErr, recvErr)...); err != nil {
		return nil, err
	}
	if err := validateIDs(ids, n); err != nil {
		return nil, err
	}
	return ids, nil
}

// validateIDs checks that ids is a permutation of 0..n-1.
func validateIDs(ids []int, n int) error {
	if len(ids) != n {
		return fmt.Errorf("%w: received %d identifiers, want %d", ErrUnexpectedMessage, len(ids), n)
	}
	seen := make([]bool, n)
	for _, id := range ids {
		if id < 0 || id >= n {
			return fmt.Errorf("%w: identifier %d out of range [0, %d)", ErrUnexpectedMessage, id, n)
		}
		if seen[id] {
			return fmt.Errorf("%w: duplicate identifier %d", ErrUnexpectedMessage, id)
		}
		seen[id] = true
	}
	return nil
}
