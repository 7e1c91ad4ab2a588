// Package broker provides an unbounded multi-producer, single-consumer message queue.
//
// New returns one Sender and one Receiver bound to the same queue. Senders are cloned to give
// every producer its own handle; each handle is closed independently and the queue keeps a count
// of the live ones. Send never blocks: it appends to the queue and returns. Messages are received
// in the order their Send calls completed the enqueue, which is not deterministic across producers.
package broker

import (
	"context"
	"sync"
)

type queue[T any] struct {
	mu           sync.Mutex
	items        []T
	senders      int
	disconnected bool

	// notify holds at most one pending wake-up for the receiver.
	notify chan struct{}
}

func (q *queue[T]) wake() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}

// New creates a queue and returns its first sender and its only receiver.
func New[T any]() (*Sender[T], *Receiver[T]) {
	q := &queue[T]{senders: 1, notify: make(chan struct{}, 1)}
	return &Sender[T]{q: q}, &Receiver[T]{q: q}
}

// Sender is a producer handle. Sender is safe for concurrent use.
type Sender[T any] struct {
	q *queue[T]

	// guarded by q.mu
	closed bool
}

// Clone returns a new handle on the same queue. Cloning a closed sender yields a closed sender.
func (s *Sender[T]) Clone() *Sender[T] {
	s.q.mu.Lock()
	defer s.q.mu.Unlock()
	c := &Sender[T]{q: s.q, closed: s.closed}
	if !s.closed {
		s.q.senders++
	}
	return c
}

// Send enqueues v and returns immediately.
// It fails with ErrDisconnected if the receiver was closed and with ErrSenderClosed if s was closed.
func (s *Sender[T]) Send(v T) error {
	q := s.q
	q.mu.Lock()
	switch {
	case s.closed:
		q.mu.Unlock()
		return ErrSenderClosed
	case q.disconnected:
		q.mu.Unlock()
		return ErrDisconnected
	}
	q.items = append(q.items, v)
	q.mu.Unlock()

	q.wake()
	return nil
}

// Close releases the handle. It is idempotent. When the last sender is closed,
// a receiver blocked on an empty queue returns ErrClosed.
func (s *Sender[T]) Close() {
	q := s.q
	q.mu.Lock()
	if s.closed {
		q.mu.Unlock()
		return
	}
	s.closed = true
	q.senders--
	last := q.senders == 0
	q.mu.Unlock()

	if last {
		q.wake()
	}
}

// Receiver is the single consumer of a queue.
// Concurrent receive calls are serialized.
type Receiver[T any] struct {
	q *queue[T]

	recvMu sync.Mutex
}

// Recv blocks until a message is available.
// It returns ErrClosed when the queue is empty and no sender is left.
func (r *Receiver[T]) Recv() (T, error) {
	return r.RecvContext(context.Background())
}

// RecvContext is like Recv but gives up with ctx.Err() when ctx is done.
func (r *Receiver[T]) RecvContext(ctx context.Context) (T, error) {
	r.recvMu.Lock()
	defer r.recvMu.Unlock()

	var zero T
	q := r.q
	for {
		q.mu.Lock()
		switch {
		case q.disconnected:
			q.mu.Unlock()
			return zero, ErrClosed
		case len(q.items) > 0:
			v := q.items[0]
			q.items[0] = zero
			q.items = q.items[1:]
			q.mu.Unlock()
			return v, nil
		case q.senders == 0:
			q.mu.Unlock()
			return zero, ErrClosed
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// RecvN receives exactly n messages. On error it returns the messages received so far.
func (r *Receiver[T]) RecvN(ctx context.Context, n int) ([]T, error) {
	out := make([]T, 0, n)
	for i := 0; i < n; i++ {
		v, err := r.RecvContext(ctx)
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Len returns the number of queued messages.
func (r *Receiver[T]) Len() int {
	r.q.mu.Lock()
	defer r.q.mu.Unlock()
	return len(r.q.items)
}

// Close destroys the receiver: pending messages are dropped and later sends fail with
// ErrDisconnected. It is idempotent.
func (r *Receiver[T]) Close() {
	q := r.q
	q.mu.Lock()
	q.disconnected = true
	q.items = nil
	q.mu.Unlock()

	q.wake()
}
