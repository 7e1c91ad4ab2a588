package broker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSendRecv_SingleProducerIsFIFO(t *testing.T) {
	tx, rx := New[int]()
	defer rx.Close()

	for i := 0; i < 5; i++ {
		require.NoError(t, tx.Send(i))
	}
	require.Equal(t, 5, rx.Len())

	got, err := rx.RecvN(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2, 3, 4}, got)
}

func TestSend_DoesNotBlockWithoutConsumer(t *testing.T) {
	tx, rx := New[int]()
	defer rx.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10_000; i++ {
			_ = tx.Send(i)
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Send blocked with no consumer reading")
	}
	require.Equal(t, 10_000, rx.Len())
}

func TestFanIn_MultisetOfProducerIDs(t *testing.T) {
	const producers = 10
	tx, rx := New[int]()
	defer rx.Close()

	var wg sync.WaitGroup
	for id := 0; id < producers; id++ {
		p := tx.Clone()
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer p.Close()
			require.NoError(t, p.Send(id))
		}()
	}
	tx.Close()

	got, err := rx.RecvN(context.Background(), producers)
	require.NoError(t, err)
	wg.Wait()

	want := make([]int, producers)
	for i := range want {
		want[i] = i
	}
	// Arrival order is unspecified; only the contents are.
	require.ElementsMatch(t, want, got)
}

func TestRecv_BlocksUntilSend(t *testing.T) {
	tx, rx := New[string]()
	defer rx.Close()

	got := make(chan string, 1)
	go func() {
		v, err := rx.Recv()
		if err == nil {
			got <- v
		}
		close(got)
	}()

	select {
	case <-got:
		t.Fatalf("Recv returned before any Send")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, tx.Send("hello"))
	require.Equal(t, "hello", <-got)
}

func TestRecv_ClosedWhenAllSendersDropped(t *testing.T) {
	tx, rx := New[int]()
	defer rx.Close()

	clone := tx.Clone()
	require.NoError(t, clone.Send(7))
	tx.Close()
	clone.Close()
	clone.Close() // idempotent

	v, err := rx.Recv()
	require.NoError(t, err, "queued messages are still delivered")
	require.Equal(t, 7, v)

	_, err = rx.Recv()
	require.ErrorIs(t, err, ErrClosed)
}

func TestRecv_WakesWhenLastSenderClosesLater(t *testing.T) {
	tx, rx := New[int]()
	defer rx.Close()

	errCh := make(chan error, 1)
	go func() {
		_, err := rx.Recv()
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	tx.Close()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, ErrClosed)
	case <-time.After(5 * time.Second):
		t.Fatalf("Recv did not observe the last sender closing")
	}
}

func TestSend_AfterReceiverClosed(t *testing.T) {
	tx, rx := New[int]()
	require.NoError(t, tx.Send(1))
	rx.Close()
	rx.Close() // idempotent

	require.ErrorIs(t, tx.Send(2), ErrDisconnected)
	require.ErrorIs(t, tx.Clone().Send(3), ErrDisconnected)
	require.Zero(t, rx.Len(), "pending messages are dropped")

	_, err := rx.Recv()
	require.ErrorIs(t, err, ErrClosed)
}

func TestSend_OnClosedSender(t *testing.T) {
	tx, rx := New[int]()
	defer rx.Close()

	tx.Close()
	require.ErrorIs(t, tx.Send(1), ErrSenderClosed)

	clone := tx.Clone()
	require.ErrorIs(t, clone.Send(1), ErrSenderClosed)
	clone.Close()
}

func TestRecvContext_GivesUp(t *testing.T) {
	tx, rx := New[int]()
	defer rx.Close()
	defer tx.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := rx.RecvContext(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, tx.Send(5))
	v, err := rx.Recv()
	require.NoError(t, err)
	require.Equal(t, 5, v)
}

func TestRecvN_ReturnsPartialOnClose(t *testing.T) {
	tx, rx := New[int]()
	defer rx.Close()

	require.NoError(t, tx.Send(1))
	require.NoError(t, tx.Send(2))
	tx.Close()

	got, err := rx.RecvN(context.Background(), 3)
	require.ErrorIs(t, err, ErrClosed)
	require.Equal(t, []int{1, 2}, got)
}

func TestReceiverClose_UnblocksRecv(t *testing.T) {
	tx, rx := New[int]()
	defer tx.Close()

	errCh := make(chan error, 1)
	go func() {
		_, err := rx.Recv()
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	rx.Close()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, ErrClosed)
	case <-time.After(5 * time.Second):
		t.Fatalf("Recv not unblocked by receiver Close")
	}
}
