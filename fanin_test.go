package threadkit

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ygrebnov/threadkit/logging"
)

func TestFanInIDs_DefaultProducers(t *testing.T) {
	ids, err := FanInIDs(context.Background(), DefaultProducers)
	require.NoError(t, err)

	want := make([]int, DefaultProducers)
	for i := range want {
		want[i] = i
	}
	require.ElementsMatch(t, want, ids)
}

func TestFanInIDs_Sizes(t *testing.T) {
	for _, n := range []int{0, 1, 2, 100} {
		ids, err := FanInIDs(context.Background(), n)
		require.NoError(t, err)
		require.Len(t, ids, n)
		require.NoError(t, validateIDs(ids, n))
	}
}

func TestFanInIDs_InvalidCount(t *testing.T) {
	_, err := FanInIDs(context.Background(), -1)
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = FanInIDs(context.Background(), 3, WithLogger(nil))
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestFanInIDs_LogsEveryProducer(t *testing.T) {
	logger, logs := logging.NewObserverLogger("debug")

	_, err := FanInIDs(context.Background(), 5, WithLogger(logger))
	require.NoError(t, err)
	require.Equal(t, 5, logs.FilterMessage("producer finished").Len())
}

func TestValidateIDs(t *testing.T) {
	tests := []struct {
		name    string
		ids     []int
		n       int
		wantErr bool
	}{
		{name: "empty", ids: nil, n: 0},
		{name: "permutation", ids: []int{2, 0, 1}, n: 3},
		{name: "short", ids: []int{0, 1}, n: 3, wantErr: true},
		{name: "long", ids: []int{0, 1, 2, 0}, n: 3, wantErr: true},
		{name: "duplicate", ids: []int{0, 0, 2}, n: 3, wantErr: true},
		{name: "out of range", ids: []int{0, 1, 3}, n: 3, wantErr: true},
		{name: "negative", ids: []int{-1, 1, 2}, n: 3, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateIDs(tt.ids, tt.n)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnexpectedMessage)
				return
			}
			require.NoError(t, err)
		})
	}
}
