package threadkit

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestChunkError(t *testing.T) {
	id := uuid.New()
	cause := errors.New("bad input")

	err := newChunkError(cause, id, 4)
	require.ErrorIs(t, err, ErrAggregation)
	require.ErrorIs(t, err, cause)
	require.Equal(t, "threadkit: aggregation failed: chunk 4: bad input", err.Error())

	require.Equal(t, err.Error(), fmt.Sprintf("%v", err))
	require.Equal(t, err.Error(), fmt.Sprintf("%s", err))
	require.Equal(t, fmt.Sprintf("chunk(index=4,id=%s): bad input", id), fmt.Sprintf("%+v", err))

	require.NoError(t, newChunkError(nil, id, 4))
}

func TestExtractChunkIndex(t *testing.T) {
	_, ok := ExtractChunkIndex(nil)
	require.False(t, ok)

	_, ok = ExtractChunkIndex(errors.New("plain"))
	require.False(t, ok)

	wrapped := fmt.Errorf("outer: %w", newChunkError(errors.New("x"), uuid.New(), 7))
	idx, ok := ExtractChunkIndex(wrapped)
	require.True(t, ok)
	require.Equal(t, 7, idx)

	joined := errors.Join(
		newChunkError(errors.New("a"), uuid.New(), 1),
		newChunkError(errors.New("b"), uuid.New(), 5),
	)
	idx, ok = ExtractChunkIndex(joined)
	require.True(t, ok)
	require.Equal(t, 1, idx)
}
