package threadkit

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ChunkError reports the failure of the task spawned at Index.
// It matches ErrAggregation and unwraps to the task's own error.
type ChunkError struct {
	Index int
	ID    uuid.UUID
	Err   error
}

func newChunkError(err error, id uuid.UUID, index int) error {
	if err == nil {
		return nil
	}
	return &ChunkError{Index: index, ID: id, Err: err}
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("%s: chunk %d: %v", ErrAggregation.Error(), e.Index, e.Err)
}

func (e *ChunkError) Unwrap() error { return e.Err }

func (e *ChunkError) Is(target error) bool { return target == ErrAggregation }

func (e *ChunkError) Format(s fmt.State, verb rune) {
	switch verb {
	case 'v':
		if s.Flag('+') {
			_, _ = fmt.Fprintf(s, "chunk(index=%d,id=%s): %+v", e.Index, e.ID, e.Err)
			return
		}
		fallthrough
	case 's':
		_, _ = fmt.Fprint(s, e.Error())
	case 'q':
		_, _ = fmt.Fprintf(s, "%q", e.Error())
	}
}

// ExtractChunkIndex returns the index of the first failed chunk recorded in err.
func ExtractChunkIndex(err error) (int, bool) {
	var ce *ChunkError
	if errors.As(err, &ce) {
		return ce.Index, true
	}
	return 0, false
}
