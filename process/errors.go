package process

import (
	"errors"
	"fmt"
)

const Namespace = "process"

var (
	// ErrSpawn matches every *Error raised while launching a process.
	ErrSpawn = errors.New(Namespace + ": spawn failed")
	// ErrIO matches every *Error raised while writing, closing or reading a process stream.
	ErrIO = errors.New(Namespace + ": stream i/o failed")
	// ErrWait matches every *Error raised while waiting for a process to exit.
	ErrWait = errors.New(Namespace + ": wait failed")

	ErrStreamTaken   = errors.New(Namespace + ": stream already taken")
	ErrNotPiped      = errors.New(Namespace + ": stream is not piped")
	ErrInvalidConfig = errors.New(Namespace + ": invalid configuration")
)

// Stage names the step of a pipeline invocation an error occurred in.
type Stage string

const (
	StageSpawn      Stage = "spawn"
	StageWrite      Stage = "write"
	StageCloseInput Stage = "close-input"
	StageRead       Stage = "read"
	StageWait       Stage = "wait"
)

// Error carries the command and stage of a failed process operation.
// It unwraps to the underlying OS error, so exec.ErrNotFound or fs.ErrPermission still match.
type Error struct {
	Command string
	Stage   Stage
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %q: %v", Namespace, e.Stage, e.Command, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	switch target {
	case ErrSpawn:
		return e.Stage == StageSpawn
	case ErrIO:
		return e.Stage == StageWrite || e.Stage == StageCloseInput || e.Stage == StageRead
	case ErrWait:
		return e.Stage == StageWait
	}
	return false
}
