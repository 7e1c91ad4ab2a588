package threadkit

import "errors"

const Namespace = "threadkit"

var (
	ErrInvalidConfig     = errors.New(Namespace + ": invalid configuration")
	ErrTaskPanicked      = errors.New(Namespace + ": task execution panicked")
	ErrAlreadyJoined     = errors.New(Namespace + ": task handle already joined")
	ErrInvalidDigit      = errors.New(Namespace + ": invalid digit")
	ErrAggregation       = errors.New(Namespace + ": aggregation failed")
	ErrUnexpectedMessage = errors.New(Namespace + ": unexpected fan-in message")
)
