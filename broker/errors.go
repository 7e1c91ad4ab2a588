package broker

import "errors"

const Namespace = "broker"

var (
	// ErrDisconnected is returned by Send once the receiver has been closed.
	ErrDisconnected = errors.New(Namespace + ": receiver disconnected")
	// ErrClosed is returned by Recv when the queue is empty and every sender has been closed,
	// or when the receiver itself has been closed.
	ErrClosed = errors.New(Namespace + ": channel closed")
	// ErrSenderClosed is returned by Send on a sender handle that has been closed.
	ErrSenderClosed = errors.New(Namespace + ": sender closed")
)
