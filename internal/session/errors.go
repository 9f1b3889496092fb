package session

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyOpen is returned when Open or Connect is called on a session
	// that already adopted a stream.
	ErrAlreadyOpen = errors.New("session: already open")

	// ErrNotConnected is returned by Send when the session is not open.
	ErrNotConnected = errors.New("session: not connected")

	// ErrClosed is returned when Open or Connect is called after Close.
	ErrClosed = errors.New("session: closed")

	// ErrWriteFailure is matched by every *WriteError.
	ErrWriteFailure = errors.New("session: write failed")

	// ErrConnection is matched by every *ConnectionError.
	ErrConnection = errors.New("session: connection failed")
)

// ConnectionError reports a failed connect, bind or accept.
type ConnectionError struct {
	Op  string // "dial", "listen" or "accept"
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("session: %s: %v", e.Op, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

// WriteError wraps the transport error that failed a Send.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("session: write failed: %v", e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

func (e *WriteError) Is(target error) bool { return target == ErrWriteFailure }
