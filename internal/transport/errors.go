package transport

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConnected is returned when sending on a transport that is not open.
	ErrNotConnected = errors.New("not connected")

	// ErrConnectionLost is wrapped in a ReadError when the broker drops.
	ErrConnectionLost = errors.New("connection lost")
)

// ConnectionError represents a failure to open a transport.
// This is fatal at session start.
type ConnectionError struct {
	// Transport is the transport kind ("serial" or "broker")
	Transport string
	// Target is the device path or broker address
	Target string
	// Underlying error
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to open %s %s: %v", e.Transport, e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// WriteError represents a failed send. It is attached to that one send
// attempt; the session continues.
type WriteError struct {
	Transport string
	// Frame is the framed command that could not be written
	Frame []byte
	Err   error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s write of %d bytes failed: %v", e.Transport, len(e.Frame), e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// ReadError represents a fatal fault on the receive side.
type ReadError struct {
	Transport string
	Err       error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s read failed: %v", e.Transport, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
