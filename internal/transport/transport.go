package transport

import (
	"context"
	"sync/atomic"
	"time"
)

// State is the connection state of a transport.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// Framing describes how received data maps to lines.
type Framing int

const (
	// FramingStream means received chunks are raw bytes that must be split
	// on line feeds.
	FramingStream Framing = iota
	// FramingMessage means every received chunk is one complete line.
	FramingMessage
)

// PollInterval is the receive cadence used when no data is pending.
const PollInterval = 20 * time.Millisecond

// Transport is the byte-in/byte-out contract shared by the serial link and
// the broker bridge.
type Transport interface {
	// Name identifies the transport kind ("serial" or "broker").
	Name() string
	// Target is the device path or broker address.
	Target() string
	// Framing tells the line assembler how to treat received chunks.
	Framing() Framing
	// Open connects the transport. Failure is a *ConnectionError.
	Open(ctx context.Context) error
	// Send writes one already framed command. Failure is a *WriteError.
	Send(p []byte) error
	// Receive returns pending data without blocking, or nil when nothing
	// arrived. A fatal fault is a *ReadError.
	Receive() ([]byte, error)
	// State reports the current connection state.
	State() State
	Close() error
}

// Reconnector is implemented by transports that can recover from a lost
// connection.
type Reconnector interface {
	Reconnect(ctx context.Context) error
}

// stateCell holds a State for lock-free cross-goroutine reads.
type stateCell struct {
	v atomic.Int32
}

func (c *stateCell) load() State {
	return State(c.v.Load())
}

func (c *stateCell) store(s State) State {
	return State(c.v.Swap(int32(s)))
}
