package transport

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/muurk/devterm/internal/logging"
)

const (
	// DefaultBaudRate is the rate the device firmware is built for.
	DefaultBaudRate = 115200

	// DefaultReadTimeout bounds a single port read so Receive never blocks
	// for longer than a fraction of the poll interval.
	DefaultReadTimeout = 5 * time.Millisecond

	readChunkSize = 256
)

// SerialOptions configures a serial transport.
type SerialOptions struct {
	// Device is the port path, e.g. /dev/ttyUSB0 or COM3
	Device string
	// BaudRate defaults to DefaultBaudRate
	BaudRate int
	// ReadTimeout defaults to DefaultReadTimeout
	ReadTimeout time.Duration
}

// serialPort is the part of serial.Port the transport uses.
type serialPort interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

type portOpener func(name string, mode *serial.Mode) (serialPort, error)

func openSerialPort(name string, mode *serial.Mode) (serialPort, error) {
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Serial is a transport over a local serial device (8N1).
type Serial struct {
	opts  SerialOptions
	open  portOpener
	state stateCell

	mu   sync.Mutex
	port serialPort
	buf  []byte
}

// NewSerial creates a serial transport. The port is not opened until Open.
func NewSerial(opts SerialOptions) *Serial {
	if opts.BaudRate == 0 {
		opts.BaudRate = DefaultBaudRate
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = DefaultReadTimeout
	}
	return &Serial{
		opts: opts,
		open: openSerialPort,
		buf:  make([]byte, readChunkSize),
	}
}

func (s *Serial) Name() string     { return "serial" }
func (s *Serial) Target() string   { return s.opts.Device }
func (s *Serial) Framing() Framing { return FramingStream }
func (s *Serial) State() State     { return s.state.load() }

// Open opens the device at the configured baud rate.
func (s *Serial) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return &ConnectionError{Transport: s.Name(), Target: s.opts.Device, Err: err}
	}

	s.setState(Connecting)

	mode := &serial.Mode{
		BaudRate: s.opts.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := s.open(s.opts.Device, mode)
	if err != nil {
		s.setState(Disconnected)
		return &ConnectionError{Transport: s.Name(), Target: s.opts.Device, Err: err}
	}

	if err := port.SetReadTimeout(s.opts.ReadTimeout); err != nil {
		port.Close()
		s.setState(Disconnected)
		return &ConnectionError{
			Transport: s.Name(),
			Target:    s.opts.Device,
			Err:       fmt.Errorf("failed to set read timeout: %w", err),
		}
	}

	s.mu.Lock()
	s.port = port
	s.mu.Unlock()

	s.setState(Connected)
	return nil
}

// Send writes p to the port in full.
func (s *Serial) Send(p []byte) error {
	port := s.currentPort()
	if port == nil {
		return &WriteError{Transport: s.Name(), Frame: p, Err: ErrNotConnected}
	}

	for written := 0; written < len(p); {
		n, err := port.Write(p[written:])
		if err != nil {
			return &WriteError{Transport: s.Name(), Frame: p, Err: err}
		}
		written += n
	}

	logging.LogFrame(s.Name(), "sent", p)
	return nil
}

// Receive returns the bytes available on the port, waiting at most the read
// timeout. It must only be called from the receive task.
func (s *Serial) Receive() ([]byte, error) {
	port := s.currentPort()
	if port == nil {
		return nil, &ReadError{Transport: s.Name(), Err: ErrNotConnected}
	}

	n, err := port.Read(s.buf)
	if err != nil {
		s.setState(Disconnected)
		return nil, &ReadError{Transport: s.Name(), Err: err}
	}
	if n == 0 {
		return nil, nil
	}

	chunk := make([]byte, n)
	copy(chunk, s.buf[:n])
	logging.LogFrame(s.Name(), "received", chunk)
	return chunk, nil
}

// Close releases the port.
func (s *Serial) Close() error {
	s.mu.Lock()
	port := s.port
	s.port = nil
	s.mu.Unlock()

	s.setState(Disconnected)
	if port == nil {
		return nil
	}
	return port.Close()
}

func (s *Serial) currentPort() serialPort {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.port
}

func (s *Serial) setState(state State) {
	if prev := s.state.store(state); prev != state {
		logging.LogConnection(s.Name(), s.opts.Device, state.String())
	}
}
