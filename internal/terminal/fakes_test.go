package terminal

import (
	"context"
	"errors"
	"sync"

	"github.com/muurk/devterm/internal/transport"
)

// fakeTransport is an in-memory transport. Chunks queued with push are
// returned one per Receive call.
type fakeTransport struct {
	mu       sync.Mutex
	framing  transport.Framing
	pending  [][]byte
	readErr  error
	sent     [][]byte
	sendErr  error
	received int
}

func (f *fakeTransport) Name() string                   { return "fake" }
func (f *fakeTransport) Target() string                 { return "fake0" }
func (f *fakeTransport) Framing() transport.Framing     { return f.framing }
func (f *fakeTransport) Open(ctx context.Context) error { return nil }
func (f *fakeTransport) State() transport.State         { return transport.Connected }
func (f *fakeTransport) Close() error                   { return nil }

func (f *fakeTransport) push(chunks ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range chunks {
		f.pending = append(f.pending, []byte(c))
	}
}

func (f *fakeTransport) Receive() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.received++
	if len(f.pending) > 0 {
		c := f.pending[0]
		f.pending = f.pending[1:]
		return c, nil
	}
	if f.readErr != nil {
		err := f.readErr
		return nil, err
	}
	return nil, nil
}

func (f *fakeTransport) Send(p []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, append([]byte(nil), p...))
	return nil
}

func (f *fakeTransport) frames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, p := range f.sent {
		out[i] = string(p)
	}
	return out
}

// reconnectingTransport fails reads once and recovers on the first
// reconnect.
type reconnectingTransport struct {
	fakeTransport
	reconnects int
}

func (r *reconnectingTransport) Reconnect(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reconnects++
	if r.reconnects == 1 {
		return errors.New("broker still down")
	}
	r.readErr = nil
	r.pending = append(r.pending, []byte("after reconnect"))
	return nil
}

// recordingReactor captures Arm calls.
type recordingReactor struct {
	armed []string
}

func (r *recordingReactor) Arm(macro, script string) {
	r.armed = append(r.armed, macro+":"+script)
}
