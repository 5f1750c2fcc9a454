package terminal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/devterm/internal/logging"
	"github.com/muurk/devterm/internal/transport"
)

// DefaultRetryDelay is the pause between broker reconnect attempts.
const DefaultRetryDelay = 2 * time.Second

// Receiver is the receive task: it polls a transport, assembles lines and
// hands them to OnLine. It stops when its context is cancelled.
type Receiver struct {
	Transport transport.Transport
	// OnLine receives every completed line, in order
	OnLine func(line string)
	// OnNotice receives human-readable fault and recovery notices
	OnNotice func(msg string)
	// Interval is the idle poll cadence (transport.PollInterval by default)
	Interval time.Duration
	// RetryDelay is the reconnect back-off (DefaultRetryDelay by default)
	RetryDelay time.Duration
}

// Run polls until ctx is cancelled. It returns nil on cancellation, or the
// read fault that ended it when the transport cannot reconnect.
func (r *Receiver) Run(ctx context.Context) error {
	interval := r.Interval
	if interval <= 0 {
		interval = transport.PollInterval
	}

	asm := NewAssembler(r.Transport.Framing())
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if ctx.Err() != nil {
			return nil
		}

		chunk, err := r.Transport.Receive()
		if err != nil {
			if rerr := r.recover(ctx, err); rerr != nil {
				return rerr
			}
			continue
		}

		if len(chunk) > 0 {
			for _, line := range asm.Feed(chunk) {
				r.OnLine(line)
			}
			// More may be pending; poll again without waiting
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// recover handles a read fault. Transports that can reconnect are retried on
// a delay until they come back or ctx ends; anything else ends the task.
func (r *Receiver) recover(ctx context.Context, err error) error {
	reconnector, ok := r.Transport.(transport.Reconnector)
	if !ok {
		logging.Error("Receive task stopped",
			zap.String("transport", r.Transport.Name()),
			zap.Error(err),
		)
		r.notice(fmt.Sprintf("receive stopped: %v", err))
		return err
	}

	delay := r.RetryDelay
	if delay <= 0 {
		delay = DefaultRetryDelay
	}

	r.notice(fmt.Sprintf("%v, reconnecting to %s", err, r.Transport.Target()))
	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}

		rerr := reconnector.Reconnect(ctx)
		if rerr == nil {
			r.notice(fmt.Sprintf("reconnected to %s", r.Transport.Target()))
			return nil
		}
		if errors.Is(rerr, context.Canceled) {
			return nil
		}
		logging.Warn("Reconnect attempt failed",
			zap.String("transport", r.Transport.Name()),
			zap.Int("attempt", attempt),
			zap.Error(rerr),
		)
	}
}

func (r *Receiver) notice(msg string) {
	if r.OnNotice != nil {
		r.OnNotice(msg)
	}
}
