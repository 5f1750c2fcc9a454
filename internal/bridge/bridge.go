package bridge

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/muurk/devterm/internal/config"
	"github.com/muurk/devterm/internal/logging"
	"github.com/muurk/devterm/internal/terminal"
	"github.com/muurk/devterm/internal/transport"
)

// DefaultHeartbeat is the interval between liveness log lines.
const DefaultHeartbeat = time.Second

// Bridge pumps lines between a serial transport and a broker transport.
type Bridge struct {
	Serial    transport.Transport
	Broker    transport.Transport
	Heartbeat time.Duration

	up   atomic.Int64
	down atomic.Int64
}

// New creates a bridge over an unopened serial and broker transport.
func New(serial, broker transport.Transport) *Bridge {
	return &Bridge{
		Serial:    serial,
		Broker:    broker,
		Heartbeat: DefaultHeartbeat,
	}
}

// MirrorTopics returns the broker options a bridge uses for remote: it
// listens where the terminal publishes and publishes where it listens.
func MirrorTopics(remote *config.Remote) transport.BrokerOptions {
	return transport.BrokerOptions{
		Broker:    remote.Broker,
		Publish:   remote.Subscribe,
		Subscribe: remote.Publish,
	}
}

// Stats returns the number of lines published and payloads written so far.
func (b *Bridge) Stats() (published, written int64) {
	return b.up.Load(), b.down.Load()
}

// Run opens both transports and relays until ctx is cancelled or the serial
// port fails. Broker faults are retried by the broker's receive task.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.Serial.Open(ctx); err != nil {
		return err
	}
	defer b.close(b.Serial)

	if err := b.Broker.Open(ctx); err != nil {
		return err
	}
	defer b.close(b.Broker)

	logging.Info("Bridge started",
		zap.String("serial", b.Serial.Target()),
		zap.String("broker", b.Broker.Target()),
	)

	g, gctx := errgroup.WithContext(ctx)

	serialRx := &terminal.Receiver{
		Transport: b.Serial,
		OnLine:    b.publish,
		OnNotice:  notice(b.Serial),
	}
	brokerRx := &terminal.Receiver{
		Transport: b.Broker,
		OnLine:    b.write,
		OnNotice:  notice(b.Broker),
	}

	g.Go(func() error {
		if err := serialRx.Run(gctx); err != nil {
			return fmt.Errorf("serial pump: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := brokerRx.Run(gctx); err != nil {
			return fmt.Errorf("broker pump: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		b.heartbeat(gctx)
		return nil
	})

	err := g.Wait()
	published, written := b.Stats()
	logging.Info("Bridge stopped",
		zap.Int64("published", published),
		zap.Int64("written", written),
		zap.Error(err),
	)
	return err
}

// publish sends one serial line to the broker.
func (b *Bridge) publish(line string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	if err := b.Broker.Send([]byte(line)); err != nil {
		logging.Warn("Publish failed", zap.String("line", line), zap.Error(err))
		return
	}
	b.up.Add(1)
}

// write forwards one broker payload to the serial port.
func (b *Bridge) write(payload string) {
	if err := b.Serial.Send([]byte(payload)); err != nil {
		logging.Warn("Serial write failed", zap.Error(err))
		return
	}
	b.down.Add(1)
}

func (b *Bridge) heartbeat(ctx context.Context) {
	interval := b.Heartbeat
	if interval <= 0 {
		interval = DefaultHeartbeat
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			published, written := b.Stats()
			logging.Info("Bridge alive",
				zap.String("broker_state", b.Broker.State().String()),
				zap.Int64("published", published),
				zap.Int64("written", written),
			)
		}
	}
}

func (b *Bridge) close(t transport.Transport) {
	if err := t.Close(); err != nil {
		logging.Warn("Failed to close transport",
			zap.String("transport", t.Name()),
			zap.Error(err),
		)
	}
}

func notice(t transport.Transport) func(string) {
	return func(msg string) {
		logging.Warn("Transport notice",
			zap.String("transport", t.Name()),
			zap.String("notice", msg),
		)
	}
}
