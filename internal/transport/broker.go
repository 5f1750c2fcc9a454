package transport

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/muurk/devterm/internal/logging"
)

const (
	// DefaultBrokerPort is the standard unencrypted MQTT port.
	DefaultBrokerPort = "1883"

	// DefaultKeepAlive matches the keepalive the device bridge uses.
	DefaultKeepAlive = 60 * time.Second

	// DefaultConnectTimeout bounds a single connect attempt.
	DefaultConnectTimeout = 10 * time.Second

	// qosAtMostOnce is the lowest delivery guarantee, used both ways.
	qosAtMostOnce byte = 0
)

// BrokerOptions configures a broker transport.
type BrokerOptions struct {
	// Broker is a host, host:port or a full URL (tcp://, ws://)
	Broker string
	// Publish is the topic outgoing frames are published to
	Publish string
	// Subscribe is the topic incoming lines arrive on
	Subscribe string
	// ClientID defaults to devterm-<hostname>-<pid>
	ClientID       string
	KeepAlive      time.Duration
	ConnectTimeout time.Duration
}

type clientFactory func(opts *mqtt.ClientOptions) mqtt.Client

// Broker is a transport bridged through an MQTT broker. Every delivered
// message is one line.
type Broker struct {
	opts      BrokerOptions
	newClient clientFactory
	state     stateCell

	mu     sync.Mutex
	client mqtt.Client
	inbox  [][]byte
	lost   bool
}

// NewBroker creates a broker transport. Nothing is dialled until Open.
func NewBroker(opts BrokerOptions) *Broker {
	if opts.KeepAlive == 0 {
		opts.KeepAlive = DefaultKeepAlive
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = DefaultConnectTimeout
	}
	if opts.ClientID == "" {
		host, _ := os.Hostname()
		opts.ClientID = fmt.Sprintf("devterm-%s-%d", host, os.Getpid())
	}
	return &Broker{
		opts:      opts,
		newClient: mqtt.NewClient,
	}
}

func (b *Broker) Name() string     { return "broker" }
func (b *Broker) Target() string   { return BrokerURL(b.opts.Broker) }
func (b *Broker) Framing() Framing { return FramingMessage }
func (b *Broker) State() State     { return b.state.load() }

// BrokerURL normalises a broker address to a URL, adding the default port
// when none is given.
func BrokerURL(addr string) string {
	if strings.Contains(addr, "://") {
		return addr
	}
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, DefaultBrokerPort)
	}
	return "tcp://" + addr
}

// Open connects to the broker and subscribes to the inbound topic.
func (b *Broker) Open(ctx context.Context) error {
	if err := b.connect(ctx); err != nil {
		return &ConnectionError{Transport: b.Name(), Target: b.Target(), Err: err}
	}
	return nil
}

// Reconnect discards the dropped client and connects again.
func (b *Broker) Reconnect(ctx context.Context) error {
	b.mu.Lock()
	old := b.client
	b.client = nil
	b.mu.Unlock()

	if old != nil {
		old.Disconnect(0)
	}

	if err := b.connect(ctx); err != nil {
		return &ConnectionError{Transport: b.Name(), Target: b.Target(), Err: err}
	}
	return nil
}

func (b *Broker) connect(ctx context.Context) error {
	b.setState(Connecting)

	opts := mqtt.NewClientOptions().
		AddBroker(b.Target()).
		SetClientID(b.opts.ClientID).
		SetKeepAlive(b.opts.KeepAlive).
		SetConnectTimeout(b.opts.ConnectTimeout).
		SetAutoReconnect(false).
		SetCleanSession(true).
		SetConnectionLostHandler(b.onConnectionLost)

	client := b.newClient(opts)
	if err := waitToken(ctx, client.Connect(), b.opts.ConnectTimeout); err != nil {
		b.setState(Disconnected)
		return fmt.Errorf("connect: %w", err)
	}

	token := client.Subscribe(b.opts.Subscribe, qosAtMostOnce, func(_ mqtt.Client, msg mqtt.Message) {
		b.deliver(msg.Payload())
	})
	if err := waitToken(ctx, token, b.opts.ConnectTimeout); err != nil {
		client.Disconnect(0)
		b.setState(Disconnected)
		return fmt.Errorf("subscribe %s: %w", b.opts.Subscribe, err)
	}

	b.mu.Lock()
	b.client = client
	b.lost = false
	b.mu.Unlock()

	b.setState(Connected)
	return nil
}

func waitToken(ctx context.Context, token mqtt.Token, timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-token.Done():
		return token.Error()
	case <-timer.C:
		return fmt.Errorf("timed out after %s", timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// deliver queues one inbound payload. Called on the MQTT client's goroutine.
func (b *Broker) deliver(payload []byte) {
	line := make([]byte, len(payload))
	copy(line, payload)

	b.mu.Lock()
	b.inbox = append(b.inbox, line)
	b.mu.Unlock()

	logging.LogFrame(b.Name(), "received", line)
}

func (b *Broker) onConnectionLost(_ mqtt.Client, err error) {
	b.mu.Lock()
	b.lost = true
	b.mu.Unlock()

	b.setState(Disconnected)
	logging.Warn("Broker connection lost",
		zap.String("broker", b.Target()),
		zap.Error(err),
	)
}

// Send publishes p to the outbound topic.
func (b *Broker) Send(p []byte) error {
	b.mu.Lock()
	client := b.client
	b.mu.Unlock()

	if client == nil || b.State() != Connected {
		return &WriteError{Transport: b.Name(), Frame: p, Err: ErrNotConnected}
	}

	token := client.Publish(b.opts.Publish, qosAtMostOnce, false, p)
	if err := waitToken(context.Background(), token, b.opts.ConnectTimeout); err != nil {
		return &WriteError{Transport: b.Name(), Frame: p, Err: err}
	}

	logging.LogFrame(b.Name(), "sent", p)
	return nil
}

// Receive returns the oldest queued message. Once the connection has been
// lost and the queue is drained it reports ErrConnectionLost.
func (b *Broker) Receive() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.inbox) > 0 {
		line := b.inbox[0]
		b.inbox[0] = nil
		b.inbox = b.inbox[1:]
		return line, nil
	}
	if b.lost {
		return nil, &ReadError{Transport: b.Name(), Err: ErrConnectionLost}
	}
	return nil, nil
}

// Close disconnects from the broker.
func (b *Broker) Close() error {
	b.mu.Lock()
	client := b.client
	b.client = nil
	b.mu.Unlock()

	if client != nil {
		client.Disconnect(250)
	}
	b.setState(Disconnected)
	return nil
}

func (b *Broker) setState(state State) {
	if prev := b.state.store(state); prev != state {
		logging.LogConnection(b.Name(), b.Target(), state.String())
	}
}
