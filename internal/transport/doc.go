// Package transport moves bytes between the terminal and the device.
//
// Two implementations share one contract:
//
//   - Serial talks to a local serial device at a fixed baud rate. Received
//     data is an unframed byte stream; line splitting happens upstream.
//   - Broker bridges through an MQTT broker. Commands are published to one
//     topic, device output arrives on another, one message per line.
//
// A Transport is selected once at session start; nothing downstream branches
// on which kind it is. Receive never blocks: it returns whatever arrived since
// the last call, or nothing, so the caller controls the polling cadence.
//
// # Connection State
//
// Each transport owns a State (disconnected, connecting, connected) that only
// the transport itself writes. Readers on other goroutines see it through
// State(), which is backed by an atomic.
//
// # Reconnection
//
// Broker implements Reconnector. When the broker connection drops, Receive
// reports a ReadError wrapping ErrConnectionLost and the receive task retries
// Reconnect on a delay. Serial has no reconnect step: a read fault ends the
// receive task and the session continues without new data.
package transport
