// Package bridge relays a local serial device to a publish/subscribe broker
// so that a remote devterm session can reach it.
//
// Each line read from the serial port is trimmed and published as one
// message. Every message received from the broker is written to the serial
// port unchanged. Topics are mirrored with respect to the terminal: the
// bridge subscribes to the terminal's publish topic and publishes to the
// terminal's subscribe topic.
package bridge
