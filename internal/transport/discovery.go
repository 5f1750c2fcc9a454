package transport

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// BrokerServiceType is the DNS-SD service brokers such as Mosquitto
	// advertise through Avahi or Bonjour.
	BrokerServiceType = "_mqtt._tcp"

	// ServiceDomain is the mDNS domain
	ServiceDomain = "local."

	// DefaultDiscoveryTimeout is how long to browse before giving up
	DefaultDiscoveryTimeout = 5 * time.Second

	// DiscoverKeyword in remote.broker asks for mDNS discovery.
	DiscoverKeyword = "mdns"
)

// NeedsDiscovery reports whether a configured broker address must be
// resolved through mDNS first.
func NeedsDiscovery(addr string) bool {
	return addr == "" || addr == DiscoverKeyword
}

// DiscoverBroker browses the local network for an MQTT broker and returns
// the first one found as host:port.
func DiscoverBroker(ctx context.Context, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultDiscoveryTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return "", fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	found := make(chan string, 1)

	go func() {
		for entry := range entries {
			if addr := brokerAddress(entry); addr != "" {
				select {
				case found <- addr:
				default:
				}
				cancel()
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, BrokerServiceType, ServiceDomain, entries); err != nil {
		return "", fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case addr := <-found:
		return addr, nil
	case <-ctx.Done():
		// The browse goroutine may have delivered just before cancel
		select {
		case addr := <-found:
			return addr, nil
		default:
		}
		return "", fmt.Errorf("no %s service found within %s", BrokerServiceType, timeout)
	}
}

// brokerAddress converts a service entry to host:port, preferring IPv4.
func brokerAddress(entry *zeroconf.ServiceEntry) string {
	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return ""
	}

	port := entry.Port
	if port == 0 {
		port, _ = strconv.Atoi(DefaultBrokerPort)
	}
	return net.JoinHostPort(ip, strconv.Itoa(port))
}
