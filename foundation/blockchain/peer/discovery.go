package peer

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"sync"
	"time"
)

// DiscoveryConfig represents the address ranges probed to find the other
// nodes on the local network. Both ranges are half open: [Start, End).
type DiscoveryConfig struct {
	Host          string        // IPv4 address of this node. Derived from the hostname when empty.
	Port          int           // Port of this node.
	PortStart     int           // First port probed.
	PortEnd       int           // Probing stops before this port.
	IPOffsetStart int           // First offset added to the last octet of Host.
	IPOffsetEnd   int           // Probing stops before this offset.
	Timeout       time.Duration // How long a single probe waits for a connection.
}

// Discover probes every host and port combination in the configured ranges
// and returns the ones accepting connections, leaving out this node. The
// result only says a peer was reachable when it was probed.
func Discover(ctx context.Context, cfg DiscoveryConfig) ([]Peer, error) {
	host := cfg.Host
	if host == "" {
		host = LocalHost()
	}

	ip := net.ParseIP(host).To4()
	if ip == nil {
		return nil, fmt.Errorf("host %q is not an IPv4 address", host)
	}

	self := net.JoinHostPort(host, strconv.Itoa(cfg.Port))

	var candidates []string
	for port := cfg.PortStart; port < cfg.PortEnd; port++ {
		for offset := cfg.IPOffsetStart; offset < cfg.IPOffsetEnd; offset++ {
			last := int(ip[3]) + offset
			if last < 0 || last > 255 {
				continue
			}

			guess := net.IPv4(ip[0], ip[1], ip[2], byte(last)).String()
			addr := net.JoinHostPort(guess, strconv.Itoa(port))
			if addr == self {
				continue
			}

			candidates = append(candidates, addr)
		}
	}

	// Probe the candidates at the same time, keeping the result order the
	// same as the order of the candidates.
	found := make([]bool, len(candidates))

	var wg sync.WaitGroup
	wg.Add(len(candidates))

	for i, addr := range candidates {
		go func() {
			defer wg.Done()
			found[i] = probe(ctx, addr, cfg.Timeout)
		}()
	}

	wg.Wait()

	var peers []Peer
	for i, addr := range candidates {
		if found[i] {
			peers = append(peers, New(addr))
		}
	}

	return peers, nil
}

// LocalHost returns the first IPv4 address the hostname of this machine
// resolves to, or the loopback address if that fails.
func LocalHost() string {
	const loopback = "127.0.0.1"

	name, err := os.Hostname()
	if err != nil {
		return loopback
	}

	ips, err := net.LookupIP(name)
	if err != nil {
		return loopback
	}

	for _, ip := range ips {
		if ip4 := ip.To4(); ip4 != nil {
			return ip4.String()
		}
	}

	return loopback
}

// probe reports whether something accepts a tcp connection at the address.
func probe(ctx context.Context, addr string, timeout time.Duration) bool {
	d := net.Dialer{Timeout: timeout}

	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	conn.Close()

	return true
}
