package peer_test

import (
	"context"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/ardanlabs/powchain/foundation/blockchain/peer"
)

// listen opens a listener on a random loopback port and returns the port.
func listen(t *testing.T) int {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Should be able to listen: %s", err)
	}
	t.Cleanup(func() { l.Close() })

	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	return l.Addr().(*net.TCPAddr).Port
}

// closedPort returns a loopback port nothing is listening on.
func closedPort(t *testing.T) int {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Should be able to listen: %s", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()

	return port
}

func Test_Discover(t *testing.T) {
	open := listen(t)
	closed := closedPort(t)

	type table struct {
		name string
		cfg  peer.DiscoveryConfig
		exp  []string
	}

	tt := []table{
		{
			name: "reachable",
			cfg:  peer.DiscoveryConfig{Host: "127.0.0.1", Port: closed, PortStart: open, PortEnd: open + 1, IPOffsetStart: 0, IPOffsetEnd: 1},
			exp:  []string{net.JoinHostPort("127.0.0.1", strconv.Itoa(open))},
		},
		{
			name: "self",
			cfg:  peer.DiscoveryConfig{Host: "127.0.0.1", Port: open, PortStart: open, PortEnd: open + 1, IPOffsetStart: 0, IPOffsetEnd: 1},
		},
		{
			name: "unreachable",
			cfg:  peer.DiscoveryConfig{Host: "127.0.0.1", Port: open, PortStart: closed, PortEnd: closed + 1, IPOffsetStart: 0, IPOffsetEnd: 1},
		},
		{
			name: "empty-range",
			cfg:  peer.DiscoveryConfig{Host: "127.0.0.1", Port: closed, PortStart: open, PortEnd: open, IPOffsetStart: 0, IPOffsetEnd: 1},
		},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			tst.cfg.Timeout = time.Second

			peers, err := peer.Discover(context.Background(), tst.cfg)
			if err != nil {
				t.Fatalf("Test %s:\tShould be able to discover peers: %s", tst.name, err)
			}

			if len(peers) != len(tst.exp) {
				t.Logf("Test %s:\tgot: %v", tst.name, peers)
				t.Logf("Test %s:\texp: %v", tst.name, tst.exp)
				t.Fatalf("Test %s:\tShould get back the right number of peers.", tst.name)
			}

			for i, p := range peers {
				if p.Host != tst.exp[i] {
					t.Logf("Test %s:\tgot: %s", tst.name, p.Host)
					t.Logf("Test %s:\texp: %s", tst.name, tst.exp[i])
					t.Fatalf("Test %s:\tShould get back the right peer.", tst.name)
				}
			}
		}

		t.Run(tst.name, f)
	}

	if _, err := peer.Discover(context.Background(), peer.DiscoveryConfig{Host: "not-an-ip"}); err == nil {
		t.Fatalf("Should reject a host that is not an IPv4 address.")
	}
}
