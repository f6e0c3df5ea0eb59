package transport

import (
	"context"
	"net"
	"time"

	"github.com/hdds-io/hdds/internal/herr"
	"golang.org/x/net/ipv4"
)

// UDPTransport speaks RTPS over a UDP socket, joined to a multicast group
// for discovery traffic and reading its DSCP code point from
// config.Environment.DSCP for TRANSPORT_PRIORITY.
type UDPTransport struct {
	conn    *net.UDPConn
	pconn   *ipv4.PacketConn
	locator string
}

// NewUDPMulticastTransport opens a UDP socket bound to port, joins
// multicastGroup on every multicast-capable interface, and applies dscp as
// the socket's IP_TOS value.
func NewUDPMulticastTransport(port int, multicastGroup string, dscp int) (*UDPTransport, error) {
	addr := &net.UDPAddr{IP: net.IPv4zero, Port: port}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return nil, herr.New(herr.Error, "listen udp4 :%d: %v", port, err)
	}

	pconn := ipv4.NewPacketConn(conn)
	if dscp != 0 {
		if err := pconn.SetTOS(dscp << 2); err != nil {
			conn.Close()
			return nil, herr.New(herr.Error, "set IP_TOS to DSCP %d: %v", dscp, err)
		}
	}

	if multicastGroup != "" {
		group := net.ParseIP(multicastGroup)
		if group == nil {
			conn.Close()
			return nil, herr.New(herr.BadParameter, "invalid multicast group %q", multicastGroup)
		}
		ifaces, err := net.Interfaces()
		if err != nil {
			conn.Close()
			return nil, herr.New(herr.Error, "list interfaces: %v", err)
		}
		joined := false
		for _, iface := range ifaces {
			if iface.Flags&net.FlagMulticast == 0 || iface.Flags&net.FlagUp == 0 {
				continue
			}
			if err := pconn.JoinGroup(&iface, &net.UDPAddr{IP: group}); err == nil {
				joined = true
			}
		}
		if !joined {
			conn.Close()
			return nil, herr.New(herr.Error, "joined multicast group %s on no interface", multicastGroup)
		}
	}

	return &UDPTransport{
		conn:    conn,
		pconn:   pconn,
		locator: conn.LocalAddr().String(),
	}, nil
}

// Send writes payload to locator, a "host:port" string.
func (t *UDPTransport) Send(ctx context.Context, locator string, payload []byte) error {
	addr, err := net.ResolveUDPAddr("udp4", locator)
	if err != nil {
		return herr.New(herr.BadParameter, "resolve locator %q: %v", locator, err)
	}
	if _, err := t.conn.WriteToUDP(payload, addr); err != nil {
		return herr.New(herr.OutOfResources, "write to %s: %v", locator, err)
	}
	return nil
}

// Receive blocks until a datagram arrives or ctx is cancelled. The read
// deadline is driven off ctx so cancellation interrupts an in-flight read.
func (t *UDPTransport) Receive(ctx context.Context) (Datagram, error) {
	if dl, ok := ctx.Deadline(); ok {
		t.conn.SetReadDeadline(dl)
	} else {
		t.conn.SetReadDeadline(time.Time{})
	}

	buf := make([]byte, 65507)
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			t.conn.SetReadDeadline(time.Unix(0, 0))
		case <-done:
		}
	}()

	n, addr, err := t.conn.ReadFromUDP(buf)
	close(done)
	if err != nil {
		if ctx.Err() != nil {
			return Datagram{}, ctx.Err()
		}
		return Datagram{}, herr.New(herr.Error, "read udp: %v", err)
	}
	return Datagram{Locator: addr.String(), Payload: buf[:n]}, nil
}

// LocalLocator returns the "host:port" this socket is bound to.
func (t *UDPTransport) LocalLocator() string {
	return t.locator
}

// Close releases the underlying socket.
func (t *UDPTransport) Close() error {
	return t.conn.Close()
}
