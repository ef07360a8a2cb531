package testutil

import (
	"fmt"
	"net"
	"strings"
	"testing"
	"time"
)

// TelnetClient is a line-oriented Telnet client for integration tests.
// Output read past a match is kept for the next ReadUntil.
type TelnetClient struct {
	t       *testing.T
	conn    net.Conn
	pending string
}

// NewTelnetClient dials addr and registers cleanup with t.
//
// Precondition: addr must be a "host:port" with a listening server.
// Postcondition: Returns a connected TelnetClient or fails the test.
func NewTelnetClient(t *testing.T, addr string) *TelnetClient {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		t.Fatalf("connecting to %s: %v", addr, err)
	}
	t.Cleanup(func() { conn.Close() })
	return &TelnetClient{t: t, conn: conn}
}

// ReadUntil reads until substr appears and returns everything up to and
// including it.
//
// Precondition: substr must be non-empty.
// Postcondition: Fails the test if substr does not arrive within timeout.
func (c *TelnetClient) ReadUntil(substr string, timeout time.Duration) string {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(timeout))

	buf := c.pending
	tmp := make([]byte, 1024)
	for {
		if i := strings.Index(buf, substr); i >= 0 {
			end := i + len(substr)
			c.pending = buf[end:]
			return buf[:end]
		}
		n, err := c.conn.Read(tmp)
		buf += string(tmp[:n])
		if err != nil && !strings.Contains(buf, substr) {
			c.t.Fatalf("reading until %q: got %q: %v", substr, buf, err)
		}
	}
}

// Send writes text followed by \r\n.
func (c *TelnetClient) Send(text string) {
	c.t.Helper()
	_ = c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\r\n", text); err != nil {
		c.t.Fatalf("sending %q: %v", text, err)
	}
}

// Close closes the connection.
func (c *TelnetClient) Close() {
	c.conn.Close()
}
