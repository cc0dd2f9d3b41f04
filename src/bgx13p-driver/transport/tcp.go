package transport

import (
	"fmt"
	"net"
	"time"
)

// TCPTransport wraps a net.Conn to a TCP socket fronting a serial link
// configured at 115200 8N1 on its far end (spec §6).
type TCPTransport struct {
	conn net.Conn
}

// DialTCP connects to a serial-bridge TCP endpoint.
func DialTCP(address string, dialTimeout time.Duration) (*TCPTransport, error) {
	conn, err := net.DialTimeout("tcp", address, dialTimeout)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %q: %w", address, err)
	}
	return &TCPTransport{conn: conn}, nil
}

// NewTCPTransportFromConn wraps an already-established connection, for
// callers that accept incoming bridge connections rather than dialing
// out (a BGX13P-over-TCP bridge can be configured either way).
func NewTCPTransportFromConn(conn net.Conn) *TCPTransport {
	return &TCPTransport{conn: conn}
}

func (t *TCPTransport) SetTimeouts(read, write time.Duration) error {
	now := time.Now()
	if err := t.conn.SetReadDeadline(now.Add(read)); err != nil {
		return fmt.Errorf("transport: set read deadline: %w", err)
	}
	if err := t.conn.SetWriteDeadline(now.Add(write)); err != nil {
		return fmt.Errorf("transport: set write deadline: %w", err)
	}
	return nil
}

func (t *TCPTransport) Read(buf []byte) (int, error) {
	return t.conn.Read(buf)
}

func (t *TCPTransport) Write(buf []byte) (int, error) {
	return t.conn.Write(buf)
}

func (t *TCPTransport) Close() error {
	return t.conn.Close()
}
