// Package tls_conn implements the Conn interface from roomchat over a
// stream-oriented net.Conn, typically a TLS connection from crypto/tls.
//
// Messages are newline-terminated UTF-8 lines. Reads enforce the
// server-side idle timeout: a connection that stays silent for longer
// than the configured duration is closed.
package tls_conn

import (
    "bufio"
    "net"
    gochat "roomchat"
    "strings"
    "sync"
    "sync/atomic"
    "time"
)

// lineConn wrap a net.Conn into a gochat.Conn.
type lineConn struct {
    // The underlying (already established) connection.
    conn net.Conn

    // reader buffers the connection for line-oriented reads.
    reader *bufio.Reader

    // idleTimeout after which a silent connection is forcibly closed.
    // Zero disables the deadline.
    idleTimeout time.Duration

    // sendMutex synchronizes write operations on `conn`.
    sendMutex sync.Mutex

    // Whether the connection is currently active.
    active uint32
}

// isActive check if the connection is still active.
func (c *lineConn) isActive() bool {
    return atomic.LoadUint32(&c.active) == 1
}

// Close the connection.
//
// This can safely be called multiple times without any issue.
func (c *lineConn) Close() error {
    if atomic.CompareAndSwapUint32(&c.active, 1, 0) {
        c.conn.Close()
    }

    return nil
}

// Recv blocks until a new line was received, stripping its terminator.
//
// Every failure, the idle timeout included, closes the connection and is
// reported as `ConnEOF`: by then the session is over either way.
func (c *lineConn) Recv() (string, error) {
    if !c.isActive() {
        return "", gochat.ConnEOF
    }

    if c.idleTimeout > 0 {
        c.conn.SetReadDeadline(time.Now().Add(c.idleTimeout))
    }

    line, err := c.reader.ReadString('\n')
    if err != nil {
        c.Close()
        return "", gochat.ConnEOF
    }

    return strings.TrimRight(line, "\r\n"), nil
}

// SendStr send `msg` as a single newline-terminated line.
func (c *lineConn) SendStr(msg string) error {
    c.sendMutex.Lock()
    defer c.sendMutex.Unlock()

    if !c.isActive() {
        return gochat.ConnEOF
    }

    _, err := c.conn.Write([]byte(msg + "\n"))
    if err != nil {
        return gochat.ConnEOF
    }
    return nil
}

// NewConn wrap an established connection into a Chat Connection.
//
// `idleTimeout` is how long the remote endpoint may stay silent before
// the server closes the connection; zero disables the limit. This is the
// server-side knob only: how long a client waits before giving up on
// reconnecting is its own, independent allowance.
func NewConn(conn net.Conn, idleTimeout time.Duration) gochat.Conn {
    return &lineConn {
        conn: conn,
        reader: bufio.NewReader(conn),
        idleTimeout: idleTimeout,
        active: 1,
    }
}
