// Package gorilla_ws_conn implements the Conn interface from roomchat
// over a WebSocket connection from https://github.com/gorilla/websocket.
//
// Each chat line travels as one text frame. The server-side idle timeout
// is enforced with a read deadline that is pushed forward on every
// received frame, pings and pongs included, so an idle-but-alive browser
// tab only has to keep the WebSocket keepalive going.
package gorilla_ws_conn

import (
    gows "github.com/gorilla/websocket"
    "net/http"
    gochat "roomchat"
    "sync"
    "sync/atomic"
    "time"
)

// gwsConn wrap a gorilla/ws connection into a gochat.Conn.
type gwsConn struct {
    // The gorilla WebSocket connection.
    conn *gows.Conn

    // idleTimeout after which a silent connection is forcibly closed.
    // Zero disables the deadline.
    idleTimeout time.Duration

    // sendMutex synchronizes write operations on `conn`.
    sendMutex sync.Mutex

    // Whether the connection is currently active.
    active uint32
}

// isActive check if the connection is still active.
func (c *gwsConn) isActive() bool {
    return atomic.LoadUint32(&c.active) == 1
}

// Close the connection.
//
// This can safely be called multiple times without any issue.
func (c *gwsConn) Close() error {
    if atomic.CompareAndSwapUint32(&c.active, 1, 0) {
        c.conn.Close()
    }

    return nil
}

// extendDeadline push the read deadline forward by the idle timeout.
//
// This must be called whenever this connection receives anything from
// its remote endpoint.
func (c *gwsConn) extendDeadline() {
    if c.idleTimeout > 0 {
        c.conn.SetReadDeadline(time.Now().Add(c.idleTimeout))
    }
}

// Recv blocks until a new text frame was received.
//
// Control frames and non-text frames extend the deadline and are
// otherwise skipped. A read failure (the exceeded deadline included)
// leaves the WebSocket unusable, so the connection is closed and the
// failure reported as `ConnEOF`.
func (c *gwsConn) Recv() (string, error) {
    c.extendDeadline()

    for c.isActive() {
        typ, txt, err := c.conn.ReadMessage()
        if err != nil {
            c.Close()
            return "", gochat.ConnEOF
        }

        c.extendDeadline()

        switch typ {
        case gows.CloseMessage:
            c.Close()
            return "", gochat.ConnEOF
        case gows.TextMessage:
            return string(txt), nil
        default:
            continue
        }
    }

    return "", gochat.ConnEOF
}

// SendStr send `msg` as a single text frame.
func (c *gwsConn) SendStr(msg string) error {
    c.sendMutex.Lock()
    defer c.sendMutex.Unlock()

    if !c.isActive() {
        return gochat.ConnEOF
    }

    err := c.conn.WriteMessage(gows.TextMessage, []byte(msg))
    if err != nil {
        return gochat.ConnEOF
    }
    return nil
}

// ping handle received ping messages.
//
// The WebSocket protocol defines that the receiver must respond with a
// pong carrying the same `appData`. A custom handler is used both to
// synchronize that write with regular messages and to count the ping as
// activity on the connection.
func (c *gwsConn) ping(appData string) error {
    c.extendDeadline()

    c.sendMutex.Lock()
    defer c.sendMutex.Unlock()
    if !c.isActive() {
        return gochat.ConnEOF
    }
    return c.conn.WriteMessage(gows.PongMessage, []byte(appData))
}

// pong handle received pong messages, counting them as activity.
func (c *gwsConn) pong(appData string) error {
    c.extendDeadline()
    return nil
}

// Upgrade a HTTP connection to a Chat Connection.
//
// The supplied `upgrader` is used to upgrade the HTTP request into a
// WebSocket connection. `idleTimeout` is how long the remote endpoint
// may stay completely silent (no frames of any kind) before the server
// closes the connection; zero disables the limit.
func NewConn(upgrader gows.Upgrader, idleTimeout time.Duration,
        w http.ResponseWriter, req *http.Request) (gochat.Conn, error) {

    conn, err := upgrader.Upgrade(w, req, nil)
    if err != nil {
        return nil, err
    }

    c := &gwsConn {
        conn: conn,
        idleTimeout: idleTimeout,
        active: 1,
    }
    conn.SetPingHandler(c.ping)
    conn.SetPongHandler(c.pong)

    return c, nil
}
