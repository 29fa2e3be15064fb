package roomchat

import (
    "sync/atomic"
    "time"
)

// A simple mock connection, used to test the chat server without an
// actual socket.
//
// Although the server uses the `Conn` API on this connection, tests must
// access this structure directly to simulate interactions.
//
// To simulate a line arriving from the client's remote endpoint, push it
// with `TestSend`:
//
//     mc := NewMockConn().(*mockConn)
//     /* Hand the connection to the server. */
//     mc.TestSend("LOGIN user pass")
//
// On the other hand, to simulate a client receiving a line, pop it with
// `TestRecv`, which fails with `TestTimeout` instead of hanging the test
// if the server stays quiet.
type mockConn struct {
    // fromClient simulates incoming messages (from the server's
    // perspective) from the client's remote endpoint. Therefore, tests
    // must push directly to this channel.
    fromClient chan string

    // fromServer simulates outgoing messages (from the server's
    // perspective) to the client's remote endpoint. Therefore, tests
    // must read directly from this channel.
    fromServer chan string

    // stop signals, by getting closed, that the connection was closed.
    stop chan struct{}

    // Whether the connection is currently running.
    running uint32
}

// isClosed check if the connection is closed.
func (mc *mockConn) isClosed() bool {
    return atomic.LoadUint32(&mc.running) == 0
}

// Close the connection.
//
// This can safely be called multiple times without any issue.
func (mc *mockConn) Close() error {
    if atomic.CompareAndSwapUint32(&mc.running, 1, 0) {
        close(mc.stop)
    }
    return nil
}

// Recv blocks until a new message was received.
func (mc *mockConn) Recv() (string, error) {
    select {
    case msg := <-mc.fromClient:
        return msg, nil
    case <-mc.stop:
        return "", ConnEOF
    }
}

// SendStr send `msg`, previously formatted by the caller.
func (mc *mockConn) SendStr(msg string) error {
    if mc.isClosed() {
        return ConnEOF
    }

    select {
    case mc.fromServer <- msg:
        return nil
    case <-mc.stop:
        return ConnEOF
    }
}

// TestSend send a message from the client to the server.
func (mc *mockConn) TestSend(msg string) error {
    if mc.isClosed() {
        return ConnEOF
    }

    select {
    case mc.fromClient <- msg:
        return nil
    case <-mc.stop:
        return ConnEOF
    }
}

// TestRecv wait for `timeout` to receive a message from the server.
//
// Messages buffered before the connection got closed are still
// delivered, so a test may read everything sent up to a `GOODBYE`.
func (mc *mockConn) TestRecv(timeout time.Duration) (string, error) {
    select {
    case msg := <-mc.fromServer:
        return msg, nil
    default:
    }

    select {
    case msg := <-mc.fromServer:
        return msg, nil
    case <-time.After(timeout):
        return "", TestTimeout
    case <-mc.stop:
        return "", ConnEOF
    }
}

// NewMockConn create a dummy, mock connection that may be used in tests.
func NewMockConn() Conn {
    return &mockConn {
        fromClient: make(chan string),
        fromServer: make(chan string, 100),
        stop: make(chan struct{}),
        running: 1,
    }
}
