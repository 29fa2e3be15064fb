package roomchat

import (
    "io"
)

// Conn is a generic interface for sending and receiving messages.
//
// The chat server only requires a bidirectional, line-oriented stream of
// text messages. How that stream is obtained (a TLS socket, a WebSocket,
// a mock...) is entirely up to the transport adapter.
type Conn interface {
    io.Closer

    // Recv blocks until a new message was received.
    //
    // Implementations should enforce their read-idle timeout here and
    // report any failure, timeouts included, as `ConnEOF`.
    Recv() (string, error)

    // SendStr send `msg`, previously formatted by the caller.
    //
    // SendStr may be called concurrently by different goroutines, so
    // implementations must synchronize their writes.
    SendStr(msg string) error
}
