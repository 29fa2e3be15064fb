/*
Package roomchat implements a multi-room, transport-agnostic chat server
with password and token authentication.

The server is divided into a few components:

 - `ChatServer`: the interface for the actual server
 - `ChatRoom`: a named room with membership, broadcast and bounded history
 - `RoomManager`: the directory of every room
 - `TokenManager`: the session store for reconnection tokens
 - `Authenticator`: the credential backend (a file-backed one is provided)
 - `Bot`: the reply generator used by AI-enabled rooms
 - `Conn`: a line-oriented connection to the remote client

Internally there's also the client handler, which is never exported by
the API. It consumes commands from a `Conn`, one line at a time, and
drives the protocol state machine: unauthenticated, authenticated, and
authenticated inside a room.

To start a server, build a configuration and hand it to `NewServerConf`:

    users, err := roomchat.NewFileUserStore("data/users.txt", logger)
    if err != nil {
        // Handle the error
    }

    conf := roomchat.GetDefaultServerConf()
    conf.Auth = users
    server := roomchat.NewServerConf(conf)

Instantiating the server starts its sweep goroutine, which periodically
removes expired session tokens; call `server.Close()` to stop it.

The server doesn't accept connections by itself. Whatever listens (a TLS
listener, an HTTP server upgrading to WebSockets...) wraps each accepted
connection in a `Conn` and hands it over:

    go server.Handle(conn)

From that point on the remote endpoint talks the chat protocol: LOGIN,
REGISTER, TOKEN_AUTH, CREATE, JOIN, SEND, LIST, QUIT and HELP. Messages
posted into a room are recorded in its bounded history and broadcast to
every member, each delivery on its own goroutine so no slow client can
hold up the others. Joining a room replays its history to the joining
connection only.

A successful LOGIN returns an opaque session token, valid for 3000
seconds, that a dropped client may present through TOKEN_AUTH to resume
its session without a password, rejoining the room it was last in.

Rooms created with the "ai:" name prefix additionally request a reply
from the configured `Bot` after every chat message, posting the answer
back into the room as the "Bot" user.

The subpackage `tls-conn` adapts a `net.Conn` (typically TLS) into a
`Conn`; `gorilla-ws-conn` does the same for a gorilla/websocket
connection. `conn_test.go` implements `mockConn`, which uses chan string
to send and receive messages in tests.
*/
package roomchat
