package roomchat

import (
    "io"
    "log"
    "sync/atomic"
    "time"
)

// Delay between executions of the token cleanup routine.
const defTokenCleanupDelay = time.Minute * 5

// defRoomName is created on every new server, so clients always have
// somewhere to talk.
const defRoomName = "General"

// ServerConf groups every configurable behavior of the chat server.
type ServerConf struct {
    // Auth verifies and registers credentials. Required.
    Auth Authenticator

    // Bot generates automatic replies on AI-enabled rooms. Optional; if
    // nil, AI-enabled rooms behave as regular ones.
    Bot Bot

    // TokenTTL is for how long session tokens remain valid. Defaults to
    // 3000 seconds.
    TokenTTL time.Duration

    // TokenCleanupDelay is the delay between sweeps of expired tokens.
    // Defaults to 5 minutes.
    TokenCleanupDelay time.Duration

    // Logger used by the server and everything it creates to report
    // events. If this is nil, no message shall be logged!
    Logger *log.Logger

    // Whether debug messages should be logged.
    DebugLog bool
}

// GetDefaultServerConf retrieve the default configurations, which may be
// modified before being supplied to `NewServerConf`.
func GetDefaultServerConf() ServerConf {
    return ServerConf {
        TokenTTL: defTokenTTL,
        TokenCleanupDelay: defTokenCleanupDelay,
    }
}

// The chat server.
type server struct {
    // conf with which the server was created.
    conf ServerConf

    // rooms is the server-wide room directory.
    rooms *RoomManager

    // tokens is the server-wide session store.
    tokens *TokenManager

    // Whether the chat server is currently running.
    running uint32

    // stop signals, by getting closed, that the sweep goroutine should
    // stop.
    stop chan struct{}
}

// The public interface of the chat server.
type ChatServer interface {
    io.Closer

    // Handle run the session of a single connection to completion.
    //
    // Handle blocks until the remote endpoint disconnects, times out or
    // quits, so listener loops should call it on a dedicated goroutine,
    // one per accepted connection.
    Handle(conn Conn)

    // CreateRoom create a new room, failing with `DuplicatedRoom` if the
    // name was already taken.
    CreateRoom(name string, aiEnabled bool) error

    // GetRoom retrieve a room by name, failing with `InvalidRoom`.
    GetRoom(name string) (*ChatRoom, error)

    // RoomNames retrieve the name of every registered room.
    RoomNames() []string

    // Tokens retrieve the server's session store, so embedding servers
    // may issue or inspect tokens out of band.
    Tokens() *TokenManager
}

// Handle run the session of a single connection to completion.
//
// See `ChatServer.Handle` for a more complete description.
func (s *server) Handle(conn Conn) {
    h := &clientHandler {
        conn: conn,
        auth: s.conf.Auth,
        rooms: s.rooms,
        tokens: s.tokens,
        logger: s.conf.Logger,
        debugLog: s.conf.DebugLog,
    }

    h.handle()
}

// CreateRoom create a new room named `name`.
func (s *server) CreateRoom(name string, aiEnabled bool) error {
    return s.rooms.CreateRoom(name, aiEnabled)
}

// GetRoom retrieve the room named `name`.
func (s *server) GetRoom(name string) (*ChatRoom, error) {
    return s.rooms.GetRoom(name)
}

// RoomNames retrieve the name of every registered room.
func (s *server) RoomNames() []string {
    return s.rooms.RoomNames()
}

// Tokens retrieve the server's session store.
func (s *server) Tokens() *TokenManager {
    return s.tokens
}

// sweep expired tokens periodically, until the server gets closed.
//
// The session store itself never schedules anything; the server owns the
// recurring timer and simply invokes the store's cleanup.
func (s *server) sweep() {
    ticker := time.NewTicker(s.conf.TokenCleanupDelay)
    defer ticker.Stop()

    for {
        select {
        case <-s.stop:
            return
        case now := <-ticker.C:
            s.tokens.Cleanup(now)
        }
    }
}

// Close the server, stopping its sweep goroutine.
//
// This can safely be called multiple times (and from multiple goroutines),
// as it will only run on the first call. Sessions already running are not
// interrupted; closing their connections is the listener's business.
func (s *server) Close() error {
    if atomic.CompareAndSwapUint32(&s.running, 1, 0) {
        close(s.stop)
    }

    return nil
}

// NewServerConf create a new chat server from the supplied configuration.
//
// The server starts with a single room, "General", and with its token
// sweep goroutine already running. Call `Close()` to stop that goroutine.
func NewServerConf(conf ServerConf) ChatServer {
    if conf.TokenTTL <= 0 {
        conf.TokenTTL = defTokenTTL
    }
    if conf.TokenCleanupDelay <= 0 {
        conf.TokenCleanupDelay = defTokenCleanupDelay
    }

    s := &server {
        conf: conf,
        rooms: NewRoomManager(conf.Bot, conf.Logger, conf.DebugLog),
        tokens: NewTokenManager(conf.TokenTTL),
        running: 1,
        stop: make(chan struct{}),
    }

    s.rooms.CreateRoom(defRoomName, false)

    go s.sweep()

    return s
}
