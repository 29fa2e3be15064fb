package roomchat

import (
    "log"
    "strings"
)

// clientHandler drives the protocol state machine of a single connection.
//
// A handler starts unauthenticated, becomes authenticated after a
// successful LOGIN or TOKEN_AUTH, and may then hold a current room. It is
// owned by exactly one goroutine (the one running `handle`), so its own
// fields need no synchronization; all shared state lives in the managers.
type clientHandler struct {
    // The connection to the remote endpoint.
    conn Conn

    // auth verifies and registers credentials.
    auth Authenticator

    // rooms is the server-wide room directory.
    rooms *RoomManager

    // tokens is the server-wide session store.
    tokens *TokenManager

    // logger used by the handler to report events. May be nil.
    logger *log.Logger

    // Whether debug messages should be logged.
    debugLog bool

    // username of the authenticated user. Empty until login succeeds.
    username string

    // current room, if the user has joined one.
    current *ChatRoom

    // Whether this session was resumed from a token rather than a login.
    tokenAuthenticated bool
}

// handle run the session until the connection closes, then release every
// resource held by it.
//
// Any receive failure (remote close, I/O error or the transport's
// read-idle timeout) ends the loop; the user is then removed from their
// current room so other connections are never affected.
func (h *clientHandler) handle() {
    h.send("Welcome to the chat server")
    h.send("Please login with: LOGIN username password")
    h.send("Or login with token: TOKEN_AUTH token")
    h.send("Or register with: REGISTER username password")

    for {
        line, err := h.conn.Recv()
        if err != nil {
            break
        }

        h.processCommand(line)
    }

    h.cleanup()
}

// send a single line to the remote endpoint, logging any failure.
func (h *clientHandler) send(msg string) {
    err := h.conn.SendStr(msg)
    if err != nil && h.debugLog && h.logger != nil {
        h.logger.Printf("[DEBUG] roomchat/handler: Couldn't send a reply.\n\tuser: \"%s\"\n\terror: %+v",
                h.username, err)
    }
}

// sendError report a non-fatal failure to the remote endpoint.
func (h *clientHandler) sendError(reason string) {
    h.send(RespError + " " + reason)
}

// processCommand dispatch a single received line.
//
// Unrecognized input from a user that is logged in and inside a room is
// treated as an implicit SEND of the whole line.
func (h *clientHandler) processCommand(command string) {
    parts := parseCommand(command)
    if len(parts) == 0 {
        return
    }

    switch strings.ToUpper(parts[0]) {
    case CmdLogin:
        h.handleLogin(parts)
    case CmdRegister:
        h.handleRegister(parts)
    case CmdJoin:
        h.handleJoin(parts)
    case CmdCreate:
        h.handleCreate(parts)
    case CmdSend:
        h.handleSend(parts)
    case CmdList:
        h.handleList()
    case CmdQuit:
        h.handleQuit()
    case CmdTokenAuth:
        h.handleTokenAuth(parts)
    case "HELP", "?":
        h.handleHelp()
    default:
        if h.username != "" && h.current != nil {
            h.handleSend([]string{CmdSend, command})
        } else {
            h.sendError("Unknown command")
        }
    }
}

// handleHelp list every available command.
func (h *clientHandler) handleHelp() {
    h.send("=== AVAILABLE COMMANDS ===")
    h.send("REGISTER <username> <password>  - Register a new user account")
    h.send("LOGIN <username> <password>     - Login with existing account")
    h.send("LIST                            - List all available chat rooms")
    h.send("CREATE <roomname>               - Create a new regular chat room")
    h.send("CREATE ai:<roomname>            - Create a new AI-enabled chat room")
    h.send("JOIN <roomname>                 - Join an existing chat room")
    h.send("TOKEN_AUTH <token>              - Authenticate using a session token")
    h.send("QUIT                            - Exit the chat client")
    h.send("HELP or ?                       - Show this help message")
    h.send("===========================")
}

// handleLogin authenticate the user, issue their session token and list
// the available rooms.
func (h *clientHandler) handleLogin(parts []string) {
    if len(parts) < 3 {
        h.sendError(errInvalidCommand)
        return
    }

    username := parts[1]
    password := parts[2]

    if !h.auth.Authenticate(username, password) {
        h.send(RespLoginFailed + ": Invalid username or password")
        return
    }

    h.username = username
    token := h.tokens.Generate(username)
    h.send(RespLoginSuccess)
    h.send(RespToken + " " + token)
    h.handleList()
}

// handleRegister create a new account.
func (h *clientHandler) handleRegister(parts []string) {
    if len(parts) < 3 {
        h.sendError(errInvalidCommand)
        return
    }

    if h.auth.Register(parts[1], parts[2]) {
        h.send(RespRegisterSuccess)
    } else {
        h.send(RespRegisterFailed + ": Username already exists")
    }
}

// handleJoin move the user into the requested room, leaving their current
// one, and replay the new room's history to this connection only.
func (h *clientHandler) handleJoin(parts []string) {
    if h.username == "" {
        h.sendError(errNotLoggedIn)
        return
    }
    if len(parts) < 2 {
        h.sendError(errInvalidCommand)
        return
    }

    roomName := parts[1]

    if h.current != nil {
        h.current.Leave(h.username)
        h.current = nil
    }

    room, err := h.rooms.GetRoom(roomName)
    if err != nil {
        h.sendError(errRoomNotExists)
        return
    }

    h.current = room
    h.tokens.SetCurrentRoom(h.username, roomName)
    h.enterRoom(room)
}

// enterRoom join `room`, report it and replay its history.
func (h *clientHandler) enterRoom(room *ChatRoom) {
    history := room.Join(h.username, h.conn)
    h.send(RespJoined + ": " + room.Name())

    for _, msg := range history {
        h.send(msg.FormatForTransmission())
    }
}

// handleCreate register a new room, AI-enabled if the name carries the
// "ai:" prefix (which is stripped from the stored name).
func (h *clientHandler) handleCreate(parts []string) {
    if h.username == "" {
        h.sendError(errNotLoggedIn)
        return
    }
    if len(parts) < 2 {
        h.sendError(errInvalidCommand)
        return
    }

    roomName := parts[1]
    aiEnabled := strings.HasPrefix(roomName, "ai:")
    if aiEnabled {
        roomName = strings.TrimPrefix(roomName, "ai:")
    }

    err := h.rooms.CreateRoom(roomName, aiEnabled)
    if err != nil {
        h.sendError(errRoomExists)
        return
    }

    if aiEnabled {
        h.send(RespRoomCreated + ": " + roomName + " (AI)")
    } else {
        h.send(RespRoomCreated + ": " + roomName)
    }
}

// handleSend post the message body into the user's current room.
func (h *clientHandler) handleSend(parts []string) {
    if h.username == "" {
        h.sendError(errNotLoggedIn)
        return
    }
    if h.current == nil {
        h.sendError(errNotInRoom)
        return
    }
    if len(parts) < 2 {
        h.sendError(errInvalidCommand)
        return
    }

    h.current.Post(h.username, strings.Join(parts[1:], " "))
}

// handleList report every room name, comma-joined.
func (h *clientHandler) handleList() {
    if h.username == "" {
        h.sendError(errNotLoggedIn)
        return
    }

    h.send(RespRooms + " " + strings.Join(h.rooms.RoomNames(), ","))
}

// handleQuit say goodbye and close the connection; the receive loop then
// runs the regular cleanup.
func (h *clientHandler) handleQuit() {
    h.send(RespGoodbye)
    h.conn.Close()
}

// handleTokenAuth resume a session from a previously issued token.
//
// The two failure modes are reported distinctly, so clients can tell a
// mistyped token from one that merely expired. On success, if the user
// has a resumable room, they silently rejoin it and get its history
// replayed; otherwise they get the room list, as after a regular login.
func (h *clientHandler) handleTokenAuth(parts []string) {
    if len(parts) < 2 {
        h.sendError(errInvalidCommand)
        return
    }

    username, err := h.tokens.Resolve(parts[1])
    switch err {
    case nil:
        break
    case ExpiredToken:
        h.send(RespTokenAuthFailed + ": Token expired.")
        return
    default:
        h.send(RespTokenAuthFailed + ": Token not found.")
        return
    }

    h.username = username
    h.tokenAuthenticated = true
    h.send(RespTokenAuthSuccess)
    h.send("Welcome back, " + username + "!")

    if roomName, ok := h.tokens.CurrentRoom(username); ok {
        room, err := h.rooms.GetRoom(roomName)
        if err == nil {
            h.current = room
            h.enterRoom(room)
            return
        }
    }

    h.handleList()
}

// cleanup release everything held by this session: its room membership,
// if any, and the connection itself.
//
// cleanup may safely run more than once.
func (h *clientHandler) cleanup() {
    if h.current != nil && h.username != "" {
        h.current.Leave(h.username)
        h.current = nil
    }

    h.conn.Close()
}
