package roomchat

import (
    "strings"
)

// Client commands.
const (
    CmdLogin = "LOGIN"
    CmdRegister = "REGISTER"
    CmdJoin = "JOIN"
    CmdCreate = "CREATE"
    CmdSend = "SEND"
    CmdList = "LIST"
    CmdQuit = "QUIT"
    CmdTokenAuth = "TOKEN_AUTH"
)

// Server responses.
const (
    RespLoginSuccess = "LOGIN_SUCCESS"
    RespLoginFailed = "LOGIN_FAILED"
    RespRegisterSuccess = "REGISTER_SUCCESS"
    RespRegisterFailed = "REGISTER_FAILED"
    RespJoined = "JOINED"
    RespRoomCreated = "ROOM_CREATED"
    RespRooms = "ROOMS"
    RespMessage = "MESSAGE"
    RespError = "ERROR"
    RespGoodbye = "GOODBYE"
    RespToken = "TOKEN"
    RespTokenAuthSuccess = "TOKEN_AUTH_SUCCESS"
    RespTokenAuthFailed = "TOKEN_AUTH_FAILED"
)

// User-facing error reasons.
const (
    errNotLoggedIn = "You must login first"
    errRoomExists = "Room already exists"
    errRoomNotExists = "Room does not exist"
    errNotInRoom = "You must join a room first"
    errInvalidCommand = "Invalid command format"
)

// parseCommand split a received line into at most 3 parts: the verb, the
// first argument and everything else. Keeping the tail unsplit preserves
// the spacing of SEND bodies.
func parseCommand(input string) []string {
    input = strings.TrimRight(input, "\r\n")
    if len(input) == 0 {
        return nil
    }

    return strings.SplitN(input, " ", 3)
}
