package roomchat

// Error type for this package.
type ChatError uint

const (
    // Invalid token. The token was never issued or has already been removed
    // by the cleanup routine.
    InvalidToken ChatError = iota
    // The token was issued but its deadline has already passed.
    ExpiredToken
    // The requested room does not exist.
    InvalidRoom
    // A room with the requested name already exists.
    DuplicatedRoom
    // The username has already been registered.
    DuplicatedUser
    // The connection to the remote endpoint was closed.
    ConnEOF
    // A test waited for a message for too long.
    TestTimeout
)

func (c ChatError) Error() string {
    switch c {
    case InvalidToken:
        return "Token not found"
    case ExpiredToken:
        return "Token expired"
    case InvalidRoom:
        return "Room does not exist"
    case DuplicatedRoom:
        return "Room already exists"
    case DuplicatedUser:
        return "Username already exists"
    case ConnEOF:
        return "Connection closed by the remote endpoint"
    case TestTimeout:
        return "Test timed out waiting for a message"
    default:
        return "Unknown error"
    }
}
