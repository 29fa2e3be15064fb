package roomchat

import (
    "time"
)

// MessageKind distinguishes regular chat messages from server-generated
// notices and direct messages.
type MessageKind int

const (
    // Chat is a regular message, posted by a user into a room.
    Chat MessageKind = iota
    // System is a server-generated notice, without a real sender.
    System
    // Private is a message directed at a single user.
    Private
)

// Message represent a single entry in a room's history, alongside its
// metadata. A Message is never modified after being built.
type Message struct {
    // From whom the message was sent. "System" for automatic messages.
    Sender string

    // Content received by (or generated on) the server.
    Content string

    // Room into which the message was posted.
    Room string

    // Date when the message was created by the server.
    Date time.Time

    // Kind of this message.
    Kind MessageKind
}

// newMessage build a message of the given `kind`, setting its `Date` to
// the current time and the other fields according to the arguments.
func newMessage(sender, content, room string, kind MessageKind) *Message {
    return &Message {
        Sender: sender,
        Content: content,
        Room: room,
        Date: time.Now(),
        Kind: kind,
    }
}

// Format the message into the string displayed to users.
func (m *Message) Format() string {
    t := m.Date.Format("15:04:05")

    switch m.Kind {
    case System:
        return "[" + t + "] *** " + m.Content + " ***"
    case Private:
        return "[" + t + "] (Private) " + m.Sender + ": " + m.Content
    default:
        return "[" + t + "] " + m.Sender + ": " + m.Content
    }
}

// FormatForTransmission encode the message into the line that is actually
// sent to remote clients, prefixed by the `MESSAGE` protocol token.
func (m *Message) FormatForTransmission() string {
    return RespMessage + " " + m.Format()
}
