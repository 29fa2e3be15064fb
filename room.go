package roomchat

import (
    "log"
    "strings"
    "sync"
)

// maxHistorySize bounds how many messages a room remembers for replay.
const maxHistorySize = 100

// systemSender is the sender recorded on server-generated notices.
const systemSender = "System"

// A chat room, to which authenticated users may connect.
//
// The room owns two independently locked structures: the membership map
// (username to output sink) and the bounded message history. On top of
// those, `order` serializes the append+fan-out sequence, so the history
// order is a total order per room and a join may snapshot the history and
// register its sink without any gap or duplicate relative to concurrent
// broadcasts.
type ChatRoom struct {
    // name of this room.
    name string

    // aiEnabled marks rooms that request an automatic reply after each
    // chat message.
    aiEnabled bool

    // Output sink of every user currently in this room.
    clients map[string]Conn

    // Every message posted into this room, oldest first, bounded by
    // `maxHistorySize`.
    history []*Message

    // clientsLock synchronizes access to `clients`.
    clientsLock sync.RWMutex

    // historyLock synchronizes access to `history`.
    historyLock sync.RWMutex

    // order serializes events (join/leave/post), keeping the history
    // append and the broadcast dispatch of each event atomic relative to
    // other events on this room.
    order sync.Mutex

    // bot generates the automatic replies of AI-enabled rooms. May be nil.
    bot Bot

    // logger used by the room to report events. If this is nil, no
    // message shall be logged!
    logger *log.Logger

    // Whether debug messages should be logged.
    debugLog bool
}

// Name retrieve the room's name.
func (c *ChatRoom) Name() string {
    return c.name
}

// AIEnabled report whether this room requests automatic replies.
func (c *ChatRoom) AIEnabled() bool {
    return c.aiEnabled
}

// append the message to the history, evicting the oldest entry if the
// room's capacity was exceeded.
func (c *ChatRoom) append(msg *Message) {
    c.historyLock.Lock()
    c.history = append(c.history, msg)
    if len(c.history) > maxHistorySize {
        c.history = c.history[1:]
    }
    c.historyLock.Unlock()
}

// broadcast the message to every user currently in the room.
//
// Each delivery runs on its own goroutine, so a slow or broken sink never
// delays the other members nor the caller. A failed delivery is only
// logged; membership is cleaned up by the owning connection session.
func (c *ChatRoom) broadcast(msg *Message) {
    txt := msg.FormatForTransmission()

    c.clientsLock.RLock()
    for username, conn := range c.clients {
        go func(username string, conn Conn) {
            err := conn.SendStr(txt)
            if err != nil && c.logger != nil {
                c.logger.Printf("[ERROR] roomchat/room: Couldn't send a message to the user.\n\troom: \"%s\"\n\tusername: \"%s\"\n\terror: %+v",
                        c.name, username, err)
            }
        } (username, conn)
    }
    c.clientsLock.RUnlock()
}

// Join register `conn` as the output sink of `username`, overwriting any
// previous sink for that user, and announce the user to the room.
//
// Join returns a snapshot of the history right before the user joined,
// oldest message first, which the caller should replay to this connection
// only. The snapshot and the membership update happen under a single
// critical section, so the replay plus the subsequent live broadcasts are
// gap-free and duplicate-free. The join notice itself is not part of the
// snapshot: it is delivered live, to the joining user as well.
//
// If `conn` is nil, then this function will panic!
func (c *ChatRoom) Join(username string, conn Conn) []*Message {
    if conn == nil {
        panic("roomchat/room Join: nil conn")
    }

    c.order.Lock()
    snapshot := c.History()

    c.clientsLock.Lock()
    c.clients[username] = conn
    c.clientsLock.Unlock()

    msg := newMessage(systemSender, username + " has joined the room", c.name, System)
    c.append(msg)
    c.broadcast(msg)
    c.order.Unlock()

    if c.debugLog && c.logger != nil {
        c.logger.Printf("[DEBUG] roomchat/room: User joined.\n\troom: \"%s\"\n\tuser: \"%s\"",
                c.name, username)
    }

    return snapshot
}

// Leave remove `username` from the room and announce the departure.
//
// The notice is broadcast even if the user wasn't in the room, mirroring
// the unconditional behavior this service has always had.
func (c *ChatRoom) Leave(username string) {
    c.order.Lock()
    c.clientsLock.Lock()
    delete(c.clients, username)
    c.clientsLock.Unlock()

    msg := newMessage(systemSender, username + " has left the room", c.name, System)
    c.append(msg)
    c.broadcast(msg)
    c.order.Unlock()

    if c.debugLog && c.logger != nil {
        c.logger.Printf("[DEBUG] roomchat/room: User left.\n\troom: \"%s\"\n\tuser: \"%s\"",
                c.name, username)
    }
}

// Post a chat message from `sender` into the room, recording it in the
// history and broadcasting it to every member.
//
// On AI-enabled rooms, posting also requests an automatic reply on a
// detached goroutine; neither the request nor its failure ever delays or
// affects the poster.
func (c *ChatRoom) Post(sender, content string) {
    msg := newMessage(sender, content, c.name, Chat)

    c.order.Lock()
    c.append(msg)
    c.broadcast(msg)
    c.order.Unlock()

    // The bot's own posts must not request yet another reply.
    if c.aiEnabled && c.bot != nil && sender != BotSender {
        go c.askBot()
    }
}

// History retrieve a point-in-time copy of the room's history, oldest
// message first.
func (c *ChatRoom) History() []*Message {
    c.historyLock.RLock()
    snapshot := make([]*Message, len(c.history))
    copy(snapshot, c.history)
    c.historyLock.RUnlock()

    return snapshot
}

// Users retrieve the name of every user currently in this room.
func (c *ChatRoom) Users() []string {
    var list []string

    c.clientsLock.RLock()
    for k := range c.clients {
        list = append(list, k)
    }
    c.clientsLock.RUnlock()

    return list
}

// askBot request an automatic reply for the current conversation and post
// it as the bot user.
//
// The prompt is the entire history at the time of the call, one
// "sender: content" line per message. A failed request is posted as the
// bot's reply (so the room learns about it) instead of being raised.
func (c *ChatRoom) askBot() {
    var prompt strings.Builder
    for _, msg := range c.History() {
        prompt.WriteString(msg.Sender)
        prompt.WriteString(": ")
        prompt.WriteString(msg.Content)
        prompt.WriteString("\n")
    }

    reply, err := c.bot.Ask(prompt.String())
    if err != nil {
        if c.logger != nil {
            c.logger.Printf("[ERROR] roomchat/room: Couldn't get a reply from the bot.\n\troom: \"%s\"\n\terror: %+v",
                    c.name, err)
        }
        reply = "Error getting response from Bot: " + err.Error()
    }

    c.Post(BotSender, reply)
}

// newChatRoom create a new room named `name`.
//
// `bot` is only used on AI-enabled rooms and may be nil, in which case no
// automatic reply is ever requested.
func newChatRoom(name string, aiEnabled bool, bot Bot, logger *log.Logger,
        debugLog bool) *ChatRoom {
    return &ChatRoom {
        name: name,
        aiEnabled: aiEnabled,
        clients: make(map[string]Conn),
        bot: bot,
        logger: logger,
        debugLog: debugLog,
    }
}
