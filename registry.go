package roomchat

import (
    "log"
    "sync"
)

// RoomManager is a concurrency-safe directory of every room on the server.
//
// Room names are unique and immutable; once created, a room lives for the
// whole process.
type RoomManager struct {
    // Every room, keyed by its unique name.
    rooms map[string]*ChatRoom

    // lock synchronizes access to `rooms`.
    lock sync.RWMutex

    // bot handed to AI-enabled rooms on creation.
    bot Bot

    // logger handed to rooms on creation. May be nil.
    logger *log.Logger

    // Whether debug messages should be logged.
    debugLog bool
}

// CreateRoom create a new room named `name`, failing with `DuplicatedRoom`
// if the name was already taken.
//
// The existence check and the creation happen under a single write
// section, so two concurrent creations of the same name never both
// succeed.
func (rm *RoomManager) CreateRoom(name string, aiEnabled bool) error {
    rm.lock.Lock()
    defer rm.lock.Unlock()

    if _, ok := rm.rooms[name]; ok {
        return DuplicatedRoom
    }
    rm.rooms[name] = newChatRoom(name, aiEnabled, rm.bot, rm.logger,
            rm.debugLog)

    if rm.debugLog && rm.logger != nil {
        rm.logger.Printf("[DEBUG] roomchat/registry: Room created.\n\troom: \"%s\"\n\tai: %+v",
                name, aiEnabled)
    }

    return nil
}

// GetRoom retrieve the room named `name`, failing with `InvalidRoom` if
// no such room exists.
func (rm *RoomManager) GetRoom(name string) (*ChatRoom, error) {
    rm.lock.RLock()
    defer rm.lock.RUnlock()

    room, ok := rm.rooms[name]
    if !ok {
        return nil, InvalidRoom
    }
    return room, nil
}

// RoomNames retrieve the name of every registered room, in no particular
// order.
func (rm *RoomManager) RoomNames() []string {
    rm.lock.RLock()
    defer rm.lock.RUnlock()

    names := make([]string, 0, len(rm.rooms))
    for name := range rm.rooms {
        names = append(names, name)
    }
    return names
}

// NewRoomManager create an empty room directory.
//
// `bot` is handed to AI-enabled rooms and may be nil.
func NewRoomManager(bot Bot, logger *log.Logger, debugLog bool) *RoomManager {
    return &RoomManager {
        rooms: make(map[string]*ChatRoom),
        bot: bot,
        logger: logger,
        debugLog: debugLog,
    }
}
