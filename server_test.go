package roomchat

import (
    "testing"
    "time"
)

// TestDefaultConf check that the default configuration carries the
// documented values.
func TestDefaultConf(t *testing.T) {
    conf := GetDefaultServerConf()

    if conf.TokenTTL != defTokenTTL {
        t.Errorf("Invalid default token TTL: want %v, got %v", defTokenTTL,
                conf.TokenTTL)
    } else if conf.TokenCleanupDelay != defTokenCleanupDelay {
        t.Errorf("Invalid default cleanup delay: want %v, got %v",
                defTokenCleanupDelay, conf.TokenCleanupDelay)
    }
}

// TestServerStartsWithDefaultRoom check that a new server always carries
// the default room, so clients have somewhere to talk right away.
func TestServerStartsWithDefaultRoom(t *testing.T) {
    s := NewServerConf(GetDefaultServerConf())
    defer s.Close()

    room, err := s.GetRoom(defRoomName)
    if err != nil {
        t.Fatalf("Couldn't get the default room: %+v", err)
    } else if room.Name() != defRoomName {
        t.Errorf("Invalid room name: want %s, got %s", defRoomName, room.Name())
    } else if room.AIEnabled() {
        t.Error("The default room shouldn't be AI-enabled")
    }

    names := s.RoomNames()
    if len(names) != 1 || names[0] != defRoomName {
        t.Errorf("Invalid room list: want [%s], got %v", defRoomName, names)
    }
}

// TestServerSweepsExpiredTokens check that the server's recurring sweep
// eventually removes tokens past their deadline.
func TestServerSweepsExpiredTokens(t *testing.T) {
    conf := GetDefaultServerConf()
    conf.TokenTTL = time.Millisecond * 5
    conf.TokenCleanupDelay = time.Millisecond * 10

    s := NewServerConf(conf)
    defer s.Close()

    token := s.Tokens().Generate("user")

    var err error
    for i := 0; i < 100; i++ {
        time.Sleep(time.Millisecond * 10)

        _, err = s.Tokens().Resolve(token)
        if err == InvalidToken {
            break
        }
    }

    // Once swept, the token is gone entirely instead of merely expired.
    if err != InvalidToken {
        t.Errorf("Token wasn't swept: want %v, got %v", InvalidToken, err)
    }
}

// TestServerCloseIdempotent check that closing the server multiple times
// is safe.
func TestServerCloseIdempotent(t *testing.T) {
    s := NewServerConf(GetDefaultServerConf())

    for i := 0; i < 3; i++ {
        err := s.Close()
        if err != nil {
            t.Fatalf("Couldn't close the server (attempt %d): %+v", i, err)
        }
    }
}
