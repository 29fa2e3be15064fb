package roomchat

import (
    "testing"
    "time"
)

// TestTokenLifecycle check the three-way resolution of a session token:
// unknown, valid and expired, plus its removal by the cleanup routine.
func TestTokenLifecycle(t *testing.T) {
    const ttl = time.Millisecond * 20

    tm := NewTokenManager(ttl)

    // A token that was never issued.
    _, err := tm.Resolve("no-such-token")
    if want, got := InvalidToken, err; want != got {
        t.Errorf("Invalid error! Expected '%+v' but got '%+v'", want, got)
    }

    // A valid token.
    tk := tm.Generate("user")
    username, err := tm.Resolve(tk)
    if err != nil {
        t.Errorf("Couldn't resolve a token before it expired: %+v", err)
    } else if want, got := "user", username; want != got {
        t.Errorf("Invalid user retrieved: expected '%s' but got '%s'", want, got)
    }

    // The same token, past its deadline but not yet swept.
    time.Sleep(ttl + ttl / 2)
    _, err = tm.Resolve(tk)
    if want, got := ExpiredToken, err; want != got {
        t.Errorf("Invalid error! Expected '%+v' but got '%+v'", want, got)
    }

    // The same token, after the sweep.
    tm.Cleanup(time.Now())
    _, err = tm.Resolve(tk)
    if want, got := InvalidToken, err; want != got {
        t.Errorf("Invalid error! Expected '%+v' but got '%+v'", want, got)
    }
}

// TestCleanupRemovesOnlyExpired check that a sweep at a given time
// removes exactly the tokens already past their deadline.
func TestCleanupRemovesOnlyExpired(t *testing.T) {
    const ttl = time.Millisecond * 20

    tm := NewTokenManager(ttl)

    oldTk := tm.Generate("older")
    time.Sleep(ttl + ttl / 2)
    newTk := tm.Generate("newer")

    tm.Cleanup(time.Now())

    _, err := tm.Resolve(oldTk)
    if want, got := InvalidToken, err; want != got {
        t.Errorf("Invalid error! Expected '%+v' but got '%+v'", want, got)
    }

    username, err := tm.Resolve(newTk)
    if err != nil {
        t.Errorf("Sweep removed a token that hadn't expired: %+v", err)
    } else if want, got := "newer", username; want != got {
        t.Errorf("Invalid user retrieved: expected '%s' but got '%s'", want, got)
    }
}

// TestGenerateKeepsPreviousToken check that issuing a new token for a
// user does not revoke their previous one: both stay resolvable until
// their own deadlines.
func TestGenerateKeepsPreviousToken(t *testing.T) {
    tm := NewTokenManager(time.Minute)

    tk1 := tm.Generate("user")
    tk2 := tm.Generate("user")
    if tk1 == tk2 {
        t.Error("Generate returned the same token twice")
    }

    for _, tk := range []string{tk1, tk2} {
        username, err := tm.Resolve(tk)
        if err != nil {
            t.Errorf("Couldn't resolve the token '%s': %+v", tk, err)
        } else if want, got := "user", username; want != got {
            t.Errorf("Invalid user retrieved: expected '%s' but got '%s'", want, got)
        }
    }
}

// TestCurrentRoom check the last-room bookkeeping used by session
// resumption.
func TestCurrentRoom(t *testing.T) {
    tm := NewTokenManager(time.Minute)

    _, ok := tm.CurrentRoom("user")
    if ok {
        t.Error("Retrieved a room for a user that never joined one")
    }

    tm.SetCurrentRoom("user", "General")
    room, ok := tm.CurrentRoom("user")
    if !ok {
        t.Error("Couldn't retrieve the user's last room")
    } else if want, got := "General", room; want != got {
        t.Errorf("Invalid room retrieved: expected '%s' but got '%s'", want, got)
    }

    tm.SetCurrentRoom("user", "Other")
    room, _ = tm.CurrentRoom("user")
    if want, got := "Other", room; want != got {
        t.Errorf("Invalid room retrieved: expected '%s' but got '%s'", want, got)
    }
}
