package roomchat

import (
    "sync"
    "time"

    "github.com/google/uuid"
)

// For how long a session token remains valid after being issued.
const defTokenTTL = time.Second * 3000

// sessionToken associates an issued token with its owner and deadline.
type sessionToken struct {
    // The username for whom the token was generated.
    username string

    // Expiration time for this token.
    deadline time.Time
}

// TokenManager issues and resolves the session tokens that let clients
// reconnect without logging in again.
//
// The token table, the reverse username index and the last-room table are
// always updated together, so a single mutex guards all three. Every
// critical section is short and never blocks on I/O.
type TokenManager struct {
    // ttl is how long after issuance a token expires.
    ttl time.Duration

    // Every currently known token. The token itself is used as the map's key.
    tokens map[string]*sessionToken

    // userToken points each username at its most recently issued token.
    userToken map[string]string

    // userRoom remembers the last room each user joined, for resumption.
    userRoom map[string]string

    // lock synchronizes access to the three tables above.
    lock sync.Mutex
}

// Generate a new session token for `username`, valid for the manager's
// TTL, and record it as the user's current token.
//
// Issuing a new token does not revoke the user's previous one: the old
// token string stays resolvable until its own deadline passes. Only the
// reverse username index is overwritten. Clients may therefore reconnect
// with either token during the overlap.
func (tm *TokenManager) Generate(username string) string {
    token := uuid.NewString()

    tm.lock.Lock()
    tm.tokens[token] = &sessionToken {
        username: username,
        deadline: time.Now().Add(tm.ttl),
    }
    tm.userToken[username] = token
    tm.lock.Unlock()

    return token
}

// Resolve the username that owns `token`.
//
// The failure is three-way: `InvalidToken` for a token that was never
// issued (or was already swept), `ExpiredToken` for one past its deadline
// but not yet swept, and nil alongside the username otherwise. Callers
// use the distinction for user-facing messages.
func (tm *TokenManager) Resolve(token string) (string, error) {
    tm.lock.Lock()
    defer tm.lock.Unlock()

    st, ok := tm.tokens[token]
    if !ok {
        return "", InvalidToken
    }
    if time.Now().After(st.deadline) {
        return "", ExpiredToken
    }
    return st.username, nil
}

// SetCurrentRoom record `room` as the last room joined by `username`.
func (tm *TokenManager) SetCurrentRoom(username, room string) {
    tm.lock.Lock()
    tm.userRoom[username] = room
    tm.lock.Unlock()
}

// CurrentRoom retrieve the last room joined by `username`, if any.
func (tm *TokenManager) CurrentRoom(username string) (string, bool) {
    tm.lock.Lock()
    defer tm.lock.Unlock()

    room, ok := tm.userRoom[username]
    return room, ok
}

// Cleanup remove every token whose deadline is at or before `now`,
// together with any reverse index entry still pointing at it.
//
// Cleanup is passive: a recurring timer owned by the server (not by this
// manager) invokes it periodically. It is safe to run concurrently with
// every other operation.
func (tm *TokenManager) Cleanup(now time.Time) {
    tm.lock.Lock()
    for token, st := range tm.tokens {
        if st.deadline.After(now) {
            continue
        }

        delete(tm.tokens, token)
        if tm.userToken[st.username] == token {
            delete(tm.userToken, st.username)
        }
    }
    tm.lock.Unlock()
}

// NewTokenManager create a token manager whose tokens expire `ttl` after
// issuance. A non-positive `ttl` selects the default of 3000 seconds.
func NewTokenManager(ttl time.Duration) *TokenManager {
    if ttl <= 0 {
        ttl = defTokenTTL
    }

    return &TokenManager {
        ttl: ttl,
        tokens: make(map[string]*sessionToken),
        userToken: make(map[string]string),
        userRoom: make(map[string]string),
    }
}
