package roomchat

import (
    "errors"
    "fmt"
    "strings"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

// recvTimeout is how long room tests wait for an asynchronous delivery.
const recvTimeout = time.Second

// fakeBot is a Bot that records its prompts and answers from a canned
// reply.
type fakeBot struct {
    mu sync.Mutex
    prompts []string
    reply string
    err error
}

func (b *fakeBot) Ask(prompt string) (string, error) {
    b.mu.Lock()
    b.prompts = append(b.prompts, prompt)
    b.mu.Unlock()

    return b.reply, b.err
}

func (b *fakeBot) calls() int {
    b.mu.Lock()
    defer b.mu.Unlock()
    return len(b.prompts)
}

// blockedConn is a Conn whose sends never complete, simulating a stuck
// client.
type blockedConn struct {
    forever chan struct{}
}

func (c *blockedConn) Close() error { return nil }
func (c *blockedConn) Recv() (string, error) { <-c.forever; return "", ConnEOF }
func (c *blockedConn) SendStr(msg string) error { <-c.forever; return ConnEOF }

// TestRoomHistoryEviction check that the history is bounded and that the
// retained messages are exactly the most recent ones, in post order.
func TestRoomHistoryEviction(t *testing.T) {
    room := newChatRoom("chan", false, nil, nil, false)

    const posted = maxHistorySize + 5
    for i := 1; i <= posted; i++ {
        room.Post("user", fmt.Sprintf("msg %d", i))
    }

    history := room.History()
    require.Len(t, history, maxHistorySize)
    assert.Equal(t, fmt.Sprintf("msg %d", posted - maxHistorySize + 1), history[0].Content)
    assert.Equal(t, fmt.Sprintf("msg %d", posted), history[len(history) - 1].Content)

    // Still in post order throughout.
    for i, msg := range history {
        assert.Equal(t, fmt.Sprintf("msg %d", i + posted - maxHistorySize + 1), msg.Content)
    }
}

// TestRoomJoinReplacesSink check that a user joining twice (e.g. on a
// reconnection) keeps a single membership entry, pointed at the latest
// sink.
func TestRoomJoinReplacesSink(t *testing.T) {
    room := newChatRoom("chan", false, nil, nil, false)

    c1 := NewMockConn().(*mockConn)
    c2 := NewMockConn().(*mockConn)

    room.Join("alice", c1)
    msg, err := c1.TestRecv(recvTimeout)
    require.NoError(t, err)
    assert.Contains(t, msg, "alice has joined the room")

    room.Join("alice", c2)
    msg, err = c2.TestRecv(recvTimeout)
    require.NoError(t, err)
    assert.Contains(t, msg, "alice has joined the room")

    require.Equal(t, []string{"alice"}, room.Users())

    // From now on only the newer sink receives anything.
    room.Post("alice", "hello")
    msg, err = c2.TestRecv(recvTimeout)
    require.NoError(t, err)
    assert.Contains(t, msg, "alice: hello")

    _, err = c1.TestRecv(time.Millisecond * 100)
    assert.Equal(t, TestTimeout, err)
}

// TestLeaveNonMemberStillBroadcasts check that leaving broadcasts the
// departure notice even for a username that never joined, which is this
// service's long-standing behavior.
func TestLeaveNonMemberStillBroadcasts(t *testing.T) {
    room := newChatRoom("chan", false, nil, nil, false)

    c := NewMockConn().(*mockConn)
    room.Join("alice", c)
    _, err := c.TestRecv(recvTimeout)
    require.NoError(t, err)

    room.Leave("ghost")
    msg, err := c.TestRecv(recvTimeout)
    require.NoError(t, err)
    assert.Contains(t, msg, "*** ghost has left the room ***")
}

// TestRoomReplaySnapshot check that joining returns the history up to,
// and excluding, the join itself, so the replay plus the live join
// notice cover every message exactly once.
func TestRoomReplaySnapshot(t *testing.T) {
    room := newChatRoom("chan", false, nil, nil, false)

    room.Post("alice", "first")
    room.Post("alice", "second")

    c := NewMockConn().(*mockConn)
    snapshot := room.Join("bob", c)

    require.Len(t, snapshot, 2)
    assert.Equal(t, "first", snapshot[0].Content)
    assert.Equal(t, "second", snapshot[1].Content)

    // The join notice is delivered live instead.
    msg, err := c.TestRecv(recvTimeout)
    require.NoError(t, err)
    assert.Contains(t, msg, "bob has joined the room")

    // And it is recorded in the history, after the replayed messages.
    history := room.History()
    require.Len(t, history, 3)
    assert.Equal(t, System, history[2].Kind)
    assert.Contains(t, history[2].Content, "bob has joined")
}

// TestRoomBroadcastIndependence check that a stuck member never delays
// delivery to the other members, nor the poster itself.
func TestRoomBroadcastIndependence(t *testing.T) {
    room := newChatRoom("chan", false, nil, nil, false)

    stuck := &blockedConn{forever: make(chan struct{})}
    room.Join("stuck", stuck)

    c := NewMockConn().(*mockConn)
    room.Join("alice", c)
    _, err := c.TestRecv(recvTimeout)
    require.NoError(t, err)

    done := make(chan struct{})
    go func() {
        room.Post("alice", "anyone there?")
        close(done)
    } ()

    select {
    case <-done:
    case <-time.After(recvTimeout):
        t.Fatal("Post blocked on a stuck member")
    }

    msg, err := c.TestRecv(recvTimeout)
    require.NoError(t, err)
    assert.Contains(t, msg, "alice: anyone there?")

    close(stuck.forever)
}

// TestAIRoomReply check that posting into an AI-enabled room eventually
// gets a reply from the bot, built from the room's conversation, without
// the bot ever answering itself.
func TestAIRoomReply(t *testing.T) {
    bot := &fakeBot{reply: "hello to you too"}
    room := newChatRoom("ai-chan", true, bot, nil, false)

    c := NewMockConn().(*mockConn)
    room.Join("alice", c)

    room.Post("alice", "hello bot")

    require.Eventually(t, func() bool {
        history := room.History()
        return len(history) == 3 && history[2].Sender == BotSender
    }, recvTimeout, time.Millisecond * 10)

    history := room.History()
    assert.Equal(t, "hello to you too", history[2].Content)

    // The prompt carries the whole conversation, the poster's message
    // included.
    require.Equal(t, 1, bot.calls())
    assert.Contains(t, bot.prompts[0], "alice: hello bot")

    // The bot's own post must not trigger another request.
    time.Sleep(time.Millisecond * 50)
    assert.Equal(t, 1, bot.calls())
    assert.Len(t, room.History(), 3)
}

// TestAIRoomReplyFailure check that a failing generator is reported as
// the bot's reply instead of breaking the room.
func TestAIRoomReplyFailure(t *testing.T) {
    bot := &fakeBot{err: errors.New("connection refused")}
    room := newChatRoom("ai-chan", true, bot, nil, false)

    room.Post("alice", "hello bot")

    require.Eventually(t, func() bool {
        return len(room.History()) == 2
    }, recvTimeout, time.Millisecond * 10)

    history := room.History()
    assert.Equal(t, BotSender, history[1].Sender)
    assert.True(t, strings.HasPrefix(history[1].Content, "Error getting response from Bot: "),
            "unexpected reply: %s", history[1].Content)
}
