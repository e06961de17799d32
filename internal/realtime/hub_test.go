package realtime

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeConn records every frame and deadline written through it
type fakeConn struct {
	mu        sync.Mutex
	written   [][]byte
	deadlines []time.Time
	closed    bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{}
}

func (f *fakeConn) WriteMessage(messageType int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	f.written = append(f.written, buf)
	return nil
}

func (f *fakeConn) SetWriteDeadline(t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deadlines = append(f.deadlines, t)
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// frames decodes everything written so far
func (f *fakeConn) frames(t *testing.T) []Message {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	msgs := make([]Message, 0, len(f.written))
	for _, raw := range f.written {
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		msgs = append(msgs, msg)
	}
	return msgs
}

// framesOfType filters the recorded frames by event name
func (f *fakeConn) framesOfType(t *testing.T, event string) []Message {
	t.Helper()
	var out []Message
	for _, msg := range f.frames(t) {
		if msg.Type == event {
			out = append(out, msg)
		}
	}
	return out
}

func newTestClient(hub *Hub, userID string) (*Client, *fakeConn) {
	conn := newFakeConn()
	c := NewClient(userID, conn, 0)
	hub.Register(c)
	return c, conn
}

func TestClientSendSetsWriteDeadline(t *testing.T) {
	conn := newFakeConn()
	c := NewClient("u1", conn, 5*time.Second)

	require.NoError(t, c.send([]byte(`{}`)))

	conn.mu.Lock()
	defer conn.mu.Unlock()
	require.Len(t, conn.deadlines, 1)
	assert.True(t, conn.deadlines[0].After(time.Now()))
}

func TestClientSendWithoutTimeoutSkipsDeadline(t *testing.T) {
	conn := newFakeConn()
	c := NewClient("u1", conn, 0)

	require.NoError(t, c.send([]byte(`{}`)))

	conn.mu.Lock()
	defer conn.mu.Unlock()
	assert.Empty(t, conn.deadlines)
}

func TestHubCounterTracksConnections(t *testing.T) {
	hub := NewHub()

	a, _ := newTestClient(hub, "u1")
	b, _ := newTestClient(hub, "u1")
	c, _ := newTestClient(hub, "u2")
	assert.Equal(t, int64(3), hub.ConnectionCount())

	hub.Unregister(a)
	assert.Equal(t, int64(2), hub.ConnectionCount())

	// dropping the same connection twice must not double-count
	hub.Unregister(a)
	assert.Equal(t, int64(2), hub.ConnectionCount())

	hub.Unregister(b)
	hub.Unregister(c)
	assert.Equal(t, int64(0), hub.ConnectionCount())
}

func TestConnectionCounterFloorsAtZero(t *testing.T) {
	var counter ConnectionCounter
	counter.Increment()
	counter.Decrement()
	assert.Equal(t, int64(0), counter.Decrement())
	assert.Equal(t, int64(0), counter.Count())
}

func TestHubIsOnlineAcrossConnections(t *testing.T) {
	hub := NewHub()

	a, _ := newTestClient(hub, "u1")
	b, _ := newTestClient(hub, "u1")

	assert.True(t, hub.IsOnline("u1"))

	// u1 stays online while one connection survives
	hub.Unregister(a)
	assert.True(t, hub.IsOnline("u1"))

	hub.Unregister(b)
	assert.False(t, hub.IsOnline("u1"))
}

func TestHubOnlineAmongPreservesOrder(t *testing.T) {
	hub := NewHub()

	newTestClient(hub, "U2")
	newTestClient(hub, "U4")

	online := hub.OnlineAmong([]string{"U1", "U2", "U3", "U4"})
	assert.Equal(t, []string{"U2", "U4"}, online)

	assert.Empty(t, hub.OnlineAmong([]string{"U9"}))
	assert.Empty(t, hub.OnlineAmong(nil))
}

func TestHubJoinRoomAndBroadcast(t *testing.T) {
	hub := NewHub()

	alice, aliceConn := newTestClient(hub, "alice")
	bob, bobConn := newTestClient(hub, "bob")

	hub.JoinRoom(alice, "b1", "Alice")
	users := hub.JoinRoom(bob, "b1", "Bob")
	require.Len(t, users, 2)
	assert.Equal(t, 2, hub.RoomSize("b1"))

	hub.BroadcastToRoom("b1", EventCursorPosition, CursorPayload{BoardID: "b1", UserID: "alice", X: 1, Y: 2}, alice)

	// sender excluded, peer reached
	assert.Empty(t, aliceConn.framesOfType(t, EventCursorPosition))
	got := bobConn.framesOfType(t, EventCursorPosition)
	require.Len(t, got, 1)

	var p CursorPayload
	require.NoError(t, json.Unmarshal(got[0].Payload, &p))
	assert.Equal(t, "alice", p.UserID)
	assert.Equal(t, float64(1), p.X)
}

func TestHubBroadcastWithoutExcludeReachesSender(t *testing.T) {
	hub := NewHub()

	alice, aliceConn := newTestClient(hub, "alice")
	hub.JoinRoom(alice, "b1", "Alice")

	hub.BroadcastToRoom("b1", EventClearBoardDrawing, ClearBoardPayload{BoardID: "b1", UserID: "alice"}, nil)

	assert.Len(t, aliceConn.framesOfType(t, EventClearBoardDrawing), 1)
}

func TestHubBroadcastToEmptyRoomIsNoop(t *testing.T) {
	hub := NewHub()
	hub.BroadcastToRoom("ghost", EventCursorPosition, CursorPayload{BoardID: "ghost"}, nil)
	assert.Equal(t, 0, hub.RoomSize("ghost"))
}

func TestHubUnregisterCleansEveryJoinedBoard(t *testing.T) {
	hub := NewHub()

	alice, _ := newTestClient(hub, "alice")
	bob, bobConn := newTestClient(hub, "bob")

	hub.JoinRoom(alice, "b1", "Alice")
	hub.JoinRoom(alice, "b2", "Alice")
	hub.JoinRoom(bob, "b1", "Bob")
	hub.JoinRoom(bob, "b2", "Bob")

	hub.Unregister(alice)

	assert.Equal(t, 1, hub.RoomSize("b1"))
	assert.Equal(t, 1, hub.RoomSize("b2"))
	assert.Equal(t, []PresenceEntry{{UserID: "bob", DisplayName: "Bob"}}, hub.Presence().Snapshot("b1"))
	assert.Equal(t, []PresenceEntry{{UserID: "bob", DisplayName: "Bob"}}, hub.Presence().Snapshot("b2"))

	// exactly one refreshed snapshot per board alice had joined
	snapshots := bobConn.framesOfType(t, EventOnlineUsers)
	require.Len(t, snapshots, 2)
	boards := map[string]bool{}
	for _, msg := range snapshots {
		var p OnlineUsersPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &p))
		boards[p.BoardID] = true
		require.Len(t, p.Users, 1)
		assert.Equal(t, "bob", p.Users[0].UserID)
	}
	assert.Equal(t, map[string]bool{"b1": true, "b2": true}, boards)
}

func TestHubUnregisterLastViewerPrunesRoom(t *testing.T) {
	hub := NewHub()

	alice, _ := newTestClient(hub, "alice")
	hub.JoinRoom(alice, "b1", "Alice")

	hub.Unregister(alice)

	assert.Equal(t, 0, hub.RoomSize("b1"))
	assert.Equal(t, 0, hub.Presence().BoardCount())
	assert.False(t, hub.IsOnline("alice"))
}

func TestHubSendToUserFansOut(t *testing.T) {
	hub := NewHub()

	_, conn1 := newTestClient(hub, "u1")
	_, conn2 := newTestClient(hub, "u1")
	_, otherConn := newTestClient(hub, "u2")

	hub.SendToUser("u1", EventFriendAdded, FriendAddedPayload{UserID: "u2", DisplayName: "Other"})

	assert.Len(t, conn1.framesOfType(t, EventFriendAdded), 1)
	assert.Len(t, conn2.framesOfType(t, EventFriendAdded), 1)
	assert.Empty(t, otherConn.framesOfType(t, EventFriendAdded))

	// offline target is a silent no-op
	hub.SendToUser("nobody", EventFriendAdded, FriendAddedPayload{UserID: "u2"})
}
