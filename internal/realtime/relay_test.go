package realtime

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRelay(hub *Hub) *Relay {
	resolver := NewDisplayNameResolver(
		&stubProfiles{name: ""},
		&stubDirectory{name: "", email: ""},
	)
	return NewRelay(hub, resolver)
}

func frame(t *testing.T, event string, payload any) []byte {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	data, err := json.Marshal(Message{Type: event, Payload: raw})
	require.NoError(t, err)
	return data
}

func TestRelayJoinBroadcastsSnapshotToWholeRoom(t *testing.T) {
	hub := NewHub()
	relay := newTestRelay(hub)
	ctx := context.Background()

	alice, aliceConn := newTestClient(hub, "alice")
	bob, bobConn := newTestClient(hub, "bob")

	relay.Dispatch(ctx, alice, frame(t, EventJoinBoardRoom, JoinBoardPayload{BoardID: "b1"}))
	relay.Dispatch(ctx, bob, frame(t, EventJoinBoardRoom, JoinBoardPayload{BoardID: "b1"}))

	// alice saw her own join and then bob's
	require.Len(t, aliceConn.framesOfType(t, EventOnlineUsers), 2)

	// the joiner receives the snapshot too
	got := bobConn.framesOfType(t, EventOnlineUsers)
	require.Len(t, got, 1)
	var p OnlineUsersPayload
	require.NoError(t, json.Unmarshal(got[0].Payload, &p))
	assert.Equal(t, "b1", p.BoardID)
	require.Len(t, p.Users, 2)
	assert.Equal(t, "alice", p.Users[0].UserID)
	assert.Equal(t, "bob", p.Users[1].UserID)
}

func TestRelayStampsSenderIdentity(t *testing.T) {
	hub := NewHub()
	relay := newTestRelay(hub)
	ctx := context.Background()

	alice, _ := newTestClient(hub, "alice")
	bob, bobConn := newTestClient(hub, "bob")
	relay.Dispatch(ctx, alice, frame(t, EventJoinBoardRoom, JoinBoardPayload{BoardID: "b1"}))
	relay.Dispatch(ctx, bob, frame(t, EventJoinBoardRoom, JoinBoardPayload{BoardID: "b1"}))

	// alice claims to be bob; the relay must overwrite it
	relay.Dispatch(ctx, alice, frame(t, EventCursorPosition, CursorPayload{
		BoardID: "b1", UserID: "bob", X: 10, Y: 20,
	}))

	got := bobConn.framesOfType(t, EventCursorPosition)
	require.Len(t, got, 1)
	var p CursorPayload
	require.NoError(t, json.Unmarshal(got[0].Payload, &p))
	assert.Equal(t, "alice", p.UserID)
	assert.Equal(t, float64(10), p.X)
	assert.Equal(t, float64(20), p.Y)
}

func TestRelayCursorExcludesSender(t *testing.T) {
	hub := NewHub()
	relay := newTestRelay(hub)
	ctx := context.Background()

	alice, aliceConn := newTestClient(hub, "alice")
	relay.Dispatch(ctx, alice, frame(t, EventJoinBoardRoom, JoinBoardPayload{BoardID: "b1"}))

	relay.Dispatch(ctx, alice, frame(t, EventCursorPosition, CursorPayload{BoardID: "b1", X: 1, Y: 1}))

	assert.Empty(t, aliceConn.framesOfType(t, EventCursorPosition))
}

func TestRelayClearBoardIncludesSender(t *testing.T) {
	hub := NewHub()
	relay := newTestRelay(hub)
	ctx := context.Background()

	alice, aliceConn := newTestClient(hub, "alice")
	bob, bobConn := newTestClient(hub, "bob")
	relay.Dispatch(ctx, alice, frame(t, EventJoinBoardRoom, JoinBoardPayload{BoardID: "b1"}))
	relay.Dispatch(ctx, bob, frame(t, EventJoinBoardRoom, JoinBoardPayload{BoardID: "b1"}))

	relay.Dispatch(ctx, alice, frame(t, EventClearBoardDrawing, ClearBoardPayload{BoardID: "b1"}))

	assert.Len(t, aliceConn.framesOfType(t, EventClearBoardDrawing), 1)
	got := bobConn.framesOfType(t, EventClearBoardDrawing)
	require.Len(t, got, 1)
	var p ClearBoardPayload
	require.NoError(t, json.Unmarshal(got[0].Payload, &p))
	assert.Equal(t, "alice", p.UserID)
}

func TestRelayStrokeLifecycle(t *testing.T) {
	hub := NewHub()
	relay := newTestRelay(hub)
	ctx := context.Background()

	alice, _ := newTestClient(hub, "alice")
	bob, bobConn := newTestClient(hub, "bob")
	relay.Dispatch(ctx, alice, frame(t, EventJoinBoardRoom, JoinBoardPayload{BoardID: "b1"}))
	relay.Dispatch(ctx, bob, frame(t, EventJoinBoardRoom, JoinBoardPayload{BoardID: "b1"}))

	relay.Dispatch(ctx, alice, frame(t, EventStrokeStart, StrokeStartPayload{
		BoardID: "b1", StrokeID: "s1", Color: "#ff0000", BrushSize: 4, Opacity: 1,
	}))
	relay.Dispatch(ctx, alice, frame(t, EventStrokePoint, StrokePointPayload{
		BoardID: "b1", StrokeID: "s1", Point: Point{X: 5, Y: 6, Timestamp: 123},
	}))
	relay.Dispatch(ctx, alice, frame(t, EventStrokeEnd, StrokeEndPayload{
		BoardID: "b1", StrokeID: "s1",
	}))

	require.Len(t, bobConn.framesOfType(t, EventStrokeStart), 1)
	require.Len(t, bobConn.framesOfType(t, EventStrokePoint), 1)
	require.Len(t, bobConn.framesOfType(t, EventStrokeEnd), 1)

	var p StrokePointPayload
	require.NoError(t, json.Unmarshal(bobConn.framesOfType(t, EventStrokePoint)[0].Payload, &p))
	assert.Equal(t, "alice", p.UserID)
	assert.Equal(t, int64(123), p.Point.Timestamp)
}

func TestRelayContainerVariantRequiresContainerID(t *testing.T) {
	hub := NewHub()
	relay := newTestRelay(hub)
	ctx := context.Background()

	alice, _ := newTestClient(hub, "alice")
	bob, bobConn := newTestClient(hub, "bob")
	relay.Dispatch(ctx, alice, frame(t, EventJoinBoardRoom, JoinBoardPayload{BoardID: "b1"}))
	relay.Dispatch(ctx, bob, frame(t, EventJoinBoardRoom, JoinBoardPayload{BoardID: "b1"}))

	// missing containerId: dropped
	relay.Dispatch(ctx, alice, frame(t, EventContainerStrokeStart, StrokeStartPayload{
		BoardID: "b1", StrokeID: "s1",
	}))
	assert.Empty(t, bobConn.framesOfType(t, EventContainerStrokeStart))

	relay.Dispatch(ctx, alice, frame(t, EventContainerStrokeStart, StrokeStartPayload{
		BoardID: "b1", ContainerID: "c1", StrokeID: "s1",
	}))
	got := bobConn.framesOfType(t, EventContainerStrokeStart)
	require.Len(t, got, 1)
	var p StrokeStartPayload
	require.NoError(t, json.Unmarshal(got[0].Payload, &p))
	assert.Equal(t, "c1", p.ContainerID)
	assert.Equal(t, "alice", p.UserID)
}

func TestRelayContainerTransformEvents(t *testing.T) {
	hub := NewHub()
	relay := newTestRelay(hub)
	ctx := context.Background()

	alice, _ := newTestClient(hub, "alice")
	bob, bobConn := newTestClient(hub, "bob")
	relay.Dispatch(ctx, alice, frame(t, EventJoinBoardRoom, JoinBoardPayload{BoardID: "b1"}))
	relay.Dispatch(ctx, bob, frame(t, EventJoinBoardRoom, JoinBoardPayload{BoardID: "b1"}))

	relay.Dispatch(ctx, alice, frame(t, EventContainerPositionUpdate, ContainerPositionPayload{
		BoardID: "b1", ContainerID: "c1", Position: Position{X: 100, Y: 200},
	}))
	relay.Dispatch(ctx, alice, frame(t, EventContainerSizeUpdate, ContainerSizePayload{
		BoardID: "b1", ContainerID: "c1", Size: Size{Width: 300, Height: 150},
	}))
	relay.Dispatch(ctx, alice, frame(t, EventContainerDeleted, ContainerDeletedPayload{
		BoardID: "b1", ContainerID: "c1",
	}))

	require.Len(t, bobConn.framesOfType(t, EventContainerPositionUpdate), 1)
	require.Len(t, bobConn.framesOfType(t, EventContainerSizeUpdate), 1)
	require.Len(t, bobConn.framesOfType(t, EventContainerDeleted), 1)

	var pos ContainerPositionPayload
	require.NoError(t, json.Unmarshal(bobConn.framesOfType(t, EventContainerPositionUpdate)[0].Payload, &pos))
	assert.Equal(t, float64(100), pos.Position.X)
	assert.Equal(t, "alice", pos.UserID)
}

func TestRelayOnlineFriendsIsUnicast(t *testing.T) {
	hub := NewHub()
	relay := newTestRelay(hub)
	ctx := context.Background()

	asker, askerConn := newTestClient(hub, "U1")
	_, otherConn := newTestClient(hub, "U2")
	newTestClient(hub, "U4")

	relay.Dispatch(ctx, asker, frame(t, EventGetOnlineFriends, OnlineFriendsQuery{
		FriendUIDs: []string{"U2", "U3", "U4", "U5"},
	}))

	got := askerConn.framesOfType(t, EventOnlineFriends)
	require.Len(t, got, 1)
	var p OnlineFriendsPayload
	require.NoError(t, json.Unmarshal(got[0].Payload, &p))
	assert.Equal(t, []string{"U2", "U4"}, p.Online)

	// nobody else hears the answer
	assert.Empty(t, otherConn.framesOfType(t, EventOnlineFriends))
}

func TestRelayDropsMalformedFrames(t *testing.T) {
	hub := NewHub()
	relay := newTestRelay(hub)
	ctx := context.Background()

	alice, _ := newTestClient(hub, "alice")
	bob, bobConn := newTestClient(hub, "bob")
	relay.Dispatch(ctx, alice, frame(t, EventJoinBoardRoom, JoinBoardPayload{BoardID: "b1"}))
	relay.Dispatch(ctx, bob, frame(t, EventJoinBoardRoom, JoinBoardPayload{BoardID: "b1"}))
	before := len(bobConn.frames(t))

	relay.Dispatch(ctx, alice, []byte("not json"))
	relay.Dispatch(ctx, alice, []byte(`{"type":"unknownEvent","payload":{}}`))
	relay.Dispatch(ctx, alice, frame(t, EventCursorPosition, map[string]any{"x": 1}))          // no boardId
	relay.Dispatch(ctx, alice, frame(t, EventStrokeStart, map[string]any{"boardId": "b1"}))   // no strokeId
	relay.Dispatch(ctx, alice, frame(t, EventJoinBoardRoom, JoinBoardPayload{}))              // no boardId
	relay.Dispatch(ctx, alice, []byte(`{"type":"cursorPosition","payload":"not-an-object"}`)) // wrong shape

	assert.Len(t, bobConn.frames(t), before)
}
