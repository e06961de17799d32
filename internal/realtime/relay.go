package realtime

import (
	"context"
	"encoding/json"
)

// Relay maps inbound named events to their audience. Every relayed
// payload has its userId field overwritten with the authenticated
// sender's id before forwarding: a connection can never impersonate
// another user downstream, whatever it put in the frame.
//
// Best-effort events with missing required fields are dropped without a
// reply; they are ephemeral UI signals where a lost frame is invisible.
type Relay struct {
	hub      *Hub
	resolver *DisplayNameResolver
}

// NewRelay creates a relay over the given hub
func NewRelay(hub *Hub, resolver *DisplayNameResolver) *Relay {
	return &Relay{hub: hub, resolver: resolver}
}

// Dispatch routes one inbound frame from an authenticated connection.
// Unknown event names and undecodable frames are ignored.
func (r *Relay) Dispatch(ctx context.Context, c *Client, raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return
	}

	switch msg.Type {
	case EventJoinBoardRoom:
		r.handleJoinRoom(ctx, c, msg.Payload)
	case EventCursorPosition:
		r.relayCursor(c, msg.Payload)
	case EventDrawingStatus, EventContainerDrawingStatus:
		r.relayDrawingStatus(c, msg.Type, msg.Payload)
	case EventStrokeStart, EventContainerStrokeStart:
		r.relayStrokeStart(c, msg.Type, msg.Payload)
	case EventStrokePoint, EventContainerStrokePoint:
		r.relayStrokePoint(c, msg.Type, msg.Payload)
	case EventStrokeEnd, EventContainerStrokeEnd:
		r.relayStrokeEnd(c, msg.Type, msg.Payload)
	case EventClearBoardDrawing:
		r.relayClearBoard(c, msg.Payload)
	case EventContainerPositionUpdate:
		r.relayContainerPosition(c, msg.Payload)
	case EventContainerSizeUpdate:
		r.relayContainerSize(c, msg.Payload)
	case EventContainerDeleted:
		r.relayContainerDeleted(c, msg.Payload)
	case EventGetOnlineFriends:
		r.handleOnlineFriends(c, msg.Payload)
	}
}

// handleJoinRoom admits the connection to a board room and broadcasts a
// fresh presence snapshot to the whole room, sender included.
//
// Trust assumption: board access was authorized by the REST layer before
// the client opened the socket; the relay admits any authenticated user
// to any room id and never checks the board exists.
func (r *Relay) handleJoinRoom(ctx context.Context, c *Client, raw json.RawMessage) {
	var req JoinBoardPayload
	if err := json.Unmarshal(raw, &req); err != nil || req.BoardID == "" {
		return
	}

	// resolution failures are absorbed inside Resolve; the join proceeds
	// with whatever name the chain produced
	displayName := r.resolver.Resolve(ctx, c.UserID)

	users := r.hub.JoinRoom(c, req.BoardID, displayName)
	r.hub.BroadcastToRoom(req.BoardID, EventOnlineUsers, OnlineUsersPayload{
		BoardID: req.BoardID,
		Users:   users,
	}, nil)
}

func (r *Relay) relayCursor(c *Client, raw json.RawMessage) {
	var p CursorPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.BoardID == "" {
		return
	}
	p.UserID = c.UserID
	r.hub.BroadcastToRoom(p.BoardID, EventCursorPosition, p, c)
}

func (r *Relay) relayDrawingStatus(c *Client, event string, raw json.RawMessage) {
	var p DrawingStatusPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.BoardID == "" {
		return
	}
	if event == EventContainerDrawingStatus && p.ContainerID == "" {
		return
	}
	p.UserID = c.UserID
	r.hub.BroadcastToRoom(p.BoardID, event, p, c)
}

func (r *Relay) relayStrokeStart(c *Client, event string, raw json.RawMessage) {
	var p StrokeStartPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.BoardID == "" || p.StrokeID == "" {
		return
	}
	if event == EventContainerStrokeStart && p.ContainerID == "" {
		return
	}
	p.UserID = c.UserID
	r.hub.BroadcastToRoom(p.BoardID, event, p, c)
}

func (r *Relay) relayStrokePoint(c *Client, event string, raw json.RawMessage) {
	var p StrokePointPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.BoardID == "" || p.StrokeID == "" {
		return
	}
	if event == EventContainerStrokePoint && p.ContainerID == "" {
		return
	}
	p.UserID = c.UserID
	r.hub.BroadcastToRoom(p.BoardID, event, p, c)
}

func (r *Relay) relayStrokeEnd(c *Client, event string, raw json.RawMessage) {
	var p StrokeEndPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.BoardID == "" || p.StrokeID == "" {
		return
	}
	if event == EventContainerStrokeEnd && p.ContainerID == "" {
		return
	}
	p.UserID = c.UserID
	r.hub.BroadcastToRoom(p.BoardID, event, p, c)
}

// relayClearBoard echoes back to the sender too, so every client
// converges on the cleared state without special-casing the originator
func (r *Relay) relayClearBoard(c *Client, raw json.RawMessage) {
	var p ClearBoardPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.BoardID == "" {
		return
	}
	p.UserID = c.UserID
	r.hub.BroadcastToRoom(p.BoardID, EventClearBoardDrawing, p, nil)
}

func (r *Relay) relayContainerPosition(c *Client, raw json.RawMessage) {
	var p ContainerPositionPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.BoardID == "" || p.ContainerID == "" {
		return
	}
	p.UserID = c.UserID
	r.hub.BroadcastToRoom(p.BoardID, EventContainerPositionUpdate, p, c)
}

func (r *Relay) relayContainerSize(c *Client, raw json.RawMessage) {
	var p ContainerSizePayload
	if err := json.Unmarshal(raw, &p); err != nil || p.BoardID == "" || p.ContainerID == "" {
		return
	}
	p.UserID = c.UserID
	r.hub.BroadcastToRoom(p.BoardID, EventContainerSizeUpdate, p, c)
}

func (r *Relay) relayContainerDeleted(c *Client, raw json.RawMessage) {
	var p ContainerDeletedPayload
	if err := json.Unmarshal(raw, &p); err != nil || p.BoardID == "" || p.ContainerID == "" {
		return
	}
	p.UserID = c.UserID
	r.hub.BroadcastToRoom(p.BoardID, EventContainerDeleted, p, c)
}

// handleOnlineFriends answers the asker only
func (r *Relay) handleOnlineFriends(c *Client, raw json.RawMessage) {
	var q OnlineFriendsQuery
	if err := json.Unmarshal(raw, &q); err != nil || q.FriendUIDs == nil {
		return
	}
	r.hub.SendToClient(c, EventOnlineFriends, OnlineFriendsPayload{
		Online: r.hub.OnlineAmong(q.FriendUIDs),
	})
}
