package realtime

import (
	"encoding/json"
)

// Inbound event names
const (
	EventJoinBoardRoom           = "joinBoardRoom"
	EventCursorPosition          = "cursorPosition"
	EventDrawingStatus           = "drawingStatus"
	EventStrokeStart             = "strokeStart"
	EventStrokePoint             = "strokePoint"
	EventStrokeEnd               = "strokeEnd"
	EventContainerDrawingStatus  = "containerDrawingStatus"
	EventContainerStrokeStart    = "containerStrokeStart"
	EventContainerStrokePoint    = "containerStrokePoint"
	EventContainerStrokeEnd      = "containerStrokeEnd"
	EventClearBoardDrawing       = "clearBoardDrawing"
	EventContainerPositionUpdate = "containerPositionUpdate"
	EventContainerSizeUpdate     = "containerSizeUpdate"
	EventContainerDeleted        = "containerDeleted"
	EventGetOnlineFriends        = "getOnlineFriends"
)

// Outbound event names
const (
	EventOnlineUsers   = "onlineUsers"
	EventOnlineFriends = "onlineFriends"
	EventFriendAdded   = "friendAdded"
	EventDrawingSaved  = "drawingSaved"
)

// Message is the websocket wire envelope
type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Point is one timestamped stroke point
type Point struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Timestamp int64   `json:"timestamp"`
}

// Position is a container top-left coordinate
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a container extent
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// JoinBoardPayload asks to join a board room
type JoinBoardPayload struct {
	BoardID string `json:"boardId"`
}

// CursorPayload is a live cursor position
type CursorPayload struct {
	BoardID string  `json:"boardId"`
	UserID  string  `json:"userId"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

// DrawingStatusPayload flags a user entering/leaving drawing mode.
// ContainerID is set for the container-scoped variant.
type DrawingStatusPayload struct {
	BoardID     string `json:"boardId"`
	ContainerID string `json:"containerId,omitempty"`
	UserID      string `json:"userId"`
	IsDrawing   bool   `json:"isDrawing"`
}

// StrokeStartPayload opens a stroke
type StrokeStartPayload struct {
	BoardID     string  `json:"boardId"`
	ContainerID string  `json:"containerId,omitempty"`
	UserID      string  `json:"userId"`
	StrokeID    string  `json:"strokeId"`
	Color       string  `json:"color"`
	BrushSize   float64 `json:"brushSize"`
	Opacity     float64 `json:"opacity"`
}

// StrokePointPayload extends a stroke by one point
type StrokePointPayload struct {
	BoardID     string `json:"boardId"`
	ContainerID string `json:"containerId,omitempty"`
	UserID      string `json:"userId"`
	StrokeID    string `json:"strokeId"`
	Point       Point  `json:"point"`
}

// StrokeEndPayload closes a stroke
type StrokeEndPayload struct {
	BoardID     string `json:"boardId"`
	ContainerID string `json:"containerId,omitempty"`
	UserID      string `json:"userId"`
	StrokeID    string `json:"strokeId"`
}

// ClearBoardPayload wipes a board's drawing layer for everyone
type ClearBoardPayload struct {
	BoardID string `json:"boardId"`
	UserID  string `json:"userId"`
}

// ContainerPositionPayload is a live container move
type ContainerPositionPayload struct {
	BoardID     string   `json:"boardId"`
	ContainerID string   `json:"containerId"`
	UserID      string   `json:"userId"`
	Position    Position `json:"position"`
}

// ContainerSizePayload is a live container resize
type ContainerSizePayload struct {
	BoardID     string `json:"boardId"`
	ContainerID string `json:"containerId"`
	UserID      string `json:"userId"`
	Size        Size   `json:"size"`
}

// ContainerDeletedPayload is a live container removal
type ContainerDeletedPayload struct {
	BoardID     string `json:"boardId"`
	ContainerID string `json:"containerId"`
	UserID      string `json:"userId"`
}

// OnlineFriendsQuery asks which of the given users are connected
type OnlineFriendsQuery struct {
	FriendUIDs []string `json:"friendUids"`
}

// OnlineFriendsPayload answers an OnlineFriendsQuery, unicast to the asker
type OnlineFriendsPayload struct {
	Online []string `json:"online"`
}

// OnlineUsersPayload is the presence snapshot broadcast to a board room
type OnlineUsersPayload struct {
	BoardID string          `json:"boardId"`
	Users   []PresenceEntry `json:"users"`
}

// FriendAddedPayload notifies a user they were added to a friend list
type FriendAddedPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// DrawingSavedPayload announces a persisted stroke to a board room
type DrawingSavedPayload struct {
	BoardID     string          `json:"boardId"`
	ContainerID string          `json:"containerId,omitempty"`
	UserID      string          `json:"userId"`
	StrokeID    string          `json:"strokeId"`
	Color       string          `json:"color"`
	BrushSize   float64         `json:"brushSize"`
	Opacity     float64         `json:"opacity"`
	Points      json.RawMessage `json:"points"`
}
