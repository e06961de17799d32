package realtime

import (
	"encoding/json"
	"log"
	"sync"
)

// Hub owns every process-wide piece of realtime state: the connection
// registry, board rooms, per-user personal channels, the global
// online-user set and the connection counter. Each mutation is one
// lock-scoped read-modify-write step.
type Hub struct {
	mu        sync.RWMutex
	clients   map[string]*Client            // connection id -> client
	userConns map[string]map[string]*Client // user id -> connection id -> client
	rooms     map[string]map[string]*Client // board id -> connection id -> client

	presence *PresenceRegistry
	counter  *ConnectionCounter
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		clients:   make(map[string]*Client),
		userConns: make(map[string]map[string]*Client),
		rooms:     make(map[string]map[string]*Client),
		presence:  NewPresenceRegistry(),
		counter:   &ConnectionCounter{},
	}
}

// Presence exposes the board presence registry
func (h *Hub) Presence() *PresenceRegistry {
	return h.presence
}

// Register admits an authenticated connection: it joins the client's
// personal channel, marks the user online and bumps the counter
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.ID] = c
	if h.userConns[c.UserID] == nil {
		h.userConns[c.UserID] = make(map[string]*Client)
	}
	h.userConns[c.UserID][c.ID] = c
	h.mu.Unlock()

	total := h.counter.Increment()
	log.Printf("[Hub] Client connected: user=%s conn=%s, active=%d", c.UserID, c.ID, total)
}

// Unregister tears a connection down: one presence leave and one fresh
// onlineUsers rebroadcast per distinct board the connection joined, then
// removal from the personal channel and a counter decrement. Safe to call
// more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, known := h.clients[c.ID]; !known {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c.ID)
	h.mu.Unlock()

	for _, boardID := range c.joinedRooms() {
		h.mu.Lock()
		if room := h.rooms[boardID]; room != nil {
			delete(room, c.ID)
			if len(room) == 0 {
				delete(h.rooms, boardID)
			}
		}
		h.mu.Unlock()

		users := h.presence.Leave(boardID, c.UserID)
		h.BroadcastToRoom(boardID, EventOnlineUsers, OnlineUsersPayload{BoardID: boardID, Users: users}, nil)
	}

	h.mu.Lock()
	if conns := h.userConns[c.UserID]; conns != nil {
		delete(conns, c.ID)
		if len(conns) == 0 {
			delete(h.userConns, c.UserID)
		}
	}
	h.mu.Unlock()

	total := h.counter.Decrement()
	log.Printf("[Hub] Client disconnected: user=%s conn=%s, active=%d", c.UserID, c.ID, total)
}

// JoinRoom adds the connection to a board room and records the presence
// entry, returning the snapshot taken after the mutation
func (h *Hub) JoinRoom(c *Client, boardID, displayName string) []PresenceEntry {
	c.recordJoin(boardID)

	h.mu.Lock()
	if h.rooms[boardID] == nil {
		h.rooms[boardID] = make(map[string]*Client)
	}
	h.rooms[boardID][c.ID] = c
	h.mu.Unlock()

	users := h.presence.Join(boardID, c.UserID, displayName)
	log.Printf("[Hub] user=%s joined board=%s (%d present)", c.UserID, boardID, len(users))
	return users
}

// BroadcastToRoom sends an event to every member of a board room.
// Pass exclude to skip the sender; nil reaches everyone including them.
func (h *Hub) BroadcastToRoom(boardID, event string, payload any, exclude *Client) {
	data, err := encode(event, payload)
	if err != nil {
		log.Printf("[Hub] Failed to marshal %s: %v", event, err)
		return
	}

	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[boardID]))
	for _, member := range h.rooms[boardID] {
		members = append(members, member)
	}
	h.mu.RUnlock()

	for _, member := range members {
		if exclude != nil && member.ID == exclude.ID {
			continue
		}
		if err := member.send(data); err != nil {
			log.Printf("[Hub] Failed to send %s to user=%s: %v", event, member.UserID, err)
		}
	}
}

// SendToClient delivers an event to a single connection
func (h *Hub) SendToClient(c *Client, event string, payload any) {
	data, err := encode(event, payload)
	if err != nil {
		log.Printf("[Hub] Failed to marshal %s: %v", event, err)
		return
	}
	if err := c.send(data); err != nil {
		log.Printf("[Hub] Failed to send %s to user=%s: %v", event, c.UserID, err)
	}
}

// SendToUser delivers an event to every connection on a user's personal
// channel; a no-op when the user is offline
func (h *Hub) SendToUser(userID, event string, payload any) {
	data, err := encode(event, payload)
	if err != nil {
		log.Printf("[Hub] Failed to marshal %s: %v", event, err)
		return
	}

	h.mu.RLock()
	conns := make([]*Client, 0, len(h.userConns[userID]))
	for _, c := range h.userConns[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		if err := c.send(data); err != nil {
			log.Printf("[Hub] Failed to send %s to user=%s: %v", event, userID, err)
		}
	}
}

// IsOnline reports whether a user has at least one live connection
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userConns[userID]) > 0
}

// OnlineAmong filters the given user ids down to the currently-online
// ones, preserving the caller's order
func (h *Hub) OnlineAmong(userIDs []string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	online := make([]string, 0, len(userIDs))
	for _, uid := range userIDs {
		if len(h.userConns[uid]) > 0 {
			online = append(online, uid)
		}
	}
	return online
}

// ConnectionCount is the reporting surface for the active-connection counter
func (h *Hub) ConnectionCount() int64 {
	return h.counter.Count()
}

// RoomSize returns the number of connections in a board room
func (h *Hub) RoomSize(boardID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[boardID])
}

func encode(event string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: event, Payload: raw})
}
