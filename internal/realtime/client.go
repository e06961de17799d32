package realtime

import (
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

// Conn is the slice of *websocket.Conn the hub writes through. Tests
// substitute an in-memory recorder.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Client is one live authenticated connection
type Client struct {
	ID     string
	UserID string
	conn   Conn

	writeTimeout time.Duration
	writeMu      sync.Mutex

	mu    sync.Mutex
	rooms map[string]bool // board ids this connection has joined
}

// NewClient wraps an accepted connection. writeTimeout bounds each
// outbound frame so one stalled peer can't block a broadcast; zero
// disables the deadline.
func NewClient(userID string, conn Conn, writeTimeout time.Duration) *Client {
	return &Client{
		ID:           uuid.New().String(),
		UserID:       userID,
		conn:         conn,
		writeTimeout: writeTimeout,
		rooms:        make(map[string]bool),
	}
}

// send writes one text frame, serialized per connection
func (c *Client) send(data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.writeTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// recordJoin marks a board room as joined; idempotent
func (c *Client) recordJoin(boardID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rooms[boardID] = true
}

// joinedRooms returns every distinct board id this connection joined,
// used to drive cleanup at disconnect
func (c *Client) joinedRooms() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	rooms := make([]string, 0, len(c.rooms))
	for boardID := range c.rooms {
		rooms = append(rooms, boardID)
	}
	return rooms
}
