package realtime

import (
	"sync"
)

// ConnectionCounter tracks the number of live connections process-wide.
// Decrement floors at zero so a double disconnect can't go negative.
type ConnectionCounter struct {
	mu sync.Mutex
	n  int64
}

// Increment records a new connection and returns the updated count
func (c *ConnectionCounter) Increment() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return c.n
}

// Decrement records a closed connection and returns the updated count
func (c *ConnectionCounter) Decrement() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.n > 0 {
		c.n--
	}
	return c.n
}

// Count returns the current number of live connections
func (c *ConnectionCounter) Count() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
