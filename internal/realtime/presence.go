package realtime

import (
	"sync"
)

// PresenceEntry is one (user, display name) pair in a board snapshot
type PresenceEntry struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// PresenceRegistry maps board ids to the users currently viewing them.
// State lives only in process memory; a restart drops all presence.
type PresenceRegistry struct {
	mu     sync.RWMutex
	boards map[string]*boardPresence
}

// boardPresence keeps insertion order so snapshots are stable between
// mutations; Go map iteration would reshuffle them on every read
type boardPresence struct {
	order   []string
	entries map[string]string // userID -> displayName
}

// NewPresenceRegistry creates an empty registry
func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		boards: make(map[string]*boardPresence),
	}
}

// Join inserts or overwrites the presence entry for (board, user) and
// returns the updated snapshot. Re-joining keeps the original position;
// the stored display name is last-join-wins.
func (p *PresenceRegistry) Join(boardID, userID, displayName string) []PresenceEntry {
	p.mu.Lock()
	defer p.mu.Unlock()

	board := p.boards[boardID]
	if board == nil {
		board = &boardPresence{entries: make(map[string]string)}
		p.boards[boardID] = board
	}

	if _, exists := board.entries[userID]; !exists {
		board.order = append(board.order, userID)
	}
	board.entries[userID] = displayName

	return board.snapshot()
}

// Leave removes the entry if present (no-op otherwise) and returns the
// updated snapshot. Empty boards are pruned.
func (p *PresenceRegistry) Leave(boardID, userID string) []PresenceEntry {
	p.mu.Lock()
	defer p.mu.Unlock()

	board := p.boards[boardID]
	if board == nil {
		return []PresenceEntry{}
	}

	if _, exists := board.entries[userID]; exists {
		delete(board.entries, userID)
		for i, uid := range board.order {
			if uid == userID {
				board.order = append(board.order[:i], board.order[i+1:]...)
				break
			}
		}
	}

	if len(board.entries) == 0 {
		delete(p.boards, boardID)
		return []PresenceEntry{}
	}

	return board.snapshot()
}

// Snapshot returns the current entries for a board without mutating
func (p *PresenceRegistry) Snapshot(boardID string) []PresenceEntry {
	p.mu.RLock()
	defer p.mu.RUnlock()

	board := p.boards[boardID]
	if board == nil {
		return []PresenceEntry{}
	}
	return board.snapshot()
}

// BoardCount returns the number of boards with at least one viewer
func (p *PresenceRegistry) BoardCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.boards)
}

// snapshot builds a detached projection; callers never see internal maps
func (b *boardPresence) snapshot() []PresenceEntry {
	users := make([]PresenceEntry, 0, len(b.order))
	for _, uid := range b.order {
		users = append(users, PresenceEntry{UserID: uid, DisplayName: b.entries[uid]})
	}
	return users
}
