package signaling

import (
	"encoding/json"
	"slices"
)

// ChatEntry is one stored chat message. Entries are never modified.
type ChatEntry struct {
	SenderName   string
	Payload      json.RawMessage
	SenderConnID string
}

// History keeps the chat log of every room for the lifetime of the process.
// Logs outlive their rooms: a room that empties and is later recreated under
// the same ID replays the old log.
type History struct {
	logs map[string][]ChatEntry
}

// NewHistory creates an empty store
func NewHistory() *History {
	return &History{logs: make(map[string][]ChatEntry)}
}

// Append adds entry at the end of the room's log
func (h *History) Append(roomID string, entry ChatEntry) {
	h.logs[roomID] = append(h.logs[roomID], entry)
}

// Get returns the room's log in arrival order, empty if there is none
func (h *History) Get(roomID string) []ChatEntry {
	return slices.Clone(h.logs[roomID])
}

// Len returns the number of stored entries for roomID
func (h *History) Len(roomID string) int {
	return len(h.logs[roomID])
}
