package signaling

import (
	"fmt"
	"slices"
	"sort"

	"github.com/samber/lo"

	"github.com/nikhilsahni7/huddle-signal/pkg/util"
)

// Departure describes the room a connection was removed from
type Departure struct {
	RoomID    string
	Remaining []string
	// Emptied is set when the room was deleted by this removal
	Emptied bool
}

// Registry maps rooms to their participant sequence and keeps the reverse
// index from connection to room. Both maps always change together.
//
// Registry is not safe for concurrent use; the Dispatcher serializes access.
type Registry struct {
	// room ID -> connection IDs in join order
	rooms map[string][]string

	// connection ID -> room ID
	index map[string]string
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string][]string),
		index: make(map[string]string),
	}
}

// Join appends connID to the room, creating the room if needed, and returns
// the full participant sequence. Joining the same room twice appends a second
// entry. A connection still in another room must Leave it first.
func (r *Registry) Join(roomID, connID string) ([]string, error) {
	if current, ok := r.index[connID]; ok && current != roomID {
		return nil, fmt.Errorf("join %s: %w: %s", roomID, ErrAlreadyInRoom, current)
	}

	participants, exists := r.rooms[roomID]
	if !exists {
		util.Info("Created new room: %s", roomID)
	}

	participants = append(participants, connID)
	r.rooms[roomID] = participants
	r.index[connID] = roomID

	return slices.Clone(participants), nil
}

// Leave removes connID from its room. The room is deleted once its sequence
// is empty. ok is false when the connection was not in any room.
func (r *Registry) Leave(connID string) (Departure, bool) {
	roomID, ok := r.index[connID]
	if !ok {
		return Departure{}, false
	}
	delete(r.index, connID)

	remaining := lo.Without(r.rooms[roomID], connID)
	dep := Departure{RoomID: roomID, Remaining: slices.Clone(remaining)}

	if len(remaining) == 0 {
		delete(r.rooms, roomID)
		dep.Emptied = true
		util.Info("Removed empty room: %s", roomID)
	} else {
		r.rooms[roomID] = remaining
	}
	return dep, true
}

// RoomOf returns the room connID is currently in
func (r *Registry) RoomOf(connID string) (string, bool) {
	roomID, ok := r.index[connID]
	return roomID, ok
}

// Participants returns a copy of the room's sequence, nil if the room does not exist
func (r *Registry) Participants(roomID string) []string {
	return slices.Clone(r.rooms[roomID])
}

// Rooms returns the IDs of all rooms, sorted
func (r *Registry) Rooms() []string {
	ids := lo.Keys(r.rooms)
	sort.Strings(ids)
	return ids
}
