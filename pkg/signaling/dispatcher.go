package signaling

import (
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/nikhilsahni7/huddle-signal/pkg/util"
)

// ConnState is the lifecycle state of a connection
type ConnState int

const (
	// StateDisconnected is terminal. Unknown ids report it as well.
	StateDisconnected ConnState = iota
	StateConnected
	StateJoined
)

func (s ConnState) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateJoined:
		return "joined"
	default:
		return "disconnected"
	}
}

// RoomInfo is a snapshot of one active room
type RoomInfo struct {
	ID           string `json:"id"`
	Participants int    `json:"participants"`
}

// Dispatcher receives inbound events, updates the registry, history and
// session tracker, and emits outbound events through the transport.
//
// Every event is handled to completion under a single lock, so handlers
// never interleave. Events of one connection must be dispatched in the
// order they arrived.
type Dispatcher struct {
	mu sync.Mutex

	registry  *Registry
	history   *History
	sessions  *Sessions
	router    *Router
	transport Transport

	// connections that are Connected or Joined
	live map[string]struct{}

	now func() time.Time
}

// NewDispatcher creates a dispatcher with empty state delivering through t
func NewDispatcher(t Transport) *Dispatcher {
	return &Dispatcher{
		registry:  NewRegistry(),
		history:   NewHistory(),
		sessions:  NewSessions(),
		router:    NewRouter(t),
		transport: t,
		live:      make(map[string]struct{}),
		now:       time.Now,
	}
}

// Connect registers a new connection in the Connected state
func (d *Dispatcher) Connect(connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.live[connID] = struct{}{}
	util.Debug("Connection %s connected", connID)
}

// Dispatch handles one inbound event from connID. Events from connections
// that are not live are ignored.
func (d *Dispatcher) Dispatch(connID string, ev Inbound) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.live[connID]; !ok {
		util.Debug("Ignoring %T from connection %s that is not live", ev, connID)
		return
	}

	switch e := ev.(type) {
	case Join:
		d.join(connID, e.RoomID)
	case Signal:
		d.router.Relay(connID, e.To, e.Payload)
	case ChatMessage:
		d.chat(connID, e)
	case Disconnect:
		d.disconnect(connID)
	default:
		util.Warn("Unhandled event %T from connection %s", ev, connID)
	}
}

func (d *Dispatcher) join(connID, roomID string) {
	if current, ok := d.registry.RoomOf(connID); ok && current != roomID {
		util.Info("Client %s switching from room %s to %s", connID, current, roomID)
		d.leave(connID)
	}

	participants, err := d.registry.Join(roomID, connID)
	if err != nil {
		util.Warn("Client %s could not join: %v", connID, err)
		return
	}
	d.sessions.RecordJoin(connID, d.now())
	util.Info("Client %s joined room %s (%d participants)", connID, roomID, len(participants))

	fanout(d.transport, participants, ParticipantJoined{ConnID: connID, Participants: participants})

	// Backlog goes to the new connection only, after the join broadcast
	backlog := d.history.Get(roomID)
	for _, entry := range backlog {
		ev := ChatDelivered{Payload: entry.Payload, SenderName: entry.SenderName, SenderConnID: entry.SenderConnID}
		if err := d.transport.Deliver(connID, ev); err != nil {
			util.Debug("Backlog replay to %s stopped: %v", connID, err)
			break
		}
	}
	if len(backlog) > 0 {
		util.Debug("Replayed %d chat messages of room %s to %s", len(backlog), roomID, connID)
	}
}

func (d *Dispatcher) chat(connID string, msg ChatMessage) {
	roomID, ok := d.registry.RoomOf(connID)
	if !ok {
		util.Debug("Chat from %s dropped: not in a room", connID)
		return
	}

	d.history.Append(roomID, ChatEntry{
		SenderName:   msg.SenderName,
		Payload:      msg.Payload,
		SenderConnID: connID,
	})
	util.Debug("message %s: %s %s", roomID, msg.SenderName, string(msg.Payload))

	fanout(d.transport, d.registry.Participants(roomID), ChatDelivered{
		Payload:      msg.Payload,
		SenderName:   msg.SenderName,
		SenderConnID: connID,
	})
}

// leave removes connID from its room and notifies the remaining members
func (d *Dispatcher) leave(connID string) {
	dep, ok := d.registry.Leave(connID)
	if !ok {
		return
	}

	fanout(d.transport, dep.Remaining, ParticipantLeft{ConnID: connID})
	util.Info("Client %s removed from room %s (%d remaining)", connID, dep.RoomID, len(dep.Remaining))
}

func (d *Dispatcher) disconnect(connID string) {
	d.leave(connID)
	d.sessions.Forget(connID)
	delete(d.live, connID)
	util.Debug("Connection %s disconnected", connID)
}

// State returns the lifecycle state of connID
func (d *Dispatcher) State(connID string) ConnState {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.live[connID]; !ok {
		return StateDisconnected
	}
	if _, ok := d.registry.RoomOf(connID); ok {
		return StateJoined
	}
	return StateConnected
}

// Rooms returns a snapshot of the active rooms sorted by ID
func (d *Dispatcher) Rooms() []RoomInfo {
	d.mu.Lock()
	defer d.mu.Unlock()

	return lo.Map(d.registry.Rooms(), func(id string, _ int) RoomInfo {
		return RoomInfo{ID: id, Participants: len(d.registry.Participants(id))}
	})
}

// Participants returns the participant sequence of roomID
func (d *Dispatcher) Participants(roomID string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.registry.Participants(roomID)
}

// History returns the chat log of roomID, whether or not the room is active
func (d *Dispatcher) History(roomID string) []ChatEntry {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.history.Get(roomID)
}

// JoinedAt returns when connID last joined a room
func (d *Dispatcher) JoinedAt(connID string) (time.Time, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sessions.JoinedAt(connID)
}
