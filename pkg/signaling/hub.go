package signaling

import (
	"sync"

	"github.com/google/uuid"

	"github.com/nikhilsahni7/huddle-signal/pkg/util"
)

const (
	defaultSendBufferSize = 100
	defaultMaxMessageSize = 64 * 1024
)

// HubConfig tunes per-connection resources
type HubConfig struct {
	// Outbound queue length per client
	SendBufferSize int

	// Maximum message size allowed from peer
	MaxMessageSize int64
}

// Hub keeps the live websocket clients and delivers outbound events to
// them. Room state lives in the Dispatcher.
type Hub struct {
	clients      map[string]*Client
	clientsMutex sync.RWMutex

	dispatcher *Dispatcher
	config     HubConfig
}

// NewHub creates a new Hub instance
func NewHub(cfg HubConfig) *Hub {
	if cfg.SendBufferSize <= 0 {
		cfg.SendBufferSize = defaultSendBufferSize
	}
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = defaultMaxMessageSize
	}

	hub := &Hub{
		clients: make(map[string]*Client),
		config:  cfg,
	}
	hub.dispatcher = NewDispatcher(hub)
	util.Info("Hub initialized")
	return hub
}

// NewConnID returns a fresh connection identifier. IDs are never reused.
func NewConnID() string {
	return uuid.NewString()
}

// Dispatcher returns the event dispatcher owning room state
func (h *Hub) Dispatcher() *Dispatcher {
	return h.dispatcher
}

// Register adds a client, marks it Connected and sends it its ID
func (h *Hub) Register(c *Client) {
	h.clientsMutex.Lock()
	h.clients[c.ID] = c
	h.clientsMutex.Unlock()

	h.dispatcher.Connect(c.ID)
	if err := h.Deliver(c.ID, Welcome{ConnID: c.ID}); err != nil {
		util.Warn("Could not greet client %s: %v", c.ID, err)
	}
}

// unregister removes a client and runs its disconnect
func (h *Hub) unregister(c *Client) {
	h.clientsMutex.Lock()
	if current, ok := h.clients[c.ID]; ok && current == c {
		delete(h.clients, c.ID)
	}
	h.clientsMutex.Unlock()

	h.dispatcher.Dispatch(c.ID, Disconnect{})
}

// Deliver queues ev for the client connID
func (h *Hub) Deliver(connID string, ev Outbound) error {
	h.clientsMutex.RLock()
	c, ok := h.clients[connID]
	h.clientsMutex.RUnlock()

	if !ok {
		return ErrUnknownConnection
	}
	return c.Send(NewMessage(ev))
}

// GetActiveRooms returns the active rooms with their participant counts
func (h *Hub) GetActiveRooms() []RoomInfo {
	rooms := h.dispatcher.Rooms()
	util.Debug("GetActiveRooms returning %d rooms", len(rooms))
	return rooms
}

// ClientCount returns the number of live clients
func (h *Hub) ClientCount() int {
	h.clientsMutex.RLock()
	defer h.clientsMutex.RUnlock()
	return len(h.clients)
}

// Close disconnects every client
func (h *Hub) Close() {
	h.clientsMutex.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMutex.RUnlock()

	for _, c := range clients {
		c.Close()
	}
	util.Info("Hub closed, %d clients disconnected", len(clients))
}
