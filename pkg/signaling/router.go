package signaling

import (
	"encoding/json"
	"errors"

	"github.com/nikhilsahni7/huddle-signal/pkg/util"
)

// Transport delivers an outbound event to a single live connection.
// Implementations must not block.
type Transport interface {
	Deliver(connID string, ev Outbound) error
}

// TransportFunc adapts a function to Transport
type TransportFunc func(connID string, ev Outbound) error

// Deliver calls f
func (f TransportFunc) Deliver(connID string, ev Outbound) error {
	return f(connID, ev)
}

// fanout delivers ev to every target in order. A failed delivery is logged
// and does not stop the remaining ones. It returns the number of successful
// deliveries.
func fanout(t Transport, targets []string, ev Outbound) int {
	delivered := 0
	for _, target := range targets {
		if err := t.Deliver(target, ev); err != nil {
			util.Debug("Dropped %s for %s: %v", ev.EventType(), target, err)
			continue
		}
		delivered++
	}
	return delivered
}

// Router relays signaling payloads between two connections. It does not
// check that they share a room.
type Router struct {
	transport Transport
}

// NewRouter creates a router on top of t
func NewRouter(t Transport) *Router {
	return &Router{transport: t}
}

// Relay delivers payload from one connection to another. Unknown or closed
// targets are dropped silently; the sender is never told.
func (r *Router) Relay(from, to string, payload json.RawMessage) bool {
	err := r.transport.Deliver(to, SignalDelivered{From: from, Payload: payload})
	switch {
	case err == nil:
		util.Debug("Relayed signal from %s to %s (%d bytes)", from, to, len(payload))
		return true
	case errors.Is(err, ErrUnknownConnection):
		util.Debug("Signal from %s to unknown connection %s dropped", from, to)
	default:
		util.Debug("Signal from %s to %s dropped: %v", from, to, err)
	}
	return false
}
