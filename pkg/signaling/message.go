package signaling

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Message is the JSON envelope exchanged with clients over the websocket
type Message struct {
	// Type of message: "join-call", "signal", "chat-message", "user-joined", etc.
	Type string `json:"type"`

	// Sender's connection ID, set by the server on outbound messages
	From string `json:"from,omitempty"`

	// Recipient's connection ID for signals, own ID on welcome
	To string `json:"to,omitempty"`

	// Room path for join-call
	Room string `json:"room,omitempty"`

	// Display name supplied by the chat sender
	Sender string `json:"sender,omitempty"`

	// Participant sequence on user-joined
	Clients []string `json:"clients,omitempty"`

	// Opaque content, relayed verbatim
	Data json.RawMessage `json:"data,omitempty"`
}

// Inbound converts a message read from a client into an event. Frames with
// an unknown type or missing required fields are rejected.
func (m *Message) Inbound() (Inbound, error) {
	var ev Inbound
	switch m.Type {
	case TypeJoin:
		ev = Join{RoomID: m.Room}
	case TypeSignal:
		ev = Signal{To: m.To, Payload: m.Data}
	case TypeChat:
		ev = ChatMessage{Payload: m.Data, SenderName: m.Sender}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEventType, m.Type)
	}

	if err := validate.Struct(ev); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", m.Type, err)
	}
	return ev, nil
}

// NewMessage builds the envelope for an outbound event
func NewMessage(ev Outbound) *Message {
	msg := &Message{Type: ev.EventType()}

	switch e := ev.(type) {
	case Welcome:
		msg.To = e.ConnID
	case ParticipantJoined:
		msg.From = e.ConnID
		msg.Clients = e.Participants
		if msg.Clients == nil {
			msg.Clients = []string{}
		}
	case ChatDelivered:
		msg.From = e.SenderConnID
		msg.Sender = e.SenderName
		msg.Data = e.Payload
	case SignalDelivered:
		msg.From = e.From
		msg.Data = e.Payload
	case ParticipantLeft:
		msg.From = e.ConnID
	}
	return msg
}
