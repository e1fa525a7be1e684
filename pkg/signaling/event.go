package signaling

import "encoding/json"

// Inbound is an event received from a connection. The set is closed: Join,
// Signal, ChatMessage and Disconnect.
type Inbound interface {
	inbound()
}

// Join asks for the connection to be added to a room.
type Join struct {
	RoomID string `validate:"required,max=2048"`
}

// Signal relays an opaque negotiation payload (SDP, ICE candidate) to
// another connection.
type Signal struct {
	To      string `validate:"required"`
	Payload json.RawMessage
}

// ChatMessage is a text message for everybody in the sender's room.
// SenderName is whatever the client claims to be.
type ChatMessage struct {
	Payload    json.RawMessage
	SenderName string
}

// Disconnect is raised by the transport when the connection goes away.
type Disconnect struct{}

func (Join) inbound()        {}
func (Signal) inbound()      {}
func (ChatMessage) inbound() {}
func (Disconnect) inbound()  {}

// Outbound is an event delivered to one connection.
type Outbound interface {
	EventType() string
}

// Wire names for every event.
const (
	TypeWelcome = "welcome"
	TypeJoin    = "join-call"
	TypeJoined  = "user-joined"
	TypeChat    = "chat-message"
	TypeSignal  = "signal"
	TypeLeft    = "user-left"
)

// Welcome tells a fresh connection its transport assigned id.
type Welcome struct {
	ConnID string
}

// ParticipantJoined carries the new connection and the full participant
// sequence, in join order.
type ParticipantJoined struct {
	ConnID       string
	Participants []string
}

// ChatDelivered is used both for live chat and backlog replay.
type ChatDelivered struct {
	Payload      json.RawMessage
	SenderName   string
	SenderConnID string
}

// SignalDelivered is a relayed Signal.
type SignalDelivered struct {
	From    string
	Payload json.RawMessage
}

// ParticipantLeft tells the remaining members that ConnID is gone.
type ParticipantLeft struct {
	ConnID string
}

func (Welcome) EventType() string           { return TypeWelcome }
func (ParticipantJoined) EventType() string { return TypeJoined }
func (ChatDelivered) EventType() string     { return TypeChat }
func (SignalDelivered) EventType() string   { return TypeSignal }
func (ParticipantLeft) EventType() string   { return TypeLeft }
