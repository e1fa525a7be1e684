package signaling

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) (Inbound, error) {
	t.Helper()
	var msg Message
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))
	return msg.Inbound()
}

func TestMessage_Inbound(t *testing.T) {
	req := require.New(t)

	ev, err := decode(t, `{"type":"join-call","room":"/meet/R1"}`)
	req.NoError(err)
	req.Equal(Join{RoomID: "/meet/R1"}, ev)

	ev, err = decode(t, `{"type":"signal","to":"B","data":{"sdp":"v=0","type":"offer"}}`)
	req.NoError(err)
	sig, ok := ev.(Signal)
	req.True(ok)
	req.Equal("B", sig.To)
	req.JSONEq(`{"sdp":"v=0","type":"offer"}`, string(sig.Payload))

	ev, err = decode(t, `{"type":"chat-message","sender":"Alice","data":"hi"}`)
	req.NoError(err)
	req.Equal(ChatMessage{SenderName: "Alice", Payload: json.RawMessage(`"hi"`)}, ev)
}

func TestMessage_InboundRejectsMalformed(t *testing.T) {
	_, err := decode(t, `{"type":"offer"}`)
	assert.ErrorIs(t, err, ErrUnknownEventType)

	_, err = decode(t, `{"type":"join-call"}`)
	assert.Error(t, err, "join without a room")

	_, err = decode(t, `{"type":"signal","data":{}}`)
	assert.Error(t, err, "signal without a target")
}

func TestNewMessage(t *testing.T) {
	tests := []struct {
		name string
		ev   Outbound
		want string
	}{
		{"welcome", Welcome{ConnID: "A"}, `{"type":"welcome","to":"A"}`},
		{"joined", ParticipantJoined{ConnID: "B", Participants: []string{"A", "B"}},
			`{"type":"user-joined","from":"B","clients":["A","B"]}`},
		{"chat", ChatDelivered{Payload: json.RawMessage(`"hi"`), SenderName: "Alice", SenderConnID: "A"},
			`{"type":"chat-message","from":"A","sender":"Alice","data":"hi"}`},
		{"signal", SignalDelivered{From: "A", Payload: json.RawMessage(`{"candidate":"c"}`)},
			`{"type":"signal","from":"A","data":{"candidate":"c"}}`},
		{"left", ParticipantLeft{ConnID: "A"}, `{"type":"user-left","from":"A"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(NewMessage(tt.ev))
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(data))
		})
	}
}
