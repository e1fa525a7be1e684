package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhilsahni7/huddle-signal/pkg/config"
	"github.com/nikhilsahni7/huddle-signal/pkg/signaling"
)

func testConfig() *config.Config {
	return &config.Config{
		Host:            "127.0.0.1",
		Port:            8000,
		LogLevel:        "INFO",
		AllowedOrigin:   "*",
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		SendBufferSize:  32,
		MaxMessageSize:  65536,
		STUNServers:     config.DefaultSTUN,
	}
}

func newTestServer(t *testing.T) (*httptest.Server, *signaling.Hub) {
	t.Helper()
	cfg := testConfig()
	hub := signaling.NewHub(signaling.HubConfig{
		SendBufferSize: cfg.SendBufferSize,
		MaxMessageSize: int64(cfg.MaxMessageSize),
	})
	ts := httptest.NewServer(New(cfg, hub).Handler())
	t.Cleanup(func() {
		hub.Close()
		ts.Close()
	})
	return ts, hub
}

type peer struct {
	t    *testing.T
	conn *websocket.Conn
	id   string
}

// dial connects to the websocket endpoint and consumes the welcome message
func dial(t *testing.T, ts *httptest.Server) *peer {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	p := &peer{t: t, conn: conn}
	welcome := p.read()
	require.Equal(t, signaling.TypeWelcome, welcome.Type)
	require.NotEmpty(t, welcome.To)
	p.id = welcome.To
	return p
}

func (p *peer) send(msg signaling.Message) {
	p.t.Helper()
	require.NoError(p.t, p.conn.WriteJSON(msg))
}

func (p *peer) read() signaling.Message {
	p.t.Helper()
	require.NoError(p.t, p.conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg signaling.Message
	require.NoError(p.t, p.conn.ReadJSON(&msg))
	return msg
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestPreflight(t *testing.T) {
	ts, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/rooms", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://meet.example.org")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "https://meet.example.org", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestICEServers(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/ice-servers")
	require.NoError(t, err)
	defer resp.Body.Close()

	var servers []webrtc.ICEServer
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&servers))
	require.Len(t, servers, 1)
	assert.Equal(t, []string{config.DefaultSTUN}, servers[0].URLs)
}

func TestCallFlow(t *testing.T) {
	req := require.New(t)
	ts, hub := newTestServer(t)

	alice := dial(t, ts)
	bob := dial(t, ts)
	req.NotEqual(alice.id, bob.id)

	// Alice opens the room and leaves a message
	alice.send(signaling.Message{Type: signaling.TypeJoin, Room: "/standup"})
	joined := alice.read()
	req.Equal(signaling.TypeJoined, joined.Type)
	req.Equal(alice.id, joined.From)
	req.Equal([]string{alice.id}, joined.Clients)

	alice.send(signaling.Message{Type: signaling.TypeChat, Sender: "Alice", Data: json.RawMessage(`"hi"`)})
	echo := alice.read()
	req.Equal(signaling.TypeChat, echo.Type)
	req.Equal(alice.id, echo.From)

	// Bob joins and gets the backlog after the join broadcast
	bob.send(signaling.Message{Type: signaling.TypeJoin, Room: "/standup"})
	joined = bob.read()
	req.Equal(signaling.TypeJoined, joined.Type)
	req.Equal([]string{alice.id, bob.id}, joined.Clients)

	backlog := bob.read()
	req.Equal(signaling.TypeChat, backlog.Type)
	req.Equal("Alice", backlog.Sender)
	req.Equal(alice.id, backlog.From)
	req.JSONEq(`"hi"`, string(backlog.Data))

	joined = alice.read()
	req.Equal(bob.id, joined.From)

	var rooms []signaling.RoomInfo
	resp, err := http.Get(ts.URL + "/api/rooms")
	req.NoError(err)
	req.NoError(json.NewDecoder(resp.Body).Decode(&rooms))
	resp.Body.Close()
	req.Equal([]signaling.RoomInfo{{ID: "/standup", Participants: 2}}, rooms)

	// Offer goes straight to Bob
	alice.send(signaling.Message{Type: signaling.TypeSignal, To: bob.id, Data: json.RawMessage(`{"type":"offer","sdp":"v=0"}`)})
	offer := bob.read()
	req.Equal(signaling.TypeSignal, offer.Type)
	req.Equal(alice.id, offer.From)
	req.JSONEq(`{"type":"offer","sdp":"v=0"}`, string(offer.Data))

	// Bob hangs up
	req.NoError(bob.conn.Close())
	left := alice.read()
	req.Equal(signaling.TypeLeft, left.Type)
	req.Equal(bob.id, left.From)

	req.Eventually(func() bool {
		return hub.ClientCount() == 1
	}, 2*time.Second, 20*time.Millisecond)
	req.Equal([]string{alice.id}, hub.Dispatcher().Participants("/standup"))
}

func TestMalformedFramesAreIgnored(t *testing.T) {
	req := require.New(t)
	ts, _ := newTestServer(t)
	alice := dial(t, ts)

	req.NoError(alice.conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	alice.send(signaling.Message{Type: "offer"})
	alice.send(signaling.Message{Type: signaling.TypeJoin})

	// The connection survives and still works
	alice.send(signaling.Message{Type: signaling.TypeJoin, Room: "r"})
	joined := alice.read()
	req.Equal(signaling.TypeJoined, joined.Type)
	req.Equal([]string{alice.id}, joined.Clients)
}
