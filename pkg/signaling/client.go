package signaling

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nikhilsahni7/huddle-signal/pkg/util"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10
)

// Client is one websocket connection
type Client struct {
	ID        string
	conn      *websocket.Conn
	send      chan *Message
	hub       *Hub
	closeOnce sync.Once
	closed    bool
	mutex     sync.Mutex
}

// NewClient registers a connection with the hub and starts its message
// handling. The hub greets it with its ID.
func NewClient(id string, conn *websocket.Conn, hub *Hub) *Client {
	client := &Client{
		ID:   id,
		conn: conn,
		send: make(chan *Message, hub.config.SendBufferSize),
		hub:  hub,
	}

	hub.Register(client)

	go client.readPump()
	go client.writePump()

	return client
}

// Send queues a message for the client. It never blocks: a client that does
// not drain its queue is closed.
func (c *Client) Send(msg *Message) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.send <- msg:
		return nil
	default:
		util.Warn("Message buffer full for client %s, closing connection", c.ID)
		// Close re-enters the dispatcher, which may be the caller
		go c.Close()
		return ErrSendBufferFull
	}
}

// Close stops the client and runs its disconnect. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		c.mutex.Lock()
		c.closed = true
		// writePump sends the close frame and closes the socket
		close(c.send)
		c.mutex.Unlock()

		c.hub.unregister(c)
		util.Info("Client %s disconnected", c.ID)
	})
}

// readPump pumps messages from the websocket to the dispatcher
func (c *Client) readPump() {
	defer c.Close()

	c.conn.SetReadLimit(c.hub.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, rawMsg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				util.Error("WebSocket read error for client %s: %v", c.ID, err)
			} else {
				util.Debug("WebSocket connection closed for client %s: %v", c.ID, err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(rawMsg, &msg); err != nil {
			util.Warn("Error parsing message from client %s: %v", c.ID, err)
			continue
		}

		ev, err := msg.Inbound()
		if err != nil {
			util.Warn("Dropping message from client %s: %v", c.ID, err)
			continue
		}

		c.hub.dispatcher.Dispatch(c.ID, ev)
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		c.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				util.Debug("Send channel closed for client %s", c.ID)
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(msg)
			if err != nil {
				util.Error("Error marshaling message for client %s: %v", c.ID, err)
				continue
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				util.Warn("Error writing to websocket for client %s: %v", c.ID, err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				util.Debug("Error sending ping to client %s: %v", c.ID, err)
				return
			}
		}
	}
}
