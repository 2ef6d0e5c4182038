package chat

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gearsphere/motorclub-backend/internal/models"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	maxMsgSize = 4096
)

type InboundMessage struct {
	Message string `json:"message"`
}

// MessageSink persists an inbound message and returns the payload to
// broadcast, or an error to drop the frame.
type MessageSink func(user *models.User, msg InboundMessage) ([]byte, error)

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	user *models.User
	send chan []byte
	sink MessageSink
}

func NewClient(hub *Hub, conn *websocket.Conn, user *models.User, sink MessageSink) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		user: user,
		send: make(chan []byte, 64),
		sink: sink,
	}
}

// Serve registers the client and starts the read and write pumps. The read
// pump blocks until the connection drops.
func (c *Client) Serve() {
	c.hub.register <- c
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warn("chat read error", "username", c.user.Username, "error", err)
			}
			return
		}

		var msg InboundMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.Message == "" {
			continue
		}

		payload, err := c.sink(c.user, msg)
		if err != nil {
			c.hub.log.Error("chat message rejected", "username", c.user.Username, "error", err)
			continue
		}
		c.hub.Broadcast(payload)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
