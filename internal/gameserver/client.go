package gameserver

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
	sendBufferSize = 256
)

// Client is one websocket connection. The read pump dispatches intents to
// the server; the write pump drains the buffered send channel so a slow
// socket never blocks event fan-out.
type Client struct {
	id     string
	conn   *websocket.Conn
	server *Server
	send   chan []byte

	// gameID of the session this connection last joined; only the
	// connection's own goroutine writes it.
	gameID string
}

func newClient(id string, conn *websocket.Conn, server *Server) *Client {
	return &Client{
		id:     id,
		conn:   conn,
		server: server,
		send:   make(chan []byte, sendBufferSize),
	}
}

// enqueue hands a marshalled message to the write pump. Full buffers drop
// the message; the client can resynchronise through chunk snapshots.
func (c *Client) enqueue(msg []byte) {
	select {
	case c.send <- msg:
	default:
		slog.Warn("send buffer full, dropping message", "connID", c.id)
	}
}

// sendMessage marshals and enqueues one envelope.
func (c *Client) sendMessage(msgType string, payload any) {
	data, err := json.Marshal(serverMessage{Type: msgType, Payload: payload})
	if err != nil {
		slog.Error("marshalling outbound message", "type", msgType, "error", err)
		return
	}
	c.enqueue(data)
}

// sendError surfaces a named error kind to the connection.
func (c *Client) sendError(kind, message string) {
	c.sendMessage("error", errorPayload{Kind: kind, Message: message})
}

// readPump reads intents until the connection drops, then lets the server
// run the disconnect path.
func (c *Client) readPump() {
	defer func() {
		c.server.onDisconnect(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read error", "connID", c.id, "error", err)
			}
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			c.sendError("invalidInput", "malformed message")
			continue
		}
		c.server.handleMessage(c, msg)
	}
}

// writePump writes queued messages and keeps the connection alive with
// pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
