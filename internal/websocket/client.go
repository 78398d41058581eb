package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"spendmate/internal/config"
	"spendmate/pkg/logging"
)

// Client is a single websocket connection owned by one user.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	userID uint

	writeWait  time.Duration
	pongWait   time.Duration
	pingPeriod time.Duration
	maxMsgSize int64
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Auth happens via JWT before the upgrade, origin is not restricted here.
		return true
	},
}

// ServeWs upgrades the HTTP request to a websocket connection and
// registers the client with the hub.
func ServeWs(hub *Hub, cfg config.WebSocketConfig, userID uint, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("websocket upgrade failed", zap.Uint("userID", userID), zap.Error(err))
		return
	}

	client := &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, 64),
		userID:     userID,
		writeWait:  time.Duration(cfg.WriteWaitSeconds) * time.Second,
		pongWait:   time.Duration(cfg.PongWaitSeconds) * time.Second,
		pingPeriod: time.Duration(cfg.PingPeriodSeconds) * time.Second,
		maxMsgSize: int64(cfg.MaxMessageSizeBytes),
	}
	hub.register <- client

	go client.writePump()
	go client.readPump()
}

// readPump drains inbound frames so pong handlers fire. The stream is
// push only, client payloads are discarded.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.maxMsgSize)
	c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logging.Warn("websocket read error", zap.Uint("userID", c.userID), zap.Error(err))
			}
			return
		}
	}
}

// writePump sends queued payloads and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
