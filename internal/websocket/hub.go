package websocket

import (
	"context"

	"go.uber.org/zap"

	"spendmate/pkg/logging"
)

// Hub keeps the set of connected clients and delivers notification
// payloads to the recipient's open connection, if any.
type Hub struct {
	clients    map[uint]*Client
	register   chan *Client
	unregister chan *Client
	deliver    chan outbound
}

type outbound struct {
	userID  uint
	payload []byte
}

// NewHub creates a new Hub instance.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan outbound, 256),
	}
}

// Run processes register, unregister and delivery events until the context
// is canceled. It should be started once, in its own goroutine.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			for userID, client := range h.clients {
				close(client.send)
				delete(h.clients, userID)
			}
			return

		case client := <-h.register:
			if existing, ok := h.clients[client.userID]; ok {
				close(existing.send)
			}
			h.clients[client.userID] = client
			logging.Info("websocket client connected", zap.Uint("userID", client.userID))

		case client := <-h.unregister:
			if current, ok := h.clients[client.userID]; ok && current == client {
				delete(h.clients, client.userID)
				close(client.send)
				logging.Info("websocket client disconnected", zap.Uint("userID", client.userID))
			}

		case msg := <-h.deliver:
			client, ok := h.clients[msg.userID]
			if !ok {
				continue
			}
			select {
			case client.send <- msg.payload:
			default:
				// Slow consumer, drop the connection.
				delete(h.clients, client.userID)
				close(client.send)
				logging.Warn("dropping slow websocket client", zap.Uint("userID", client.userID))
			}
		}
	}
}

// Deliver queues a payload for the given user. Payloads for users
// without an open connection are discarded.
func (h *Hub) Deliver(userID uint, payload []byte) {
	h.deliver <- outbound{userID: userID, payload: payload}
}
