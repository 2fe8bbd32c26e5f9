// Package stream broadcasts cube animation frames to websocket subscribers
// and accepts rotation requests from them.
package stream

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/SeamusWaldron/cubeanim"
)

const writeWait = 2 * time.Second

type subscriber struct {
	id   uuid.UUID
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *subscriber) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub fans messages out to every connected subscriber and forwards their
// rotation requests to the cube.
type Hub struct {
	cube     *cubeanim.Cube
	logger   *slog.Logger
	upgrader websocket.Upgrader
	hello    func(clientID string) HelloMessage

	mu          sync.Mutex
	subscribers map[uuid.UUID]*subscriber
}

// NewHub creates a hub serving c. hello builds the greeting for a new
// subscriber.
func NewHub(c *cubeanim.Cube, logger *slog.Logger, hello func(clientID string) HelloMessage) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		cube:   c,
		logger: logger,
		hello:  hello,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		subscribers: make(map[uuid.UUID]*subscriber),
	}
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// Handle upgrades the request and serves the session until the client
// disconnects.
func (h *Hub) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	sub := &subscriber{id: uuid.New(), conn: conn}
	if h.hello != nil {
		data, err := json.Marshal(h.hello(sub.id.String()))
		if err != nil {
			h.logger.Error("failed to marshal hello", "error", err)
			conn.Close()
			return
		}
		if err := sub.write(data); err != nil {
			conn.Close()
			return
		}
	}

	h.mu.Lock()
	h.subscribers[sub.id] = sub
	h.mu.Unlock()
	h.logger.Info("subscriber connected", "client", sub.id, "remote", r.RemoteAddr)

	defer h.disconnect(sub.id)
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg ClientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.logger.Debug("discarding malformed message", "client", sub.id, "error", err)
			continue
		}

		ack := h.handleClient(msg)
		data, err := json.Marshal(ack)
		if err != nil {
			h.logger.Error("failed to marshal ack", "error", err)
			continue
		}
		if err := sub.write(data); err != nil {
			return
		}
	}
}

func (h *Hub) handleClient(msg ClientMessage) AckMessage {
	ack := AckMessage{Type: TypeReject, Notation: msg.Notation}
	if msg.Type != TypeRotate {
		ack.Reason = "unknown message type " + msg.Type
		return ack
	}

	req, err := h.cube.SubmitNotation(msg.Notation)
	if err != nil {
		ack.Reason = err.Error()
		return ack
	}
	ack.Type = TypeAck
	ack.ID = req.ID.String()
	return ack
}

func (h *Hub) disconnect(id uuid.UUID) {
	h.mu.Lock()
	sub, ok := h.subscribers[id]
	delete(h.subscribers, id)
	h.mu.Unlock()

	if ok {
		sub.conn.Close()
		h.logger.Info("subscriber disconnected", "client", id)
	}
}

// Broadcast sends msg to every subscriber, dropping those that fail.
func (h *Hub) Broadcast(msg any) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal broadcast", "error", err)
		return
	}

	h.mu.Lock()
	subs := make([]*subscriber, 0, len(h.subscribers))
	for _, sub := range h.subscribers {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		if err := sub.write(data); err != nil {
			h.logger.Debug("failed to send update", "client", sub.id, "error", err)
			h.disconnect(sub.id)
		}
	}
}

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	ids := make([]uuid.UUID, 0, len(h.subscribers))
	for id := range h.subscribers {
		ids = append(ids, id)
	}
	h.mu.Unlock()

	for _, id := range ids {
		h.disconnect(id)
	}
}
