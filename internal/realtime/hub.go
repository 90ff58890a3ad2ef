package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Client is one WebSocket connection and the rooms it has joined.
type Client struct {
	UserID string
	Role   string
	send   chan json.RawMessage
	rooms  map[string]struct{}
}

func newClient(userID, role string, buffer int) *Client {
	return &Client{
		UserID: userID,
		Role:   role,
		send:   make(chan json.RawMessage, buffer),
		rooms:  make(map[string]struct{}),
	}
}

// Hub tracks project rooms for this process only. Cross-instance delivery goes
// through the Redis backbone and the Relay.
type Hub struct {
	mu     sync.RWMutex
	rooms  map[string]map[*Client]struct{}
	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{rooms: make(map[string]map[*Client]struct{}), logger: logger}
}

func (h *Hub) Name() string { return "ws" }

func (h *Hub) Join(c *Client, projectID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[projectID]
	if !ok {
		room = make(map[*Client]struct{})
		h.rooms[projectID] = room
	}
	room[c] = struct{}{}
	c.rooms[projectID] = struct{}{}
}

func (h *Hub) Leave(c *Client, projectID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c, projectID)
}

func (h *Hub) leaveLocked(c *Client, projectID string) {
	delete(c.rooms, projectID)
	room, ok := h.rooms[projectID]
	if !ok {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(h.rooms, projectID)
	}
}

// Remove drops c from every room it joined.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for projectID := range c.rooms {
		h.leaveLocked(c, projectID)
	}
}

// Deliver queues an encoded frame for every member of the room.
func (h *Hub) Deliver(projectID string, frame json.RawMessage) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for c := range h.rooms[projectID] {
		select {
		case c.send <- frame:
			delivered++
		default:
			h.logger.Debug("WebSocket client queue full, dropping frame",
				zap.String("project_id", projectID),
				zap.String("user_id", c.UserID),
			)
		}
	}
	return delivered
}

// Broadcast delivers to local rooms directly. Used when no Redis backbone is configured.
func (h *Hub) Broadcast(_ context.Context, projectID string, evt Event) error {
	frame, err := encodeSocketFrame(evt)
	if err != nil {
		return err
	}
	h.Deliver(projectID, frame)
	return nil
}

func (h *Hub) RoomSize(projectID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[projectID])
}
