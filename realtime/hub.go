package realtime

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/techagentng/bookclub/models"
	"go.uber.org/zap"
)

// Hub tracks the live connections of every user. A user's channel holds one
// member per open socket, so several devices receive the same events.
type Hub struct {
	mu       sync.RWMutex
	channels map[uuid.UUID]map[string]*Connection
	logger   *zap.SugaredLogger
}

func NewHub(logger *zap.SugaredLogger) *Hub {
	return &Hub{
		channels: make(map[uuid.UUID]map[string]*Connection),
		logger:   logger,
	}
}

// Attach enrolls conn in its user's channel and starts its writer.
func (h *Hub) Attach(conn *Connection) {
	h.mu.Lock()
	members := h.channels[conn.UserID]
	if members == nil {
		members = make(map[string]*Connection)
		h.channels[conn.UserID] = members
	}
	members[conn.ID] = conn
	h.mu.Unlock()

	conn.Start()
	h.logger.Debugw("socket attached", "userId", conn.UserID, "connectionId", conn.ID)
}

// Detach removes conn. The channel is dropped with its last member.
func (h *Hub) Detach(conn *Connection) {
	h.mu.Lock()
	if members, ok := h.channels[conn.UserID]; ok {
		delete(members, conn.ID)
		if len(members) == 0 {
			delete(h.channels, conn.UserID)
		}
	}
	h.mu.Unlock()
	h.logger.Debugw("socket detached", "userId", conn.UserID, "connectionId", conn.ID)
}

// Broadcast sends event to every member of userID's channel and returns how
// many accepted it. A user with no members is not an error.
func (h *Hub) Broadcast(userID uuid.UUID, event models.ServerEvent) int {
	payload, err := models.Encode(event)
	if err != nil {
		h.logger.Errorw("encode event", "event", event.EventName(), "error", err)
		return 0
	}

	h.mu.RLock()
	members := make([]*Connection, 0, len(h.channels[userID]))
	for _, conn := range h.channels[userID] {
		members = append(members, conn)
	}
	h.mu.RUnlock()

	delivered := 0
	for _, conn := range members {
		if err := conn.Send(payload); err != nil {
			h.logger.Warnw("drop event", "userId", userID, "connectionId", conn.ID, "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

func (h *Hub) IsOnline(userID uuid.UUID) bool {
	return h.Members(userID) > 0
}

func (h *Hub) Members(userID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[userID])
}

// Online is the number of users with at least one open connection.
func (h *Hub) Online() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels)
}

// Close terminates every tracked connection.
func (h *Hub) Close() {
	h.mu.Lock()
	var all []*Connection
	for _, members := range h.channels {
		for _, conn := range members {
			all = append(all, conn)
		}
	}
	h.channels = make(map[uuid.UUID]map[string]*Connection)
	h.mu.Unlock()

	for _, conn := range all {
		conn.Close(websocket.CloseGoingAway, "server shutdown")
	}
}
