package gateway

import (
	"sync"

	"go.uber.org/zap"
)

// Hub maps room keys to the connections joined to them and fans payloads out
// to every member of a room. Delivery is non-blocking per recipient: a slow
// connection drops the payload rather than stalling the broadcast.
type Hub struct {
	mu sync.RWMutex
	// rooms: room key -> connection id -> delivery endpoint
	rooms map[string]map[string]outbound
	// membership: connection id -> keys joined, so Leave needs no room refs
	membership map[string][]string
	logger     *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		rooms:      make(map[string]map[string]outbound),
		membership: make(map[string][]string),
		logger:     logger,
	}
}

// Join adds a connection to every room in the set in one critical section.
// The fan-out side never observes a partially joined connection.
func (h *Hub) Join(connectionID string, out outbound, rooms []RoomRef) {
	h.mu.Lock()
	defer h.mu.Unlock()

	keys := make([]string, 0, len(rooms))
	for _, room := range rooms {
		key := room.Key()
		members, ok := h.rooms[key]
		if !ok {
			members = make(map[string]outbound)
			h.rooms[key] = members
		}
		members[connectionID] = out
		keys = append(keys, key)
	}
	h.membership[connectionID] = keys
}

// Leave removes a connection from every room it joined. Unknown connections
// are a no-op.
func (h *Hub) Leave(connectionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, key := range h.membership[connectionID] {
		if members, ok := h.rooms[key]; ok {
			delete(members, connectionID)
			if len(members) == 0 {
				delete(h.rooms, key)
			}
		}
	}
	delete(h.membership, connectionID)
}

// Broadcast delivers a payload to every connection in a room. Recipients that
// cannot accept it are skipped; there is no retry.
func (h *Hub) Broadcast(room RoomRef, payload []byte) {
	key := room.Key()

	h.mu.RLock()
	members := h.rooms[key]
	// Copy endpoints out so the send happens outside the lock.
	outs := make([]outbound, 0, len(members))
	for _, out := range members {
		outs = append(outs, out)
	}
	h.mu.RUnlock()

	for _, out := range outs {
		out.Enqueue(payload)
	}

	h.logger.Debug("broadcast",
		zap.String("room", key),
		zap.Int("recipients", len(outs)))
}

// RoomSize returns how many connections are joined to a room.
func (h *Hub) RoomSize(room RoomRef) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room.Key()])
}
