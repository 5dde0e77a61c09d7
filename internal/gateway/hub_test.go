package gateway

import (
	"sync"
	"testing"
)

// recorder is an outbound endpoint that captures delivered payloads.
type recorder struct {
	mu       sync.Mutex
	payloads [][]byte
	full     bool
}

func (r *recorder) Enqueue(payload []byte) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return false
	}
	r.payloads = append(r.payloads, payload)
	return true
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.payloads)
}

func TestHub_JoinBroadcast(t *testing.T) {
	h := NewHub(nil)
	a := &recorder{}
	b := &recorder{}

	h.Join("c1", a, []RoomRef{TenantRoom("t1"), TenantUserRoom("t1", "u1")})
	h.Join("c2", b, []RoomRef{TenantRoom("t1")})

	h.Broadcast(TenantRoom("t1"), []byte("hello"))
	if a.count() != 1 || b.count() != 1 {
		t.Errorf("Expected both members to receive, got %d and %d", a.count(), b.count())
	}

	h.Broadcast(TenantUserRoom("t1", "u1"), []byte("private"))
	if a.count() != 2 {
		t.Errorf("Expected private room member to receive, got %d", a.count())
	}
	if b.count() != 1 {
		t.Errorf("Expected non-member to be skipped, got %d", b.count())
	}
}

func TestHub_BroadcastEmptyRoom(t *testing.T) {
	h := NewHub(nil)
	// Broadcasting into a room nobody joined must not panic.
	h.Broadcast(TenantRoom("ghost"), []byte("anyone"))
	if h.RoomSize(TenantRoom("ghost")) != 0 {
		t.Error("Expected empty room to stay empty")
	}
}

func TestHub_Leave(t *testing.T) {
	h := NewHub(nil)
	a := &recorder{}

	rooms := []RoomRef{TenantRoom("t1"), TenantAdminRoom("t1"), GlobalAdminRoom()}
	h.Join("c1", a, rooms)
	for _, room := range rooms {
		if h.RoomSize(room) != 1 {
			t.Fatalf("Expected c1 in room %s", room.Key())
		}
	}

	h.Leave("c1")
	for _, room := range rooms {
		if h.RoomSize(room) != 0 {
			t.Errorf("Expected room %s empty after leave", room.Key())
		}
	}

	h.Broadcast(TenantRoom("t1"), []byte("gone"))
	if a.count() != 0 {
		t.Errorf("Expected no delivery after leave, got %d", a.count())
	}

	// Leaving twice is a no-op.
	h.Leave("c1")
	h.Leave("never-joined")
}

func TestHub_SlowRecipientSkipped(t *testing.T) {
	h := NewHub(nil)
	slow := &recorder{full: true}
	fast := &recorder{}

	h.Join("slow", slow, []RoomRef{TenantRoom("t1")})
	h.Join("fast", fast, []RoomRef{TenantRoom("t1")})

	h.Broadcast(TenantRoom("t1"), []byte("event"))
	if slow.count() != 0 {
		t.Errorf("Expected slow recipient to drop, got %d", slow.count())
	}
	if fast.count() != 1 {
		t.Errorf("Expected fast recipient to receive, got %d", fast.count())
	}
}
