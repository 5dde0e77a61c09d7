package gateway

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/storegate-io/storegate/internal/identity"
)

// Session is the resolved identity of one established connection.
// It exists in the registry iff the transport connection is open and the
// handshake succeeded; there are no partially-authenticated sessions.
type Session struct {
	// ConnectionID is opaque and unique per physical connection.
	ConnectionID string
	// SubjectID is the authenticated principal, from the verified token.
	SubjectID string
	// PrincipalTenantID is the tenant the token asserts. Empty for global admins.
	PrincipalTenantID string
	// Role is the principal's role from the token.
	Role string
	// ResolvedDomain is derived from connection-time network metadata.
	ResolvedDomain string
	// ResolvedTenantID comes from the directory lookup of ResolvedDomain.
	// It is authoritative for room scoping.
	ResolvedTenantID string
	// ConnectedAt is when the session was established.
	ConnectedAt time.Time
}

// IsAdmin reports whether the session's role permits cross-tenant access.
func (s *Session) IsAdmin() bool {
	return s.Role == identity.RoleAdmin
}

// outbound is the delivery seam between the hub and a transport connection.
// Enqueue must never block; it reports whether the payload was accepted.
type outbound interface {
	Enqueue(payload []byte) bool
}

const (
	// writeWait bounds a single websocket write.
	writeWait = 10 * time.Second
	// pingPeriod must be shorter than the read deadline clients apply.
	pingPeriod = 30 * time.Second
)

// wsConn wraps a websocket connection with a buffered outbound channel so
// broadcast paths never block on a slow client. A full buffer drops the
// payload for this recipient; delivery is best-effort with no retry.
type wsConn struct {
	id       string
	sock     *websocket.Conn
	send     chan []byte
	done     chan struct{}
	exited   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func newWSConn(id string, sock *websocket.Conn, buffer int, logger *zap.Logger) *wsConn {
	if buffer <= 0 {
		buffer = 64
	}
	return &wsConn{
		id:     id,
		sock:   sock,
		send:   make(chan []byte, buffer),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
		logger: logger,
	}
}

// Enqueue queues a payload for delivery without blocking.
func (c *wsConn) Enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- payload:
		return true
	default:
		c.logger.Debug("send buffer full, dropping event",
			zap.String("connection_id", c.id))
		return false
	}
}

// writePump serializes all writes to the socket from the send channel.
// It owns the socket's write side; it exits when the connection is stopped.
func (c *wsConn) writePump() {
	defer close(c.exited)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case payload := <-c.send:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.TextMessage, payload); err != nil {
				c.logger.Debug("write failed",
					zap.String("connection_id", c.id), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			// Drain anything already queued so a rejection payload can flush.
			for {
				select {
				case payload := <-c.send:
					_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
					_ = c.sock.WriteMessage(websocket.TextMessage, payload)
				default:
					return
				}
			}
		}
	}
}

// stop signals the write pump to drain and waits for it to exit, so the
// caller may close the socket without cutting off queued payloads.
// Safe to call more than once.
func (c *wsConn) stop() {
	c.stopOnce.Do(func() {
		close(c.done)
	})
	<-c.exited
}
