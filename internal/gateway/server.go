package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	wire "github.com/storegate-io/storegate/pkg/gateway"
)

const (
	// pongWait is how long a connection may stay silent before the read side
	// gives up. Must be longer than pingPeriod.
	pongWait = 60 * time.Second
	// maxMessageSize bounds inbound client frames; clients only ever send the
	// auth frame and pongs.
	maxMessageSize = 4096
)

// Options configures the gateway server.
type Options struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
	// AllowedOrigins restricts the upgrade Origin check; "*" allows any.
	AllowedOrigins []string
	// AuthWait bounds the wait for an auth frame when no Authorization
	// header accompanied the upgrade request.
	AuthWait time.Duration
	// RejectGrace is how long a rejected connection stays open so the
	// rejection payload can flush before the forced close.
	RejectGrace time.Duration
	// SendBuffer is the per-connection outbound channel capacity.
	SendBuffer int
}

func (o *Options) setDefaults() {
	if o.Addr == "" {
		o.Addr = ":8080"
	}
	if len(o.AllowedOrigins) == 0 {
		o.AllowedOrigins = []string{"*"}
	}
	if o.AuthWait <= 0 {
		o.AuthWait = 2 * time.Second
	}
	if o.RejectGrace <= 0 {
		o.RejectGrace = time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 64
	}
}

// Server is the persistent-connection gateway: it upgrades websocket
// connections, runs the handshake to completion, and hands established
// sessions to the hub and registry.
type Server struct {
	opts     Options
	resolver *Resolver
	registry *Registry
	hub      *Hub
	upgrader websocket.Upgrader
	server   *http.Server
	logger   *zap.Logger
	started  time.Time
}

// NewServer creates a gateway server.
func NewServer(opts Options, resolver *Resolver, registry *Registry, hub *Hub, logger *zap.Logger) *Server {
	opts.setDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		opts:     opts,
		resolver: resolver,
		registry: registry,
		hub:      hub,
		logger:   logger,
		started:  time.Now(),
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}

	s.server = &http.Server{
		Addr:           opts.Addr,
		Handler:        s.Handler(),
		ReadTimeout:    30 * time.Second,
		IdleTimeout:    120 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	return s
}

// Handler returns the HTTP handler, exposed separately for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/events", s.handleEvents)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	for _, allowed := range s.opts.AllowedOrigins {
		if allowed == "*" {
			return true
		}
		if r.Header.Get("Origin") == allowed {
			return true
		}
	}
	return false
}

// handleEvents accepts one websocket connection and drives it through the
// full lifecycle: handshake, room join, event delivery, disconnect.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	sock, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	connectionID := uuid.New().String()
	lc := NewLifecycle()
	conn := newWSConn(connectionID, sock, s.opts.SendBuffer, s.logger)
	go conn.writePump()
	frames := s.startReader(sock)

	defer func() {
		conn.stop()
		_ = sock.Close()
	}()

	if err := lc.Transition(StateAuthenticating); err != nil {
		s.logger.Error("lifecycle error", zap.Error(err))
		return
	}

	// Token extraction in fixed priority order: the upgrade request's
	// Authorization header wins; without one, wait briefly for an auth frame;
	// the query parameter is the last resort.
	var frameToken string
	if r.Header.Get("Authorization") == "" {
		frameToken = s.awaitAuthFrame(frames)
	}

	token, hErr := ExtractToken(r.Header, frameToken, r.URL.Query())
	var ident *Identity
	if hErr == nil {
		domain := ResolveDomain(r.Header, r.Host)
		ident, hErr = s.resolver.Resolve(r.Context(), token, domain)
	}
	if hErr != nil {
		s.reject(lc, conn, sock, connectionID, hErr)
		return
	}

	if err := lc.Transition(StateRoomJoining); err != nil {
		s.logger.Error("lifecycle error", zap.Error(err))
		return
	}

	session := &Session{
		ConnectionID:      connectionID,
		SubjectID:         ident.SubjectID,
		PrincipalTenantID: ident.PrincipalTenantID,
		Role:              ident.Role,
		ResolvedDomain:    ident.ResolvedDomain,
		ResolvedTenantID:  ident.ResolvedTenantID,
		ConnectedAt:       time.Now(),
	}

	rooms := MembershipFor(session)
	keys := make([]string, len(rooms))
	for i, room := range rooms {
		keys[i] = room.Key()
	}

	// All rooms joined and the registry entry written before the session is
	// observable: the fan-out side sees it fully joined or not at all.
	s.hub.Join(connectionID, conn, rooms)
	s.registry.Insert(session)

	if err := lc.Transition(StateEstablished); err != nil {
		s.logger.Error("lifecycle error", zap.Error(err))
		s.hub.Leave(connectionID)
		s.registry.Delete(connectionID)
		return
	}

	s.sendEnvelope(conn, wire.Envelope{
		Event: wire.EventAck,
		Data: wire.AckPayload{
			SubjectID:         session.SubjectID,
			PrincipalTenantID: session.PrincipalTenantID,
			ResolvedDomain:    session.ResolvedDomain,
			ResolvedTenantID:  session.ResolvedTenantID,
			Rooms:             keys,
		},
	})

	s.logger.Info("connection established",
		zap.String("connection_id", connectionID),
		zap.String("subject_id", session.SubjectID),
		zap.String("domain", session.ResolvedDomain),
		zap.String("tenant_id", session.ResolvedTenantID))

	// Block until the read side reports the peer gone.
	for range frames {
	}

	s.registry.Delete(connectionID)
	s.hub.Leave(connectionID)
	if err := lc.Transition(StateClosed); err != nil {
		s.logger.Error("lifecycle error", zap.Error(err))
	}

	s.logger.Info("connection closed", zap.String("connection_id", connectionID))
}

// startReader owns the read side of the socket for the connection's whole
// lifetime: one goroutine feeds inbound frames into the returned channel and
// closes it when the peer goes away. Centralizing all reads here means the
// auth-frame wait is a channel select, never a read deadline on the socket
// (gorilla caches read errors, so a timed-out read would poison every read
// after it).
func (s *Server) startReader(sock *websocket.Conn) <-chan []byte {
	sock.SetReadLimit(maxMessageSize)
	_ = sock.SetReadDeadline(time.Now().Add(pongWait))
	sock.SetPongHandler(func(string) error {
		return sock.SetReadDeadline(time.Now().Add(pongWait))
	})

	frames := make(chan []byte, 1)
	go func() {
		defer close(frames)
		for {
			_, raw, err := sock.ReadMessage()
			if err != nil {
				return
			}
			_ = sock.SetReadDeadline(time.Now().Add(pongWait))
			select {
			case frames <- raw:
			default:
				// No post-handshake protocol; unconsumed frames are dropped.
			}
		}
	}()
	return frames
}

// awaitAuthFrame waits up to AuthWait for a single credential frame. Returns
// the token, or empty when none arrived in time.
func (s *Server) awaitAuthFrame(frames <-chan []byte) string {
	timer := time.NewTimer(s.opts.AuthWait)
	defer timer.Stop()

	select {
	case raw, ok := <-frames:
		if !ok {
			return ""
		}
		var frame wire.AuthFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			return ""
		}
		return frame.Token
	case <-timer.C:
		return ""
	}
}

// reject sends the structured rejection payload, waits out the grace period
// so it can flush, and closes the connection unilaterally.
func (s *Server) reject(lc *Lifecycle, conn *wsConn, sock *websocket.Conn, connectionID string, hErr *HandshakeError) {
	if err := lc.Transition(StateRejected); err != nil {
		s.logger.Error("lifecycle error", zap.Error(err))
	}

	s.logger.Warn("handshake rejected",
		zap.String("connection_id", connectionID),
		zap.String("failure", string(hErr.Kind)),
		zap.String("reason", hErr.Message))

	s.sendEnvelope(conn, wire.Envelope{
		Event:   wire.EventError,
		Message: string(hErr.Kind),
		Data:    wire.ErrorPayload{Message: hErr.Message},
	})

	time.Sleep(s.opts.RejectGrace)

	deadline := time.Now().Add(writeWait)
	closeMsg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, string(hErr.Kind))
	_ = sock.WriteControl(websocket.CloseMessage, closeMsg, deadline)

	if err := lc.Transition(StateClosed); err != nil {
		s.logger.Error("lifecycle error", zap.Error(err))
	}
}

func (s *Server) sendEnvelope(conn *wsConn, env wire.Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		s.logger.Error("failed to marshal envelope",
			zap.String("event", env.Event), zap.Error(err))
		return
	}
	conn.Enqueue(payload)
}

// handleHealth reports connection counts; introspection only, no auth.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	status := map[string]interface{}{
		"status":         "ok",
		"connections":    s.registry.Count(),
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	}
	if err := json.NewEncoder(w).Encode(status); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
