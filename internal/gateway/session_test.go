package gateway

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// wsConnPair upgrades one connection, wraps the server side in a wsConn, and
// returns the client side for reading what the pump delivered.
func wsConnPair(t *testing.T) (*wsConn, *websocket.Conn) {
	t.Helper()

	serverSide := make(chan *wsConn, 1)
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sock, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade failed: %v", err)
			return
		}
		serverSide <- newWSConn("c1", sock, 8, zap.NewNop())
	}))
	t.Cleanup(ts.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	select {
	case conn := <-serverSide:
		return conn, client
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for server-side connection")
		return nil, nil
	}
}

func TestWSConn_StopFlushesQueuedPayloads(t *testing.T) {
	conn, client := wsConnPair(t)
	go conn.writePump()

	want := make([]string, 3)
	for i := range want {
		want[i] = fmt.Sprintf("payload-%d", i)
		if !conn.Enqueue([]byte(want[i])) {
			t.Fatalf("Expected enqueue %d to be accepted", i)
		}
	}

	// stop must not return until the pump has drained, so closing the socket
	// right after it cannot cut off queued payloads.
	conn.stop()
	_ = conn.sock.Close()

	for _, w := range want {
		_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
		_, raw, err := client.ReadMessage()
		if err != nil {
			t.Fatalf("Expected to read %q, got error %v", w, err)
		}
		if string(raw) != w {
			t.Errorf("Expected payload %q, got %q", w, raw)
		}
	}
}

func TestWSConn_StopIsIdempotent(t *testing.T) {
	conn, _ := wsConnPair(t)
	go conn.writePump()

	conn.stop()
	conn.stop()

	if conn.Enqueue([]byte("late")) {
		t.Error("Expected enqueue after stop to be refused")
	}
}
