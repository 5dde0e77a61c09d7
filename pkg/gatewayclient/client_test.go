package gatewayclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wire "github.com/storegate-io/storegate/pkg/gateway"
)

// fakeGateway is a minimal server double: it records where the credential
// arrived and answers the handshake with a scripted response.
type fakeGateway struct {
	t *testing.T

	// handshake script
	rejectKind    string
	rejectMessage string
	expectFrame   bool

	// observed request
	gotHeaderToken string
	gotQueryToken  string
	gotFrameToken  string
	gotOrigin      string

	// established connection, for pushing events after the ack
	conn  *websocket.Conn
	ready chan struct{}
}

func (f *fakeGateway) handler() http.HandlerFunc {
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	return func(w http.ResponseWriter, r *http.Request) {
		f.gotHeaderToken = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		f.gotQueryToken = r.URL.Query().Get("token")
		f.gotOrigin = r.Header.Get("Origin")

		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(f.t, err)
		f.conn = conn
		defer close(f.ready)

		if f.expectFrame {
			var frame wire.AuthFrame
			_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			require.NoError(f.t, conn.ReadJSON(&frame))
			f.gotFrameToken = frame.Token
		}

		if f.rejectKind != "" {
			_ = conn.WriteJSON(wire.Envelope{
				Event:   wire.EventError,
				Message: f.rejectKind,
				Data:    wire.ErrorPayload{Message: f.rejectMessage},
			})
			return
		}

		_ = conn.WriteJSON(wire.Envelope{
			Event: wire.EventAck,
			Data: wire.AckPayload{
				SubjectID:        "u1",
				ResolvedDomain:   "store.example",
				ResolvedTenantID: "t1",
				Rooms:            []string{"tenant:t1"},
			},
		})
	}
}

func startFakeGateway(t *testing.T, f *fakeGateway) string {
	t.Helper()
	f.t = t
	f.ready = make(chan struct{})
	ts := httptest.NewServer(f.handler())
	t.Cleanup(ts.Close)
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func TestDial_TokenInHeader(t *testing.T) {
	f := &fakeGateway{}
	url := startFakeGateway(t, f)

	client, err := Dial(context.Background(), Config{
		ServerURL: url,
		Token:     "tok-123",
		Origin:    "https://store.example",
	})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, "tok-123", f.gotHeaderToken)
	assert.Empty(t, f.gotQueryToken)
	assert.Equal(t, "https://store.example", f.gotOrigin)
	assert.Equal(t, "u1", client.Ack().SubjectID)
	assert.Equal(t, []string{"tenant:t1"}, client.Ack().Rooms)
}

func TestDial_TokenInQuery(t *testing.T) {
	f := &fakeGateway{}
	url := startFakeGateway(t, f)

	client, err := Dial(context.Background(), Config{
		ServerURL: url,
		Token:     "tok-123",
		TokenMode: TokenInQuery,
	})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, "tok-123", f.gotQueryToken)
	assert.Empty(t, f.gotHeaderToken)
}

func TestDial_TokenInAuthFrame(t *testing.T) {
	f := &fakeGateway{expectFrame: true}
	url := startFakeGateway(t, f)

	client, err := Dial(context.Background(), Config{
		ServerURL: url,
		Token:     "tok-123",
		TokenMode: TokenInAuthFrame,
	})
	require.NoError(t, err)
	defer client.Close()

	assert.Equal(t, "tok-123", f.gotFrameToken)
	assert.Empty(t, f.gotHeaderToken)
}

func TestDial_Rejected(t *testing.T) {
	f := &fakeGateway{rejectKind: "TenantMismatch", rejectMessage: "token does not belong to this store"}
	url := startFakeGateway(t, f)

	_, err := Dial(context.Background(), Config{ServerURL: url, Token: "tok-123"})
	require.Error(t, err)

	var rejected *HandshakeRejectedError
	require.ErrorAs(t, err, &rejected)
	assert.Equal(t, "TenantMismatch", rejected.Kind)
	assert.Equal(t, "token does not belong to this store", rejected.Message)
	assert.Contains(t, rejected.Error(), "TenantMismatch")
}

func TestDial_RequiresServerURL(t *testing.T) {
	_, err := Dial(context.Background(), Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ServerURL")
}

func TestClient_ReceivesEvents(t *testing.T) {
	f := &fakeGateway{}
	url := startFakeGateway(t, f)

	client, err := Dial(context.Background(), Config{ServerURL: url, Token: "tok-123"})
	require.NoError(t, err)
	defer client.Close()

	<-f.ready
	require.NoError(t, f.conn.WriteJSON(wire.Envelope{
		Event:        "product:updated:admin",
		Message:      "Product updated",
		Data:         map[string]string{"id": "p1"},
		IsAdminEvent: true,
	}))

	select {
	case evt := <-client.Events():
		assert.Equal(t, "product:updated:admin", evt.Name)
		assert.Equal(t, "Product updated", evt.Message)
		assert.True(t, evt.IsAdminEvent)

		var data map[string]string
		require.NoError(t, json.Unmarshal(evt.Data, &data))
		assert.Equal(t, "p1", data["id"])
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for event")
	}
}

func TestClient_EventsChannelClosesOnDisconnect(t *testing.T) {
	f := &fakeGateway{}
	url := startFakeGateway(t, f)

	client, err := Dial(context.Background(), Config{ServerURL: url, Token: "tok-123"})
	require.NoError(t, err)

	<-f.ready
	require.NoError(t, f.conn.Close())

	select {
	case _, ok := <-client.Events():
		assert.False(t, ok, "events channel should close when the server goes away")
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for channel close")
	}
}
