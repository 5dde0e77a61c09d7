// Package gatewayclient provides a Go client for the storegate websocket
// gateway: it dials, authenticates, and surfaces delivered events as a
// channel of typed envelopes.
package gatewayclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"

	"github.com/storegate-io/storegate/pkg/gateway"
)

// Event is one server-delivered envelope. Data is left raw so callers can
// decode into the shape the event name implies.
type Event struct {
	Name         string
	Message      string
	Data         json.RawMessage
	IsAdminEvent bool
}

type rawEnvelope struct {
	Event        string          `json:"event"`
	Message      string          `json:"message"`
	Data         json.RawMessage `json:"data"`
	IsAdminEvent bool            `json:"isAdminEvent"`
}

// HandshakeRejectedError is returned by Dial when the server rejects the
// connection; Kind carries the failure name from the rejection envelope.
type HandshakeRejectedError struct {
	Kind    string
	Message string
}

func (e *HandshakeRejectedError) Error() string {
	return fmt.Sprintf("handshake rejected: %s: %s", e.Kind, e.Message)
}

// Client is a connected gateway client.
type Client struct {
	config Config
	conn   *websocket.Conn
	ack    gateway.AckPayload
	events chan Event
}

// Dial connects to the gateway and runs the handshake to completion. On
// success the returned client is established and receiving events; on
// rejection the error is a *HandshakeRejectedError.
func Dial(ctx context.Context, config Config) (*Client, error) {
	config.SetDefaults()

	if config.ServerURL == "" {
		return nil, fmt.Errorf("ServerURL is required")
	}
	endpoint, err := url.Parse(config.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid ServerURL: %w", err)
	}

	header := http.Header{}
	if config.Origin != "" {
		header.Set("Origin", config.Origin)
	}

	switch config.TokenMode {
	case TokenInHeader:
		if config.Token != "" {
			header.Set("Authorization", "Bearer "+config.Token)
		}
	case TokenInQuery:
		q := endpoint.Query()
		q.Set("token", config.Token)
		endpoint.RawQuery = q.Encode()
	}

	dialer := websocket.Dialer{HandshakeTimeout: config.HandshakeTimeout}
	conn, resp, err := dialer.DialContext(ctx, endpoint.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial failed with status %d: %w", resp.StatusCode, err)
		}
		return nil, fmt.Errorf("dial failed: %w", err)
	}

	if config.TokenMode == TokenInAuthFrame {
		frame := gateway.AuthFrame{Event: gateway.EventAuth, Token: config.Token}
		if err := conn.WriteJSON(frame); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to send auth frame: %w", err)
		}
	}

	client := &Client{
		config: config,
		conn:   conn,
		events: make(chan Event, config.EventBuffer),
	}

	if err := client.awaitAck(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	go client.readLoop()
	return client, nil
}

// awaitAck reads the first envelope: the ack on success, the rejection
// payload on failure.
func (c *Client) awaitAck() error {
	_ = c.conn.SetReadDeadline(time.Now().Add(c.config.AckTimeout))
	defer func() { _ = c.conn.SetReadDeadline(time.Time{}) }()

	var env rawEnvelope
	if err := c.conn.ReadJSON(&env); err != nil {
		return fmt.Errorf("no handshake response: %w", err)
	}

	switch env.Event {
	case gateway.EventAck:
		if err := json.Unmarshal(env.Data, &c.ack); err != nil {
			return fmt.Errorf("malformed ack payload: %w", err)
		}
		return nil
	case gateway.EventError:
		var payload gateway.ErrorPayload
		_ = json.Unmarshal(env.Data, &payload)
		return &HandshakeRejectedError{Kind: env.Message, Message: payload.Message}
	default:
		return fmt.Errorf("unexpected handshake event %q", env.Event)
	}
}

// readLoop decodes delivered envelopes until the connection dies, then
// closes the events channel.
func (c *Client) readLoop() {
	defer close(c.events)

	for {
		var env rawEnvelope
		if err := c.conn.ReadJSON(&env); err != nil {
			return
		}
		evt := Event{
			Name:         env.Event,
			Message:      env.Message,
			Data:         env.Data,
			IsAdminEvent: env.IsAdminEvent,
		}
		select {
		case c.events <- evt:
		default:
			// Consumer is not draining; drop rather than block the reader.
		}
	}
}

// Ack returns the handshake acknowledgment payload.
func (c *Client) Ack() gateway.AckPayload {
	return c.ack
}

// Events returns the channel of delivered events. It is closed when the
// connection terminates.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Close closes the connection.
func (c *Client) Close() error {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	return c.conn.Close()
}
