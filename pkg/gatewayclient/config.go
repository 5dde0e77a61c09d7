package gatewayclient

import "time"

// TokenMode selects where the client places its credential during the
// handshake. The server checks the sources in this same order.
type TokenMode int

const (
	// TokenInHeader sends the token in the upgrade Authorization header.
	TokenInHeader TokenMode = iota
	// TokenInAuthFrame sends the token in a frame after the upgrade.
	TokenInAuthFrame
	// TokenInQuery appends the token as a query parameter.
	TokenInQuery
)

// Config holds gateway client configuration.
type Config struct {
	// ServerURL is the websocket endpoint, e.g. "ws://localhost:8080/events".
	ServerURL string
	// Token is the signed credential.
	Token string
	// TokenMode selects the credential transport. Defaults to the header.
	TokenMode TokenMode
	// Origin is sent as the Origin header; the server resolves the tenant
	// from it. Required for anything but local testing against Host.
	Origin string
	// HandshakeTimeout bounds the dial plus websocket handshake.
	HandshakeTimeout time.Duration
	// AckTimeout bounds the wait for the server's ack or rejection.
	AckTimeout time.Duration
	// EventBuffer is the capacity of the delivered-events channel.
	EventBuffer int
}

// SetDefaults applies default values for unset fields.
func (c *Config) SetDefaults() {
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	if c.AckTimeout == 0 {
		c.AckTimeout = 10 * time.Second
	}
	if c.EventBuffer == 0 {
		c.EventBuffer = 64
	}
}
