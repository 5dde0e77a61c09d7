// Package gateway defines the wire-level message shapes exchanged over a
// storegate websocket connection. Both the server and the Go client speak
// these types; browser clients see the same JSON.
package gateway

// Connection-level event names.
const (
	// EventAck acknowledges a successful handshake.
	EventAck = "connection:ack"
	// EventError reports a terminal handshake failure before the forced close.
	EventError = "connection:error"
	// EventAuth is the optional client frame carrying the credential when it
	// was not sent with the upgrade request.
	EventAuth = "connection:auth"
)

// Audience suffixes appended to entity event names.
const (
	// SuffixAdmin marks the full-payload event delivered to tenant admins.
	SuffixAdmin = ":admin"
	// SuffixMember marks the member-shaped event delivered to the owning
	// tenant's principal room.
	SuffixMember = ":member"
)

// EventName builds the base event name for an entity change,
// e.g. EventName("product", "updated") == "product:updated".
func EventName(entityType, kind string) string {
	return entityType + ":" + kind
}

// Envelope is the frame wrapping every server-to-client event.
type Envelope struct {
	Event        string      `json:"event"`
	Message      string      `json:"message,omitempty"`
	Data         interface{} `json:"data,omitempty"`
	IsAdminEvent bool        `json:"isAdminEvent,omitempty"`
}

// AuthFrame is the client-to-server credential frame.
type AuthFrame struct {
	Event string `json:"event"`
	Token string `json:"token"`
}

// AckPayload is the data of an EventAck envelope.
type AckPayload struct {
	SubjectID         string   `json:"subjectId"`
	PrincipalTenantID string   `json:"principalTenantId,omitempty"`
	ResolvedDomain    string   `json:"resolvedDomain"`
	ResolvedTenantID  string   `json:"resolvedTenantId"`
	Rooms             []string `json:"rooms"`
}

// ErrorPayload is the data of an EventError envelope.
type ErrorPayload struct {
	Message string `json:"message"`
}
