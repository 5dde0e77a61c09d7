package gateway

import "fmt"

// State is a connection lifecycle state.
type State int

const (
	// StateConnecting is the initial state after the transport accepts.
	StateConnecting State = iota
	// StateAuthenticating covers credential extraction and verification.
	StateAuthenticating
	// StateRoomJoining covers the atomic room join plus registry insert.
	StateRoomJoining
	// StateEstablished means the session is registered and fully joined.
	StateEstablished
	// StateRejected is terminal; reached on any handshake failure.
	StateRejected
	// StateClosed is terminal; the transport connection is gone.
	StateClosed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateAuthenticating:
		return "Authenticating"
	case StateRoomJoining:
		return "RoomJoining"
	case StateEstablished:
		return "Established"
	case StateRejected:
		return "Rejected"
	case StateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// legalTransitions enumerates every valid edge of the connection lifecycle.
// A rejected handshake is never retried on the same physical connection.
var legalTransitions = map[State][]State{
	StateConnecting:     {StateAuthenticating},
	StateAuthenticating: {StateRoomJoining, StateRejected},
	StateRoomJoining:    {StateEstablished, StateRejected},
	StateEstablished:    {StateClosed},
	StateRejected:       {StateClosed},
	StateClosed:         {},
}

// Lifecycle tracks one connection's progress through the handshake.
// It is driven by a single goroutine per connection and needs no locking.
type Lifecycle struct {
	state State
}

// NewLifecycle returns a lifecycle in the Connecting state.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: StateConnecting}
}

// State returns the current state.
func (l *Lifecycle) State() State {
	return l.state
}

// Transition moves to the target state, or fails if the edge is not legal.
func (l *Lifecycle) Transition(to State) error {
	for _, next := range legalTransitions[l.state] {
		if next == to {
			l.state = to
			return nil
		}
	}
	return fmt.Errorf("illegal lifecycle transition %s -> %s", l.state, to)
}

// Terminal reports whether the lifecycle has reached a final state.
func (l *Lifecycle) Terminal() bool {
	return l.state == StateClosed
}
