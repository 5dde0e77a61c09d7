// Package store holds the in-memory domain services for the whitelabel
// platform. Each mutating operation publishes through the Notifier after its
// write commits; notification delivery never affects the operation's result.
package store

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDomainTaken is returned when a tenant domain is already registered.
	ErrDomainTaken = errors.New("domain already registered to a tenant")
	// ErrEmailTaken is returned when a user email already exists in a tenant.
	ErrEmailTaken = errors.New("email already registered")
)

// strPatch applies an optional string field update.
func strPatch(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// boolPatch applies an optional bool field update.
func boolPatch(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}
