package gateway

import "fmt"

// RoomKind discriminates the broadcast room variants.
type RoomKind int

const (
	// RoomTenant holds every connection resolved to one tenant.
	RoomTenant RoomKind = iota
	// RoomTenantUser is the private channel to one principal within one tenant.
	RoomTenantUser
	// RoomTenantPrincipal groups connections by the tenant their token asserts,
	// within the tenant they resolved to. Used for member-vs-admin splitting.
	RoomTenantPrincipal
	// RoomTenantAdmin holds admins scoped to one tenant.
	RoomTenantAdmin
	// RoomGlobalAdmin holds all admins across all tenants.
	RoomGlobalAdmin
)

// RoomRef identifies a broadcast room. Rooms are computed, never persisted;
// constructing refs through the typed helpers keeps every producer and
// consumer on the same key, instead of ad-hoc string formatting.
type RoomRef struct {
	kind        RoomKind
	tenantID    string
	subjectID   string
	principalID string
}

// TenantRoom returns the room holding every connection resolved to tenantID.
func TenantRoom(tenantID string) RoomRef {
	return RoomRef{kind: RoomTenant, tenantID: tenantID}
}

// TenantUserRoom returns the private room for one principal within a tenant.
func TenantUserRoom(tenantID, subjectID string) RoomRef {
	return RoomRef{kind: RoomTenantUser, tenantID: tenantID, subjectID: subjectID}
}

// TenantPrincipalRoom returns the member-splitting room for connections whose
// token asserts principalTenantID while resolved to tenantID.
func TenantPrincipalRoom(tenantID, principalTenantID string) RoomRef {
	return RoomRef{kind: RoomTenantPrincipal, tenantID: tenantID, principalID: principalTenantID}
}

// TenantAdminRoom returns the room for admins scoped to one tenant.
func TenantAdminRoom(tenantID string) RoomRef {
	return RoomRef{kind: RoomTenantAdmin, tenantID: tenantID}
}

// GlobalAdminRoom returns the cross-tenant admin room.
func GlobalAdminRoom() RoomRef {
	return RoomRef{kind: RoomGlobalAdmin}
}

// Kind returns the room variant.
func (r RoomRef) Kind() RoomKind {
	return r.kind
}

// Key serializes the room to its single canonical string key.
func (r RoomRef) Key() string {
	switch r.kind {
	case RoomTenant:
		return "tenant:" + r.tenantID
	case RoomTenantUser:
		return fmt.Sprintf("tenant:%s:user:%s", r.tenantID, r.subjectID)
	case RoomTenantPrincipal:
		return fmt.Sprintf("tenant:%s:principal:%s", r.tenantID, r.principalID)
	case RoomTenantAdmin:
		return fmt.Sprintf("tenant:%s:admins", r.tenantID)
	case RoomGlobalAdmin:
		return "admins:global"
	default:
		return "invalid"
	}
}

// MembershipFor computes the mandatory join set for an authenticated session.
// It is a pure function of the session: applied once at handshake, never
// recomputed for the lifetime of the connection.
func MembershipFor(s *Session) []RoomRef {
	rooms := []RoomRef{
		TenantRoom(s.ResolvedTenantID),
		TenantUserRoom(s.ResolvedTenantID, s.SubjectID),
		// Joined even when the principal tenant equals the resolved tenant, so
		// member-only sub-targeting coexists with the general tenant room.
		TenantPrincipalRoom(s.ResolvedTenantID, s.PrincipalTenantID),
	}
	if s.IsAdmin() {
		rooms = append(rooms,
			TenantAdminRoom(s.ResolvedTenantID),
			GlobalAdminRoom(),
		)
	}
	return rooms
}
