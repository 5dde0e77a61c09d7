package notify

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/storegate-io/storegate/internal/domain"
	"github.com/storegate-io/storegate/internal/gateway"
	wire "github.com/storegate-io/storegate/pkg/gateway"
)

// Notifier is the fan-out surface called by the domain services after each
// committed mutation. Every call is fire-and-forget: delivery is best-effort
// and a call never reports an error back to the mutation that triggered it.
//
// The scopeTenantID parameter is the explicit tenant scope; when empty it
// falls back to the entity's own tenant-linking field. Calls that resolve no
// scope at all broadcast once to the global admin room.
type Notifier interface {
	TenantCreated(t *domain.Tenant)
	TenantUpdated(t *domain.Tenant)
	TenantRemoved(tenantID string)

	ProductCreated(p *domain.Product, scopeTenantID string)
	ProductUpdated(p *domain.Product, scopeTenantID string)
	ProductRemoved(productID, scopeTenantID string)

	SupplierCreated(s *domain.Supplier, scopeTenantID string)
	SupplierUpdated(s *domain.Supplier, scopeTenantID string)
	SupplierRemoved(supplierID, scopeTenantID string)

	UserUpdated(u *domain.User, scopeTenantID string)
	UserRemoved(userID, scopeTenantID string)
}

// GatewayNotifier fans events out through the gateway hub with the three-way
// audience split: reduced payload to the tenant room, full payload to the
// tenant admin room, member payload to the owning tenant's principal room.
type GatewayNotifier struct {
	hub    *gateway.Hub
	logger *zap.Logger
}

// NewGatewayNotifier creates a notifier publishing through the given hub.
func NewGatewayNotifier(hub *gateway.Hub, logger *zap.Logger) *GatewayNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GatewayNotifier{hub: hub, logger: logger}
}

// event carries one fan-out call through dispatch.
type event struct {
	entityType string
	kind       string
	scope      string // resolved tenant scope; empty means global-admin only
	owner      string // entity's owning tenant, targets the member room
	general    interface{}
	member     interface{}
	full       interface{}
	generalMsg string
	memberMsg  string
	adminMsg   string
}

// dispatch performs the audience split in the fixed order: tenant room,
// tenant admin room, member room. Nothing here returns an error; failures
// are logged and swallowed so callers are never affected.
func (n *GatewayNotifier) dispatch(ev event) {
	defer func() {
		if rec := recover(); rec != nil {
			n.logger.Error("fan-out panic swallowed",
				zap.String("entity", ev.entityType),
				zap.String("kind", ev.kind),
				zap.Any("panic", rec))
		}
	}()

	base := wire.EventName(ev.entityType, ev.kind)

	if ev.scope == "" {
		// Legacy/global entities: one full-payload event to the global admin
		// room under the un-suffixed name, nothing to any tenant room.
		n.push(gateway.GlobalAdminRoom(), wire.Envelope{
			Event:   base,
			Message: ev.adminMsg,
			Data:    ev.full,
		})
		return
	}

	n.push(gateway.TenantRoom(ev.scope), wire.Envelope{
		Event:   base,
		Message: ev.generalMsg,
		Data:    ev.general,
	})

	n.push(gateway.TenantAdminRoom(ev.scope), wire.Envelope{
		Event:        base + wire.SuffixAdmin,
		Message:      ev.adminMsg,
		Data:         ev.full,
		IsAdminEvent: true,
	})

	if ev.owner != "" {
		n.push(gateway.TenantPrincipalRoom(ev.scope, ev.owner), wire.Envelope{
			Event:   base + wire.SuffixMember,
			Message: ev.memberMsg,
			Data:    ev.member,
		})
	}

	n.logger.Debug("fan-out dispatched",
		zap.String("event", base),
		zap.String("scope", ev.scope))
}

func (n *GatewayNotifier) push(room gateway.RoomRef, env wire.Envelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		n.logger.Error("failed to marshal event",
			zap.String("event", env.Event), zap.Error(err))
		return
	}
	n.hub.Broadcast(room, payload)
}

// scopeOf resolves the effective tenant scope: the explicit scope wins,
// falling back to the entity's own tenant link.
func scopeOf(explicit, entityTenant string) string {
	if explicit != "" {
		return explicit
	}
	return entityTenant
}

// Tenant events. A tenant's own scope is itself.

func (n *GatewayNotifier) TenantCreated(t *domain.Tenant) {
	n.dispatch(event{
		entityType: "tenant",
		kind:       "created",
		scope:      t.ID,
		owner:      t.ID,
		general:    reduceTenant(t),
		member:     memberTenant(t),
		full:       t,
		generalMsg: "New store created",
		memberMsg:  "Store settings available",
		adminMsg:   "New store created",
	})
}

func (n *GatewayNotifier) TenantUpdated(t *domain.Tenant) {
	n.dispatch(event{
		entityType: "tenant",
		kind:       "updated",
		scope:      t.ID,
		owner:      t.ID,
		general:    reduceTenant(t),
		member:     memberTenant(t),
		full:       t,
		generalMsg: "Store updated",
		memberMsg:  "Store settings were updated",
		adminMsg:   "Store updated",
	})
}

func (n *GatewayNotifier) TenantRemoved(tenantID string) {
	ref := RemovedRef{ID: tenantID}
	n.dispatch(event{
		entityType: "tenant",
		kind:       "removed",
		scope:      tenantID,
		owner:      tenantID,
		general:    ref,
		member:     ref,
		full:       ref,
		generalMsg: "Store removed",
		memberMsg:  "Store removed",
		adminMsg:   "Store removed",
	})
}

// Product events.

func (n *GatewayNotifier) ProductCreated(p *domain.Product, scopeTenantID string) {
	n.dispatch(event{
		entityType: "product",
		kind:       "created",
		scope:      scopeOf(scopeTenantID, p.TenantID),
		owner:      p.TenantID,
		general:    reduceProduct(p),
		member:     memberProduct(p),
		full:       p,
		generalMsg: "New product available",
		memberMsg:  "New product available",
		adminMsg:   "New product created",
	})
}

func (n *GatewayNotifier) ProductUpdated(p *domain.Product, scopeTenantID string) {
	n.dispatch(event{
		entityType: "product",
		kind:       "updated",
		scope:      scopeOf(scopeTenantID, p.TenantID),
		owner:      p.TenantID,
		general:    reduceProduct(p),
		member:     memberProduct(p),
		full:       p,
		generalMsg: "Product updated",
		memberMsg:  "Product updated",
		adminMsg:   "Product updated",
	})
}

func (n *GatewayNotifier) ProductRemoved(productID, scopeTenantID string) {
	ref := RemovedRef{ID: productID}
	n.dispatch(event{
		entityType: "product",
		kind:       "removed",
		scope:      scopeTenantID,
		owner:      scopeTenantID,
		general:    ref,
		member:     ref,
		full:       ref,
		generalMsg: "Product no longer available",
		memberMsg:  "Product no longer available",
		adminMsg:   "Product removed",
	})
}

// Supplier events.

func (n *GatewayNotifier) SupplierCreated(s *domain.Supplier, scopeTenantID string) {
	n.dispatch(event{
		entityType: "supplier",
		kind:       "created",
		scope:      scopeOf(scopeTenantID, s.TenantID),
		owner:      s.TenantID,
		general:    reduceSupplier(s),
		member:     memberSupplier(s),
		full:       s,
		generalMsg: "New supplier available",
		memberMsg:  "New supplier available",
		adminMsg:   "New supplier created",
	})
}

func (n *GatewayNotifier) SupplierUpdated(s *domain.Supplier, scopeTenantID string) {
	n.dispatch(event{
		entityType: "supplier",
		kind:       "updated",
		scope:      scopeOf(scopeTenantID, s.TenantID),
		owner:      s.TenantID,
		general:    reduceSupplier(s),
		member:     memberSupplier(s),
		full:       s,
		generalMsg: "Supplier updated",
		memberMsg:  "Supplier updated",
		adminMsg:   "Supplier updated",
	})
}

func (n *GatewayNotifier) SupplierRemoved(supplierID, scopeTenantID string) {
	ref := RemovedRef{ID: supplierID}
	n.dispatch(event{
		entityType: "supplier",
		kind:       "removed",
		scope:      scopeTenantID,
		owner:      scopeTenantID,
		general:    ref,
		member:     ref,
		full:       ref,
		generalMsg: "Supplier removed",
		memberMsg:  "Supplier removed",
		adminMsg:   "Supplier removed",
	})
}

// User events. Users are never broadcast on creation; only updates and
// removals notify, matching the mutation surface of the user service.

func (n *GatewayNotifier) UserUpdated(u *domain.User, scopeTenantID string) {
	n.dispatch(event{
		entityType: "user",
		kind:       "updated",
		scope:      scopeOf(scopeTenantID, u.TenantID),
		owner:      u.TenantID,
		general:    reduceUser(u),
		member:     memberUser(u),
		full:       u,
		generalMsg: "User updated",
		memberMsg:  "User updated",
		adminMsg:   "User updated",
	})
}

func (n *GatewayNotifier) UserRemoved(userID, scopeTenantID string) {
	ref := RemovedRef{ID: userID}
	n.dispatch(event{
		entityType: "user",
		kind:       "removed",
		scope:      scopeTenantID,
		owner:      scopeTenantID,
		general:    ref,
		member:     ref,
		full:       ref,
		generalMsg: "User removed",
		memberMsg:  "User removed",
		adminMsg:   "User removed",
	})
}

// Verify that GatewayNotifier implements the Notifier interface at compile time
var _ Notifier = (*GatewayNotifier)(nil)
