package directory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/storegate-io/storegate/internal/domain"
)

// ErrTenantNotFound is returned when no tenant owns the requested domain.
var ErrTenantNotFound = errors.New("tenant not found for domain")

// TenantDirectory resolves a domain name to its owning tenant.
// The gateway consults it once per connection handshake.
type TenantDirectory interface {
	// Lookup resolves a domain to a tenant record.
	// Returns ErrTenantNotFound when no tenant owns the domain.
	Lookup(ctx context.Context, domain string) (*domain.Tenant, error)
}

// InMemoryDirectory is a thread-safe in-memory tenant directory.
// The tenant store writes through to it on every tenant mutation so the
// gateway always resolves against the committed state.
type InMemoryDirectory struct {
	mu       sync.RWMutex
	byDomain map[string]*domain.Tenant
	logger   *zap.Logger
}

// NewInMemoryDirectory creates an empty directory.
func NewInMemoryDirectory(logger *zap.Logger) *InMemoryDirectory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryDirectory{
		byDomain: make(map[string]*domain.Tenant),
		logger:   logger,
	}
}

// Lookup resolves a domain to a tenant record.
func (d *InMemoryDirectory) Lookup(ctx context.Context, dom string) (*domain.Tenant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.RLock()
	tenant, ok := d.byDomain[normalizeDomain(dom)]
	d.mu.RUnlock()

	if !ok {
		d.logger.Debug("tenant lookup miss", zap.String("domain", dom))
		return nil, ErrTenantNotFound
	}

	// Return a copy to prevent concurrent modification
	cp := *tenant
	return &cp, nil
}

// Put registers or replaces the tenant owning its domain.
func (d *InMemoryDirectory) Put(tenant *domain.Tenant) {
	if tenant == nil || tenant.Domain == "" {
		return
	}
	cp := *tenant

	d.mu.Lock()
	d.byDomain[normalizeDomain(cp.Domain)] = &cp
	d.mu.Unlock()
}

// Delete removes the tenant owning the given domain. Unknown domains are a no-op.
func (d *InMemoryDirectory) Delete(dom string) {
	d.mu.Lock()
	delete(d.byDomain, normalizeDomain(dom))
	d.mu.Unlock()
}

// Len returns the number of registered domains.
func (d *InMemoryDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byDomain)
}

// normalizeDomain lowercases a domain so lookups are case-insensitive.
func normalizeDomain(dom string) string {
	return strings.ToLower(strings.TrimSpace(dom))
}

// Verify that InMemoryDirectory implements the TenantDirectory interface at compile time
var _ TenantDirectory = (*InMemoryDirectory)(nil)
