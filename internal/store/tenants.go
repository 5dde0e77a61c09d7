package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storegate-io/storegate/internal/directory"
	"github.com/storegate-io/storegate/internal/domain"
	"github.com/storegate-io/storegate/internal/notify"
)

// TenantService manages tenant records. It writes through to the tenant
// directory so connection handshakes always resolve against committed state.
type TenantService struct {
	mu        sync.RWMutex
	byID      map[string]*domain.Tenant
	directory *directory.InMemoryDirectory
	notifier  notify.Notifier
	logger    *zap.Logger
}

// NewTenantService creates an empty tenant service.
func NewTenantService(dir *directory.InMemoryDirectory, notifier notify.Notifier, logger *zap.Logger) *TenantService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TenantService{
		byID:      make(map[string]*domain.Tenant),
		directory: dir,
		notifier:  notifier,
		logger:    logger,
	}
}

// CreateTenantInput are the fields accepted on tenant creation.
type CreateTenantInput struct {
	Name           string
	Domain         string
	Logo           string
	PrimaryColor   string
	SecondaryColor string
}

// UpdateTenantInput are the optional fields accepted on tenant update.
type UpdateTenantInput struct {
	Name           *string
	Domain         *string
	Logo           *string
	PrimaryColor   *string
	SecondaryColor *string
	IsActive       *bool
}

// Create registers a new tenant and announces it.
func (s *TenantService) Create(in CreateTenantInput) (*domain.Tenant, error) {
	s.mu.Lock()
	for _, existing := range s.byID {
		if existing.Domain == in.Domain {
			s.mu.Unlock()
			return nil, ErrDomainTaken
		}
	}

	now := time.Now()
	tenant := &domain.Tenant{
		ID:             uuid.New().String(),
		Name:           in.Name,
		Domain:         in.Domain,
		Logo:           in.Logo,
		PrimaryColor:   in.PrimaryColor,
		SecondaryColor: in.SecondaryColor,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.byID[tenant.ID] = tenant
	s.directory.Put(tenant)
	cp := *tenant
	s.mu.Unlock()

	s.logger.Info("tenant created",
		zap.String("tenant_id", cp.ID), zap.String("domain", cp.Domain))
	s.notifier.TenantCreated(&cp)
	return &cp, nil
}

// Update patches a tenant and announces the change.
func (s *TenantService) Update(id string, in UpdateTenantInput) (*domain.Tenant, error) {
	s.mu.Lock()
	tenant, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	oldDomain := tenant.Domain
	strPatch(&tenant.Name, in.Name)
	strPatch(&tenant.Domain, in.Domain)
	strPatch(&tenant.Logo, in.Logo)
	strPatch(&tenant.PrimaryColor, in.PrimaryColor)
	strPatch(&tenant.SecondaryColor, in.SecondaryColor)
	boolPatch(&tenant.IsActive, in.IsActive)
	tenant.UpdatedAt = time.Now()

	if tenant.Domain != oldDomain {
		s.directory.Delete(oldDomain)
	}
	s.directory.Put(tenant)
	cp := *tenant
	s.mu.Unlock()

	s.notifier.TenantUpdated(&cp)
	return &cp, nil
}

// Remove deletes a tenant and announces the removal.
func (s *TenantService) Remove(id string) error {
	s.mu.Lock()
	tenant, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	delete(s.byID, id)
	s.directory.Delete(tenant.Domain)
	s.mu.Unlock()

	s.logger.Info("tenant removed", zap.String("tenant_id", id))
	s.notifier.TenantRemoved(id)
	return nil
}

// Get returns a copy of a tenant.
func (s *TenantService) Get(id string) (*domain.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tenant, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *tenant
	return &cp, nil
}

// List returns copies of all tenants.
func (s *TenantService) List() []*domain.Tenant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*domain.Tenant, 0, len(s.byID))
	for _, tenant := range s.byID {
		cp := *tenant
		out = append(out, &cp)
	}
	return out
}
