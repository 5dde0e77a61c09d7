package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storegate-io/storegate/internal/domain"
	"github.com/storegate-io/storegate/internal/notify"
)

// SupplierService manages external product sources.
type SupplierService struct {
	mu       sync.RWMutex
	byID     map[string]*domain.Supplier
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewSupplierService creates an empty supplier service.
func NewSupplierService(notifier notify.Notifier, logger *zap.Logger) *SupplierService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SupplierService{
		byID:     make(map[string]*domain.Supplier),
		notifier: notifier,
		logger:   logger,
	}
}

// CreateSupplierInput are the fields accepted on supplier creation.
type CreateSupplierInput struct {
	Name     string
	Type     string
	APIURL   string
	TenantID string
}

// UpdateSupplierInput are the optional fields accepted on supplier update.
type UpdateSupplierInput struct {
	Name     *string
	Type     *string
	APIURL   *string
	IsActive *bool
}

// Create registers a supplier and announces it.
func (s *SupplierService) Create(in CreateSupplierInput) (*domain.Supplier, error) {
	now := time.Now()
	supplier := &domain.Supplier{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Type:      in.Type,
		APIURL:    in.APIURL,
		TenantID:  in.TenantID,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.byID[supplier.ID] = supplier
	cp := *supplier
	s.mu.Unlock()

	s.notifier.SupplierCreated(&cp, "")
	return &cp, nil
}

// Update patches a supplier and announces the change.
func (s *SupplierService) Update(id string, in UpdateSupplierInput) (*domain.Supplier, error) {
	s.mu.Lock()
	supplier, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	strPatch(&supplier.Name, in.Name)
	strPatch(&supplier.Type, in.Type)
	strPatch(&supplier.APIURL, in.APIURL)
	boolPatch(&supplier.IsActive, in.IsActive)
	supplier.UpdatedAt = time.Now()
	cp := *supplier
	s.mu.Unlock()

	s.notifier.SupplierUpdated(&cp, "")
	return &cp, nil
}

// Remove deletes a supplier and announces the removal by identifier.
func (s *SupplierService) Remove(id string) error {
	s.mu.Lock()
	supplier, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	tenantID := supplier.TenantID
	delete(s.byID, id)
	s.mu.Unlock()

	s.notifier.SupplierRemoved(id, tenantID)
	return nil
}

// Get returns a copy of a supplier.
func (s *SupplierService) Get(id string) (*domain.Supplier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	supplier, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *supplier
	return &cp, nil
}

// ListByTenant returns copies of a tenant's suppliers.
func (s *SupplierService) ListByTenant(tenantID string) []*domain.Supplier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Supplier
	for _, supplier := range s.byID {
		if supplier.TenantID == tenantID {
			cp := *supplier
			out = append(out, &cp)
		}
	}
	return out
}
