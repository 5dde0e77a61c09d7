package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storegate-io/storegate/internal/domain"
	"github.com/storegate-io/storegate/internal/notify"
)

// ProductService manages catalog items imported from supplier APIs.
type ProductService struct {
	mu       sync.RWMutex
	byID     map[string]*domain.Product
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewProductService creates an empty product service.
func NewProductService(notifier notify.Notifier, logger *zap.Logger) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		byID:     make(map[string]*domain.Product),
		notifier: notifier,
		logger:   logger,
	}
}

// CreateProductInput are the fields accepted on product creation.
type CreateProductInput struct {
	Name          string
	Description   string
	Price         float64
	Image         string
	Gallery       []string
	Category      string
	Material      string
	Department    string
	HasDiscount   bool
	DiscountValue string
	ExternalID    string
	SupplierID    string
	TenantID      string
}

// UpdateProductInput are the optional fields accepted on product update.
type UpdateProductInput struct {
	Name          *string
	Description   *string
	Price         *float64
	Image         *string
	Category      *string
	HasDiscount   *bool
	DiscountValue *string
}

// Create registers a product and announces it to its owning tenant.
func (s *ProductService) Create(in CreateProductInput) (*domain.Product, error) {
	now := time.Now()
	product := &domain.Product{
		ID:            uuid.New().String(),
		Name:          in.Name,
		Description:   in.Description,
		Price:         in.Price,
		Image:         in.Image,
		Gallery:       in.Gallery,
		Category:      in.Category,
		Material:      in.Material,
		Department:    in.Department,
		HasDiscount:   in.HasDiscount,
		DiscountValue: in.DiscountValue,
		ExternalID:    in.ExternalID,
		SupplierID:    in.SupplierID,
		TenantID:      in.TenantID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	s.mu.Lock()
	s.byID[product.ID] = product
	cp := *product
	s.mu.Unlock()

	s.notifier.ProductCreated(&cp, "")
	return &cp, nil
}

// Update patches a product and announces the change.
func (s *ProductService) Update(id string, in UpdateProductInput) (*domain.Product, error) {
	s.mu.Lock()
	product, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	strPatch(&product.Name, in.Name)
	strPatch(&product.Description, in.Description)
	if in.Price != nil {
		product.Price = *in.Price
	}
	strPatch(&product.Image, in.Image)
	strPatch(&product.Category, in.Category)
	boolPatch(&product.HasDiscount, in.HasDiscount)
	strPatch(&product.DiscountValue, in.DiscountValue)
	product.UpdatedAt = time.Now()
	cp := *product
	s.mu.Unlock()

	s.notifier.ProductUpdated(&cp, "")
	return &cp, nil
}

// Remove deletes a product and announces the removal by identifier.
func (s *ProductService) Remove(id string) error {
	s.mu.Lock()
	product, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	tenantID := product.TenantID
	delete(s.byID, id)
	s.mu.Unlock()

	s.notifier.ProductRemoved(id, tenantID)
	return nil
}

// Get returns a copy of a product.
func (s *ProductService) Get(id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	product, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *product
	return &cp, nil
}

// ListByTenant returns copies of a tenant's products.
func (s *ProductService) ListByTenant(tenantID string) []*domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.Product
	for _, product := range s.byID {
		if product.TenantID == tenantID {
			cp := *product
			out = append(out, &cp)
		}
	}
	return out
}
