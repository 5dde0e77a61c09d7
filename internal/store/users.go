package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storegate-io/storegate/internal/domain"
	"github.com/storegate-io/storegate/internal/notify"
)

// userRecord is the persisted shape; the password hash never leaves the store.
type userRecord struct {
	domain.User
	PasswordHash string
}

// UserService manages principals. Password hashing happens upstream; the
// service stores the hash as an opaque string.
type UserService struct {
	mu       sync.RWMutex
	byID     map[string]*userRecord
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewUserService creates an empty user service.
func NewUserService(notifier notify.Notifier, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		byID:     make(map[string]*userRecord),
		notifier: notifier,
		logger:   logger,
	}
}

// CreateUserInput are the fields accepted on user creation.
type CreateUserInput struct {
	Email        string
	Name         string
	Role         string
	TenantID     string
	PasswordHash string
}

// UpdateUserInput are the optional fields accepted on user update.
type UpdateUserInput struct {
	Name *string
	Role *string
}

// Create registers a new user. Creation is not broadcast; the gateway's user
// events cover updates and removals only.
func (s *UserService) Create(in CreateUserInput) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.byID {
		if existing.TenantID == in.TenantID && existing.Email == in.Email {
			return nil, ErrEmailTaken
		}
	}

	now := time.Now()
	rec := &userRecord{
		User: domain.User{
			ID:        uuid.New().String(),
			Email:     in.Email,
			Name:      in.Name,
			Role:      in.Role,
			TenantID:  in.TenantID,
			CreatedAt: now,
			UpdatedAt: now,
		},
		PasswordHash: in.PasswordHash,
	}
	s.byID[rec.ID] = rec

	cp := rec.User
	return &cp, nil
}

// Update patches a user and announces the change to their tenant.
func (s *UserService) Update(id string, in UpdateUserInput) (*domain.User, error) {
	s.mu.Lock()
	rec, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotFound
	}

	strPatch(&rec.Name, in.Name)
	strPatch(&rec.Role, in.Role)
	rec.UpdatedAt = time.Now()
	cp := rec.User
	s.mu.Unlock()

	s.notifier.UserUpdated(&cp, "")
	return &cp, nil
}

// Remove deletes a user and announces the removal to their tenant.
func (s *UserService) Remove(id string) error {
	s.mu.Lock()
	rec, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return ErrNotFound
	}
	tenantID := rec.TenantID
	delete(s.byID, id)
	s.mu.Unlock()

	s.notifier.UserRemoved(id, tenantID)
	return nil
}

// Get returns a user's public projection.
func (s *UserService) Get(id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := rec.User
	return &cp, nil
}

// GetByEmail finds a user within a tenant by email; used by the login path.
// It returns the stored password hash alongside the public projection.
func (s *UserService) GetByEmail(tenantID, email string) (*domain.User, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.byID {
		if rec.TenantID == tenantID && rec.Email == email {
			cp := rec.User
			return &cp, rec.PasswordHash, nil
		}
	}
	return nil, "", ErrNotFound
}

// ListByTenant returns the public projections of a tenant's users.
func (s *UserService) ListByTenant(tenantID string) []*domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*domain.User
	for _, rec := range s.byID {
		if rec.TenantID == tenantID {
			cp := rec.User
			out = append(out, &cp)
		}
	}
	return out
}
