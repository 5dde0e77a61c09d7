package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/storegate-io/storegate/internal/domain"
)

func TestInMemoryDirectory_Lookup(t *testing.T) {
	dir := NewInMemoryDirectory(nil)
	dir.Put(&domain.Tenant{ID: "tenant-a", Name: "Shop A", Domain: "shop-a.example", IsActive: true})

	ctx := context.Background()

	t.Run("hit", func(t *testing.T) {
		tenant, err := dir.Lookup(ctx, "shop-a.example")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if tenant.ID != "tenant-a" {
			t.Errorf("Expected tenant 'tenant-a', got '%s'", tenant.ID)
		}
	})

	t.Run("case_insensitive", func(t *testing.T) {
		tenant, err := dir.Lookup(ctx, "Shop-A.Example")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if tenant.ID != "tenant-a" {
			t.Errorf("Expected tenant 'tenant-a', got '%s'", tenant.ID)
		}
	})

	t.Run("miss", func(t *testing.T) {
		_, err := dir.Lookup(ctx, "unknown")
		if !errors.Is(err, ErrTenantNotFound) {
			t.Errorf("Expected ErrTenantNotFound, got %v", err)
		}
	})

	t.Run("returns_copy", func(t *testing.T) {
		tenant, err := dir.Lookup(ctx, "shop-a.example")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		tenant.Name = "mutated"

		again, err := dir.Lookup(ctx, "shop-a.example")
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if again.Name != "Shop A" {
			t.Errorf("Expected stored record to be unchanged, got name '%s'", again.Name)
		}
	})
}

func TestInMemoryDirectory_PutDelete(t *testing.T) {
	dir := NewInMemoryDirectory(nil)
	ctx := context.Background()

	dir.Put(&domain.Tenant{ID: "tenant-b", Domain: "shop-b.example"})
	if dir.Len() != 1 {
		t.Fatalf("Expected 1 domain registered, got %d", dir.Len())
	}

	// Replacing the same domain keeps a single entry
	dir.Put(&domain.Tenant{ID: "tenant-b", Domain: "shop-b.example", Name: "renamed"})
	if dir.Len() != 1 {
		t.Errorf("Expected 1 domain after replace, got %d", dir.Len())
	}
	tenant, err := dir.Lookup(ctx, "shop-b.example")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if tenant.Name != "renamed" {
		t.Errorf("Expected replaced record, got name '%s'", tenant.Name)
	}

	dir.Delete("shop-b.example")
	if _, err := dir.Lookup(ctx, "shop-b.example"); !errors.Is(err, ErrTenantNotFound) {
		t.Errorf("Expected ErrTenantNotFound after delete, got %v", err)
	}

	// Deleting again is a no-op
	dir.Delete("shop-b.example")
}
