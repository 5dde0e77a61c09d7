package gateway

import (
	"context"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/storegate-io/storegate/internal/directory"
	"github.com/storegate-io/storegate/internal/domain"
	"github.com/storegate-io/storegate/internal/identity"
)

func TestExtractToken_PriorityOrder(t *testing.T) {
	t.Run("header_wins", func(t *testing.T) {
		header := http.Header{}
		header.Set("Authorization", "Bearer header-token")
		query := url.Values{"token": {"query-token"}}

		token, hErr := ExtractToken(header, "frame-token", query)
		if hErr != nil {
			t.Fatalf("Expected no error, got %v", hErr)
		}
		if token != "header-token" {
			t.Errorf("Expected header token to win, got '%s'", token)
		}
	})

	t.Run("header_without_bearer_prefix", func(t *testing.T) {
		header := http.Header{}
		header.Set("Authorization", "raw-token")

		token, hErr := ExtractToken(header, "", nil)
		if hErr != nil {
			t.Fatalf("Expected no error, got %v", hErr)
		}
		if token != "raw-token" {
			t.Errorf("Expected raw header token, got '%s'", token)
		}
	})

	t.Run("frame_beats_query", func(t *testing.T) {
		query := url.Values{"token": {"query-token"}}
		token, hErr := ExtractToken(http.Header{}, "frame-token", query)
		if hErr != nil {
			t.Fatalf("Expected no error, got %v", hErr)
		}
		if token != "frame-token" {
			t.Errorf("Expected auth frame token to win over query, got '%s'", token)
		}
	})

	t.Run("query_last", func(t *testing.T) {
		query := url.Values{"token": {"query-token"}}
		token, hErr := ExtractToken(http.Header{}, "", query)
		if hErr != nil {
			t.Fatalf("Expected no error, got %v", hErr)
		}
		if token != "query-token" {
			t.Errorf("Expected query token, got '%s'", token)
		}
	})

	t.Run("no_source", func(t *testing.T) {
		_, hErr := ExtractToken(http.Header{}, "", url.Values{})
		if hErr == nil {
			t.Fatal("Expected MissingCredential")
		}
		if hErr.Kind != FailureMissingCredential {
			t.Errorf("Expected MissingCredential, got %s", hErr.Kind)
		}
	})
}

func TestResolveDomain(t *testing.T) {
	tests := []struct {
		name   string
		origin string
		host   string
		want   string
	}{
		{"origin_hostname", "https://store-a.example", "other.example:8080", "store-a.example"},
		{"origin_port_stripped", "https://store-a.example:3000", "", "store-a.example"},
		{"origin_unparseable_falls_to_host", "://bad", "store-b.example", "store-b.example"},
		{"host_port_stripped", "", "store-b.example:8080", "store-b.example"},
		{"host_ipv6", "", "[::1]:8080", "[::1]"},
		{"nothing", "", "", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			if got := ResolveDomain(header, tt.host); got != tt.want {
				t.Errorf("Expected domain '%s', got '%s'", tt.want, got)
			}
		})
	}
}

func newTestResolver(t *testing.T) (*Resolver, *identity.JWTVerifier) {
	t.Helper()
	verifier := identity.NewJWTVerifier("handshake-test-secret", time.Hour)
	dir := directory.NewInMemoryDirectory(nil)
	dir.Put(&domain.Tenant{ID: "tenant-a", Domain: "store-a.example", IsActive: true})
	dir.Put(&domain.Tenant{ID: "tenant-b", Domain: "store-b.example", IsActive: true})
	return NewResolver(verifier, dir, nil), verifier
}

func TestResolver_Resolve(t *testing.T) {
	resolver, verifier := newTestResolver(t)
	ctx := context.Background()

	t.Run("member_match", func(t *testing.T) {
		token, _, err := verifier.Issue("u1", "u1@store-a.example", "tenant-a", identity.RoleMember)
		if err != nil {
			t.Fatalf("Expected no error issuing token, got %v", err)
		}

		ident, hErr := resolver.Resolve(ctx, token, "store-a.example")
		if hErr != nil {
			t.Fatalf("Expected handshake to succeed, got %v", hErr)
		}
		if ident.ResolvedTenantID != "tenant-a" || ident.PrincipalTenantID != "tenant-a" {
			t.Errorf("Unexpected identity %+v", ident)
		}
	})

	t.Run("invalid_token", func(t *testing.T) {
		_, hErr := resolver.Resolve(ctx, "garbage", "store-a.example")
		if hErr == nil || hErr.Kind != FailureInvalidCredential {
			t.Fatalf("Expected InvalidCredential, got %v", hErr)
		}
		if hErr.Message == "" {
			t.Error("Expected the verifier's message to be carried")
		}
	})

	t.Run("tenant_not_found", func(t *testing.T) {
		token, _, _ := verifier.Issue("u1", "", "tenant-a", identity.RoleMember)
		_, hErr := resolver.Resolve(ctx, token, "unknown")
		if hErr == nil || hErr.Kind != FailureTenantNotFound {
			t.Fatalf("Expected TenantNotFound, got %v", hErr)
		}
	})

	t.Run("member_mismatch_rejected", func(t *testing.T) {
		// Token asserts tenant A, domain resolves to tenant B, ordinary member.
		token, _, _ := verifier.Issue("u1", "", "tenant-a", identity.RoleMember)
		_, hErr := resolver.Resolve(ctx, token, "store-b.example")
		if hErr == nil || hErr.Kind != FailureTenantMismatch {
			t.Fatalf("Expected TenantMismatch, got %v", hErr)
		}
	})

	t.Run("admin_cross_tenant_allowed", func(t *testing.T) {
		token, _, _ := verifier.Issue("admin-1", "", "tenant-a", identity.RoleAdmin)
		ident, hErr := resolver.Resolve(ctx, token, "store-b.example")
		if hErr != nil {
			t.Fatalf("Expected admin cross-tenant handshake to succeed, got %v", hErr)
		}
		if ident.ResolvedTenantID != "tenant-b" {
			t.Errorf("Expected resolved tenant 'tenant-b', got '%s'", ident.ResolvedTenantID)
		}
		if ident.PrincipalTenantID != "tenant-a" {
			t.Errorf("Expected principal tenant 'tenant-a', got '%s'", ident.PrincipalTenantID)
		}
	})

	t.Run("global_admin_without_tenant", func(t *testing.T) {
		token, _, _ := verifier.Issue("root", "", "", identity.RoleAdmin)
		ident, hErr := resolver.Resolve(ctx, token, "store-a.example")
		if hErr != nil {
			t.Fatalf("Expected global admin handshake to succeed, got %v", hErr)
		}
		if ident.PrincipalTenantID != "" {
			t.Errorf("Expected empty principal tenant, got '%s'", ident.PrincipalTenantID)
		}
	})
}
