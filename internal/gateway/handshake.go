package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/storegate-io/storegate/internal/directory"
	"github.com/storegate-io/storegate/internal/identity"
)

// Failure classifies a terminal handshake rejection.
type Failure string

const (
	// FailureMissingCredential means no token was found in any source.
	FailureMissingCredential Failure = "MissingCredential"
	// FailureInvalidCredential means the token failed verification.
	FailureInvalidCredential Failure = "InvalidCredential"
	// FailureTenantNotFound means the resolved domain maps to no tenant.
	FailureTenantNotFound Failure = "TenantNotFound"
	// FailureTenantMismatch means the token's tenant disagrees with the
	// resolved tenant and the principal is not an admin.
	FailureTenantMismatch Failure = "TenantMismatch"
)

// HandshakeError is a terminal handshake failure. The connection is sent a
// structured rejection payload and then closed; it is never retried.
type HandshakeError struct {
	Kind    Failure
	Message string
}

func (e *HandshakeError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// unknownDomain is the sentinel used when no domain can be recovered from the
// handshake; the subsequent directory lookup will fail on it.
const unknownDomain = "unknown"

// Identity is the outcome of a successful handshake resolution: the two
// independent identity signals, verified and cross-checked.
type Identity struct {
	SubjectID         string
	PrincipalTenantID string
	Role              string
	ResolvedDomain    string
	ResolvedTenantID  string
}

// ExtractToken recovers the credential from a handshake in fixed priority
// order: Authorization header (with optional Bearer prefix), then the
// connection-time auth frame, then the query string. authFrameToken is the
// token carried by the auth frame, or empty when no frame arrived.
func ExtractToken(header http.Header, authFrameToken string, query url.Values) (string, *HandshakeError) {
	if auth := header.Get("Authorization"); auth != "" {
		return strings.TrimPrefix(auth, "Bearer "), nil
	}
	if authFrameToken != "" {
		return authFrameToken, nil
	}
	if token := query.Get("token"); token != "" {
		return token, nil
	}
	return "", &HandshakeError{
		Kind:    FailureMissingCredential,
		Message: "no authentication token provided",
	}
}

// ResolveDomain recovers the connecting storefront's domain from the upgrade
// request. The Origin header wins, reduced to its hostname; the Host header
// (port stripped) is the fallback. With neither, the unknown sentinel is
// returned and tenant resolution will fail.
func ResolveDomain(header http.Header, host string) string {
	if origin := header.Get("Origin"); origin != "" {
		if u, err := url.Parse(origin); err == nil && u.Hostname() != "" {
			return u.Hostname()
		}
	}
	if host != "" {
		return stripPort(host)
	}
	return unknownDomain
}

func stripPort(host string) string {
	if i := strings.LastIndex(host, ":"); i >= 0 && !strings.Contains(host[i:], "]") {
		return host[:i]
	}
	return host
}

// Resolver performs the authorization half of the handshake: it verifies the
// credential, resolves the tenant from the domain, and cross-checks the two
// identity signals.
type Resolver struct {
	verifier  identity.Verifier
	directory directory.TenantDirectory
	logger    *zap.Logger
}

// NewResolver creates a handshake resolver.
func NewResolver(verifier identity.Verifier, dir directory.TenantDirectory, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{verifier: verifier, directory: dir, logger: logger}
}

// Resolve verifies the token and resolves the tenant for a domain. All four
// failure kinds are terminal; a nil error means the session may join rooms.
func (r *Resolver) Resolve(ctx context.Context, token, domain string) (*Identity, *HandshakeError) {
	claims, err := r.verifier.Verify(token)
	if err != nil {
		return nil, &HandshakeError{
			Kind:    FailureInvalidCredential,
			Message: err.Error(),
		}
	}

	tenant, err := r.directory.Lookup(ctx, domain)
	if err != nil {
		if errors.Is(err, directory.ErrTenantNotFound) {
			return nil, &HandshakeError{
				Kind:    FailureTenantNotFound,
				Message: "no tenant registered for domain " + domain,
			}
		}
		// Directory failures other than a miss are reported the same way;
		// the handshake cannot proceed without a resolved tenant.
		return nil, &HandshakeError{
			Kind:    FailureTenantNotFound,
			Message: "tenant lookup failed: " + err.Error(),
		}
	}

	// The token's tenant must agree with the connection-time resolution
	// unless the principal is an admin with cross-tenant access.
	if claims.TenantID != tenant.ID && !claims.IsAdmin() {
		r.logger.Warn("tenant mismatch",
			zap.String("principal_tenant", claims.TenantID),
			zap.String("resolved_tenant", tenant.ID),
			zap.String("subject_id", claims.SubjectID()))
		return nil, &HandshakeError{
			Kind:    FailureTenantMismatch,
			Message: "token tenant does not match connection domain",
		}
	}

	return &Identity{
		SubjectID:         claims.SubjectID(),
		PrincipalTenantID: claims.TenantID,
		Role:              claims.Role,
		ResolvedDomain:    domain,
		ResolvedTenantID:  tenant.ID,
	}, nil
}
