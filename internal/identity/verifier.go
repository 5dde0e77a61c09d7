package identity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWT handling for gateway connections.
// Using golang-jwt/jwt library for production-ready JWT handling.

// Role values carried in token claims.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Claims represents the signed credential presented by a connecting principal.
// TenantID is absent for cross-tenant (global) admins.
type Claims struct {
	Email    string `json:"email,omitempty"`
	TenantID string `json:"clientId,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// SubjectID returns the authenticated principal identifier.
func (c *Claims) SubjectID() string {
	return c.Subject
}

// IsAdmin reports whether the claims assert the admin role.
func (c *Claims) IsAdmin() bool {
	return c.Role == RoleAdmin
}

// Verifier validates a signed credential and decodes its claims.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// JWTVerifier verifies HS256-signed tokens against a shared secret.
// It also issues tokens for the login path and for test fixtures.
type JWTVerifier struct {
	secretKey []byte
	tokenTTL  time.Duration
}

// NewJWTVerifier creates a new JWT verifier with the given secret.
func NewJWTVerifier(secretKey string, tokenTTL time.Duration) *JWTVerifier {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &JWTVerifier{
		secretKey: []byte(secretKey),
		tokenTTL:  tokenTTL,
	}
}

// Verify validates a JWT token and returns the decoded claims.
func (v *JWTVerifier) Verify(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, errors.New("token cannot be empty")
	}

	// Remove "Bearer " prefix if present
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secretKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("token is not valid")
	}

	claims, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid claims type")
	}
	if claims.Subject == "" {
		return nil, errors.New("token missing subject")
	}

	return claims, nil
}

// Issue creates a signed token for a principal.
func (v *JWTVerifier) Issue(subjectID, email, tenantID, role string) (string, time.Time, error) {
	if subjectID == "" {
		return "", time.Time{}, errors.New("subjectID cannot be empty")
	}

	now := time.Now()
	expiresAt := now.Add(v.tokenTTL)

	claims := Claims{
		Email:    email,
		TenantID: tenantID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(v.secretKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to create token: %w", err)
	}

	return tokenString, expiresAt, nil
}

// Verify that JWTVerifier implements the Verifier interface at compile time
var _ Verifier = (*JWTVerifier)(nil)
