package posapi

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what the client learns from the issued bearer token. The
// signing key lives server-side, so claims are read without verification;
// they gate dispatch locally, the server still enforces them.
type TokenInfo struct {
	TenantID  string
	ExpiresAt time.Time
}

// InspectToken parses the bearer token without verifying its signature and
// extracts the tenant claim and expiry. Opaque (non-JWT) tokens return an
// error and the caller proceeds without local introspection.
func InspectToken(raw string) (*TokenInfo, error) {
	trimmed := strings.TrimSpace(raw)
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(trimmed, claims); err != nil {
		return nil, err
	}

	info := &TokenInfo{}
	if tenant, ok := claims["tenant_id"].(string); ok {
		info.TenantID = tenant
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.ExpiresAt = exp.Time
	}
	return info, nil
}

// Expired reports whether the token carries an expiry that has passed.
func (t *TokenInfo) Expired(now time.Time) bool {
	if t == nil || t.ExpiresAt.IsZero() {
		return false
	}
	return now.After(t.ExpiresAt)
}
