package jwtx

import (
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is the lifetime of an identity token. Every login path uses
// the same window.
const DefaultTokenTTL = 7 * 24 * time.Hour

// Authentication Methods Reference values.
const (
	AMRPassword = "pwd"
	AMROTP      = "otp"
	AMRMFA      = "mfa"
	AMRGoogle   = "google"
)

// Claims are the identity claims carried in the auth_token cookie.
type Claims struct {
	jwt.RegisteredClaims

	Username string `json:"username"`
	Role     string `json:"role"`

	// Authentication Methods Reference, e.g. ["pwd","otp","mfa"].
	AMR []string `json:"amr,omitempty"`
}

// NewClaims builds claims for subject valid from now for ttl.
func NewClaims(
	subject, username, role string,
	amr []string,
	ttl time.Duration,
	issuer string,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        NewJTI(),
		},
		Username: username,
		Role:     role,
		AMR:      amr,
	}
}

// NewJTI returns a URL-safe random identifier for the "jti" claim.
func NewJTI() string {
	var b [20]byte
	_, _ = rand.Read(b[:])
	return base64.RawURLEncoding.EncodeToString(b[:])
}

// ValidateIssuer checks the issuer. An empty expectation is not enforced.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateExpiry checks exp and nbf against now, allowing leeway for clock skew.
// A token without exp is rejected.
func (c *Claims) ValidateExpiry(now time.Time, leeway time.Duration) error {
	if c.ExpiresAt == nil {
		return ErrInvalidClaim
	}
	if now.After(c.ExpiresAt.Add(leeway)) {
		return ErrExpired
	}
	if c.NotBefore != nil && now.Before(c.NotBefore.Add(-leeway)) {
		return ErrNotYetValid
	}
	return nil
}

// ValidateSubject rejects claims without a subject or username.
func (c *Claims) ValidateSubject() error {
	if c.Subject == "" || c.Username == "" {
		return ErrInvalidClaim
	}
	return nil
}
