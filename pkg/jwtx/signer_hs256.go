package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// MinHS256SecretLen is the shortest shared secret accepted for HS256.
const MinHS256SecretLen = 32

var ErrWeakSecret = errors.New("jwtx: HS256 secret must be at least 32 bytes")

// HS256Signer signs with a shared secret. The secret never leaves the process,
// so there is nothing to publish.
type HS256Signer struct {
	kid    string
	secret []byte
}

func newHS256Signer(kid string, secret []byte) (*HS256Signer, error) {
	if len(secret) < MinHS256SecretLen {
		return nil, ErrWeakSecret
	}
	return &HS256Signer{kid: kid, secret: append([]byte(nil), secret...)}, nil
}

func (s *HS256Signer) Alg() string { return jwt.SigningMethodHS256.Alg() }
func (s *HS256Signer) KID() string { return s.kid }

func (s *HS256Signer) Sign(claims Claims) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	if s.kid != "" {
		t.Header["kid"] = s.kid
	}
	return t.SignedString(s.secret)
}
