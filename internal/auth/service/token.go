package service

import (
	"fmt"
	"time"

	"github.com/aussiebroadwan/storefront/internal/auth/domain"
	"github.com/aussiebroadwan/storefront/pkg/jwtx"
)

// Identity is what a verified token asserts about its bearer.
type Identity struct {
	UserID    string
	Username  string
	Role      domain.Role
	AMR       []string
	ExpiresAt time.Time
}

// TokenIssuer mints and checks the identity tokens carried in the session
// cookie. Tokens are never stored: validity is signature plus expiry.
type TokenIssuer struct {
	KeyManager *jwtx.KeyManager
	Issuer     string
	TTL        time.Duration
	Clock      Clock
}

// Issue signs a token for u. amr lists the methods used to authenticate.
func (s *TokenIssuer) Issue(u domain.User, amr ...string) (string, error) {
	ttl := s.TTL
	if ttl <= 0 {
		ttl = jwtx.DefaultTokenTTL
	}

	claims := jwtx.NewClaims(u.ID, u.Username, u.Role.String(), amr, ttl, s.Issuer, s.Clock.now())
	token, err := s.KeyManager.Signer.Sign(claims)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify checks the signature, issuer and expiry of token. Every failure is
// reported as ErrInvalidToken.
func (s *TokenIssuer) Verify(token string) (Identity, error) {
	claims, role, err := s.verify(token)
	if err != nil {
		return Identity{}, err
	}

	id := Identity{
		UserID:   claims.Subject,
		Username: claims.Username,
		Role:     role,
		AMR:      claims.AMR,
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// SessionVerifier returns a jwtx.Verifier for the authn middleware that
// applies the same checks as Verify.
func (s *TokenIssuer) SessionVerifier() jwtx.Verifier {
	return sessionVerifier{tokens: s}
}

type sessionVerifier struct {
	tokens *TokenIssuer
}

func (v sessionVerifier) Verify(token string) (jwtx.Claims, error) {
	claims, _, err := v.tokens.verify(token)
	return claims, err
}

func (s *TokenIssuer) verify(token string) (jwtx.Claims, domain.Role, error) {
	claims, err := s.KeyManager.Verifier.Verify(token)
	if err != nil {
		return jwtx.Claims{}, "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return jwtx.Claims{}, "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, role, nil
}
