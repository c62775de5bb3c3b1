package httpx

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/storefront/pkg/jwtx"
	"github.com/aussiebroadwan/storefront/pkg/slogx"
)

// DefaultTokenCookie carries the identity token for browser clients.
const DefaultTokenCookie = "auth_token"

// AuthnMiddleware verifies the identity token and stores its claims in the
// request context. The token is read from the named cookie first, then from
// an "Authorization: Bearer" header.
func AuthnMiddleware(v jwtx.Verifier, cookieName string) Middleware {
	if cookieName == "" {
		cookieName = DefaultTokenCookie
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw := TokenFromRequest(r, cookieName)
			if raw == "" {
				writeInvalidToken(w, "missing identity token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				slogx.FromContext(ctx).Warn("identity token rejected", "err", err)
				writeInvalidToken(w, "identity token is invalid or expired")
				return
			}

			ctx = WithIdentity(ctx, claims)
			ctx = slogx.WithUserID(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromRequest returns the raw token from the cookie or bearer header.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if c, err := r.Cookie(cookieName); err == nil && c.Value != "" {
		return c.Value
	}

	authz := r.Header.Get("Authorization")
	if len(authz) > len("Bearer ") && strings.EqualFold(authz[:len("Bearer ")], "Bearer ") {
		return strings.TrimSpace(authz[len("Bearer "):])
	}
	return ""
}

func writeInvalidToken(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "invalid_token", desc)
}
