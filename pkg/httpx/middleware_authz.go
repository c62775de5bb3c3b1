package httpx

import (
	"net/http"
	"slices"
)

// RequireRole admits callers whose token role is one of roles. It must run
// after AuthnMiddleware.
func RequireRole(roles ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !slices.Contains(roles, RoleFromContext(r.Context())) {
				WriteError(w, http.StatusForbidden, "insufficient_role", "this action requires a different role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
