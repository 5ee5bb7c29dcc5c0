package middleware

import (
	"fmt"
	"net/http"
)

// RequireRole gates a handler behind a minimum role claim. It must run
// inside RequireAuth; a request whose identity carries no numeric "role"
// claim, or one below min, is rejected with 403.
func RequireRole(min int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := IdentityFromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			role, ok := identity.Role()
			if !ok || role < min {
				http.Error(w,
					fmt.Sprintf("insufficient role: required %d", min),
					http.StatusForbidden,
				)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
