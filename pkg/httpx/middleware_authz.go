package httpx

import (
	"net/http"

	"github.com/aussiebroadwan/billybuddy/pkg/role"
	"github.com/aussiebroadwan/billybuddy/pkg/slogx"
)

// RequireAnyRole only lets through callers authenticated with one of roles.
// It must run after AuthnMiddleware.
func RequireAnyRole(roles ...role.Role) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			have := RoleFromContext(r.Context())
			if have.OneOf(roles...) {
				next.ServeHTTP(w, r)
				return
			}

			slogx.FromContext(r.Context()).Warn("role check failed",
				"role", have,
				"required", roles,
				"path", r.URL.Path,
			)
			WriteError(w, http.StatusForbidden, "permission_denied", "you do not have permission to perform this action")
		})
	}
}
