package authz

import (
	"log/slog"
	"net/http"

	"github.com/rentfolio/rentfolio/internal/platform/httpx"
)

// Middleware wires capability checks into the HTTP router. A missing
// principal yields 401 (invalid session); a principal lacking the capability
// yields 403 and must never invalidate the session.
type Middleware struct {
	Logger *slog.Logger
}

// RequireConsole ensures the principal carries a role signal for the console.
func (m Middleware) RequireConsole(console Console) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				httpx.Fail(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !principal.AuthorizedFor(console) {
				if m.Logger != nil {
					m.Logger.Warn("console access denied",
						slog.String("console", string(console)),
						slog.String("role", principal.Role))
				}
				httpx.Fail(w, http.StatusForbidden, "access denied")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAny ensures the principal holds at least one of the capabilities.
func (m Middleware) RequireAny(capabilities ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(capabilities) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			principal := PrincipalFromContext(r.Context())
			if principal == nil {
				httpx.Fail(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !principal.Capabilities.HasAny(capabilities...) {
				httpx.Fail(w, http.StatusForbidden, "insufficient permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
