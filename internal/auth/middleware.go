package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/rentfolio/rentfolio/internal/authz"
	"github.com/rentfolio/rentfolio/internal/platform/httpx"
)

type tokenContextKey struct{}

// TokenFromContext returns the bearer token attached to the request, if any.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey{}).(string)
	return token
}

// HTTPMiddleware resolves the Authorization bearer token into a principal.
// Requests without a token pass through unauthenticated so public routes keep
// working; a token that fails to resolve is answered with 401, which clients
// treat as session expiry.
func (s *Service) HTTPMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer"))
			user, err := s.ResolveToken(r.Context(), token)
			if err != nil {
				httpx.Fail(w, http.StatusUnauthorized, "session expired")
				return
			}
			ctx := authz.ContextWithPrincipal(r.Context(), s.Principal(user))
			ctx = context.WithValue(ctx, tokenContextKey{}, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
