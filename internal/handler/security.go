package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/merchkit/backoffice/internal/auth"
	"github.com/merchkit/backoffice/internal/domain/user"
)

type claimsKey struct{}

// claimsFrom returns the verified identity stored by authenticate.
func claimsFrom(ctx context.Context) (*auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return c, ok
}

// authenticate verifies the Authorization bearer token and stores its
// claims in the request context.
func (h *Handler) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			respondError(w, http.StatusUnauthorized, "authorization required")
			return
		}
		claims, err := h.tokens.Verify(raw)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireStaff allows staff and admin roles through.
func (h *Handler) requireStaff(next http.Handler) http.Handler {
	return requireRoles(next, user.RoleStaff, user.RoleAdmin)
}

// requireAdmin allows only admins through.
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return requireRoles(next, user.RoleAdmin)
}

func requireRoles(next http.Handler, roles ...user.Role) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := claimsFrom(r.Context())
		if !ok {
			respondError(w, http.StatusUnauthorized, "authorization required")
			return
		}
		for _, role := range roles {
			if claims.Role == string(role) {
				next.ServeHTTP(w, r)
				return
			}
		}
		respondError(w, http.StatusForbidden, "insufficient role")
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return h[len(prefix):]
	}
	return ""
}
