package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/nordmart/storefront/internal/domain/auth"
)

type identityKey struct{}

func identityWith(ctx context.Context, id *auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// identityFrom returns the verified caller identity placed by requireAuth.
// It panics when called outside an authenticated route; that is a routing bug,
// not a runtime condition.
func identityFrom(ctx context.Context) *auth.Identity {
	return ctx.Value(identityKey{}).(*auth.Identity)
}

// bearerToken extracts the token from an "Authorization: Bearer ..." header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}

// requireAuth verifies the access token and stores the caller identity in the
// request context before invoking next.
func (h *Handler) requireAuth(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			respondError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		id, err := h.auth.Verify(token)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next(w, r.WithContext(identityWith(r.Context(), id)))
	})
}

// requireAdmin is requireAuth plus an admin role gate.
func (h *Handler) requireAdmin(next http.HandlerFunc) http.Handler {
	return h.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		if identityFrom(r.Context()).Role != auth.RoleAdmin {
			respondError(w, http.StatusForbidden, "admin role required")
			return
		}
		next(w, r)
	})
}
