package identity

import (
	"context"
	"net/http"
	"strings"
)

// HeaderUser carries the display name of the acting user. The portal has
// no authentication; the header is trusted as-is and only feeds default
// changedBy/author values.
const HeaderUser = "X-User"

// DefaultUser is used when no user header is present.
const DefaultUser = "System"

type ctxKey struct{}

// Middleware stores the current user's display name in the request
// context.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := strings.TrimSpace(r.Header.Get(HeaderUser))
			if user != "" {
				r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, user))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// FromContext returns the current user's display name, or DefaultUser.
func FromContext(ctx context.Context) string {
	if user, ok := ctx.Value(ctxKey{}).(string); ok && user != "" {
		return user
	}
	return DefaultUser
}
