package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mfarias/autolote/internal/auth"
)

// claimsKey is the context key under which verified claims are stored.
// An unexported struct type prevents collisions with other packages' keys.
type claimsKey struct{}

// ClaimsFromContext returns the claims stored by NewBearerAuth, if any.
func ClaimsFromContext(ctx context.Context) (auth.Claims, bool) {
	c, ok := ctx.Value(claimsKey{}).(auth.Claims)
	return c, ok
}

// NewBearerAuth returns a middleware that rejects requests lacking a valid
// "Authorization: Bearer <token>" header with 401 and the standard error
// envelope. Verified claims are stored in the request context for handlers
// that need the caller's identity.
func NewBearerAuth(tokens *auth.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			parts := strings.Fields(header)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(w, "malformed authorization header")
				return
			}

			claims, err := tokens.Verify(parts[1])
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// unauthorized writes a 401 with the same JSON envelope the handlers use.
// Duplicated here rather than importing the handler package to keep the
// dependency direction handler → middleware.
func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": "unauthorized", "message": message},
	})
}
