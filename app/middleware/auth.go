package middleware

import (
	"context"
	"net/http"
	"strings"
)

type ownerCtxKey struct{}

// IdentityVerifier turns a bearer token into the owner identifier it was issued for.
type IdentityVerifier interface {
	Verify(token string) (string, error)
}

// Authenticate returns middleware that requires a valid Bearer token and
// stores the verified owner identifier in the request context.
func Authenticate(verifier IdentityVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeError(w, http.StatusUnauthorized, "authorization required")
				return
			}

			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				writeError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			owner, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil || owner == "" {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), owner)))
		})
	}
}

// WithOwner returns a context carrying the owner identifier.
func WithOwner(ctx context.Context, owner string) context.Context {
	return context.WithValue(ctx, ownerCtxKey{}, owner)
}

// OwnerFromContext returns the verified owner identifier, or "" when the
// request was not authenticated.
func OwnerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ownerCtxKey{}).(string)
	return owner
}
