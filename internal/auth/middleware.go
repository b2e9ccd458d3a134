package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mlorenc/go-shop-api/internal/shop"
)

type ctxKey struct{}

// ClaimsFrom returns the verified claims stored by Authenticate.
func ClaimsFrom(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(Claims)
	return c, ok
}

// Authenticate rejects requests without a valid Bearer token and stores the
// verified claims in the request context.
func Authenticate(issuer *TokenIssuer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				denied(w, http.StatusUnauthorized, "authentication credentials were not provided")
				return
			}
			claims, err := issuer.Verify(token)
			if err != nil {
				denied(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims)))
		})
	}
}

// RequireRole gates a route on the requester holding one of the given roles.
// Must sit inside Authenticate.
func RequireRole(roles ...shop.Role) func(http.Handler) http.Handler {
	allowed := make(map[shop.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				denied(w, http.StatusUnauthorized, "authentication credentials were not provided")
				return
			}
			if !allowed[claims.Role] {
				denied(w, http.StatusForbidden, "you do not have permission to perform this action")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func denied(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
