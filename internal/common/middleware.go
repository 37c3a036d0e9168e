package common

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const callerIDKey contextKey = "caller_id"

// CallerID returns the authenticated user id injected by AuthMiddleware.
// Empty string means the request never went through the middleware.
func CallerID(ctx context.Context) string {
	id, _ := ctx.Value(callerIDKey).(string)
	return id
}

// WithCallerID is used by tests to simulate an authenticated request.
func WithCallerID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, callerIDKey, userID)
}

// AuthMiddleware validates the Bearer token and injects the caller identity
// into the request context. Identity issuance lives outside this service;
// we only verify.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		vals := r.Header.Get("Authorization")
		if vals == "" {
			http.Error(w, "authorization required", http.StatusUnauthorized)
			return
		}

		// expected form: Bearer <token>
		parts := strings.Fields(vals)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			http.Error(w, "invalid auth header", http.StatusUnauthorized)
			return
		}

		claims, err := ValidToken(parts[1])
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := WithCallerID(r.Context(), claims.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
