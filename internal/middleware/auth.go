// Package middleware provides HTTP middleware for the API server.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/parley-ai/chat-broker/internal/auth"
	"github.com/parley-ai/chat-broker/internal/model"
)

// ContextKey is a type for context keys.
type ContextKey string

const (
	// UserKey is the context key for the authenticated user record.
	UserKey ContextKey = "user"
)

// UserSource resolves a verified token subject to a full user record.
type UserSource interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// Auth creates authentication middleware. It extracts the bearer token,
// verifies it, and loads the user record; a token whose user no longer
// exists is rejected the same way as an invalid token. The attached record
// is a point-in-time snapshot: usage-counter changes must be persisted
// through the store, not assumed durable from the snapshot.
func Auth(issuer *auth.Issuer, users UserSource) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthenticated(w)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				unauthenticated(w)
				return
			}

			userID, err := issuer.Verify(parts[1])
			if err != nil {
				unauthenticated(w)
				return
			}

			user, err := users.GetUserByID(r.Context(), userID)
			if err != nil {
				// A vanished user and a storage fault both collapse to 401
				// here; nothing downstream may run without a user record.
				unauthenticated(w)
				return
			}

			ctx := context.WithValue(r.Context(), UserKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser gets the authenticated user from context, or nil.
func GetUser(ctx context.Context) *model.User {
	if v := ctx.Value(UserKey); v != nil {
		if u, ok := v.(*model.User); ok {
			return u
		}
	}
	return nil
}

func unauthenticated(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"please authenticate","code":"unauthenticated"}`))
}
