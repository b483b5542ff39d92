// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"blogd/internal/auth"
	"blogd/internal/models"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

// identityKey is the context key for the authenticated identity.
const identityKey contextKey = "identity"

// Identity is the request-scoped authenticated caller. It travels in the
// request context, never in package state.
type Identity struct {
	UserID      uuid.UUID
	Role        models.Role
	TokenID     string
	TokenExpiry time.Time
}

// RequireAuth verifies the bearer token, rejects revoked tokens, and
// stores the caller's identity in the request context. Requests without
// a valid token get 401.
func RequireAuth(secret []byte, denylist *auth.Denylist) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				writeUnauthorized(w)
				return
			}

			claims, err := auth.ParseToken(token, secret)
			if err != nil {
				writeUnauthorized(w)
				return
			}

			if denylist != nil {
				revoked, err := denylist.Revoked(r.Context(), claims.ID)
				if err != nil || revoked {
					writeUnauthorized(w)
					return
				}
			}

			ident := &Identity{
				UserID:  claims.UserID(),
				Role:    models.Role(claims.Role),
				TokenID: claims.ID,
			}
			if claims.ExpiresAt != nil {
				ident.TokenExpiry = claims.ExpiresAt.Time
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), ident)))
		})
	}
}

// RequireAdmin returns 403 if the authenticated caller is not an admin.
// Must be applied after RequireAuth.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ident := IdentityFromCtx(r.Context())
		if ident == nil || ident.Role != models.RoleAdmin {
			writeEnvelope(w, http.StatusForbidden, "Access restricted to admins")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithIdentity returns a context carrying the given identity.
func WithIdentity(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, identityKey, ident)
}

// IdentityFromCtx extracts the authenticated identity from the request
// context. Returns nil on unauthenticated requests.
func IdentityFromCtx(ctx context.Context) *Identity {
	ident, _ := ctx.Value(identityKey).(*Identity)
	return ident
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

func writeUnauthorized(w http.ResponseWriter) {
	writeEnvelope(w, http.StatusUnauthorized, "Not authorized to access this route")
}
