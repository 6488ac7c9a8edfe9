// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"docshelf/internal/auth"
	"docshelf/internal/models"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// identityKey is the context key for the authenticated identity.
	identityKey contextKey = "identity"
)

// RequireAuth authenticates the bearer token on the request and stores the
// caller's identity in the request context. Requests without a valid token
// get 401. The identity carries the account's current role, read from the
// database on every request, so a deleted account or a changed role takes
// effect immediately regardless of what the token claims.
func RequireAuth(a *auth.Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				errorJSON(w, http.StatusUnauthorized, "authentication required")
				return
			}

			id, err := a.Authenticate(token)
			if err != nil {
				// A failed revocation lookup is a system fault, not a
				// bad credential. The caller must not be told their
				// token is invalid when the database is down.
				if !errors.Is(err, auth.ErrUnauthenticated) {
					slog.Error("authentication lookup failed", "error", err)
					errorJSON(w, http.StatusInternalServerError, "server error")
					return
				}
				errorJSON(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole returns 403 unless the authenticated identity holds at least
// the given role. Must be applied after RequireAuth.
func RequireRole(min models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := IdentityFromCtx(r.Context())
			if id == nil || !id.Role.AtLeast(min) {
				errorJSON(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IdentityFromCtx extracts the authenticated identity from the request
// context. Returns nil outside a RequireAuth chain.
func IdentityFromCtx(ctx context.Context) *auth.Identity {
	id, _ := ctx.Value(identityKey).(*auth.Identity)
	return id
}

// bearerToken pulls the token out of the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// errorJSON writes a minimal JSON error body. The middleware layer keeps
// its own writer so it does not depend on the handlers package.
func errorJSON(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body, _ := json.Marshal(map[string]string{"error": msg})
	w.Write(body)
}
