package httpapi

import (
	"net/http"
	"strings"

	"github.com/sharetrip-app/sharetrip-api/internal/platform/auth"
)

// NewAuthMiddleware enforces Authorization: Bearer <JWT> and stores the
// authenticated subject (JWT `sub`) in request context.
func NewAuthMiddleware(v *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(w, r)
			if !ok {
				return
			}
			if raw == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing Authorization header", nil)
				return
			}
			sub, err := v.Verify(r.Context(), raw)
			if err != nil {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), sub)))
		})
	}
}

// NewOptionalAuthMiddleware authenticates when a bearer token is present and
// lets anonymous requests through. A present-but-invalid token is still 401.
func NewOptionalAuthMiddleware(v *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(w, r)
			if !ok {
				return
			}
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			sub, err := v.Verify(r.Context(), raw)
			if err != nil {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), sub)))
		})
	}
}

// NewDevAuthMiddleware is a local/dev-only auth shim.
//
// It accepts an explicit subject via X-Debug-Subject and stores it in request
// context, falling back to defaultSubject when the header is absent. Intended
// for local Docker workflows where standing up a token issuer is overkill.
// Do NOT use this in production deployments.
func NewDevAuthMiddleware(defaultSubject string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sub := strings.TrimSpace(r.Header.Get("X-Debug-Subject"))
			if sub == "" {
				sub = strings.TrimSpace(defaultSubject)
			}
			if sub == "" {
				writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing subject (set X-Debug-Subject)", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithSubject(r.Context(), sub)))
		})
	}
}

// NewOptionalDevAuthMiddleware is the dev shim for routes that also serve
// anonymous traffic.
func NewOptionalDevAuthMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sub := strings.TrimSpace(r.Header.Get("X-Debug-Subject")); sub != "" {
				r = r.WithContext(WithSubject(r.Context(), sub))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bearerToken extracts the bearer token. It returns ok=false after writing a
// response for a malformed header; an absent header yields ("", true).
func bearerToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	authz := r.Header.Get("Authorization")
	if authz == "" {
		return "", true
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(authz, prefix) {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "malformed Authorization header", nil)
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(authz, prefix))
	if raw == "" {
		writeError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing bearer token", nil)
		return "", false
	}
	return raw, true
}
