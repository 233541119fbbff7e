// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/alexedwards/scs/v2"

	"github.com/citycouncil/council-go/internal/model"
	"github.com/citycouncil/council-go/internal/store"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys for user data.
const (
	ContextKeyUser        ContextKey = "user"
	ContextKeyRequestPath ContextKey = "request_path"
)

// SessionKeyUserID is the session key holding the signed-in user's ID.
const SessionKeyUserID = "user_id"

// LoginURL builds the login route with a next parameter pointing back to
// the page that required authentication.
func LoginURL(r *http.Request) string {
	return "/auth/login?next=" + url.QueryEscape(r.URL.RequestURI())
}

// Auth creates middleware that requires authentication. Anonymous requests
// are redirected to the login page with a next parameter.
func Auth(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				http.Redirect(w, r, LoginURL(r), http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// LoadUser creates middleware that loads the current user into the request
// context. Should be used after Auth. A stale session pointing at a deleted
// or deactivated user is destroyed.
func LoadUser(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil || !user.IsActive {
				_ = sm.Destroy(r.Context())
				http.Redirect(w, r, LoginURL(r), http.StatusSeeOther)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalLoadUser creates middleware that loads the current user into
// context when a session exists, and continues anonymously otherwise.
// Use this for frontend routes where authentication is optional.
func OptionalLoadUser(sm *scs.SessionManager, db *sql.DB) func(http.Handler) http.Handler {
	queries := store.New(db)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), SessionKeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil || !user.IsActive {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser retrieves the current user from the request context.
// Returns nil if no user is in context.
func GetUser(r *http.Request) *model.User {
	user, ok := r.Context().Value(ContextKeyUser).(model.User)
	if !ok {
		return nil
	}
	return &user
}

// GetUserID returns the current user's ID from context, or 0 if not found.
// Safe to use in logging where a zero-value is acceptable.
func GetUserID(r *http.Request) int64 {
	if user := GetUser(r); user != nil {
		return user.ID
	}
	return 0
}

// GetUserIDPtr returns a pointer to the current user's ID for event log
// attribution, or nil for anonymous requests.
func GetUserIDPtr(r *http.Request) *int64 {
	if user := GetUser(r); user != nil {
		id := user.ID
		return &id
	}
	return nil
}

// GetClientIP returns the client IP for the request, honoring proxy headers.
func GetClientIP(r *http.Request) string {
	return getClientIP(r)
}

// GetRequestURL returns the request URI for event logging.
func GetRequestURL(r *http.Request) string {
	return r.URL.RequestURI()
}

// RequestPath creates middleware that stores the request path in the context.
// The logging handler uses it to include the URL in persisted error entries.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, ok := ctx.Value(ContextKeyRequestPath).(string)
	if !ok {
		return ""
	}
	return path
}

// AuthEventLogger records authorization failures for the admin event log.
type AuthEventLogger interface {
	LogAuthEvent(ctx context.Context, level, message string, userID *int64, ip, url string, metadata map[string]any) error
}

// RequireAdmin creates middleware gating the back-office. Both anonymous
// visitors and signed-in non-admin users are redirected to the login page
// with a next parameter; access is never answered with a bare 403 so the
// response shape does not reveal whether an account exists.
func RequireAdmin(events AuthEventLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				http.Redirect(w, r, LoginURL(r), http.StatusSeeOther)
				return
			}

			if !user.IsAdmin() {
				slog.Warn("admin access denied",
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", user.ID,
					"user_role", user.Role,
					"remote_addr", r.RemoteAddr,
				)

				if events != nil {
					userID := user.ID
					metadata := map[string]any{
						"method":    r.Method,
						"user_role": user.Role,
					}
					_ = events.LogAuthEvent(r.Context(), model.LogLevelWarning,
						"Admin access denied: insufficient role", &userID, r.RemoteAddr, r.URL.Path, metadata)
				}

				http.Redirect(w, r, LoginURL(r), http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
