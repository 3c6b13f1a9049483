// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for the admin route guard,
// request context values, and transport hardening.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/olegiv/ngo-portal/internal/model"
	"github.com/olegiv/ngo-portal/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys.
const (
	ContextKeyAdmin       ContextKey = "admin"
	ContextKeyMember      ContextKey = "member"
	ContextKeySiteName    ContextKey = "site_name"
	ContextKeyRequestPath ContextKey = "request_path"
)

// AdminLoginPath is where unauthenticated admin requests are sent.
const AdminLoginPath = "/admin/login"

// RequireAdmin gates the admin subtree on a stored token. While the session
// is still being resolved it serves loading (HTTP 503 with Retry-After), with
// no token it redirects to the login page, and with a token it serves next.
// The token is not verified here; the backend rejects a stale one on first use.
func RequireAdmin(st *session.Store, loading http.Handler) func(http.Handler) http.Handler {
	if loading == nil {
		loading = http.HandlerFunc(defaultLoading)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch st.State(r.Context()) {
			case session.StateChecking:
				w.Header().Set("Retry-After", "1")
				w.Header().Set("Cache-Control", "no-store")
				loading.ServeHTTP(&statusWriter{ResponseWriter: w, status: http.StatusServiceUnavailable}, r)
			case session.StateUnauthenticated:
				slog.Debug("admin route without session", "path", r.URL.Path)
				http.Redirect(w, r, AdminLoginPath, http.StatusSeeOther)
			default:
				ctx := context.WithValue(r.Context(), ContextKeyAdmin, st.Admin(r.Context()))
				next.ServeHTTP(w, r.WithContext(ctx))
			}
		})
	}
}

// RedirectIfAdmin sends a signed-in admin away from the login page.
func RedirectIfAdmin(st *session.Store, target string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet && st.State(r.Context()) == session.StateAuthenticated {
				http.Redirect(w, r, target, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoadMember stores the signed-in member, if any, in the request context.
func LoadMember(st *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m := st.Member(r.Context()); m != nil {
				r = r.WithContext(context.WithValue(r.Context(), ContextKeyMember, m))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetAdmin returns the admin placed in context by RequireAdmin, or nil.
func GetAdmin(r *http.Request) *model.AdminUser {
	admin, _ := r.Context().Value(ContextKeyAdmin).(*model.AdminUser)
	return admin
}

// GetAdminEmail returns the current admin's email, or "".
func GetAdminEmail(r *http.Request) string {
	if admin := GetAdmin(r); admin != nil {
		return admin.Email
	}
	return ""
}

// GetMember returns the member placed in context by LoadMember, or nil.
func GetMember(r *http.Request) *model.AdminUser {
	m, _ := r.Context().Value(ContextKeyMember).(*model.AdminUser)
	return m
}

// SiteName stores the configured site name in the request context.
func SiteName(name string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ContextKeySiteName, name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSiteName retrieves the site name from the request context.
func GetSiteName(r *http.Request) string {
	name, ok := r.Context().Value(ContextKeySiteName).(string)
	if !ok || name == "" {
		return "NGO Portal"
	}
	return name
}

// RequestPath stores the request path in the context for error logs.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, _ := ctx.Value(ContextKeyRequestPath).(string)
	return path
}

func defaultLoading(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("Loading..."))
}

// statusWriter forces the status code of the first WriteHeader or Write.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (sw *statusWriter) WriteHeader(int) {
	if !sw.wroteHeader {
		sw.wroteHeader = true
		sw.ResponseWriter.WriteHeader(sw.status)
	}
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	sw.WriteHeader(sw.status)
	return sw.ResponseWriter.Write(b)
}
