// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const checkoutOrigin = "https://checkout.payments.example"

// headersFor serves path through SecurityHeaders and returns the response headers.
func headersFor(cfg SecurityHeadersConfig, path string) http.Header {
	h := SecurityHeaders(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec.Header()
}

// cspDirective returns the value of one directive of a policy.
func cspDirective(policy, name string) (string, bool) {
	for _, part := range strings.Split(policy, "; ") {
		if value, ok := strings.CutPrefix(part, name+" "); ok {
			return value, true
		}
	}
	return "", false
}

func TestSecurityHeaders_PortalDefaults(t *testing.T) {
	tests := []struct {
		name     string
		isDev    bool
		wantHSTS string
	}{
		{"production", false, "max-age=31536000; includeSubDomains"},
		{"development", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := headersFor(DefaultSecurityHeadersConfig(tt.isDev, checkoutOrigin), "/donate")

			assert.Equal(t, tt.wantHSTS, h.Get("Strict-Transport-Security"))
			assert.Equal(t, "SAMEORIGIN", h.Get("X-Frame-Options"))
			assert.Equal(t, "nosniff", h.Get("X-Content-Type-Options"))
			assert.Equal(t, "strict-origin-when-cross-origin", h.Get("Referrer-Policy"))
			assert.NotEmpty(t, h.Get("Content-Security-Policy"))
			assert.NotEmpty(t, h.Get("Permissions-Policy"))
		})
	}
}

func TestDefaultSecurityHeadersConfig_CheckoutWidgetAllowed(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig(false, checkoutOrigin)

	for _, name := range []string{"script-src", "connect-src", "frame-src"} {
		value, ok := cspDirective(cfg.ContentSecurityPolicy, name)
		require.True(t, ok, name)
		assert.Contains(t, value, checkoutOrigin, name)
	}
	for _, name := range []string{"img-src", "style-src", "form-action"} {
		value, _ := cspDirective(cfg.ContentSecurityPolicy, name)
		assert.NotContains(t, value, checkoutOrigin, name)
	}
	assert.Contains(t, cfg.PermissionsPolicy, "payment=(self "+checkoutOrigin+")")
	assert.Contains(t, cfg.PermissionsPolicy, "camera=()")
}

func TestDefaultSecurityHeadersConfig_NoWidgets(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig(false)

	script, _ := cspDirective(cfg.ContentSecurityPolicy, "script-src")
	assert.Equal(t, "'self' 'unsafe-inline'", script)
	objects, _ := cspDirective(cfg.ContentSecurityPolicy, "object-src")
	assert.Equal(t, "'none'", objects)
	assert.Contains(t, cfg.PermissionsPolicy, "payment=(self)")
}

func TestDefaultSecurityHeadersConfig_DevelopmentLoosensScripts(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig(true)

	script, _ := cspDirective(cfg.ContentSecurityPolicy, "script-src")
	assert.Contains(t, script, "'unsafe-eval'")
	images, _ := cspDirective(cfg.ContentSecurityPolicy, "img-src")
	assert.Contains(t, images, "http:")
}

func TestSecurityHeaders_HealthChecksExcluded(t *testing.T) {
	cfg := DefaultSecurityHeadersConfig(false)
	cfg.ExcludePaths = []string{"/health"}

	for path, want := range map[string]bool{
		"/":              true,
		"/admin/login":   true,
		"/health":        false,
		"/health/ready":  false,
		"/gallery?i=2":   true,
		"/static/dist/x": true,
	} {
		csp := headersFor(cfg, path).Get("Content-Security-Policy")
		assert.Equal(t, want, csp != "", path)
	}
}

func TestSecurityHeaders_HSTSOptions(t *testing.T) {
	h := headersFor(SecurityHeadersConfig{
		HSTSMaxAge:            63072000,
		HSTSIncludeSubDomains: true,
		HSTSPreload:           true,
	}, "/")
	assert.Equal(t, "max-age=63072000; includeSubDomains; preload", h.Get("Strict-Transport-Security"))
	assert.Empty(t, h.Get("X-Frame-Options"), "empty FrameOptions omits the header")
}

func TestBuildCSP_KnownDirectivesFirst(t *testing.T) {
	got := buildCSP(map[string]string{
		"worker-src":  "'self'",
		"img-src":     "'self' data:",
		"default-src": "'self'",
		"media-src":   "https:",
	})
	assert.Equal(t, "default-src 'self'; img-src 'self' data:; media-src https:; worker-src 'self'", got)
}

func TestBuildPermissionsPolicy_Sorted(t *testing.T) {
	got := buildPermissionsPolicy(map[string]string{"usb": "()", "payment": "(self)", "camera": "()"})
	assert.Equal(t, "camera=(), payment=(self), usb=()", got)
}
