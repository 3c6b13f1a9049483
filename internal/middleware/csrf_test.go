package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

var testCSRFKey = []byte("12345678901234567890123456789012")

func TestDefaultCSRFConfig(t *testing.T) {
	tests := []struct {
		name        string
		isDev       bool
		port        int
		wantOrigins []string
	}{
		{"development", true, 3000, []string{"localhost:3000", "127.0.0.1:3000"}},
		{"production", false, 8080, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultCSRFConfig(testCSRFKey, tt.isDev, tt.port)

			if len(cfg.AuthKey) != 32 {
				t.Errorf("expected 32-byte AuthKey, got %d bytes", len(cfg.AuthKey))
			}
			if strings.Join(cfg.TrustedOrigins, ",") != strings.Join(tt.wantOrigins, ",") {
				t.Errorf("TrustedOrigins = %v, want %v", cfg.TrustedOrigins, tt.wantOrigins)
			}
			for _, origin := range cfg.TrustedOrigins {
				if strings.HasPrefix(origin, "http") {
					t.Errorf("TrustedOrigin should be host:port, not full URL: %s", origin)
				}
			}
		})
	}
}

func TestCSRF_FetchMetadata(t *testing.T) {
	handler := CSRF(DefaultCSRFConfig(testCSRFKey, false, 8080))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name     string
		method   string
		site     string
		wantCode int
	}{
		{"same-origin post", http.MethodPost, "same-origin", http.StatusOK},
		{"cross-site post", http.MethodPost, "cross-site", http.StatusForbidden},
		{"cross-site get", http.MethodGet, "cross-site", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/contact", nil)
			req.Header.Set("Sec-Fetch-Site", tt.site)
			rr := httptest.NewRecorder()

			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantCode)
			}
		})
	}
}

func TestCSRF_WithCustomErrorHandler(t *testing.T) {
	cfg := DefaultCSRFConfig(testCSRFKey, false, 8080)
	called := false
	cfg.ErrorHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		http.Error(w, "custom", http.StatusForbidden)
	})

	handler := CSRF(cfg)(http.NotFoundHandler())
	req := httptest.NewRequest(http.MethodPost, "/admin/blogs", nil)
	req.Header.Set("Sec-Fetch-Site", "cross-site")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Error("custom error handler was not called")
	}
}
