// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStripTrailingSlash(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h := StripTrailingSlash(ok)

	tests := []struct {
		method   string
		target   string
		wantCode int
		wantLoc  string
	}{
		{http.MethodGet, "/", http.StatusOK, ""},
		{http.MethodGet, "/blog", http.StatusOK, ""},
		{http.MethodGet, "/blog/", http.StatusMovedPermanently, "/blog"},
		{http.MethodGet, "/gallery/?category=Healthcare", http.StatusMovedPermanently, "/gallery?category=Healthcare"},
		{http.MethodPost, "/contact/", http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(tt.method, tt.target, nil))

			if rr.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantCode)
			}
			if loc := rr.Header().Get("Location"); loc != tt.wantLoc {
				t.Errorf("Location = %q, want %q", loc, tt.wantLoc)
			}
		})
	}
}
