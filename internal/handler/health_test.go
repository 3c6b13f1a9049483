// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/ngo-portal/internal/session"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

// adminRequest returns a request whose session holds an admin token.
func adminRequest(t *testing.T, sm *scs.SessionManager, target string) *http.Request {
	t.Helper()
	ctx, err := sm.Load(context.Background(), "")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	ctx = session.MarkResolved(ctx)
	sm.Put(ctx, session.KeyAdminToken, "abc")
	return httptest.NewRequest(http.MethodGet, target, nil).WithContext(ctx)
}

func decodeHealth(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	return resp
}

func TestHealth_Public(t *testing.T) {
	sm := scs.New()
	h := NewHealthHandler(testDB(t), session.NewStore(sm, nil), stubPinger{}, nil, "1.0.0")

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q; want application/json", ct)
	}
	resp := decodeHealth(t, w)
	if resp["status"] != statusHealthy {
		t.Errorf("status = %v; want healthy", resp["status"])
	}
	for _, field := range []string{"checks", "version", "uptime"} {
		if _, ok := resp[field]; ok {
			t.Errorf("public response should not contain %q", field)
		}
	}
}

func TestHealth_AdminDetails(t *testing.T) {
	sm := scs.New()
	h := NewHealthHandler(testDB(t), session.NewStore(sm, nil), stubPinger{}, stubPinger{}, "1.0.0")

	w := httptest.NewRecorder()
	h.Health(w, adminRequest(t, sm, "/health?verbose=true"))

	resp := decodeHealth(t, w)
	if resp["version"] != "1.0.0" {
		t.Errorf("version = %v", resp["version"])
	}
	checks, ok := resp["checks"].(map[string]any)
	if !ok {
		t.Fatalf("checks missing: %v", resp)
	}
	for _, name := range []string{"database", "api", "cache"} {
		if _, ok := checks[name]; !ok {
			t.Errorf("check %q missing", name)
		}
	}
	if _, ok := resp["system"]; !ok {
		t.Error("verbose response should include system info")
	}
}

func TestHealth_APIDownDegrades(t *testing.T) {
	sm := scs.New()
	h := NewHealthHandler(testDB(t), session.NewStore(sm, nil), stubPinger{err: errors.New("connection refused")}, nil, "dev")

	w := httptest.NewRecorder()
	h.Health(w, adminRequest(t, sm, "/health"))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 while only degraded", w.Code)
	}
	resp := decodeHealth(t, w)
	if resp["status"] != statusDegraded {
		t.Errorf("status = %v; want degraded", resp["status"])
	}
	api := resp["checks"].(map[string]any)["api"].(map[string]any)
	if api["message"] != "connection refused" {
		t.Errorf("api message = %v", api["message"])
	}
}

func TestHealth_DatabaseDown(t *testing.T) {
	db := testDB(t)
	_ = db.Close()
	h := NewHealthHandler(db, nil, stubPinger{}, nil, "dev")

	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
	if resp := decodeHealth(t, w); resp["status"] != statusUnhealthy {
		t.Errorf("status = %v; want unhealthy", resp["status"])
	}

	ready := httptest.NewRecorder()
	h.Readiness(ready, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if ready.Code != http.StatusServiceUnavailable {
		t.Errorf("readiness status = %d, want 503", ready.Code)
	}
	if resp := decodeHealth(t, ready); resp["message"] != nil {
		t.Error("anonymous readiness should not expose the error")
	}
}

func TestLiveness(t *testing.T) {
	h := NewHealthHandler(nil, nil, nil, nil, "dev")

	w := httptest.NewRecorder()
	h.Liveness(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if resp := decodeHealth(t, w); resp["status"] != "alive" {
		t.Errorf("status = %v; want alive", resp["status"])
	}
}
