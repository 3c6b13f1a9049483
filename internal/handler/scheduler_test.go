// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ngo-portal/internal/scheduler"
)

type stubJobs struct {
	jobs      []scheduler.JobInfo
	triggered []string
	err       error
}

func (s *stubJobs) List() []scheduler.JobInfo {
	return s.jobs
}

func (s *stubJobs) TriggerNow(name string) error {
	s.triggered = append(s.triggered, name)
	return s.err
}

func TestFormatRunTime(t *testing.T) {
	if got := formatRunTime(time.Time{}); got != "-" {
		t.Errorf("formatRunTime(zero) = %q, want -", got)
	}
	at := time.Date(2025, 3, 1, 4, 5, 6, 0, time.UTC)
	if got := formatRunTime(at); got != "2025-03-01 04:05:06" {
		t.Errorf("formatRunTime = %q", got)
	}
}

func TestSchedulerList(t *testing.T) {
	jobs := &stubJobs{jobs: []scheduler.JobInfo{
		{Name: "event_retention", Schedule: "@daily"},
		{Name: "cache_warmup", Schedule: "@every 10m", LastRun: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)},
	}}
	h := NewSchedulerHandler(testRenderer(t), jobs)

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/admin/scheduler", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if got := strings.Count(body, `class="job"`); got != 2 {
		t.Errorf("jobs = %d, want 2", got)
	}
	if !strings.Contains(body, "event_retention -") {
		t.Error("a job that never ran should show -")
	}
	if !strings.Contains(body, "cache_warmup 2025-01-02 03:04:05") {
		t.Error("last run time missing")
	}
}

func TestSchedulerTrigger(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"success", nil},
		{"failure", errors.New("boom")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := &stubJobs{err: tt.err}
			h := NewSchedulerHandler(testRenderer(t), jobs)

			req := httptest.NewRequest(http.MethodPost, "/admin/scheduler/cache_warmup/run", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("name", "cache_warmup")
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			h.Trigger(w, req)

			if w.Code != http.StatusSeeOther {
				t.Errorf("status = %d, want 303", w.Code)
			}
			if loc := w.Header().Get("Location"); loc != redirectAdminScheduler {
				t.Errorf("Location = %q", loc)
			}
			if len(jobs.triggered) != 1 || jobs.triggered[0] != "cache_warmup" {
				t.Errorf("triggered = %v", jobs.triggered)
			}
		})
	}
}
