// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/olegiv/ngo-portal/internal/apiclient"
	"github.com/olegiv/ngo-portal/internal/backend"
	"github.com/olegiv/ngo-portal/internal/render"
	"github.com/olegiv/ngo-portal/internal/session"
)

// dashboardEvents is how many recent events the dashboard lists.
const dashboardEvents = 8

// AdminHandler serves the admin dashboard.
type AdminHandler struct {
	adminBase
	events    *EventsHandler
	scheduler JobLister
}

// NewAdminHandler creates a new AdminHandler. events and scheduler may be nil.
func NewAdminHandler(renderer *render.Renderer, sessions *session.Store, b *backend.Backend, events *EventsHandler, s JobLister) *AdminHandler {
	return &AdminHandler{
		adminBase: adminBase{renderer: renderer, sessions: sessions, backend: b},
		events:    events,
		scheduler: s,
	}
}

// DashboardData holds data for the dashboard template.
type DashboardData struct {
	Summary      backend.Summary
	RecentEvents []EventRow
	Jobs         []SchedulerJobView
}

// Dashboard handles GET /admin/dashboard. The counts are fetched concurrently
// with the admin's token; one that fails shows as unknown.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.api(r).Summary(r.Context())
	if err != nil {
		// Summary only fails when the request is cancelled.
		return
	}
	if summary.Unauthorized {
		h.fail(w, r, &apiclient.Error{Kind: apiclient.KindUnauthorized, Endpoint: "dashboard"}, redirectAdminDashboard, "")
		return
	}

	data := DashboardData{Summary: summary}
	if h.events != nil {
		data.RecentEvents = h.events.recentEvents(r, dashboardEvents)
	}
	if h.scheduler != nil {
		data.Jobs = jobViews(h.scheduler.List())
	}

	h.renderer.RenderPage(w, r, "admin/dashboard", render.TemplateData{
		Title: "Dashboard",
		Data:  data,
	})
}
