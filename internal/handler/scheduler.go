// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ngo-portal/internal/logging"
	"github.com/olegiv/ngo-portal/internal/middleware"
	"github.com/olegiv/ngo-portal/internal/model"
	"github.com/olegiv/ngo-portal/internal/render"
	"github.com/olegiv/ngo-portal/internal/scheduler"
	"github.com/olegiv/ngo-portal/internal/uikit"
)

// JobLister is the part of the scheduler the admin pages use.
type JobLister interface {
	List() []scheduler.JobInfo
	TriggerNow(name string) error
}

// SchedulerHandler handles scheduler admin routes.
type SchedulerHandler struct {
	renderer  *render.Renderer
	scheduler JobLister
}

// NewSchedulerHandler creates a new SchedulerHandler.
func NewSchedulerHandler(renderer *render.Renderer, s JobLister) *SchedulerHandler {
	return &SchedulerHandler{
		renderer:  renderer,
		scheduler: s,
	}
}

// SchedulerJobView represents a job for the template.
type SchedulerJobView struct {
	Name        string
	Description string
	Schedule    string
	LastRun     string
	NextRun     string
	LastError   string
}

func formatRunTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

// jobViews converts the registered jobs for display.
func jobViews(jobs []scheduler.JobInfo) []SchedulerJobView {
	views := make([]SchedulerJobView, 0, len(jobs))
	for _, job := range jobs {
		views = append(views, SchedulerJobView{
			Name:        job.Name,
			Description: job.Description,
			Schedule:    job.Schedule,
			LastRun:     formatRunTime(job.LastRun),
			NextRun:     formatRunTime(job.NextRun),
			LastError:   job.LastError,
		})
	}
	return views
}

// List handles GET /admin/scheduler - displays all scheduled jobs.
func (h *SchedulerHandler) List(w http.ResponseWriter, r *http.Request) {
	var jobs []SchedulerJobView
	if h.scheduler != nil {
		jobs = jobViews(h.scheduler.List())
	}

	h.renderer.RenderPage(w, r, "admin/scheduler", render.TemplateData{
		Title: "Scheduler",
		Data:  jobs,
		Breadcrumbs: []uikit.Breadcrumb{
			{Label: "Dashboard", URL: redirectAdminDashboard},
			{Label: "Scheduler", URL: redirectAdminScheduler, Active: true},
		},
	})
}

// Trigger handles POST /admin/scheduler/{name}/run - runs a job immediately.
func (h *SchedulerHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if h.scheduler == nil {
		flashError(w, r, h.renderer, redirectAdminScheduler, "Scheduler is not running")
		return
	}

	if err := h.scheduler.TriggerNow(name); err != nil {
		slog.Error("manual job run failed", "job", name, "error", err,
			logging.AttrCategory, model.EventCategorySystem,
			logging.AttrActor, middleware.GetAdminEmail(r))
		flashError(w, r, h.renderer, redirectAdminScheduler, "Job failed: "+err.Error())
		return
	}

	slog.Info("job triggered manually", "job", name, logging.AttrActor, middleware.GetAdminEmail(r))
	flashSuccess(w, r, h.renderer, redirectAdminScheduler, "Job "+name+" completed")
}
