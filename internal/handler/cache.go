// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/olegiv/ngo-portal/internal/cache"
	"github.com/olegiv/ngo-portal/internal/logging"
	"github.com/olegiv/ngo-portal/internal/middleware"
	"github.com/olegiv/ngo-portal/internal/model"
	"github.com/olegiv/ngo-portal/internal/render"
	"github.com/olegiv/ngo-portal/internal/uikit"
)

// Warmer refills the public cache.
type Warmer interface {
	Warm(ctx context.Context) error
}

// CacheHandler handles cache management routes.
type CacheHandler struct {
	renderer *render.Renderer
	cache    cache.Cache
	warmer   Warmer
}

// NewCacheHandler creates a new CacheHandler. c may be nil when response
// caching is disabled.
func NewCacheHandler(renderer *render.Renderer, c cache.Cache, warmer Warmer) *CacheHandler {
	return &CacheHandler{
		renderer: renderer,
		cache:    c,
		warmer:   warmer,
	}
}

// CacheStatsData holds data for the cache stats template.
type CacheStatsData struct {
	Enabled     bool
	Stats       cache.Stats
	HasStats    bool
	IsRedis     bool
	HealthError string // Non-empty if health check failed
}

// Stats handles GET /admin/cache - displays cache statistics.
func (h *CacheHandler) Stats(w http.ResponseWriter, r *http.Request) {
	data := CacheStatsData{Enabled: h.cache != nil}
	if sp, ok := h.cache.(cache.StatsProvider); ok {
		data.Stats = sp.Stats()
		data.HasStats = true
	}
	if rc, ok := h.cache.(*cache.RedisCache); ok {
		data.IsRedis = true
		if err := rc.Ping(r.Context()); err != nil {
			data.HealthError = err.Error()
		}
	}

	h.renderer.RenderPage(w, r, "admin/cache", render.TemplateData{
		Title: "Cache",
		Data:  data,
		Breadcrumbs: []uikit.Breadcrumb{
			{Label: "Dashboard", URL: redirectAdminDashboard},
			{Label: "Cache", URL: redirectAdminCache, Active: true},
		},
	})
}

// Clear handles POST /admin/cache/clear - drops every cached response and
// refills the public collections.
func (h *CacheHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		flashError(w, r, h.renderer, redirectAdminCache, "Response caching is disabled")
		return
	}

	if err := h.cache.Clear(r.Context()); err != nil {
		slog.Error("failed to clear cache", "error", err)
		flashError(w, r, h.renderer, redirectAdminCache, "Failed to clear cache")
		return
	}
	slog.Info("cache cleared",
		logging.AttrCategory, model.EventCategoryCache,
		logging.AttrActor, middleware.GetAdminEmail(r))

	if h.warmer != nil {
		if err := h.warmer.Warm(context.WithoutCancel(r.Context())); err != nil {
			slog.Warn("cache warm-up after clear failed", "error", err)
			flashSuccess(w, r, h.renderer, redirectAdminCache, "Cache cleared; it will refill on the next requests")
			return
		}
	}
	flashSuccess(w, r, h.renderer, redirectAdminCache, "Cache cleared successfully")
}
