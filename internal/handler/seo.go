// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/ngo-portal/internal/backend"
	"github.com/olegiv/ngo-portal/internal/seo"
)

// sitemapPages are the fixed public pages, in sitemap order.
var sitemapPages = []seo.StaticPage{
	{Path: RouteAbout, ChangeFreq: seo.ChangeFreqMonthly, Priority: "0.7"},
	{Path: RoutePrograms, ChangeFreq: seo.ChangeFreqWeekly, Priority: "0.9"},
	{Path: RouteImpact, ChangeFreq: seo.ChangeFreqMonthly, Priority: "0.7"},
	{Path: RouteGetInvolved, ChangeFreq: seo.ChangeFreqMonthly, Priority: "0.8"},
	{Path: RouteDonate, ChangeFreq: seo.ChangeFreqMonthly, Priority: "0.9"},
	{Path: RouteMembership, ChangeFreq: seo.ChangeFreqMonthly, Priority: "0.6"},
	{Path: RouteVolunteer, ChangeFreq: seo.ChangeFreqMonthly, Priority: "0.6"},
	{Path: RouteBlog, ChangeFreq: seo.ChangeFreqDaily, Priority: "0.8"},
	{Path: RouteGallery, ChangeFreq: seo.ChangeFreqWeekly, Priority: "0.5"},
	{Path: RouteContact, ChangeFreq: seo.ChangeFreqMonthly, Priority: "0.5"},
}

// SEOHandler serves robots.txt and sitemap.xml.
type SEOHandler struct {
	backend *backend.Backend
	siteURL string
	isDev   bool
}

// NewSEOHandler creates a new SEOHandler. An empty siteURL is derived from
// each request.
func NewSEOHandler(b *backend.Backend, siteURL string, isDev bool) *SEOHandler {
	return &SEOHandler{backend: b, siteURL: siteURL, isDev: isDev}
}

func (h *SEOHandler) baseURL(r *http.Request) string {
	if h.siteURL != "" {
		return h.siteURL
	}
	scheme := "https"
	if r.TLS == nil && h.isDev {
		scheme = "http"
	}
	return scheme + "://" + r.Host
}

// Robots handles GET /robots.txt. Development servers ask crawlers to stay
// away entirely.
func (h *SEOHandler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write([]byte(seo.BuildRobots(seo.RobotsConfig{
		SiteURL:     h.baseURL(r),
		DisallowAll: h.isDev,
	})))
}

// Sitemap handles GET /sitemap.xml. Programs and published posts are listed
// when the backend answers; the fixed pages always are.
func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	var (
		programs []seo.SitemapEntry
		posts    []seo.SitemapEntry
		mu       sync.Mutex
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		list, err := h.backend.ListPrograms(ctx)
		if err != nil {
			logFetchError(r, "programs", err)
			return nil
		}
		list = activePrograms(list)
		sortPrograms(list)
		entries := make([]seo.SitemapEntry, 0, len(list))
		for _, p := range list {
			entries = append(entries, seo.SitemapEntry{Slug: p.Slug})
		}
		mu.Lock()
		programs = entries
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		list, err := h.backend.ListBlogs(ctx, backend.PublicBlogQuery)
		if err != nil {
			logFetchError(r, "blogs", err)
			return nil
		}
		list = publishedOnly(list)
		sortPostsNewestFirst(list)
		entries := make([]seo.SitemapEntry, 0, len(list))
		for _, p := range list {
			entries = append(entries, seo.SitemapEntry{Slug: p.Slug, UpdatedAt: p.DisplayDate()})
		}
		mu.Lock()
		posts = entries
		mu.Unlock()
		return nil
	})
	_ = g.Wait()
	if canceled(r, nil) {
		return
	}

	builder := seo.NewSitemapBuilder(h.baseURL(r))
	builder.AddHomepage()
	builder.AddStaticPages(sitemapPages)
	builder.AddEntries(RoutePrograms, programs, "0.8")
	builder.AddEntries(RouteBlog, posts, "0.6")

	out, err := builder.Build()
	if err != nil {
		slog.Error("failed to build sitemap", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(out)
}
