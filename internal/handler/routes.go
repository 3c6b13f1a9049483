// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ngo-portal/internal/middleware"
	"github.com/olegiv/ngo-portal/internal/session"
)

// Default public form limits, per client IP.
const (
	DefaultSubmitRate  = 0.2
	DefaultSubmitBurst = 5
)

// Handlers holds every page handler the router mounts. A nil handler
// leaves its routes unmounted, except the site and admin pages which are
// always required.
type Handlers struct {
	Frontend    *FrontendHandler
	Forms       *FormsHandler
	Auth        *AuthHandler
	Admin       *AdminHandler
	Blogs       *BlogsHandler
	Programs    *ProgramsHandler
	Gallery     *GalleryHandler
	Board       *BoardHandler
	Submissions *SubmissionsHandler
	Donations   *DonationsHandler
	Events      *EventsHandler
	Scheduler   *SchedulerHandler
	Cache       *CacheHandler
	SEO         *SEOHandler
	Health      *HealthHandler
}

// RouteConfig carries what the route table needs besides the handlers.
type RouteConfig struct {
	Sessions *session.Store
	// LoginProtection rate limits login POSTs. Nil disables it.
	LoginProtection *middleware.LoginProtection
	// Static serves /static/dist/*. Nil leaves the route unmounted.
	Static      http.Handler
	SubmitRate  float64
	SubmitBurst int
}

// MountRoutes registers the full route table on r. Request-wide middleware
// such as session loading is left to the caller.
func MountRoutes(r chi.Router, h Handlers, cfg RouteConfig) {
	if cfg.SubmitRate <= 0 {
		cfg.SubmitRate = DefaultSubmitRate
	}
	if cfg.SubmitBurst <= 0 {
		cfg.SubmitBurst = DefaultSubmitBurst
	}
	loginLimit := func(next http.Handler) http.Handler { return next }
	if cfg.LoginProtection != nil {
		loginLimit = cfg.LoginProtection.Middleware()
	}

	// Health checks carry no session state.
	if h.Health != nil {
		r.Get(RouteHealth, h.Health.Health)
		r.Get(RouteHealthLive, h.Health.Liveness)
		r.Get(RouteHealthReady, h.Health.Readiness)
	}
	if cfg.Static != nil {
		r.Handle(RouteStatic, cfg.Static)
	}
	if h.SEO != nil {
		r.Get(RouteRobots, h.SEO.Robots)
		r.Get(RouteSitemap, h.SEO.Sitemap)
	}

	mountFrontend(r, h.Frontend)
	mountForms(r, h.Forms, cfg)

	// Member accounts
	r.Get(RouteLogin, h.Auth.MemberLoginForm)
	r.With(loginLimit).Post(RouteLogin, h.Auth.MemberLogin)
	r.Get(RouteRegister, h.Auth.RegisterForm)
	r.With(middleware.SubmitRateLimit(cfg.SubmitRate, cfg.SubmitBurst)).Post(RouteRegister, h.Auth.Register)
	r.Post(RouteLogout, h.Auth.MemberLogout)

	// Admin sign-in
	r.With(middleware.RedirectIfAdmin(cfg.Sessions, RouteAdminPrefix+RouteDashboard)).
		Get(RouteAdminLogin, h.Auth.LoginForm)
	r.With(loginLimit).Post(RouteAdminLogin, h.Auth.Login)

	r.Route(RouteAdminPrefix, func(r chi.Router) {
		r.Use(middleware.RequireAdmin(cfg.Sessions, http.HandlerFunc(h.Auth.Loading)))
		r.Use(middleware.NoStore)
		mountAdmin(r, h)
	})

	r.NotFound(h.Frontend.NotFound)
}

func mountFrontend(r chi.Router, h *FrontendHandler) {
	r.Get(RouteRoot, h.Home)
	r.Get(RouteAbout, h.About)
	r.Get(RoutePrograms, h.Programs)
	r.Get(RoutePrograms+RouteParamSlug, h.ProgramDetail)
	r.Get(RouteImpact, h.Impact)
	r.Get(RouteGetInvolved, h.GetInvolved)
	r.Get(RouteBlog, h.Blog)
	r.Get(RouteBlog+RouteParamSlug, h.BlogPost)
	r.Get(RouteGallery, h.Gallery)
}

// mountForms registers the public submission forms. New submissions are
// rate limited per client IP. Payment verification is never limited.
func mountForms(r chi.Router, h *FormsHandler, cfg RouteConfig) {
	r.Get(RouteVolunteer, h.Volunteer)
	r.Get(RouteContact, h.Contact)
	r.Get(RouteDonate, h.Donate)
	r.Get(RouteMembership, h.Membership)
	r.Post(RouteDonate+RouteSuffixVerify, h.VerifyDonation)
	r.Post(RouteMembership+RouteSuffixVerify, h.VerifyMembership)

	r.Group(func(r chi.Router) {
		r.Use(middleware.SubmitRateLimit(cfg.SubmitRate, cfg.SubmitBurst))
		r.Post(RouteVolunteer, h.SubmitVolunteer)
		r.Post(RouteContact, h.SubmitContact)
		r.Post(RouteDonate, h.SubmitDonate)
		r.Post(RouteMembership, h.SubmitMembership)
	})
}

// crudRoutes groups the six handlers of an admin collection.
type crudRoutes struct {
	list, newForm, create, editForm, update, delete http.HandlerFunc
}

// mountCRUD registers list, create, edit and delete routes under base.
func mountCRUD(r chi.Router, base string, h crudRoutes) {
	r.Get(base, h.list)
	r.Get(base+RouteSuffixNew, h.newForm)
	r.Post(base, h.create)
	r.Get(base+RouteParamID, h.editForm)
	r.Post(base+RouteParamID, h.update)
	r.Post(base+RouteParamID+RouteSuffixDelete, h.delete)
}

func mountAdmin(r chi.Router, h Handlers) {
	r.Get(RouteRoot, func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, RouteAdminPrefix+RouteDashboard, http.StatusSeeOther)
	})
	r.Get(RouteDashboard, h.Admin.Dashboard)
	r.Post(RouteLogout, h.Auth.Logout)

	if b := h.Blogs; b != nil {
		mountCRUD(r, RouteBlogs, crudRoutes{
			list: b.List, newForm: b.NewForm, create: b.Create,
			editForm: b.EditForm, update: b.Update, delete: b.Delete,
		})
	}
	if p := h.Programs; p != nil {
		mountCRUD(r, RoutePrograms, crudRoutes{
			list: p.List, newForm: p.NewForm, create: p.Create,
			editForm: p.EditForm, update: p.Update, delete: p.Delete,
		})
	}
	if g := h.Gallery; g != nil {
		mountCRUD(r, RouteGallery, crudRoutes{
			list: g.List, newForm: g.NewForm, create: g.Create,
			editForm: g.EditForm, update: g.Update, delete: g.Delete,
		})
	}
	if b := h.Board; b != nil {
		mountCRUD(r, RouteBoard, crudRoutes{
			list: b.List, newForm: b.NewForm, create: b.Create,
			editForm: b.EditForm, update: b.Update, delete: b.Delete,
		})
	}

	if s := h.Submissions; s != nil {
		r.Get(RouteVolunteers, s.Volunteers)
		r.Get(RouteVolunteers+RouteParamID, s.Volunteer)
		r.Post(RouteVolunteers+RouteParamID+RouteSuffixStatus, s.SetVolunteerStatus)
		r.Post(RouteVolunteers+RouteParamID+RouteSuffixDelete, s.DeleteVolunteer)
		r.Get(RouteMemberships, s.Memberships)
		r.Get(RouteMemberships+RouteParamID, s.Membership)
		r.Post(RouteMemberships+RouteParamID+RouteSuffixStatus, s.SetMembershipStatus)
		r.Post(RouteMemberships+RouteParamID+RouteSuffixDelete, s.DeleteMembership)
		r.Get(RouteContacts, s.Contacts)
		r.Get(RouteContacts+RouteParamID, s.Contact)
		r.Post(RouteContacts+RouteParamID+RouteSuffixRead, s.MarkContactRead)
		r.Post(RouteContacts+RouteParamID+RouteSuffixDelete, s.DeleteContact)
	}

	if d := h.Donations; d != nil {
		r.Get(RouteDonations, d.List)
		r.Get(RouteDonations+RouteSuffixExport, d.Export)
		r.Get(RouteDonations+RouteParamID, d.Donation)
		r.Post(RouteDonations+RouteParamID+RouteSuffixDelete, d.Delete)
	}

	// System
	if h.Events != nil {
		r.Get(RouteEvents, h.Events.List)
	}
	if h.Scheduler != nil {
		r.Get(RouteScheduler, h.Scheduler.List)
		r.Post(RouteScheduler+"/{name}/run", h.Scheduler.Trigger)
	}
	if h.Cache != nil {
		r.Get(RouteCache, h.Cache.Stats)
		r.Post(RouteCache+"/clear", h.Cache.Clear)
	}
}
