// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the root path.
	RouteRoot = "/"
	// RouteSuffixNew is the suffix for "new" routes.
	RouteSuffixNew = "/new"
	// RouteSuffixDelete is the suffix for delete routes.
	RouteSuffixDelete = "/delete"
	// RouteSuffixStatus is the suffix for status transition routes.
	RouteSuffixStatus = "/status"
	// RouteSuffixRead is the suffix for mark-as-read routes.
	RouteSuffixRead = "/read"
	// RouteSuffixExport is the suffix for CSV export routes.
	RouteSuffixExport = "/export"
	// RouteSuffixVerify is the suffix for payment verification routes.
	RouteSuffixVerify = "/verify"

	// RouteParamID is the ID parameter pattern.
	RouteParamID = "/{id}"
	// RouteParamSlug is the slug parameter pattern.
	RouteParamSlug = "/{slug}"

	RouteLogin    = "/login"
	RouteLogout   = "/logout"
	RouteRegister = "/register"

	RouteAbout       = "/about"
	RoutePrograms    = "/programs"
	RouteImpact      = "/impact"
	RouteGetInvolved = "/get-involved"
	RouteDonate      = "/donate"
	RouteMembership  = "/membership"
	RouteVolunteer   = "/volunteer"
	RouteBlog        = "/blog"
	RouteGallery     = "/gallery"
	RouteContact     = "/contact"
	RouteDashboard   = "/dashboard"
	RouteBlogs       = "/blogs"
	RouteBoard       = "/board"
	RouteVolunteers  = "/volunteers"
	RouteMemberships = "/memberships"
	RouteContacts    = "/contacts"
	RouteDonations   = "/donations"
	RouteEvents      = "/events"
	RouteScheduler   = "/scheduler"
	RouteCache       = "/cache"
	RouteHealth      = "/health"
	RouteHealthLive  = "/health/live"
	RouteHealthReady = "/health/ready"
	RouteStatic      = "/static/dist/*"
	RouteRobots      = "/robots.txt"
	RouteSitemap     = "/sitemap.xml"
	RouteAdminPrefix = "/admin"
	RouteAdminLogin  = "/admin/login"
	RouteAdminLogout = "/admin/logout"
)

// Redirect targets.
const (
	redirectAdmin            = "/admin"
	redirectAdminDashboard   = "/admin/dashboard"
	redirectAdminBlogs       = "/admin/blogs"
	redirectAdminPrograms    = "/admin/programs"
	redirectAdminGallery     = "/admin/gallery"
	redirectAdminBoard       = "/admin/board"
	redirectAdminVolunteers  = "/admin/volunteers"
	redirectAdminMemberships = "/admin/memberships"
	redirectAdminContacts    = "/admin/contacts"
	redirectAdminDonations   = "/admin/donations"
	redirectAdminEvents      = "/admin/events"
	redirectAdminScheduler   = "/admin/scheduler"
	redirectAdminCache       = "/admin/cache"
)

// List sizes.
const (
	// BlogPostsPerPage is the number of post cards on one blog page.
	BlogPostsPerPage = 9
	// GalleryPerPage is how many photos each "load more" step adds.
	GalleryPerPage = 12
	// RelatedPostsLimit caps the related posts under a blog post.
	RelatedPostsLimit = 3
	// HomeHighlights is how many programs and posts the home page features.
	HomeHighlights = 3
	// AdminPerPage is the number of rows on one admin list page.
	AdminPerPage = 20
)
