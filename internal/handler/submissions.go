// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ngo-portal/internal/backend"
	"github.com/olegiv/ngo-portal/internal/logging"
	"github.com/olegiv/ngo-portal/internal/middleware"
	"github.com/olegiv/ngo-portal/internal/model"
	"github.com/olegiv/ngo-portal/internal/render"
	"github.com/olegiv/ngo-portal/internal/session"
	"github.com/olegiv/ngo-portal/internal/uikit"
	"github.com/olegiv/ngo-portal/internal/util"
)

// SubmissionsHandler handles the review screens for volunteer applications,
// memberships and contact messages.
type SubmissionsHandler struct {
	adminBase
}

// NewSubmissionsHandler creates a new SubmissionsHandler.
func NewSubmissionsHandler(renderer *render.Renderer, sessions *session.Store, b *backend.Backend) *SubmissionsHandler {
	return &SubmissionsHandler{adminBase{renderer: renderer, sessions: sessions, backend: b}}
}

// ReviewData is the view model of a submission detail page.
type ReviewData[T any] struct {
	Record    T
	Statuses  []string
	StatusURL string
	DeleteURL string
	BackURL   string
}

// setStatus applies a status transition posted from a detail page.
func (h *SubmissionsHandler) setStatus(w http.ResponseWriter, r *http.Request, allowed []string, listURL, noun string,
	apply func(ctx context.Context, id, status string) error) {
	id := chi.URLParam(r, "id")
	detailURL := listURL + "/" + id
	if !parseFormOrRedirect(w, r, h.renderer, detailURL) {
		return
	}

	status := formValue(r, "status")
	if !slices.Contains(allowed, status) {
		flashError(w, r, h.renderer, detailURL, "Invalid status")
		return
	}
	if err := apply(r.Context(), id, status); err != nil {
		h.fail(w, r, err, detailURL, "Failed to update "+noun)
		return
	}

	slog.Info(noun+" status changed", "id", id, "status", status,
		logging.AttrCategory, model.EventCategoryAPI,
		logging.AttrActor, middleware.GetAdminEmail(r))
	flashSuccess(w, r, h.renderer, detailURL, util.TitleCase(noun)+" marked as "+status)
}

// remove deletes a record and returns to the list.
func (h *SubmissionsHandler) remove(w http.ResponseWriter, r *http.Request, listURL, noun string,
	del func(ctx context.Context, id string) error) {
	id := chi.URLParam(r, "id")
	if err := del(r.Context(), id); err != nil {
		h.fail(w, r, err, listURL, "Failed to delete "+noun)
		return
	}
	slog.Info(noun+" deleted", "id", id, logging.AttrActor, middleware.GetAdminEmail(r))
	flashSuccess(w, r, h.renderer, listURL, util.TitleCase(noun)+" deleted")
}

// =============================================================================
// VOLUNTEERS
// =============================================================================

var volunteerColumns = []uikit.Column{
	{Header: "Name", Render: func(row any) template.HTML {
		v := row.(model.Volunteer)
		return cellLink(redirectAdminVolunteers+"/"+v.ID, v.Name)
	}},
	{Header: "Email", Key: "Email"},
	{Header: "Phone", Key: "Phone"},
	{Header: "Interests", Key: "Interests"},
	{Header: "Availability", Key: "Availability"},
	{Header: "Status", Render: func(row any) template.HTML { return cellBadge(row.(model.Volunteer).Status) }},
	{Header: "Applied", Key: "CreatedAt"},
	{Header: "", Class: "actions", Render: func(row any) template.HTML {
		v := row.(model.Volunteer)
		return cellActions(redirectAdminVolunteers+"/"+v.ID, "View", redirectAdminVolunteers+"/"+v.ID+RouteSuffixDelete,
			"Delete this application?")
	}},
}

// Volunteers handles GET /admin/volunteers. ?status= is passed to the backend.
func (h *SubmissionsHandler) Volunteers(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	items, err := h.api(r).ListVolunteers(r.Context(), status)
	if err != nil && h.fetchFailed(w, r, "volunteer applications", err) {
		return
	}
	newestFirst(items, func(v model.Volunteer) int64 { return v.CreatedAt.UnixNano() })

	view := buildList(r, items, volunteerColumns, redirectAdminVolunteers, "No volunteer applications.")
	view.Status = status
	view.Statuses = model.VolunteerStatuses
	h.page(w, r, "admin/volunteers", "Volunteers", view)
}

// Volunteer handles GET /admin/volunteers/{id}.
func (h *SubmissionsHandler) Volunteer(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v, err := h.api(r).GetVolunteer(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, redirectAdminVolunteers, "Volunteer application not found")
		return
	}
	h.page(w, r, "admin/volunteer", v.Name, ReviewData[model.Volunteer]{
		Record:    v,
		Statuses:  model.VolunteerStatuses,
		StatusURL: redirectAdminVolunteers + "/" + id + RouteSuffixStatus,
		DeleteURL: redirectAdminVolunteers + "/" + id + RouteSuffixDelete,
		BackURL:   redirectAdminVolunteers,
	})
}

// SetVolunteerStatus handles POST /admin/volunteers/{id}/status.
func (h *SubmissionsHandler) SetVolunteerStatus(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, model.VolunteerStatuses, redirectAdminVolunteers, "application", h.api(r).SetVolunteerStatus)
}

// DeleteVolunteer handles POST /admin/volunteers/{id}/delete.
func (h *SubmissionsHandler) DeleteVolunteer(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, redirectAdminVolunteers, "application", h.api(r).DeleteVolunteer)
}

// =============================================================================
// MEMBERSHIPS
// =============================================================================

var membershipColumns = []uikit.Column{
	{Header: "Name", Render: func(row any) template.HTML {
		m := row.(model.Membership)
		return cellLink(redirectAdminMemberships+"/"+m.ID, m.Name)
	}},
	{Header: "Email", Key: "Email"},
	{Header: "Plan", Render: func(row any) template.HTML {
		key := row.(model.Membership).Plan
		if plan, ok := model.FindPlan(key); ok {
			return template.HTML(template.HTMLEscapeString(plan.Name))
		}
		return template.HTML(template.HTMLEscapeString(key))
	}},
	{Header: "Amount", Render: func(row any) template.HTML {
		return template.HTML(template.HTMLEscapeString(util.FormatAmount(row.(model.Membership).Amount, "")))
	}},
	{Header: "Payment", Render: func(row any) template.HTML { return cellBadge(row.(model.Membership).PaymentStatus) }},
	{Header: "Status", Render: func(row any) template.HTML { return cellBadge(row.(model.Membership).Status) }},
	{Header: "Joined", Key: "CreatedAt"},
	{Header: "", Class: "actions", Render: func(row any) template.HTML {
		m := row.(model.Membership)
		return cellActions(redirectAdminMemberships+"/"+m.ID, "View", redirectAdminMemberships+"/"+m.ID+RouteSuffixDelete,
			"Delete this membership?")
	}},
}

// Memberships handles GET /admin/memberships. ?status= is passed to the backend.
func (h *SubmissionsHandler) Memberships(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	items, err := h.api(r).ListMemberships(r.Context(), status)
	if err != nil && h.fetchFailed(w, r, "memberships", err) {
		return
	}
	newestFirst(items, func(m model.Membership) int64 { return m.CreatedAt.UnixNano() })

	view := buildList(r, items, membershipColumns, redirectAdminMemberships, "No memberships yet.")
	view.Status = status
	view.Statuses = model.MembershipStatuses
	h.page(w, r, "admin/memberships", "Memberships", view)
}

// Membership handles GET /admin/memberships/{id}.
func (h *SubmissionsHandler) Membership(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := h.api(r).GetMembership(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, redirectAdminMemberships, "Membership not found")
		return
	}
	h.page(w, r, "admin/membership", m.Name, ReviewData[model.Membership]{
		Record:    m,
		Statuses:  model.MembershipStatuses,
		StatusURL: redirectAdminMemberships + "/" + id + RouteSuffixStatus,
		DeleteURL: redirectAdminMemberships + "/" + id + RouteSuffixDelete,
		BackURL:   redirectAdminMemberships,
	})
}

// SetMembershipStatus handles POST /admin/memberships/{id}/status.
func (h *SubmissionsHandler) SetMembershipStatus(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, model.MembershipStatuses, redirectAdminMemberships, "membership", h.api(r).SetMembershipStatus)
}

// DeleteMembership handles POST /admin/memberships/{id}/delete.
func (h *SubmissionsHandler) DeleteMembership(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, redirectAdminMemberships, "membership", h.api(r).DeleteMembership)
}

// =============================================================================
// CONTACTS
// =============================================================================

var contactColumns = []uikit.Column{
	{Header: "", Class: "narrow", Render: func(row any) template.HTML {
		if row.(model.Contact).Read {
			return ""
		}
		return `<span class="badge badge-info">New</span>`
	}},
	{Header: "Name", Render: func(row any) template.HTML {
		c := row.(model.Contact)
		return cellLink(redirectAdminContacts+"/"+c.ID, c.Name)
	}},
	{Header: "Email", Key: "Email"},
	{Header: "Subject", Render: func(row any) template.HTML {
		return template.HTML(template.HTMLEscapeString(uikit.Truncate(row.(model.Contact).Subject, 60)))
	}},
	{Header: "Received", Key: "CreatedAt"},
	{Header: "", Class: "actions", Render: func(row any) template.HTML {
		c := row.(model.Contact)
		return cellActions(redirectAdminContacts+"/"+c.ID, "Open", redirectAdminContacts+"/"+c.ID+RouteSuffixDelete,
			"Delete this message?")
	}},
}

// Contacts handles GET /admin/contacts.
func (h *SubmissionsHandler) Contacts(w http.ResponseWriter, r *http.Request) {
	items, err := h.api(r).ListContacts(r.Context())
	if err != nil && h.fetchFailed(w, r, "messages", err) {
		return
	}
	newestFirst(items, func(c model.Contact) int64 { return c.CreatedAt.UnixNano() })

	view := buildList(r, items, contactColumns, redirectAdminContacts, "No messages yet.")
	h.page(w, r, "admin/contacts", "Messages", view)
}

// Contact handles GET /admin/contacts/{id}. Opening an unread message marks
// it read; a failure to do so is logged and the message is still shown.
func (h *SubmissionsHandler) Contact(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	api := h.api(r)
	c, err := api.GetContact(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, redirectAdminContacts, "Message not found")
		return
	}
	if !c.Read {
		if err := api.MarkContactRead(r.Context(), id); err != nil {
			if canceled(r, err) {
				return
			}
			slog.Warn("failed to mark message read", "id", id, "error", err)
		} else {
			c.Read = true
		}
	}

	h.page(w, r, "admin/contact", c.Subject, ReviewData[model.Contact]{
		Record:    c,
		DeleteURL: redirectAdminContacts + "/" + id + RouteSuffixDelete,
		BackURL:   redirectAdminContacts,
	})
}

// MarkContactRead handles POST /admin/contacts/{id}/read.
func (h *SubmissionsHandler) MarkContactRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.api(r).MarkContactRead(r.Context(), id); err != nil {
		h.fail(w, r, err, redirectAdminContacts, "Failed to update message")
		return
	}
	flashSuccess(w, r, h.renderer, redirectAdminContacts, "Message marked as read")
}

// DeleteContact handles POST /admin/contacts/{id}/delete.
func (h *SubmissionsHandler) DeleteContact(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, redirectAdminContacts, "message", h.api(r).DeleteContact)
}

// newestFirst sorts records by a creation timestamp, newest first.
func newestFirst[T any](items []T, created func(T) int64) {
	slices.SortStableFunc(items, func(a, b T) int {
		ca, cb := created(a), created(b)
		switch {
		case ca > cb:
			return -1
		case ca < cb:
			return 1
		default:
			return 0
		}
	})
}
