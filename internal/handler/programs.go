// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"html/template"
	"log/slog"
	"net/http"

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

// ProgramCategories are the categories offered in the program editor.
var ProgramCategories = []string{"Education", "Healthcare", "Environment", "Women Empowerment", "Community Development"}

// ProgramsHandler handles the admin program screens.
type ProgramsHandler struct {
	adminBase
}

// NewProgramsHandler creates a new ProgramsHandler.
func NewProgramsHandler(renderer *render.Renderer, sessions *session.Store, b *backend.Backend) *ProgramsHandler {
	return &ProgramsHandler{adminBase{renderer: renderer, sessions: sessions, backend: b}}
}

type programOptions struct {
	Categories []string
	Statuses   []string
}

var programChoices = programOptions{
	Categories: ProgramCategories,
	Statuses:   []string{model.StatusPublished, model.StatusDraft},
}

var programColumns = []uikit.Column{
	{Header: "#", Key: "Order", Class: "narrow"},
	{Header: "Title", Render: func(row any) template.HTML {
		p := row.(model.Program)
		return cellLink(redirectAdminPrograms+"/"+p.ID, p.Title)
	}},
	{Header: "Category", Key: "Category"},
	{Header: "Beneficiaries", Render: func(row any) template.HTML {
		return template.HTML(util.FormatCount(row.(model.Program).Beneficiaries))
	}},
	{Header: "Status", Render: func(row any) template.HTML {
		status := row.(model.Program).Status
		if status == "" {
			status = model.StatusPublished
		}
		return cellBadge(status)
	}},
	{Header: "", Class: "actions", Render: func(row any) template.HTML {
		p := row.(model.Program)
		return cellActions(redirectAdminPrograms+"/"+p.ID, "Edit", redirectAdminPrograms+"/"+p.ID+RouteSuffixDelete,
			"Delete this program?")
	}},
}

// List handles GET /admin/programs.
func (h *ProgramsHandler) List(w http.ResponseWriter, r *http.Request) {
	programs, err := h.api(r).ListPrograms(r.Context())
	if err != nil && h.fetchFailed(w, r, "programs", err) {
		return
	}
	sortPrograms(programs)

	view := buildList(r, programs, programColumns, redirectAdminPrograms, "No programs yet.")
	view.NewURL = redirectAdminPrograms + RouteSuffixNew
	h.page(w, r, "admin/programs", "Programs", view)
}

// NewForm handles GET /admin/programs/new.
func (h *ProgramsHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "admin/program_form", editorTitle("", "Program"), Editor[model.ProgramDraft]{
		Draft:   model.ProgramDraft{Status: model.StatusPublished},
		Action:  redirectAdminPrograms,
		Options: programChoices,
	})
}

// EditForm handles GET /admin/programs/{id}.
func (h *ProgramsHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := h.api(r).GetProgram(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, redirectAdminPrograms, "Program not found")
		return
	}

	h.page(w, r, "admin/program_form", editorTitle(id, "Program"), Editor[model.ProgramDraft]{
		ID: id,
		Draft: model.ProgramDraft{
			Title:         p.Title,
			Slug:          p.Slug,
			Summary:       p.Summary,
			Description:   p.Description,
			Category:      p.Category,
			Image:         p.Image,
			Images:        p.Images,
			Beneficiaries: p.Beneficiaries,
			Status:        p.Status,
			Order:         p.Order,
		},
		Action:  redirectAdminPrograms + "/" + id,
		Options: programChoices,
	})
}

// Create handles POST /admin/programs.
func (h *ProgramsHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "")
}

// Update handles POST /admin/programs/{id}.
func (h *ProgramsHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, chi.URLParam(r, "id"))
}

func (h *ProgramsHandler) save(w http.ResponseWriter, r *http.Request, id string) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminPrograms) {
		return
	}

	draft := model.ProgramDraft{
		Title:         formValue(r, "title"),
		Summary:       formValue(r, "summary"),
		Description:   r.FormValue("description"),
		Category:      formValue(r, "category"),
		Image:         formValue(r, "image"),
		Images:        formList(r, "images"),
		Beneficiaries: formInt(r, "beneficiaries"),
		Status:        formValue(r, "status"),
		Order:         formInt(r, "order"),
	}
	draft.Slug = util.SlugOrDefault(formValue(r, "slug"), draft.Title)

	editor := Editor[model.ProgramDraft]{ID: id, Draft: draft, Action: redirectAdminPrograms, Options: programChoices}
	if id != "" {
		editor.Action += "/" + id
	}
	title := editorTitle(id, "Program")

	if editor.Errors = draft.Validate(); editor.HasErrors() {
		h.invalid(w, r, "admin/program_form", title, editor)
		return
	}

	var err error
	if id == "" {
		_, err = h.api(r).CreateProgram(r.Context(), draft)
	} else {
		_, err = h.api(r).UpdateProgram(r.Context(), id, draft)
	}
	if err != nil {
		slog.Error("failed to save program", "id", id, "error", err)
		h.editorError(w, r, "admin/program_form", title, editor, err, "Failed to save program")
		return
	}

	slog.Info("program saved", "id", id, "slug", draft.Slug,
		logging.AttrCategory, model.EventCategoryAPI,
		logging.AttrActor, middleware.GetAdminEmail(r))
	flashSuccess(w, r, h.renderer, redirectAdminPrograms, "Program saved")
}

// Delete handles POST /admin/programs/{id}/delete.
func (h *ProgramsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.api(r).DeleteProgram(r.Context(), id); err != nil {
		h.fail(w, r, err, redirectAdminPrograms, "Failed to delete program")
		return
	}
	slog.Info("program deleted", "id", id, logging.AttrActor, middleware.GetAdminEmail(r))
	flashSuccess(w, r, h.renderer, redirectAdminPrograms, "Program deleted")
}
