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
)

// BoardHandler handles the admin board member screens.
type BoardHandler struct {
	adminBase
}

// NewBoardHandler creates a new BoardHandler.
func NewBoardHandler(renderer *render.Renderer, sessions *session.Store, b *backend.Backend) *BoardHandler {
	return &BoardHandler{adminBase{renderer: renderer, sessions: sessions, backend: b}}
}

var boardColumns = []uikit.Column{
	{Header: "#", Key: "Order", Class: "narrow"},
	{Header: "Name", Render: func(row any) template.HTML {
		m := row.(model.BoardMember)
		return cellLink(redirectAdminBoard+"/"+m.ID, m.Name)
	}},
	{Header: "Designation", Key: "Designation"},
	{Header: "Email", Key: "Email"},
	{Header: "", Class: "actions", Render: func(row any) template.HTML {
		m := row.(model.BoardMember)
		return cellActions(redirectAdminBoard+"/"+m.ID, "Edit", redirectAdminBoard+"/"+m.ID+RouteSuffixDelete,
			"Remove this board member?")
	}},
}

// List handles GET /admin/board.
func (h *BoardHandler) List(w http.ResponseWriter, r *http.Request) {
	members, err := h.api(r).ListBoardMembers(r.Context())
	if err != nil && h.fetchFailed(w, r, "board members", err) {
		return
	}
	sortBoard(members)

	view := buildList(r, members, boardColumns, redirectAdminBoard, "No board members yet.")
	view.NewURL = redirectAdminBoard + RouteSuffixNew
	h.page(w, r, "admin/board", "Board Members", view)
}

// NewForm handles GET /admin/board/new.
func (h *BoardHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "admin/board_form", editorTitle("", "Board Member"), Editor[model.BoardMemberDraft]{
		Action: redirectAdminBoard,
	})
}

// EditForm handles GET /admin/board/{id}.
func (h *BoardHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := h.api(r).GetBoardMember(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, redirectAdminBoard, "Board member not found")
		return
	}

	h.page(w, r, "admin/board_form", editorTitle(id, "Board Member"), Editor[model.BoardMemberDraft]{
		ID: id,
		Draft: model.BoardMemberDraft{
			Name:        m.Name,
			Designation: m.Designation,
			Bio:         m.Bio,
			Photo:       m.Photo,
			Email:       m.Email,
			LinkedIn:    m.LinkedIn,
			Order:       m.Order,
		},
		Action: redirectAdminBoard + "/" + id,
	})
}

// Create handles POST /admin/board.
func (h *BoardHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "")
}

// Update handles POST /admin/board/{id}.
func (h *BoardHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, chi.URLParam(r, "id"))
}

func (h *BoardHandler) save(w http.ResponseWriter, r *http.Request, id string) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminBoard) {
		return
	}

	draft := model.BoardMemberDraft{
		Name:        formValue(r, "name"),
		Designation: formValue(r, "designation"),
		Bio:         formValue(r, "bio"),
		Photo:       formValue(r, "photo"),
		Email:       formValue(r, "email"),
		LinkedIn:    formValue(r, "linkedin"),
		Order:       formInt(r, "order"),
	}
	editor := Editor[model.BoardMemberDraft]{ID: id, Draft: draft, Action: redirectAdminBoard}
	if id != "" {
		editor.Action += "/" + id
	}
	title := editorTitle(id, "Board Member")

	if editor.Errors = draft.Validate(); editor.HasErrors() {
		h.invalid(w, r, "admin/board_form", title, editor)
		return
	}

	var err error
	if id == "" {
		_, err = h.api(r).CreateBoardMember(r.Context(), draft)
	} else {
		_, err = h.api(r).UpdateBoardMember(r.Context(), id, draft)
	}
	if err != nil {
		slog.Error("failed to save board member", "id", id, "error", err)
		h.editorError(w, r, "admin/board_form", title, editor, err, "Failed to save board member")
		return
	}

	slog.Info("board member saved", "id", id,
		logging.AttrCategory, model.EventCategoryAPI,
		logging.AttrActor, middleware.GetAdminEmail(r))
	flashSuccess(w, r, h.renderer, redirectAdminBoard, "Board member saved")
}

// Delete handles POST /admin/board/{id}/delete.
func (h *BoardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.api(r).DeleteBoardMember(r.Context(), id); err != nil {
		h.fail(w, r, err, redirectAdminBoard, "Failed to delete board member")
		return
	}
	slog.Info("board member deleted", "id", id, logging.AttrActor, middleware.GetAdminEmail(r))
	flashSuccess(w, r, h.renderer, redirectAdminBoard, "Board member removed")
}
