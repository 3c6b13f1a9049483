// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/ngo-portal/internal/apiclient"
	"github.com/olegiv/ngo-portal/internal/backend"
	"github.com/olegiv/ngo-portal/internal/imaging"
	"github.com/olegiv/ngo-portal/internal/logging"
	"github.com/olegiv/ngo-portal/internal/middleware"
	"github.com/olegiv/ngo-portal/internal/model"
	"github.com/olegiv/ngo-portal/internal/render"
	"github.com/olegiv/ngo-portal/internal/session"
	"github.com/olegiv/ngo-portal/internal/uikit"
)

// maxUploadMemory is how much of a multipart upload is kept in memory.
const maxUploadMemory = 12 << 20

// GalleryCategories are the categories offered in the gallery editor.
var GalleryCategories = []string{"Education", "Healthcare", "Environment", "Events", "Community"}

// GalleryHandler handles the admin gallery screens.
type GalleryHandler struct {
	adminBase
	images *imaging.Processor
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(renderer *render.Renderer, sessions *session.Store, b *backend.Backend, images *imaging.Processor) *GalleryHandler {
	if images == nil {
		images = imaging.NewProcessor()
	}
	return &GalleryHandler{
		adminBase: adminBase{renderer: renderer, sessions: sessions, backend: b},
		images:    images,
	}
}

// galleryEditor adds the current image to the shared editor model.
type galleryEditor struct {
	Editor[model.GalleryDraft]
	ImageURL string
}

type galleryOptions struct {
	Categories []string
}

var galleryColumns = []uikit.Column{
	{Header: "", Class: "thumb", Render: func(row any) template.HTML {
		g := row.(model.GalleryItem)
		return template.HTML(`<img src="` + template.HTMLEscapeString(g.Thumb()) + `" alt="` +
			template.HTMLEscapeString(g.Title) + `" loading="lazy" width="64" height="48">`)
	}},
	{Header: "Title", Render: func(row any) template.HTML {
		g := row.(model.GalleryItem)
		return cellLink(redirectAdminGallery+"/"+g.ID, g.Title)
	}},
	{Header: "Category", Key: "Category"},
	{Header: "Taken", Key: "TakenAt"},
	{Header: "Added", Key: "CreatedAt"},
	{Header: "", Class: "actions", Render: func(row any) template.HTML {
		g := row.(model.GalleryItem)
		return cellActions(redirectAdminGallery+"/"+g.ID, "Edit", redirectAdminGallery+"/"+g.ID+RouteSuffixDelete,
			"Delete this photo?")
	}},
}

// GalleryListFilter is the category filter of the admin gallery list.
type GalleryListFilter struct {
	uikit.Filter
	Categories []string
}

// List handles GET /admin/gallery. ?category= narrows the list.
func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.api(r).ListGallery(r.Context())
	if err != nil && h.fetchFailed(w, r, "gallery", err) {
		return
	}

	filter := uikit.ParseFilter(r)
	matching := uikit.FilterList(items, filter,
		func(g model.GalleryItem) string { return g.Category },
		func(g model.GalleryItem) []string { return []string{g.Title, g.Description} })

	view := buildList(r, matching, galleryColumns, redirectAdminGallery, "No photos yet.")
	view.NewURL = redirectAdminGallery + RouteSuffixNew
	view.Filter = GalleryListFilter{
		Filter:     filter,
		Categories: uikit.Categories(items, func(g model.GalleryItem) string { return g.Category }),
	}
	h.page(w, r, "admin/gallery", "Gallery", view)
}

// NewForm handles GET /admin/gallery/new.
func (h *GalleryHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "admin/gallery_form", editorTitle("", "Photo"), galleryEditor{
		Editor: Editor[model.GalleryDraft]{
			Action:  redirectAdminGallery,
			Options: galleryOptions{Categories: GalleryCategories},
		},
	})
}

// EditForm handles GET /admin/gallery/{id}. The backend has no single-item
// endpoint, so the item is looked up in the listing.
func (h *GalleryHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	items, err := h.api(r).ListGallery(r.Context())
	if err != nil {
		h.fail(w, r, err, redirectAdminGallery, "Failed to load gallery")
		return
	}

	for _, g := range items {
		if g.ID != id {
			continue
		}
		draft := model.GalleryDraft{
			Title:       g.Title,
			Description: g.Description,
			Category:    g.Category,
		}
		if !g.TakenAt.IsZero() {
			draft.TakenAt = g.TakenAt.Format(time.DateOnly)
		}
		h.page(w, r, "admin/gallery_form", editorTitle(id, "Photo"), galleryEditor{
			Editor: Editor[model.GalleryDraft]{
				ID:      id,
				Draft:   draft,
				Action:  redirectAdminGallery + "/" + id,
				Options: galleryOptions{Categories: GalleryCategories},
			},
			ImageURL: g.ImageURL,
		})
		return
	}
	flashError(w, r, h.renderer, redirectAdminGallery, "Photo not found")
}

// Create handles POST /admin/gallery.
func (h *GalleryHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "")
}

// Update handles POST /admin/gallery/{id}. The image is optional on update.
func (h *GalleryHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, chi.URLParam(r, "id"))
}

func (h *GalleryHandler) save(w http.ResponseWriter, r *http.Request, id string) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		flashError(w, r, h.renderer, redirectAdminGallery, "Invalid form data")
		return
	}

	draft := model.GalleryDraft{
		Title:       formValue(r, "title"),
		Description: formValue(r, "description"),
		Category:    formValue(r, "category"),
		TakenAt:     formValue(r, "takenAt"),
	}
	editor := galleryEditor{Editor: Editor[model.GalleryDraft]{
		ID:      id,
		Draft:   draft,
		Action:  redirectAdminGallery,
		Options: galleryOptions{Categories: GalleryCategories},
	}}
	if id != "" {
		editor.Action += "/" + id
	}
	title := editorTitle(id, "Photo")

	editor.Errors = draft.Validate()
	image, err := h.readImage(r)
	switch {
	case err != nil:
		editor.Errors["image"] = imageError(err)
	case image == nil && id == "":
		editor.Errors["image"] = "Choose a photo to upload"
	}
	if editor.HasErrors() {
		h.invalid(w, r, "admin/gallery_form", title, editor)
		return
	}

	var part *apiclient.FilePart
	if image != nil {
		part = &apiclient.FilePart{
			Field:       "image",
			Filename:    image.Filename,
			ContentType: image.MimeType,
			Data:        image.Data,
		}
		if draft.TakenAt == "" && !image.TakenAt.IsZero() {
			draft.TakenAt = image.TakenAt.Format(time.DateOnly)
		}
	}

	if id == "" {
		_, err = h.api(r).CreateGalleryItem(r.Context(), draft, part)
	} else {
		_, err = h.api(r).UpdateGalleryItem(r.Context(), id, draft, part)
	}
	if err != nil {
		slog.Error("failed to save gallery item", "id", id, "error", err)
		h.editorError(w, r, "admin/gallery_form", title, editor, err, "Failed to save photo")
		return
	}

	attrs := []any{"id", id, logging.AttrCategory, model.EventCategoryAPI, logging.AttrActor, middleware.GetAdminEmail(r)}
	if image != nil {
		attrs = append(attrs, "bytes", len(image.Data), "width", image.Width, "height", image.Height)
	}
	slog.Info("gallery item saved", attrs...)
	flashSuccess(w, r, h.renderer, redirectAdminGallery, "Photo saved")
}

// readImage processes the uploaded image, if any. It returns nil, nil when
// no file was sent.
func (h *GalleryHandler) readImage(r *http.Request) (*imaging.Upload, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	if header.Size == 0 {
		return nil, nil
	}
	return h.images.Prepare(file, header.Filename)
}

func imageError(err error) string {
	switch {
	case errors.Is(err, imaging.ErrTooLarge):
		return "The photo is larger than 10 MB"
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		return "Upload a JPEG, PNG, GIF or WebP image"
	default:
		return "The photo could not be read"
	}
}

// Delete handles POST /admin/gallery/{id}/delete.
func (h *GalleryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.api(r).DeleteGalleryItem(r.Context(), id); err != nil {
		h.fail(w, r, err, redirectAdminGallery, "Failed to delete photo")
		return
	}
	slog.Info("gallery item deleted", "id", id, logging.AttrActor, middleware.GetAdminEmail(r))
	flashSuccess(w, r, h.renderer, redirectAdminGallery, "Photo deleted")
}
