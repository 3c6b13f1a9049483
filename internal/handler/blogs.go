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
	"github.com/olegiv/ngo-portal/internal/richtext"
	"github.com/olegiv/ngo-portal/internal/session"
	"github.com/olegiv/ngo-portal/internal/uikit"
	"github.com/olegiv/ngo-portal/internal/util"
)

// BlogCategories are the categories offered in the blog editor.
var BlogCategories = []string{"News", "Stories", "Events", "Education", "Healthcare", "Environment"}

// BlogsHandler handles the admin blog screens.
type BlogsHandler struct {
	adminBase
	richtext *richtext.Renderer
}

// NewBlogsHandler creates a new BlogsHandler.
func NewBlogsHandler(renderer *render.Renderer, sessions *session.Store, b *backend.Backend, rt *richtext.Renderer) *BlogsHandler {
	return &BlogsHandler{
		adminBase: adminBase{renderer: renderer, sessions: sessions, backend: b},
		richtext:  rt,
	}
}

type blogOptions struct {
	Categories []string
	Statuses   []string
	Formats    []string
	Preview    template.HTML
}

var blogColumns = []uikit.Column{
	{Header: "Title", Render: func(row any) template.HTML {
		p := row.(model.BlogPost)
		return cellLink(redirectAdminBlogs+"/"+p.ID, p.Title)
	}},
	{Header: "Category", Key: "Category"},
	{Header: "Author", Key: "Author"},
	{Header: "Status", Render: func(row any) template.HTML { return cellBadge(row.(model.BlogPost).Status) }},
	{Header: "Date", Render: func(row any) template.HTML {
		return template.HTML(uikit.FormatDate(row.(model.BlogPost).DisplayDate()))
	}},
	{Header: "", Class: "actions", Render: func(row any) template.HTML {
		p := row.(model.BlogPost)
		return cellActions(redirectAdminBlogs+"/"+p.ID, "Edit", redirectAdminBlogs+"/"+p.ID+RouteSuffixDelete,
			"Delete this post? This cannot be undone.")
	}},
}

// List handles GET /admin/blogs. ?status= is passed to the backend.
func (h *BlogsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	posts, err := h.api(r).ListBlogs(r.Context(), backend.BlogQuery{Status: status})
	if err != nil && h.fetchFailed(w, r, "blog posts", err) {
		return
	}
	sortPostsNewestFirst(posts)

	view := buildList(r, posts, blogColumns, redirectAdminBlogs, "No blog posts yet.")
	view.Status = status
	view.Statuses = []string{model.StatusDraft, model.StatusPublished}
	view.NewURL = redirectAdminBlogs + RouteSuffixNew
	h.page(w, r, "admin/blogs", "Blog Posts", view)
}

func (h *BlogsHandler) options(preview template.HTML) blogOptions {
	return blogOptions{
		Categories: BlogCategories,
		Statuses:   []string{model.StatusDraft, model.StatusPublished},
		Formats:    []string{model.FormatMarkdown, model.FormatHTML},
		Preview:    preview,
	}
}

// NewForm handles GET /admin/blogs/new.
func (h *BlogsHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.page(w, r, "admin/blog_form", editorTitle("", "Post"), Editor[model.BlogDraft]{
		Draft: model.BlogDraft{
			Status:        model.StatusDraft,
			ContentFormat: model.FormatMarkdown,
			Author:        adminName(r),
		},
		Action:  redirectAdminBlogs,
		Options: h.options(""),
	})
}

// EditForm handles GET /admin/blogs/{id}.
func (h *BlogsHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	post, err := h.api(r).GetBlog(r.Context(), id)
	if err != nil {
		h.fail(w, r, err, redirectAdminBlogs, "Blog post not found")
		return
	}

	format := post.ContentFormat
	if format == "" {
		format = model.FormatHTML
	}
	preview, err := h.richtext.Render(post.Content, format)
	if err != nil {
		slog.Warn("failed to render blog preview", "id", id, "error", err)
	}

	h.page(w, r, "admin/blog_form", editorTitle(id, "Post"), Editor[model.BlogDraft]{
		ID: id,
		Draft: model.BlogDraft{
			Title:         post.Title,
			Slug:          post.Slug,
			Excerpt:       post.Excerpt,
			Content:       post.Content,
			ContentFormat: format,
			Category:      post.Category,
			Author:        post.Author,
			CoverImage:    post.CoverImage,
			Tags:          post.Tags,
			Status:        post.Status,
		},
		Action:  redirectAdminBlogs + "/" + id,
		Options: h.options(preview),
	})
}

func bindBlogDraft(r *http.Request) model.BlogDraft {
	d := model.BlogDraft{
		Title:         formValue(r, "title"),
		Excerpt:       formValue(r, "excerpt"),
		Content:       r.FormValue("content"),
		ContentFormat: formValue(r, "contentFormat"),
		Category:      formValue(r, "category"),
		Author:        formValue(r, "author"),
		CoverImage:    formValue(r, "coverImage"),
		Tags:          formList(r, "tags"),
		Status:        formValue(r, "status"),
	}
	d.Slug = util.SlugOrDefault(formValue(r, "slug"), d.Title)
	return d
}

// Create handles POST /admin/blogs.
func (h *BlogsHandler) Create(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, "")
}

// Update handles POST /admin/blogs/{id}.
func (h *BlogsHandler) Update(w http.ResponseWriter, r *http.Request) {
	h.save(w, r, chi.URLParam(r, "id"))
}

func (h *BlogsHandler) save(w http.ResponseWriter, r *http.Request, id string) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminBlogs) {
		return
	}

	draft := bindBlogDraft(r)
	editor := Editor[model.BlogDraft]{ID: id, Draft: draft, Options: h.options("")}
	editor.Action = redirectAdminBlogs
	if id != "" {
		editor.Action += "/" + id
	}
	title := editorTitle(id, "Post")

	if editor.Errors = draft.Validate(); editor.HasErrors() {
		h.invalid(w, r, "admin/blog_form", title, editor)
		return
	}

	var (
		post model.BlogPost
		err  error
	)
	if id == "" {
		post, err = h.api(r).CreateBlog(r.Context(), draft)
	} else {
		post, err = h.api(r).UpdateBlog(r.Context(), id, draft)
	}
	if err != nil {
		slog.Error("failed to save blog post", "id", id, "error", err)
		h.editorError(w, r, "admin/blog_form", title, editor, err, "Failed to save blog post")
		return
	}

	slog.Info("blog post saved", "id", post.ID, "slug", post.Slug,
		logging.AttrCategory, model.EventCategoryAPI,
		logging.AttrActor, middleware.GetAdminEmail(r))
	flashSuccess(w, r, h.renderer, redirectAdminBlogs, "Blog post saved")
}

// Delete handles POST /admin/blogs/{id}/delete.
func (h *BlogsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.api(r).DeleteBlog(r.Context(), id); err != nil {
		h.fail(w, r, err, redirectAdminBlogs, "Failed to delete blog post")
		return
	}
	slog.Info("blog post deleted", "id", id, logging.AttrActor, middleware.GetAdminEmail(r))
	flashSuccess(w, r, h.renderer, redirectAdminBlogs, "Blog post deleted")
}

// adminName returns the signed-in admin's display name.
func adminName(r *http.Request) string {
	if admin := middleware.GetAdmin(r); admin != nil {
		return admin.Name
	}
	return ""
}
