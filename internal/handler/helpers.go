// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"html/template"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/olegiv/ngo-portal/internal/apiclient"
	"github.com/olegiv/ngo-portal/internal/backend"
	"github.com/olegiv/ngo-portal/internal/model"
	"github.com/olegiv/ngo-portal/internal/render"
	"github.com/olegiv/ngo-portal/internal/session"
	"github.com/olegiv/ngo-portal/internal/uikit"
	"github.com/olegiv/ngo-portal/internal/util"
)

// =============================================================================
// FORM BINDING HELPERS
// =============================================================================

// formValue returns the trimmed form field.
func formValue(r *http.Request, key string) string {
	return strings.TrimSpace(r.FormValue(key))
}

// formInt parses an integer field. Blank or invalid input yields 0.
func formInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(formValue(r, key))
	if err != nil {
		return 0
	}
	return n
}

// formFloat parses a decimal field. Blank or invalid input yields 0.
func formFloat(r *http.Request, key string) float64 {
	f, err := strconv.ParseFloat(formValue(r, key), 64)
	if err != nil {
		return 0
	}
	return f
}

// formList collects a multi-valued field. Each value may itself be a comma
// separated list; blanks and duplicates are dropped.
func formList(r *http.Request, key string) []string {
	if r.Form == nil {
		_ = r.ParseForm()
	}
	var out []string
	seen := make(map[string]bool)
	for _, raw := range r.Form[key] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" || seen[part] {
				continue
			}
			seen[part] = true
			out = append(out, part)
		}
	}
	return out
}

// formChecked reports whether a checkbox was ticked.
func formChecked(r *http.Request, key string) bool {
	switch formValue(r, key) {
	case "on", "1", "true", "yes":
		return true
	}
	return false
}

// =============================================================================
// ADMIN BASE
// =============================================================================

// adminBase carries what every admin handler needs: the renderer, the
// session store holding the admin token, and the shared backend.
type adminBase struct {
	renderer *render.Renderer
	sessions *session.Store
	backend  *backend.Backend
}

// api returns a backend whose calls carry the signed-in admin's token.
func (a adminBase) api(r *http.Request) *backend.Backend {
	return a.backend.WithToken(a.sessions.Token(r.Context()))
}

// fail reports a failed admin call; see adminError.
func (a adminBase) fail(w http.ResponseWriter, r *http.Request, err error, redirectURL, fallback string) {
	adminError(w, r, a.renderer, a.sessions, err, redirectURL, fallback)
}

// page renders an admin template with its title.
func (a adminBase) page(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	a.renderer.RenderPage(w, r, name, render.TemplateData{
		Title: title,
		Data:  data,
	})
}

// fetchFailed handles a failed admin read. It returns true when the response
// has been dealt with: the client went away, or the token was rejected and
// the browser sent to the login page. Otherwise the error is logged and the
// page should render its empty state.
func (a adminBase) fetchFailed(w http.ResponseWriter, r *http.Request, what string, err error) bool {
	if canceled(r, err) {
		return true
	}
	if apiclient.IsKind(err, apiclient.KindUnauthorized) {
		a.fail(w, r, err, redirectAdminDashboard, "")
		return true
	}
	logFetchError(r, what, err)
	a.renderer.SetFlash(r, userMessage(err, "Failed to load "+what+"."), render.FlashError)
	return false
}

// editorError re-renders an editor after a failed save so the draft is kept.
// A rejected token still goes to the login page.
func (a adminBase) editorError(w http.ResponseWriter, r *http.Request, name, title string, data any, err error, fallback string) {
	if canceled(r, err) {
		return
	}
	if apiclient.IsKind(err, apiclient.KindUnauthorized) {
		a.fail(w, r, err, redirectAdminDashboard, fallback)
		return
	}
	a.renderer.RenderPageStatus(w, r, submitStatus(err), name, render.TemplateData{
		Title: title,
		Data:  data,
		Modal: uikit.ErrorModal("Save failed", userMessage(err, fallback)),
	})
}

// invalid re-renders an editor whose draft failed validation.
func (a adminBase) invalid(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	a.renderer.RenderPageStatus(w, r, http.StatusUnprocessableEntity, name, render.TemplateData{
		Title: title,
		Data:  data,
		Modal: uikit.ErrorModal("Check the form", msgFixFields),
	})
}

// =============================================================================
// ADMIN VIEW MODELS
// =============================================================================

// ListView is the view model shared by admin list pages.
type ListView struct {
	Table      uikit.Table
	Pagination uikit.AdminPagination
	Status     string
	Statuses   []string
	NewURL     string
	ExportURL  string
	Filter     any
}

// buildList paginates items into a table.
func buildList[T any](r *http.Request, items []T, columns []uikit.Column, baseURL, empty string) ListView {
	page := uikit.Paginate(items, uikit.ParsePageParam(r), AdminPerPage)
	table := uikit.NewTable(columns, page.Items)
	table.EmptyMessage = empty
	return ListView{
		Table:      table,
		Pagination: page.Links(baseURL, r.URL.Query()),
	}
}

// Editor is the view model of an admin create/edit form.
type Editor[T any] struct {
	ID      string
	Draft   T
	Errors  model.FieldErrors
	Action  string
	Options any
}

// IsNew reports whether the editor creates a record.
func (e Editor[T]) IsNew() bool {
	return e.ID == ""
}

// HasErrors reports whether any field failed validation.
func (e Editor[T]) HasErrors() bool {
	return len(e.Errors) > 0
}

// editorTitle returns "New <noun>" or "Edit <noun>".
func editorTitle(id, noun string) string {
	if id == "" {
		return "New " + noun
	}
	return "Edit " + noun
}

// =============================================================================
// TABLE CELLS
// =============================================================================

// cellLink renders an escaped link.
func cellLink(href, text string) template.HTML {
	return template.HTML(`<a href="` + template.HTMLEscapeString(href) + `">` + template.HTMLEscapeString(text) + `</a>`)
}

// cellBadge renders a status badge.
func cellBadge(status string) template.HTML {
	if status == "" {
		status = model.ReviewPending
	}
	return template.HTML(`<span class="badge ` + render.StatusClass(status) + `">` +
		template.HTMLEscapeString(util.TitleCase(status)) + `</span>`)
}

// cellActions renders the view/edit link and a delete form.
func cellActions(viewURL, viewLabel, deleteURL, confirm string) template.HTML {
	var b strings.Builder
	b.WriteString(`<div class="table-actions">`)
	if viewURL != "" {
		b.WriteString(`<a class="btn btn-sm" href="` + template.HTMLEscapeString(viewURL) + `">` + template.HTMLEscapeString(viewLabel) + `</a>`)
	}
	if deleteURL != "" {
		b.WriteString(`<form method="post" action="` + template.HTMLEscapeString(deleteURL) + `" data-confirm="` +
			template.HTMLEscapeString(confirm) + `"><button type="submit" class="btn btn-sm btn-danger">Delete</button></form>`)
	}
	b.WriteString(`</div>`)
	return template.HTML(b.String())
}

// =============================================================================
// ORDERING HELPERS
// =============================================================================

// sortPrograms orders programs by their explicit order, then title.
func sortPrograms(programs []model.Program) {
	sort.SliceStable(programs, func(i, j int) bool {
		if programs[i].Order != programs[j].Order {
			return programs[i].Order < programs[j].Order
		}
		return programs[i].Title < programs[j].Title
	})
}

// sortBoard orders board members by their explicit order, then name.
func sortBoard(members []model.BoardMember) {
	sort.SliceStable(members, func(i, j int) bool {
		if members[i].Order != members[j].Order {
			return members[i].Order < members[j].Order
		}
		return members[i].Name < members[j].Name
	})
}

// sortPostsNewestFirst orders posts by their display date, newest first.
func sortPostsNewestFirst(posts []model.BlogPost) {
	sort.SliceStable(posts, func(i, j int) bool {
		return posts[i].DisplayDate().After(posts[j].DisplayDate())
	})
}

// publishedOnly drops drafts. The backend is asked for published posts, but
// the public pages do not rely on it honouring the filter.
func publishedOnly(posts []model.BlogPost) []model.BlogPost {
	out := posts[:0:0]
	for _, p := range posts {
		if p.IsPublished() {
			out = append(out, p)
		}
	}
	return out
}

// activePrograms drops programs explicitly marked as drafts.
func activePrograms(programs []model.Program) []model.Program {
	out := programs[:0:0]
	for _, p := range programs {
		if p.Status != model.StatusDraft {
			out = append(out, p)
		}
	}
	return out
}
