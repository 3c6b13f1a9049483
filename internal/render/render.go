// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render parses the page templates once at startup and executes
// them inside the public, admin or bare layout.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/ngo-portal/internal/logging"
	"github.com/olegiv/ngo-portal/internal/middleware"
	"github.com/olegiv/ngo-portal/internal/model"
	"github.com/olegiv/ngo-portal/internal/uikit"
	"github.com/olegiv/ngo-portal/internal/util"
)

// blankLinesRegex collapses runs of blank lines left behind by template actions.
var blankLinesRegex = regexp.MustCompile(`(\r?\n[ \t]*)+\r?\n`)

// Flash types.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Template directories and the layout each one is wrapped in.
var sections = []struct {
	dir    string
	layout string
}{
	{"public", "layouts/public.html"},
	{"admin", "layouts/admin.html"},
	{"auth", ""},
}

// Widgets configures the third-party browser scripts some pages load.
type Widgets struct {
	PaymentKeyID     string
	PaymentScriptURL string
	EmailServiceID   string
	EmailTemplateID  string
	EmailPublicKey   string
	EmailScriptURL   string
}

// PaymentsEnabled reports whether the checkout widget can be opened.
func (w Widgets) PaymentsEnabled() bool {
	return w.PaymentKeyID != "" && w.PaymentScriptURL != ""
}

// EmailEnabled reports whether the contact page also sends through the email widget.
func (w Widgets) EmailEnabled() bool {
	return w.EmailServiceID != "" && w.EmailTemplateID != "" && w.EmailPublicKey != "" && w.EmailScriptURL != ""
}

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	widgets        Widgets
	isDev          bool

	funcsMu    sync.RWMutex
	extraFuncs template.FuncMap
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	Widgets        Widgets
	IsDev          bool
	// Funcs are merged over the built-in template functions.
	Funcs template.FuncMap
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		widgets:        cfg.Widgets,
		isDev:          cfg.IsDev,
	}
	r.AddTemplateFuncs(cfg.Funcs)

	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}

	return r, nil
}

// AddTemplateFuncs registers extra template functions. Functions added after
// New only affect lookups through the renderer, not already parsed templates.
func (r *Renderer) AddTemplateFuncs(funcs template.FuncMap) {
	r.funcsMu.Lock()
	defer r.funcsMu.Unlock()
	if r.extraFuncs == nil {
		r.extraFuncs = make(template.FuncMap)
	}
	maps.Copy(r.extraFuncs, funcs)
}

// TemplateFuncs returns the functions available to every template.
func (r *Renderer) TemplateFuncs() template.FuncMap {
	funcs := uikit.TemplateFuncs()
	funcs["formatAmount"] = util.FormatAmount
	funcs["formatCount"] = util.FormatCount
	funcs["titleCase"] = util.TitleCase
	funcs["statusClass"] = StatusClass
	funcs["safe"] = func(s string) template.HTML {
		return template.HTML(s)
	}
	funcs["pageURL"] = PageURL

	r.funcsMu.RLock()
	maps.Copy(funcs, r.extraFuncs)
	r.funcsMu.RUnlock()
	return funcs
}

// parseTemplates parses all templates from the filesystem.
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := r.getTemplateFiles(templatesFS, "partials")
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	baseLayout := "layouts/base.html"
	funcs := r.TemplateFuncs()

	for _, sec := range sections {
		pages, err := r.getTemplateFiles(templatesFS, sec.dir)
		if err != nil {
			return fmt.Errorf("getting %s templates: %w", sec.dir, err)
		}

		for _, tmplPath := range pages {
			name := sec.dir + "/" + strings.TrimSuffix(path.Base(tmplPath), ".html")

			// Parse in order: base layout, section layout, partials, page template
			files := []string{baseLayout}
			if sec.layout != "" {
				files = append(files, sec.layout)
			}
			files = append(files, partials...)
			files = append(files, tmplPath)

			tmpl, err := template.New("").Funcs(funcs).ParseFS(templatesFS, files...)
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", name, err)
			}

			r.templates[name] = tmpl
		}
	}

	return nil
}

// getTemplateFiles returns all .html files in a directory.
func (r *Renderer) getTemplateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	var files []string

	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		// A section without templates is fine
		return files, nil
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}

	return files, nil
}

// Has reports whether a template with the given name was parsed.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Description string
	Data        any
	Flash       string
	FlashType   string
	Modal       uikit.Modal
	Breadcrumbs []uikit.Breadcrumb

	// Filled in by Render.
	SiteName    string
	CurrentPath string
	CurrentYear int
	Admin       *model.AdminUser
	Member      *model.AdminUser
	Widgets     Widgets
	IsDev       bool
}

// IsActive reports whether the navigation link for prefix should be highlighted.
func (d TemplateData) IsActive(prefix string) bool {
	if prefix == "/" || prefix == "/admin" {
		return d.CurrentPath == prefix
	}
	return d.CurrentPath == prefix || strings.HasPrefix(d.CurrentPath, prefix+"/")
}

// Render renders a template with the given data and status 200.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus renders a template with the given data and status code.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = time.Now().Year()
	data.SiteName = middleware.GetSiteName(req)
	data.CurrentPath = req.URL.Path
	data.Admin = middleware.GetAdmin(req)
	data.Member = middleware.GetMember(req)
	data.Widgets = r.widgets
	data.IsDev = r.isDev

	// Get flash message from session
	if r.sessionManager != nil && data.Flash == "" {
		if flash := r.sessionManager.PopString(req.Context(), "flash"); flash != "" {
			data.Flash = flash
			data.FlashType = r.sessionManager.PopString(req.Context(), "flash_type")
			if data.FlashType == "" {
				data.FlashType = FlashInfo
			}
		}
	}

	// Render to buffer first to catch errors
	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := w.Write(blankLinesRegex.ReplaceAll(buf.Bytes(), []byte("\n")))
	return err
}

// RenderPage renders a template and answers 500 if that fails.
func (r *Renderer) RenderPage(w http.ResponseWriter, req *http.Request, name string, data TemplateData) {
	r.RenderPageStatus(w, req, http.StatusOK, name, data)
}

// RenderPageStatus is RenderPage with an explicit status code.
func (r *Renderer) RenderPageStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) {
	if err := r.RenderStatus(w, req, status, name, data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err,
			logging.AttrPath, middleware.GetRequestPath(req.Context()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// SetFlash sets a flash message in the session.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager != nil {
		r.sessionManager.Put(req.Context(), "flash", message)
		r.sessionManager.Put(req.Context(), "flash_type", flashType)
	}
}

// StatusClass maps a record status to the badge class used in admin tables.
func StatusClass(status string) string {
	switch strings.ToLower(status) {
	case model.StatusPublished, model.ReviewApproved, model.ReviewActive, model.PaymentPaid:
		return "badge-success"
	case model.ReviewRejected, model.PaymentFailed, model.ReviewExpired:
		return "badge-danger"
	case model.ReviewPending, model.PaymentCreated:
		return "badge-warning"
	default:
		return "badge-muted"
	}
}

// PageURL returns base with the page parameter set, keeping the other query values.
func PageURL(base, rawQuery string, page int) string {
	q, err := url.ParseQuery(rawQuery)
	if err != nil {
		q = url.Values{}
	}
	q.Set("page", strconv.Itoa(page))
	return base + "?" + q.Encode()
}
