// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/ngo-portal/internal/apiclient"
	"github.com/olegiv/ngo-portal/internal/backend"
	"github.com/olegiv/ngo-portal/internal/imaging"
	"github.com/olegiv/ngo-portal/internal/middleware"
	"github.com/olegiv/ngo-portal/internal/render"
	"github.com/olegiv/ngo-portal/internal/richtext"
	"github.com/olegiv/ngo-portal/internal/session"
)

// =============================================================================
// FAKE BACKEND
// =============================================================================

// fakeAPI serves canned JSON bodies keyed by "METHOD /path" and records every call.
type fakeAPI struct {
	mu     sync.Mutex
	routes map[string]fakeRoute
	hits   map[string]int
	auth   map[string]string
	bodies map[string]string
}

type fakeRoute struct {
	status int
	body   string
}

func newFakeAPI(t *testing.T) (*fakeAPI, *httptest.Server) {
	t.Helper()
	f := &fakeAPI{
		routes: make(map[string]fakeRoute),
		hits:   make(map[string]int),
		auth:   make(map[string]string),
		bodies: make(map[string]string),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.hits[key]++
		f.auth[key] = r.Header.Get("Authorization")
		f.bodies[key] = string(body)
		route, ok := f.routes[key]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message":"not found"}`)
			return
		}
		if route.status != 0 {
			w.WriteHeader(route.status)
		}
		_, _ = io.WriteString(w, route.body)
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeAPI) on(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[method+" "+path] = fakeRoute{status: status, body: body}
}

func (f *fakeAPI) hitCount(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[method+" "+path]
}

// hitsWithPrefix counts calls whose path starts with prefix.
func (f *fakeAPI) hitsWithPrefix(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for key, c := range f.hits {
		_, path, _ := strings.Cut(key, " ")
		if strings.HasPrefix(path, prefix) {
			n += c
		}
	}
	return n
}

func (f *fakeAPI) lastAuth(method, path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.auth[method+" "+path]
}

func (f *fakeAPI) lastBody(method, path string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bodies[method+" "+path]
}

// =============================================================================
// TEMPLATES
// =============================================================================

// testTemplates returns small templates that print the fields the tests
// assert on, laid out like the real template tree.
func testTemplates() fstest.MapFS {
	const generic = `{{define "content"}}<h1>{{.Title}}</h1>{{end}}`
	const formErrors = `{{range $field, $msg := .Data.Errors}}<span class="error" data-field="{{$field}}">{{$msg}}</span>{{end}}`

	files := map[string]string{
		"layouts/base.html": `{{define "base"}}<title>{{.Title}}</title>` +
			`{{if .Flash}}<div class="flash flash-{{.FlashType}}">{{.Flash}}</div>{{end}}` +
			`{{if .Modal.Open}}<div class="modal modal-{{.Modal.Kind}}"><h2>{{.Modal.Title}}</h2><p>{{.Modal.Message}}</p></div>{{end}}` +
			`{{block "layout" .}}{{template "content" .}}{{end}}{{end}}`,
		"layouts/public.html": `{{define "layout"}}<main class="public">{{template "content" .}}</main>{{end}}`,
		"layouts/admin.html":  `{{define "layout"}}<main class="admin">{{template "content" .}}</main>{{end}}`,
		"partials/table.html": `{{define "table"}}{{if .IsEmpty}}<p class="empty">{{.Empty}}</p>{{else}}<table>` +
			`{{range $row := .Rows}}<tr>{{range $.Cells $row}}<td>{{.}}</td>{{end}}</tr>{{end}}</table>{{end}}{{end}}`,

		"public/home.html": `{{define "content"}}{{range .Data.Programs}}<div class="program">{{.Title}}</div>{{end}}` +
			`{{range .Data.Posts}}<article class="post-card">{{.Title}}</article>{{end}}` +
			`<span class="beneficiaries">{{.Data.Stats.Beneficiaries}}</span>{{end}}`,
		"public/blog.html": `{{define "content"}}{{range .Data.Page.Items}}<article class="post-card">{{.Title}}</article>` +
			`{{else}}<p class="empty">{{.Data.Empty}}</p>{{end}}{{end}}`,
		"public/blog_post.html": `{{define "content"}}<h1>{{.Data.Post.Title}}</h1><div class="body">{{.Data.Content}}</div>` +
			`{{range .Data.Related}}<a class="related">{{.Title}}</a>{{end}}{{end}}`,
		"public/gallery.html": `{{define "content"}}{{range .Data.Items}}<figure data-category="{{.Category}}">{{.Title}}</figure>` +
			`{{else}}<p class="empty">{{.Data.Empty}}</p>{{end}}` +
			`{{if .Data.MoreURL}}<a class="more" href="{{.Data.MoreURL}}">more</a>{{end}}` +
			`{{with .Data.Open}}<div class="lightbox">{{.Title}}</div>{{end}}{{end}}`,
		"public/program.html": `{{define "content"}}<h1>{{.Data.Program.Title}}</h1>` +
			`<img class="slide" src="{{.Data.CurrentPhoto}}">{{if .Data.Playing}}<span class="playing"></span>{{end}}{{end}}`,
		"public/volunteer.html": `{{define "content"}}` + formErrors + `<input name="name" value="{{.Data.Draft.Name}}">{{end}}`,
		"public/contact.html":   `{{define "content"}}` + formErrors + `<input name="name" value="{{.Data.Draft.Name}}">{{end}}`,
		"public/donate.html":    `{{define "content"}}` + formErrors + `<input name="name" value="{{.Data.Draft.Name}}">{{end}}`,
		"public/checkout.html": `{{define "content"}}<div id="checkout" data-order="{{.Data.Order.OrderID}}" ` +
			`data-key="{{.Data.KeyID}}" data-verify="{{.Data.VerifyURL}}">{{.Data.AmountLabel}}</div>{{end}}`,

		"admin/dashboard.html": `{{define "content"}}<h1>Dashboard</h1>{{with .Data.Summary}}` +
			`<span class="count-blogs">{{if .Blogs.OK}}{{.Blogs.N}}{{else}}unknown{{end}}</span>{{end}}{{end}}`,
		"admin/blogs.html":     `{{define "content"}}{{template "table" .Data.Table}}{{end}}`,
		"admin/events.html": `{{define "content"}}{{range .Data.Events}}<div class="event event-{{.Level}}">{{.Message}}</div>{{end}}` +
			`<span class="total">{{.Data.TotalEvents}}</span>{{end}}`,
		"admin/scheduler.html": `{{define "content"}}{{range .Data}}<div class="job">{{.Name}} {{.LastRun}}</div>{{end}}{{end}}`,
		"admin/donations.html": `{{define "content"}}{{template "table" .Data.Table}}<a class="export" href="{{.Data.ExportURL}}">CSV</a>{{end}}`,

		"admin/programs.html":    `{{define "content"}}{{template "table" .Data.Table}}{{end}}`,
		"admin/gallery.html":     `{{define "content"}}{{template "table" .Data.Table}}{{end}}`,
		"admin/board.html":       `{{define "content"}}{{template "table" .Data.Table}}{{end}}`,
		"admin/volunteers.html":  `{{define "content"}}{{template "table" .Data.Table}}{{end}}`,
		"admin/memberships.html": `{{define "content"}}{{template "table" .Data.Table}}{{end}}`,
		"admin/contacts.html":    `{{define "content"}}{{template "table" .Data.Table}}{{end}}`,
		"admin/program_form.html": `{{define "content"}}` + formErrors +
			`<input name="title" value="{{.Data.Draft.Title}}"><input name="slug" value="{{.Data.Draft.Slug}}">{{end}}`,
		"admin/board_form.html": `{{define "content"}}` + formErrors +
			`<input name="name" value="{{.Data.Draft.Name}}">{{end}}`,
		"admin/gallery_form.html": `{{define "content"}}` + formErrors +
			`<input name="title" value="{{.Data.Draft.Title}}">{{end}}`,
		"admin/volunteer.html":  `{{define "content"}}<h1>{{.Data.Record.Name}}</h1><span class="status">{{.Data.Record.Status}}</span>{{end}}`,
		"admin/membership.html": `{{define "content"}}<h1>{{.Data.Record.Name}}</h1><span class="status">{{.Data.Record.Status}}</span>{{end}}`,
		"admin/contact.html": `{{define "content"}}<h1>{{.Data.Record.Subject}}</h1>` +
			`{{if .Data.Record.Read}}<span class="read"></span>{{end}}{{end}}`,

		"auth/login.html":   `{{define "content"}}<form><input name="email" value="{{.Data.Email}}"></form>{{end}}`,
		"auth/loading.html": `{{define "content"}}<p>Loading</p>{{end}}`,
	}
	for _, name := range []string{
		"public/about", "public/programs", "public/impact", "public/get_involved", "public/not_found",
		"public/membership", "public/login", "public/register",
	} {
		files[name+".html"] = generic
	}

	fsys := fstest.MapFS{}
	for name, content := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return fsys
}

// =============================================================================
// TEST SERVER
// =============================================================================

// testEnv is a running site wired to a fake backend.
type testEnv struct {
	api      *fakeAPI
	server   *httptest.Server
	client   *http.Client
	sessions *session.Store
}

// envOptions tunes the router a testEnv is built with.
type envOptions struct {
	loginProtection *middleware.LoginProtection
	submitBurst     int
}

type envOption func(*envOptions)

// withLoginProtection enables login throttling and account lockout.
func withLoginProtection(lp *middleware.LoginProtection) envOption {
	return func(o *envOptions) { o.loginProtection = lp }
}

// withSubmitBurst caps public form POSTs per client at n.
func withSubmitBurst(n int) envOption {
	return func(o *envOptions) { o.submitBurst = n }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	o := envOptions{submitBurst: 100}
	for _, opt := range opts {
		opt(&o)
	}

	api, apiSrv := newFakeAPI(t)
	sm := scs.New()
	b := backend.New(apiclient.New(apiSrv.URL))
	store := session.NewStore(sm, b)

	renderer, err := render.New(render.Config{TemplatesFS: testTemplates(), SessionManager: sm})
	require.NoError(t, err)
	rt := richtext.New()

	r := chi.NewRouter()
	r.Use(sm.LoadAndSave, store.Resolve, middleware.SiteName("Test NGO"), middleware.LoadMember(store))
	MountRoutes(r, Handlers{
		Frontend:    NewFrontendHandler(renderer, b, rt),
		Forms:       NewFormsHandler(renderer, b, true),
		Auth:        NewAuthHandler(renderer, store, b, o.loginProtection),
		Admin:       NewAdminHandler(renderer, store, b, nil, nil),
		Blogs:       NewBlogsHandler(renderer, store, b, rt),
		Programs:    NewProgramsHandler(renderer, store, b),
		Gallery:     NewGalleryHandler(renderer, store, b, imaging.NewProcessor()),
		Board:       NewBoardHandler(renderer, store, b),
		Submissions: NewSubmissionsHandler(renderer, store, b),
		Donations:   NewDonationsHandler(renderer, store, b),
		SEO:         NewSEOHandler(b, "https://ngo.example.org", false),
	}, RouteConfig{
		Sessions:        store,
		LoginProtection: o.loginProtection,
		SubmitRate:      1,
		SubmitBurst:     o.submitBurst,
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	return &testEnv{api: api, server: srv, client: client, sessions: store}
}

// response is a fully read HTTP response.
type response struct {
	status   int
	body     string
	header   http.Header
	location string
}

func (e *testEnv) do(t *testing.T, req *http.Request) response {
	t.Helper()
	resp, err := e.client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{
		status:   resp.StatusCode,
		body:     string(body),
		header:   resp.Header,
		location: resp.Header.Get("Location"),
	}
}

func (e *testEnv) get(t *testing.T, path string) response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, e.server.URL+path, nil)
	require.NoError(t, err)
	return e.do(t, req)
}

func (e *testEnv) post(t *testing.T, path string, form url.Values) response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, e.server.URL+path, strings.NewReader(form.Encode()))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return e.do(t, req)
}

const adminLoginBody = `{"token":"abc","user":{"_id":"u1","name":"Admin","email":"admin@example.com","role":"admin"}}`

// signIn logs in as an admin through the login form.
func (e *testEnv) signIn(t *testing.T) {
	t.Helper()
	e.api.on("POST", "/auth/login", http.StatusOK, adminLoginBody)
	resp := e.post(t, RouteAdminLogin, url.Values{"email": {"admin@example.com"}, "password": {"correct"}})
	require.Equal(t, http.StatusSeeOther, resp.status)
	require.Equal(t, redirectAdminDashboard, resp.location)
}

// testRenderer returns a renderer over testTemplates without sessions.
func testRenderer(t *testing.T) *render.Renderer {
	t.Helper()
	renderer, err := render.New(render.Config{TemplatesFS: testTemplates()})
	require.NoError(t, err)
	return renderer
}
