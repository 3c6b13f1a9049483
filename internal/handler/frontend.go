// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/olegiv/ngo-portal/internal/apiclient"
	"github.com/olegiv/ngo-portal/internal/backend"
	"github.com/olegiv/ngo-portal/internal/model"
	"github.com/olegiv/ngo-portal/internal/render"
	"github.com/olegiv/ngo-portal/internal/richtext"
	"github.com/olegiv/ngo-portal/internal/uikit"
)

// Empty-state messages.
const (
	msgNoPosts    = "No posts found. Try a different category or search."
	msgNoPhotos   = "No photos in this category yet."
	msgNoPrograms = "Programs will be listed here soon."
)

// FrontendHandler serves the public pages. Every page fetches what it shows
// on each request; a failed fetch is logged and the page renders its empty
// state.
type FrontendHandler struct {
	renderer *render.Renderer
	backend  *backend.Backend
	richtext *richtext.Renderer
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(renderer *render.Renderer, b *backend.Backend, rt *richtext.Renderer) *FrontendHandler {
	return &FrontendHandler{
		renderer: renderer,
		backend:  b,
		richtext: rt,
	}
}

// HomeData holds data for the home page.
type HomeData struct {
	Programs []model.Program
	Posts    []model.BlogPost
	Stats    ImpactStats
}

// Home handles GET /.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	var (
		data HomeData
		mu   sync.Mutex
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		programs, err := h.backend.ListPrograms(ctx)
		if err != nil {
			logFetchError(r, "programs", err)
			return nil
		}
		programs = activePrograms(programs)
		sortPrograms(programs)
		mu.Lock()
		data.Stats = impactStats(programs)
		data.Programs = programs[:min(HomeHighlights, len(programs))]
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		posts, err := h.backend.ListBlogs(ctx, backend.PublicBlogQuery)
		if err != nil {
			logFetchError(r, "blogs", err)
			return nil
		}
		posts = publishedOnly(posts)
		sortPostsNewestFirst(posts)
		mu.Lock()
		data.Posts = posts[:min(HomeHighlights, len(posts))]
		mu.Unlock()
		return nil
	})
	_ = g.Wait()
	if canceled(r, nil) {
		return
	}

	h.renderer.RenderPage(w, r, "public/home", render.TemplateData{
		Title: "Home",
		Data:  data,
	})
}

// AboutData holds data for the about page.
type AboutData struct {
	Board []model.BoardMember
	Empty string
}

// About handles GET /about.
func (h *FrontendHandler) About(w http.ResponseWriter, r *http.Request) {
	board, err := h.backend.ListBoardMembers(r.Context())
	if err != nil {
		if canceled(r, err) {
			return
		}
		logFetchError(r, "board members", err)
	}
	sortBoard(board)

	h.renderer.RenderPage(w, r, "public/about", render.TemplateData{
		Title: "About Us",
		Data: AboutData{
			Board: board,
			Empty: "Our board will be introduced here soon.",
		},
	})
}

// ProgramsData holds data for the programs page.
type ProgramsData struct {
	Programs   []model.Program
	Categories []string
	Filter     uikit.Filter
	Empty      string
}

// Programs handles GET /programs.
func (h *FrontendHandler) Programs(w http.ResponseWriter, r *http.Request) {
	programs, err := h.backend.ListPrograms(r.Context())
	if err != nil {
		if canceled(r, err) {
			return
		}
		logFetchError(r, "programs", err)
	}
	programs = activePrograms(programs)
	sortPrograms(programs)

	filter := uikit.ParseFilter(r)
	data := ProgramsData{
		Programs: uikit.FilterList(programs, filter,
			func(p model.Program) string { return p.Category },
			func(p model.Program) []string { return []string{p.Title, p.Summary} }),
		Categories: uikit.Categories(programs, func(p model.Program) string { return p.Category }),
		Filter:     filter,
		Empty:      msgNoPrograms,
	}

	h.renderer.RenderPage(w, r, "public/programs", render.TemplateData{
		Title: "Our Programs",
		Data:  data,
	})
}

// ProgramDetailData holds data for a program page with its photo lightbox.
type ProgramDetailData struct {
	Program     model.Program
	Description template.HTML
	Photos      []string
	Carousel    uikit.Carousel
	// Playing turns on auto-advance through a meta refresh.
	Playing bool
}

// CurrentPhoto is the photo the lightbox shows.
func (d ProgramDetailData) CurrentPhoto() string {
	if len(d.Photos) == 0 {
		return ""
	}
	return d.Photos[d.Carousel.Index]
}

// SlideURL links to photo i, keeping the play state.
func (d ProgramDetailData) SlideURL(i int) string {
	u := RoutePrograms + "/" + d.Program.Slug + "?i=" + strconv.Itoa(i)
	if d.Playing {
		u += "&play=1"
	}
	return u
}

// PlayURL toggles auto-advance for the current photo.
func (d ProgramDetailData) PlayURL() string {
	u := RoutePrograms + "/" + d.Program.Slug + "?i=" + strconv.Itoa(d.Carousel.Index)
	if !d.Playing {
		u += "&play=1"
	}
	return u
}

// ProgramSlideInterval is the auto-advance delay in seconds.
const ProgramSlideInterval = 5

// ProgramDetail handles GET /programs/{slug}.
func (h *FrontendHandler) ProgramDetail(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	programs, err := h.backend.ListPrograms(r.Context())
	if err != nil {
		if canceled(r, err) {
			return
		}
		logFetchError(r, "programs", err)
	}

	var program *model.Program
	for i := range programs {
		if programs[i].Slug == slug && programs[i].Status != model.StatusDraft {
			program = &programs[i]
			break
		}
	}
	if program == nil {
		h.NotFound(w, r)
		return
	}

	description, err := h.richtext.Render(program.Description, model.FormatHTML)
	if err != nil {
		slog.Error("failed to render program description", "slug", slug, "error", err)
	}

	photos := program.Photos()
	carousel := uikit.NewCarousel(len(photos), uikit.ParseIntParam(r, "i", 0, 0, 0))
	playing := r.URL.Query().Get("play") == "1" && carousel.Multiple()
	if !playing {
		carousel = carousel.Pause()
	}

	h.renderer.RenderPage(w, r, "public/program", render.TemplateData{
		Title:       program.Title,
		Description: program.Summary,
		Data: ProgramDetailData{
			Program:     *program,
			Description: description,
			Photos:      photos,
			Carousel:    carousel,
			Playing:     playing,
		},
		Breadcrumbs: []uikit.Breadcrumb{
			{Label: "Programs", URL: RoutePrograms},
			{Label: program.Title, Active: true},
		},
	})
}

// ImpactStats are the headline numbers on the home and impact pages.
type ImpactStats struct {
	Programs      int
	Beneficiaries int
	Categories    int
}

func impactStats(programs []model.Program) ImpactStats {
	s := ImpactStats{Programs: len(programs)}
	for _, p := range programs {
		s.Beneficiaries += p.Beneficiaries
	}
	s.Categories = len(uikit.Categories(programs, func(p model.Program) string { return p.Category }))
	return s
}

// ImpactData holds data for the impact page.
type ImpactData struct {
	Stats    ImpactStats
	Programs []model.Program
	Photos   int
}

// Impact handles GET /impact.
func (h *FrontendHandler) Impact(w http.ResponseWriter, r *http.Request) {
	var (
		data ImpactData
		mu   sync.Mutex
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		programs, err := h.backend.ListPrograms(ctx)
		if err != nil {
			logFetchError(r, "programs", err)
			return nil
		}
		programs = activePrograms(programs)
		sortPrograms(programs)
		mu.Lock()
		data.Programs = programs
		data.Stats = impactStats(programs)
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		items, err := h.backend.ListGallery(ctx)
		if err != nil {
			logFetchError(r, "gallery", err)
			return nil
		}
		mu.Lock()
		data.Photos = len(items)
		mu.Unlock()
		return nil
	})
	_ = g.Wait()
	if canceled(r, nil) {
		return
	}

	h.renderer.RenderPage(w, r, "public/impact", render.TemplateData{
		Title: "Our Impact",
		Data:  data,
	})
}

// GetInvolved handles GET /get-involved.
func (h *FrontendHandler) GetInvolved(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderPage(w, r, "public/get_involved", render.TemplateData{
		Title: "Get Involved",
		Data:  model.MembershipPlans,
	})
}

// BlogListData holds data for the blog list page.
type BlogListData struct {
	Page       uikit.Page[model.BlogPost]
	Links      uikit.AdminPagination
	Categories []string
	Filter     uikit.Filter
	Empty      string
}

// Blog handles GET /blog. Only published posts are listed.
func (h *FrontendHandler) Blog(w http.ResponseWriter, r *http.Request) {
	posts, err := h.backend.ListBlogs(r.Context(), backend.PublicBlogQuery)
	if err != nil {
		if canceled(r, err) {
			return
		}
		logFetchError(r, "blogs", err)
	}
	posts = publishedOnly(posts)
	sortPostsNewestFirst(posts)

	filter := uikit.ParseFilter(r)
	matching := uikit.FilterList(posts, filter,
		func(p model.BlogPost) string { return p.Category },
		func(p model.BlogPost) []string {
			return append([]string{p.Title, p.Excerpt, p.Author}, p.Tags...)
		})
	page := uikit.Paginate(matching, uikit.ParsePageParam(r), BlogPostsPerPage)

	h.renderer.RenderPage(w, r, "public/blog", render.TemplateData{
		Title: "Blog",
		Data: BlogListData{
			Page:       page,
			Links:      page.Links(RouteBlog, r.URL.Query()),
			Categories: uikit.Categories(posts, func(p model.BlogPost) string { return p.Category }),
			Filter:     filter,
			Empty:      msgNoPosts,
		},
	})
}

// BlogPostData holds data for a single post.
type BlogPostData struct {
	Post    model.BlogPost
	Content template.HTML
	Related []model.BlogPost
}

// BlogPost handles GET /blog/{slug}. Related posts are fetched after the
// post, by its category.
func (h *FrontendHandler) BlogPost(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	post, err := h.backend.GetBlogBySlug(r.Context(), slug)
	if err != nil {
		if canceled(r, err) {
			return
		}
		if !apiclient.IsKind(err, apiclient.KindNotFound) {
			logFetchError(r, "blog post", err)
		}
		h.NotFound(w, r)
		return
	}
	if !post.IsPublished() {
		h.NotFound(w, r)
		return
	}

	content, err := h.richtext.Render(post.Content, post.ContentFormat)
	if err != nil {
		slog.Error("failed to render post content", "slug", slug, "error", err)
	}

	related := h.relatedPosts(r, post)
	if canceled(r, nil) {
		return
	}

	description := post.Excerpt
	if description == "" {
		description = uikit.Truncate(h.richtext.PlainText(string(content)), 160)
	}

	h.renderer.RenderPage(w, r, "public/blog_post", render.TemplateData{
		Title:       post.Title,
		Description: description,
		Data: BlogPostData{
			Post:    post,
			Content: content,
			Related: related,
		},
		Breadcrumbs: []uikit.Breadcrumb{
			{Label: "Blog", URL: RouteBlog},
			{Label: post.Title, Active: true},
		},
	})
}

// relatedPosts returns up to RelatedPostsLimit other published posts in the
// same category.
func (h *FrontendHandler) relatedPosts(r *http.Request, post model.BlogPost) []model.BlogPost {
	if strings.TrimSpace(post.Category) == "" {
		return nil
	}
	posts, err := h.backend.ListBlogs(r.Context(), backend.BlogQuery{
		Category: post.Category,
		Status:   model.StatusPublished,
	})
	if err != nil {
		if !canceled(r, err) {
			logFetchError(r, "related posts", err)
		}
		return nil
	}
	sortPostsNewestFirst(posts)

	related := make([]model.BlogPost, 0, RelatedPostsLimit)
	for _, p := range posts {
		if p.ID == post.ID || p.Slug == post.Slug || !p.IsPublished() {
			continue
		}
		related = append(related, p)
		if len(related) == RelatedPostsLimit {
			break
		}
	}
	return related
}

// GalleryData holds data for the gallery page.
type GalleryData struct {
	Items      []model.GalleryItem
	Page       uikit.Page[model.GalleryItem]
	Categories []string
	Filter     uikit.Filter
	MoreURL    string
	Empty      string
	// Open is the item shown in the lightbox, if any.
	Open     *model.GalleryItem
	Carousel uikit.Carousel
}

// Gallery handles GET /gallery. Each "load more" step renders every photo up
// to the requested page; ?photo=N opens the lightbox on the N-th shown photo.
func (h *FrontendHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	items, err := h.backend.ListGallery(r.Context())
	if err != nil {
		if canceled(r, err) {
			return
		}
		logFetchError(r, "gallery", err)
	}

	filter := uikit.ParseFilter(r)
	matching := uikit.FilterList(items, filter,
		func(g model.GalleryItem) string { return g.Category },
		func(g model.GalleryItem) []string { return []string{g.Title, g.Description} })
	page := uikit.Paginate(matching, uikit.ParsePageParam(r), GalleryPerPage)

	data := GalleryData{
		Items:      matching[:page.Shown()],
		Page:       page,
		Categories: uikit.Categories(items, func(g model.GalleryItem) string { return g.Category }),
		Filter:     filter,
		Empty:      msgNoPhotos,
	}
	if page.HasNext() {
		data.MoreURL = render.PageURL(RouteGallery, r.URL.RawQuery, page.CurrentPage+1)
	}
	if r.URL.Query().Has("photo") && len(data.Items) > 0 {
		data.Carousel = uikit.NewCarousel(len(data.Items), uikit.ParseIntParam(r, "photo", 0, 0, 0)).Pause()
		data.Open = &data.Items[data.Carousel.Index]
	}

	h.renderer.RenderPage(w, r, "public/gallery", render.TemplateData{
		Title: "Gallery",
		Data:  data,
	})
}

// LightboxURL links to the lightbox on photo i, keeping filter and page.
func (d GalleryData) LightboxURL(i int) string {
	q := d.query()
	q.Set("photo", strconv.Itoa(i))
	return RouteGallery + "?" + q.Encode()
}

// CloseURL leaves the lightbox, keeping filter and page.
func (d GalleryData) CloseURL() string {
	return RouteGallery + "?" + d.query().Encode()
}

func (d GalleryData) query() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(d.Page.CurrentPage))
	if !uikit.MatchesAll(d.Filter.Category) {
		q.Set("category", d.Filter.Category)
	}
	if d.Filter.Query != "" {
		q.Set("q", d.Filter.Query)
	}
	return q
}

// NotFound renders the 404 page.
func (h *FrontendHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderer.RenderPageStatus(w, r, http.StatusNotFound, "public/not_found", render.TemplateData{
		Title: "Page Not Found",
	})
}
