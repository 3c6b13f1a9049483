// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postsJSON builds a blog list body with the given statuses, all in one category.
func postsJSON(statuses ...string) string {
	items := make([]string, len(statuses))
	for i, st := range statuses {
		items[i] = fmt.Sprintf(`{"_id":"p%d","title":"Post %d","slug":"post-%d","category":"Health","status":%q,"publishedAt":"2025-01-%02dT00:00:00Z"}`,
			i+1, i+1, i+1, st, i+1)
	}
	return "[" + strings.Join(items, ",") + "]"
}

func galleryJSON(categories ...string) string {
	items := make([]string, len(categories))
	for i, c := range categories {
		items[i] = fmt.Sprintf(`{"_id":"g%d","title":"Photo %d","category":%q,"imageUrl":"/img/%d.jpg"}`, i+1, i+1, c, i+1)
	}
	return "[" + strings.Join(items, ",") + "]"
}

func TestBlog_ListsPublishedPostsOnly(t *testing.T) {
	env := newTestEnv(t)
	env.api.on("GET", "/blogs", http.StatusOK, postsJSON("published", "published", "draft", "published"))

	resp := env.get(t, RouteBlog)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, 3, strings.Count(resp.body, `class="post-card"`))
	assert.NotContains(t, resp.body, "Post 3")
	assert.NotContains(t, resp.body, msgNoPosts)
}

func TestBlog_NewestFirst(t *testing.T) {
	env := newTestEnv(t)
	env.api.on("GET", "/blogs", http.StatusOK, postsJSON("published", "published", "published"))

	resp := env.get(t, RouteBlog)
	first := strings.Index(resp.body, "Post 3")
	last := strings.Index(resp.body, "Post 1")
	require.True(t, first >= 0 && last >= 0)
	assert.Less(t, first, last, "newest post should come first")
}

func TestBlog_EmptyList(t *testing.T) {
	env := newTestEnv(t)
	env.api.on("GET", "/blogs", http.StatusOK, `[]`)

	resp := env.get(t, RouteBlog)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Zero(t, strings.Count(resp.body, `class="post-card"`))
	assert.Contains(t, resp.body, msgNoPosts)
}

func TestBlog_FetchFailureRendersEmptyState(t *testing.T) {
	env := newTestEnv(t)
	env.api.on("GET", "/blogs", http.StatusInternalServerError, `{"message":"database down"}`)

	resp := env.get(t, RouteBlog)
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, msgNoPosts)
	assert.NotContains(t, resp.body, "database down")
}

func TestBlog_Pagination(t *testing.T) {
	env := newTestEnv(t)
	statuses := make([]string, 0, BlogPostsPerPage+2)
	for range BlogPostsPerPage + 2 {
		statuses = append(statuses, "published")
	}
	env.api.on("GET", "/blogs", http.StatusOK, postsJSON(statuses...))

	assert.Equal(t, BlogPostsPerPage, strings.Count(env.get(t, RouteBlog).body, `class="post-card"`))
	assert.Equal(t, 2, strings.Count(env.get(t, RouteBlog+"?page=2").body, `class="post-card"`))
}

func TestBlogPost_RendersWithRelated(t *testing.T) {
	env := newTestEnv(t)
	env.api.on("GET", "/blogs/slug/post-1", http.StatusOK,
		`{"_id":"p1","title":"Clean Water","slug":"post-1","category":"Health","status":"published","content":"**bold** text","contentFormat":"markdown"}`)
	env.api.on("GET", "/blogs", http.StatusOK, postsJSON("published", "published", "published", "draft", "published", "published"))

	resp := env.get(t, RouteBlog+"/post-1")
	require.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, "<strong>bold</strong>")
	assert.Equal(t, RelatedPostsLimit, strings.Count(resp.body, `class="related"`))
	assert.NotContains(t, resp.body, `<a class="related">Post 1</a>`, "a post is not related to itself")
	assert.NotContains(t, resp.body, `<a class="related">Post 4</a>`, "drafts are never related")
}

func TestBlogPost_NotFound(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, RouteBlog+"/missing")
	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.Contains(t, resp.body, "Page Not Found")
}

func TestBlogPost_DraftIsNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.api.on("GET", "/blogs/slug/secret", http.StatusOK, `{"_id":"s","title":"Secret","slug":"secret","status":"draft"}`)

	resp := env.get(t, RouteBlog+"/secret")
	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.NotContains(t, resp.body, "Secret")
}

func TestGallery_CategoryFilter(t *testing.T) {
	env := newTestEnv(t)
	env.api.on("GET", "/gallery", http.StatusOK, galleryJSON("Education", "Healthcare", "Healthcare", "Environment"))

	resp := env.get(t, RouteGallery+"?category=Healthcare")
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, 2, strings.Count(resp.body, "<figure"))
	assert.Equal(t, 2, strings.Count(resp.body, `data-category="Healthcare"`))

	all := env.get(t, RouteGallery+"?category=all")
	assert.Equal(t, 4, strings.Count(all.body, "<figure"))
}

func TestGallery_CategoryWithoutPhotos(t *testing.T) {
	env := newTestEnv(t)
	env.api.on("GET", "/gallery", http.StatusOK, galleryJSON("Education"))

	resp := env.get(t, RouteGallery+"?category=Events")
	assert.Zero(t, strings.Count(resp.body, "<figure"))
	assert.Contains(t, resp.body, msgNoPhotos)
}

func TestGallery_LoadMore(t *testing.T) {
	env := newTestEnv(t)
	categories := make([]string, 30)
	for i := range categories {
		categories[i] = "Events"
	}
	env.api.on("GET", "/gallery", http.StatusOK, galleryJSON(categories...))

	first := env.get(t, RouteGallery)
	assert.Equal(t, GalleryPerPage, strings.Count(first.body, "<figure"))
	assert.Contains(t, first.body, `class="more"`)
	assert.Contains(t, first.body, "page=2")

	second := env.get(t, RouteGallery+"?page=2")
	assert.Equal(t, 2*GalleryPerPage, strings.Count(second.body, "<figure"))

	last := env.get(t, RouteGallery+"?page=3")
	assert.Equal(t, 30, strings.Count(last.body, "<figure"))
	assert.NotContains(t, last.body, `class="more"`)
}

func TestGallery_LightboxWraps(t *testing.T) {
	env := newTestEnv(t)
	env.api.on("GET", "/gallery", http.StatusOK, galleryJSON("Events", "Events", "Events"))

	resp := env.get(t, RouteGallery+"?photo=3")
	assert.Contains(t, resp.body, `<div class="lightbox">Photo 1</div>`)

	closed := env.get(t, RouteGallery)
	assert.NotContains(t, closed.body, "lightbox")
}

func TestProgramDetail_Carousel(t *testing.T) {
	env := newTestEnv(t)
	env.api.on("GET", "/programs", http.StatusOK,
		`[{"_id":"1","title":"Schools","slug":"schools","image":"/a.jpg","images":["/b.jpg","/c.jpg"]},
		  {"_id":"2","title":"Hidden","slug":"hidden","status":"draft"}]`)

	resp := env.get(t, RoutePrograms+"/schools?i=3")
	require.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, `src="/a.jpg"`, "index wraps past the last photo")
	assert.NotContains(t, resp.body, `class="playing"`)

	playing := env.get(t, RoutePrograms+"/schools?i=-1&play=1")
	assert.Contains(t, playing.body, `src="/c.jpg"`)
	assert.Contains(t, playing.body, `class="playing"`)

	assert.Equal(t, http.StatusNotFound, env.get(t, RoutePrograms+"/hidden").status)
	assert.Equal(t, http.StatusNotFound, env.get(t, RoutePrograms+"/nope").status)
}

func TestHome_HighlightsAndStats(t *testing.T) {
	env := newTestEnv(t)
	env.api.on("GET", "/programs", http.StatusOK,
		`[{"_id":"1","title":"A","beneficiaries":100},{"_id":"2","title":"B","beneficiaries":250},
		  {"_id":"3","title":"C"},{"_id":"4","title":"D","beneficiaries":50}]`)
	env.api.on("GET", "/blogs", http.StatusInternalServerError, `{}`)

	resp := env.get(t, RouteRoot)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, HomeHighlights, strings.Count(resp.body, `class="program"`))
	assert.Contains(t, resp.body, `<span class="beneficiaries">400</span>`)
	assert.Zero(t, strings.Count(resp.body, `class="post-card"`))
}

func TestNotFound(t *testing.T) {
	env := newTestEnv(t)

	resp := env.get(t, "/no/such/page")
	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.Contains(t, resp.body, "Page Not Found")
}
