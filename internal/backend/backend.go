// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package backend exposes the organisation's REST API as typed operations.
// Anonymous reads of public collections may be served from a cache; anything
// performed with a bearer token always goes to the API.
package backend

import (
	"context"
	"net/url"
	"time"

	"github.com/olegiv/ngo-portal/internal/apiclient"
	"github.com/olegiv/ngo-portal/internal/cache"
	"github.com/olegiv/ngo-portal/internal/model"
)

// Cache key prefixes, one per cached collection.
const (
	prefixBlogs    = "blogs:"
	prefixPrograms = "programs:"
	prefixGallery  = "gallery:"
	prefixBoard    = "board:"
)

// Backend performs typed calls against the REST API.
type Backend struct {
	api *apiclient.Client

	blogs     *cache.Typed[[]model.BlogPost]
	blogPosts *cache.Typed[model.BlogPost]
	programs  *cache.Typed[[]model.Program]
	gallery   *cache.Typed[[]model.GalleryItem]
	board     *cache.Typed[[]model.BoardMember]
}

// Option configures a Backend.
type Option func(*Backend)

// WithCache enables caching of anonymous public reads for ttl.
// A nil cache or non-positive ttl leaves caching disabled.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(b *Backend) {
		b.blogs = cache.NewTyped[[]model.BlogPost](c, ttl)
		b.blogPosts = cache.NewTyped[model.BlogPost](c, ttl)
		b.programs = cache.NewTyped[[]model.Program](c, ttl)
		b.gallery = cache.NewTyped[[]model.GalleryItem](c, ttl)
		b.board = cache.NewTyped[[]model.BoardMember](c, ttl)
	}
}

// New creates a Backend on top of api.
func New(api *apiclient.Client, opts ...Option) *Backend {
	b := &Backend{api: api}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// WithToken returns a Backend whose calls carry token as a bearer credential.
// Caches are shared with the parent.
func (b *Backend) WithToken(token string) *Backend {
	cp := *b
	cp.api = b.api.WithToken(token)
	return &cp
}

// authenticated reports whether calls carry a bearer token.
func (b *Backend) authenticated() bool {
	return b.api.Token() != ""
}

// list fetches a collection, consulting c for anonymous reads.
func list[T any](ctx context.Context, b *Backend, c *cache.Typed[[]T], key, path string, q url.Values) ([]T, error) {
	fetch := func(ctx context.Context) ([]T, error) {
		var out apiclient.List[T]
		if err := b.api.Get(ctx, path, q, &out); err != nil {
			return nil, err
		}
		return []T(out), nil
	}
	if b.authenticated() {
		return fetch(ctx)
	}
	return c.GetOrFetch(ctx, key, fetch)
}

// get fetches a single record, consulting c for anonymous reads.
func get[T any](ctx context.Context, b *Backend, c *cache.Typed[T], key, path string) (T, error) {
	fetch := func(ctx context.Context) (T, error) {
		var out T
		err := b.api.Get(ctx, path, nil, &out)
		return out, err
	}
	if b.authenticated() {
		return fetch(ctx)
	}
	return c.GetOrFetch(ctx, key, fetch)
}

// invalidate drops cached entries for prefixes after a write.
func (b *Backend) invalidate(ctx context.Context, prefixes ...string) {
	for _, p := range prefixes {
		switch p {
		case prefixBlogs:
			b.blogs.Invalidate(ctx, p)
			b.blogPosts.Invalidate(ctx, p)
		case prefixPrograms:
			b.programs.Invalidate(ctx, p)
		case prefixGallery:
			b.gallery.Invalidate(ctx, p)
		case prefixBoard:
			b.board.Invalidate(ctx, p)
		}
	}
}

// queryKey renders q deterministically for use in a cache key.
func queryKey(prefix string, q url.Values) string {
	if len(q) == 0 {
		return prefix + "all"
	}
	return prefix + q.Encode()
}

func escape(id string) string {
	return url.PathEscape(id)
}
