// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"net/url"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/ngo-portal/internal/apiclient"
	"github.com/olegiv/ngo-portal/internal/model"
)

// PublicBlogQuery is the listing the public blog page requests.
var PublicBlogQuery = BlogQuery{Status: model.StatusPublished}

// CachingEnabled reports whether anonymous reads are cached.
func (b *Backend) CachingEnabled() bool {
	return b.blogs != nil
}

// Warm drops the public caches and refetches the collections the public
// pages read, so visitors after a warm-up are served from cache.
func (b *Backend) Warm(ctx context.Context) error {
	if !b.CachingEnabled() {
		return nil
	}
	anon := b.WithToken("")
	anon.invalidate(ctx, prefixBlogs, prefixPrograms, prefixGallery, prefixBoard)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := anon.ListBlogs(gctx, PublicBlogQuery)
		return err
	})
	g.Go(func() error {
		_, err := anon.ListPrograms(gctx)
		return err
	})
	g.Go(func() error {
		_, err := anon.ListGallery(gctx)
		return err
	})
	g.Go(func() error {
		_, err := anon.ListBoardMembers(gctx)
		return err
	})
	return g.Wait()
}

// Ping checks that the API answers at all. Any HTTP response counts, since
// only a transport failure means the API is out of reach.
func (b *Backend) Ping(ctx context.Context) error {
	err := b.api.Get(ctx, "/programs", url.Values{"limit": {"1"}}, nil)
	if err != nil && apiclient.IsKind(err, apiclient.KindTransport) {
		return err
	}
	return nil
}
