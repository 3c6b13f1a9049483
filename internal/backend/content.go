// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package backend

import (
	"context"
	"net/url"

	"github.com/olegiv/ngo-portal/internal/apiclient"
	"github.com/olegiv/ngo-portal/internal/model"
)

// BlogQuery narrows a blog listing.
type BlogQuery struct {
	Category string
	Status   string
}

func (q BlogQuery) values() url.Values {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	return v
}

// ListBlogs returns blog posts matching q.
func (b *Backend) ListBlogs(ctx context.Context, q BlogQuery) ([]model.BlogPost, error) {
	v := q.values()
	return list(ctx, b, b.blogs, queryKey(prefixBlogs+"list:", v), "/blogs", v)
}

// GetBlogBySlug returns the post with the given slug.
func (b *Backend) GetBlogBySlug(ctx context.Context, slug string) (model.BlogPost, error) {
	return get(ctx, b, b.blogPosts, prefixBlogs+"slug:"+slug, "/blogs/slug/"+escape(slug))
}

// GetBlog returns the post with the given ID.
func (b *Backend) GetBlog(ctx context.Context, id string) (model.BlogPost, error) {
	return get(ctx, b, b.blogPosts, prefixBlogs+"id:"+id, "/blogs/"+escape(id))
}

// CreateBlog creates a post.
func (b *Backend) CreateBlog(ctx context.Context, d model.BlogDraft) (model.BlogPost, error) {
	var out model.BlogPost
	err := b.api.Post(ctx, "/blogs", d, &out)
	b.invalidate(ctx, prefixBlogs)
	return out, err
}

// UpdateBlog replaces the post with the given ID.
func (b *Backend) UpdateBlog(ctx context.Context, id string, d model.BlogDraft) (model.BlogPost, error) {
	var out model.BlogPost
	err := b.api.Put(ctx, "/blogs/"+escape(id), d, &out)
	b.invalidate(ctx, prefixBlogs)
	return out, err
}

// DeleteBlog deletes the post with the given ID.
func (b *Backend) DeleteBlog(ctx context.Context, id string) error {
	err := b.api.Delete(ctx, "/blogs/"+escape(id))
	b.invalidate(ctx, prefixBlogs)
	return err
}

// ListPrograms returns all programs.
func (b *Backend) ListPrograms(ctx context.Context) ([]model.Program, error) {
	return list(ctx, b, b.programs, prefixPrograms+"all", "/programs", nil)
}

// GetProgram returns the program with the given ID.
func (b *Backend) GetProgram(ctx context.Context, id string) (model.Program, error) {
	var out model.Program
	err := b.api.Get(ctx, "/programs/"+escape(id), nil, &out)
	return out, err
}

// CreateProgram creates a program.
func (b *Backend) CreateProgram(ctx context.Context, d model.ProgramDraft) (model.Program, error) {
	var out model.Program
	err := b.api.Post(ctx, "/programs", d, &out)
	b.invalidate(ctx, prefixPrograms)
	return out, err
}

// UpdateProgram replaces the program with the given ID.
func (b *Backend) UpdateProgram(ctx context.Context, id string, d model.ProgramDraft) (model.Program, error) {
	var out model.Program
	err := b.api.Put(ctx, "/programs/"+escape(id), d, &out)
	b.invalidate(ctx, prefixPrograms)
	return out, err
}

// DeleteProgram deletes the program with the given ID.
func (b *Backend) DeleteProgram(ctx context.Context, id string) error {
	err := b.api.Delete(ctx, "/programs/"+escape(id))
	b.invalidate(ctx, prefixPrograms)
	return err
}

// ListGallery returns all gallery items.
func (b *Backend) ListGallery(ctx context.Context) ([]model.GalleryItem, error) {
	return list(ctx, b, b.gallery, prefixGallery+"all", "/gallery", nil)
}

// CreateGalleryItem uploads a photo with its metadata.
func (b *Backend) CreateGalleryItem(ctx context.Context, d model.GalleryDraft, image *apiclient.FilePart) (model.GalleryItem, error) {
	var out model.GalleryItem
	err := b.api.PostMultipart(ctx, "/gallery", d.Fields(), image, &out)
	b.invalidate(ctx, prefixGallery)
	return out, err
}

// UpdateGalleryItem updates metadata and optionally replaces the photo.
func (b *Backend) UpdateGalleryItem(ctx context.Context, id string, d model.GalleryDraft, image *apiclient.FilePart) (model.GalleryItem, error) {
	var out model.GalleryItem
	err := b.api.PutMultipart(ctx, "/gallery/"+escape(id), d.Fields(), image, &out)
	b.invalidate(ctx, prefixGallery)
	return out, err
}

// DeleteGalleryItem deletes the gallery item with the given ID.
func (b *Backend) DeleteGalleryItem(ctx context.Context, id string) error {
	err := b.api.Delete(ctx, "/gallery/"+escape(id))
	b.invalidate(ctx, prefixGallery)
	return err
}

// ListBoardMembers returns all board members.
func (b *Backend) ListBoardMembers(ctx context.Context) ([]model.BoardMember, error) {
	return list(ctx, b, b.board, prefixBoard+"all", "/board-members", nil)
}

// GetBoardMember returns the board member with the given ID.
func (b *Backend) GetBoardMember(ctx context.Context, id string) (model.BoardMember, error) {
	var out model.BoardMember
	err := b.api.Get(ctx, "/board-members/"+escape(id), nil, &out)
	return out, err
}

// CreateBoardMember creates a board member.
func (b *Backend) CreateBoardMember(ctx context.Context, d model.BoardMemberDraft) (model.BoardMember, error) {
	var out model.BoardMember
	err := b.api.Post(ctx, "/board-members", d, &out)
	b.invalidate(ctx, prefixBoard)
	return out, err
}

// UpdateBoardMember replaces the board member with the given ID.
func (b *Backend) UpdateBoardMember(ctx context.Context, id string, d model.BoardMemberDraft) (model.BoardMember, error) {
	var out model.BoardMember
	err := b.api.Put(ctx, "/board-members/"+escape(id), d, &out)
	b.invalidate(ctx, prefixBoard)
	return out, err
}

// DeleteBoardMember deletes the board member with the given ID.
func (b *Backend) DeleteBoardMember(ctx context.Context, id string) error {
	err := b.api.Delete(ctx, "/board-members/"+escape(id))
	b.invalidate(ctx, prefixBoard)
	return err
}
