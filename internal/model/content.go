// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Publication statuses used by blog posts and programs.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Blog content formats.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
)

// BlogPost is a news or story article.
type BlogPost struct {
	ID            string    `json:"_id"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Excerpt       string    `json:"excerpt"`
	Content       string    `json:"content"`
	ContentFormat string    `json:"contentFormat,omitempty"`
	Category      string    `json:"category"`
	Author        string    `json:"author"`
	CoverImage    string    `json:"coverImage"`
	Tags          []string  `json:"tags"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	PublishedAt   time.Time `json:"publishedAt"`
}

// IsPublished returns true if the post is visible on the public site.
func (p BlogPost) IsPublished() bool {
	return p.Status == StatusPublished
}

// DisplayDate returns the publish date, falling back to the creation date.
func (p BlogPost) DisplayDate() time.Time {
	if !p.PublishedAt.IsZero() {
		return p.PublishedAt
	}
	return p.CreatedAt
}

// Program is one of the organisation's initiatives.
type Program struct {
	ID            string   `json:"_id"`
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Summary       string   `json:"summary"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	Image         string   `json:"image"`
	Images        []string `json:"images"`
	Beneficiaries int      `json:"beneficiaries"`
	Status        string   `json:"status"`
	Order         int      `json:"order"`
}

// Photos returns the cover image followed by any additional images, without duplicates.
func (p Program) Photos() []string {
	photos := make([]string, 0, len(p.Images)+1)
	seen := make(map[string]bool, len(p.Images)+1)
	for _, img := range append([]string{p.Image}, p.Images...) {
		if img == "" || seen[img] {
			continue
		}
		seen[img] = true
		photos = append(photos, img)
	}
	return photos
}

// GalleryItem is a photo shown on the gallery page.
type GalleryItem struct {
	ID           string    `json:"_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	ImageURL     string    `json:"imageUrl"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	TakenAt      time.Time `json:"takenAt"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Thumb returns the thumbnail URL, falling back to the full image.
func (g GalleryItem) Thumb() string {
	if g.ThumbnailURL != "" {
		return g.ThumbnailURL
	}
	return g.ImageURL
}

// BoardMember is a member of the governing board.
type BoardMember struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Designation string `json:"designation"`
	Bio         string `json:"bio"`
	Photo       string `json:"photo"`
	Email       string `json:"email"`
	LinkedIn    string `json:"linkedin"`
	Order       int    `json:"order"`
}
