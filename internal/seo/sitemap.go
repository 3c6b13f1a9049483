// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo builds the crawler-facing documents of the public site.
package seo

import (
	"encoding/xml"
	"strings"
	"time"
)

// XMLNamespace is the sitemap XML namespace.
const XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ChangeFreq represents the change frequency of a URL.
type ChangeFreq string

// Change frequencies used by the public site.
const (
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
)

// SitemapURL represents a single URL entry in the sitemap.
type SitemapURL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
}

// Sitemap represents the complete sitemap document.
type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

// StaticPage is a fixed public page such as /about.
type StaticPage struct {
	Path       string
	ChangeFreq ChangeFreq
	Priority   string
}

// SitemapEntry is a program or blog post reachable under a slug.
type SitemapEntry struct {
	Slug      string
	UpdatedAt time.Time
}

// SitemapBuilder accumulates URLs for the sitemap.
type SitemapBuilder struct {
	siteURL string
	urls    []SitemapURL
}

// NewSitemapBuilder creates a new sitemap builder. A trailing slash on
// siteURL is dropped.
func NewSitemapBuilder(siteURL string) *SitemapBuilder {
	return &SitemapBuilder{
		siteURL: strings.TrimSuffix(siteURL, "/"),
		urls:    make([]SitemapURL, 0),
	}
}

// AddHomepage adds the homepage to the sitemap.
func (b *SitemapBuilder) AddHomepage() {
	b.urls = append(b.urls, SitemapURL{
		Loc:        b.siteURL + "/",
		ChangeFreq: ChangeFreqDaily,
		Priority:   "1.0",
	})
}

// AddStaticPages adds fixed pages in the given order.
func (b *SitemapBuilder) AddStaticPages(pages []StaticPage) {
	for _, p := range pages {
		b.urls = append(b.urls, SitemapURL{
			Loc:        b.siteURL + p.Path,
			ChangeFreq: p.ChangeFreq,
			Priority:   p.Priority,
		})
	}
}

// AddEntries adds one URL per entry under prefix, e.g. /programs/<slug>.
// Entries without a slug have no public page and are skipped.
func (b *SitemapBuilder) AddEntries(prefix string, entries []SitemapEntry, priority string) {
	for _, e := range entries {
		if e.Slug == "" {
			continue
		}
		u := SitemapURL{
			Loc:        b.siteURL + prefix + "/" + e.Slug,
			ChangeFreq: ChangeFreqWeekly,
			Priority:   priority,
		}
		if !e.UpdatedAt.IsZero() {
			u.LastMod = e.UpdatedAt.Format(time.RFC3339)
		}
		b.urls = append(b.urls, u)
	}
}

// Len returns the number of URLs added so far.
func (b *SitemapBuilder) Len() int {
	return len(b.urls)
}

// Build generates the sitemap XML.
func (b *SitemapBuilder) Build() ([]byte, error) {
	sitemap := Sitemap{
		XMLNS: XMLNamespace,
		URLs:  b.urls,
	}

	output := []byte(xml.Header)
	xmlBytes, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(output, xmlBytes...), nil
}
