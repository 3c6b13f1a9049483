// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package richtext turns blog and program bodies from the backend into HTML
// that is safe to embed in a page.
package richtext

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/olegiv/ngo-portal/internal/model"
)

// Renderer converts markdown and sanitises HTML. It is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	strict *bluemonday.Policy
}

// New creates a Renderer with GitHub-flavoured markdown and a UGC policy.
func New() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("loading").Matching(bluemonday.SpaceSeparatedTokens).OnElements("img")
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, extension.Typographer),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			// Raw HTML is passed through here and removed by the policy afterwards.
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
		policy: policy,
		strict: bluemonday.StrictPolicy(),
	}
}

// Sanitize strips scripts, handlers and other unsafe markup from s.
func (r *Renderer) Sanitize(s string) template.HTML {
	return template.HTML(r.policy.Sanitize(s))
}

// Markdown renders src to sanitised HTML.
func (r *Renderer) Markdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil
}

// Render renders content according to its format. Anything other than
// markdown is treated as HTML.
func (r *Renderer) Render(content, format string) (template.HTML, error) {
	if format == model.FormatMarkdown {
		return r.Markdown(content)
	}
	return r.Sanitize(content), nil
}

// PlainText removes all markup and collapses whitespace, for excerpts and
// meta descriptions.
func (r *Renderer) PlainText(s string) string {
	text := html.UnescapeString(r.strict.Sanitize(s))
	return strings.Join(strings.Fields(text), " ")
}
