// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package uikit

import (
	"net/http"
	"sort"
	"strings"
)

// AllCategories is the filter value that matches every item.
const AllCategories = "all"

// Filter is a category plus free-text search over a list.
type Filter struct {
	Category string
	Query    string
}

// ParseFilter reads the "category" and "q" query parameters.
func ParseFilter(r *http.Request) Filter {
	q := r.URL.Query()
	return Filter{
		Category: strings.TrimSpace(q.Get("category")),
		Query:    strings.TrimSpace(q.Get("q")),
	}
}

// Active reports whether the filter narrows the list at all.
func (f Filter) Active() bool {
	return !MatchesAll(f.Category) || strings.TrimSpace(f.Query) != ""
}

// MatchesAll reports whether category selects every item.
func MatchesAll(category string) bool {
	category = strings.TrimSpace(category)
	return category == "" || strings.EqualFold(category, AllCategories)
}

// CategoryMatches compares an item's category with the selected one,
// ignoring case and surrounding space.
func CategoryMatches(itemCategory, selected string) bool {
	if MatchesAll(selected) {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(itemCategory), strings.TrimSpace(selected))
}

// FilterList keeps the items whose category matches f.Category and whose
// searchable text contains f.Query, case-insensitively. Order is preserved.
func FilterList[T any](items []T, f Filter, category func(T) string, text func(T) []string) []T {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]T, 0, len(items))
	for _, item := range items {
		if !CategoryMatches(category(item), f.Category) {
			continue
		}
		if query != "" && !containsFold(text(item), query) {
			continue
		}
		out = append(out, item)
	}
	return out
}

func containsFold(fields []string, lowerQuery string) bool {
	for _, s := range fields {
		if strings.Contains(strings.ToLower(s), lowerQuery) {
			return true
		}
	}
	return false
}

// Categories returns the distinct non-empty categories of items, sorted.
// Variants differing only in case collapse to the first spelling seen.
func Categories[T any](items []T, category func(T) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range items {
		c := strings.TrimSpace(category(item))
		key := strings.ToLower(c)
		if c == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}
