// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package uikit

import (
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := make([]int, 20)
	for i := range items {
		items[i] = i
	}

	tests := []struct {
		name      string
		page      int
		perPage   int
		wantFirst int
		wantLen   int
		wantPage  int
		wantTotal int
	}{
		{"first page", 1, 9, 0, 9, 1, 3},
		{"last partial page", 3, 9, 18, 2, 3, 3},
		{"page past the end clamps", 10, 9, 18, 2, 3, 3},
		{"page below one clamps", -2, 9, 0, 9, 1, 3},
		{"everything fits", 1, 50, 0, 20, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(items, tt.page, tt.perPage)
			assert.Len(t, p.Items, tt.wantLen)
			assert.Equal(t, tt.wantFirst, p.Items[0])
			assert.Equal(t, tt.wantPage, p.CurrentPage)
			assert.Equal(t, tt.wantTotal, p.TotalPages)
			assert.Equal(t, 20, p.TotalItems)
		})
	}
}

func TestPaginate_Empty(t *testing.T) {
	p := Paginate([]string{}, 3, 12)
	assert.Empty(t, p.Items)
	assert.Equal(t, 1, p.CurrentPage)
	assert.Equal(t, 1, p.TotalPages)
	assert.False(t, p.HasNext())
	assert.False(t, p.HasPrev())
	assert.Equal(t, 0, p.Shown())
}

func TestPage_Navigation(t *testing.T) {
	p := Paginate(make([]int, 30), 2, 12)
	assert.True(t, p.HasPrev())
	assert.True(t, p.HasNext())
	assert.Equal(t, 24, p.Shown())

	last := Paginate(make([]int, 30), 3, 12)
	assert.False(t, last.HasNext())
	assert.Equal(t, 30, last.Shown())
}

func TestPage_Links(t *testing.T) {
	p := Paginate(make([]int, 30), 2, 9)
	links := p.Links("/blog", url.Values{"category": {"Health"}, "page": {"2"}})

	assert.Equal(t, 4, links.TotalPages)
	assert.Equal(t, "category=Health", links.QueryString)
	assert.Equal(t, "/blog?category=Health&page=3", links.NextURL())
	assert.True(t, links.ShouldShow())
}

func TestBuildAdminPagination(t *testing.T) {
	p := BuildAdminPagination(1, 45, 20, "/admin/donations", url.Values{"status": {"paid"}, "q": {""}})

	assert.Equal(t, 3, p.TotalPages)
	assert.False(t, p.HasPrev)
	assert.True(t, p.HasNext)
	assert.Equal(t, "/admin/donations?status=paid&page=2", p.NextURL())
	assert.Equal(t, "1-20", p.PageRange())
	assert.Len(t, p.Pages, 3)
	assert.True(t, p.Pages[0].IsCurrent)
}

func TestBuildPaginationPages_Ellipsis(t *testing.T) {
	p := BuildAdminPagination(10, 400, 20, "/admin/events", nil)

	var numbers []int
	for _, pg := range p.Pages {
		numbers = append(numbers, pg.Number)
	}
	assert.Equal(t, []int{1, 0, 8, 9, 10, 11, 12, 0, 20}, numbers)
}

func TestParsePageParam(t *testing.T) {
	tests := map[string]int{
		"/x":           1,
		"/x?page=4":    4,
		"/x?page=0":    1,
		"/x?page=-3":   1,
		"/x?page=abc":  1,
		"/x?page=":     1,
		"/x?page=1000": 1000,
	}
	for target, want := range tests {
		r := httptest.NewRequest("GET", target, nil)
		assert.Equal(t, want, ParsePageParam(r), target)
	}
}

func TestParsePerPageParam(t *testing.T) {
	r := httptest.NewRequest("GET", "/x?per_page=500", nil)
	assert.Equal(t, 20, ParsePerPageParam(r, 20, 100))

	r = httptest.NewRequest("GET", "/x?per_page=50", nil)
	assert.Equal(t, 50, ParsePerPageParam(r, 20, 100))
}
