// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminGuard_RedirectsWithoutSession(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{RouteDashboard, RouteBlogs, RouteDonations + RouteSuffixExport} {
		resp := env.get(t, RouteAdminPrefix+path)
		assert.Equal(t, http.StatusSeeOther, resp.status, path)
		assert.Equal(t, RouteAdminLogin, resp.location, path)
	}
	assert.Zero(t, env.api.hitsWithPrefix("/"), "no backend call without a session")
}

func TestDashboard_UsesStoredTokenWithoutVerifying(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)
	env.api.on("GET", "/blogs", http.StatusOK, `[{"_id":"1"},{"_id":"2"}]`)

	resp := env.get(t, RouteAdminPrefix+RouteDashboard)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, `<span class="count-blogs">2</span>`)
	assert.Equal(t, "Bearer abc", env.api.lastAuth("GET", "/blogs"))
	assert.Equal(t, 1, env.api.hitsWithPrefix("/auth"), "only the login itself reaches /auth")
}

func TestDashboard_FailedCountShowsUnknown(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)
	env.api.on("GET", "/blogs", http.StatusInternalServerError, `{}`)

	resp := env.get(t, RouteAdminPrefix+RouteDashboard)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, `<span class="count-blogs">unknown</span>`)
}

func TestAdmin_RejectedTokenClearsSession(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)
	env.api.on("GET", "/blogs", http.StatusUnauthorized, `{"message":"jwt expired"}`)

	resp := env.get(t, RouteAdminPrefix+RouteBlogs)
	require.Equal(t, http.StatusSeeOther, resp.status)
	assert.Equal(t, RouteAdminLogin, resp.location)

	again := env.get(t, RouteAdminPrefix+RouteDashboard)
	assert.Equal(t, http.StatusSeeOther, again.status, "the stale token is gone")
	assert.Equal(t, RouteAdminLogin, again.location)

	login := env.get(t, RouteAdminLogin)
	assert.Contains(t, login.body, msgSessionExpired)
}

func TestDashboard_RejectedTokenClearsSession(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)
	env.api.on("GET", "/programs", http.StatusUnauthorized, `{}`)

	resp := env.get(t, RouteAdminPrefix+RouteDashboard)
	require.Equal(t, http.StatusSeeOther, resp.status)
	assert.Equal(t, RouteAdminLogin, resp.location)
}

func TestAdminBlogs_FetchFailureShowsEmptyTable(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)
	env.api.on("GET", "/blogs", http.StatusInternalServerError, `{"message":"Database unavailable"}`)

	resp := env.get(t, RouteAdminPrefix+RouteBlogs)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, "No blog posts yet.")
	assert.Contains(t, resp.body, "Database unavailable")
}

func TestAdminBlogs_ListsDraftsToo(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)
	env.api.on("GET", "/blogs", http.StatusOK, postsJSON("published", "draft"))

	resp := env.get(t, RouteAdminPrefix+RouteBlogs)
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, 2, strings.Count(resp.body, "<tr>"))
	assert.Contains(t, resp.body, "badge-success")
	assert.Contains(t, resp.body, "badge-muted")
}

func TestDonationsExport(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)
	env.api.on("GET", "/donations", http.StatusOK, `[
		{"_id":"d1","name":"Asha","email":"asha@example.com","amount":500,"paymentStatus":"paid","createdAt":"2025-03-01T10:00:00Z"},
		{"_id":"d2","name":"=HYPERLINK(\"x\")","email":"b@example.com","amount":1200.5,"currency":"USD","paymentStatus":"created","createdAt":"2025-03-02T10:00:00Z"}
	]`)

	resp := env.get(t, RouteAdminPrefix+RouteDonations+RouteSuffixExport+"?status=paid&from=bogus")
	require.Equal(t, http.StatusOK, resp.status)
	assert.Equal(t, "text/csv; charset=utf-8", resp.header.Get("Content-Type"))
	assert.Contains(t, resp.header.Get("Content-Disposition"), "donations-")

	rows, err := csv.NewReader(strings.NewReader(resp.body)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, donationCSVHeader, rows[0])
	assert.Equal(t, "'=HYPERLINK(\"x\")", rows[1][1], "newest first and formula neutralised")
	assert.Equal(t, "1200.50", rows[1][5])
	assert.Equal(t, "USD", rows[1][6])
	assert.Equal(t, "Asha", rows[2][1])
	assert.Equal(t, "500.00", rows[2][5])
}

func TestDonationsList_ExportKeepsFilter(t *testing.T) {
	env := newTestEnv(t)
	env.signIn(t)
	env.api.on("GET", "/donations", http.StatusOK, `[]`)

	resp := env.get(t, RouteAdminPrefix+RouteDonations+"?status=paid")
	require.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, "/admin/donations/export?status=paid")
}

func TestCSVSafe(t *testing.T) {
	tests := map[string]string{
		"":           "",
		"Asha":       "Asha",
		"=1+1":       "'=1+1",
		"+91 98765":  "'+91 98765",
		"-5":         "'-5",
		"@SUM(A1)":   "'@SUM(A1)",
		"a=b":        "a=b",
		"\tindented": "'\tindented",
	}
	for in, want := range tests {
		assert.Equal(t, want, csvSafe(in), "csvSafe(%q)", in)
	}
}
