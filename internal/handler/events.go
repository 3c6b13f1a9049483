// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/olegiv/ngo-portal/internal/model"
	"github.com/olegiv/ngo-portal/internal/render"
	"github.com/olegiv/ngo-portal/internal/store"
	"github.com/olegiv/ngo-portal/internal/uikit"
)

// EventsPerPage is the number of events to display per page.
const EventsPerPage = 25

// EventsHandler handles event log viewing routes.
type EventsHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(db *sql.DB, renderer *render.Renderer) *EventsHandler {
	return &EventsHandler{
		queries:  store.New(db),
		renderer: renderer,
	}
}

// EventRow is an event prepared for display.
type EventRow struct {
	ID          int64
	Level       string
	Category    string
	Message     string
	Details     string // Formatted metadata as readable text
	DetailsLong bool   // True if details exceed display threshold
	Actor       string
	IPAddress   string
	RequestURL  string
	CreatedAt   string
}

// detailsLengthThreshold is the max chars before details are collapsible
const detailsLengthThreshold = 80

// formatMetadata converts JSON metadata to readable text format.
// Example: {"path":"/admin/blogs","error":"not found"} -> "error: not found, path: /admin/blogs"
func formatMetadata(metadata string) string {
	if metadata == "" || metadata == "{}" {
		return ""
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(metadata), &data); err != nil {
		return metadata // Return as-is if not valid JSON
	}

	if len(data) == 0 {
		return ""
	}

	// Sort keys for consistent output order
	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var parts []string
	for _, key := range keys {
		var strValue string
		switch v := data[key].(type) {
		case string:
			strValue = v
		case float64:
			strValue = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			strValue = strconv.FormatBool(v)
		default:
			// For nested objects, marshal back to JSON
			if b, err := json.Marshal(v); err == nil {
				strValue = string(b)
			}
		}
		parts = append(parts, key+": "+strValue)
	}

	return strings.Join(parts, ", ")
}

// toEventRows converts stored events for display.
func toEventRows(events []model.Event) []EventRow {
	rows := make([]EventRow, len(events))
	for i, e := range events {
		details := formatMetadata(e.Metadata)
		rows[i] = EventRow{
			ID:          e.ID,
			Level:       e.Level,
			Category:    e.Category,
			Message:     e.Message,
			Details:     details,
			DetailsLong: len(details) > detailsLengthThreshold,
			Actor:       e.Actor.String,
			IPAddress:   e.IPAddress,
			RequestURL:  e.RequestURL,
			CreatedAt:   e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
		}
	}
	return rows
}

// EventsListData holds data for the events list template.
type EventsListData struct {
	Events      []EventRow
	TotalEvents int64
	Level       string
	Levels      []string
	Pagination  uikit.AdminPagination
}

// List handles GET /admin/events - displays a paginated list of events.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	level := r.URL.Query().Get("level")
	page := uikit.ParsePageParam(r)

	var (
		totalEvents int64
		err         error
	)
	if level != "" {
		totalEvents, err = h.queries.CountEventsByLevel(r.Context(), level)
	} else {
		totalEvents, err = h.queries.CountEvents(r.Context())
	}
	if err != nil {
		logAndInternalError(w, "failed to count events", "error", err)
		return
	}

	page, _ = uikit.NormalizePagination(page, int(totalEvents), EventsPerPage)
	offset := int64((page - 1) * EventsPerPage)

	var events []model.Event
	if level != "" {
		events, err = h.queries.ListEventsByLevel(r.Context(), store.ListEventsByLevelParams{
			Level:  level,
			Limit:  EventsPerPage,
			Offset: offset,
		})
	} else {
		events, err = h.queries.ListEvents(r.Context(), store.ListEventsParams{
			Limit:  EventsPerPage,
			Offset: offset,
		})
	}
	if err != nil {
		logAndInternalError(w, "failed to list events", "error", err)
		return
	}

	h.renderer.RenderPage(w, r, "admin/events", render.TemplateData{
		Title: "Event Log",
		Data: EventsListData{
			Events:      toEventRows(events),
			TotalEvents: totalEvents,
			Level:       level,
			Levels:      []string{model.EventLevelInfo, model.EventLevelWarning, model.EventLevelError},
			Pagination:  uikit.BuildAdminPagination(page, int(totalEvents), EventsPerPage, redirectAdminEvents, r.URL.Query()),
		},
		Breadcrumbs: []uikit.Breadcrumb{
			{Label: "Dashboard", URL: redirectAdminDashboard},
			{Label: "Event Log", URL: redirectAdminEvents, Active: true},
		},
	})
}

// recentEvents returns the newest events for the dashboard. Errors yield nil.
func (h *EventsHandler) recentEvents(r *http.Request, n int) []EventRow {
	events, err := h.queries.ListEvents(r.Context(), store.ListEventsParams{Limit: int64(n)})
	if err != nil {
		logFetchError(r, "recent events", err)
		return nil
	}
	return toEventRows(events)
}
