// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that mirrors warnings and errors
// into the local event log, which the admin dashboard displays.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/olegiv/ngo-portal/internal/model"
	"github.com/olegiv/ngo-portal/internal/store"
)

// Attribute keys lifted out of the metadata into their own columns.
const (
	AttrCategory = "category"
	AttrActor    = "actor"
	AttrIP       = "ip"
	AttrPath     = "path"
)

// EventLogHandler is a slog.Handler that wraps another handler and also writes
// records at or above its level to the events table.
type EventLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level
	attrs   []slog.Attr
}

// NewEventLogHandler wraps inner and records WARN and above.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, db, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel wraps inner and records level and above.
func NewEventLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level) || level >= h.level
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.inner.Enabled(ctx, r.Level) {
		if err := h.inner.Handle(ctx, r); err != nil {
			return err
		}
	}

	if r.Level >= h.level {
		h.writeToEventLog(r)
	}

	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &EventLogHandler{
		inner:   h.inner.WithAttrs(attrs),
		queries: h.queries,
		level:   h.level,
		attrs:   append(h.attrs[:len(h.attrs):len(h.attrs)], attrs...),
	}
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	return &EventLogHandler{
		inner:   h.inner.WithGroup(name),
		queries: h.queries,
		level:   h.level,
		attrs:   h.attrs,
	}
}

// writeToEventLog stores r. It uses a background context so the event is
// kept even when the request that logged it has been cancelled.
func (h *EventLogHandler) writeToEventLog(r slog.Record) {
	params := store.CreateEventParams{
		Level:     levelName(r.Level),
		Message:   r.Message,
		CreatedAt: r.Time,
	}
	meta := make(map[string]string)

	collect := func(a slog.Attr) bool {
		value := a.Value.Resolve().String()
		switch a.Key {
		case AttrCategory:
			params.Category = value
		case AttrActor:
			params.Actor = sql.NullString{String: value, Valid: value != ""}
		case AttrIP:
			params.IPAddress = value
		case AttrPath:
			params.RequestURL = value
		default:
			meta[a.Key] = value
		}
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(collect)

	if params.Category == "" {
		params.Category = inferCategory(r.Message)
	}
	params.Metadata = "{}"
	if len(meta) > 0 {
		if b, err := json.Marshal(meta); err == nil {
			params.Metadata = string(b)
		}
	}

	_, _ = h.queries.CreateEvent(context.Background(), params)
}

func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// inferCategory guesses a category from the message text.
func inferCategory(message string) string {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "auth") || strings.Contains(msg, "login") || strings.Contains(msg, "logout"):
		return model.EventCategoryAuth
	case strings.Contains(msg, "payment") || strings.Contains(msg, "donation") || strings.Contains(msg, "order"):
		return model.EventCategoryPayment
	case strings.Contains(msg, "cache"):
		return model.EventCategoryCache
	case strings.Contains(msg, "backend") || strings.Contains(msg, "fetch") || strings.Contains(msg, "api"):
		return model.EventCategoryAPI
	default:
		return model.EventCategorySystem
	}
}
