// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/olegiv/ngo-portal/internal/model"
)

const eventColumns = `id, level, category, message, actor, ip_address, request_url, metadata, created_at`

// CreateEventParams holds the fields of a new event.
type CreateEventParams struct {
	Level      string
	Category   string
	Message    string
	Actor      sql.NullString
	IPAddress  string
	RequestURL string
	Metadata   string
	CreatedAt  time.Time
}

// CreateEvent inserts an event and returns it.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (model.Event, error) {
	if arg.Metadata == "" {
		arg.Metadata = "{}"
	}
	row := q.db.QueryRowContext(ctx, `
INSERT INTO events (level, category, message, actor, ip_address, request_url, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING `+eventColumns,
		arg.Level, arg.Category, arg.Message, arg.Actor,
		arg.IPAddress, arg.RequestURL, arg.Metadata, arg.CreatedAt.UTC(),
	)
	return scanEvent(row)
}

// ListEventsParams pages through events, newest first.
type ListEventsParams struct {
	Limit  int64
	Offset int64
}

// ListEvents returns events ordered newest first.
func (q *Queries) ListEvents(ctx context.Context, arg ListEventsParams) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx, `
SELECT `+eventColumns+` FROM events
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

// ListEventsByLevelParams filters ListEvents by level.
type ListEventsByLevelParams struct {
	Level  string
	Limit  int64
	Offset int64
}

// ListEventsByLevel returns events of one level, newest first.
func (q *Queries) ListEventsByLevel(ctx context.Context, arg ListEventsByLevelParams) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx, `
SELECT `+eventColumns+` FROM events
WHERE level = ?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?`, arg.Level, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	return scanEvents(rows)
}

// CountEvents returns the number of stored events.
func (q *Queries) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}

// CountEventsByLevel returns the number of stored events of one level.
func (q *Queries) CountEventsByLevel(ctx context.Context, level string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE level = ?`, level).Scan(&n)
	return n, err
}

// DeleteEventsBefore removes events created before cutoff and reports how many went.
func (q *Queries) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (model.Event, error) {
	var e model.Event
	err := row.Scan(
		&e.ID,
		&e.Level,
		&e.Category,
		&e.Message,
		&e.Actor,
		&e.IPAddress,
		&e.RequestURL,
		&e.Metadata,
		&e.CreatedAt,
	)
	return e, err
}

func scanEvents(rows *sql.Rows) ([]model.Event, error) {
	defer func() { _ = rows.Close() }()

	var items []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
