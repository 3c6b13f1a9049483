package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/olegiv/ngo-portal/internal/model"
)

// testDB creates a temporary test database.
func testDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()

	f, err := os.CreateTemp("", "ngo-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}

	if err := Migrate(db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	cleanup := func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	}

	return db, cleanup
}

func TestMigrate_CreatesTables(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	for _, table := range []string{"sessions", "events"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	if err := Migrate(db); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestCreateEvent(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	now := time.Now().Truncate(time.Second)
	event, err := q.CreateEvent(ctx, CreateEventParams{
		Level:      model.EventLevelWarning,
		Category:   model.EventCategoryAuth,
		Message:    "admin login failed",
		Actor:      sql.NullString{String: "admin@example.com", Valid: true},
		IPAddress:  "10.0.0.1",
		RequestURL: "/admin/login",
		CreatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	if event.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if event.Level != model.EventLevelWarning {
		t.Errorf("Level = %q, want %q", event.Level, model.EventLevelWarning)
	}
	if event.Actor.String != "admin@example.com" {
		t.Errorf("Actor = %q", event.Actor.String)
	}
	if event.Metadata != "{}" {
		t.Errorf("Metadata = %q, want {}", event.Metadata)
	}
	if !event.CreatedAt.Equal(now) {
		t.Errorf("CreatedAt = %v, want %v", event.CreatedAt, now)
	}
}

func TestListEvents_NewestFirst(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	for i, msg := range []string{"first", "second", "third"} {
		_, err := q.CreateEvent(ctx, CreateEventParams{
			Level:     model.EventLevelError,
			Category:  model.EventCategoryAPI,
			Message:   msg,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	events, err := q.ListEvents(ctx, ListEventsParams{Limit: 2})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Message != "third" || events[1].Message != "second" {
		t.Errorf("order = %q, %q; want third, second", events[0].Message, events[1].Message)
	}

	n, err := q.CountEvents(ctx)
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if n != 3 {
		t.Errorf("CountEvents = %d, want 3", n)
	}
}

func TestListEventsByLevel(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	for _, level := range []string{model.EventLevelWarning, model.EventLevelError, model.EventLevelWarning} {
		if _, err := q.CreateEvent(ctx, CreateEventParams{
			Level: level, Category: model.EventCategorySystem, Message: level, CreatedAt: time.Now(),
		}); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	events, err := q.ListEventsByLevel(ctx, ListEventsByLevelParams{Level: model.EventLevelWarning, Limit: 10})
	if err != nil {
		t.Fatalf("ListEventsByLevel: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("len = %d, want 2", len(events))
	}

	n, err := q.CountEventsByLevel(ctx, model.EventLevelError)
	if err != nil {
		t.Fatalf("CountEventsByLevel: %v", err)
	}
	if n != 1 {
		t.Errorf("CountEventsByLevel = %d, want 1", n)
	}
}

func TestDeleteEventsBefore(t *testing.T) {
	db, cleanup := testDB(t)
	defer cleanup()

	ctx := context.Background()
	q := New(db)

	old := time.Now().Add(-60 * 24 * time.Hour)
	for _, at := range []time.Time{old, old.Add(time.Hour), time.Now()} {
		if _, err := q.CreateEvent(ctx, CreateEventParams{
			Level: model.EventLevelInfo, Category: model.EventCategorySystem, Message: "m", CreatedAt: at,
		}); err != nil {
			t.Fatalf("CreateEvent: %v", err)
		}
	}

	deleted, err := q.DeleteEventsBefore(ctx, time.Now().Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("DeleteEventsBefore: %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	n, _ := q.CountEvents(ctx)
	if n != 1 {
		t.Errorf("remaining = %d, want 1", n)
	}
}
