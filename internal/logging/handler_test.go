package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/olegiv/ngo-portal/internal/model"
	"github.com/olegiv/ngo-portal/internal/store"
)

// testDB creates a temporary test database with migrations applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	f, err := os.CreateTemp("", "ngo-logging-test-*.db")
	if err != nil {
		t.Fatalf("creating temp file: %v", err)
	}
	dbPath := f.Name()
	_ = f.Close()

	db, err := store.NewDB(dbPath)
	if err != nil {
		_ = os.Remove(dbPath)
		t.Fatalf("NewDB: %v", err)
	}
	if err := store.Migrate(db); err != nil {
		_ = db.Close()
		_ = os.Remove(dbPath)
		t.Fatalf("Migrate: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
		_ = os.Remove(dbPath)
	})
	return db
}

// discardHandler is a slog.Handler that discards all logs.
type discardHandler struct{}

func (h discardHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (h discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h discardHandler) WithGroup(string) slog.Handler             { return h }

func listEvents(t *testing.T, db *sql.DB) []model.Event {
	t.Helper()
	events, err := store.New(db).ListEvents(context.Background(), store.ListEventsParams{Limit: 100})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	return events
}

func TestEventLogHandler_Levels(t *testing.T) {
	tests := []struct {
		name      string
		log       func(*slog.Logger)
		wantCount int
		wantLevel string
	}{
		{"error", func(l *slog.Logger) { l.Error("database connection failed") }, 1, model.EventLevelError},
		{"warn", func(l *slog.Logger) { l.Warn("slow response") }, 1, model.EventLevelWarning},
		{"info", func(l *slog.Logger) { l.Info("server started") }, 0, ""},
		{"debug", func(l *slog.Logger) { l.Debug("request body") }, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := testDB(t)
			tt.log(slog.New(NewEventLogHandler(discardHandler{}, db)))

			events := listEvents(t, db)
			if len(events) != tt.wantCount {
				t.Fatalf("events = %d, want %d", len(events), tt.wantCount)
			}
			if tt.wantCount > 0 && events[0].Level != tt.wantLevel {
				t.Errorf("Level = %q, want %q", events[0].Level, tt.wantLevel)
			}
		})
	}
}

func TestEventLogHandler_CustomLevel(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewEventLogHandlerWithLevel(discardHandler{}, db, slog.LevelError))

	logger.Warn("ignored warning")
	logger.Error("kept error")

	events := listEvents(t, db)
	if len(events) != 1 || events[0].Message != "kept error" {
		t.Errorf("events = %+v, want only the error", events)
	}
}

func TestEventLogHandler_CategoryInference(t *testing.T) {
	tests := []struct {
		message string
		want    string
	}{
		{"admin login failed", model.EventCategoryAuth},
		{"logout failed", model.EventCategoryAuth},
		{"payment verification failed", model.EventCategoryPayment},
		{"creating donation order", model.EventCategoryPayment},
		{"cache warm-up failed", model.EventCategoryCache},
		{"backend request failed", model.EventCategoryAPI},
		{"dashboard fetch failed", model.EventCategoryAPI},
		{"something odd", model.EventCategorySystem},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			db := testDB(t)
			slog.New(NewEventLogHandler(discardHandler{}, db)).Warn(tt.message)

			events := listEvents(t, db)
			if len(events) != 1 {
				t.Fatalf("events = %d, want 1", len(events))
			}
			if events[0].Category != tt.want {
				t.Errorf("Category = %q, want %q", events[0].Category, tt.want)
			}
		})
	}
}

func TestEventLogHandler_ExplicitCategory(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db))

	logger.Error("login page render failed", AttrCategory, model.EventCategorySystem)

	events := listEvents(t, db)
	if events[0].Category != model.EventCategorySystem {
		t.Errorf("Category = %q, want explicit %q", events[0].Category, model.EventCategorySystem)
	}
}

func TestEventLogHandler_ColumnsAndMetadata(t *testing.T) {
	db := testDB(t)
	logger := slog.New(NewEventLogHandler(discardHandler{}, db)).With("component", "checkout")

	logger.Error("verify failed",
		AttrActor, "admin@example.com",
		AttrIP, "192.0.2.1",
		AttrPath, "/donate/verify",
		"order_id", "order_1",
		"status", 502,
	)

	events := listEvents(t, db)
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	e := events[0]
	if !e.Actor.Valid || e.Actor.String != "admin@example.com" {
		t.Errorf("Actor = %+v", e.Actor)
	}
	if e.IPAddress != "192.0.2.1" {
		t.Errorf("IPAddress = %q", e.IPAddress)
	}
	if e.RequestURL != "/donate/verify" {
		t.Errorf("RequestURL = %q", e.RequestURL)
	}

	var meta map[string]string
	if err := json.Unmarshal([]byte(e.Metadata), &meta); err != nil {
		t.Fatalf("metadata is not JSON: %v (%q)", err, e.Metadata)
	}
	want := map[string]string{"component": "checkout", "order_id": "order_1", "status": "502"}
	for k, v := range want {
		if meta[k] != v {
			t.Errorf("metadata[%q] = %q, want %q", k, meta[k], v)
		}
	}
	if _, ok := meta[AttrActor]; ok {
		t.Error("actor should be stored in its own column, not metadata")
	}
}

func TestEventLogHandler_ForwardsToInner(t *testing.T) {
	db := testDB(t)
	inner := &countingHandler{}
	logger := slog.New(NewEventLogHandler(inner, db))

	logger.Info("hello")
	logger.Error("boom")

	if inner.n != 2 {
		t.Errorf("inner handled %d records, want 2", inner.n)
	}
}

type countingHandler struct{ n int }

func (h *countingHandler) Enabled(context.Context, slog.Level) bool  { return true }
func (h *countingHandler) Handle(context.Context, slog.Record) error { h.n++; return nil }
func (h *countingHandler) WithAttrs([]slog.Attr) slog.Handler        { return h }
func (h *countingHandler) WithGroup(string) slog.Handler             { return h }
