// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"database/sql"
	"net/http"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)

	// Create sessions table required by sqlite3store
	_, err = db.Exec(`
		CREATE TABLE sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX sessions_expiry_idx ON sessions(expiry);
	`)
	if err != nil {
		t.Fatalf("failed to create sessions table: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		isDev      bool
		wantSecure bool
		wantName   string
	}{
		{"development", true, false, "session"},
		{"production", false, true, "__Host-session"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sm := New(setupTestDB(t), tt.isDev)

			if sm.Store == nil {
				t.Fatal("expected Store to be initialized")
			}
			if sm.Cookie.Secure != tt.wantSecure {
				t.Errorf("Cookie.Secure = %v, want %v", sm.Cookie.Secure, tt.wantSecure)
			}
			if sm.Cookie.Name != tt.wantName {
				t.Errorf("Cookie.Name = %q, want %q", sm.Cookie.Name, tt.wantName)
			}
			if sm.Cookie.Path != "/" {
				t.Errorf("Cookie.Path = %q, want /", sm.Cookie.Path)
			}
			if !sm.Cookie.HttpOnly {
				t.Error("expected Cookie.HttpOnly = true")
			}
			if sm.Cookie.SameSite != http.SameSiteLaxMode {
				t.Errorf("SameSite = %v, want Lax", sm.Cookie.SameSite)
			}
			if sm.Lifetime != 24*time.Hour {
				t.Errorf("Lifetime = %v, want 24h", sm.Lifetime)
			}
		})
	}
}
