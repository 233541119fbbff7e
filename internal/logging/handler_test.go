// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"strings"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/citycouncil/council-go/internal/model"
	"github.com/citycouncil/council-go/internal/store"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	_, err = db.Exec(`
		CREATE TABLE log_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			level TEXT NOT NULL,
			category TEXT NOT NULL,
			message TEXT NOT NULL,
			user_id INTEGER,
			ip TEXT,
			url TEXT,
			metadata TEXT NOT NULL DEFAULT '{}',
			created_at TIMESTAMP NOT NULL
		);
	`)
	if err != nil {
		t.Fatalf("failed to create log_events table: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newTestLogger(db *sql.DB) *slog.Logger {
	inner := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewEventLogHandler(inner, db))
}

func lastEvent(t *testing.T, db *sql.DB) model.LogEvent {
	t.Helper()
	events, err := store.New(db).ListLogEvents(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListLogEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	return events[0]
}

func countEvents(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	n, err := store.New(db).CountLogEvents(context.Background())
	if err != nil {
		t.Fatalf("CountLogEvents: %v", err)
	}
	return n
}

func TestEventLogHandler_WarnPersisted(t *testing.T) {
	db := setupTestDB(t)
	logger := newTestLogger(db)

	logger.Warn("login failed", "email", "user@example.com")

	e := lastEvent(t, db)
	if e.Level != model.LogLevelWarning {
		t.Errorf("Level = %q, want %q", e.Level, model.LogLevelWarning)
	}
	if e.Category != model.LogCategoryAuth {
		t.Errorf("Category = %q, want %q", e.Category, model.LogCategoryAuth)
	}
	if e.Message != "login failed" {
		t.Errorf("Message = %q", e.Message)
	}
	if !strings.Contains(e.Metadata, `"email":"user@example.com"`) {
		t.Errorf("Metadata = %q, want email attribute", e.Metadata)
	}
}

func TestEventLogHandler_ErrorPersisted(t *testing.T) {
	db := setupTestDB(t)
	logger := newTestLogger(db)

	logger.Error("template render failed", "template", "home.html")

	e := lastEvent(t, db)
	if e.Level != model.LogLevelError {
		t.Errorf("Level = %q, want %q", e.Level, model.LogLevelError)
	}
	if e.Category != model.LogCategorySystem {
		t.Errorf("Category = %q, want %q", e.Category, model.LogCategorySystem)
	}
}

func TestEventLogHandler_InfoNotPersisted(t *testing.T) {
	db := setupTestDB(t)
	logger := newTestLogger(db)

	logger.Info("server started", "addr", "localhost:8080")
	logger.Debug("noise")

	if n := countEvents(t, db); n != 0 {
		t.Errorf("got %d persisted events, want 0", n)
	}
}

func TestEventLogHandler_ExplicitCategory(t *testing.T) {
	db := setupTestDB(t)
	logger := newTestLogger(db)

	logger.Warn("row deleted", "category", model.LogCategoryAdmin, "id", 7)

	e := lastEvent(t, db)
	if e.Category != model.LogCategoryAdmin {
		t.Errorf("Category = %q, want %q", e.Category, model.LogCategoryAdmin)
	}
	if strings.Contains(e.Metadata, "category") {
		t.Errorf("Metadata = %q, category attribute should be extracted", e.Metadata)
	}
}

func TestEventLogHandler_WithAttrs(t *testing.T) {
	db := setupTestDB(t)
	logger := newTestLogger(db).With("request_id", "abc123")

	logger.Warn("admin access denied")

	if n := countEvents(t, db); n != 1 {
		t.Fatalf("got %d persisted events, want 1", n)
	}
}

func TestEscapeJSON(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain`, `plain`},
		{`with "quotes"`, `with \"quotes\"`},
		{"line\nbreak", `line\nbreak`},
		{`back\slash`, `back\\slash`},
	}

	for _, tt := range tests {
		if got := escapeJSON(tt.in); got != tt.want {
			t.Errorf("escapeJSON(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
