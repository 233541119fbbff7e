// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/citycouncil/council-go/internal/model"
)

const logEventColumns = "id, level, category, message, user_id, ip, url, metadata, created_at"

func scanLogEvent(row interface{ Scan(...any) error }) (model.LogEvent, error) {
	var e model.LogEvent
	err := row.Scan(&e.ID, &e.Level, &e.Category, &e.Message,
		&e.UserID, &e.IP, &e.URL, &e.Metadata, &e.CreatedAt)
	return e, err
}

// InsertLogEventParams holds the attributes for recording an event log entry.
type InsertLogEventParams struct {
	Level    string
	Category string
	Message  string
	UserID   sql.NullInt64
	IP       sql.NullString
	URL      sql.NullString
	Metadata string
}

// InsertLogEvent records an event log entry.
func (q *Queries) InsertLogEvent(ctx context.Context, arg InsertLogEventParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO log_events (level, category, message, user_id, ip, url, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		arg.Level, arg.Category, arg.Message, arg.UserID, arg.IP, arg.URL,
		arg.Metadata, time.Now().UTC())
	return err
}

// ListLogEvents returns the most recent event log entries, newest first.
func (q *Queries) ListLogEvents(ctx context.Context, limit int64) ([]model.LogEvent, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+logEventColumns+` FROM log_events ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.LogEvent
	for rows.Next() {
		e, err := scanLogEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// CountLogEvents returns the total number of event log entries.
func (q *Queries) CountLogEvents(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM log_events`).Scan(&n)
	return n, err
}
