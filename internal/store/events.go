// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/citycouncil/council-go/internal/model"
)

const eventColumns = "id, title, description, start_time, end_time, location, is_public"

func scanEvent(row interface{ Scan(...any) error }) (model.Event, error) {
	var e model.Event
	err := row.Scan(&e.ID, &e.Title, &e.Description, &e.StartTime, &e.EndTime, &e.Location, &e.IsPublic)
	return e, err
}

func (q *Queries) queryEvents(ctx context.Context, query string, args ...any) ([]model.Event, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

// CreateEventParams holds the attributes for creating an event.
type CreateEventParams struct {
	Title       string
	Description string
	StartTime   time.Time
	EndTime     sql.NullTime
	Location    string
	IsPublic    bool
}

// CreateEvent inserts an event and returns the stored row.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (model.Event, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO events (title, description, start_time, end_time, location, is_public)
		VALUES (?, NULLIF(?, ''), ?, ?, NULLIF(?, ''), ?)
		RETURNING `+eventColumns,
		arg.Title, arg.Description, arg.StartTime, arg.EndTime, arg.Location, arg.IsPublic)
	return scanEvent(row)
}

// GetEventByID returns an event regardless of its public flag. Admin only.
func (q *Queries) GetEventByID(ctx context.Context, id int64) (model.Event, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	return scanEvent(row)
}

// ListPublicEvents returns public events ordered by start time, soonest first.
func (q *Queries) ListPublicEvents(ctx context.Context) ([]model.Event, error) {
	return q.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events WHERE is_public = 1 ORDER BY start_time ASC`)
}

// ListPublicEventsLimit returns at most limit public events ordered by
// start time, with no date cutoff. Used by the home feed.
func (q *Queries) ListPublicEventsLimit(ctx context.Context, limit int64) ([]model.Event, error) {
	return q.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events WHERE is_public = 1 ORDER BY start_time ASC LIMIT ?`, limit)
}

// ListAllEvents returns every event ordered by start time. Admin only.
func (q *Queries) ListAllEvents(ctx context.Context) ([]model.Event, error) {
	return q.queryEvents(ctx, `SELECT `+eventColumns+` FROM events ORDER BY start_time ASC`)
}

// CountEvents returns the total number of events.
func (q *Queries) CountEvents(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events`).Scan(&n)
	return n, err
}

// UpdateEventParams holds the attributes for updating an event.
type UpdateEventParams struct {
	ID          int64
	Title       string
	Description string
	StartTime   time.Time
	EndTime     sql.NullTime
	Location    string
	IsPublic    bool
}

// UpdateEvent updates an event and returns the stored row.
func (q *Queries) UpdateEvent(ctx context.Context, arg UpdateEventParams) (model.Event, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE events
		SET title = ?, description = NULLIF(?, ''), start_time = ?, end_time = ?,
		    location = NULLIF(?, ''), is_public = ?
		WHERE id = ?
		RETURNING `+eventColumns,
		arg.Title, arg.Description, arg.StartTime, arg.EndTime, arg.Location, arg.IsPublic, arg.ID)
	return scanEvent(row)
}

// DeleteEvent removes an event.
func (q *Queries) DeleteEvent(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	return err
}
