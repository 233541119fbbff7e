// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/citycouncil/council-go/internal/model"
)

const newsColumns = "id, title, body, published_at, is_published, created_by_id"

func scanNews(row interface{ Scan(...any) error }) (model.News, error) {
	var n model.News
	err := row.Scan(&n.ID, &n.Title, &n.Body, &n.PublishedAt, &n.IsPublished, &n.CreatedByID)
	return n, err
}

func (q *Queries) queryNews(ctx context.Context, query string, args ...any) ([]model.News, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.News
	for rows.Next() {
		n, err := scanNews(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

// CreateNewsParams holds the attributes for creating a news item.
type CreateNewsParams struct {
	Title       string
	Body        string
	PublishedAt time.Time
	IsPublished bool
	CreatedByID sql.NullInt64
}

// CreateNews inserts a news item and returns the stored row.
func (q *Queries) CreateNews(ctx context.Context, arg CreateNewsParams) (model.News, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO news (title, body, published_at, is_published, created_by_id)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+newsColumns,
		arg.Title, arg.Body, arg.PublishedAt, arg.IsPublished, arg.CreatedByID)
	return scanNews(row)
}

// GetNewsByID returns a news item regardless of its published flag.
// Used by the admin back-office.
func (q *Queries) GetNewsByID(ctx context.Context, id int64) (model.News, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+newsColumns+` FROM news WHERE id = ?`, id)
	return scanNews(row)
}

// GetPublishedNewsByID returns a published news item. An unpublished id
// yields the same sql.ErrNoRows as a missing one, so visibility is not
// distinguishable from non-existence.
func (q *Queries) GetPublishedNewsByID(ctx context.Context, id int64) (model.News, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+newsColumns+` FROM news WHERE id = ? AND is_published = 1`, id)
	return scanNews(row)
}

// ListPublishedNews returns published news, newest first.
func (q *Queries) ListPublishedNews(ctx context.Context) ([]model.News, error) {
	return q.queryNews(ctx,
		`SELECT `+newsColumns+` FROM news WHERE is_published = 1 ORDER BY published_at DESC`)
}

// ListRecentNews returns at most limit published news, newest first.
// Used by the home feed.
func (q *Queries) ListRecentNews(ctx context.Context, limit int64) ([]model.News, error) {
	return q.queryNews(ctx,
		`SELECT `+newsColumns+` FROM news WHERE is_published = 1 ORDER BY published_at DESC LIMIT ?`, limit)
}

// ListAllNews returns all news rows, newest first, regardless of the
// published flag. Used by the admin back-office.
func (q *Queries) ListAllNews(ctx context.Context) ([]model.News, error) {
	return q.queryNews(ctx, `SELECT `+newsColumns+` FROM news ORDER BY published_at DESC`)
}

// CountNews returns the total number of news rows.
func (q *Queries) CountNews(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM news`).Scan(&n)
	return n, err
}

// UpdateNewsParams holds the attributes for updating a news item.
type UpdateNewsParams struct {
	ID          int64
	Title       string
	Body        string
	PublishedAt time.Time
	IsPublished bool
}

// UpdateNews updates a news item. The author reference is set at creation
// and never rewritten.
func (q *Queries) UpdateNews(ctx context.Context, arg UpdateNewsParams) (model.News, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE news
		SET title = ?, body = ?, published_at = ?, is_published = ?
		WHERE id = ?
		RETURNING `+newsColumns,
		arg.Title, arg.Body, arg.PublishedAt, arg.IsPublished, arg.ID)
	return scanNews(row)
}

// DeleteNews removes a news item.
func (q *Queries) DeleteNews(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM news WHERE id = ?`, id)
	return err
}

// SearchNews returns news whose title or body contains the query substring,
// case-insensitively. No published filter is applied here; search mirrors
// the portal's observed behavior (see DESIGN.md).
func (q *Queries) SearchNews(ctx context.Context, query string) ([]model.News, error) {
	pattern := "%" + query + "%"
	return q.queryNews(ctx,
		`SELECT `+newsColumns+` FROM news WHERE title LIKE ? OR body LIKE ? ORDER BY id`,
		pattern, pattern)
}
