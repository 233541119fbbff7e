// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"

	"github.com/citycouncil/council-go/internal/model"
)

const faqColumns = "id, question, answer, is_published"

func scanFAQ(row interface{ Scan(...any) error }) (model.FAQ, error) {
	var f model.FAQ
	err := row.Scan(&f.ID, &f.Question, &f.Answer, &f.IsPublished)
	return f, err
}

func (q *Queries) queryFAQs(ctx context.Context, query string, args ...any) ([]model.FAQ, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.FAQ
	for rows.Next() {
		f, err := scanFAQ(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

// CreateFAQParams holds the attributes for creating an FAQ entry.
type CreateFAQParams struct {
	Question    string
	Answer      string
	IsPublished bool
}

// CreateFAQ inserts an FAQ entry and returns the stored row.
func (q *Queries) CreateFAQ(ctx context.Context, arg CreateFAQParams) (model.FAQ, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO faq (question, answer, is_published)
		VALUES (?, ?, ?)
		RETURNING `+faqColumns,
		arg.Question, arg.Answer, arg.IsPublished)
	return scanFAQ(row)
}

// GetFAQByID returns an FAQ entry regardless of its published flag.
func (q *Queries) GetFAQByID(ctx context.Context, id int64) (model.FAQ, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+faqColumns+` FROM faq WHERE id = ?`, id)
	return scanFAQ(row)
}

// ListPublishedFAQ returns published FAQ entries in insertion order.
func (q *Queries) ListPublishedFAQ(ctx context.Context) ([]model.FAQ, error) {
	return q.queryFAQs(ctx, `SELECT `+faqColumns+` FROM faq WHERE is_published = 1 ORDER BY id`)
}

// ListAllFAQ returns every FAQ entry in insertion order. Admin only.
func (q *Queries) ListAllFAQ(ctx context.Context) ([]model.FAQ, error) {
	return q.queryFAQs(ctx, `SELECT `+faqColumns+` FROM faq ORDER BY id`)
}

// CountFAQ returns the total number of FAQ entries.
func (q *Queries) CountFAQ(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM faq`).Scan(&n)
	return n, err
}

// UpdateFAQParams holds the attributes for updating an FAQ entry.
type UpdateFAQParams struct {
	ID          int64
	Question    string
	Answer      string
	IsPublished bool
}

// UpdateFAQ updates an FAQ entry and returns the stored row.
func (q *Queries) UpdateFAQ(ctx context.Context, arg UpdateFAQParams) (model.FAQ, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE faq
		SET question = ?, answer = ?, is_published = ?
		WHERE id = ?
		RETURNING `+faqColumns,
		arg.Question, arg.Answer, arg.IsPublished, arg.ID)
	return scanFAQ(row)
}

// DeleteFAQ removes an FAQ entry.
func (q *Queries) DeleteFAQ(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM faq WHERE id = ?`, id)
	return err
}

// SearchFAQ returns FAQ entries whose question or answer contains the query
// substring.
func (q *Queries) SearchFAQ(ctx context.Context, query string) ([]model.FAQ, error) {
	pattern := "%" + query + "%"
	return q.queryFAQs(ctx,
		`SELECT `+faqColumns+` FROM faq WHERE question LIKE ? OR answer LIKE ? ORDER BY id`,
		pattern, pattern)
}
