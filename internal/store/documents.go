// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"time"

	"github.com/citycouncil/council-go/internal/model"
)

const documentColumns = "id, title, summary, doc_type, file_url, published_at, is_published"

func scanDocument(row interface{ Scan(...any) error }) (model.Document, error) {
	var d model.Document
	err := row.Scan(&d.ID, &d.Title, &d.Summary, &d.DocType, &d.FileURL, &d.PublishedAt, &d.IsPublished)
	return d, err
}

func (q *Queries) queryDocuments(ctx context.Context, query string, args ...any) ([]model.Document, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

// CreateDocumentParams holds the attributes for creating a document.
type CreateDocumentParams struct {
	Title       string
	Summary     string
	DocType     string
	FileURL     string
	PublishedAt time.Time
	IsPublished bool
}

// CreateDocument inserts a document and returns the stored row.
func (q *Queries) CreateDocument(ctx context.Context, arg CreateDocumentParams) (model.Document, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO documents (title, summary, doc_type, file_url, published_at, is_published)
		VALUES (?, NULLIF(?, ''), ?, NULLIF(?, ''), ?, ?)
		RETURNING `+documentColumns,
		arg.Title, arg.Summary, arg.DocType, arg.FileURL, arg.PublishedAt, arg.IsPublished)
	return scanDocument(row)
}

// GetDocumentByID returns a document regardless of its published flag.
func (q *Queries) GetDocumentByID(ctx context.Context, id int64) (model.Document, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	return scanDocument(row)
}

// ListPublishedDocuments returns published documents, newest first.
func (q *Queries) ListPublishedDocuments(ctx context.Context) ([]model.Document, error) {
	return q.queryDocuments(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE is_published = 1 ORDER BY published_at DESC`)
}

// ListAllDocuments returns every document, newest first. Admin only.
func (q *Queries) ListAllDocuments(ctx context.Context) ([]model.Document, error) {
	return q.queryDocuments(ctx, `SELECT `+documentColumns+` FROM documents ORDER BY published_at DESC`)
}

// CountDocuments returns the total number of documents.
func (q *Queries) CountDocuments(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n)
	return n, err
}

// UpdateDocumentParams holds the attributes for updating a document.
type UpdateDocumentParams struct {
	ID          int64
	Title       string
	Summary     string
	DocType     string
	FileURL     string
	PublishedAt time.Time
	IsPublished bool
}

// UpdateDocument updates a document and returns the stored row.
func (q *Queries) UpdateDocument(ctx context.Context, arg UpdateDocumentParams) (model.Document, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE documents
		SET title = ?, summary = NULLIF(?, ''), doc_type = ?, file_url = NULLIF(?, ''),
		    published_at = ?, is_published = ?
		WHERE id = ?
		RETURNING `+documentColumns,
		arg.Title, arg.Summary, arg.DocType, arg.FileURL, arg.PublishedAt, arg.IsPublished, arg.ID)
	return scanDocument(row)
}

// DeleteDocument removes a document.
func (q *Queries) DeleteDocument(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, id)
	return err
}

// SearchDocuments returns documents whose title or summary contains the
// query substring. No published filter; see SearchNews.
func (q *Queries) SearchDocuments(ctx context.Context, query string) ([]model.Document, error) {
	pattern := "%" + query + "%"
	return q.queryDocuments(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE title LIKE ? OR summary LIKE ? ORDER BY id`,
		pattern, pattern)
}
