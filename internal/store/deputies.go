// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"

	"github.com/citycouncil/council-go/internal/model"
)

const deputyColumns = "id, full_name, faction, district, email, phone, bio, photo_url"

func scanDeputy(row interface{ Scan(...any) error }) (model.Deputy, error) {
	var d model.Deputy
	err := row.Scan(&d.ID, &d.FullName, &d.Faction, &d.District, &d.Email, &d.Phone, &d.Bio, &d.PhotoURL)
	return d, err
}

func (q *Queries) queryDeputies(ctx context.Context, query string, args ...any) ([]model.Deputy, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []model.Deputy
	for rows.Next() {
		d, err := scanDeputy(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}

// CreateDeputyParams holds the attributes for creating a deputy profile.
type CreateDeputyParams struct {
	FullName string
	Faction  string
	District string
	Email    string
	Phone    string
	Bio      string
	PhotoURL string
}

// CreateDeputy inserts a deputy profile and returns the stored row.
func (q *Queries) CreateDeputy(ctx context.Context, arg CreateDeputyParams) (model.Deputy, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO deputies (full_name, faction, district, email, phone, bio, photo_url)
		VALUES (?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''))
		RETURNING `+deputyColumns,
		arg.FullName, arg.Faction, arg.District, arg.Email, arg.Phone, arg.Bio, arg.PhotoURL)
	return scanDeputy(row)
}

// GetDeputyByID returns the deputy with the given id.
func (q *Queries) GetDeputyByID(ctx context.Context, id int64) (model.Deputy, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+deputyColumns+` FROM deputies WHERE id = ?`, id)
	return scanDeputy(row)
}

// ListDeputies returns all deputy profiles ordered by full name. The final
// locale-aware ordering for Cyrillic names is applied by the content layer.
func (q *Queries) ListDeputies(ctx context.Context) ([]model.Deputy, error) {
	return q.queryDeputies(ctx, `SELECT `+deputyColumns+` FROM deputies ORDER BY full_name ASC`)
}

// CountDeputies returns the total number of deputy profiles.
func (q *Queries) CountDeputies(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM deputies`).Scan(&n)
	return n, err
}

// UpdateDeputyParams holds the attributes for updating a deputy profile.
type UpdateDeputyParams struct {
	ID       int64
	FullName string
	Faction  string
	District string
	Email    string
	Phone    string
	Bio      string
	PhotoURL string
}

// UpdateDeputy updates a deputy profile and returns the stored row.
func (q *Queries) UpdateDeputy(ctx context.Context, arg UpdateDeputyParams) (model.Deputy, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE deputies
		SET full_name = ?, faction = NULLIF(?, ''), district = NULLIF(?, ''),
		    email = NULLIF(?, ''), phone = NULLIF(?, ''), bio = NULLIF(?, ''), photo_url = NULLIF(?, '')
		WHERE id = ?
		RETURNING `+deputyColumns,
		arg.FullName, arg.Faction, arg.District, arg.Email, arg.Phone, arg.Bio, arg.PhotoURL, arg.ID)
	return scanDeputy(row)
}

// DeleteDeputy removes a deputy profile.
func (q *Queries) DeleteDeputy(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM deputies WHERE id = ?`, id)
	return err
}

// SearchDeputies returns deputies whose full name or biography contains the
// query substring.
func (q *Queries) SearchDeputies(ctx context.Context, query string) ([]model.Deputy, error) {
	pattern := "%" + query + "%"
	return q.queryDeputies(ctx,
		`SELECT `+deputyColumns+` FROM deputies WHERE full_name LIKE ? OR bio LIKE ? ORDER BY id`,
		pattern, pattern)
}
