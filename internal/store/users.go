// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/citycouncil/council-go/internal/model"
)

// ErrInvalidEmail is returned when an email address fails validation before
// any write is attempted.
var ErrInvalidEmail = errors.New("invalid email address")

const userColumns = "id, email, name, phone, password_hash, role, is_active, created_at"

func scanUser(row interface{ Scan(...any) error }) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.Phone, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	return u, err
}

// CreateUserParams holds the attributes for creating a user.
type CreateUserParams struct {
	Email        string
	Name         string
	Phone        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
}

// CreateUser inserts a new user and returns the stored row.
// Email uniqueness is enforced by the UNIQUE index; under concurrent
// registration the constraint, not application logic, decides which
// write fails.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (model.User, error) {
	if !model.ValidateEmail(arg.Email) {
		return model.User{}, ErrInvalidEmail
	}
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO users (email, name, phone, password_hash, role, is_active, created_at)
		VALUES (?, ?, NULLIF(?, ''), ?, ?, ?, ?)
		RETURNING `+userColumns,
		arg.Email, arg.Name, arg.Phone, arg.PasswordHash, arg.Role, arg.IsActive, arg.CreatedAt)
	return scanUser(row)
}

// GetUserByID returns the user with the given id.
func (q *Queries) GetUserByID(ctx context.Context, id int64) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail returns the user with the given email.
func (q *Queries) GetUserByEmail(ctx context.Context, email string) (model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// ListUsers returns all users ordered by id.
func (q *Queries) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountUsers returns the total number of users.
func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n)
	return n, err
}

// CountUsersByRole returns the number of users with the given role.
func (q *Queries) CountUsersByRole(ctx context.Context, role string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role = ?`, role).Scan(&n)
	return n, err
}

// UpdateUserParams holds the attributes for updating a user.
type UpdateUserParams struct {
	ID       int64
	Email    string
	Name     string
	Phone    string
	Role     string
	IsActive bool
}

// UpdateUser updates a user's profile attributes. The password is updated
// separately via UpdateUserPassword.
func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (model.User, error) {
	if !model.ValidateEmail(arg.Email) {
		return model.User{}, ErrInvalidEmail
	}
	row := q.db.QueryRowContext(ctx, `
		UPDATE users
		SET email = ?, name = ?, phone = NULLIF(?, ''), role = ?, is_active = ?
		WHERE id = ?
		RETURNING `+userColumns,
		arg.Email, arg.Name, arg.Phone, arg.Role, arg.IsActive, arg.ID)
	return scanUser(row)
}

// UpdateUserPassword replaces a user's password hash.
func (q *Queries) UpdateUserPassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := q.db.ExecContext(ctx, `UPDATE users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	return err
}

// DeleteUser removes a user. News owned by the user keeps existing with a
// NULL author reference (ON DELETE SET NULL).
func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	return err
}

// IsUniqueViolation reports whether err stems from the email UNIQUE
// constraint. Used to surface duplicate registrations as a form warning
// rather than an internal error.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
