// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the
// application: User, News, Document, Event, Deputy and FAQ.
package model

import (
	"database/sql"
	"strings"
	"time"
)

// User roles. Role is the single source of truth for admin access;
// there is no separately stored admin flag.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents a registered portal user.
type User struct {
	ID           int64          `json:"id"`
	Email        string         `json:"email"`
	Name         string         `json:"name"`
	Phone        sql.NullString `json:"phone,omitempty"`
	PasswordHash string         `json:"-"` // Never expose in JSON
	Role         string         `json:"role"`
	IsActive     bool           `json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
}

// IsAdmin returns true if the user has admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidateEmail reports whether an email address is acceptable for storage.
// The store rejects addresses without "@" before any write is attempted.
func ValidateEmail(email string) bool {
	return strings.Contains(email, "@")
}
