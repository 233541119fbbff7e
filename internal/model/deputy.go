// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "database/sql"

// Deputy represents a council deputy profile. Deputies have no visibility
// flag; every profile is public.
type Deputy struct {
	ID       int64          `json:"id"`
	FullName string         `json:"full_name"`
	Faction  sql.NullString `json:"faction,omitempty"`
	District sql.NullString `json:"district,omitempty"`
	Email    sql.NullString `json:"email,omitempty"`
	Phone    sql.NullString `json:"phone,omitempty"`
	Bio      sql.NullString `json:"bio,omitempty"`
	PhotoURL sql.NullString `json:"photo_url,omitempty"`
}
