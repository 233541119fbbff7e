// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// News represents a council news item. A news item is visible on the public
// site only while IsPublished is true; the flag is a visibility toggle, not
// a soft delete.
type News struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Body        string        `json:"body"`
	PublishedAt time.Time     `json:"published_at"`
	IsPublished bool          `json:"is_published"`
	CreatedByID sql.NullInt64 `json:"created_by_id,omitempty"` // Weak reference; NULL once the author is removed
}
