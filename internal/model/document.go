// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Document represents an official council document: a resolution, draft,
// decision or similar. DocType is a free-text category. FileURL is an opaque
// reference (external URL or relative path) and is never parsed.
type Document struct {
	ID          int64          `json:"id"`
	Title       string         `json:"title"`
	Summary     sql.NullString `json:"summary,omitempty"`
	DocType     string         `json:"doc_type"`
	FileURL     sql.NullString `json:"file_url,omitempty"`
	PublishedAt time.Time      `json:"published_at"`
	IsPublished bool           `json:"is_published"`
}
