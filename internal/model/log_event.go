// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"database/sql"
	"time"
)

// Log event levels.
const (
	LogLevelInfo    = "info"
	LogLevelWarning = "warning"
	LogLevelError   = "error"
)

// Log event categories.
const (
	LogCategoryAuth   = "auth"
	LogCategoryAdmin  = "admin"
	LogCategorySystem = "system"
)

// LogEvent is a persisted application event, shown in the admin event log.
type LogEvent struct {
	ID        int64          `json:"id"`
	Level     string         `json:"level"`
	Category  string         `json:"category"`
	Message   string         `json:"message"`
	UserID    sql.NullInt64  `json:"user_id,omitempty"`
	IP        sql.NullString `json:"ip,omitempty"`
	URL       sql.NullString `json:"url,omitempty"`
	Metadata  string         `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}
