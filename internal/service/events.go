// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides business logic on top of the store layer:
// audit event logging and cross-entity search.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/citycouncil/council-go/internal/model"
	"github.com/citycouncil/council-go/internal/store"
)

// EventService records audit events for the admin panel.
type EventService struct {
	queries *store.Queries
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{
		queries: store.New(db),
	}
}

// LogEvent creates a new event log entry.
func (s *EventService) LogEvent(ctx context.Context, level, category, message string, userID *int64, ip, url string, metadata map[string]any) error {
	var nullUserID sql.NullInt64
	if userID != nil {
		nullUserID = sql.NullInt64{Int64: *userID, Valid: true}
	}

	metadataJSON := "{}"
	if metadata != nil {
		if jsonBytes, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	err := s.queries.InsertLogEvent(ctx, store.InsertLogEventParams{
		Level:    level,
		Category: category,
		Message:  message,
		UserID:   nullUserID,
		IP:       nullString(ip),
		URL:      nullString(url),
		Metadata: metadataJSON,
	})
	if err != nil {
		slog.Error("failed to record event", "error", err, "message", message)
		return err
	}

	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// LogAuthEvent records an authentication-related event.
func (s *EventService) LogAuthEvent(ctx context.Context, level, message string, userID *int64, ip, url string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.LogCategoryAuth, message, userID, ip, url, metadata)
}

// LogAdminEvent records a back-office change event.
func (s *EventService) LogAdminEvent(ctx context.Context, level, message string, userID *int64, ip, url string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.LogCategoryAdmin, message, userID, ip, url, metadata)
}

// RecentEvents returns the most recent event log entries, newest first.
func (s *EventService) RecentEvents(ctx context.Context, limit int64) ([]model.LogEvent, error) {
	return s.queries.ListLogEvents(ctx, limit)
}
