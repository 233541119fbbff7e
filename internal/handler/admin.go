// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"net/http"

	"github.com/citycouncil/council-go/internal/middleware"
	"github.com/citycouncil/council-go/internal/model"
	"github.com/citycouncil/council-go/internal/render"
	"github.com/citycouncil/council-go/internal/service"
	"github.com/citycouncil/council-go/internal/store"
)

// eventLogLimit caps the admin event log page.
const eventLogLimit = 100

// AdminHandler handles the back-office dashboard and event log.
type AdminHandler struct {
	queries      *store.Queries
	renderer     *render.Renderer
	eventService *service.EventService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(db *sql.DB, renderer *render.Renderer) *AdminHandler {
	return &AdminHandler{
		queries:      store.New(db),
		renderer:     renderer,
		eventService: service.NewEventService(db),
	}
}

// DashboardData holds the entity counts for the dashboard template.
type DashboardData struct {
	Users     int64
	News      int64
	Documents int64
	Events    int64
	Deputies  int64
	FAQ       int64
	LogEvents int64
}

// Dashboard renders the admin dashboard with per-entity counts.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var data DashboardData
	var err error

	counts := []struct {
		dst   *int64
		count func() (int64, error)
	}{
		{&data.Users, func() (int64, error) { return h.queries.CountUsers(ctx) }},
		{&data.News, func() (int64, error) { return h.queries.CountNews(ctx) }},
		{&data.Documents, func() (int64, error) { return h.queries.CountDocuments(ctx) }},
		{&data.Events, func() (int64, error) { return h.queries.CountEvents(ctx) }},
		{&data.Deputies, func() (int64, error) { return h.queries.CountDeputies(ctx) }},
		{&data.FAQ, func() (int64, error) { return h.queries.CountFAQ(ctx) }},
		{&data.LogEvents, func() (int64, error) { return h.queries.CountLogEvents(ctx) }},
	}
	for _, c := range counts {
		if *c.dst, err = c.count(); err != nil {
			logAndInternalError(w, "failed to count entities", "error", err)
			return
		}
	}

	h.render(w, r, "admin/dashboard", "Панель управления", data)
}

// EventLogData holds data for the admin event log template.
type EventLogData struct {
	Events []model.LogEvent
	Limit  int64
}

// Events renders the most recent persisted application events.
func (h *AdminHandler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventService.RecentEvents(r.Context(), eventLogLimit)
	if err != nil {
		logAndInternalError(w, "failed to list log events", "error", err)
		return
	}

	h.render(w, r, "admin/events", "Журнал событий", EventLogData{
		Events: events,
		Limit:  eventLogLimit,
	})
}

func (h *AdminHandler) render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	if err := h.renderer.Render(w, r, name, render.TemplateData{
		Title: title,
		Data:  data,
		User:  middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "failed to render admin template", "error", err, "template", name)
	}
}
