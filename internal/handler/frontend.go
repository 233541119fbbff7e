// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides HTTP handlers for the application.
package handler

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/citycouncil/council-go/internal/middleware"
	"github.com/citycouncil/council-go/internal/model"
	"github.com/citycouncil/council-go/internal/render"
	"github.com/citycouncil/council-go/internal/service"
	"github.com/citycouncil/council-go/internal/store"
)

// homeFeedLimit caps each half of the home feed.
const homeFeedLimit = 5

// FrontendHandler handles the public site routes.
type FrontendHandler struct {
	queries  *store.Queries
	renderer *render.Renderer
	search   *service.SearchService
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(db *sql.DB, renderer *render.Renderer) *FrontendHandler {
	return &FrontendHandler{
		queries:  store.New(db),
		renderer: renderer,
		search:   service.NewSearchService(db),
	}
}

// HomeData holds data for the homepage template.
type HomeData struct {
	News   []model.News
	Events []model.Event
}

// Home renders the homepage feed: recent published news alongside the
// nearest public events.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	news, err := h.queries.ListRecentNews(r.Context(), homeFeedLimit)
	if err != nil {
		logAndInternalError(w, "failed to list recent news", "error", err)
		return
	}

	events, err := h.queries.ListPublicEventsLimit(r.Context(), homeFeedLimit)
	if err != nil {
		logAndInternalError(w, "failed to list home feed events", "error", err)
		return
	}

	h.render(w, r, "frontend/home", "Городской совет", HomeData{News: news, Events: events})
}

// About renders the static about page.
func (h *FrontendHandler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "frontend/about", "О совете", nil)
}

// NewsList renders all published news, newest first.
func (h *FrontendHandler) NewsList(w http.ResponseWriter, r *http.Request) {
	news, err := h.queries.ListPublishedNews(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list news", "error", err)
		return
	}
	h.render(w, r, "frontend/news", "Новости", news)
}

// NewsDetail renders a single published news item. An unpublished id gets
// the same 404 page as a missing one, so drafts are not discoverable by
// probing ids.
func (h *FrontendHandler) NewsDetail(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		h.NotFound(w, r)
		return
	}

	item, err := h.queries.GetPublishedNewsByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.NotFound(w, r)
			return
		}
		logAndInternalError(w, "failed to get news item", "error", err, "news_id", id)
		return
	}

	h.render(w, r, "frontend/news_detail", item.Title, item)
}

// Documents renders published documents, newest first.
func (h *FrontendHandler) Documents(w http.ResponseWriter, r *http.Request) {
	docs, err := h.queries.ListPublishedDocuments(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list documents", "error", err)
		return
	}
	h.render(w, r, "frontend/documents", "Документы", docs)
}

// Events renders public events ordered by start time, soonest first.
func (h *FrontendHandler) Events(w http.ResponseWriter, r *http.Request) {
	events, err := h.queries.ListPublicEvents(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list events", "error", err)
		return
	}
	h.render(w, r, "frontend/events", "Мероприятия", events)
}

// Deputies renders all deputy profiles ordered by name under Russian
// collation rules.
func (h *FrontendHandler) Deputies(w http.ResponseWriter, r *http.Request) {
	deputies, err := h.queries.ListDeputies(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list deputies", "error", err)
		return
	}
	sortDeputiesByName(deputies)
	h.render(w, r, "frontend/deputies", "Депутаты", deputies)
}

// DeputyDetail renders a single deputy profile.
func (h *FrontendHandler) DeputyDetail(w http.ResponseWriter, r *http.Request) {
	id, err := ParseIDParam(r)
	if err != nil {
		h.NotFound(w, r)
		return
	}

	deputy, err := h.queries.GetDeputyByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			h.NotFound(w, r)
			return
		}
		logAndInternalError(w, "failed to get deputy", "error", err, "deputy_id", id)
		return
	}

	h.render(w, r, "frontend/deputy_detail", deputy.FullName, deputy)
}

// FAQ renders published FAQ entries in insertion order.
func (h *FrontendHandler) FAQ(w http.ResponseWriter, r *http.Request) {
	faqs, err := h.queries.ListPublishedFAQ(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to list faq", "error", err)
		return
	}
	h.render(w, r, "frontend/faq", "Вопросы и ответы", faqs)
}

// Search renders cross-entity search results. An empty or whitespace query
// yields the no-query prompt state rather than an empty result set.
func (h *FrontendHandler) Search(w http.ResponseWriter, r *http.Request) {
	results, err := h.search.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		logAndInternalError(w, "search failed", "error", err, "query", r.URL.Query().Get("q"))
		return
	}
	h.render(w, r, "frontend/search", "Поиск", results)
}

// NotFound renders the 404 page.
func (h *FrontendHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	if err := h.renderer.RenderStatus(w, r, "frontend/not_found", http.StatusNotFound, render.TemplateData{
		Title: "Страница не найдена",
		User:  middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "failed to render 404 page", "error", err)
	}
}

func (h *FrontendHandler) render(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	if err := h.renderer.Render(w, r, name, render.TemplateData{
		Title: title,
		Data:  data,
		User:  middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "failed to render template", "error", err, "template", name)
	}
}
