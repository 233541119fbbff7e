// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"strings"

	"github.com/citycouncil/council-go/internal/model"
	"github.com/citycouncil/council-go/internal/store"
)

// SearchService aggregates substring search across news, documents,
// deputies and FAQ entries.
type SearchService struct {
	queries *store.Queries
}

// NewSearchService creates a new search service.
func NewSearchService(db *sql.DB) *SearchService {
	return &SearchService{queries: store.New(db)}
}

// SearchResults holds the grouped matches for a query. Query carries the
// trimmed term so templates can distinguish the empty-prompt state from a
// search that returned nothing.
type SearchResults struct {
	Query     string
	News      []model.News
	Documents []model.Document
	Deputies  []model.Deputy
	FAQs      []model.FAQ
}

// Performed reports whether a search was actually run, as opposed to the
// page being opened with an empty query.
func (r SearchResults) Performed() bool {
	return r.Query != ""
}

// Total returns the combined number of matches across all entity groups.
func (r SearchResults) Total() int {
	return len(r.News) + len(r.Documents) + len(r.Deputies) + len(r.FAQs)
}

// Search runs a case-insensitive substring match over news titles and
// bodies, document titles and summaries, deputy names and bios, and FAQ
// questions and answers. Whitespace-only queries are treated as empty and
// no search is performed.
func (s *SearchService) Search(ctx context.Context, query string) (SearchResults, error) {
	results := SearchResults{Query: strings.TrimSpace(query)}
	if results.Query == "" {
		return results, nil
	}

	var err error
	if results.News, err = s.queries.SearchNews(ctx, results.Query); err != nil {
		return results, err
	}
	if results.Documents, err = s.queries.SearchDocuments(ctx, results.Query); err != nil {
		return results, err
	}
	if results.Deputies, err = s.queries.SearchDeputies(ctx, results.Query); err != nil {
		return results, err
	}
	if results.FAQs, err = s.queries.SearchFAQ(ctx, results.Query); err != nil {
		return results, err
	}

	return results, nil
}
