// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/citycouncil/council-go/internal/model"
)

// ParseIDParam extracts the {id} URL parameter as an int64.
func ParseIDParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// deputyCollator orders Cyrillic names the way a Russian-speaking reader
// expects; SQLite's byte ordering does not.
var deputyCollator = collate.New(language.Russian)

// sortDeputiesByName orders deputy profiles by full name using Russian
// collation rules.
func sortDeputiesByName(deputies []model.Deputy) {
	sort.SliceStable(deputies, func(i, j int) bool {
		return deputyCollator.CompareString(deputies[i].FullName, deputies[j].FullName) < 0
	})
}

// Accepted layouts for form datetime inputs. HTML datetime-local first.
var formTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// parseFormTime parses a datetime form value in any accepted layout.
func parseFormTime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range formTimeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseFormBool reports whether a checkbox form value is checked.
func parseFormBool(value string) bool {
	return value == "on" || value == "true" || value == "1"
}
