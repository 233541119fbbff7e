// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/citycouncil/council-go/internal/middleware"
	"github.com/citycouncil/council-go/internal/model"
	"github.com/citycouncil/council-go/internal/render"
	"github.com/citycouncil/council-go/internal/testutil"
)

// testTemplates is a minimal template set covering every page the handlers
// render. Pages emit just enough of their data for assertions.
func testTemplates() fstest.MapFS {
	base := &fstest.MapFile{Data: []byte(
		`{{define "base"}}{{if .Flash}}[flash-{{.FlashType}}:{{.Flash}}]{{end}}{{template "content" .}}{{end}}`)}

	page := func(body string) *fstest.MapFile {
		return &fstest.MapFile{Data: []byte(`{{define "content"}}` + body + `{{end}}`)}
	}

	return fstest.MapFS{
		"layouts/base.html":  base,
		"layouts/admin.html": &fstest.MapFile{Data: []byte(``)},

		"frontend/home.html":          page(`{{range .Data.News}}[news:{{.Title}}]{{end}}{{range .Data.Events}}[event:{{.Title}}]{{end}}`),
		"frontend/about.html":         page(`about`),
		"frontend/news.html":          page(`{{range .Data}}[news:{{.Title}}]{{end}}`),
		"frontend/news_detail.html":   page(`news:{{.Data.Title}}`),
		"frontend/documents.html":     page(`{{range .Data}}[doc:{{.Title}}]{{end}}`),
		"frontend/events.html":        page(`{{range .Data}}[event:{{.Title}}]{{end}}`),
		"frontend/deputies.html":      page(`{{range .Data}}[deputy:{{.FullName}}]{{end}}`),
		"frontend/deputy_detail.html": page(`deputy:{{.Data.FullName}}`),
		"frontend/faq.html":           page(`{{range .Data}}[faq:{{.Question}}]{{end}}`),
		"frontend/search.html":        page(`{{if .Data.Performed}}results:{{.Data.Total}}{{else}}prompt{{end}}`),
		"frontend/not_found.html":     page(`not found`),

		"auth/login.html":    page(`login{{with .Data.Error}}[error:{{.}}]{{end}}[next:{{.Data.Next}}]`),
		"auth/register.html": page(`register{{range $k, $v := .Data.Errors}}[{{$k}}:{{$v}}]{{end}}`),

		"admin/dashboard.html": page(`users:{{.Data.Users}} news:{{.Data.News}} documents:{{.Data.Documents}} events:{{.Data.Events}} deputies:{{.Data.Deputies}} faq:{{.Data.FAQ}}`),
		"admin/events.html":    page(`{{range .Data.Events}}[{{.Level}}:{{.Message}}]{{end}}`),
		"admin/resource_list.html": page(
			`list:{{.Data.Title}}{{range .Data.Rows}}[row:{{.ID}}{{range .Cells}}|{{.}}{{end}}]{{end}}`),
		"admin/resource_form.html": page(
			`form:{{.Data.Action}}{{range .Data.Fields}}[{{.Name}}={{.Value}}]{{end}}`),
	}
}

// newTestRenderer builds a renderer over the test template set.
func newTestRenderer(t *testing.T, sm *scs.SessionManager) *render.Renderer {
	t.Helper()
	renderer, err := render.New(render.Config{
		TemplatesFS:    testTemplates(),
		SessionManager: sm,
		IsDev:          true,
	})
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	return renderer
}

// testSessionManager creates an in-memory session manager for testing.
func testSessionManager(t *testing.T) *scs.SessionManager {
	t.Helper()
	sm := scs.New()
	sm.Lifetime = 24 * time.Hour
	return sm
}

// newTestEnv creates the shared handler test environment.
func newTestEnv(t *testing.T) (*sql.DB, *scs.SessionManager, *render.Renderer) {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)
	sm := testSessionManager(t)
	return db, sm, newTestRenderer(t, sm)
}

// serveWithSession serves a single request through the session middleware
// so handlers can read and write session data.
func serveWithSession(sm *scs.SessionManager, h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	sm.LoadAndSave(h).ServeHTTP(rec, r)
	return rec
}

// requestWithURLParams adds chi URL parameters to a request.
func requestWithURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// requestWithUser puts a user into the request context the way LoadUser does.
func requestWithUser(r *http.Request, user model.User) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), middleware.ContextKeyUser, user))
}

// assertStatus checks if the response status code matches the expected value.
func assertStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status = %d; want %d", got, want)
	}
}
