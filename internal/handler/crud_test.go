// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/citycouncil/council-go/internal/auth"
	"github.com/citycouncil/council-go/internal/model"
	"github.com/citycouncil/council-go/internal/render"
	"github.com/citycouncil/council-go/internal/service"
	"github.com/citycouncil/council-go/internal/store"
	"github.com/citycouncil/council-go/internal/testutil"
)

// newCRUDRouter mounts a resource the way main mounts them under /admin,
// with the acting admin injected into every request context.
func newCRUDRouter[T any](t *testing.T, db *sql.DB, renderer *render.Renderer, res Resource[T], admin model.User) http.Handler {
	t.Helper()
	c := NewCRUD(db, renderer, service.NewEventService(db))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, requestWithUser(req, admin))
		})
	})
	r.Route("/admin/"+res.Slug, func(rr chi.Router) { Mount(rr, c, res) })
	return r
}

func TestNewsResource_CRUD(t *testing.T) {
	db, sm, renderer := newTestEnv(t)
	admin := testutil.CreateUser(t, db, "admin@example.com", "admin123", model.RoleAdmin)
	router := newCRUDRouter(t, db, renderer, newsResource(), admin)
	queries := store.New(db)

	do := func(req *http.Request) *httptest.ResponseRecorder {
		return serveWithSession(sm, router, req)
	}

	// Create.
	form := url.Values{
		"title":        {"Решение №101 принято"},
		"body":         {"Текст решения."},
		"published_at": {"2026-03-01T10:00"},
	}
	rec := do(postForm("/admin/news", form))
	assertStatus(t, rec.Code, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != "/admin/news" {
		t.Errorf("Location = %q; want /admin/news", loc)
	}

	items, err := queries.ListAllNews(context.Background())
	if err != nil || len(items) != 1 {
		t.Fatalf("ListAllNews: %v, len=%d", err, len(items))
	}
	created := items[0]
	if created.IsPublished {
		t.Error("unchecked checkbox must create an unpublished item")
	}
	if !created.CreatedByID.Valid || created.CreatedByID.Int64 != admin.ID {
		t.Errorf("created_by_id = %+v; want the acting admin", created.CreatedByID)
	}

	// List shows all rows including the unpublished one, with visible ids.
	rec = do(httptest.NewRequest(http.MethodGet, "/admin/news", nil))
	assertStatus(t, rec.Code, http.StatusOK)
	if !strings.Contains(rec.Body.String(), fmt.Sprintf("[row:%d", created.ID)) {
		t.Errorf("admin list missing the row, body: %s", rec.Body.String())
	}

	// Edit form carries current values.
	rec = do(httptest.NewRequest(http.MethodGet, fmt.Sprintf("/admin/news/%d", created.ID), nil))
	assertStatus(t, rec.Code, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "Решение №101") {
		t.Errorf("edit form missing values, body: %s", rec.Body.String())
	}

	// Update via plain POST.
	form.Set("title", "Решение №101 отменено")
	form.Set("is_published", "on")
	rec = do(postForm(fmt.Sprintf("/admin/news/%d", created.ID), form))
	assertStatus(t, rec.Code, http.StatusSeeOther)

	updated, err := queries.GetNewsByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetNewsByID: %v", err)
	}
	if updated.Title != "Решение №101 отменено" || !updated.IsPublished {
		t.Errorf("update not applied: %+v", updated)
	}

	// Delete via POST.
	rec = do(postForm(fmt.Sprintf("/admin/news/%d/delete", created.ID), url.Values{}))
	assertStatus(t, rec.Code, http.StatusSeeOther)
	if _, err := queries.GetNewsByID(context.Background(), created.ID); err == nil {
		t.Error("news item should be gone after delete")
	}

	// Mutations landed in the event log, attributed to the admin.
	events, err := queries.ListLogEvents(context.Background(), 10)
	if err != nil {
		t.Fatalf("ListLogEvents: %v", err)
	}
	var actions []string
	for _, e := range events {
		actions = append(actions, e.Message)
		if !e.UserID.Valid || e.UserID.Int64 != admin.ID {
			t.Errorf("event %q not attributed to admin: %+v", e.Message, e.UserID)
		}
	}
	joined := strings.Join(actions, ",")
	for _, want := range []string{"news item created", "news item updated", "news item deleted"} {
		if !strings.Contains(joined, want) {
			t.Errorf("event log missing %q, got %v", want, actions)
		}
	}
}

func TestNewsResource_ValidationError(t *testing.T) {
	db, sm, renderer := newTestEnv(t)
	admin := testutil.CreateUser(t, db, "admin@example.com", "admin123", model.RoleAdmin)
	router := newCRUDRouter(t, db, renderer, newsResource(), admin)

	rec := serveWithSession(sm, router, postForm("/admin/news", url.Values{"body": {"Текст."}}))

	assertStatus(t, rec.Code, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != "/admin/news/new" {
		t.Errorf("Location = %q; want back to the new form", loc)
	}
	if n, _ := store.New(db).CountNews(context.Background()); n != 0 {
		t.Errorf("no row should be created on validation failure, count=%d", n)
	}
}

func TestEventsResource_BadStartTime(t *testing.T) {
	db, sm, renderer := newTestEnv(t)
	admin := testutil.CreateUser(t, db, "admin@example.com", "admin123", model.RoleAdmin)
	router := newCRUDRouter(t, db, renderer, eventsResource(), admin)

	form := url.Values{"title": {"Заседание"}, "start_time": {"not-a-date"}}
	rec := serveWithSession(sm, router, postForm("/admin/events", form))

	assertStatus(t, rec.Code, http.StatusSeeOther)
	if n, _ := store.New(db).CountEvents(context.Background()); n != 0 {
		t.Errorf("no event should be created from a bad start time, count=%d", n)
	}
}

func TestUsersResource_PasswordHandling(t *testing.T) {
	db, sm, renderer := newTestEnv(t)
	admin := testutil.CreateUser(t, db, "admin@example.com", "admin123", model.RoleAdmin)
	router := newCRUDRouter(t, db, renderer, usersResource(), admin)
	queries := store.New(db)

	// Create with password.
	form := url.Values{
		"email":     {"clerk@example.com"},
		"name":      {"Канцелярия"},
		"role":      {model.RoleUser},
		"password":  {"secret1"},
		"is_active": {"on"},
	}
	rec := serveWithSession(sm, router, postForm("/admin/users", form))
	assertStatus(t, rec.Code, http.StatusSeeOther)

	clerk, err := queries.GetUserByEmail(context.Background(), "clerk@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if ok, _ := auth.CheckPassword("secret1", clerk.PasswordHash); !ok {
		t.Error("created user's password does not verify")
	}

	// Update with an empty password keeps the old hash.
	form.Set("password", "")
	form.Set("name", "Секретариат")
	rec = serveWithSession(sm, router, postForm(fmt.Sprintf("/admin/users/%d", clerk.ID), form))
	assertStatus(t, rec.Code, http.StatusSeeOther)

	kept, _ := queries.GetUserByID(context.Background(), clerk.ID)
	if kept.Name != "Секретариат" {
		t.Errorf("name not updated: %q", kept.Name)
	}
	if kept.PasswordHash != clerk.PasswordHash {
		t.Error("empty password field must not change the stored hash")
	}

	// Update with a new password replaces it atomically.
	form.Set("password", "another1")
	rec = serveWithSession(sm, router, postForm(fmt.Sprintf("/admin/users/%d", clerk.ID), form))
	assertStatus(t, rec.Code, http.StatusSeeOther)

	changed, _ := queries.GetUserByID(context.Background(), clerk.ID)
	if ok, _ := auth.CheckPassword("another1", changed.PasswordHash); !ok {
		t.Error("updated password does not verify")
	}

	// Short password on create is rejected.
	form.Set("email", "short@example.com")
	form.Set("password", "123")
	rec = serveWithSession(sm, router, postForm("/admin/users", form))
	assertStatus(t, rec.Code, http.StatusSeeOther)
	if _, err := queries.GetUserByEmail(context.Background(), "short@example.com"); err == nil {
		t.Error("short password must not create a user")
	}
}

func TestResource_NotFoundFlashes(t *testing.T) {
	db, sm, renderer := newTestEnv(t)
	admin := testutil.CreateUser(t, db, "admin@example.com", "admin123", model.RoleAdmin)
	router := newCRUDRouter(t, db, renderer, faqResource(), admin)

	rec := serveWithSession(sm, router, httptest.NewRequest(http.MethodGet, "/admin/faq/4242", nil))

	assertStatus(t, rec.Code, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != "/admin/faq" {
		t.Errorf("Location = %q; want back to the list", loc)
	}
}
