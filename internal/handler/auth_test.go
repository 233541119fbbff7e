// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/citycouncil/council-go/internal/middleware"
	"github.com/citycouncil/council-go/internal/model"
	"github.com/citycouncil/council-go/internal/store"
	"github.com/citycouncil/council-go/internal/testutil"
)

func postForm(path string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
	return req
}

// newCookieClient returns a client that keeps session cookies and reports
// redirects instead of following them.
func newCookieClient() (*http.Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}, nil
}

func TestRegister_ValidationErrors(t *testing.T) {
	db, sm, renderer := newTestEnv(t)
	h := NewAuthHandler(db, renderer, sm, nil)

	tests := []struct {
		name    string
		form    url.Values
		wantErr string
	}{
		{
			name: "email without at sign",
			form: url.Values{
				"email": {"not-an-email"}, "name": {"Иван"},
				"password": {"secret1"}, "confirm": {"secret1"},
			},
			wantErr: "email:",
		},
		{
			name: "name too short",
			form: url.Values{
				"email": {"ivan@example.com"}, "name": {"И"},
				"password": {"secret1"}, "confirm": {"secret1"},
			},
			wantErr: "name:",
		},
		{
			name: "password too short",
			form: url.Values{
				"email": {"ivan@example.com"}, "name": {"Иван"},
				"password": {"12345"}, "confirm": {"12345"},
			},
			wantErr: "password:",
		},
		{
			name: "confirm mismatch",
			form: url.Values{
				"email": {"ivan@example.com"}, "name": {"Иван"},
				"password": {"secret1"}, "confirm": {"secret2"},
			},
			wantErr: "confirm:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serveWithSession(sm, http.HandlerFunc(h.Register), postForm("/auth/register", tt.form))

			// Validation failures re-render the form, not a redirect.
			assertStatus(t, rec.Code, http.StatusOK)
			if !strings.Contains(rec.Body.String(), tt.wantErr) {
				t.Errorf("expected %q error in body: %s", tt.wantErr, rec.Body.String())
			}
		})
	}

	if n, err := store.New(db).CountUsers(context.Background()); err != nil || n != 0 {
		t.Errorf("no user should be created on validation failure, count=%d err=%v", n, err)
	}
}

func TestRegister_Success(t *testing.T) {
	db, sm, renderer := newTestEnv(t)
	h := NewAuthHandler(db, renderer, sm, nil)

	form := url.Values{
		"email": {"ivan@example.com"}, "name": {"Иван Пользователь"},
		"password": {"secret1"}, "confirm": {"secret1"},
	}
	rec := serveWithSession(sm, http.HandlerFunc(h.Register), postForm("/auth/register", form))

	assertStatus(t, rec.Code, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != redirectLogin {
		t.Errorf("Location = %q; want %q", loc, redirectLogin)
	}

	user, err := store.New(db).GetUserByEmail(context.Background(), "ivan@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if user.Role != model.RoleUser || !user.IsActive {
		t.Errorf("new user role=%q active=%v; want user/active", user.Role, user.IsActive)
	}
	if user.PasswordHash == "secret1" || !strings.HasPrefix(user.PasswordHash, "$argon2id$") {
		t.Error("password must be stored as an argon2id hash")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db, sm, renderer := newTestEnv(t)
	h := NewAuthHandler(db, renderer, sm, nil)

	testutil.CreateUser(t, db, "taken@example.com", "secret1", model.RoleUser)

	form := url.Values{
		"email": {"taken@example.com"}, "name": {"Иван"},
		"password": {"secret1"}, "confirm": {"secret1"},
	}
	rec := serveWithSession(sm, http.HandlerFunc(h.Register), postForm("/auth/register", form))

	assertStatus(t, rec.Code, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "уже зарегистрирован") {
		t.Errorf("expected duplicate email warning, body: %s", rec.Body.String())
	}
}

func TestLogin_GenericFailureMessage(t *testing.T) {
	db, sm, renderer := newTestEnv(t)
	h := NewAuthHandler(db, renderer, sm, nil)

	testutil.CreateUser(t, db, "user@example.com", "correct1", model.RoleUser)
	inactive := testutil.CreateUser(t, db, "gone@example.com", "correct1", model.RoleUser)
	if _, err := store.New(db).UpdateUser(context.Background(), store.UpdateUserParams{
		ID: inactive.ID, Email: inactive.Email, Name: inactive.Name, Role: inactive.Role, IsActive: false,
	}); err != nil {
		t.Fatalf("deactivating user: %v", err)
	}

	cases := []struct {
		name  string
		email string
		pass  string
	}{
		{"unknown email", "nobody@example.com", "whatever1"},
		{"wrong password", "user@example.com", "wrong111"},
		{"inactive account", "gone@example.com", "correct1"},
	}

	var bodies []string
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := url.Values{"email": {tc.email}, "password": {tc.pass}}
			rec := serveWithSession(sm, http.HandlerFunc(h.Login), postForm("/auth/login", form))

			assertStatus(t, rec.Code, http.StatusOK)
			if !strings.Contains(rec.Body.String(), msgInvalidCredentials) {
				t.Errorf("expected generic failure message, body: %s", rec.Body.String())
			}
			bodies = append(bodies, rec.Body.String())
		})
	}

	// The three failure modes must be indistinguishable apart from the
	// echoed email value.
	for i := 1; i < len(bodies); i++ {
		a := strings.Replace(bodies[0], cases[0].email, "X", 1)
		b := strings.Replace(bodies[i], cases[i].email, "X", 1)
		if a != b {
			t.Errorf("failure responses differ between %q and %q", cases[0].name, cases[i].name)
		}
	}
}

func TestLogin_Success(t *testing.T) {
	db, sm, renderer := newTestEnv(t)
	h := NewAuthHandler(db, renderer, sm, nil)

	testutil.CreateUser(t, db, "user@example.com", "correct1", model.RoleUser)
	testutil.CreateUser(t, db, "admin@example.com", "correct1", model.RoleAdmin)

	t.Run("regular user goes home", func(t *testing.T) {
		form := url.Values{"email": {"user@example.com"}, "password": {"correct1"}}
		rec := serveWithSession(sm, http.HandlerFunc(h.Login), postForm("/auth/login", form))

		assertStatus(t, rec.Code, http.StatusSeeOther)
		if loc := rec.Header().Get("Location"); loc != redirectHome {
			t.Errorf("Location = %q; want %q", loc, redirectHome)
		}
		if len(rec.Result().Cookies()) == 0 {
			t.Error("expected a session cookie on successful login")
		}
	})

	t.Run("admin goes to back-office", func(t *testing.T) {
		form := url.Values{"email": {"admin@example.com"}, "password": {"correct1"}}
		rec := serveWithSession(sm, http.HandlerFunc(h.Login), postForm("/auth/login", form))

		assertStatus(t, rec.Code, http.StatusSeeOther)
		if loc := rec.Header().Get("Location"); loc != redirectAdmin {
			t.Errorf("Location = %q; want %q", loc, redirectAdmin)
		}
	})

	t.Run("next parameter wins", func(t *testing.T) {
		form := url.Values{
			"email": {"user@example.com"}, "password": {"correct1"},
			"next": {"/admin/news?page=2"},
		}
		rec := serveWithSession(sm, http.HandlerFunc(h.Login), postForm("/auth/login", form))

		assertStatus(t, rec.Code, http.StatusSeeOther)
		if loc := rec.Header().Get("Location"); loc != "/admin/news?page=2" {
			t.Errorf("Location = %q; want the next URL", loc)
		}
	})
}

func TestLoginForm_ShowsNext(t *testing.T) {
	db, sm, renderer := newTestEnv(t)
	h := NewAuthHandler(db, renderer, sm, nil)

	req := httptest.NewRequest(http.MethodGet, "/auth/login?next=%2Fadmin%2Fnews", nil)
	rec := serveWithSession(sm, http.HandlerFunc(h.LoginForm), req)

	assertStatus(t, rec.Code, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "[next:/admin/news]") {
		t.Errorf("expected next value carried into the form, body: %s", rec.Body.String())
	}
}

func TestLogout(t *testing.T) {
	db, sm, renderer := newTestEnv(t)
	h := NewAuthHandler(db, renderer, sm, nil)

	rec := serveWithSession(sm, http.HandlerFunc(h.Logout), postForm("/auth/logout", url.Values{}))

	assertStatus(t, rec.Code, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != redirectHome {
		t.Errorf("Location = %q; want %q", loc, redirectHome)
	}
}

func TestLogout_GetClearsSession(t *testing.T) {
	db, sm, renderer := newTestEnv(t)
	user := testutil.CreateUser(t, db, "bye@example.com", "secret123", model.RoleUser)
	h := NewAuthHandler(db, renderer, sm, nil)

	// Logout is reachable by plain link as well as by form post, so both
	// methods share the handler.
	r := chi.NewRouter()
	r.Use(sm.LoadAndSave)
	r.Get("/signin", func(w http.ResponseWriter, req *http.Request) {
		sm.Put(req.Context(), middleware.SessionKeyUserID, user.ID)
	})
	r.Get("/whoami", func(w http.ResponseWriter, req *http.Request) {
		if sm.Exists(req.Context(), middleware.SessionKeyUserID) {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	r.Get(RouteAuth+RouteLogout, h.Logout)
	r.Post(RouteAuth+RouteLogout, h.Logout)

	srv := httptest.NewServer(r)
	defer srv.Close()

	client, err := newCookieClient()
	if err != nil {
		t.Fatalf("cookie client: %v", err)
	}

	mustGet := func(path string) *http.Response {
		t.Helper()
		resp, err := client.Get(srv.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		_ = resp.Body.Close()
		return resp
	}

	mustGet("/signin")
	if resp := mustGet("/whoami"); resp.StatusCode != http.StatusOK {
		t.Fatalf("before logout: status = %d, want 200", resp.StatusCode)
	}

	resp := mustGet(RouteAuth + RouteLogout)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("GET logout: status = %d, want 303", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != redirectHome {
		t.Errorf("Location = %q; want %q", loc, redirectHome)
	}

	if resp := mustGet("/whoami"); resp.StatusCode != http.StatusNoContent {
		t.Errorf("after logout: status = %d, want 204; session should be gone", resp.StatusCode)
	}
}

func TestSanitizeNextURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/admin/news", "/admin/news"},
		{"/admin/news?page=2", "/admin/news?page=2"},
		{"https://evil.example", ""},
		{"//evil.example", ""},
		{"/\\evil.example", ""},
		{"admin", ""},
	}
	for _, tt := range tests {
		if got := sanitizeNextURL(tt.in); got != tt.want {
			t.Errorf("sanitizeNextURL(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
