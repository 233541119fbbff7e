// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/citycouncil/council-go/internal/auth"
	"github.com/citycouncil/council-go/internal/middleware"
	"github.com/citycouncil/council-go/internal/model"
	"github.com/citycouncil/council-go/internal/render"
	"github.com/citycouncil/council-go/internal/service"
	"github.com/citycouncil/council-go/internal/store"
)

// Registration form limits.
const (
	minPasswordLength = 6
	minNameLength     = 2
	maxNameLength     = 120
)

// msgInvalidCredentials is the single message for every login failure:
// unknown email, wrong password and deactivated account all read the same.
const msgInvalidCredentials = "Неверный email или пароль"

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	queries         *store.Queries
	renderer        *render.Renderer
	sessionManager  *scs.SessionManager
	eventService    *service.EventService
	loginProtection *middleware.LoginProtection
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(db *sql.DB, renderer *render.Renderer, sm *scs.SessionManager, lp *middleware.LoginProtection) *AuthHandler {
	return &AuthHandler{
		queries:         store.New(db),
		renderer:        renderer,
		sessionManager:  sm,
		eventService:    service.NewEventService(db),
		loginProtection: lp,
	}
}

// LoginData holds data for the login template.
type LoginData struct {
	Email string
	Next  string
	Error string
}

// RegisterData holds data for the registration template.
type RegisterData struct {
	Values map[string]string
	Errors map[string]string
}

// LoginForm renders the login page. Already-authenticated users are sent
// on: admins to the back-office, everyone else home.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if user := middleware.GetUser(r); user != nil {
		if user.IsAdmin() {
			http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, redirectHome, http.StatusSeeOther)
		return
	}

	h.renderLogin(w, r, LoginData{Next: sanitizeNextURL(r.URL.Query().Get("next"))})
}

// Login handles the login form submission. Any failure re-renders the form
// with the same generic message.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectLogin) {
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	next := sanitizeNextURL(r.FormValue("next"))
	clientIP := middleware.GetClientIP(r)

	if email == "" || password == "" {
		h.renderLogin(w, r, LoginData{Email: email, Next: next, Error: msgInvalidCredentials})
		return
	}

	if h.loginProtection != nil {
		if locked, _ := h.loginProtection.IsAccountLocked(email); locked {
			_ = h.eventService.LogAuthEvent(r.Context(), model.LogLevelWarning, "Login attempt on locked account",
				nil, clientIP, middleware.GetRequestURL(r), map[string]any{"email": email})
			h.renderLogin(w, r, LoginData{Email: email, Next: next,
				Error: "Слишком много неудачных попыток входа. Повторите позже."})
			return
		}
	}

	user, err := h.queries.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			slog.Debug("login attempt for unknown email", "email", email)
			_ = h.eventService.LogAuthEvent(r.Context(), model.LogLevelWarning, "Login failed: user not found",
				nil, clientIP, middleware.GetRequestURL(r), map[string]any{"email": email})
		} else {
			slog.Error("database error during login", "error", err)
		}
		// Failed attempts count for unknown emails too, otherwise the
		// limiter itself would reveal which accounts exist.
		h.recordFailure(email)
		h.renderLogin(w, r, LoginData{Email: email, Next: next, Error: msgInvalidCredentials})
		return
	}

	valid, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil {
		slog.Error("password check error", "error", err, "user_id", user.ID)
	}
	if err != nil || !valid || !user.IsActive {
		_ = h.eventService.LogAuthEvent(r.Context(), model.LogLevelWarning, "Login failed: invalid credentials",
			&user.ID, clientIP, middleware.GetRequestURL(r), map[string]any{"email": email, "active": user.IsActive})
		h.recordFailure(email)
		h.renderLogin(w, r, LoginData{Email: email, Next: next, Error: msgInvalidCredentials})
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	// Upgrade hashes created with older parameters while the plaintext
	// is available.
	if auth.NeedsRehash(user.PasswordHash) {
		if newHash, hashErr := auth.HashPassword(password); hashErr == nil {
			if updErr := h.queries.UpdateUserPassword(r.Context(), user.ID, newHash); updErr != nil {
				slog.Error("failed to re-hash password", "error", updErr, "user_id", user.ID)
			} else {
				slog.Info("password re-hashed with updated parameters", "user_id", user.ID)
			}
		}
	}

	// Session fixation defense.
	if err := h.sessionManager.RenewToken(r.Context()); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}
	h.sessionManager.Put(r.Context(), middleware.SessionKeyUserID, user.ID)

	slog.Info("user logged in", "user_id", user.ID, "email", user.Email)
	_ = h.eventService.LogAuthEvent(r.Context(), model.LogLevelInfo, "User logged in",
		&user.ID, clientIP, middleware.GetRequestURL(r), map[string]any{"email": user.Email})

	h.renderer.SetFlash(r, fmt.Sprintf("Добро пожаловать, %s!", user.Name), "success")

	switch {
	case next != "":
		http.Redirect(w, r, next, http.StatusSeeOther)
	case user.IsAdmin():
		http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
	default:
		http.Redirect(w, r, redirectHome, http.StatusSeeOther)
	}
}

// RegisterForm renders the registration page.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUser(r) != nil {
		http.Redirect(w, r, redirectHome, http.StatusSeeOther)
		return
	}
	h.renderRegister(w, r, RegisterData{Values: map[string]string{}, Errors: map[string]string{}})
}

// Register handles the registration form submission. Validation failures
// re-render the form with inline messages; there is no auto-login on
// success.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectRegister) {
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	name := strings.TrimSpace(r.FormValue("name"))
	phone := strings.TrimSpace(r.FormValue("phone"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm")

	values := map[string]string{"email": email, "name": name, "phone": phone}
	errs := map[string]string{}

	if !model.ValidateEmail(email) {
		errs["email"] = "Введите корректный email"
	}
	if nameLen := len([]rune(name)); nameLen < minNameLength || nameLen > maxNameLength {
		errs["name"] = fmt.Sprintf("Имя должно быть от %d до %d символов", minNameLength, maxNameLength)
	}
	if len(password) < minPasswordLength {
		errs["password"] = fmt.Sprintf("Пароль должен быть не короче %d символов", minPasswordLength)
	}
	if password != confirm {
		errs["confirm"] = "Пароли не совпадают"
	}

	if len(errs) > 0 {
		h.renderRegister(w, r, RegisterData{Values: values, Errors: errs})
		return
	}

	passwordHash, err := auth.HashPassword(password)
	if err != nil {
		logAndInternalError(w, "failed to hash password", "error", err)
		return
	}

	user, err := h.queries.CreateUser(r.Context(), store.CreateUserParams{
		Email:        email,
		Name:         name,
		Phone:        phone,
		PasswordHash: passwordHash,
		Role:         model.RoleUser,
		IsActive:     true,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			errs["email"] = "Этот email уже зарегистрирован"
			h.renderRegister(w, r, RegisterData{Values: values, Errors: errs})
			return
		}
		logAndInternalError(w, "failed to create user", "error", err)
		return
	}

	slog.Info("user registered", "user_id", user.ID, "email", user.Email)
	_ = h.eventService.LogAuthEvent(r.Context(), model.LogLevelInfo, "User registered",
		&user.ID, middleware.GetClientIP(r), middleware.GetRequestURL(r), map[string]any{"email": user.Email})

	flashSuccess(w, r, h.renderer, redirectLogin, "Регистрация успешна. Войдите в систему.")
}

// Logout destroys the session and redirects home.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := h.sessionManager.GetInt64(r.Context(), middleware.SessionKeyUserID)

	if userID > 0 {
		_ = h.eventService.LogAuthEvent(r.Context(), model.LogLevelInfo, "User logged out",
			&userID, middleware.GetClientIP(r), middleware.GetRequestURL(r), nil)
	}

	if err := h.sessionManager.Destroy(r.Context()); err != nil {
		slog.Error("session destroy error", "error", err)
	}

	slog.Info("user logged out", "user_id", userID)
	flashAndRedirect(w, r, h.renderer, redirectHome, "Вы вышли из системы.", "info")
}

func (h *AuthHandler) recordFailure(email string) {
	if h.loginProtection != nil {
		h.loginProtection.RecordFailedAttempt(email)
	}
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, data LoginData) {
	if err := h.renderer.Render(w, r, "auth/login", render.TemplateData{
		Title: "Вход",
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "failed to render login page", "error", err)
	}
}

func (h *AuthHandler) renderRegister(w http.ResponseWriter, r *http.Request, data RegisterData) {
	if err := h.renderer.Render(w, r, "auth/register", render.TemplateData{
		Title: "Регистрация",
		Data:  data,
	}); err != nil {
		logAndInternalError(w, "failed to render registration page", "error", err)
	}
}

// sanitizeNextURL keeps only same-site relative return URLs. Anything that
// could be interpreted as an absolute or protocol-relative URL is dropped.
func sanitizeNextURL(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") {
		return ""
	}
	if strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return ""
	}
	return next
}
