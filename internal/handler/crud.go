// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/citycouncil/council-go/internal/middleware"
	"github.com/citycouncil/council-go/internal/model"
	"github.com/citycouncil/council-go/internal/render"
	"github.com/citycouncil/council-go/internal/service"
	"github.com/citycouncil/council-go/internal/store"
)

// Form field types understood by the admin resource form template.
const (
	FieldText     = "text"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldURL      = "url"
	FieldTextarea = "textarea"
	FieldDateTime = "datetime-local"
	FieldCheckbox = "checkbox"
	FieldSelect   = "select"
)

// FieldOption is one choice of a select field.
type FieldOption struct {
	Value string
	Label string
}

// Field describes one form input of an admin resource.
type Field struct {
	Name     string
	Label    string
	Type     string
	Required bool
	Options  []FieldOption
}

// Resource describes one admin-managed entity. The CRUD engine is
// instantiated once per entity from such a descriptor; the closures bind
// it to the store.
type Resource[T any] struct {
	Singular string // log noun, e.g. "news item"
	Title    string // list page title
	Slug     string // path segment under /admin
	Columns  []string
	Fields   []Field

	ID     func(T) int64
	Row    func(T) []string     // list cells, aligned with Columns
	Values func(T) url.Values   // form values for the edit view

	List   func(ctx context.Context, q *store.Queries) ([]T, error)
	Get    func(ctx context.Context, q *store.Queries, id int64) (T, error)
	Create func(ctx context.Context, q *store.Queries, form url.Values, actorID sql.NullInt64) (T, error)
	Update func(ctx context.Context, q *store.Queries, id int64, form url.Values) (T, error)
	Delete func(ctx context.Context, q *store.Queries, id int64) error
}

// formError carries a user-facing validation message out of a resource
// closure. Anything else is treated as an internal error.
type formError struct {
	msg string
}

func (e *formError) Error() string { return e.msg }

// errForm builds a formError.
func errForm(msg string) error { return &formError{msg: msg} }

// CRUD holds dependencies shared by all admin resources.
type CRUD struct {
	db       *sql.DB
	queries  *store.Queries
	renderer *render.Renderer
	events   *service.EventService
}

// NewCRUD creates the shared CRUD dependencies.
func NewCRUD(db *sql.DB, renderer *render.Renderer, events *service.EventService) *CRUD {
	return &CRUD{
		db:       db,
		queries:  store.New(db),
		renderer: renderer,
		events:   events,
	}
}

// ResourceRow is one line of the admin list view.
type ResourceRow struct {
	ID    int64
	Cells []string
}

// ResourceListData holds data for the admin list template.
type ResourceListData struct {
	Title    string
	BasePath string
	Columns  []string
	Rows     []ResourceRow
}

// FieldView is a field with its current value for the form template.
type FieldView struct {
	Field
	Value   string
	Checked bool
}

// ResourceFormData holds data for the admin form template.
type ResourceFormData struct {
	Title        string
	Action       string
	DeleteAction string
	BasePath     string
	IsNew        bool
	Fields       []FieldView
}

// Mount registers the resource's CRUD routes on the router, which the
// caller mounts under /admin/<slug>. Updates are plain POSTs to the entity
// URL; deletes are POSTs to /{id}/delete so a form can express them.
func Mount[T any](r chi.Router, c *CRUD, res Resource[T]) {
	r.Get(RouteRoot, listResource(c, res))
	r.Get(RouteSuffixNew, newResourceForm(c, res))
	r.Post(RouteRoot, createResource(c, res))
	r.Get(RouteParamID, editResourceForm(c, res))
	r.Post(RouteParamID, updateResource(c, res))
	r.Post(RouteParamID+RouteSuffixDelete, deleteResource(c, res))
}

func (c *CRUD) basePath(slug string) string {
	return redirectAdmin + "/" + slug
}

func (c *CRUD) renderResource(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	if err := c.renderer.Render(w, r, name, render.TemplateData{
		Title: title,
		Data:  data,
		User:  middleware.GetUser(r),
	}); err != nil {
		logAndInternalError(w, "failed to render admin template", "error", err, "template", name)
	}
}

// withTx runs fn inside a transaction so multi-statement mutations (such
// as a user update with a password change) land atomically.
func (c *CRUD) withTx(ctx context.Context, fn func(q *store.Queries) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(c.queries.WithTx(tx)); err != nil {
		return err
	}
	return tx.Commit()
}

// logMutation records an admin mutation in the event log, attributed to
// the acting user.
func (c *CRUD) logMutation(r *http.Request, action, singular string, id int64) {
	_ = c.events.LogAdminEvent(r.Context(), model.LogLevelInfo, singular+" "+action,
		middleware.GetUserIDPtr(r), middleware.GetClientIP(r), middleware.GetRequestURL(r),
		map[string]any{"id": id})
}

// mutationError turns a resource closure error into a user response: form
// validation messages flash back to the form, everything else is a 500.
func mutationError(w http.ResponseWriter, r *http.Request, c *CRUD, backURL, singular string, err error) {
	var fe *formError
	switch {
	case errors.As(err, &fe):
		flashError(w, r, c.renderer, backURL, fe.msg)
	case store.IsUniqueViolation(err):
		flashError(w, r, c.renderer, backURL, "Этот email уже используется")
	case errors.Is(err, store.ErrInvalidEmail):
		flashError(w, r, c.renderer, backURL, "Введите корректный email")
	default:
		logAndInternalError(w, "admin mutation failed", "error", err, "entity", singular)
	}
}

func listResource[T any](c *CRUD, res Resource[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := res.List(r.Context(), c.queries)
		if err != nil {
			logAndInternalError(w, "failed to list entities", "error", err, "entity", res.Singular)
			return
		}

		rows := make([]ResourceRow, 0, len(items))
		for _, item := range items {
			rows = append(rows, ResourceRow{ID: res.ID(item), Cells: res.Row(item)})
		}

		c.renderResource(w, r, "admin/resource_list", res.Title, ResourceListData{
			Title:    res.Title,
			BasePath: c.basePath(res.Slug),
			Columns:  res.Columns,
			Rows:     rows,
		})
	}
}

func newResourceForm[T any](c *CRUD, res Resource[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		base := c.basePath(res.Slug)
		c.renderResource(w, r, "admin/resource_form", res.Title, ResourceFormData{
			Title:    res.Title,
			Action:   base,
			BasePath: base,
			IsNew:    true,
			Fields:   fieldViews(res.Fields, url.Values{}),
		})
	}
}

func createResource[T any](c *CRUD, res Resource[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		base := c.basePath(res.Slug)
		if !parseFormOrRedirect(w, r, c.renderer, base+RouteSuffixNew) {
			return
		}

		actorID := sql.NullInt64{}
		if id := middleware.GetUserID(r); id > 0 {
			actorID = sql.NullInt64{Int64: id, Valid: true}
		}

		var created T
		err := c.withTx(r.Context(), func(q *store.Queries) error {
			var txErr error
			created, txErr = res.Create(r.Context(), q, r.PostForm, actorID)
			return txErr
		})
		if err != nil {
			mutationError(w, r, c, base+RouteSuffixNew, res.Singular, err)
			return
		}

		c.logMutation(r, "created", res.Singular, res.ID(created))
		flashSuccess(w, r, c.renderer, base, "Запись создана")
	}
}

func editResourceForm[T any](c *CRUD, res Resource[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		base := c.basePath(res.Slug)
		id, err := ParseIDParam(r)
		if err != nil {
			flashError(w, r, c.renderer, base, "Запись не найдена")
			return
		}

		item, err := res.Get(r.Context(), c.queries, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				flashError(w, r, c.renderer, base, "Запись не найдена")
				return
			}
			logAndInternalError(w, "failed to get entity", "error", err, "entity", res.Singular, "id", id)
			return
		}

		action := fmt.Sprintf("%s/%d", base, id)
		c.renderResource(w, r, "admin/resource_form", res.Title, ResourceFormData{
			Title:        res.Title,
			Action:       action,
			DeleteAction: action + RouteSuffixDelete,
			BasePath:     base,
			Fields:       fieldViews(res.Fields, res.Values(item)),
		})
	}
}

func updateResource[T any](c *CRUD, res Resource[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		base := c.basePath(res.Slug)
		id, err := ParseIDParam(r)
		if err != nil {
			flashError(w, r, c.renderer, base, "Запись не найдена")
			return
		}
		if !parseFormOrRedirect(w, r, c.renderer, base) {
			return
		}

		backURL := fmt.Sprintf("%s/%d", base, id)
		err = c.withTx(r.Context(), func(q *store.Queries) error {
			_, txErr := res.Update(r.Context(), q, id, r.PostForm)
			return txErr
		})
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				flashError(w, r, c.renderer, base, "Запись не найдена")
				return
			}
			mutationError(w, r, c, backURL, res.Singular, err)
			return
		}

		c.logMutation(r, "updated", res.Singular, id)
		flashSuccess(w, r, c.renderer, base, "Запись обновлена")
	}
}

func deleteResource[T any](c *CRUD, res Resource[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		base := c.basePath(res.Slug)
		id, err := ParseIDParam(r)
		if err != nil {
			flashError(w, r, c.renderer, base, "Запись не найдена")
			return
		}

		if err := c.withTx(r.Context(), func(q *store.Queries) error {
			return res.Delete(r.Context(), q, id)
		}); err != nil {
			logAndInternalError(w, "failed to delete entity", "error", err, "entity", res.Singular, "id", id)
			return
		}

		c.logMutation(r, "deleted", res.Singular, id)
		flashSuccess(w, r, c.renderer, base, "Запись удалена")
	}
}

// fieldViews merges field descriptors with current form values.
func fieldViews(fields []Field, values url.Values) []FieldView {
	views := make([]FieldView, 0, len(fields))
	for _, f := range fields {
		view := FieldView{Field: f}
		if f.Type == FieldCheckbox {
			view.Checked = parseFormBool(values.Get(f.Name))
		} else if f.Type != FieldPassword {
			view.Value = values.Get(f.Name)
		}
		views = append(views, view)
	}
	return views
}
