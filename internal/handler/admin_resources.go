// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/citycouncil/council-go/internal/auth"
	"github.com/citycouncil/council-go/internal/model"
	"github.com/citycouncil/council-go/internal/store"
)

// RegisterAdminResources mounts the CRUD routes for all six managed
// entities on the admin router.
func RegisterAdminResources(r chi.Router, c *CRUD) {
	r.Route("/users", func(rr chi.Router) { Mount(rr, c, usersResource()) })
	r.Route("/news", func(rr chi.Router) { Mount(rr, c, newsResource()) })
	r.Route("/documents", func(rr chi.Router) { Mount(rr, c, documentsResource()) })
	r.Route("/events", func(rr chi.Router) { Mount(rr, c, eventsResource()) })
	r.Route("/deputies", func(rr chi.Router) { Mount(rr, c, deputiesResource()) })
	r.Route("/faq", func(rr chi.Router) { Mount(rr, c, faqResource()) })
}

const formTimeInput = "2006-01-02T15:04"

func timeInputValue(t time.Time) string {
	return t.Format(formTimeInput)
}

func boolInputValue(b bool) string {
	if b {
		return "on"
	}
	return ""
}

func yesNo(b bool) string {
	if b {
		return "да"
	}
	return "нет"
}

func nullStr(ns sql.NullString) string {
	return ns.String
}

// formTimeOrNow parses an optional datetime field, defaulting to now.
func formTimeOrNow(f url.Values, name string) (time.Time, error) {
	v := strings.TrimSpace(f.Get(name))
	if v == "" {
		return time.Now(), nil
	}
	t, err := parseFormTime(v)
	if err != nil {
		return time.Time{}, errForm("Неверный формат даты")
	}
	return t, nil
}

// requiredField returns a trimmed required field or a form error.
func requiredField(f url.Values, name, msg string) (string, error) {
	v := strings.TrimSpace(f.Get(name))
	if v == "" {
		return "", errForm(msg)
	}
	return v, nil
}

func usersResource() Resource[model.User] {
	return Resource[model.User]{
		Singular: "user",
		Title:    "Пользователи",
		Slug:     "users",
		Columns:  []string{"ID", "Email", "Имя", "Роль", "Активен"},
		Fields: []Field{
			{Name: "email", Label: "Email", Type: FieldEmail, Required: true},
			{Name: "name", Label: "Имя", Type: FieldText, Required: true},
			{Name: "phone", Label: "Телефон", Type: FieldText},
			{Name: "role", Label: "Роль", Type: FieldSelect, Options: []FieldOption{
				{Value: model.RoleUser, Label: "Пользователь"},
				{Value: model.RoleAdmin, Label: "Администратор"},
			}},
			{Name: "password", Label: "Пароль", Type: FieldPassword},
			{Name: "is_active", Label: "Активен", Type: FieldCheckbox},
		},
		ID: func(u model.User) int64 { return u.ID },
		Row: func(u model.User) []string {
			return []string{fmt.Sprint(u.ID), u.Email, u.Name, u.Role, yesNo(u.IsActive)}
		},
		Values: func(u model.User) url.Values {
			return url.Values{
				"email":     {u.Email},
				"name":      {u.Name},
				"phone":     {nullStr(u.Phone)},
				"role":      {u.Role},
				"is_active": {boolInputValue(u.IsActive)},
			}
		},
		List: func(ctx context.Context, q *store.Queries) ([]model.User, error) {
			return q.ListUsers(ctx)
		},
		Get: func(ctx context.Context, q *store.Queries, id int64) (model.User, error) {
			return q.GetUserByID(ctx, id)
		},
		Create: func(ctx context.Context, q *store.Queries, f url.Values, _ sql.NullInt64) (model.User, error) {
			params, password, err := userFormParams(f)
			if err != nil {
				return model.User{}, err
			}
			if len(password) < minPasswordLength {
				return model.User{}, errForm(fmt.Sprintf("Пароль должен быть не короче %d символов", minPasswordLength))
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return model.User{}, err
			}
			return q.CreateUser(ctx, store.CreateUserParams{
				Email:        params.Email,
				Name:         params.Name,
				Phone:        params.Phone,
				PasswordHash: hash,
				Role:         params.Role,
				IsActive:     params.IsActive,
				CreatedAt:    time.Now(),
			})
		},
		Update: func(ctx context.Context, q *store.Queries, id int64, f url.Values) (model.User, error) {
			params, password, err := userFormParams(f)
			if err != nil {
				return model.User{}, err
			}
			params.ID = id
			user, err := q.UpdateUser(ctx, params)
			if err != nil {
				return model.User{}, err
			}
			// An empty password field leaves the current one in place.
			if password != "" {
				if len(password) < minPasswordLength {
					return model.User{}, errForm(fmt.Sprintf("Пароль должен быть не короче %d символов", minPasswordLength))
				}
				hash, hashErr := auth.HashPassword(password)
				if hashErr != nil {
					return model.User{}, hashErr
				}
				if err := q.UpdateUserPassword(ctx, id, hash); err != nil {
					return model.User{}, err
				}
			}
			return user, nil
		},
		Delete: func(ctx context.Context, q *store.Queries, id int64) error {
			return q.DeleteUser(ctx, id)
		},
	}
}

// userFormParams parses the shared user form fields. The password is
// returned separately since it is hashed, not stored as-is.
func userFormParams(f url.Values) (store.UpdateUserParams, string, error) {
	email, err := requiredField(f, "email", "Укажите email")
	if err != nil {
		return store.UpdateUserParams{}, "", err
	}
	name, err := requiredField(f, "name", "Укажите имя")
	if err != nil {
		return store.UpdateUserParams{}, "", err
	}
	role := f.Get("role")
	if role == "" {
		role = model.RoleUser
	}
	if role != model.RoleUser && role != model.RoleAdmin {
		return store.UpdateUserParams{}, "", errForm("Недопустимая роль")
	}
	return store.UpdateUserParams{
		Email:    email,
		Name:     name,
		Phone:    strings.TrimSpace(f.Get("phone")),
		Role:     role,
		IsActive: parseFormBool(f.Get("is_active")),
	}, f.Get("password"), nil
}

func newsResource() Resource[model.News] {
	return Resource[model.News]{
		Singular: "news item",
		Title:    "Новости",
		Slug:     "news",
		Columns:  []string{"ID", "Заголовок", "Дата публикации", "Опубликовано"},
		Fields: []Field{
			{Name: "title", Label: "Заголовок", Type: FieldText, Required: true},
			{Name: "body", Label: "Текст", Type: FieldTextarea, Required: true},
			{Name: "published_at", Label: "Дата публикации", Type: FieldDateTime},
			{Name: "is_published", Label: "Опубликовано", Type: FieldCheckbox},
		},
		ID: func(n model.News) int64 { return n.ID },
		Row: func(n model.News) []string {
			return []string{fmt.Sprint(n.ID), n.Title, n.PublishedAt.Format("02.01.2006 15:04"), yesNo(n.IsPublished)}
		},
		Values: func(n model.News) url.Values {
			return url.Values{
				"title":        {n.Title},
				"body":         {n.Body},
				"published_at": {timeInputValue(n.PublishedAt)},
				"is_published": {boolInputValue(n.IsPublished)},
			}
		},
		List: func(ctx context.Context, q *store.Queries) ([]model.News, error) {
			return q.ListAllNews(ctx)
		},
		Get: func(ctx context.Context, q *store.Queries, id int64) (model.News, error) {
			return q.GetNewsByID(ctx, id)
		},
		Create: func(ctx context.Context, q *store.Queries, f url.Values, actorID sql.NullInt64) (model.News, error) {
			params, err := newsFormParams(f)
			if err != nil {
				return model.News{}, err
			}
			return q.CreateNews(ctx, store.CreateNewsParams{
				Title:       params.Title,
				Body:        params.Body,
				PublishedAt: params.PublishedAt,
				IsPublished: params.IsPublished,
				CreatedByID: actorID,
			})
		},
		Update: func(ctx context.Context, q *store.Queries, id int64, f url.Values) (model.News, error) {
			params, err := newsFormParams(f)
			if err != nil {
				return model.News{}, err
			}
			params.ID = id
			return q.UpdateNews(ctx, params)
		},
		Delete: func(ctx context.Context, q *store.Queries, id int64) error {
			return q.DeleteNews(ctx, id)
		},
	}
}

func newsFormParams(f url.Values) (store.UpdateNewsParams, error) {
	title, err := requiredField(f, "title", "Укажите заголовок")
	if err != nil {
		return store.UpdateNewsParams{}, err
	}
	body, err := requiredField(f, "body", "Укажите текст новости")
	if err != nil {
		return store.UpdateNewsParams{}, err
	}
	publishedAt, err := formTimeOrNow(f, "published_at")
	if err != nil {
		return store.UpdateNewsParams{}, err
	}
	return store.UpdateNewsParams{
		Title:       title,
		Body:        body,
		PublishedAt: publishedAt,
		IsPublished: parseFormBool(f.Get("is_published")),
	}, nil
}

func documentsResource() Resource[model.Document] {
	return Resource[model.Document]{
		Singular: "document",
		Title:    "Документы",
		Slug:     "documents",
		Columns:  []string{"ID", "Название", "Тип", "Дата", "Опубликован"},
		Fields: []Field{
			{Name: "title", Label: "Название", Type: FieldText, Required: true},
			{Name: "summary", Label: "Описание", Type: FieldTextarea},
			{Name: "doc_type", Label: "Тип документа", Type: FieldText, Required: true},
			{Name: "file_url", Label: "Ссылка на файл", Type: FieldURL},
			{Name: "published_at", Label: "Дата публикации", Type: FieldDateTime},
			{Name: "is_published", Label: "Опубликован", Type: FieldCheckbox},
		},
		ID: func(d model.Document) int64 { return d.ID },
		Row: func(d model.Document) []string {
			return []string{fmt.Sprint(d.ID), d.Title, d.DocType, d.PublishedAt.Format("02.01.2006"), yesNo(d.IsPublished)}
		},
		Values: func(d model.Document) url.Values {
			return url.Values{
				"title":        {d.Title},
				"summary":      {nullStr(d.Summary)},
				"doc_type":     {d.DocType},
				"file_url":     {nullStr(d.FileURL)},
				"published_at": {timeInputValue(d.PublishedAt)},
				"is_published": {boolInputValue(d.IsPublished)},
			}
		},
		List: func(ctx context.Context, q *store.Queries) ([]model.Document, error) {
			return q.ListAllDocuments(ctx)
		},
		Get: func(ctx context.Context, q *store.Queries, id int64) (model.Document, error) {
			return q.GetDocumentByID(ctx, id)
		},
		Create: func(ctx context.Context, q *store.Queries, f url.Values, _ sql.NullInt64) (model.Document, error) {
			params, err := documentFormParams(f)
			if err != nil {
				return model.Document{}, err
			}
			return q.CreateDocument(ctx, store.CreateDocumentParams{
				Title:       params.Title,
				Summary:     params.Summary,
				DocType:     params.DocType,
				FileURL:     params.FileURL,
				PublishedAt: params.PublishedAt,
				IsPublished: params.IsPublished,
			})
		},
		Update: func(ctx context.Context, q *store.Queries, id int64, f url.Values) (model.Document, error) {
			params, err := documentFormParams(f)
			if err != nil {
				return model.Document{}, err
			}
			params.ID = id
			return q.UpdateDocument(ctx, params)
		},
		Delete: func(ctx context.Context, q *store.Queries, id int64) error {
			return q.DeleteDocument(ctx, id)
		},
	}
}

func documentFormParams(f url.Values) (store.UpdateDocumentParams, error) {
	title, err := requiredField(f, "title", "Укажите название документа")
	if err != nil {
		return store.UpdateDocumentParams{}, err
	}
	docType, err := requiredField(f, "doc_type", "Укажите тип документа")
	if err != nil {
		return store.UpdateDocumentParams{}, err
	}
	publishedAt, err := formTimeOrNow(f, "published_at")
	if err != nil {
		return store.UpdateDocumentParams{}, err
	}
	return store.UpdateDocumentParams{
		Title:       title,
		Summary:     strings.TrimSpace(f.Get("summary")),
		DocType:     docType,
		FileURL:     strings.TrimSpace(f.Get("file_url")),
		PublishedAt: publishedAt,
		IsPublished: parseFormBool(f.Get("is_published")),
	}, nil
}

func eventsResource() Resource[model.Event] {
	return Resource[model.Event]{
		Singular: "event",
		Title:    "Мероприятия",
		Slug:     "events",
		Columns:  []string{"ID", "Название", "Начало", "Место", "Публичное"},
		Fields: []Field{
			{Name: "title", Label: "Название", Type: FieldText, Required: true},
			{Name: "description", Label: "Описание", Type: FieldTextarea},
			{Name: "start_time", Label: "Начало", Type: FieldDateTime, Required: true},
			{Name: "end_time", Label: "Окончание", Type: FieldDateTime},
			{Name: "location", Label: "Место проведения", Type: FieldText},
			{Name: "is_public", Label: "Публичное", Type: FieldCheckbox},
		},
		ID: func(e model.Event) int64 { return e.ID },
		Row: func(e model.Event) []string {
			return []string{fmt.Sprint(e.ID), e.Title, e.StartTime.Format("02.01.2006 15:04"), nullStr(e.Location), yesNo(e.IsPublic)}
		},
		Values: func(e model.Event) url.Values {
			v := url.Values{
				"title":       {e.Title},
				"description": {nullStr(e.Description)},
				"start_time":  {timeInputValue(e.StartTime)},
				"location":    {nullStr(e.Location)},
				"is_public":   {boolInputValue(e.IsPublic)},
			}
			if e.EndTime.Valid {
				v.Set("end_time", timeInputValue(e.EndTime.Time))
			}
			return v
		},
		List: func(ctx context.Context, q *store.Queries) ([]model.Event, error) {
			return q.ListAllEvents(ctx)
		},
		Get: func(ctx context.Context, q *store.Queries, id int64) (model.Event, error) {
			return q.GetEventByID(ctx, id)
		},
		Create: func(ctx context.Context, q *store.Queries, f url.Values, _ sql.NullInt64) (model.Event, error) {
			params, err := eventFormParams(f)
			if err != nil {
				return model.Event{}, err
			}
			return q.CreateEvent(ctx, store.CreateEventParams{
				Title:       params.Title,
				Description: params.Description,
				StartTime:   params.StartTime,
				EndTime:     params.EndTime,
				Location:    params.Location,
				IsPublic:    params.IsPublic,
			})
		},
		Update: func(ctx context.Context, q *store.Queries, id int64, f url.Values) (model.Event, error) {
			params, err := eventFormParams(f)
			if err != nil {
				return model.Event{}, err
			}
			params.ID = id
			return q.UpdateEvent(ctx, params)
		},
		Delete: func(ctx context.Context, q *store.Queries, id int64) error {
			return q.DeleteEvent(ctx, id)
		},
	}
}

func eventFormParams(f url.Values) (store.UpdateEventParams, error) {
	title, err := requiredField(f, "title", "Укажите название мероприятия")
	if err != nil {
		return store.UpdateEventParams{}, err
	}
	startRaw, err := requiredField(f, "start_time", "Укажите время начала")
	if err != nil {
		return store.UpdateEventParams{}, err
	}
	startTime, err := parseFormTime(startRaw)
	if err != nil {
		return store.UpdateEventParams{}, errForm("Неверный формат времени начала")
	}
	endTime := sql.NullTime{}
	if v := strings.TrimSpace(f.Get("end_time")); v != "" {
		t, parseErr := parseFormTime(v)
		if parseErr != nil {
			return store.UpdateEventParams{}, errForm("Неверный формат времени окончания")
		}
		endTime = sql.NullTime{Time: t, Valid: true}
	}
	return store.UpdateEventParams{
		Title:       title,
		Description: strings.TrimSpace(f.Get("description")),
		StartTime:   startTime,
		EndTime:     endTime,
		Location:    strings.TrimSpace(f.Get("location")),
		IsPublic:    parseFormBool(f.Get("is_public")),
	}, nil
}

func deputiesResource() Resource[model.Deputy] {
	return Resource[model.Deputy]{
		Singular: "deputy",
		Title:    "Депутаты",
		Slug:     "deputies",
		Columns:  []string{"ID", "ФИО", "Фракция", "Округ"},
		Fields: []Field{
			{Name: "full_name", Label: "ФИО", Type: FieldText, Required: true},
			{Name: "faction", Label: "Фракция", Type: FieldText},
			{Name: "district", Label: "Округ", Type: FieldText},
			{Name: "email", Label: "Email", Type: FieldEmail},
			{Name: "phone", Label: "Телефон", Type: FieldText},
			{Name: "bio", Label: "Биография", Type: FieldTextarea},
			{Name: "photo_url", Label: "Фотография (URL)", Type: FieldURL},
		},
		ID: func(d model.Deputy) int64 { return d.ID },
		Row: func(d model.Deputy) []string {
			return []string{fmt.Sprint(d.ID), d.FullName, nullStr(d.Faction), nullStr(d.District)}
		},
		Values: func(d model.Deputy) url.Values {
			return url.Values{
				"full_name": {d.FullName},
				"faction":   {nullStr(d.Faction)},
				"district":  {nullStr(d.District)},
				"email":     {nullStr(d.Email)},
				"phone":     {nullStr(d.Phone)},
				"bio":       {nullStr(d.Bio)},
				"photo_url": {nullStr(d.PhotoURL)},
			}
		},
		List: func(ctx context.Context, q *store.Queries) ([]model.Deputy, error) {
			return q.ListDeputies(ctx)
		},
		Get: func(ctx context.Context, q *store.Queries, id int64) (model.Deputy, error) {
			return q.GetDeputyByID(ctx, id)
		},
		Create: func(ctx context.Context, q *store.Queries, f url.Values, _ sql.NullInt64) (model.Deputy, error) {
			params, err := deputyFormParams(f)
			if err != nil {
				return model.Deputy{}, err
			}
			return q.CreateDeputy(ctx, store.CreateDeputyParams{
				FullName: params.FullName,
				Faction:  params.Faction,
				District: params.District,
				Email:    params.Email,
				Phone:    params.Phone,
				Bio:      params.Bio,
				PhotoURL: params.PhotoURL,
			})
		},
		Update: func(ctx context.Context, q *store.Queries, id int64, f url.Values) (model.Deputy, error) {
			params, err := deputyFormParams(f)
			if err != nil {
				return model.Deputy{}, err
			}
			params.ID = id
			return q.UpdateDeputy(ctx, params)
		},
		Delete: func(ctx context.Context, q *store.Queries, id int64) error {
			return q.DeleteDeputy(ctx, id)
		},
	}
}

func deputyFormParams(f url.Values) (store.UpdateDeputyParams, error) {
	fullName, err := requiredField(f, "full_name", "Укажите ФИО депутата")
	if err != nil {
		return store.UpdateDeputyParams{}, err
	}
	return store.UpdateDeputyParams{
		FullName: fullName,
		Faction:  strings.TrimSpace(f.Get("faction")),
		District: strings.TrimSpace(f.Get("district")),
		Email:    strings.TrimSpace(f.Get("email")),
		Phone:    strings.TrimSpace(f.Get("phone")),
		Bio:      strings.TrimSpace(f.Get("bio")),
		PhotoURL: strings.TrimSpace(f.Get("photo_url")),
	}, nil
}

func faqResource() Resource[model.FAQ] {
	return Resource[model.FAQ]{
		Singular: "faq entry",
		Title:    "Вопросы и ответы",
		Slug:     "faq",
		Columns:  []string{"ID", "Вопрос", "Опубликован"},
		Fields: []Field{
			{Name: "question", Label: "Вопрос", Type: FieldTextarea, Required: true},
			{Name: "answer", Label: "Ответ", Type: FieldTextarea, Required: true},
			{Name: "is_published", Label: "Опубликован", Type: FieldCheckbox},
		},
		ID: func(q model.FAQ) int64 { return q.ID },
		Row: func(q model.FAQ) []string {
			return []string{fmt.Sprint(q.ID), q.Question, yesNo(q.IsPublished)}
		},
		Values: func(q model.FAQ) url.Values {
			return url.Values{
				"question":     {q.Question},
				"answer":       {q.Answer},
				"is_published": {boolInputValue(q.IsPublished)},
			}
		},
		List: func(ctx context.Context, q *store.Queries) ([]model.FAQ, error) {
			return q.ListAllFAQ(ctx)
		},
		Get: func(ctx context.Context, q *store.Queries, id int64) (model.FAQ, error) {
			return q.GetFAQByID(ctx, id)
		},
		Create: func(ctx context.Context, q *store.Queries, f url.Values, _ sql.NullInt64) (model.FAQ, error) {
			params, err := faqFormParams(f)
			if err != nil {
				return model.FAQ{}, err
			}
			return q.CreateFAQ(ctx, store.CreateFAQParams{
				Question:    params.Question,
				Answer:      params.Answer,
				IsPublished: params.IsPublished,
			})
		},
		Update: func(ctx context.Context, q *store.Queries, id int64, f url.Values) (model.FAQ, error) {
			params, err := faqFormParams(f)
			if err != nil {
				return model.FAQ{}, err
			}
			params.ID = id
			return q.UpdateFAQ(ctx, params)
		},
		Delete: func(ctx context.Context, q *store.Queries, id int64) error {
			return q.DeleteFAQ(ctx, id)
		},
	}
}

func faqFormParams(f url.Values) (store.UpdateFAQParams, error) {
	question, err := requiredField(f, "question", "Укажите вопрос")
	if err != nil {
		return store.UpdateFAQParams{}, err
	}
	answer, err := requiredField(f, "answer", "Укажите ответ")
	if err != nil {
		return store.UpdateFAQParams{}, err
	}
	return store.UpdateFAQParams{
		Question:    question,
		Answer:      answer,
		IsPublished: parseFormBool(f.Get("is_published")),
	}, nil
}
