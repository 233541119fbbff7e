// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/citycouncil/council-go/internal/auth"
	"github.com/citycouncil/council-go/internal/model"
)

// Seed populates an empty database with demo council content: two accounts
// (admin@example.com / admin123 and user@example.com / user123), five news
// items, three documents, three sessions of the commission calendar, three
// deputies and two FAQ entries. It is a no-op when any user already exists.
func Seed(ctx context.Context, db *sql.DB) error {
	q := New(db)

	count, err := q.CountUsers(ctx)
	if err != nil {
		return fmt.Errorf("counting users: %w", err)
	}
	if count > 0 {
		slog.Info("seed skipped, database already populated", "users", count)
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := seedAll(ctx, New(db).WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed transaction: %w", err)
	}
	slog.Info("database seeded with demo council content")
	return nil
}

func seedAll(ctx context.Context, q *Queries) error {
	now := time.Now().UTC()

	adminHash, err := auth.HashPassword("admin123")
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}
	admin, err := q.CreateUser(ctx, CreateUserParams{
		Email:        "admin@example.com",
		Name:         "Администратор",
		PasswordHash: adminHash,
		Role:         model.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	userHash, err := auth.HashPassword("user123")
	if err != nil {
		return fmt.Errorf("hashing user password: %w", err)
	}
	if _, err := q.CreateUser(ctx, CreateUserParams{
		Email:        "user@example.com",
		Name:         "Иван Пользователь",
		PasswordHash: userHash,
		Role:         model.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
	}); err != nil {
		return fmt.Errorf("creating regular user: %w", err)
	}

	body := ""
	for range 3 {
		body += "Краткое описание решения и его последствий для жителей. "
	}
	for i := 1; i <= 5; i++ {
		if _, err := q.CreateNews(ctx, CreateNewsParams{
			Title:       fmt.Sprintf("Решение №%d принято", 100+i),
			Body:        body,
			PublishedAt: now.AddDate(0, 0, -i),
			IsPublished: true,
			CreatedByID: sql.NullInt64{Int64: admin.ID, Valid: true},
		}); err != nil {
			return fmt.Errorf("creating news: %w", err)
		}
	}

	documents := []CreateDocumentParams{
		{
			Title:       "Постановление о бюджете",
			Summary:     "Утверждение бюджета на 2025 год.",
			DocType:     "постановление",
			FileURL:     "#",
			PublishedAt: now,
			IsPublished: true,
		},
		{
			Title:       "Проект закона о транспорте",
			Summary:     "Проект по развитию общественного транспорта.",
			DocType:     "проект",
			FileURL:     "#",
			PublishedAt: now,
			IsPublished: true,
		},
		{
			Title:       "Решение о благоустройстве",
			Summary:     "Программа благоустройства дворов.",
			DocType:     "решение",
			FileURL:     "#",
			PublishedAt: now,
			IsPublished: true,
		},
	}
	for _, d := range documents {
		if _, err := q.CreateDocument(ctx, d); err != nil {
			return fmt.Errorf("creating document: %w", err)
		}
	}

	for i := range 3 {
		start := now.AddDate(0, 0, i+1)
		if _, err := q.CreateEvent(ctx, CreateEventParams{
			Title:       fmt.Sprintf("Заседание комиссии #%d", i+1),
			Description: "Обсуждение повестки и вопросов жителей.",
			StartTime:   start,
			EndTime:     sql.NullTime{Time: start.Add(2 * time.Hour), Valid: true},
			Location:    "Зал заседаний №1",
			IsPublic:    true,
		}); err != nil {
			return fmt.Errorf("creating event: %w", err)
		}
	}

	deputies := []CreateDeputyParams{
		{
			FullName: "Иванов Иван Иванович",
			Faction:  "Единство",
			District: "Округ №1",
			Email:    "ivanov@example.com",
			Phone:    "+7 900 111-22-33",
			Bio:      "Опытный депутат с 2015 года.",
			PhotoURL: "https://picsum.photos/seed/ivanov/400/250",
		},
		{
			FullName: "Петров Петр Петрович",
			Faction:  "Развитие",
			District: "Округ №2",
			Email:    "petrov@example.com",
			Phone:    "+7 900 222-33-44",
			Bio:      "Инициатор программ по благоустройству.",
			PhotoURL: "https://picsum.photos/seed/petrov/400/250",
		},
		{
			FullName: "Сидорова Анна Сергеевна",
			Faction:  "Город",
			District: "Округ №3",
			Email:    "sidorova@example.com",
			Phone:    "+7 900 333-44-55",
			Bio:      "Эксперт по транспорту и экологии.",
			PhotoURL: "https://picsum.photos/seed/sidorova/400/250",
		},
	}
	for _, d := range deputies {
		if _, err := q.CreateDeputy(ctx, d); err != nil {
			return fmt.Errorf("creating deputy: %w", err)
		}
	}

	faqs := []CreateFAQParams{
		{
			Question:    "Как подать обращение в городскую думу?",
			Answer:      "Вы можете отправить обращение через официальный портал или приёмную.",
			IsPublished: true,
		},
		{
			Question:    "Где узнать о расписании заседаний?",
			Answer:      "Посмотрите раздел «Календарь» на сайте.",
			IsPublished: true,
		},
	}
	for _, f := range faqs {
		if _, err := q.CreateFAQ(ctx, f); err != nil {
			return fmt.Errorf("creating faq: %w", err)
		}
	}

	return nil
}
