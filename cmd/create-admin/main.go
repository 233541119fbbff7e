// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command create-admin creates an administrator account in the council
// database. It is meant for bootstrapping a fresh installation that was
// not seeded with demo content.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/citycouncil/council-go/internal/auth"
	"github.com/citycouncil/council-go/internal/model"
	"github.com/citycouncil/council-go/internal/store"
)

const minPasswordLength = 6

func main() {
	email := flag.String("email", "", "Admin email address (required)")
	name := flag.String("name", "", "Admin display name (required)")
	password := flag.String("password", "", "Admin password (required, min 6 characters)")
	dbPath := flag.String("db", "", "SQLite database path (default: COUNCIL_DB_PATH or ./data/council.db)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "create-admin - create an administrator account\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s -email admin@example.com -name \"Admin\" -password secret\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if err := run(*email, *name, *password, *dbPath); err != nil {
		slog.Error("create-admin failed", "error", err)
		os.Exit(1)
	}
}

func run(email, name, password, dbPath string) error {
	if email == "" || name == "" || password == "" {
		flag.Usage()
		return fmt.Errorf("email, name and password are required")
	}
	if !model.ValidateEmail(email) {
		return fmt.Errorf("invalid email address: %s", email)
	}
	if len(password) < minPasswordLength {
		return fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}

	if dbPath == "" {
		_ = godotenv.Load()
		dbPath = os.Getenv("COUNCIL_DB_PATH")
		if dbPath == "" {
			dbPath = "./data/council.db"
		}
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	db, err := store.NewDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	ctx := context.Background()
	user, err := store.New(db).CreateUser(ctx, store.CreateUserParams{
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		IsActive:     true,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		if store.IsUniqueViolation(err) {
			return fmt.Errorf("a user with email %s already exists", email)
		}
		return fmt.Errorf("creating user: %w", err)
	}

	fmt.Printf("Admin account created: %s (id %d)\n", user.Email, user.ID)
	return nil
}
