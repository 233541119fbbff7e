// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/citycouncil/council-go/internal/config"
	"github.com/citycouncil/council-go/internal/handler"
	"github.com/citycouncil/council-go/internal/logging"
	"github.com/citycouncil/council-go/internal/middleware"
	"github.com/citycouncil/council-go/internal/render"
	"github.com/citycouncil/council-go/internal/service"
	"github.com/citycouncil/council-go/internal/session"
	"github.com/citycouncil/council-go/internal/store"
	"github.com/citycouncil/council-go/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "council - municipal council website\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COUNCIL_SESSION_SECRET  Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COUNCIL_DB_PATH         SQLite database path (default: ./data/council.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COUNCIL_SERVER_HOST     Server host (default: localhost)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COUNCIL_SERVER_PORT     Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COUNCIL_ENV             Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  COUNCIL_DO_SEED         Seed demo content into an empty database (default: false)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("council %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	// Initialize database
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		err = db.Close()
		if err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	// Run migrations
	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	eventLogHandler := logging.NewEventLogHandler(textHandler, db)
	logger = slog.New(eventLogHandler)
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	// Seed demo content
	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
	}

	// Initialize session manager
	sessionManager := session.New(db, cfg.IsDevelopment())
	slog.Info("session manager initialized")

	// Initialize template renderer
	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}

	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}
	slog.Info("template renderer initialized")

	// Event service records auth and admin activity in the event log
	eventService := service.NewEventService(db)

	// Create router
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))                    // Gzip compression with level 5
	r.Use(chimw.GetHead)                        // Handle HEAD requests for uptime monitoring
	r.Use(middleware.Timeout(30 * time.Second)) // 30 second request timeout
	r.Use(middleware.StripTrailingSlash)        // Redirect /path/ to /path (301)

	// Security headers middleware (CSP, HSTS, X-Frame-Options, etc.)
	securityConfig := middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())
	r.Use(middleware.SecurityHeaders(securityConfig))
	slog.Info("security headers middleware initialized",
		"hsts", !cfg.IsDevelopment(),
		"x_frame_options", "SAMEORIGIN",
	)

	// Request path middleware for logging context
	r.Use(middleware.RequestPath)

	r.Use(sessionManager.LoadAndSave)

	// CSRF protection middleware for all state-changing requests
	csrfConfig := middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment())
	csrfMiddleware := middleware.CSRF(csrfConfig)
	slog.Info("CSRF protection initialized")

	// Initialize login protection
	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	slog.Info("login protection initialized",
		"ip_rate_limit", "0.5 req/s",
		"max_failed_attempts", 5,
		"lockout_duration", "15m",
	)

	// Public rate limiter for auth routes (defense-in-depth)
	// 10 requests per second with burst of 20 per IP
	publicRateLimiter := middleware.NewGlobalRateLimiter(10.0, 20)
	slog.Info("public rate limiter initialized", "rate", "10 req/s", "burst", 20)

	// Initialize handlers
	frontendHandler := handler.NewFrontendHandler(db, renderer)
	authHandler := handler.NewAuthHandler(db, renderer, sessionManager, loginProtection)
	adminHandler := handler.NewAdminHandler(db, renderer)
	crud := handler.NewCRUD(db, renderer, eventService)

	// Health check route
	r.Get(handler.RouteHealthz, handler.Healthz)

	// Public frontend routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.OptionalLoadUser(sessionManager, db))

		r.Get(handler.RouteRoot, frontendHandler.Home)
		r.Get(handler.RouteAbout, frontendHandler.About)
		r.Get(handler.RouteNews, frontendHandler.NewsList)
		r.Get(handler.RouteNewsID, frontendHandler.NewsDetail)
		r.Get(handler.RouteDocuments, frontendHandler.Documents)
		r.Get(handler.RouteEvents, frontendHandler.Events)
		r.Get(handler.RouteDeputies, frontendHandler.Deputies)
		r.Get(handler.RouteDeputiesID, frontendHandler.DeputyDetail)
		r.Get(handler.RouteFAQ, frontendHandler.FAQ)
		r.Get(handler.RouteSearch, frontendHandler.Search)
	})

	// Auth routes (public, with CSRF and rate limiting)
	// Defense-in-depth: publicRateLimiter (10 req/s) + loginProtection
	// (0.5 req/s on POST + account lockout)
	r.Route(handler.RouteAuth, func(r chi.Router) {
		r.Use(publicRateLimiter.Middleware())
		r.Use(csrfMiddleware)
		r.Use(middleware.OptionalLoadUser(sessionManager, db))

		r.Get(handler.RouteLogin, authHandler.LoginForm)
		r.With(loginProtection.Middleware()).Post(handler.RouteLogin, authHandler.Login)
		r.Get(handler.RouteRegister, authHandler.RegisterForm)
		r.With(loginProtection.Middleware()).Post(handler.RouteRegister, authHandler.Register)
		r.Get(handler.RouteLogout, authHandler.Logout)
		r.Post(handler.RouteLogout, authHandler.Logout)
	})

	// Admin routes (protected with CSRF)
	r.Route(handler.RouteAdmin, func(r chi.Router) {
		r.Use(csrfMiddleware)
		r.Use(middleware.Auth(sessionManager))
		r.Use(middleware.LoadUser(sessionManager, db))
		r.Use(middleware.RequireAdmin(eventService))

		r.Get(handler.RouteRoot, adminHandler.Dashboard)
		r.Get(handler.RouteAdminLog, adminHandler.Events)

		handler.RegisterAdminResources(r, crud)
	})

	// 404 Not Found handler
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		frontendHandler.NotFound(w, req)
	})

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second, // Reduced from 120s to mitigate slowloris attacks
		MaxHeaderBytes:    1 << 20,          // 1MB max header size
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
