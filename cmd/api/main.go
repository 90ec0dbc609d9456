// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

// Command api is the entry point for the Manabiya HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Open the storage backend (PostgreSQL when DATABASE_URL is set,
//     embedded SQLite otherwise).
//  4. Connect to Redis (optional session cache).
//  5. Run database migrations (PostgreSQL only; SQLite applies its schema
//     on open).
//  6. Wire HTTP handlers.
//  7. Start the maintenance janitor and the HTTP server with graceful
//     shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/satomatashiki/manabiya/internal/api"
	"github.com/satomatashiki/manabiya/internal/core/course"
	"github.com/satomatashiki/manabiya/internal/core/enrollment"
	"github.com/satomatashiki/manabiya/internal/core/lesson"
	"github.com/satomatashiki/manabiya/internal/core/progress"
	"github.com/satomatashiki/manabiya/internal/core/purchase"
	"github.com/satomatashiki/manabiya/internal/core/space"
	"github.com/satomatashiki/manabiya/internal/media"
	"github.com/satomatashiki/manabiya/internal/platform/config"
	"github.com/satomatashiki/manabiya/internal/platform/constants"
	"github.com/satomatashiki/manabiya/internal/platform/janitor"
	"github.com/satomatashiki/manabiya/internal/platform/migration"
	redisstore "github.com/satomatashiki/manabiya/internal/platform/redis"
	"github.com/satomatashiki/manabiya/internal/platform/storage"
	"github.com/satomatashiki/manabiya/internal/users/account"
	"github.com/satomatashiki/manabiya/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "manabiya"))
	slog.SetDefault(log)

	log.Info("[Manabiya] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "manabiya"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// ── 3. Storage ────────────────────────────────────────────────────────
	db, err := storage.Open(startupCtx, storage.Options{
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
	}, log)
	must(log, err, "open storage backend")
	defer func() {
		log.Info("closing storage backend")
		if cerr := db.Close(); cerr != nil {
			log.Error("storage close error", slog.Any("error", cerr))
		}
	}()

	// ── 4. Redis (optional) ───────────────────────────────────────────────
	var sessionCache auth.SessionCache
	var cacheCheck func() error
	if cfg.RedisURL != "" {
		rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("closing redis client")
			if cerr := rdb.Close(); cerr != nil {
				log.Error("redis close error", slog.Any("error", cerr))
			}
		}()
		sessionCache = auth.NewSessionCache(rdb)
		cacheCheck = func() error {
			return rdb.Ping(context.Background()).Err()
		}
	}

	// ── 5. Migrations (PostgreSQL only) ───────────────────────────────────
	if db.Backend() == storage.BackendPostgres {
		must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")
	}

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	profileRepository := auth.NewProfileRepository(db)
	sessionRepository := auth.NewSessionRepository(db)
	resetTokenRepository := auth.NewResetTokenRepository(db)
	authService := auth.NewService(profileRepository, sessionRepository, resetTokenRepository, sessionCache)
	authHandler := auth.NewHandler(authService)

	accountService := account.NewService(account.NewAccountRepository(db), sessionRepository, log)
	accountHandler := account.NewHandler(accountService)

	spaceRepository := space.NewRepository(db, log)
	spaceService := space.NewService(spaceRepository, log)
	spaceHandler := space.NewHandler(spaceService)

	courseRepository := course.NewRepository(db, log)
	courseService := course.NewService(courseRepository, spaceRepository, log)
	courseHandler := course.NewHandler(courseService)

	paymentProvider := &purchase.ManualProvider{SuccessURL: "/purchases"}
	purchaseService := purchase.NewService(purchase.NewRepository(db), courseRepository, paymentProvider, log)
	purchaseHandler := purchase.NewHandler(purchaseService)

	lessonService := lesson.NewService(lesson.NewRepository(db), courseRepository, spaceRepository, purchaseService, log)
	lessonHandler := lesson.NewHandler(lessonService)

	enrollmentService := enrollment.NewService(enrollment.NewRepository(db), spaceRepository, log)
	enrollmentHandler := enrollment.NewHandler(enrollmentService)

	progressService := progress.NewService(progress.NewRepository(db), lessonService, log)
	progressHandler := progress.NewHandler(progressService)

	var mediaHandler *media.Handler
	if cfg.MediaEnabled() {
		mediaService, err := media.NewService(cfg, log)
		must(log, err, "initialize media service")
		mediaHandler = media.NewHandler(mediaService)
	} else {
		log.Info("media_uploads_disabled")
	}

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	readinessChecks := api.HealthDependencies{
		CheckDatabase: func() error {
			return db.Ping(context.Background())
		},
		CheckCache: cacheCheck,
	}
	liveness, readiness := api.NewHealthHandlers(readinessChecks, log)

	// ── 8. Maintenance Janitor ────────────────────────────────────────────
	cleaner := janitor.New(log)
	must(log, cleaner.Add("expired_sessions", constants.JanitorSchedule, authService.CleanupSessions), "schedule session cleanup")
	must(log, cleaner.Add("stale_reset_tokens", constants.JanitorSchedule, authService.CleanupResetTokens), "schedule reset token cleanup")
	cleaner.Start()
	defer cleaner.Stop()

	// ── 9. HTTP Server ────────────────────────────────────────────────────
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	handlers := api.Handlers{
		Liveness:   liveness,
		Readiness:  readiness,
		Auth:       authHandler,
		Account:    accountHandler,
		Space:      spaceHandler,
		Course:     courseHandler,
		Lesson:     lessonHandler,
		Enrollment: enrollmentHandler,
		Purchase:   purchaseHandler,
		Progress:   progressHandler,
		Media:      mediaHandler,
	}

	server := api.NewServer(serverCtx, cfg, log, authService, handlers)

	// ── 10. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
