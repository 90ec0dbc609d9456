// Copyright (c) 2026 Manabiya. All rights reserved.
// Author: satomata.dev@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/satomatashiki/manabiya/internal/core/course"
	"github.com/satomatashiki/manabiya/internal/core/enrollment"
	"github.com/satomatashiki/manabiya/internal/core/lesson"
	"github.com/satomatashiki/manabiya/internal/core/progress"
	"github.com/satomatashiki/manabiya/internal/core/purchase"
	"github.com/satomatashiki/manabiya/internal/core/space"
	"github.com/satomatashiki/manabiya/internal/media"
	"github.com/satomatashiki/manabiya/internal/platform/config"
	"github.com/satomatashiki/manabiya/internal/platform/constants"
	"github.com/satomatashiki/manabiya/internal/platform/middleware"
	"github.com/satomatashiki/manabiya/internal/users/account"
	"github.com/satomatashiki/manabiya/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
//
// # Usage
//
// New domains add a field here — no other change to server.go is required.
type Handlers struct {
	// Liveness is the /health handler — always returns 200 if process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler — returns 200 when all deps are healthy.
	Readiness http.HandlerFunc

	// Auth handles authentication routes (register, login, password resets).
	Auth *auth.Handler

	// Account handles the signed-in user's own profile.
	Account *account.Handler

	// Space manages instructor spaces.
	Space *space.Handler

	// Course manages the courses inside spaces.
	Course *course.Handler

	// Lesson manages course lessons and their ordering.
	Lesson *lesson.Handler

	// Enrollment manages space membership.
	Enrollment *enrollment.Handler

	// Purchase handles free claims, paid checkouts, and purchase history.
	Purchase *purchase.Handler

	// Progress tracks lesson completion.
	Progress *progress.Handler

	// Media issues presigned upload URLs. Nil when object storage is not
	// configured; the routes are then not mounted.
	Media *media.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, sessions middleware.SessionResolver, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	// Global middleware applied in order of execution.
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(sessions))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	// Unauthenticated health probes for container orchestration.
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	// # Application API
	// Domain-specific route groups mounted under versioned prefix. Several
	// domains register onto shared subrouters (a course's lessons live under
	// /courses, enrollment under /spaces), so registration is additive.
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())
		api.Mount("/account", h.Account.Routes())

		api.Route("/spaces", func(spaces chi.Router) {
			h.Space.RegisterRoutes(spaces)
			h.Course.RegisterSpaceRoutes(spaces)
			h.Enrollment.RegisterSpaceRoutes(spaces)
		})

		api.Route("/courses", func(courses chi.Router) {
			h.Course.RegisterRoutes(courses)
			h.Lesson.RegisterCourseRoutes(courses)
			h.Purchase.RegisterCourseRoutes(courses)
			h.Progress.RegisterCourseRoutes(courses)
		})

		api.Route("/lessons", func(lessons chi.Router) {
			h.Lesson.RegisterRoutes(lessons)
			h.Progress.RegisterLessonRoutes(lessons)
		})

		api.Route("/enrollments", h.Enrollment.RegisterRoutes)
		api.Route("/purchases", h.Purchase.RegisterRoutes)

		if h.Media != nil {
			api.Route("/media", h.Media.RegisterRoutes)
		}
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
