// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the composition root: it opens the datastore and wires
//
//	sqldb.DB → service.UserService / service.TodoService → handler.*Handler
//
// so the rest of the code base never constructs its own dependencies.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/todolist/internal/auth"
	"github.com/sakif/todolist/internal/config"
	"github.com/sakif/todolist/internal/handler"
	"github.com/sakif/todolist/internal/middleware"
	"github.com/sakif/todolist/internal/repository/sqldb"
	"github.com/sakif/todolist/internal/service"
)

// ServiceName is reported by the health endpoint.
const ServiceName = "TodoList API Server"

// Options tune the parts of the server that are not runtime configuration.
type Options struct {
	// Hasher overrides the bcrypt cost; nil means auth.NewPasswordHasher().
	Hasher *auth.PasswordHasher
	// ShutdownTimeout bounds graceful shutdown; zero means 30 seconds.
	ShutdownTimeout time.Duration
}

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the datastore pool and closes it after the HTTP server has
// drained, so in-flight requests never see a closed pool.
type Server struct {
	router *chi.Mux
	config config.Config
	opts   Options
	logger *slog.Logger
	db     *sqldb.DB
}

// New opens the datastore described by cfg, creates the schema and builds the
// router.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts Options) (*Server, error) {
	db, err := sqldb.New(ctx, sqldb.Options{
		URL:      cfg.StoreURL,
		User:     cfg.StoreUser,
		Password: cfg.StorePassword,
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if opts.Hasher == nil {
		opts.Hasher = auth.NewPasswordHasher()
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 30 * time.Second
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		opts:   opts,
		logger: logger,
		db:     db,
	}
	s.setupRoutes()

	return s, nil
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the datastore pool. Start calls it on shutdown.
func (s *Server) Close() error {
	return s.db.Close()
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
// GET    /health                    → liveness + datastore ping
// POST   /api/v1/signup             → create account
// POST   /api/v1/login              → check credentials
// GET    /api/v1/todos?userId=N     → list owner's todos, newest first
// POST   /api/v1/todos              → create todo
// PUT    /api/v1/todos/{id}         → partial update (done always written)
// DELETE /api/v1/todos/{id}         → delete
//
// MIDDLEWARE ORDER:
// RequestID runs first so the logger can read the id; Recoverer sits inside
// Logger so a recovered panic is still logged as a 500.
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization", "X-Requested-With"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	s.router.NotFound(handler.HandleNotFound)
	s.router.MethodNotAllowed(handler.HandleNotFound)

	userService := service.NewUserService(s.db, s.opts.Hasher, s.logger)
	todoService := service.NewTodoService(s.db, s.logger)

	healthHandler := handler.NewHealthHandler(s.db, ServiceName, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	todoHandler := handler.NewTodoHandler(todoService, s.logger)

	s.router.Get("/health", healthHandler.HandleHealth)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/signup", userHandler.HandleSignup)
		r.Post("/login", userHandler.HandleLogin)

		r.Get("/todos", todoHandler.HandleList)
		r.Post("/todos", todoHandler.HandleCreate)
		r.Put("/todos/{id}", todoHandler.HandleUpdate)
		r.Delete("/todos/{id}", todoHandler.HandleDelete)
	})
}

// Start serves HTTP until SIGINT/SIGTERM, then shuts down gracefully.
//
// SHUTDOWN ORDER:
//  1. Stop accepting new connections
//  2. Wait for in-flight requests (ShutdownTimeout)
//  3. Close the datastore pool
func (s *Server) Start() error {
	defer func() {
		if err := s.db.Close(); err != nil {
			s.logger.Error("closing database", slog.String("error", err.Error()))
		}
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.ListenPort),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.ListenPort),
			slog.String("url", fmt.Sprintf("http://localhost:%d/api/v1", s.config.ListenPort)),
			slog.String("database", s.db.Dialect()),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
