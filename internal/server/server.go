// Package server wires handlers, middleware, and routes together and owns
// the HTTP server lifecycle. It is the composition root: every dependency
// chain (DB → repository → service → handler) is assembled in New, nothing
// is constructed ad hoc elsewhere.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/wcrave/wellesley-crave/internal/auth"
	"github.com/wcrave/wellesley-crave/internal/handler"
	"github.com/wcrave/wellesley-crave/internal/menu"
	"github.com/wcrave/wellesley-crave/internal/middleware"
	sqliteRepo "github.com/wcrave/wellesley-crave/internal/repository/sqlite"
	"github.com/wcrave/wellesley-crave/internal/service"
)

// Config holds everything the server needs from the environment.
type Config struct {
	Port               int
	DBPath             string // path to the SQLite database file
	MenuBaseURL        string // vendor API root; empty uses production
	JWTSecret          string
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string
	HostedDomain       string // restrict logins, e.g. "wellesley.edu"; empty allows any account
}

// Server owns the router and the database connection. The DB is closed
// during graceful shutdown so the WAL gets flushed.
type Server struct {
	router *chi.Mux
	config Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain and registers all routes.
func New(cfg Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		db:     db,
	}

	if err := s.setupRoutes(); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting up routes: %w", err)
	}

	return s, nil
}

// setupRoutes configures middleware, builds services and handlers, and
// maps routes.
//
//	GET    /healthz                      liveness probe
//	GET    /auth/google/login            OAuth redirect
//	GET    /auth/google/callback         OAuth completion, sets session cookie
//	POST   /auth/logout                  clears session cookie
//	GET    /api/me                       profile + preferences
//	PUT    /api/me/dining-hall           set go-to hall
//	PUT    /api/me/diet-profile          set allergens + restrictions
//	GET    /api/me/favorites             list favorite dishes
//	POST   /api/me/favorites             add favorite
//	DELETE /api/me/favorites/{dish}      remove favorite
//	GET    /api/me/favorites/matches     favorites on today's menus
//	GET    /api/journal?date=            list entries
//	POST   /api/journal                  log one entry or a batch
//	DELETE /api/journal/{entryID}        delete one entry
//	GET    /api/journal/summary?date=    per-meal macro totals
//	GET    /api/menu?date=&hall=&meal=   one normalized menu
//	GET    /api/menu/halls               static hall/meal/vocabulary config
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	// --- dependency chain ---
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	google := auth.NewGoogleProvider(
		s.config.GoogleClientID,
		s.config.GoogleClientSecret,
		s.config.GoogleCallbackURL,
		s.config.HostedDomain,
	)

	menuClient := menu.NewClient(s.config.MenuBaseURL, s.logger)

	userService := service.NewUserService(s.db, s.logger)
	journalService := service.NewJournalService(s.db, s.logger)
	favoritesService := service.NewFavoritesService(menuClient, s.logger)

	authHandler := handler.NewAuthHandler(google, tokens, userService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	journalHandler := handler.NewJournalHandler(journalService, userService, s.logger)
	menuHandler := handler.NewMenuHandler(menuClient, favoritesService, userService, s.logger)

	// --- routes ---
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	s.router.Get("/auth/google/login", authHandler.HandleLogin)
	s.router.Get("/auth/google/callback", authHandler.HandleCallback)
	s.router.Post("/auth/logout", authHandler.HandleLogout)

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/me", userHandler.HandleMe)
		r.Put("/me/dining-hall", userHandler.HandleUpdateDiningHall)
		r.Put("/me/diet-profile", userHandler.HandleUpdateDietProfile)
		r.Get("/me/favorites", userHandler.HandleListFavorites)
		r.Post("/me/favorites", userHandler.HandleAddFavorite)
		r.Delete("/me/favorites/{dish}", userHandler.HandleRemoveFavorite)
		r.Get("/me/favorites/matches", menuHandler.HandleFavoriteMatches)

		r.Get("/journal", journalHandler.HandleList)
		r.Post("/journal", journalHandler.HandleCreate)
		r.Delete("/journal/{entryID}", journalHandler.HandleDelete)
		r.Get("/journal/summary", journalHandler.HandleSummary)

		r.Get("/menu", menuHandler.HandleMenu)
		r.Get("/menu/halls", menuHandler.HandleHalls)
	})

	return nil
}

// Start runs the server until SIGINT/SIGTERM, then shuts down gracefully:
// stop accepting connections, drain in-flight requests (30s), close the DB.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
