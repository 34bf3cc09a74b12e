// Package server is the composition root: it opens storage, builds the services and
// handlers, and mounts them on one chi router.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/bug-createdme/2share/internal/auth"
	"github.com/bug-createdme/2share/internal/config"
	"github.com/bug-createdme/2share/internal/handler"
	"github.com/bug-createdme/2share/internal/middleware"
	"github.com/bug-createdme/2share/internal/service"
)

const uploadsPrefix = "/uploads"

// Server owns the router and the storage it was built on. Start closes the storage on
// shutdown.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger
	repos  *Repositories
}

// New wires every handler against repos. ctx bounds background work such as the rate
// limiter's sweeper.
func New(ctx context.Context, cfg *config.Config, repos *Repositories, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router: chi.NewRouter(),
		config: cfg,
		logger: logger,
		repos:  repos,
	}
	if err := s.setupRoutes(ctx); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes mounts:
//
//	GET    /healthz
//	GET    /uploads/*                                 stored images
//	GET    /p/{id}                                    public page (rate limited)
//	POST   /api/portfolios/{id}/links/{linkID}/click  public (rate limited)
//	GET    /auth/github/login | /auth/github/callback
//	POST   /auth/logout
//	*      /api/...                                   everything else requires a token
func (s *Server) setupRoutes(ctx context.Context) error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.JWTTTL)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}

	plans := service.NewPlanService(s.repos.Plans, s.logger)
	portfolios := service.NewPortfolioService(s.repos.Portfolios, plans, s.logger)
	profiles := service.NewProfileService(s.repos.Users, s.logger)
	accounts := service.NewAuthService(s.repos.Users, tokens, s.logger)
	uploads, err := service.NewUploadService(s.config.UploadDir, uploadsPrefix, s.config.UploadMaxBytes, s.logger)
	if err != nil {
		return fmt.Errorf("creating upload service: %w", err)
	}

	github := auth.NewGitHubProvider(s.config.GitHubClientID, s.config.GitHubClientSecret, s.config.GitHubCallbackURL)
	if !github.Configured() {
		s.logger.Warn("GITHUB_CLIENT_ID or GITHUB_CLIENT_SECRET not set; GitHub login is disabled")
	}

	authHandler := handler.NewAuthHandler(github, accounts, tokens.TTL(), s.logger)
	portfolioHandler := handler.NewPortfolioHandler(portfolios, s.logger)
	accountHandler := handler.NewAccountHandler(profiles, plans, s.logger)
	uploadHandler := handler.NewUploadHandler(uploads, s.logger)
	pageHandler := handler.NewPageHandler(portfolios, s.logger)

	limiter := middleware.NewRateLimiter(ctx, middleware.RateLimitConfig{
		RPS:   s.config.RateLimitRPS,
		Burst: s.config.RateLimitBurst,
	})

	// OptionalAuth runs before Logger so log lines carry the user ID.
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(auth.OptionalAuth(tokens))
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(chimiddleware.Recoverer)

	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})

	fileServer := http.FileServer(http.Dir(uploads.Dir()))
	s.router.Handle(uploadsPrefix+"/*", http.StripPrefix(uploadsPrefix+"/", fileServer))

	s.router.Group(func(r chi.Router) {
		r.Use(limiter.Handler)
		r.Get("/p/{id}", pageHandler.HandlePublic)
		r.Post("/api/portfolios/{id}/links/{linkID}/click", portfolioHandler.HandleClick)
	})

	s.router.Route("/auth", func(r chi.Router) {
		r.Get("/github/login", authHandler.HandleGitHubLogin)
		r.Get("/github/callback", authHandler.HandleGitHubCallback)
		r.Post("/logout", authHandler.HandleLogout)
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Get("/me", authHandler.HandleMe)

		r.Get("/portfolios", portfolioHandler.HandleList)
		r.Post("/portfolios", portfolioHandler.HandleCreate)
		r.Get("/portfolios/{id}", portfolioHandler.HandleGet)
		r.Get("/portfolios/{id}/preview", portfolioHandler.HandlePreview)
		r.Patch("/portfolios/{id}", portfolioHandler.HandleUpdate)

		r.Get("/profile", accountHandler.HandleGetProfile)
		r.Patch("/profile", accountHandler.HandleUpdateProfile)
		r.Get("/plan", accountHandler.HandleGetPlan)

		r.Post("/uploads", uploadHandler.HandleUpload)
	})

	return nil
}

// Start serves until ctx is cancelled, then drains in-flight requests for up to 30
// seconds and closes the storage.
func (s *Server) Start(ctx context.Context) error {
	defer s.repos.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("storage", s.repos.Name),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}
