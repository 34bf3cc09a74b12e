package handler_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bug-createdme/2share/internal/auth"
	"github.com/bug-createdme/2share/internal/model"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// asUser marks every request as authenticated by userID, standing in for RequireAuth.
func asUser(userID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	}
}

// stubPortfolios is a hand-written PortfolioService whose behaviour each test sets.
type stubPortfolios struct {
	createFn func(ownerID string, in model.Portfolio) (*model.Portfolio, error)
	getFn    func(idOrSlug string) (*model.Portfolio, error)
	ownedFn  func(userID, idOrSlug string) (*model.Portfolio, error)
	listFn   func(ownerID string, limit, offset int) ([]model.Portfolio, error)
	updateFn func(userID, id string, delta model.PortfolioDelta) (*model.Portfolio, error)
	clickFn  func(portfolioID, linkID string) (int64, error)
}

func (s *stubPortfolios) Create(_ context.Context, ownerID string, in model.Portfolio) (*model.Portfolio, error) {
	return s.createFn(ownerID, in)
}

func (s *stubPortfolios) Get(_ context.Context, idOrSlug string) (*model.Portfolio, error) {
	return s.getFn(idOrSlug)
}

func (s *stubPortfolios) GetOwned(_ context.Context, userID, idOrSlug string) (*model.Portfolio, error) {
	return s.ownedFn(userID, idOrSlug)
}

func (s *stubPortfolios) List(_ context.Context, ownerID string, limit, offset int) ([]model.Portfolio, error) {
	return s.listFn(ownerID, limit, offset)
}

func (s *stubPortfolios) Update(_ context.Context, userID, id string, delta model.PortfolioDelta) (*model.Portfolio, error) {
	return s.updateFn(userID, id, delta)
}

func (s *stubPortfolios) RecordClick(_ context.Context, portfolioID, linkID string) (int64, error) {
	return s.clickFn(portfolioID, linkID)
}

func newRouter(userID string, mount func(r chi.Router)) http.Handler {
	r := chi.NewRouter()
	if userID != "" {
		r.Use(asUser(userID))
	}
	mount(r)
	return r
}
