// Package repository declares the storage interfaces the service layer depends on.
//
// Two backends implement them: repository/sqlite (the default, embedded) and
// repository/postgres (selected with DATABASE_URL). Implementations translate "no row"
// into apperror.ErrNotFound and unique violations into apperror.ErrConflict.
package repository

import (
	"context"

	"github.com/bug-createdme/2share/internal/model"
)

type ListOptions struct {
	Limit  int
	Offset int
}

// PortfolioRepository stores portfolios. Social links, blocks and design settings are
// persisted as JSON documents; click counts live in their own table and are merged into
// the links on read.
type PortfolioRepository interface {
	CreatePortfolio(ctx context.Context, p *model.Portfolio) error
	GetPortfolio(ctx context.Context, id string) (*model.Portfolio, error)
	GetPortfolioBySlug(ctx context.Context, slug string) (*model.Portfolio, error)
	ListPortfolios(ctx context.Context, ownerID string, opts ListOptions) ([]model.Portfolio, error)
	CountPortfolios(ctx context.Context, ownerID string) (int, error)
	UpdatePortfolio(ctx context.Context, p *model.Portfolio) error
	SlugExists(ctx context.Context, slug string) (bool, error)
	IncrementClicks(ctx context.Context, portfolioID, linkID string) (int64, error)
}

type UserRepository interface {
	Upsert(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User) error
}

// PlanRepository returns apperror.ErrNotFound for users without a stored plan.
type PlanRepository interface {
	GetPlan(ctx context.Context, userID string) (*model.Plan, error)
	SetPlan(ctx context.Context, userID string, plan model.Plan) error
}
