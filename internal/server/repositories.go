package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bug-createdme/2share/internal/config"
	"github.com/bug-createdme/2share/internal/repository"
	"github.com/bug-createdme/2share/internal/repository/postgres"
	sqliteRepo "github.com/bug-createdme/2share/internal/repository/sqlite"
)

// Repositories is the storage backend the server runs on.
type Repositories struct {
	Name       string
	Portfolios repository.PortfolioRepository
	Users      repository.UserRepository
	Plans      repository.PlanRepository
	close      func()
}

func (r *Repositories) Close() {
	if r.close != nil {
		r.close()
	}
}

// OpenRepositories connects to Postgres when DATABASE_URL is set, applying pending
// migrations first, and otherwise opens the SQLite file at DB_PATH.
func OpenRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Repositories, error) {
	if cfg.UsePostgres() {
		if err := postgres.Migrate(ctx, cfg.DatabaseURL); err != nil {
			return nil, err
		}
		db, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info("using postgres storage")
		return NewRepositories("postgres", db, db, db, db.Close), nil
	}

	if cfg.DBPath != ":memory:" {
		dir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	logger.Info("using sqlite storage", slog.String("path", cfg.DBPath))
	return NewRepositories("sqlite", db, db, db, func() { _ = db.Close() }), nil
}

// NewRepositories assembles a backend from its parts.
func NewRepositories(name string, portfolios repository.PortfolioRepository, users repository.UserRepository, plans repository.PlanRepository, closeFn func()) *Repositories {
	return &Repositories{
		Name:       name,
		Portfolios: portfolios,
		Users:      users,
		Plans:      plans,
		close:      closeFn,
	}
}
