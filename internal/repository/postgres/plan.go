package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bug-createdme/2share/internal/apperror"
	"github.com/bug-createdme/2share/internal/model"
	"github.com/bug-createdme/2share/internal/repository"
)

var _ repository.PlanRepository = (*DB)(nil)

func (db *DB) GetPlan(ctx context.Context, userID string) (*model.Plan, error) {
	const q = `
SELECT name, status, max_social_links, max_business_card, updated_at
FROM plans WHERE user_id=$1`
	var p model.Plan
	err := db.Pool.QueryRow(ctx, q, userID).Scan(
		&p.Name, &p.Status, &p.MaxSocialLinks, &p.MaxBusinessCard, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NotFound("plan", userID)
		}
		return nil, fmt.Errorf("postgres: getting plan for %s: %w", userID, err)
	}
	return &p, nil
}

func (db *DB) SetPlan(ctx context.Context, userID string, plan model.Plan) error {
	const q = `
INSERT INTO plans (user_id, name, status, max_social_links, max_business_card, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id) DO UPDATE SET
    name = EXCLUDED.name,
    status = EXCLUDED.status,
    max_social_links = EXCLUDED.max_social_links,
    max_business_card = EXCLUDED.max_business_card,
    updated_at = EXCLUDED.updated_at`
	_, err := db.Pool.Exec(ctx, q,
		userID, plan.Name, plan.Status, plan.MaxSocialLinks, plan.MaxBusinessCard, time.Now().UTC(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user", userID)
		}
		return fmt.Errorf("postgres: setting plan for %s: %w", userID, err)
	}
	return nil
}
