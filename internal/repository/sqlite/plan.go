package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bug-createdme/2share/internal/apperror"
	"github.com/bug-createdme/2share/internal/model"
	"github.com/bug-createdme/2share/internal/repository"
)

var _ repository.PlanRepository = (*DB)(nil)

func (db *DB) GetPlan(ctx context.Context, userID string) (*model.Plan, error) {
	var (
		p            model.Plan
		links, cards sql.NullInt64
	)
	err := db.conn.QueryRowContext(ctx,
		`SELECT name, status, max_social_links, max_business_card, updated_at
		 FROM plans WHERE user_id = ?`,
		userID,
	).Scan(&p.Name, &p.Status, &links, &cards, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("plan", userID)
		}
		return nil, fmt.Errorf("sqlite: getting plan for %s: %w", userID, err)
	}

	p.MaxSocialLinks = nullableInt(links)
	p.MaxBusinessCard = nullableInt(cards)
	return &p, nil
}

// SetPlan stores plan as the user's current subscription, replacing any previous one.
func (db *DB) SetPlan(ctx context.Context, userID string, plan model.Plan) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO plans (user_id, name, status, max_social_links, max_business_card, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
		     name = excluded.name,
		     status = excluded.status,
		     max_social_links = excluded.max_social_links,
		     max_business_card = excluded.max_business_card,
		     updated_at = excluded.updated_at`,
		userID, plan.Name, plan.Status,
		intOrNull(plan.MaxSocialLinks), intOrNull(plan.MaxBusinessCard),
		time.Now().UTC(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperror.NotFound("user", userID)
		}
		return fmt.Errorf("sqlite: setting plan for %s: %w", userID, err)
	}
	return nil
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	return model.Int(int(v.Int64))
}

func intOrNull(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}
