package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bug-createdme/2share/internal/apperror"
	"github.com/bug-createdme/2share/internal/model"
	"github.com/bug-createdme/2share/internal/quota"
	"github.com/bug-createdme/2share/internal/repository"
)

// PlanService resolves a user's subscription. Users with no stored plan are on
// model.FreePlan.
type PlanService struct {
	plans  repository.PlanRepository
	logger *slog.Logger
}

func NewPlanService(plans repository.PlanRepository, logger *slog.Logger) *PlanService {
	return &PlanService{plans: plans, logger: logger}
}

func (s *PlanService) Current(ctx context.Context, userID string) (*model.Plan, error) {
	p, err := s.plans.GetPlan(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			free := model.FreePlan()
			return &free, nil
		}
		return nil, fmt.Errorf("service/plan: loading plan for %s: %w", userID, err)
	}
	return p, nil
}

// Quota is the snapshot of Current. A failed lookup fails closed.
func (s *PlanService) Quota(ctx context.Context, userID string) quota.Snapshot {
	p, err := s.Current(ctx, userID)
	if err != nil {
		s.logger.Warn("plan lookup failed, treating as inactive",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return quota.Inactive()
	}
	return quota.FromPlan(*p)
}

// Set replaces the user's plan.
func (s *PlanService) Set(ctx context.Context, userID string, plan model.Plan) error {
	switch plan.Status {
	case model.PlanStatusActive, model.PlanStatusTrialing, model.PlanStatusInactive:
	default:
		return apperror.ValidationFailed("status", "status must be active, trialing or inactive")
	}
	if plan.Name == "" {
		return apperror.ValidationFailed("name", "plan name is required")
	}
	for field, v := range map[string]*int{"maxSocialLinks": plan.MaxSocialLinks, "maxBusinessCard": plan.MaxBusinessCard} {
		if v != nil && *v < 0 {
			return apperror.ValidationFailed(field, "limit must not be negative")
		}
	}

	if err := s.plans.SetPlan(ctx, userID, plan); err != nil {
		return fmt.Errorf("service/plan: setting plan for %s: %w", userID, err)
	}
	s.logger.Info("plan updated",
		slog.String("userID", userID),
		slog.String("plan", plan.Name),
		slog.String("status", plan.Status),
	)
	return nil
}
