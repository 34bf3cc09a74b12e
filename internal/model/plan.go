package model

import "time"

const (
	PlanStatusActive   = "active"
	PlanStatusTrialing = "trialing"
	PlanStatusInactive = "inactive"
)

// Plan is the caller's subscription as returned by the plan service.
// A nil limit means unbounded.
type Plan struct {
	Name            string    `json:"name"`
	Status          string    `json:"status"`
	MaxSocialLinks  *int      `json:"maxSocialLinks"`
	MaxBusinessCard *int      `json:"maxBusinessCard"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (p Plan) Active() bool {
	return p.Status == PlanStatusActive || p.Status == PlanStatusTrialing
}

// FreePlan is what a user gets before any subscription exists.
func FreePlan() Plan {
	return Plan{
		Name:            "free",
		Status:          PlanStatusActive,
		MaxSocialLinks:  Int(5),
		MaxBusinessCard: Int(1),
	}
}
