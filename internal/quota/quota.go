// Package quota answers "what does the caller's plan allow?".
//
// The snapshot is fetched once when an editing session starts and is read-only afterwards.
// When the plan cannot be fetched the oracle fails closed: the snapshot reports an inactive
// plan, and callers block every mutation that would need persisting.
package quota

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bug-createdme/2share/internal/apperror"
	"github.com/bug-createdme/2share/internal/model"
)

// Snapshot is an immutable view of the plan limits. A nil limit means unbounded.
type Snapshot struct {
	MaxSocialLinks   *int `json:"maxSocialLinks"`
	MaxBusinessCards *int `json:"maxBusinessCards"`
	PlanActive       bool `json:"planActive"`
}

// Unbounded is an active plan with no limits.
func Unbounded() Snapshot {
	return Snapshot{PlanActive: true}
}

// Inactive is the fail-closed snapshot.
func Inactive() Snapshot {
	return Snapshot{}
}

// FromPlan converts the plan service's answer into a snapshot.
func FromPlan(p model.Plan) Snapshot {
	return Snapshot{
		MaxSocialLinks:   copyLimit(p.MaxSocialLinks),
		MaxBusinessCards: copyLimit(p.MaxBusinessCard),
		PlanActive:       p.Active(),
	}
}

// AllowsLinks reports whether n counted social links fit the plan.
func (s Snapshot) AllowsLinks(n int) bool {
	return s.MaxSocialLinks == nil || n <= *s.MaxSocialLinks
}

// AllowsPortfolios reports whether n portfolios fit the plan.
func (s Snapshot) AllowsPortfolios(n int) bool {
	return s.MaxBusinessCards == nil || n <= *s.MaxBusinessCards
}

// CheckLinks returns a QuotaExceeded error when n counted links do not fit.
func (s Snapshot) CheckLinks(n int) error {
	if s.AllowsLinks(n) {
		return nil
	}
	return apperror.QuotaExceeded("social links", *s.MaxSocialLinks)
}

// CheckPortfolios returns a QuotaExceeded error when n portfolios do not fit.
func (s Snapshot) CheckPortfolios(n int) error {
	if s.AllowsPortfolios(n) {
		return nil
	}
	return apperror.QuotaExceeded("business cards", *s.MaxBusinessCards)
}

func copyLimit(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}

// PlanSource is the remote plan service.
type PlanSource interface {
	GetCurrentPlan(ctx context.Context) (*model.Plan, error)
}

// Oracle caches the snapshot for one session.
type Oracle struct {
	source PlanSource
	logger *slog.Logger

	mu     sync.RWMutex
	snap   Snapshot
	loaded bool
}

func NewOracle(source PlanSource, logger *slog.Logger) *Oracle {
	return &Oracle{source: source, logger: logger}
}

// Static returns an oracle that always answers snap. Used by tools and tests that already
// know the limits.
func Static(snap Snapshot) *Oracle {
	return &Oracle{snap: snap, loaded: true, logger: slog.Default()}
}

// Load fetches the plan and stores the snapshot. On failure the stored snapshot is
// Inactive and the returned error wraps apperror.ErrPlanUnavailable; the snapshot is still
// usable, so callers should surface the error as a warning.
func (o *Oracle) Load(ctx context.Context) (Snapshot, error) {
	if o.source == nil {
		return o.Snapshot(), nil
	}

	plan, err := o.source.GetCurrentPlan(ctx)
	if err == nil && plan == nil {
		err = fmt.Errorf("plan service returned no plan")
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.loaded = true

	if err != nil {
		o.snap = Inactive()
		o.logger.Warn("plan lookup failed, persistence disabled",
			slog.String("error", err.Error()),
		)
		return o.snap, apperror.PlanUnavailable(err)
	}

	o.snap = FromPlan(*plan)
	if !o.snap.PlanActive {
		o.logger.Warn("plan is not active, persistence disabled",
			slog.String("plan", plan.Name),
			slog.String("status", plan.Status),
		)
	}
	return o.snap, nil
}

// Snapshot returns the loaded snapshot, or Inactive before the first Load.
func (o *Oracle) Snapshot() Snapshot {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if !o.loaded {
		return Inactive()
	}
	return o.snap
}
