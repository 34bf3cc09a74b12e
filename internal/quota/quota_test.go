package quota

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bug-createdme/2share/internal/apperror"
	"github.com/bug-createdme/2share/internal/model"
)

type fakePlanSource struct {
	plan  *model.Plan
	err   error
	calls int
}

func (f *fakePlanSource) GetCurrentPlan(context.Context) (*model.Plan, error) {
	f.calls++
	return f.plan, f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOracle_LoadActivePlan(t *testing.T) {
	src := &fakePlanSource{plan: &model.Plan{
		Name:            "pro",
		Status:          model.PlanStatusActive,
		MaxSocialLinks:  model.Int(10),
		MaxBusinessCard: nil,
	}}
	o := NewOracle(src, discardLogger())

	snap, err := o.Load(context.Background())
	require.NoError(t, err)
	assert.True(t, snap.PlanActive)
	require.NotNil(t, snap.MaxSocialLinks)
	assert.Equal(t, 10, *snap.MaxSocialLinks)
	assert.Nil(t, snap.MaxBusinessCards)
	assert.Equal(t, snap, o.Snapshot())
}

func TestOracle_FailsClosed(t *testing.T) {
	o := NewOracle(&fakePlanSource{err: errors.New("503")}, discardLogger())

	snap, err := o.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrPlanUnavailable))
	assert.False(t, snap.PlanActive)
	assert.False(t, o.Snapshot().PlanActive)
}

func TestOracle_NilPlanIsUnavailable(t *testing.T) {
	o := NewOracle(&fakePlanSource{}, discardLogger())
	_, err := o.Load(context.Background())
	assert.ErrorIs(t, err, apperror.ErrPlanUnavailable)
}

func TestOracle_InactiveBeforeLoad(t *testing.T) {
	o := NewOracle(&fakePlanSource{plan: &model.Plan{Status: model.PlanStatusActive}}, discardLogger())
	assert.False(t, o.Snapshot().PlanActive)
}

func TestOracle_InactiveStatus(t *testing.T) {
	o := NewOracle(&fakePlanSource{plan: &model.Plan{Status: model.PlanStatusInactive}}, discardLogger())
	snap, err := o.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, snap.PlanActive)
}

func TestSnapshot_Limits(t *testing.T) {
	s := Snapshot{MaxSocialLinks: model.Int(2), MaxBusinessCards: model.Int(1), PlanActive: true}

	assert.True(t, s.AllowsLinks(2))
	assert.False(t, s.AllowsLinks(3))
	assert.NoError(t, s.CheckLinks(0))
	assert.ErrorIs(t, s.CheckLinks(3), apperror.ErrQuotaExceeded)

	assert.True(t, s.AllowsPortfolios(1))
	assert.ErrorIs(t, s.CheckPortfolios(2), apperror.ErrQuotaExceeded)

	assert.True(t, Unbounded().AllowsLinks(1000))
}

func TestFromPlan_CopiesLimits(t *testing.T) {
	p := model.FreePlan()
	s := FromPlan(p)
	*p.MaxSocialLinks = 99
	assert.Equal(t, 5, *s.MaxSocialLinks)
}
