package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/bug-createdme/2share/internal/apperror"
	"github.com/bug-createdme/2share/internal/model"
	"github.com/bug-createdme/2share/internal/repository"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeUserRepo is an in-memory repository.UserRepository.
type fakeUserRepo struct {
	users  map[string]*model.User
	byGHID map[int64]*model.User
	nextID int

	upsertErr  error
	getByIDErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[string]*model.User),
		byGHID: make(map[int64]*model.User),
		nextID: 1,
	}
}

func (f *fakeUserRepo) Upsert(_ context.Context, user *model.User) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if existing, ok := f.byGHID[user.GitHubID]; ok {
		existing.Login = user.Login
		existing.Email = user.Email
		existing.AvatarURL = user.AvatarURL
		*user = *existing
		return nil
	}
	user.ID = fmt.Sprintf("user-%d", f.nextID)
	f.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	f.users[user.ID] = &stored
	f.byGHID[user.GitHubID] = &stored
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	if f.getByIDErr != nil {
		return nil, f.getByIDErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	cp := *u
	cp.SocialLinks = model.CloneLinks(u.SocialLinks)
	return &cp, nil
}

func (f *fakeUserRepo) UpdateProfile(_ context.Context, user *model.User) error {
	u, ok := f.users[user.ID]
	if !ok {
		return apperror.NotFound("user", user.ID)
	}
	u.Bio = user.Bio
	u.AvatarURL = user.AvatarURL
	u.SocialLinks = model.CloneLinks(user.SocialLinks)
	return nil
}

// fakePlanRepo is an in-memory repository.PlanRepository.
type fakePlanRepo struct {
	plans  map[string]model.Plan
	getErr error
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: make(map[string]model.Plan)}
}

func (f *fakePlanRepo) GetPlan(_ context.Context, userID string) (*model.Plan, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.plans[userID]
	if !ok {
		return nil, apperror.NotFound("plan", userID)
	}
	return &p, nil
}

func (f *fakePlanRepo) SetPlan(_ context.Context, userID string, plan model.Plan) error {
	f.plans[userID] = plan
	return nil
}

// fakePortfolioRepo is an in-memory repository.PortfolioRepository.
type fakePortfolioRepo struct {
	mu         sync.Mutex
	portfolios map[string]*model.Portfolio
	clicks     map[string]int64
	nextID     int

	// createConflicts makes the next n creates fail with a slug conflict.
	createConflicts int
	updateErr       error
}

func newFakePortfolioRepo() *fakePortfolioRepo {
	return &fakePortfolioRepo{
		portfolios: make(map[string]*model.Portfolio),
		clicks:     make(map[string]int64),
	}
}

var _ repository.PortfolioRepository = (*fakePortfolioRepo)(nil)

func (f *fakePortfolioRepo) CreatePortfolio(_ context.Context, p *model.Portfolio) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createConflicts > 0 {
		f.createConflicts--
		return apperror.Conflict("portfolio slug", p.Slug)
	}
	for _, existing := range f.portfolios {
		if existing.Slug == p.Slug {
			return apperror.Conflict("portfolio slug", p.Slug)
		}
	}
	f.nextID++
	p.ID = fmt.Sprintf("p-%d", f.nextID)
	p.CreatedAt = time.Now()
	stored := p.Clone()
	f.portfolios[p.ID] = &stored
	return nil
}

func (f *fakePortfolioRepo) get(id string) (*model.Portfolio, bool) {
	p, ok := f.portfolios[id]
	if !ok {
		return nil, false
	}
	cp := p.Clone()
	for i := range cp.SocialLinks {
		cp.SocialLinks[i].Clicks = f.clicks[id+"/"+cp.SocialLinks[i].ID]
	}
	return &cp, true
}

func (f *fakePortfolioRepo) GetPortfolio(_ context.Context, id string) (*model.Portfolio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.get(id)
	if !ok {
		return nil, apperror.PortfolioNotFound(id, nil)
	}
	return p, nil
}

func (f *fakePortfolioRepo) GetPortfolioBySlug(_ context.Context, slug string) (*model.Portfolio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, p := range f.portfolios {
		if p.Slug == slug {
			out, _ := f.get(id)
			return out, nil
		}
	}
	return nil, apperror.PortfolioNotFound(slug, nil)
}

func (f *fakePortfolioRepo) ListPortfolios(_ context.Context, ownerID string, opts repository.ListOptions) ([]model.Portfolio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Portfolio, 0)
	for id, p := range f.portfolios {
		if p.OwnerID == ownerID {
			cp, _ := f.get(id)
			out = append(out, *cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if opts.Offset >= len(out) {
		return []model.Portfolio{}, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (f *fakePortfolioRepo) CountPortfolios(_ context.Context, ownerID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.portfolios {
		if p.OwnerID == ownerID {
			n++
		}
	}
	return n, nil
}

func (f *fakePortfolioRepo) UpdatePortfolio(_ context.Context, p *model.Portfolio) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.portfolios[p.ID]; !ok {
		return apperror.PortfolioNotFound(p.ID, nil)
	}
	stored := p.Clone()
	f.portfolios[p.ID] = &stored
	return nil
}

func (f *fakePortfolioRepo) SlugExists(_ context.Context, slug string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.portfolios {
		if p.Slug == slug {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePortfolioRepo) IncrementClicks(_ context.Context, portfolioID, linkID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.portfolios[portfolioID]; !ok {
		return 0, apperror.PortfolioNotFound(portfolioID, nil)
	}
	f.clicks[portfolioID+"/"+linkID]++
	return f.clicks[portfolioID+"/"+linkID], nil
}
