package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rs/xid"

	"github.com/bug-createdme/2share/internal/apperror"
	"github.com/bug-createdme/2share/internal/model"
	"github.com/bug-createdme/2share/internal/repository"
	"github.com/bug-createdme/2share/internal/slug"
)

// slugAttempts is how many numbered candidates ("ada", "ada-2", ...) are tried before
// falling back to a random suffix.
const slugAttempts = 5

// PortfolioService owns portfolio creation, updates, lookups and click counting.
type PortfolioService struct {
	repo   repository.PortfolioRepository
	plans  *PlanService
	logger *slog.Logger
}

func NewPortfolioService(repo repository.PortfolioRepository, plans *PlanService, logger *slog.Logger) *PortfolioService {
	return &PortfolioService{repo: repo, plans: plans, logger: logger}
}

// Create stores a new portfolio owned by ownerID. The server assigns the ID and a unique
// slug derived from the title. The plan must be active, the owner must have a business
// card left, and the counted links must fit the link limit.
func (s *PortfolioService) Create(ctx context.Context, ownerID string, in model.Portfolio) (*model.Portfolio, error) {
	p := in.Clone()
	p.ID = ""
	p.OwnerID = ownerID
	p.Title = strings.TrimSpace(p.Title)
	if p.Bio == "" {
		p.Bio = p.BioText()
	}
	p.Blocks = model.BioBlocks(p.Bio)
	if p.SocialLinks == nil {
		p.SocialLinks = []model.SocialLink{}
	}
	for i := range p.SocialLinks {
		p.SocialLinks[i].Clicks = 0
	}

	if err := validatePortfolio(&p); err != nil {
		return nil, err
	}

	q := s.plans.Quota(ctx, ownerID)
	if !q.PlanActive {
		return nil, apperror.PlanUnavailable(nil)
	}
	if err := q.CheckLinks(model.CountLinks(p.SocialLinks)); err != nil {
		return nil, err
	}
	n, err := s.repo.CountPortfolios(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("service/portfolio: counting portfolios: %w", err)
	}
	if err := q.CheckPortfolios(n + 1); err != nil {
		return nil, err
	}

	if err := s.insertWithSlug(ctx, &p); err != nil {
		s.logger.Error("failed to create portfolio",
			slog.String("ownerID", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("portfolio created",
		slog.String("id", p.ID),
		slog.String("slug", p.Slug),
		slog.String("ownerID", ownerID),
	)
	return &p, nil
}

// insertWithSlug picks the first free slug candidate. A concurrent create can still take
// the slug between the check and the insert, in which case the insert is retried with a
// random suffix.
func (s *PortfolioService) insertWithSlug(ctx context.Context, p *model.Portfolio) error {
	base := slug.Or(p.Title, "portfolio")

	p.Slug = ""
	for i := 1; i <= slugAttempts; i++ {
		candidate := base
		if i > 1 {
			candidate = fmt.Sprintf("%s-%d", base, i)
		}
		taken, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return fmt.Errorf("service/portfolio: checking slug: %w", err)
		}
		if !taken {
			p.Slug = candidate
			break
		}
	}
	if p.Slug == "" {
		p.Slug = randomSlug(base)
	}

	err := s.repo.CreatePortfolio(ctx, p)
	if errors.Is(err, apperror.ErrConflict) {
		p.Slug = randomSlug(base)
		err = s.repo.CreatePortfolio(ctx, p)
	}
	if err != nil {
		return fmt.Errorf("service/portfolio: creating portfolio: %w", err)
	}
	return nil
}

func randomSlug(base string) string {
	id := xid.New().String()
	return base + "-" + id[len(id)-6:]
}

// Get returns a portfolio by ID or slug without an ownership check. It backs the public
// page and click counting.
func (s *PortfolioService) Get(ctx context.Context, idOrSlug string) (*model.Portfolio, error) {
	p, err := s.repo.GetPortfolio(ctx, idOrSlug)
	if errors.Is(err, apperror.ErrNotFound) {
		p, err = s.repo.GetPortfolioBySlug(ctx, idOrSlug)
	}
	if err != nil {
		return nil, fmt.Errorf("service/portfolio: getting %s: %w", idOrSlug, err)
	}
	return p, nil
}

// GetOwned is Get restricted to the owner. Other users get a NotFound, so IDs of foreign
// portfolios cannot be probed.
func (s *PortfolioService) GetOwned(ctx context.Context, userID, idOrSlug string) (*model.Portfolio, error) {
	p, err := s.Get(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if p.OwnerID != userID {
		return nil, apperror.PortfolioNotFound(idOrSlug, nil)
	}
	return p, nil
}

func (s *PortfolioService) List(ctx context.Context, ownerID string, limit, offset int) ([]model.Portfolio, error) {
	limit, offset = clampList(limit, offset)
	list, err := s.repo.ListPortfolios(ctx, ownerID, repository.ListOptions{Limit: limit, Offset: offset})
	if err != nil {
		s.logger.Error("failed to list portfolios", slog.String("error", err.Error()))
		return nil, fmt.Errorf("service/portfolio: listing: %w", err)
	}
	return list, nil
}

// Update applies delta to the caller's portfolio.
//
// Only the owner may update, and only while their plan is active. A delta that raises the
// counted link total is checked against the link limit; one that lowers or keeps it is
// accepted even over the limit, so a downgraded user can still tidy up.
func (s *PortfolioService) Update(ctx context.Context, userID, id string, delta model.PortfolioDelta) (*model.Portfolio, error) {
	p, err := s.repo.GetPortfolio(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service/portfolio: getting %s: %w", id, err)
	}
	if p.OwnerID != userID {
		return nil, apperror.Forbidden("you do not own this portfolio")
	}

	q := s.plans.Quota(ctx, userID)
	if !q.PlanActive {
		return nil, apperror.PlanUnavailable(nil)
	}

	before := model.CountLinks(p.SocialLinks)
	p.Apply(delta)
	if delta.Title != nil {
		p.Title = strings.TrimSpace(p.Title)
	}
	if err := validatePortfolio(p); err != nil {
		return nil, err
	}
	if after := model.CountLinks(p.SocialLinks); after > before {
		if err := q.CheckLinks(after); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdatePortfolio(ctx, p); err != nil {
		s.logger.Error("failed to update portfolio",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("service/portfolio: updating %s: %w", id, err)
	}
	s.logger.Debug("portfolio updated", slog.String("id", id))

	// Click counts in the delta are ignored; re-read to return the stored totals.
	return s.repo.GetPortfolio(ctx, id)
}

// RecordClick counts one click on a public link and returns the new total.
func (s *PortfolioService) RecordClick(ctx context.Context, portfolioID, linkID string) (int64, error) {
	p, err := s.repo.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return 0, fmt.Errorf("service/portfolio: getting %s: %w", portfolioID, err)
	}

	found := false
	for _, l := range p.SocialLinks {
		if l.ID == linkID && l.Counted() {
			found = true
			break
		}
	}
	if !found {
		return 0, apperror.NotFound("social link", linkID)
	}

	n, err := s.repo.IncrementClicks(ctx, portfolioID, linkID)
	if err != nil {
		return 0, fmt.Errorf("service/portfolio: recording click: %w", err)
	}
	return n, nil
}
