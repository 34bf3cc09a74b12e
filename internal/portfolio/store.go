// Package portfolio holds the authoritative in-memory copy of the active portfolio.
//
// Every editing surface of a session reads and mutates the same Store. Mutations are
// applied immediately (optimistically) and return the delta that has to be persisted;
// persisting it is the sync client's job. The store is also where a portfolio that only
// exists locally gets its remote identity, exactly once.
package portfolio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	"github.com/bug-createdme/2share/internal/apperror"
	"github.com/bug-createdme/2share/internal/design"
	"github.com/bug-createdme/2share/internal/localcache"
	"github.com/bug-createdme/2share/internal/model"
	"github.com/bug-createdme/2share/internal/quota"
	"github.com/bug-createdme/2share/internal/sociallink"
)

// createTimeout bounds a shared create. It runs detached from the caller that started it,
// so a cancelled caller does not fail the others that joined.
const createTimeout = 30 * time.Second

// ErrStaleCreation is returned when a create finished after a different portfolio became
// active. The created portfolio is not adopted.
var ErrStaleCreation = errors.New("portfolio: creation superseded by another active portfolio")

// Remote is the portfolio service.
type Remote interface {
	CreatePortfolio(ctx context.Context, p model.Portfolio) (*model.Portfolio, error)
	GetPortfolio(ctx context.Context, idOrSlug string) (*model.Portfolio, error)
	ListPortfolios(ctx context.Context) ([]model.Portfolio, error)
}

// ProfileSource seeds a portfolio that does not exist yet.
type ProfileSource interface {
	GetProfile(ctx context.Context) (*model.Profile, error)
}

type Config struct {
	Remote   Remote
	Profiles ProfileSource // optional
	Cache    localcache.Cache
	CacheKey string
	Quota    sociallink.QuotaSource
}

type Store struct {
	remote   Remote
	profiles ProfileSource
	cache    localcache.Cache
	cacheKey string
	quota    sociallink.QuotaSource
	logger   *slog.Logger

	creating singleflight.Group

	mu    sync.Mutex
	p     model.Portfolio // SocialLinks is kept in links
	links *sociallink.Collection
	gen   uint64 // bumped whenever a different portfolio becomes active
	ver   uint64 // bumped on every mutation
	saved int    // counted links the remote last confirmed
}

// Creation describes the outcome of CreateOrJoin.
type Creation struct {
	ID string
	// Created is false when the portfolio already had an identity.
	Created bool
	// Version is the store version whose state the create request carried.
	Version uint64
}

func NewStore(cfg Config, logger *slog.Logger) *Store {
	if cfg.Cache == nil {
		cfg.Cache = localcache.NewMemory()
	}
	if cfg.CacheKey == "" {
		cfg.CacheKey = localcache.ActivePortfolioKey("")
	}
	if cfg.Quota == nil {
		cfg.Quota = quota.Static(quota.Unbounded())
	}
	return &Store{
		remote:   cfg.Remote,
		profiles: cfg.Profiles,
		cache:    cfg.Cache,
		cacheKey: cfg.CacheKey,
		quota:    cfg.Quota,
		logger:   logger,
		links:    sociallink.New(nil, cfg.Quota),
	}
}

// =========================================================================
// LOADING
// =========================================================================

// LoadActive loads the portfolio whose id is in the local cache.
func (s *Store) LoadActive(ctx context.Context) (model.Portfolio, error) {
	return s.Load(ctx, "")
}

// Load fetches idOrSlug (or the cached id when empty) and makes it the active portfolio.
// When the fetch fails the most recently cached id is tried. When that fails too the store
// becomes an empty, not yet created portfolio and the error wraps apperror.ErrNotFound;
// the returned snapshot is still valid and renderable.
func (s *Store) Load(ctx context.Context, idOrSlug string) (model.Portfolio, error) {
	id := strings.TrimSpace(idOrSlug)
	cached := s.cachedID(ctx)
	if id == "" {
		id = cached
	}
	if id == "" {
		s.resetEmpty(ctx)
		return s.Snapshot(), apperror.PortfolioNotFound("", nil)
	}

	p, err := s.remote.GetPortfolio(ctx, id)
	if err == nil {
		s.adopt(ctx, p)
		return s.Snapshot(), nil
	}
	s.logger.Warn("loading portfolio failed",
		slog.String("id", id),
		slog.String("error", err.Error()),
	)
	if id == cached && errors.Is(err, apperror.ErrNotFound) {
		s.forgetID(ctx)
	}

	if cached != "" && cached != id {
		p, cachedErr := s.remote.GetPortfolio(ctx, cached)
		if cachedErr == nil {
			s.logger.Info("fell back to cached portfolio", slog.String("id", cached))
			s.adopt(ctx, p)
			return s.Snapshot(), nil
		}
		if errors.Is(cachedErr, apperror.ErrNotFound) {
			s.forgetID(ctx)
		}
	}

	s.resetEmpty(ctx)
	return s.Snapshot(), apperror.PortfolioNotFound(id, err)
}

// adopt replaces the in-memory state with p and remembers its id.
func (s *Store) adopt(ctx context.Context, p *model.Portfolio) {
	cp := p.Clone()
	cp.Bio = cp.BioText()

	s.mu.Lock()
	s.gen++
	s.ver++
	s.saved = model.CountLinks(cp.SocialLinks)
	s.links = sociallink.New(cp.SocialLinks, s.quota)
	cp.SocialLinks = nil
	s.p = cp
	s.mu.Unlock()

	s.rememberID(ctx, p.ID)
}

// resetEmpty makes the store a not-yet-created portfolio, seeded from the profile when
// one is available.
func (s *Store) resetEmpty(ctx context.Context) {
	var seed model.Portfolio
	if s.profiles != nil {
		prof, err := s.profiles.GetProfile(ctx)
		switch {
		case err != nil:
			s.logger.Warn("loading profile for seeding failed", slog.String("error", err.Error()))
		case prof != nil:
			seed.Title = truncate(prof.Name, model.MaxTitleLength)
			seed.Bio = truncate(prof.Bio, model.MaxBioLength)
			seed.AvatarURL = prof.AvatarURL
			seed.SocialLinks = prof.SocialLinks
		}
	}
	seed.Blocks = model.BioBlocks(seed.Bio)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.ver++
	s.saved = 0
	s.links = sociallink.New(seed.SocialLinks, s.quota)
	seed.SocialLinks = nil
	s.p = seed
}

// =========================================================================
// READ ACCESSORS
// =========================================================================

// Snapshot returns a copy of the whole portfolio.
func (s *Store) Snapshot() model.Portfolio {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() model.Portfolio {
	p := s.p.Clone()
	p.SocialLinks = s.links.Links()
	return p
}

// ID returns the remote identifier, or "" while the portfolio only exists locally.
func (s *Store) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.ID
}

// Generation changes every time a different portfolio becomes active. In-flight results
// captured under an older generation must be ignored.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Version changes on every mutation.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ver
}

// SavedLinkCount returns how many counted links the remote holds for the active portfolio,
// as of the last load or confirmed write.
func (s *Store) SavedLinkCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saved
}

// ConfirmLinks records that the remote now holds n counted links. It is ignored when a
// different portfolio became active after gen.
func (s *Store) ConfirmLinks(gen uint64, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen == gen {
		s.saved = n
	}
}

// Design returns the resolved design settings.
func (s *Store) Design() design.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return design.Resolve(s.p.Design)
}

// Links returns the social links in display order.
func (s *Store) Links() []model.SocialLink {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.links.Links()
}

// =========================================================================
// MUTATIONS
// =========================================================================
//
// Each mutation returns the delta to persist. A rejected mutation changes nothing.

func (s *Store) MutateTitle(title string) (model.PortfolioDelta, error) {
	title = strings.TrimSpace(title)
	if utf8.RuneCountInString(title) > model.MaxTitleLength {
		return model.PortfolioDelta{}, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", model.MaxTitleLength))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.Title = title
	s.ver++
	return model.TitleDelta(title), nil
}

func (s *Store) MutateBio(bio string) (model.PortfolioDelta, error) {
	bio = strings.TrimSpace(bio)
	if utf8.RuneCountInString(bio) > model.MaxBioLength {
		return model.PortfolioDelta{}, apperror.ValidationFailed("bio",
			fmt.Sprintf("bio must be %d characters or less", model.MaxBioLength))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	d := model.BioDelta(bio)
	s.p.Apply(d)
	s.ver++
	return d, nil
}

func (s *Store) MutateAvatar(url string) model.PortfolioDelta {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.AvatarURL = strings.TrimSpace(url)
	s.ver++
	return model.AvatarDelta(s.p.AvatarURL)
}

// MutateDesign merges patch into the raw design record. The delta carries the whole record.
func (s *Store) MutateDesign(patch model.DesignSettings) model.PortfolioDelta {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.p.Design = s.p.Design.Merge(patch)
	s.ver++
	return model.DesignDelta(s.p.Design)
}

func (s *Store) AddLink(name, color, icon string) (model.SocialLink, model.PortfolioDelta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.links.Add(name, color, icon)
	if err != nil {
		return model.SocialLink{}, model.PortfolioDelta{}, err
	}
	s.ver++
	return l, model.LinksDelta(s.links.Links()), nil
}

func (s *Store) ReorderLink(id string, newIndex int) model.PortfolioDelta {
	return s.mutateLinks(func(c *sociallink.Collection) error {
		c.Reorder(id, newIndex)
		return nil
	})
}

func (s *Store) SetLinkURL(id, url string) (model.PortfolioDelta, error) {
	return s.mutateLinksErr(func(c *sociallink.Collection) error { return c.SetURL(id, url) })
}

func (s *Store) SetLinkDisplayName(id, name string) (model.PortfolioDelta, error) {
	return s.mutateLinksErr(func(c *sociallink.Collection) error { return c.SetDisplayName(id, name) })
}

func (s *Store) SetLinkEnabled(id string, enabled bool) (model.PortfolioDelta, error) {
	return s.mutateLinksErr(func(c *sociallink.Collection) error { return c.SetEnabled(id, enabled) })
}

// RemoveLink deletes the link without asking; confirmation belongs to the caller.
func (s *Store) RemoveLink(id string) (model.PortfolioDelta, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.links.Remove(id) {
		return model.PortfolioDelta{}, false
	}
	s.ver++
	return model.LinksDelta(s.links.Links()), true
}

// IncrementClicks updates the local click counter only. It produces no delta: click
// counts are owned by the analytics sink.
func (s *Store) IncrementClicks(id string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.links.IncrementClicks(id)
}

func (s *Store) mutateLinks(fn func(*sociallink.Collection) error) model.PortfolioDelta {
	d, _ := s.mutateLinksErr(fn)
	return d
}

func (s *Store) mutateLinksErr(fn func(*sociallink.Collection) error) (model.PortfolioDelta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fn(s.links); err != nil {
		return model.PortfolioDelta{}, err
	}
	s.ver++
	return model.LinksDelta(s.links.Links()), nil
}

// =========================================================================
// IDENTITY
// =========================================================================

// EnsureIdentity returns the portfolio id, creating the portfolio remotely first if it only
// exists locally. Concurrent callers share a single create request.
func (s *Store) EnsureIdentity(ctx context.Context) (string, error) {
	c, err := s.CreateOrJoin(ctx)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// CreateOrJoin is EnsureIdentity that also reports which state the create carried, so a
// caller holding later mutations knows whether it still has to send them.
func (s *Store) CreateOrJoin(ctx context.Context) (Creation, error) {
	s.mu.Lock()
	if s.p.ID != "" {
		c := Creation{ID: s.p.ID}
		s.mu.Unlock()
		return c, nil
	}
	s.mu.Unlock()

	ch := s.creating.DoChan("create", func() (any, error) {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), createTimeout)
		defer cancel()
		return s.create(cctx)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return Creation{}, res.Err
		}
		if res.Shared {
			s.logger.Debug("joined in-flight portfolio creation")
		}
		return res.Val.(Creation), nil
	case <-ctx.Done():
		return Creation{}, ctx.Err()
	}
}

func (s *Store) create(ctx context.Context) (Creation, error) {
	s.mu.Lock()
	if s.p.ID != "" {
		c := Creation{ID: s.p.ID}
		s.mu.Unlock()
		return c, nil
	}
	gen, ver := s.gen, s.ver
	state := s.snapshotLocked()
	s.mu.Unlock()

	snap := s.quota.Snapshot()
	if !snap.PlanActive {
		return Creation{}, apperror.PlanUnavailable(nil)
	}
	if err := snap.CheckLinks(model.CountLinks(state.SocialLinks)); err != nil {
		return Creation{}, err
	}
	if snap.MaxBusinessCards != nil {
		existing, err := s.remote.ListPortfolios(ctx)
		if err != nil {
			return Creation{}, fmt.Errorf("listing portfolios: %w", err)
		}
		if err := snap.CheckPortfolios(len(existing) + 1); err != nil {
			return Creation{}, err
		}
	}

	created, err := s.remote.CreatePortfolio(ctx, state)
	if err != nil {
		return Creation{}, fmt.Errorf("creating portfolio: %w", err)
	}
	if created == nil || created.ID == "" {
		return Creation{}, fmt.Errorf("creating portfolio: service returned no identifier")
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		s.logger.Warn("discarding creation for a portfolio that is no longer active",
			slog.String("id", created.ID),
		)
		return Creation{}, ErrStaleCreation
	}
	s.saved = model.CountLinks(state.SocialLinks)
	s.p.ID = created.ID
	s.p.Slug = created.Slug
	s.p.OwnerID = created.OwnerID
	s.p.CreatedAt = created.CreatedAt
	s.p.UpdatedAt = created.UpdatedAt
	s.mu.Unlock()

	s.rememberID(ctx, created.ID)
	s.logger.Info("portfolio created",
		slog.String("id", created.ID),
		slog.String("slug", created.Slug),
	)
	return Creation{ID: created.ID, Created: true, Version: ver}, nil
}

// =========================================================================
// LOCAL CACHE
// =========================================================================

func (s *Store) cachedID(ctx context.Context) string {
	id, err := s.cache.Get(ctx, s.cacheKey)
	if err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Warn("reading local cache failed", slog.String("error", err.Error()))
		}
		return ""
	}
	return id
}

func (s *Store) rememberID(ctx context.Context, id string) {
	if err := s.cache.Set(ctx, s.cacheKey, id); err != nil {
		s.logger.Warn("writing local cache failed", slog.String("error", err.Error()))
	}
}

func (s *Store) forgetID(ctx context.Context) {
	if err := s.cache.Clear(ctx, s.cacheKey); err != nil {
		s.logger.Warn("clearing local cache failed", slog.String("error", err.Error()))
	}
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
