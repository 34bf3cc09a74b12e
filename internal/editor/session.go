// Package editor is the entry point editing surfaces call.
//
// A Session wires the quota oracle, the portfolio store, the sync client and the change
// bus for one user. Every mutation is applied to the store immediately and scheduled for
// persistence; surfaces that show derived state subscribe to the bus and re-read the store
// when a change is confirmed.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bug-createdme/2share/internal/apperror"
	"github.com/bug-createdme/2share/internal/bus"
	"github.com/bug-createdme/2share/internal/catalog"
	"github.com/bug-createdme/2share/internal/clock"
	"github.com/bug-createdme/2share/internal/design"
	"github.com/bug-createdme/2share/internal/localcache"
	"github.com/bug-createdme/2share/internal/model"
	"github.com/bug-createdme/2share/internal/portfolio"
	"github.com/bug-createdme/2share/internal/quota"
	"github.com/bug-createdme/2share/internal/render"
	"github.com/bug-createdme/2share/internal/syncer"
)

const clickTimeout = 5 * time.Second

// PortfolioService is the remote portfolio API.
type PortfolioService interface {
	portfolio.Remote
	syncer.Updater
}

type Uploader interface {
	Upload(ctx context.Context, filename string, r io.Reader) (string, error)
}

type ClickSink interface {
	RecordClick(ctx context.Context, portfolioID, linkID string) error
}

type Config struct {
	Portfolios PortfolioService
	Profiles   portfolio.ProfileSource // optional
	Plans      quota.PlanSource        // nil means unbounded
	Uploads    Uploader                // optional
	Clicks     ClickSink               // optional

	Cache   localcache.Cache
	User    string
	Catalog *catalog.Catalog
	Bus     *bus.Bus

	Clock   clock.Clock
	Window  time.Duration
	OnError func(error)
}

type Session struct {
	oracle  *quota.Oracle
	store   *portfolio.Store
	sync    *syncer.Client
	bus     *bus.Bus
	catalog *catalog.Catalog
	uploads Uploader
	clicks  ClickSink
	logger  *slog.Logger

	clicksWG sync.WaitGroup
}

func New(cfg Config, logger *slog.Logger) *Session {
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.MustDefault()
	}
	if cfg.Bus == nil {
		cfg.Bus = bus.New(logger)
	}

	var oracle *quota.Oracle
	if cfg.Plans == nil {
		oracle = quota.Static(quota.Unbounded())
	} else {
		oracle = quota.NewOracle(cfg.Plans, logger)
	}

	store := portfolio.NewStore(portfolio.Config{
		Remote:   cfg.Portfolios,
		Profiles: cfg.Profiles,
		Cache:    cfg.Cache,
		CacheKey: localcache.ActivePortfolioKey(cfg.User),
		Quota:    oracle,
	}, logger)

	client := syncer.New(cfg.Portfolios, store, oracle, cfg.Bus, syncer.Config{
		Window:  cfg.Window,
		Clock:   cfg.Clock,
		OnError: cfg.OnError,
	}, logger)

	return &Session{
		oracle:  oracle,
		store:   store,
		sync:    client,
		bus:     cfg.Bus,
		catalog: cfg.Catalog,
		uploads: cfg.Uploads,
		clicks:  cfg.Clicks,
		logger:  logger,
	}
}

// Start loads the plan and the portfolio. The returned error is a warning when
// apperror.Recoverable reports true: the session is usable and renders an empty portfolio
// or blocks persistence as appropriate.
func (s *Session) Start(ctx context.Context, idOrSlug string) (model.Portfolio, error) {
	_, planErr := s.oracle.Load(ctx)
	p, loadErr := s.store.Load(ctx, idOrSlug)
	return p, errors.Join(planErr, loadErr)
}

// Use switches the active portfolio, writing pending changes for the current one first.
func (s *Session) Use(ctx context.Context, idOrSlug string) (model.Portfolio, error) {
	if err := s.sync.Flush(ctx); err != nil {
		s.logger.Warn("flushing before switching portfolio failed", slog.String("error", err.Error()))
	}
	return s.store.Load(ctx, idOrSlug)
}

// =========================================================================
// READ ACCESSORS
// =========================================================================

func (s *Session) Portfolio() model.Portfolio { return s.store.Snapshot() }

func (s *Session) Design() design.Settings { return s.store.Design() }

func (s *Session) Links() []model.SocialLink { return s.store.Links() }

func (s *Session) Quota() quota.Snapshot { return s.oracle.Snapshot() }

// Preview returns the composition the live preview renders.
func (s *Session) Preview() render.Composition { return render.Preview(s.store.Snapshot()) }

func (s *Session) Subscribe(topic bus.Topic, h bus.Handler) (unsubscribe func()) {
	return s.bus.Subscribe(topic, h)
}

// =========================================================================
// MUTATIONS
// =========================================================================

func (s *Session) SetTitle(title string) error {
	if err := s.writable(); err != nil {
		return err
	}
	d, err := s.store.MutateTitle(title)
	if err != nil {
		return err
	}
	s.schedule(d)
	return nil
}

func (s *Session) SetBio(bio string) error {
	if err := s.writable(); err != nil {
		return err
	}
	d, err := s.store.MutateBio(bio)
	if err != nil {
		return err
	}
	s.schedule(d)
	return nil
}

func (s *Session) SetAvatar(url string) error {
	if err := s.writable(); err != nil {
		return err
	}
	s.schedule(s.store.MutateAvatar(url))
	return nil
}

// UploadAvatar stores r through the upload service and sets the returned URL.
func (s *Session) UploadAvatar(ctx context.Context, filename string, r io.Reader) (string, error) {
	if err := s.writable(); err != nil {
		return "", err
	}
	if s.uploads == nil {
		return "", fmt.Errorf("upload avatar: no upload service configured")
	}
	url, err := s.uploads.Upload(ctx, filename, r)
	if err != nil {
		return "", fmt.Errorf("upload avatar: %w", err)
	}
	return url, s.SetAvatar(url)
}

// UpdateDesign merges patch into the stored design and returns the re-resolved settings.
func (s *Session) UpdateDesign(patch model.DesignSettings) (design.Settings, error) {
	if err := s.writable(); err != nil {
		return s.store.Design(), err
	}
	s.schedule(s.store.MutateDesign(patch))
	return s.store.Design(), nil
}

// AddLink adds a platform link with the catalog's color and icon.
func (s *Session) AddLink(name string) (model.SocialLink, error) {
	if err := s.writable(); err != nil {
		return model.SocialLink{}, err
	}
	p := s.catalog.Resolve(name)
	l, d, err := s.store.AddLink(p.Name, p.Color, p.Icon)
	if err != nil {
		return model.SocialLink{}, err
	}
	s.schedule(d)
	return l, nil
}

func (s *Session) SetLinkURL(id, url string) error {
	return s.linkOp(func() (model.PortfolioDelta, error) { return s.store.SetLinkURL(id, url) })
}

func (s *Session) RenameLink(id, displayName string) error {
	return s.linkOp(func() (model.PortfolioDelta, error) { return s.store.SetLinkDisplayName(id, displayName) })
}

func (s *Session) SetLinkEnabled(id string, enabled bool) error {
	return s.linkOp(func() (model.PortfolioDelta, error) { return s.store.SetLinkEnabled(id, enabled) })
}

func (s *Session) MoveLink(id string, newIndex int) error {
	return s.linkOp(func() (model.PortfolioDelta, error) { return s.store.ReorderLink(id, newIndex), nil })
}

// RemoveLink deletes the link. Callers confirm with the user beforehand.
func (s *Session) RemoveLink(id string) error {
	return s.linkOp(func() (model.PortfolioDelta, error) {
		d, ok := s.store.RemoveLink(id)
		if !ok {
			return d, apperror.NotFound("social link", id)
		}
		return d, nil
	})
}

// RecordClick bumps the local counter and notifies the analytics sink in the background.
// It never blocks on writes and ignores quota.
func (s *Session) RecordClick(linkID string) (int64, bool) {
	n, ok := s.store.IncrementClicks(linkID)
	if !ok {
		return 0, false
	}
	id := s.store.ID()
	if s.clicks == nil || id == "" {
		return n, true
	}

	s.clicksWG.Add(1)
	go func() {
		defer s.clicksWG.Done()
		ctx, cancel := context.WithTimeout(context.Background(), clickTimeout)
		defer cancel()
		if err := s.clicks.RecordClick(ctx, id, linkID); err != nil {
			s.logger.Warn("recording click failed",
				slog.String("portfolio_id", id),
				slog.String("link_id", linkID),
				slog.String("error", err.Error()),
			)
		}
	}()
	return n, true
}

// =========================================================================
// PERSISTENCE CONTROL
// =========================================================================

// EnsureIdentity creates the portfolio remotely now if it only exists locally.
func (s *Session) EnsureIdentity(ctx context.Context) (string, error) {
	if err := s.writable(); err != nil {
		return "", err
	}
	return s.store.EnsureIdentity(ctx)
}

func (s *Session) Flush(ctx context.Context) error { return s.sync.Flush(ctx) }

// Retry re-arms the debounce window after a failed write.
func (s *Session) Retry() { s.sync.Retry() }

func (s *Session) Pending() bool { return s.sync.Pending() }

func (s *Session) LastError() error { return s.sync.LastError() }

// Close flushes pending changes, waits for click notifications and stops the sync client.
func (s *Session) Close(ctx context.Context) error {
	err := s.sync.Flush(ctx)
	s.sync.Close()
	s.clicksWG.Wait()
	return err
}

func (s *Session) writable() error {
	if !s.oracle.Snapshot().PlanActive {
		return apperror.PlanUnavailable(nil)
	}
	return nil
}

func (s *Session) linkOp(fn func() (model.PortfolioDelta, error)) error {
	if err := s.writable(); err != nil {
		return err
	}
	d, err := fn()
	if err != nil {
		return err
	}
	s.schedule(d)
	return nil
}

func (s *Session) schedule(d model.PortfolioDelta) {
	s.sync.ScheduleWrite(s.store.ID(), d)
}
