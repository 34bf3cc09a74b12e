// Package syncer debounces portfolio deltas into remote writes.
//
// THE PENDING SLOT:
// A Client owns exactly one pending slot. Every scheduled delta is merged into it (the
// latest value of each field wins) and the debounce window restarts. Typing a title one
// key at a time therefore produces one write, not one per key:
//
//	ScheduleWrite(title "a")    slot = {title: "a"}            timer restarts
//	ScheduleWrite(title "ab")   slot = {title: "ab"}           timer restarts
//	ScheduleWrite(bio "hi")     slot = {title: "ab", bio: "hi"} timer restarts
//	... window elapses ...      one UpdatePortfolio with both fields
//
// THE WRITE PATH:
// When the window elapses the slot is taken and cleared, and write runs these gates in order:
//
//  1. The plan must be active (fail closed).
//  2. The portfolio must still be the one the delta was scheduled for (stale guard).
//  3. A link change must not grow the counted links past the plan limit. The comparison is
//     against what the remote last confirmed, so shrinking or reordering an over-limit
//     collection is always allowed.
//  4. A portfolio without an id is created first, through the store's shared create.
//
// At most one write is in flight. A timer that fires during a write re-arms the window
// instead of starting a second one.
//
// FAILURES:
// A failed delta is put back into the slot underneath anything scheduled meanwhile and
// reported to OnError. Nothing retries on its own; Retry re-arms the window and Flush
// writes right away. Subscribers hear about a change only after the remote confirmed it.
package syncer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/bug-createdme/2share/internal/apperror"
	"github.com/bug-createdme/2share/internal/bus"
	"github.com/bug-createdme/2share/internal/clock"
	"github.com/bug-createdme/2share/internal/model"
	"github.com/bug-createdme/2share/internal/portfolio"
	"github.com/bug-createdme/2share/internal/sociallink"
)

const (
	DefaultWindow       = time.Second
	DefaultWriteTimeout = 15 * time.Second
)

// Updater is the update half of the remote portfolio service.
type Updater interface {
	UpdatePortfolio(ctx context.Context, id string, delta model.PortfolioDelta) error
}

// Identity is the store side of a write: who the portfolio is and how to create it.
type Identity interface {
	ID() string
	Generation() uint64
	Version() uint64
	SavedLinkCount() int
	ConfirmLinks(gen uint64, n int)
	CreateOrJoin(ctx context.Context) (portfolio.Creation, error)
}

type Publisher interface {
	Publish(topic bus.Topic, portfolioID string)
}

type Config struct {
	Window       time.Duration
	WriteTimeout time.Duration
	Clock        clock.Clock
	// OnError receives every failed write. Defaults to a warning log.
	OnError func(error)
}

// errStale marks a write whose portfolio stopped being active while it was in flight.
var errStale = errors.New("portfolio is no longer active")

type slot struct {
	set     bool
	gen     uint64
	version uint64
	delta   model.PortfolioDelta
}

type Client struct {
	updater  Updater
	identity Identity
	quota    sociallink.QuotaSource
	pub      Publisher
	logger   *slog.Logger

	window  time.Duration
	timeout time.Duration
	clock   clock.Clock
	onError func(error)

	mu       sync.Mutex
	pending  slot
	timer    clock.Timer
	inFlight bool
	idle     chan struct{} // closed when the in-flight write finishes
	lastErr  error
	closed   bool
}

func New(updater Updater, identity Identity, q sociallink.QuotaSource, pub Publisher, cfg Config, logger *slog.Logger) *Client {
	c := &Client{
		updater:  updater,
		identity: identity,
		quota:    q,
		pub:      pub,
		logger:   logger,
		window:   cfg.Window,
		timeout:  cfg.WriteTimeout,
		clock:    cfg.Clock,
		onError:  cfg.OnError,
	}
	if c.window <= 0 {
		c.window = DefaultWindow
	}
	if c.timeout <= 0 {
		c.timeout = DefaultWriteTimeout
	}
	if c.clock == nil {
		c.clock = clock.Real{}
	}
	if c.onError == nil {
		c.onError = func(err error) {
			logger.Warn("portfolio write failed", slog.String("error", err.Error()))
		}
	}
	return c
}

// ScheduleWrite merges delta into the pending slot and restarts the debounce window.
// portfolioID is informational; the write targets whatever identity the store holds when
// the window elapses, provided it is still the same portfolio.
func (c *Client) ScheduleWrite(portfolioID string, delta model.PortfolioDelta) {
	if delta.IsEmpty() {
		return
	}
	gen, ver := c.identity.Generation(), c.identity.Version()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.pending.set && c.pending.gen != gen {
		c.logger.Debug("dropping pending write for previous portfolio")
		c.pending = slot{}
	}
	c.pending = slot{
		set:     true,
		gen:     gen,
		version: max(c.pending.version, ver),
		delta:   c.pending.delta.Merge(delta),
	}
	c.logger.Debug("write scheduled", slog.String("portfolio_id", portfolioID))
	c.armLocked()
}

// Retry restarts the debounce window for a delta kept after a failed write.
func (c *Client) Retry() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || !c.pending.set {
		return
	}
	c.armLocked()
}

// Flush writes the pending slot now, waiting for an in-flight write first.
func (c *Client) Flush(ctx context.Context) error {
	for {
		c.mu.Lock()
		if c.inFlight {
			idle := c.idle
			c.mu.Unlock()
			select {
			case <-idle:
				continue
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if !c.pending.set {
			c.mu.Unlock()
			return nil
		}
		c.stopTimerLocked()
		s := c.takeLocked()
		c.mu.Unlock()

		return c.run(ctx, s)
	}
}

// Pending reports whether a delta is waiting to be written.
func (c *Client) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending.set
}

// LastError returns the error of the most recent write, or nil if it succeeded.
func (c *Client) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Close stops the timer and ignores later schedules. It does not flush.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopTimerLocked()
}

func (c *Client) armLocked() {
	c.stopTimerLocked()
	c.timer = c.clock.AfterFunc(c.window, c.fire)
}

func (c *Client) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Client) takeLocked() slot {
	s := c.pending
	c.pending = slot{}
	c.inFlight = true
	c.idle = make(chan struct{})
	return s
}

func (c *Client) fire() {
	c.mu.Lock()
	c.timer = nil
	if c.closed || !c.pending.set {
		c.mu.Unlock()
		return
	}
	if c.inFlight {
		c.armLocked()
		c.mu.Unlock()
		return
	}
	s := c.takeLocked()
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()
	if err := c.run(ctx, s); err != nil {
		c.onError(err)
	}
}

// run writes s and settles the client state. A failed delta goes back into the slot
// underneath anything scheduled meanwhile.
func (c *Client) run(ctx context.Context, s slot) error {
	err := c.write(ctx, s)
	if errors.Is(err, errStale) {
		c.logger.Info("discarded write for a portfolio that is no longer active")
		err = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false
	close(c.idle)
	c.lastErr = err
	if err == nil {
		return nil
	}

	switch {
	case !c.pending.set:
		c.pending = s
	case c.pending.gen == s.gen:
		c.pending.delta = s.delta.Merge(c.pending.delta)
		c.pending.version = max(c.pending.version, s.version)
	}
	return err
}

func (c *Client) write(ctx context.Context, s slot) error {
	snap := c.quota.Snapshot()
	if !snap.PlanActive {
		return apperror.PlanUnavailable(nil)
	}
	if c.identity.Generation() != s.gen {
		return errStale
	}
	// Only growth is checked, so a portfolio already over the limit can still be reordered
	// or trimmed.
	counted := -1
	if s.delta.TouchesLinks() {
		counted = model.CountLinks(*s.delta.SocialLinks)
		if counted > c.identity.SavedLinkCount() {
			if err := snap.CheckLinks(counted); err != nil {
				return err
			}
		}
	}

	id := c.identity.ID()
	if id == "" {
		created, err := c.identity.CreateOrJoin(ctx)
		if err != nil {
			return wrapRemote(err)
		}
		id = created.ID
		if created.Created && created.Version >= s.version {
			c.logger.Info("portfolio saved", slog.String("id", id), slog.String("op", "create"))
			c.publish(id, s.delta)
			return nil
		}
	}

	if err := c.updater.UpdatePortfolio(ctx, id, s.delta); err != nil {
		return wrapRemote(err)
	}
	if c.identity.Generation() != s.gen || c.identity.ID() != id {
		return errStale
	}
	if counted >= 0 {
		c.identity.ConfirmLinks(s.gen, counted)
	}
	c.logger.Info("portfolio saved", slog.String("id", id), slog.String("op", "update"))
	c.publish(id, s.delta)
	return nil
}

func (c *Client) publish(id string, d model.PortfolioDelta) {
	if c.pub == nil {
		return
	}
	c.pub.Publish(bus.TopicPortfolioChanged, id)
	if d.TouchesDesign() {
		c.pub.Publish(bus.TopicDesignChanged, id)
	}
}

// wrapRemote leaves domain errors alone and wraps everything else, remote conflicts
// included, as a failed write.
func wrapRemote(err error) error {
	switch {
	case errors.Is(err, portfolio.ErrStaleCreation):
		return errStale
	case errors.Is(err, apperror.ErrPlanUnavailable),
		errors.Is(err, apperror.ErrQuotaExceeded),
		errors.Is(err, apperror.ErrValidation),
		errors.Is(err, apperror.ErrRemoteWriteFailed):
		return err
	}
	return apperror.RemoteWriteFailed(err)
}
