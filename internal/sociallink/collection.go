// Package sociallink implements the ordered social link collection of a portfolio.
//
// Order is the public display order and is preserved by every operation except Reorder.
// Only links that are enabled and have a URL count against the plan's link limit; any
// operation that would make a link newly counted is checked against the quota first.
// The collection does no locking of its own: the portfolio store serialises access.
package sociallink

import (
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/bug-createdme/2share/internal/apperror"
	"github.com/bug-createdme/2share/internal/model"
	"github.com/bug-createdme/2share/internal/quota"
	"github.com/bug-createdme/2share/internal/slug"
)

// QuotaSource supplies the current plan limits.
type QuotaSource interface {
	Snapshot() quota.Snapshot
}

type Collection struct {
	links []model.SocialLink
	quota QuotaSource
	now   func() time.Time
}

// New wraps links (copied) in a collection checked against q. A nil q means unbounded.
func New(links []model.SocialLink, q QuotaSource) *Collection {
	return &Collection{
		links: model.CloneLinks(links),
		quota: q,
		now:   time.Now,
	}
}

// Links returns a copy of the links in order.
func (c *Collection) Links() []model.SocialLink {
	out := model.CloneLinks(c.links)
	if out == nil {
		out = []model.SocialLink{}
	}
	return out
}

// Visible returns the enabled, configured links in order: what the public page shows.
func (c *Collection) Visible() []model.SocialLink {
	out := make([]model.SocialLink, 0, len(c.links))
	for _, l := range c.links {
		if l.Counted() {
			out = append(out, l)
		}
	}
	return out
}

func (c *Collection) Len() int { return len(c.links) }

// Counted is the number of links charged against the quota.
func (c *Collection) Counted() int {
	return model.CountLinks(c.links)
}

func (c *Collection) Get(id string) (model.SocialLink, bool) {
	if i := c.index(id); i >= 0 {
		return c.links[i], true
	}
	return model.SocialLink{}, false
}

// Add appends a new enabled, unconfigured link for the platform name.
func (c *Collection) Add(name, color, icon string) (model.SocialLink, error) {
	return c.Insert(model.SocialLink{
		Name:      name,
		Color:     color,
		Icon:      icon,
		IsEnabled: true,
	})
}

// Insert appends link after assigning it a fresh id. Name must be unique (case-insensitive).
// Only a counted link is checked against the quota; an uncounted one is accepted even over
// the limit, and the setters gate the transition that would make it count.
func (c *Collection) Insert(link model.SocialLink) (model.SocialLink, error) {
	link.Name = strings.TrimSpace(link.Name)
	if link.Name == "" {
		return model.SocialLink{}, apperror.ValidationFailed("name", "link name is required")
	}
	for _, l := range c.links {
		if strings.EqualFold(l.Name, link.Name) {
			return model.SocialLink{}, apperror.DuplicateLink(link.Name)
		}
	}
	if link.Counted() {
		if err := c.checkQuota(c.Counted() + 1); err != nil {
			return model.SocialLink{}, err
		}
	}

	link.CreatedAt = c.now()
	link.ID = NewID(link.Name, link.CreatedAt)
	link.Clicks = 0
	c.links = append(c.links, link)
	return link, nil
}

// NewID derives a link id from the platform name and creation time. The xid part carries a
// random component, so two links created in the same second still differ.
func NewID(name string, at time.Time) string {
	return slug.Or(name, "link") + "-" + xid.NewWithTime(at).String()
}

// Reorder moves the link with id to newIndex, shifting the others. newIndex is clamped to
// the collection bounds. Unknown ids are ignored.
func (c *Collection) Reorder(id string, newIndex int) {
	from := c.index(id)
	if from < 0 {
		return
	}
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex >= len(c.links) {
		newIndex = len(c.links) - 1
	}
	if from == newIndex {
		return
	}

	moved := c.links[from]
	if from < newIndex {
		copy(c.links[from:newIndex], c.links[from+1:newIndex+1])
	} else {
		copy(c.links[newIndex+1:from+1], c.links[newIndex:from])
	}
	c.links[newIndex] = moved
}

func (c *Collection) SetURL(id, url string) error {
	return c.update(id, func(l *model.SocialLink) {
		l.URL = strings.TrimSpace(url)
	})
}

func (c *Collection) SetDisplayName(id, name string) error {
	return c.update(id, func(l *model.SocialLink) {
		l.DisplayName = strings.TrimSpace(name)
	})
}

func (c *Collection) SetEnabled(id string, enabled bool) error {
	return c.update(id, func(l *model.SocialLink) {
		l.IsEnabled = enabled
	})
}

// Remove deletes the link. It reports whether anything was removed.
func (c *Collection) Remove(id string) bool {
	i := c.index(id)
	if i < 0 {
		return false
	}
	c.links = append(c.links[:i], c.links[i+1:]...)
	return true
}

// IncrementClicks bumps the click counter and returns the new value. It bypasses the
// quota check: clicks are analytics, not configuration.
func (c *Collection) IncrementClicks(id string) (int64, bool) {
	i := c.index(id)
	if i < 0 {
		return 0, false
	}
	c.links[i].Clicks++
	return c.links[i].Clicks, true
}

// update applies fn to a copy of the link and commits it only if a newly counted link
// still fits the quota.
func (c *Collection) update(id string, fn func(*model.SocialLink)) error {
	i := c.index(id)
	if i < 0 {
		return apperror.NotFound("social link", id)
	}

	next := c.links[i]
	fn(&next)

	if next.Counted() && !c.links[i].Counted() {
		if err := c.checkQuota(c.Counted() + 1); err != nil {
			return err
		}
	}
	c.links[i] = next
	return nil
}

func (c *Collection) checkQuota(n int) error {
	if c.quota == nil {
		return nil
	}
	return c.quota.Snapshot().CheckLinks(n)
}

func (c *Collection) index(id string) int {
	for i, l := range c.links {
		if l.ID == id {
			return i
		}
	}
	return -1
}
