package model

import (
	"strings"
	"time"
)

type SocialLink struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName,omitempty"`
	URL         string    `json:"url"`
	IsEnabled   bool      `json:"isEnabled"`
	Clicks      int64     `json:"clicks"`
	Color       string    `json:"color,omitempty"`
	Icon        string    `json:"icon,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Label is the rendered text of the link.
func (l SocialLink) Label() string {
	if s := strings.TrimSpace(l.DisplayName); s != "" {
		return s
	}
	return l.Name
}

// Configured reports whether a destination URL has been set.
func (l SocialLink) Configured() bool {
	return strings.TrimSpace(l.URL) != ""
}

// Counted reports whether the link counts against the plan's social link limit.
// Only links that are both enabled and configured are public, so only those count.
func (l SocialLink) Counted() bool {
	return l.IsEnabled && l.Configured()
}

// CountLinks returns how many links in links count against the quota.
func CountLinks(links []SocialLink) int {
	n := 0
	for _, l := range links {
		if l.Counted() {
			n++
		}
	}
	return n
}

func CloneLinks(links []SocialLink) []SocialLink {
	if links == nil {
		return nil
	}
	out := make([]SocialLink, len(links))
	copy(out, links)
	return out
}
