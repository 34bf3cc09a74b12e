// Package service holds the server's business rules.
//
// THE LAYERS:
//
//	Handler (HTTP layer)      → parses requests, writes JSON responses
//	Service (business layer)  → validates, checks ownership and plan limits
//	Repository (data layer)   → reads and writes sqlite or postgres
//
// Services return apperror values and know nothing about HTTP. The handler package turns
// apperror.ErrQuotaExceeded into a 402, apperror.ErrForbidden into a 403, and so on.
//
// THE DEPENDENCY CHAIN:
//
//	server.New builds:  Repositories → PlanService → PortfolioService → PortfolioHandler
//	At runtime:         Handler calls Service calls Repository calls DB
//
// Every service takes repository interfaces, not *sqlite.DB or *postgres.DB. The tests
// pass the in-memory fakes from fakes_test.go, and server.OpenRepositories picks the real
// backend from the configuration.
//
// PLAN LIMITS:
// The editing client checks quotas before it writes, but the server checks again on every
// create and update since any HTTP client can call the API. A user with no stored plan
// is on model.FreePlan.
package service

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/bug-createdme/2share/internal/apperror"
	"github.com/bug-createdme/2share/internal/model"
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100

	maxLinks         = 64
	maxLinkNameLen   = 40
	maxLinkURLLength = 2048
)

// validatePortfolio checks the user-editable fields of p.
func validatePortfolio(p *model.Portfolio) error {
	if n := utf8.RuneCountInString(p.Title); n > model.MaxTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", model.MaxTitleLength))
	}
	if n := utf8.RuneCountInString(p.Bio); n > model.MaxBioLength {
		return apperror.ValidationFailed("bio",
			fmt.Sprintf("bio must be %d characters or less", model.MaxBioLength))
	}
	if p.AvatarURL != "" && !validURL(p.AvatarURL, true) {
		return apperror.ValidationFailed("avatarUrl", "avatar must be an http(s) URL or an uploaded file")
	}
	return validateLinks(p.SocialLinks)
}

func validateLinks(links []model.SocialLink) error {
	if len(links) > maxLinks {
		return apperror.ValidationFailed("socialLinks",
			fmt.Sprintf("at most %d social links may be stored", maxLinks))
	}
	seen := make(map[string]bool, len(links))
	for _, l := range links {
		if strings.TrimSpace(l.ID) == "" {
			return apperror.ValidationFailed("socialLinks", "every social link needs an id")
		}
		if seen[l.ID] {
			return apperror.ValidationFailed("socialLinks", "duplicate social link id "+l.ID)
		}
		seen[l.ID] = true

		name := strings.TrimSpace(l.Name)
		if name == "" || utf8.RuneCountInString(name) > maxLinkNameLen {
			return apperror.ValidationFailed("socialLinks",
				fmt.Sprintf("social link name must be 1 to %d characters", maxLinkNameLen))
		}
		if l.Configured() && !validURL(l.URL, false) {
			return apperror.ValidationFailed("socialLinks", "invalid URL for "+l.Label())
		}
	}
	return nil
}

// validURL accepts absolute http(s), mailto and tel URLs. allowLocal additionally accepts
// the server's own /uploads/ paths.
func validURL(raw string, allowLocal bool) bool {
	if len(raw) > maxLinkURLLength {
		return false
	}
	if allowLocal && strings.HasPrefix(raw, "/uploads/") {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	switch u.Scheme {
	case "http", "https":
		return u.Host != ""
	case "mailto", "tel":
		return u.Opaque != ""
	}
	return false
}

func clampList(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return min(limit, MaxListLimit), max(offset, 0)
}
