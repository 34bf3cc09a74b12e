package model

import "time"

// User is an account that owns portfolios. The GitHub fields come from the OAuth login;
// Bio and SocialLinks form the account-level profile used to seed new portfolios.
type User struct {
	ID          string       `json:"id"`
	GitHubID    int64        `json:"githubId"`
	Login       string       `json:"login"`
	Email       string       `json:"email"`
	AvatarURL   string       `json:"avatarUrl"`
	Bio         string       `json:"bio"`
	SocialLinks []SocialLink `json:"socialLinks"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// Profile is the account-level view returned by the profile service.
type Profile struct {
	UserID      string       `json:"userId"`
	Name        string       `json:"name"`
	Bio         string       `json:"bio"`
	AvatarURL   string       `json:"avatarUrl"`
	SocialLinks []SocialLink `json:"socialLinks"`
}

// ProfileDelta carries only the fields being changed.
type ProfileDelta struct {
	Bio         *string       `json:"bio,omitempty"`
	AvatarURL   *string       `json:"avatarUrl,omitempty"`
	SocialLinks *[]SocialLink `json:"socialLinks,omitempty"`
}

// Profile returns the profile view of u.
func (u User) Profile() Profile {
	links := u.SocialLinks
	if links == nil {
		links = []SocialLink{}
	}
	return Profile{
		UserID:      u.ID,
		Name:        u.Login,
		Bio:         u.Bio,
		AvatarURL:   u.AvatarURL,
		SocialLinks: links,
	}
}

// Apply copies the set fields of d onto u.
func (u *User) Apply(d ProfileDelta) {
	if d.Bio != nil {
		u.Bio = *d.Bio
	}
	if d.AvatarURL != nil {
		u.AvatarURL = *d.AvatarURL
	}
	if d.SocialLinks != nil {
		u.SocialLinks = CloneLinks(*d.SocialLinks)
	}
}
