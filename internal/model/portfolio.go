package model

import "time"

const (
	MaxTitleLength = 50
	MaxBioLength   = 160

	BlockText = "text"
)

// ContentBlock is a unit of portfolio body content. The bio is persisted as a single
// "text" block so that clients reading blocks see the same text.
type ContentBlock struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

type Portfolio struct {
	ID          string         `json:"id,omitempty"`
	Slug        string         `json:"slug,omitempty"`
	OwnerID     string         `json:"ownerId,omitempty"`
	Title       string         `json:"title"`
	Bio         string         `json:"bio"`
	Blocks      []ContentBlock `json:"blocks"`
	AvatarURL   string         `json:"avatarUrl"`
	SocialLinks []SocialLink   `json:"socialLinks"`
	Design      DesignSettings `json:"designSettings"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// BioBlocks returns the block list mirroring bio.
func BioBlocks(bio string) []ContentBlock {
	return []ContentBlock{{Type: BlockText, Content: bio}}
}

// BioText returns the bio, reading the first text block when the bio field itself is empty.
// Portfolios saved by older clients only carry the block.
func (p Portfolio) BioText() string {
	if p.Bio != "" {
		return p.Bio
	}
	for _, b := range p.Blocks {
		if b.Type == BlockText {
			return b.Content
		}
	}
	return ""
}

// Clone returns a copy that shares no slices or pointers with p.
func (p Portfolio) Clone() Portfolio {
	out := p
	out.SocialLinks = CloneLinks(p.SocialLinks)
	if p.Blocks != nil {
		out.Blocks = append([]ContentBlock(nil), p.Blocks...)
	}
	out.Design = p.Design.Clone()
	return out
}

// Apply copies every set field of d onto p. Design is replaced, not merged: deltas carry
// the whole raw design record.
func (p *Portfolio) Apply(d PortfolioDelta) {
	if d.Title != nil {
		p.Title = *d.Title
	}
	if d.Bio != nil {
		p.Bio = *d.Bio
		p.Blocks = BioBlocks(*d.Bio)
	}
	if d.AvatarURL != nil {
		p.AvatarURL = *d.AvatarURL
	}
	if d.SocialLinks != nil {
		p.SocialLinks = CloneLinks(*d.SocialLinks)
	}
	if d.Design != nil {
		p.Design = d.Design.Clone()
	}
}

// PortfolioDelta is a partial portfolio update. Nil fields are untouched.
type PortfolioDelta struct {
	Title       *string         `json:"title,omitempty"`
	Bio         *string         `json:"bio,omitempty"`
	Blocks      []ContentBlock  `json:"blocks,omitempty"`
	AvatarURL   *string         `json:"avatarUrl,omitempty"`
	SocialLinks *[]SocialLink   `json:"socialLinks,omitempty"`
	Design      *DesignSettings `json:"designSettings,omitempty"`
}

// Merge returns d overlaid with next: the latest value of each field wins.
func (d PortfolioDelta) Merge(next PortfolioDelta) PortfolioDelta {
	if next.Title != nil {
		d.Title = next.Title
	}
	if next.Bio != nil {
		d.Bio = next.Bio
		d.Blocks = next.Blocks
	}
	if next.AvatarURL != nil {
		d.AvatarURL = next.AvatarURL
	}
	if next.SocialLinks != nil {
		d.SocialLinks = next.SocialLinks
	}
	if next.Design != nil {
		d.Design = next.Design
	}
	return d
}

func (d PortfolioDelta) IsEmpty() bool {
	return d.Title == nil && d.Bio == nil && d.AvatarURL == nil &&
		d.SocialLinks == nil && d.Design == nil
}

// TouchesLinks reports whether applying d could change the counted link total.
func (d PortfolioDelta) TouchesLinks() bool {
	return d.SocialLinks != nil
}

func (d PortfolioDelta) TouchesDesign() bool {
	return d.Design != nil
}

// TitleDelta, BioDelta and friends build single-field deltas.
func TitleDelta(title string) PortfolioDelta {
	return PortfolioDelta{Title: &title}
}

func BioDelta(bio string) PortfolioDelta {
	return PortfolioDelta{Bio: &bio, Blocks: BioBlocks(bio)}
}

func AvatarDelta(url string) PortfolioDelta {
	return PortfolioDelta{AvatarURL: &url}
}

func LinksDelta(links []SocialLink) PortfolioDelta {
	cp := CloneLinks(links)
	if cp == nil {
		cp = []SocialLink{}
	}
	return PortfolioDelta{SocialLinks: &cp}
}

func DesignDelta(d DesignSettings) PortfolioDelta {
	cp := d.Clone()
	return PortfolioDelta{Design: &cp}
}
