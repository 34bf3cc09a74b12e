// Package render turns a portfolio into a layout composition.
//
// The editor preview and the public page both go through Compose, so identical input
// always yields identical output. Layout selection reads only the resolved layout; the
// four layouts consume the same data and differ in arrangement.
package render

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/bug-createdme/2share/internal/design"
	"github.com/bug-createdme/2share/internal/model"
)

// View is the data every layout consumes.
type View struct {
	PortfolioID string
	Slug        string
	Title       string
	Bio         string
	AvatarURL   string
	Links       []Link
	Design      design.Settings
}

type Link struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	URL   string `json:"url"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}

// NewView resolves the design and keeps the enabled, configured links in order.
func NewView(p model.Portfolio) View {
	v := View{
		PortfolioID: p.ID,
		Slug:        p.Slug,
		Title:       p.Title,
		Bio:         p.BioText(),
		AvatarURL:   safeURL(p.AvatarURL),
		Links:       []Link{},
		Design:      design.Resolve(p.Design),
	}
	for _, l := range p.SocialLinks {
		if !l.Counted() {
			continue
		}
		v.Links = append(v.Links, Link{
			ID:    l.ID,
			Label: l.Label(),
			URL:   l.URL,
			Icon:  l.Icon,
			Color: l.Color,
		})
	}
	return v
}

const (
	LayoutClassic = 1
	LayoutBanner  = 2
	LayoutCover   = 3
	LayoutGrid    = 4
)

type Composition struct {
	Layout int    `json:"layout"`
	Name   string `json:"name"`
	Header Header `json:"header"`
	Links  Links  `json:"links"`
	Style  Style  `json:"style"`
}

type Header struct {
	Title  string `json:"title"`
	Bio    string `json:"bio"`
	Avatar string `json:"avatar"`
	// AvatarShape is circle, square or cover.
	AvatarShape string `json:"avatarShape"`
	Banner      bool   `json:"banner"`
	Align       string `json:"align"`
}

type Links struct {
	Arrangement string `json:"arrangement"`
	Columns     int    `json:"columns"`
	Items       []Link `json:"items"`
}

// Style holds CSS declaration values.
type Style struct {
	Font             string `json:"font"`
	TitleColor       string `json:"titleColor"`
	TextColor        string `json:"textColor"`
	Background       string `json:"background"`
	Pattern          string `json:"pattern,omitempty"`
	ButtonBackground string `json:"buttonBackground"`
	ButtonBorder     string `json:"buttonBorder"`
	ButtonText       string `json:"buttonText"`
	ButtonRadius     string `json:"buttonRadius"`
}

type composer func(v View) Composition

// layouts is indexed by the resolved layout.
var layouts = map[int]composer{
	LayoutClassic: func(v View) Composition {
		return Composition{
			Name:   "classic",
			Header: header(v, "circle", false, "center"),
			Links:  stack(v),
		}
	},
	LayoutBanner: func(v View) Composition {
		return Composition{
			Name:   "banner",
			Header: header(v, "circle", true, "center"),
			Links:  stack(v),
		}
	},
	LayoutCover: func(v View) Composition {
		return Composition{
			Name:   "cover",
			Header: header(v, "cover", false, "left"),
			Links:  stack(v),
		}
	},
	LayoutGrid: func(v View) Composition {
		return Composition{
			Name:   "grid",
			Header: header(v, "square", false, "left"),
			Links:  Links{Arrangement: "grid", Columns: 2, Items: v.Links},
		}
	},
}

// Compose builds the composition for the view's resolved layout.
func Compose(v View) Composition {
	layout := v.Design.Layout
	build, ok := layouts[layout]
	if !ok {
		layout = design.DefaultLayout
		build = layouts[layout]
	}
	c := build(v)
	c.Layout = layout
	c.Style = style(v.Design)
	return c
}

// Preview is what the editor shows.
func Preview(p model.Portfolio) Composition {
	return Compose(NewView(p))
}

// Public is what the public page serves.
func Public(p model.Portfolio) Composition {
	return Compose(NewView(p))
}

func header(v View, shape string, banner bool, align string) Header {
	return Header{
		Title:       v.Title,
		Bio:         v.Bio,
		Avatar:      v.AvatarURL,
		AvatarShape: shape,
		Banner:      banner,
		Align:       align,
	}
}

func stack(v View) Links {
	return Links{Arrangement: "stack", Columns: 1, Items: v.Links}
}

func style(s design.Settings) Style {
	st := Style{
		Font:         s.Font.Stack(),
		TitleColor:   s.TitleColor,
		TextColor:    s.TextColor,
		Background:   background(s),
		ButtonRadius: s.Button.Corner.Radius(),
	}
	if s.Background.Type == design.BackgroundPattern {
		st.Pattern = s.Background.Pattern
	}

	color := cssColor(s.Button.Color, "#0f172a")
	text := cssColor(s.Button.TextColor, "#ffffff")
	switch s.Button.Fill {
	case design.FillOutline:
		st.ButtonBackground = "transparent"
		st.ButtonBorder = "2px solid " + color
		st.ButtonText = color
	default:
		st.ButtonBackground = color
		st.ButtonBorder = "none"
		st.ButtonText = text
	}
	return st
}

func background(s design.Settings) string {
	bg := s.Background
	switch bg.Type {
	case design.BackgroundImage:
		if u := safeURL(bg.Image); u != "" {
			return `url("` + u + `") center / cover no-repeat`
		}
	case design.BackgroundSolid:
		return cssColor(bg.Color, "#ffffff")
	}
	if bg.From == "" || bg.To == "" {
		return "#ffffff"
	}
	return "linear-gradient(135deg, " + bg.From + ", " + bg.To + ")"
}

var colorPattern = regexp.MustCompile(`^(#[0-9a-fA-F]{3,8}|[a-zA-Z]{3,20}|rgba?\([0-9.,% ]+\))$`)

// cssColor passes through values that are plain CSS colors and replaces anything else.
func cssColor(v, fallback string) string {
	v = strings.TrimSpace(v)
	if colorPattern.MatchString(v) {
		return v
	}
	return fallback
}

// safeURL keeps absolute http(s) URLs that can be embedded in a CSS url() or an attribute.
func safeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.ContainsAny(raw, "\"'()\\<> \n\r\t") {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		if u.Scheme == "" && strings.HasPrefix(raw, "/") && !strings.HasPrefix(raw, "//") {
			return raw
		}
		return ""
	}
	return raw
}
