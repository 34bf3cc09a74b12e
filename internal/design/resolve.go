// Package design resolves stored design records into renderable settings.
//
// Stored records are partial and carry legacy field names. Resolve is total: every input,
// including the zero value, yields Settings whose fields are all members of their
// enumerations. Each field is resolved by an ordered rule list: the current field, then the
// legacy field, then a fixed default. The rule lists below are the only place those
// fallbacks are written down.
package design

import (
	"strings"

	"github.com/bug-createdme/2share/internal/model"
)

// Settings is the resolved design consumed by the renderer.
type Settings struct {
	Theme      Theme      `json:"theme"`
	Layout     int        `json:"layout"`
	Button     Button     `json:"button"`
	Background Background `json:"background"`
	Font       Font       `json:"font"`
	TitleColor string     `json:"titleColor"`
	TextColor  string     `json:"textColor"`
}

type Button struct {
	Fill      Fill   `json:"fill"`
	Corner    Corner `json:"corner"`
	Color     string `json:"color"`
	TextColor string `json:"textColor"`
}

// Background is a tagged union: Type selects which payload fields are meaningful.
//
//	theme, gradient: From, To
//	image:           Image
//	solidColor:      Color
//	pattern:         Pattern (plus the theme's From/To underneath)
type Background struct {
	Type    BackgroundType `json:"type"`
	Image   string         `json:"image,omitempty"`
	Color   string         `json:"color,omitempty"`
	From    string         `json:"from,omitempty"`
	To      string         `json:"to,omitempty"`
	Pattern string         `json:"pattern,omitempty"`
}

const (
	MinLayout = 1
	MaxLayout = 4

	DefaultTheme  = ThemeBase
	DefaultLayout = MinLayout
	DefaultFont   = FontInter
	DefaultFill   = FillSolid
	DefaultCorner = CornerSoft
)

// rule yields a value when the raw record supplies a usable one.
type rule[T any] func(raw model.DesignSettings) (T, bool)

func pick[T any](raw model.DesignSettings, def T, rules ...rule[T]) T {
	for _, r := range rules {
		if v, ok := r(raw); ok {
			return v
		}
	}
	return def
}

var (
	// selectedLayout (1-based) wins; profileLayout (0-based) is only read when
	// selectedLayout is absent or unusable.
	layoutRules = []rule[int]{
		func(raw model.DesignSettings) (int, bool) {
			if raw.SelectedLayout == nil {
				return 0, false
			}
			l := *raw.SelectedLayout
			return l, l >= MinLayout && l <= MaxLayout
		},
		func(raw model.DesignSettings) (int, bool) {
			if raw.ProfileLayout == nil {
				return 0, false
			}
			l := *raw.ProfileLayout
			return l + 1, l >= 0 && l <= MaxLayout-1
		},
	}

	themeRules = []rule[Theme]{
		func(raw model.DesignSettings) (Theme, bool) { return knownTheme(raw.SelectedTheme) },
		func(raw model.DesignSettings) (Theme, bool) { return knownTheme(raw.Theme) },
	}

	fillRules = []rule[Fill]{
		func(raw model.DesignSettings) (Fill, bool) { return indexed(fills, raw.ButtonFill) },
	}

	cornerRules = []rule[Corner]{
		func(raw model.DesignSettings) (Corner, bool) { return indexed(corners, raw.ButtonCorner) },
	}

	fontRules = []rule[Font]{
		func(raw model.DesignSettings) (Font, bool) { return knownFont(raw.Font) },
		func(raw model.DesignSettings) (Font, bool) { return knownFont(raw.FontFamily) },
	}
)

// Resolve maps a raw design record to fully populated Settings.
func Resolve(raw model.DesignSettings) Settings {
	theme := pick(raw, DefaultTheme, themeRules...)
	pal := themes[theme]

	return Settings{
		Theme:  theme,
		Layout: pick(raw, DefaultLayout, layoutRules...),
		Button: Button{
			Fill:      pick(raw, DefaultFill, fillRules...),
			Corner:    pick(raw, DefaultCorner, cornerRules...),
			Color:     nonEmpty(raw.ButtonColor, pal.Button),
			TextColor: nonEmpty(raw.ButtonTextColor, pal.OnButton),
		},
		Background: resolveBackground(raw, pal),
		Font:       pick(raw, DefaultFont, fontRules...),
		TitleColor: pal.Title,
		TextColor:  pal.Text,
	}
}

// resolveBackground dispatches on backgroundType. Any tag whose payload is missing or
// unparseable falls back to the theme gradient.
func resolveBackground(raw model.DesignSettings, pal palette) Background {
	themeBg := Background{Type: BackgroundTheme, From: pal.From, To: pal.To}
	if raw.BackgroundType == nil {
		return themeBg
	}

	switch backgroundAliases[strings.TrimSpace(*raw.BackgroundType)] {
	case BackgroundImage:
		if img := trimmed(raw.BackgroundImage); img != "" {
			return Background{Type: BackgroundImage, Image: img}
		}
	case BackgroundGradient:
		if from, to, ok := ParseGradient(trimmed(raw.BackgroundGradient)); ok {
			return Background{Type: BackgroundGradient, From: from, To: to}
		}
	case BackgroundSolid:
		if c := trimmed(raw.BackgroundColor); c != "" {
			return Background{Type: BackgroundSolid, Color: c}
		}
	case BackgroundPattern:
		return Background{Type: BackgroundPattern, Pattern: DefaultPattern, From: pal.From, To: pal.To}
	}
	return themeBg
}

// ParseGradient reads a descriptor such as "bg-gradient-to-r from-purple-500 to-pink-500"
// and returns the hex colors for its from- and to- tokens. Both must be present in the
// color table.
func ParseGradient(desc string) (from, to string, ok bool) {
	for _, tok := range strings.Fields(desc) {
		switch {
		case strings.HasPrefix(tok, "from-"):
			from = colorTokens[strings.TrimPrefix(tok, "from-")]
		case strings.HasPrefix(tok, "to-"):
			to = colorTokens[strings.TrimPrefix(tok, "to-")]
		}
	}
	return from, to, from != "" && to != ""
}

// Valid reports whether every field of s is a member of its enumeration. Resolve output
// always satisfies it.
func (s Settings) Valid() bool {
	if !s.Theme.Valid() || !s.Button.Fill.Valid() || !s.Button.Corner.Valid() ||
		!s.Background.Type.Valid() || !s.Font.Valid() {
		return false
	}
	if s.Layout < MinLayout || s.Layout > MaxLayout {
		return false
	}
	if s.Button.Color == "" || s.Button.TextColor == "" || s.TitleColor == "" || s.TextColor == "" {
		return false
	}
	switch s.Background.Type {
	case BackgroundImage:
		return s.Background.Image != ""
	case BackgroundSolid:
		return s.Background.Color != ""
	case BackgroundPattern:
		return s.Background.Pattern != ""
	default:
		return s.Background.From != "" && s.Background.To != ""
	}
}

func knownTheme(v *string) (Theme, bool) {
	if v == nil {
		return "", false
	}
	t := Theme(strings.ToLower(strings.TrimSpace(*v)))
	return t, t.Valid()
}

func knownFont(v *string) (Font, bool) {
	if v == nil {
		return "", false
	}
	f := Font(strings.ToLower(strings.TrimSpace(*v)))
	return f, f.Valid()
}

func indexed[T any](table []T, v *int) (T, bool) {
	var zero T
	if v == nil || *v < 0 || *v >= len(table) {
		return zero, false
	}
	return table[*v], true
}

func nonEmpty(v *string, def string) string {
	if s := trimmed(v); s != "" {
		return s
	}
	return def
}

func trimmed(v *string) string {
	if v == nil {
		return ""
	}
	return strings.TrimSpace(*v)
}
