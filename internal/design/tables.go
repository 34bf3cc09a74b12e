package design

// Theme is a key into the fixed theme table.
type Theme string

const (
	ThemeBase     Theme = "base"
	ThemeSunset   Theme = "sunset"
	ThemeOcean    Theme = "ocean"
	ThemeForest   Theme = "forest"
	ThemeMidnight Theme = "midnight"
	ThemeCandy    Theme = "candy"
	ThemeMono     Theme = "mono"
)

// palette is a theme's built-in colors. From/To is the theme gradient used when the
// background falls back to the theme.
type palette struct {
	From, To         string
	Title, Text      string
	Button, OnButton string
}

var themes = map[Theme]palette{
	ThemeBase:     {From: "#f8fafc", To: "#e2e8f0", Title: "#0f172a", Text: "#334155", Button: "#0f172a", OnButton: "#ffffff"},
	ThemeSunset:   {From: "#f97316", To: "#ec4899", Title: "#ffffff", Text: "#fff7ed", Button: "#ffffff", OnButton: "#9a3412"},
	ThemeOcean:    {From: "#0ea5e9", To: "#1e3a8a", Title: "#ffffff", Text: "#e0f2fe", Button: "#ffffff", OnButton: "#1e3a8a"},
	ThemeForest:   {From: "#22c55e", To: "#14532d", Title: "#ffffff", Text: "#dcfce7", Button: "#f0fdf4", OnButton: "#14532d"},
	ThemeMidnight: {From: "#1e1b4b", To: "#000000", Title: "#f8fafc", Text: "#cbd5e1", Button: "#6366f1", OnButton: "#ffffff"},
	ThemeCandy:    {From: "#f9a8d4", To: "#c4b5fd", Title: "#581c87", Text: "#6b21a8", Button: "#581c87", OnButton: "#ffffff"},
	ThemeMono:     {From: "#ffffff", To: "#ffffff", Title: "#000000", Text: "#262626", Button: "#000000", OnButton: "#ffffff"},
}

// Themes lists the known theme keys.
func Themes() []Theme {
	return []Theme{ThemeBase, ThemeSunset, ThemeOcean, ThemeForest, ThemeMidnight, ThemeCandy, ThemeMono}
}

func (t Theme) Valid() bool {
	_, ok := themes[t]
	return ok
}

type Fill string

const (
	FillSolid   Fill = "solid"
	FillOutline Fill = "outline"
)

// fills is indexed by the stored buttonFill value.
var fills = []Fill{FillSolid, FillOutline}

func (f Fill) Valid() bool { return f == FillSolid || f == FillOutline }

type Corner string

const (
	CornerHard Corner = "hard"
	CornerSoft Corner = "soft"
	CornerPill Corner = "pill"
)

// corners is indexed by the stored buttonCorner value.
var corners = []Corner{CornerHard, CornerSoft, CornerPill}

func (c Corner) Valid() bool { return c == CornerHard || c == CornerSoft || c == CornerPill }

// Radius is the CSS border radius for the corner style.
func (c Corner) Radius() string {
	switch c {
	case CornerHard:
		return "0px"
	case CornerPill:
		return "9999px"
	default:
		return "12px"
	}
}

type BackgroundType string

const (
	BackgroundTheme    BackgroundType = "theme"
	BackgroundImage    BackgroundType = "image"
	BackgroundSolid    BackgroundType = "solidColor"
	BackgroundGradient BackgroundType = "gradient"
	BackgroundPattern  BackgroundType = "pattern"
)

// DefaultPattern is the only pattern the renderer ships.
const DefaultPattern = "dots"

// backgroundAliases maps every stored backgroundType spelling to its tag.
var backgroundAliases = map[string]BackgroundType{
	"image":      BackgroundImage,
	"gradient":   BackgroundGradient,
	"solid":      BackgroundSolid,
	"solidColor": BackgroundSolid,
	"color":      BackgroundSolid,
	"pattern":    BackgroundPattern,
	"theme":      BackgroundTheme,
}

func (b BackgroundType) Valid() bool {
	switch b {
	case BackgroundTheme, BackgroundImage, BackgroundSolid, BackgroundGradient, BackgroundPattern:
		return true
	}
	return false
}

type Font string

const (
	FontInter    Font = "inter"
	FontRoboto   Font = "roboto"
	FontPoppins  Font = "poppins"
	FontLora     Font = "lora"
	FontPlayfair Font = "playfair"
	FontMono     Font = "mono"
)

var fonts = map[Font]string{
	FontInter:    "Inter, sans-serif",
	FontRoboto:   "Roboto, sans-serif",
	FontPoppins:  "Poppins, sans-serif",
	FontLora:     "Lora, serif",
	FontPlayfair: "'Playfair Display', serif",
	FontMono:     "'JetBrains Mono', monospace",
}

func (f Font) Valid() bool {
	_, ok := fonts[f]
	return ok
}

// Stack is the CSS font-family value.
func (f Font) Stack() string {
	if s, ok := fonts[f]; ok {
		return s
	}
	return fonts[FontInter]
}

// colorTokens translates gradient descriptor tokens ("purple-500") to hex. Gradient
// descriptors are never interpreted as CSS, so preview and public page agree.
var colorTokens = map[string]string{
	"white":       "#ffffff",
	"black":       "#000000",
	"slate-100":   "#f1f5f9",
	"slate-500":   "#64748b",
	"slate-900":   "#0f172a",
	"gray-100":    "#f3f4f6",
	"gray-500":    "#6b7280",
	"gray-900":    "#111827",
	"red-400":     "#f87171",
	"red-500":     "#ef4444",
	"red-600":     "#dc2626",
	"orange-400":  "#fb923c",
	"orange-500":  "#f97316",
	"amber-400":   "#fbbf24",
	"yellow-300":  "#fde047",
	"yellow-400":  "#facc15",
	"lime-400":    "#a3e635",
	"green-400":   "#4ade80",
	"green-500":   "#22c55e",
	"emerald-500": "#10b981",
	"teal-400":    "#2dd4bf",
	"teal-500":    "#14b8a6",
	"cyan-400":    "#22d3ee",
	"cyan-500":    "#06b6d4",
	"sky-400":     "#38bdf8",
	"sky-500":     "#0ea5e9",
	"blue-400":    "#60a5fa",
	"blue-500":    "#3b82f6",
	"blue-600":    "#2563eb",
	"indigo-500":  "#6366f1",
	"indigo-600":  "#4f46e5",
	"violet-500":  "#8b5cf6",
	"purple-400":  "#c084fc",
	"purple-500":  "#a855f7",
	"purple-600":  "#9333ea",
	"fuchsia-500": "#d946ef",
	"pink-400":    "#f472b6",
	"pink-500":    "#ec4899",
	"rose-400":    "#fb7185",
	"rose-500":    "#f43f5e",
}
