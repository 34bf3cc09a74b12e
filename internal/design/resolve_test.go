package design

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bug-createdme/2share/internal/model"
)

func TestResolve_EmptyRecordIsFullyPopulated(t *testing.T) {
	got := Resolve(model.DesignSettings{})

	assert.True(t, got.Valid(), "%+v", got)
	assert.Equal(t, DefaultTheme, got.Theme)
	assert.Equal(t, 1, got.Layout)
	assert.Equal(t, FillSolid, got.Button.Fill)
	assert.Equal(t, CornerSoft, got.Button.Corner)
	assert.Equal(t, FontInter, got.Font)
	assert.Equal(t, BackgroundTheme, got.Background.Type)
	assert.Equal(t, themes[ThemeBase].From, got.Background.From)
}

func TestResolve_Layout(t *testing.T) {
	tests := []struct {
		name string
		raw  model.DesignSettings
		want int
	}{
		{"legacy profileLayout 0", model.DesignSettings{ProfileLayout: model.Int(0)}, 1},
		{"legacy profileLayout 3", model.DesignSettings{ProfileLayout: model.Int(3)}, 4},
		{"selectedLayout wins over legacy", model.DesignSettings{ProfileLayout: model.Int(2), SelectedLayout: model.Int(4)}, 4},
		{"selectedLayout alone", model.DesignSettings{SelectedLayout: model.Int(2)}, 2},
		{"out of range selected falls back to legacy", model.DesignSettings{SelectedLayout: model.Int(9), ProfileLayout: model.Int(1)}, 2},
		{"out of range legacy falls back to default", model.DesignSettings{ProfileLayout: model.Int(4)}, 1},
		{"negative legacy", model.DesignSettings{ProfileLayout: model.Int(-1)}, 1},
		{"selected zero is not a layout", model.DesignSettings{SelectedLayout: model.Int(0)}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.raw).Layout)
		})
	}
}

func TestResolve_Theme(t *testing.T) {
	tests := []struct {
		name string
		raw  model.DesignSettings
		want Theme
	}{
		{"selectedTheme", model.DesignSettings{SelectedTheme: model.String("ocean")}, ThemeOcean},
		{"legacy theme", model.DesignSettings{Theme: model.String("forest")}, ThemeForest},
		{"selected wins over legacy", model.DesignSettings{SelectedTheme: model.String("candy"), Theme: model.String("forest")}, ThemeCandy},
		{"unknown selected falls to legacy", model.DesignSettings{SelectedTheme: model.String("neon"), Theme: model.String("sunset")}, ThemeSunset},
		{"unknown everywhere", model.DesignSettings{Theme: model.String("neon")}, ThemeBase},
		{"case and spaces", model.DesignSettings{Theme: model.String("  Midnight ")}, ThemeMidnight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.raw)
			assert.Equal(t, tt.want, got.Theme)
			assert.Equal(t, themes[tt.want].Title, got.TitleColor)
		})
	}
}

func TestResolve_Button(t *testing.T) {
	tests := []struct {
		fill, corner *int
		wantFill     Fill
		wantCorner   Corner
	}{
		{model.Int(0), model.Int(0), FillSolid, CornerHard},
		{model.Int(1), model.Int(1), FillOutline, CornerSoft},
		{model.Int(1), model.Int(2), FillOutline, CornerPill},
		{model.Int(7), model.Int(-1), FillSolid, CornerSoft},
		{nil, nil, FillSolid, CornerSoft},
	}

	for _, tt := range tests {
		got := Resolve(model.DesignSettings{ButtonFill: tt.fill, ButtonCorner: tt.corner}).Button
		assert.Equal(t, tt.wantFill, got.Fill)
		assert.Equal(t, tt.wantCorner, got.Corner)
	}
}

func TestResolve_ButtonColorsOverrideTheme(t *testing.T) {
	got := Resolve(model.DesignSettings{
		Theme:       model.String("ocean"),
		ButtonColor: model.String("#123456"),
	}).Button

	assert.Equal(t, "#123456", got.Color)
	assert.Equal(t, themes[ThemeOcean].OnButton, got.TextColor)
}

func TestResolve_Background(t *testing.T) {
	tests := []struct {
		name string
		raw  model.DesignSettings
		want Background
	}{
		{
			name: "image with url",
			raw:  model.DesignSettings{BackgroundType: model.String("image"), BackgroundImage: model.String("https://cdn/x.png")},
			want: Background{Type: BackgroundImage, Image: "https://cdn/x.png"},
		},
		{
			name: "image without url falls back to theme",
			raw:  model.DesignSettings{BackgroundType: model.String("image")},
			want: Background{Type: BackgroundTheme, From: "#f8fafc", To: "#e2e8f0"},
		},
		{
			name: "gradient tokens are translated",
			raw:  model.DesignSettings{BackgroundType: model.String("gradient"), BackgroundGradient: model.String("bg-gradient-to-r from-purple-500 to-pink-500")},
			want: Background{Type: BackgroundGradient, From: "#a855f7", To: "#ec4899"},
		},
		{
			name: "unknown gradient token falls back to theme",
			raw: model.DesignSettings{
				SelectedTheme:      model.String("ocean"),
				BackgroundType:     model.String("gradient"),
				BackgroundGradient: model.String("from-[#ff0000] to-pink-500"),
			},
			want: Background{Type: BackgroundTheme, From: "#0ea5e9", To: "#1e3a8a"},
		},
		{
			name: "solid literal",
			raw:  model.DesignSettings{BackgroundType: model.String("solid"), BackgroundColor: model.String("#abcdef")},
			want: Background{Type: BackgroundSolid, Color: "#abcdef"},
		},
		{
			name: "legacy color alias",
			raw:  model.DesignSettings{BackgroundType: model.String("color"), BackgroundColor: model.String("red")},
			want: Background{Type: BackgroundSolid, Color: "red"},
		},
		{
			name: "pattern",
			raw:  model.DesignSettings{BackgroundType: model.String("pattern")},
			want: Background{Type: BackgroundPattern, Pattern: DefaultPattern, From: "#f8fafc", To: "#e2e8f0"},
		},
		{
			name: "unknown type",
			raw:  model.DesignSettings{BackgroundType: model.String("video"), Theme: model.String("sunset")},
			want: Background{Type: BackgroundTheme, From: "#f97316", To: "#ec4899"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.raw).Background)
		})
	}
}

func TestResolve_Font(t *testing.T) {
	assert.Equal(t, FontLora, Resolve(model.DesignSettings{Font: model.String("Lora")}).Font)
	assert.Equal(t, FontMono, Resolve(model.DesignSettings{FontFamily: model.String("mono")}).Font)
	assert.Equal(t, FontPoppins, Resolve(model.DesignSettings{Font: model.String("poppins"), FontFamily: model.String("mono")}).Font)
	assert.Equal(t, FontInter, Resolve(model.DesignSettings{Font: model.String("comic sans")}).Font)
}

// Every combination of a handful of awkward values must resolve to valid settings.
func TestResolve_IsTotal(t *testing.T) {
	ints := []*int{nil, model.Int(-5), model.Int(0), model.Int(1), model.Int(2), model.Int(3), model.Int(4), model.Int(100)}
	strs := []*string{nil, model.String(""), model.String("  "), model.String("ocean"), model.String("image"),
		model.String("gradient"), model.String("solid"), model.String("pattern"), model.String("???")}

	count := 0
	for _, i := range ints {
		for _, s := range strs {
			raw := model.DesignSettings{
				SelectedTheme: s, Theme: s,
				SelectedLayout: i, ProfileLayout: i,
				ButtonFill: i, ButtonCorner: i,
				ButtonColor: s, ButtonTextColor: s,
				BackgroundType: s, BackgroundImage: s, BackgroundGradient: s, BackgroundColor: s,
				Font: s, FontFamily: s,
			}
			got := Resolve(raw)
			require.True(t, got.Valid(), "Resolve(%+v) = %+v", raw, got)
			count++
		}
	}
	assert.Equal(t, len(ints)*len(strs), count)
}

func TestResolve_FromStoredJSON(t *testing.T) {
	var raw model.DesignSettings
	require.NoError(t, json.Unmarshal([]byte(`{"theme":"forest","profileLayout":2,"buttonCorner":2}`), &raw))

	got := Resolve(raw)
	assert.Equal(t, ThemeForest, got.Theme)
	assert.Equal(t, 3, got.Layout)
	assert.Equal(t, CornerPill, got.Button.Corner)
}

func TestParseGradient(t *testing.T) {
	from, to, ok := ParseGradient("from-sky-400 to-blue-600")
	require.True(t, ok)
	assert.Equal(t, "#38bdf8", from)
	assert.Equal(t, "#2563eb", to)

	_, _, ok = ParseGradient("from-sky-400")
	assert.False(t, ok)

	_, _, ok = ParseGradient("")
	assert.False(t, ok)
}

func TestCornerRadius(t *testing.T) {
	assert.Equal(t, "0px", CornerHard.Radius())
	assert.Equal(t, "12px", CornerSoft.Radius())
	assert.Equal(t, "9999px", CornerPill.Radius())
}
