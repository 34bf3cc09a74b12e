package model

// DesignSettings is the stored, possibly partial design record. Older portfolios carry the
// legacy names (theme, profileLayout, fontFamily); newer ones carry selectedTheme and
// selectedLayout. A nil field means "absent", which is distinct from a zero value:
// profileLayout 0 is a real layout.
type DesignSettings struct {
	SelectedTheme  *string `json:"selectedTheme,omitempty"`
	Theme          *string `json:"theme,omitempty"`
	SelectedLayout *int    `json:"selectedLayout,omitempty"`
	ProfileLayout  *int    `json:"profileLayout,omitempty"`

	ButtonFill      *int    `json:"buttonFill,omitempty"`
	ButtonCorner    *int    `json:"buttonCorner,omitempty"`
	ButtonColor     *string `json:"buttonColor,omitempty"`
	ButtonTextColor *string `json:"buttonTextColor,omitempty"`

	BackgroundType     *string `json:"backgroundType,omitempty"`
	BackgroundImage    *string `json:"backgroundImage,omitempty"`
	BackgroundGradient *string `json:"backgroundGradient,omitempty"`
	BackgroundColor    *string `json:"backgroundColor,omitempty"`

	Font       *string `json:"font,omitempty"`
	FontFamily *string `json:"fontFamily,omitempty"`
}

// Merge returns d with every non-nil field of patch applied on top.
func (d DesignSettings) Merge(patch DesignSettings) DesignSettings {
	mergeString(&d.SelectedTheme, patch.SelectedTheme)
	mergeString(&d.Theme, patch.Theme)
	mergeInt(&d.SelectedLayout, patch.SelectedLayout)
	mergeInt(&d.ProfileLayout, patch.ProfileLayout)
	mergeInt(&d.ButtonFill, patch.ButtonFill)
	mergeInt(&d.ButtonCorner, patch.ButtonCorner)
	mergeString(&d.ButtonColor, patch.ButtonColor)
	mergeString(&d.ButtonTextColor, patch.ButtonTextColor)
	mergeString(&d.BackgroundType, patch.BackgroundType)
	mergeString(&d.BackgroundImage, patch.BackgroundImage)
	mergeString(&d.BackgroundGradient, patch.BackgroundGradient)
	mergeString(&d.BackgroundColor, patch.BackgroundColor)
	mergeString(&d.Font, patch.Font)
	mergeString(&d.FontFamily, patch.FontFamily)
	return d
}

// Clone returns a deep copy so callers never share pointer fields.
func (d DesignSettings) Clone() DesignSettings {
	return DesignSettings{}.Merge(d)
}

func mergeString(dst **string, src *string) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func mergeInt(dst **int, src *int) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

// String and Int are small helpers for building DesignSettings literals.
func String(s string) *string { return &s }
func Int(i int) *int          { return &i }
