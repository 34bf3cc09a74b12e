package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortfolioDelta_MergeKeepsLatestPerField(t *testing.T) {
	first := TitleDelta("one").Merge(BioDelta("bio"))
	second := first.Merge(TitleDelta("two"))

	require.NotNil(t, second.Title)
	assert.Equal(t, "two", *second.Title)
	require.NotNil(t, second.Bio)
	assert.Equal(t, "bio", *second.Bio)
	assert.Equal(t, BioBlocks("bio"), second.Blocks)
	assert.False(t, second.TouchesLinks())
}

func TestPortfolioDelta_EmptyLinksStillTouchLinks(t *testing.T) {
	d := LinksDelta(nil)
	require.NotNil(t, d.SocialLinks)
	assert.Empty(t, *d.SocialLinks)
	assert.True(t, d.TouchesLinks())
	assert.False(t, d.IsEmpty())
}

func TestPortfolio_ApplyMirrorsBioIntoBlock(t *testing.T) {
	var p Portfolio
	p.Apply(BioDelta("hello there"))

	assert.Equal(t, "hello there", p.Bio)
	assert.Equal(t, []ContentBlock{{Type: BlockText, Content: "hello there"}}, p.Blocks)
}

func TestPortfolio_BioTextFallsBackToBlock(t *testing.T) {
	p := Portfolio{Blocks: []ContentBlock{{Type: "image", Content: "x"}, {Type: BlockText, Content: "legacy"}}}
	assert.Equal(t, "legacy", p.BioText())
}

func TestPortfolio_CloneSharesNothing(t *testing.T) {
	p := Portfolio{
		SocialLinks: []SocialLink{{ID: "a", Name: "GitHub"}},
		Design:      DesignSettings{Theme: String("ocean")},
	}
	cp := p.Clone()
	cp.SocialLinks[0].Name = "changed"
	*cp.Design.Theme = "sunset"

	assert.Equal(t, "GitHub", p.SocialLinks[0].Name)
	assert.Equal(t, "ocean", *p.Design.Theme)
}

func TestDesignSettings_JSONDistinguishesZeroFromAbsent(t *testing.T) {
	var d DesignSettings
	require.NoError(t, json.Unmarshal([]byte(`{"profileLayout":0}`), &d))

	require.NotNil(t, d.ProfileLayout)
	assert.Equal(t, 0, *d.ProfileLayout)
	assert.Nil(t, d.SelectedLayout)
}

func TestDesignSettings_Merge(t *testing.T) {
	base := DesignSettings{Theme: String("ocean"), ButtonFill: Int(1)}
	merged := base.Merge(DesignSettings{SelectedLayout: Int(3), ButtonFill: Int(0)})

	assert.Equal(t, "ocean", *merged.Theme)
	assert.Equal(t, 3, *merged.SelectedLayout)
	assert.Equal(t, 0, *merged.ButtonFill)
	assert.Equal(t, 1, *base.ButtonFill)
}

func TestCountLinks(t *testing.T) {
	links := []SocialLink{
		{Name: "a", IsEnabled: true, URL: "https://a"},
		{Name: "b", IsEnabled: true, URL: "  "},
		{Name: "c", IsEnabled: false, URL: "https://c"},
	}
	assert.Equal(t, 1, CountLinks(links))
}

func TestSocialLink_Label(t *testing.T) {
	assert.Equal(t, "GitHub", SocialLink{Name: "GitHub"}.Label())
	assert.Equal(t, "My code", SocialLink{Name: "GitHub", DisplayName: "My code"}.Label())
}
