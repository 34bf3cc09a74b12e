package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "twoshare", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	paths := [][]string{
		{"show"}, {"preview"}, {"title"}, {"bio"}, {"avatar"}, {"use"}, {"token"},
		{"links", "add"}, {"links", "url"}, {"links", "rename"}, {"links", "enable"},
		{"links", "disable"}, {"links", "move"}, {"links", "remove"},
		{"design", "set"}, {"plan", "set"},
	}

	for _, path := range paths {
		t.Run(path[len(path)-1], func(t *testing.T) {
			sub, _, err := cmd.Find(path)
			require.NoError(t, err)
			assert.Equal(t, path[len(path)-1], sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"server", "token", "portfolio", "cache", "redis", "format", "verbose"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "text", cmd.PersistentFlags().Lookup("format").DefValue)
	assert.Equal(t, "p", cmd.PersistentFlags().Lookup("portfolio").Shorthand)
}

func TestInvalidFormat(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"--format", "yaml", "token", "--user", "u1"})
	cmd.SilenceErrors = true

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestTokenSubject(t *testing.T) {
	assert.Equal(t, "anonymous", tokenSubject(""))
	assert.Equal(t, "anonymous", tokenSubject("not.a.jwt"))
}

func TestDesignFlags_OnlyChangedFields(t *testing.T) {
	cmd := newDesignSetCommand(&RootOptions{})
	require.NoError(t, cmd.ParseFlags([]string{"--layout", "3", "--font", "roboto"}))

	f := &designFlags{layout: 3, font: "roboto"}
	patch := f.patch(cmd.Flags())

	require.NotNil(t, patch.SelectedLayout)
	assert.Equal(t, 3, *patch.SelectedLayout)
	require.NotNil(t, patch.Font)
	assert.Equal(t, "roboto", *patch.Font)
	assert.Nil(t, patch.SelectedTheme)
	assert.Nil(t, patch.ButtonFill)
}
