package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bug-createdme/2share/internal/auth"
	"github.com/bug-createdme/2share/internal/config"
	"github.com/bug-createdme/2share/internal/model"
	"github.com/bug-createdme/2share/internal/server"
)

const testSecret = "cli-test-secret-0123456789"

type cliEnv struct {
	t      *testing.T
	url    string
	token  string
	cache  string
	userID string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg, err := config.LoadFrom(map[string]string{
		"JWT_SECRET": testSecret,
		"DB_PATH":    ":memory:",
		"UPLOAD_DIR": t.TempDir(),
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repos, err := server.OpenRepositories(ctx, cfg, logger)
	require.NoError(t, err)
	t.Cleanup(repos.Close)

	srv, err := server.New(ctx, cfg, repos, logger)
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	user := &model.User{GitHubID: 1, Login: "jane"}
	require.NoError(t, repos.Users.Upsert(ctx, user))

	tokens, err := auth.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	token, err := tokens.Generate(user.ID)
	require.NoError(t, err)

	return &cliEnv{
		t:      t,
		url:    ts.URL,
		token:  token,
		cache:  filepath.Join(t.TempDir(), "cache.json"),
		userID: user.ID,
	}
}

func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	cmd := NewRootCommand()
	cmd.SetArgs(append([]string{"--server", e.url, "--token", e.token, "--cache", e.cache}, args...))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliEnv) show() ShowResult {
	e.t.Helper()
	out, err := e.run("show", "--format", "json")
	require.NoError(e.t, err)
	var res ShowResult
	require.NoError(e.t, json.Unmarshal([]byte(out), &res))
	return res
}

func TestCLI_EditFlow(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("title", "Jane Doe")
	require.NoError(t, err)

	res := env.show()
	require.NotEmpty(t, res.Portfolio.ID, "the first edit creates the portfolio")
	assert.Equal(t, "Jane Doe", res.Portfolio.Title)
	assert.Equal(t, "jane-doe", res.Portfolio.Slug)

	out, err := env.run("links", "add", "github", "--url", "https://github.com/jane")
	require.NoError(t, err)
	linkID := strings.TrimSpace(out)
	require.NotEmpty(t, linkID)

	_, err = env.run("bio", "Designer")
	require.NoError(t, err)

	res = env.show()
	assert.Equal(t, "Designer", res.Portfolio.Bio)
	require.Len(t, res.Portfolio.SocialLinks, 1)
	assert.Equal(t, linkID, res.Portfolio.SocialLinks[0].ID)
	assert.Equal(t, "https://github.com/jane", res.Portfolio.SocialLinks[0].URL)
	assert.True(t, res.Portfolio.SocialLinks[0].IsEnabled)

	out, err = env.run("design", "set", "--layout", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "layout 4")

	page := filepath.Join(t.TempDir(), "page.html")
	_, err = env.run("preview", "--out", page)
	require.NoError(t, err)
	html, err := os.ReadFile(page)
	require.NoError(t, err)
	assert.Contains(t, string(html), "Jane Doe")
	assert.Contains(t, string(html), `data-layout="4"`)

	_, err = env.run("links", "disable", linkID)
	require.NoError(t, err)
	res = env.show()
	require.Len(t, res.Portfolio.SocialLinks, 1)
	assert.False(t, res.Portfolio.SocialLinks[0].IsEnabled)

	out, err = env.run("show")
	require.NoError(t, err)
	assert.Contains(t, out, "/p/jane-doe")
	assert.Contains(t, out, "off")
}

func TestCLI_RemoveUnknownLink(t *testing.T) {
	env := newCLIEnv(t)

	_, err := env.run("title", "Jane")
	require.NoError(t, err)

	_, err = env.run("links", "remove", "nope")
	assert.Error(t, err)
}

func TestCLI_TokenIsAccepted(t *testing.T) {
	env := newCLIEnv(t)

	out, err := env.run("token", "--user", env.userID, "--secret", testSecret, "--ttl", "1h")
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)
	userID, err := tokens.Validate(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, env.userID, userID)
	assert.Equal(t, env.userID, tokenSubject(strings.TrimSpace(out)))
}

func TestCLI_PlanSet(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "2share.db")
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	repos, err := server.OpenRepositories(ctx, &config.Config{DBPath: dbPath}, logger)
	require.NoError(t, err)
	user := &model.User{GitHubID: 9, Login: "ops"}
	require.NoError(t, repos.Users.Upsert(ctx, user))
	repos.Close()

	cmd := NewRootCommand()
	cmd.SetArgs([]string{"plan", "set", "--db", dbPath, "--database-url", "", "--user", user.ID, "--name", "pro", "--max-links", "20"})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	require.NoError(t, cmd.ExecuteContext(ctx))
	assert.Contains(t, out.String(), `plan "pro"`)

	repos, err = server.OpenRepositories(ctx, &config.Config{DBPath: dbPath}, logger)
	require.NoError(t, err)
	defer repos.Close()
	plan, err := repos.Plans.GetPlan(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "pro", plan.Name)
	require.NotNil(t, plan.MaxSocialLinks)
	assert.Equal(t, 20, *plan.MaxSocialLinks)
	assert.Nil(t, plan.MaxBusinessCard)
}
