package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/bug-createdme/2share/internal/apperror"
	"github.com/bug-createdme/2share/internal/editor"
	"github.com/bug-createdme/2share/internal/localcache"
	"github.com/bug-createdme/2share/internal/remote"
)

// sessionFunc is the body of an editing command.
type sessionFunc func(ctx context.Context, s *editor.Session) error

// withSession opens a session, runs fn and flushes. A flush failure is reported even when
// fn succeeded, since the change then only exists locally.
func withSession(cmd *cobra.Command, opts *RootOptions, fn sessionFunc) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	logger := newLogger(opts, cmd.ErrOrStderr())

	cache, closeCache, err := openCache(ctx, opts, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	client := remote.New(opts.Server, opts.Token)
	s := editor.New(editor.Config{
		Portfolios: client,
		Profiles:   client,
		Plans:      client,
		Uploads:    client,
		Clicks:     client,
		Cache:      cache,
		User:       tokenSubject(opts.Token),
	}, logger)

	if _, err := s.Start(ctx, opts.Portfolio); err != nil {
		if !apperror.Recoverable(err) {
			return fmt.Errorf("loading portfolio: %w", err)
		}
		logger.Debug("session started with warnings", slog.String("error", err.Error()))
	}

	runErr := fn(ctx, s)
	closeErr := s.Close(ctx)
	if runErr != nil {
		return runErr
	}
	if closeErr != nil {
		return fmt.Errorf("saving changes: %w", closeErr)
	}
	return nil
}

func openCache(ctx context.Context, opts *RootOptions, logger *slog.Logger) (localcache.Cache, func(), error) {
	if opts.RedisURL == "" {
		return localcache.NewFile(opts.CacheFile), func() {}, nil
	}
	client, err := localcache.NewRedisClient(ctx, opts.RedisURL, logger)
	if err != nil {
		return nil, nil, err
	}
	return localcache.NewRedis(client, 0), func() { _ = client.Close() }, nil
}

// tokenSubject scopes the local cache to the token's user. The signature is not checked
// here; the server does that on every request.
func tokenSubject(token string) string {
	if token == "" {
		return "anonymous"
	}
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil || claims.Subject == "" {
		return "anonymous"
	}
	return claims.Subject
}
