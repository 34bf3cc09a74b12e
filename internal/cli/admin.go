package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bug-createdme/2share/internal/auth"
	"github.com/bug-createdme/2share/internal/config"
	"github.com/bug-createdme/2share/internal/model"
	"github.com/bug-createdme/2share/internal/server"
	"github.com/bug-createdme/2share/internal/service"
)

// NewTokenCommand mints an API token locally. It needs the server's JWT_SECRET, so it is
// meant for operators, not end users.
func NewTokenCommand(opts *RootOptions) *cobra.Command {
	var (
		user   string
		secret string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API token for a user (needs JWT_SECRET)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return fmt.Errorf("--user is required")
			}
			tokens, err := auth.NewTokenService(secret, ttl)
			if err != nil {
				return err
			}
			token, err := tokens.GenerateWithDuration(user, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "user ID the token is issued for")
	cmd.Flags().StringVar(&secret, "secret", os.Getenv("JWT_SECRET"), "signing secret")
	cmd.Flags().DurationVar(&ttl, "ttl", 90*24*time.Hour, "token lifetime")
	return cmd
}

// NewPlanCommand manages subscriptions directly in the database.
func NewPlanCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Manage user plans (operators only)",
	}
	cmd.AddCommand(newPlanSetCommand(opts))
	return cmd
}

func newPlanSetCommand(opts *RootOptions) *cobra.Command {
	var (
		user, name, status  string
		maxLinks, maxCards  int
		dbPath, databaseURL string
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Store a user's plan; a negative limit means unbounded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if user == "" {
				return fmt.Errorf("--user is required")
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			logger := newLogger(opts, cmd.ErrOrStderr())

			repos, err := server.OpenRepositories(ctx, &config.Config{DBPath: dbPath, DatabaseURL: databaseURL}, logger)
			if err != nil {
				return err
			}
			defer repos.Close()

			plan := model.Plan{
				Name:            name,
				Status:          status,
				MaxSocialLinks:  limit(maxLinks),
				MaxBusinessCard: limit(maxCards),
			}
			if err := service.NewPlanService(repos.Plans, logger).Set(ctx, user, plan); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "plan %q (%s) stored for %s\n", name, status, user)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&user, "user", "", "user ID")
	f.StringVar(&name, "name", "pro", "plan name")
	f.StringVar(&status, "status", model.PlanStatusActive, "active, trialing or inactive")
	f.IntVar(&maxLinks, "max-links", -1, "social link limit")
	f.IntVar(&maxCards, "max-cards", -1, "portfolio limit")
	f.StringVar(&dbPath, "db", envOr("DB_PATH", "data/2share.db"), "SQLite database file")
	f.StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "Postgres URL; overrides --db")
	return cmd
}

func limit(n int) *int {
	if n < 0 {
		return nil
	}
	return model.Int(n)
}
