// Package cli implements twoshare, the command line editor for 2share portfolios.
//
// Every editing command opens an editor.Session against the API, applies one mutation and
// flushes before exiting, so a command either leaves the server up to date or reports why
// it could not.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/bug-createdme/2share/internal/localcache"
)

// RootOptions holds the persistent flags.
type RootOptions struct {
	Server    string
	Token     string
	Portfolio string
	CacheFile string
	RedisURL  string
	Format    string
	Verbose   bool
}

var ValidFormats = []string{"text", "json"}

func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "twoshare",
		Short: "Edit your 2share portfolio from the terminal",
		Long: `twoshare edits a 2share link-in-bio portfolio.

Changes are applied locally, checked against your plan and written to the server
before the command exits. The active portfolio is remembered between runs.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.Server, "server", envOr("TWOSHARE_SERVER", "http://localhost:8080"), "API base URL")
	pf.StringVar(&opts.Token, "token", os.Getenv("TWOSHARE_TOKEN"), "API token")
	pf.StringVarP(&opts.Portfolio, "portfolio", "p", "", "portfolio id or slug (defaults to the active one)")
	pf.StringVar(&opts.CacheFile, "cache", filepath.Join(localcache.DefaultDir(), "cache.json"), "local cache file")
	pf.StringVar(&opts.RedisURL, "redis", os.Getenv("TWOSHARE_REDIS_URL"), "keep the local cache in Redis instead of a file")
	pf.StringVar(&opts.Format, "format", "text", "output format (text|json)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewPreviewCommand(opts))
	cmd.AddCommand(NewTitleCommand(opts))
	cmd.AddCommand(NewBioCommand(opts))
	cmd.AddCommand(NewAvatarCommand(opts))
	cmd.AddCommand(NewUseCommand(opts))
	cmd.AddCommand(NewLinksCommand(opts))
	cmd.AddCommand(NewDesignCommand(opts))
	cmd.AddCommand(NewTokenCommand(opts))
	cmd.AddCommand(NewPlanCommand(opts))

	return cmd
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// newLogger writes warnings to w, or everything with --verbose.
func newLogger(opts *RootOptions, w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
