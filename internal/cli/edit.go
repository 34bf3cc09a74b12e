package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bug-createdme/2share/internal/editor"
)

func NewTitleCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "title <text>",
		Short: "Set the portfolio title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *editor.Session) error {
				return s.SetTitle(args[0])
			})
		},
	}
}

func NewBioCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "bio <text>",
		Short: "Set the portfolio bio",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *editor.Session) error {
				return s.SetBio(args[0])
			})
		},
	}
}

func NewAvatarCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "avatar <file|url>",
		Short: "Upload an image file, or point at an existing URL, as the avatar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src := args[0]
			return withSession(cmd, opts, func(ctx context.Context, s *editor.Session) error {
				if isURL(src) {
					return s.SetAvatar(src)
				}
				f, err := os.Open(src)
				if err != nil {
					return fmt.Errorf("opening avatar: %w", err)
				}
				defer f.Close()

				url, err := s.UploadAvatar(ctx, filepath.Base(src), f)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), url)
				return nil
			})
		},
	}
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "/uploads/")
}

func NewUseCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "use <id|slug>",
		Short: "Make another portfolio the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *editor.Session) error {
				p, err := s.Use(ctx, args[0])
				if err != nil {
					return fmt.Errorf("switching to %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "now editing %s (%s)\n", p.ID, p.Title)
				return nil
			})
		},
	}
}
