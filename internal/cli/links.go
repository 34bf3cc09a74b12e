package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bug-createdme/2share/internal/editor"
)

func NewLinksCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links",
		Short: "Manage social links",
		Long: `Manage the portfolio's social links.

Only links that are enabled and have a URL appear on the public page, and only
those count against your plan's link limit.`,
	}

	cmd.AddCommand(newLinksAddCommand(opts))
	cmd.AddCommand(linkEdit(opts, "url <id> <url>", "Set a link's URL", 2,
		func(s *editor.Session, args []string) error { return s.SetLinkURL(args[0], args[1]) }))
	cmd.AddCommand(linkEdit(opts, "rename <id> <label>", "Set a link's display name", 2,
		func(s *editor.Session, args []string) error { return s.RenameLink(args[0], args[1]) }))
	cmd.AddCommand(linkEdit(opts, "enable <id>", "Show a link on the public page", 1,
		func(s *editor.Session, args []string) error { return s.SetLinkEnabled(args[0], true) }))
	cmd.AddCommand(linkEdit(opts, "disable <id>", "Hide a link from the public page", 1,
		func(s *editor.Session, args []string) error { return s.SetLinkEnabled(args[0], false) }))
	cmd.AddCommand(linkEdit(opts, "move <id> <index>", "Move a link to a new position", 2,
		func(s *editor.Session, args []string) error {
			i, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("index must be a number, got %q", args[1])
			}
			return s.MoveLink(args[0], i)
		}))
	cmd.AddCommand(linkEdit(opts, "remove <id>", "Delete a link", 1,
		func(s *editor.Session, args []string) error { return s.RemoveLink(args[0]) }))

	return cmd
}

func linkEdit(opts *RootOptions, use, short string, nargs int, fn func(s *editor.Session, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(nargs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *editor.Session) error {
				return fn(s, args)
			})
		},
	}
}

func newLinksAddCommand(opts *RootOptions) *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "add <platform>",
		Short: "Add a link for a platform (github, instagram, ...)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *editor.Session) error {
				l, err := s.AddLink(args[0])
				if err != nil {
					return err
				}
				if url != "" {
					if err := s.SetLinkURL(l.ID, url); err != nil {
						return err
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), l.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&url, "url", "", "link URL")
	return cmd
}
