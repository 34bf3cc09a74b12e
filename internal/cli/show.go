package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/bug-createdme/2share/internal/design"
	"github.com/bug-createdme/2share/internal/editor"
	"github.com/bug-createdme/2share/internal/model"
	"github.com/bug-createdme/2share/internal/quota"
	"github.com/bug-createdme/2share/internal/render"
)

// ShowResult is the --format json output of show.
type ShowResult struct {
	Portfolio model.Portfolio `json:"portfolio"`
	Design    design.Settings `json:"design"`
	Quota     quota.Snapshot  `json:"quota"`
}

func NewShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the active portfolio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *editor.Session) error {
				res := ShowResult{Portfolio: s.Portfolio(), Design: s.Design(), Quota: s.Quota()}
				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), res)
				}
				return writeShowText(cmd.OutOrStdout(), res)
			})
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeShowText(w io.Writer, res ShowResult) error {
	p := res.Portfolio
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	id := p.ID
	if id == "" {
		id = "(not created yet)"
	}
	fmt.Fprintf(tw, "Portfolio\t%s\n", id)
	if p.Slug != "" {
		fmt.Fprintf(tw, "Page\t/p/%s\n", p.Slug)
	}
	fmt.Fprintf(tw, "Title\t%s\n", p.Title)
	fmt.Fprintf(tw, "Bio\t%s\n", p.BioText())
	if p.AvatarURL != "" {
		fmt.Fprintf(tw, "Avatar\t%s\n", p.AvatarURL)
	}
	fmt.Fprintf(tw, "Plan\t%s\n", planLine(res.Quota, model.CountLinks(p.SocialLinks)))
	d := res.Design
	fmt.Fprintf(tw, "Design\tlayout %d, theme %s, font %s, %s/%s buttons, %s background\n",
		d.Layout, d.Theme, d.Font, d.Button.Fill, d.Button.Corner, d.Background.Type)
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(p.SocialLinks) == 0 {
		_, err := fmt.Fprintln(w, "\nNo links yet.")
		return err
	}
	fmt.Fprintln(w, "\nLinks:")
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, l := range p.SocialLinks {
		state := "on"
		if !l.IsEnabled {
			state = "off"
		}
		url := l.URL
		if url == "" {
			url = "(no url)"
		}
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\t%d clicks\n", i, l.ID, state, l.Label(), url, l.Clicks)
	}
	return tw.Flush()
}

func planLine(q quota.Snapshot, links int) string {
	var b strings.Builder
	if q.PlanActive {
		b.WriteString("active")
	} else {
		b.WriteString("inactive (changes are not saved)")
	}
	if q.MaxSocialLinks != nil {
		fmt.Fprintf(&b, ", %d/%d links", links, *q.MaxSocialLinks)
	} else {
		fmt.Fprintf(&b, ", %d links", links)
	}
	return b.String()
}

func NewPreviewCommand(opts *RootOptions) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render the active portfolio as an HTML page",
		Long: `Render the active portfolio exactly as the public page shows it.

Without --out the page is written to stdout. With --format json the layout
composition is printed instead of HTML.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *editor.Session) error {
				c := s.Preview()
				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), c)
				}
				if out == "" {
					return render.WriteHTML(cmd.OutOrStdout(), c)
				}
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}
				if err := render.WriteHTML(f, c); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("writing %s: %w", out, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "write the page to this file")
	return cmd
}
