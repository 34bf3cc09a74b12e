package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bug-createdme/2share/internal/editor"
	"github.com/bug-createdme/2share/internal/model"
)

func NewDesignCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "design",
		Short: "Change the page design",
	}
	cmd.AddCommand(newDesignSetCommand(opts))
	return cmd
}

// designFlags maps each flag onto its stored design field. Only flags given on the
// command line end up in the patch.
type designFlags struct {
	layout, fill, corner                      int
	theme, buttonColor, buttonTextColor, font string
	bgType, bgColor, bgGradient, bgImage      string
}

func (f *designFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.layout, "layout", 1, "layout 1-4 (classic, banner, cover, grid)")
	fs.StringVar(&f.theme, "theme", "", "theme name")
	fs.IntVar(&f.fill, "fill", 0, "button fill index")
	fs.IntVar(&f.corner, "corner", 0, "button corner index")
	fs.StringVar(&f.buttonColor, "button-color", "", "button color")
	fs.StringVar(&f.buttonTextColor, "button-text-color", "", "button text color")
	fs.StringVar(&f.bgType, "background", "", "background type (theme, solidColor, gradient, image, pattern)")
	fs.StringVar(&f.bgColor, "background-color", "", "solid background color")
	fs.StringVar(&f.bgGradient, "background-gradient", "", "background gradient")
	fs.StringVar(&f.bgImage, "background-image", "", "background image URL")
	fs.StringVar(&f.font, "font", "", "font name")
}

func (f *designFlags) patch(fs *pflag.FlagSet) model.DesignSettings {
	var p model.DesignSettings
	str := func(name string, dst **string, v string) {
		if fs.Changed(name) {
			*dst = model.String(v)
		}
	}
	num := func(name string, dst **int, v int) {
		if fs.Changed(name) {
			*dst = model.Int(v)
		}
	}
	num("layout", &p.SelectedLayout, f.layout)
	str("theme", &p.SelectedTheme, f.theme)
	num("fill", &p.ButtonFill, f.fill)
	num("corner", &p.ButtonCorner, f.corner)
	str("button-color", &p.ButtonColor, f.buttonColor)
	str("button-text-color", &p.ButtonTextColor, f.buttonTextColor)
	str("background", &p.BackgroundType, f.bgType)
	str("background-color", &p.BackgroundColor, f.bgColor)
	str("background-gradient", &p.BackgroundGradient, f.bgGradient)
	str("background-image", &p.BackgroundImage, f.bgImage)
	str("font", &p.Font, f.font)
	return p
}

func newDesignSetCommand(opts *RootOptions) *cobra.Command {
	flags := &designFlags{}

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update design fields; unknown values fall back to defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patch := flags.patch(cmd.Flags())
			if patch == (model.DesignSettings{}) {
				return fmt.Errorf("nothing to change: pass at least one design flag")
			}
			return withSession(cmd, opts, func(ctx context.Context, s *editor.Session) error {
				d, err := s.UpdateDesign(patch)
				if err != nil {
					return err
				}
				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), d)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "layout %d, theme %s, font %s, %s/%s buttons, %s background\n",
					d.Layout, d.Theme, d.Font, d.Button.Fill, d.Button.Corner, d.Background.Type)
				return nil
			})
		},
	}

	flags.register(cmd.Flags())
	return cmd
}
