package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vky3831/thryv/internal/models"
)

// NewThemeCommand creates the theme command.
func NewThemeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "theme [light|dark]",
		Short: "Show or set the UI theme preference",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, func(ctx context.Context, a *app) error {
				if len(args) == 0 {
					theme, ok, err := a.meta.Get(ctx, models.MetaTheme)
					if err != nil {
						return err
					}
					if !ok {
						theme = "light"
					}
					fmt.Fprintln(cmd.OutOrStdout(), theme)
					return nil
				}
				if args[0] != "light" && args[0] != "dark" {
					return fmt.Errorf("unknown theme %q, use light or dark", args[0])
				}
				if err := a.meta.Set(ctx, models.MetaTheme, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "theme set to %s\n", args[0])
				return nil
			})
		},
	}
}
