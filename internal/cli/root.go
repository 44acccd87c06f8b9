// Package cli wires the commands of the thryv binary: profiles, items,
// history, due queries and snapshot handling, all against the local
// database.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/vky3831/thryv/internal/config"
	"github.com/vky3831/thryv/pkg/logging"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	ConfigPath string
	Database   string
	Verbose    bool

	cfg *config.Config
}

// NewRootCommand creates the root command for the thryv CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "thryv",
		Short: "Local record keeping: journal, finance, health and medication",
		Long: `Thryv keeps profiles, recurring items and fulfillment history in a
local SQLite database. No accounts, no network, one file you own.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.ConfigPath)
			if err != nil {
				return err
			}
			if opts.Database != "" {
				cfg.Database.Path = opts.Database
			}
			level := cfg.Logging.Level
			if opts.Verbose {
				level = "debug"
			}
			logging.Setup(level)
			opts.cfg = cfg
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "path to SQLite database (overrides config)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewProfileCommand(opts))
	cmd.AddCommand(NewItemCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewDueCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewThemeCommand(opts))

	return cmd
}
