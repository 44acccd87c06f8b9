package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vky3831/thryv/internal/snapshot"
)

// NewExportCommand creates the export command.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	var profileID, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the database (or one profile) to a snapshot file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, func(ctx context.Context, a *app) error {
				var snap *snapshot.Snapshot
				var err error
				if profileID == "" {
					snap, err = a.serializer.Export(ctx)
				} else {
					snap, err = a.serializer.ExportProfile(ctx, profileID)
				}
				if err != nil {
					return err
				}

				path := out
				if path == "" {
					path = filepath.Join(a.cfg.Export.Dir, snapshot.Filename(profileID))
				}
				data, err := json.MarshalIndent(snap, "", "  ")
				if err != nil {
					return fmt.Errorf("encoding snapshot: %w", err)
				}
				if err := os.WriteFile(path, data, 0o600); err != nil {
					return fmt.Errorf("writing snapshot: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", path)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&profileID, "profile", "", "export only this profile")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (defaults to the export dir)")
	return cmd
}

// NewImportCommand creates the import command.
func NewImportCommand(opts *RootOptions) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Load a snapshot file into the database",
		Long: `Load a snapshot file into the database.

Merge mode (the default) adds the snapshot's profiles, items and history
alongside what is already there, under fresh IDs. Replace mode clears the
database first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, func(ctx context.Context, a *app) error {
				data, err := os.ReadFile(args[0])
				if err != nil {
					return fmt.Errorf("reading snapshot: %w", err)
				}
				snap, err := snapshot.Parse(data)
				if err != nil {
					return err
				}
				if err := a.serializer.Import(ctx, snap, snapshot.Mode(mode)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d profiles, %d items, %d history entries\n",
					len(snap.Profiles), len(snap.Items), len(snap.History))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&mode, "mode", string(snapshot.Merge), "import mode (merge|replace)")
	return cmd
}

// NewResetCommand creates the reset command.
func NewResetCommand(opts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase the whole database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("reset erases every profile, item and history entry, re-run with --yes")
			}
			return runWithApp(opts, func(ctx context.Context, a *app) error {
				if err := a.serializer.Reset(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "database reset")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
