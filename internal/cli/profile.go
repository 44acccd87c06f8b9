package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vky3831/thryv/internal/models"
)

// NewProfileCommand creates the profile command group.
func NewProfileCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage profiles",
	}
	cmd.AddCommand(newProfileCreateCommand(opts))
	cmd.AddCommand(newProfileListCommand(opts))
	cmd.AddCommand(newProfileRenameCommand(opts))
	cmd.AddCommand(newProfileDeleteCommand(opts))
	cmd.AddCommand(newProfileLoginCommand(opts))
	cmd.AddCommand(newProfileLogoutCommand(opts))
	cmd.AddCommand(newProfileAddTypeCommand(opts))
	cmd.AddCommand(newProfileAddUnitCommand(opts))
	return cmd
}

func newProfileCreateCommand(opts *RootOptions) *cobra.Command {
	var passkey, dob string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, func(ctx context.Context, a *app) error {
				profile, err := a.profiles.Create(ctx, args[0], passkey, dob)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created profile %s (%s)\n", profile.Name, profile.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&passkey, "passkey", "", "passkey protecting the profile (optional)")
	cmd.Flags().StringVar(&dob, "dob", "", "date of birth, DD/MM/YYYY (optional)")
	return cmd
}

func newProfileListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, func(ctx context.Context, a *app) error {
				profiles, err := a.profiles.List(ctx)
				if err != nil {
					return err
				}
				current, _, err := a.meta.Get(ctx, models.MetaCurrentProfile)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tPROTECTED\t")
				for _, p := range profiles {
					marker := ""
					if p.ID == current {
						marker = " *"
					}
					protected := "no"
					if p.PasskeyHash != "" {
						protected = "yes"
					}
					fmt.Fprintf(w, "%s\t%s%s\t%s\t\n", p.ID, p.Name, marker, protected)
				}
				return w.Flush()
			})
		},
	}
}

func newProfileRenameCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <id> <new-name>",
		Short: "Rename a profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, func(ctx context.Context, a *app) error {
				profile, err := a.profiles.Rename(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "renamed profile to %s\n", profile.Name)
				return nil
			})
		},
	}
}

func newProfileDeleteCommand(opts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a profile and everything it owns",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("deleting a profile removes all its items and history, re-run with --yes")
			}
			return runWithApp(opts, func(ctx context.Context, a *app) error {
				if err := a.profiles.Delete(ctx, args[0]); err != nil {
					return err
				}
				current, _, err := a.meta.Get(ctx, models.MetaCurrentProfile)
				if err != nil {
					return err
				}
				if current == args[0] {
					if err := a.logout(ctx); err != nil {
						return err
					}
				}
				fmt.Fprintln(cmd.OutOrStdout(), "profile deleted")
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the deletion")
	return cmd
}

func newProfileLoginCommand(opts *RootOptions) *cobra.Command {
	var passkey string

	cmd := &cobra.Command{
		Use:   "login <id>",
		Short: "Select a profile, verifying its passkey if set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, func(ctx context.Context, a *app) error {
				profile, err := a.login(ctx, args[0], passkey)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n", profile.Name)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&passkey, "passkey", "", "the profile's passkey")
	return cmd
}

func newProfileLogoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the current session and profile selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, func(ctx context.Context, a *app) error {
				if err := a.logout(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "logged out")
				return nil
			})
		},
	}
}

func newProfileAddTypeCommand(opts *RootOptions) *cobra.Command {
	var profileID string

	cmd := &cobra.Command{
		Use:   "add-type <type>",
		Short: "Add a custom measurement type to the profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, func(ctx context.Context, a *app) error {
				profile, err := a.requireProfile(ctx, profileID)
				if err != nil {
					return err
				}
				updated, err := a.profiles.AddCustomType(ctx, profile.ID, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "types: %s\n", strings.Join(updated.CustomTypes, ", "))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&profileID, "profile", "", "profile ID (defaults to the current profile)")
	return cmd
}

func newProfileAddUnitCommand(opts *RootOptions) *cobra.Command {
	var profileID string

	cmd := &cobra.Command{
		Use:   "add-unit <unit>",
		Short: "Add a custom measurement unit to the profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, func(ctx context.Context, a *app) error {
				profile, err := a.requireProfile(ctx, profileID)
				if err != nil {
					return err
				}
				updated, err := a.profiles.AddCustomUnit(ctx, profile.ID, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "units: %s\n", strings.Join(updated.CustomUnits, ", "))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&profileID, "profile", "", "profile ID (defaults to the current profile)")
	return cmd
}
