package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vky3831/thryv/internal/repository"
	"github.com/vky3831/thryv/internal/schedule"
)

// itemFlags are the shared flags of item add and item update.
type itemFlags struct {
	profileID string
	category  string
	cycle     string
	on        string
	notes     string
}

func (f *itemFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.profileID, "profile", "", "profile ID (defaults to the current profile)")
	cmd.Flags().StringVar(&f.category, "category", "", "free-form category label")
	cmd.Flags().StringVar(&f.cycle, "cycle", string(schedule.Daily), "recurrence cycle (daily|weekly|monthly|quarterly|half-yearly|yearly|once)")
	cmd.Flags().StringVar(&f.on, "on", "", "cycle date descriptor (weekdays, day of month, DD/MM or DD/MM/YYYY)")
	cmd.Flags().StringVar(&f.notes, "notes", "", "free-form notes")
}

func (f *itemFlags) params(title string) (repository.ItemParams, error) {
	descriptor, err := schedule.Parse(schedule.Kind(f.cycle), f.on)
	if err != nil {
		return repository.ItemParams{}, err
	}
	return repository.ItemParams{
		Title:    title,
		Category: f.category,
		Schedule: descriptor,
		Notes:    f.notes,
	}, nil
}

// NewItemCommand creates the item command group.
func NewItemCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage recurring items",
	}
	cmd.AddCommand(newItemAddCommand(opts))
	cmd.AddCommand(newItemListCommand(opts))
	cmd.AddCommand(newItemUpdateCommand(opts))
	cmd.AddCommand(newItemDeleteCommand(opts))
	return cmd
}

func newItemAddCommand(opts *RootOptions) *cobra.Command {
	flags := &itemFlags{}

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add an item to the profile",
		Long: `Add a recurring item to the profile.

Example:
  thryv item add "Vitamin D" --cycle daily
  thryv item add "Rent" --cycle monthly --on 28 --category finance
  thryv item add "Dentist" --cycle half-yearly --on 15/03`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, func(ctx context.Context, a *app) error {
				profile, err := a.requireProfile(ctx, flags.profileID)
				if err != nil {
					return err
				}
				params, err := flags.params(args[0])
				if err != nil {
					return err
				}
				item, err := a.items.Create(ctx, profile.ID, params)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s), %s\n", item.Title, item.ID, item.Schedule.Label())
				return nil
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func newItemListCommand(opts *RootOptions) *cobra.Command {
	var profileID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the profile's items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, func(ctx context.Context, a *app) error {
				profile, err := a.requireProfile(ctx, profileID)
				if err != nil {
					return err
				}
				items, err := a.items.ListByProfile(ctx, profile.ID)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTITLE\tCATEGORY\tSCHEDULE\t")
				for _, item := range items {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", item.ID, item.Title, item.Category, item.Schedule.Label())
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&profileID, "profile", "", "profile ID (defaults to the current profile)")
	return cmd
}

func newItemUpdateCommand(opts *RootOptions) *cobra.Command {
	flags := &itemFlags{}

	cmd := &cobra.Command{
		Use:   "update <id> <title>",
		Short: "Replace an item's fields",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, func(ctx context.Context, a *app) error {
				params, err := flags.params(args[1])
				if err != nil {
					return err
				}
				item, err := a.items.Update(ctx, args[0], params)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "updated %s, %s\n", item.Title, item.Schedule.Label())
				return nil
			})
		},
	}

	flags.register(cmd)
	return cmd
}

func newItemDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an item and its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, func(ctx context.Context, a *app) error {
				if err := a.items.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "item deleted")
				return nil
			})
		},
	}
}
