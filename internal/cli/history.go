package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// NewHistoryCommand creates the history command group.
func NewHistoryCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Record and inspect fulfillment history",
	}
	cmd.AddCommand(newHistoryMarkCommand(opts))
	cmd.AddCommand(newHistoryListCommand(opts))
	cmd.AddCommand(newHistoryDeleteCommand(opts))
	return cmd
}

func newHistoryMarkCommand(opts *RootOptions) *cobra.Command {
	var note, at string

	cmd := &cobra.Command{
		Use:   "mark <item-id>",
		Short: "Mark an item as done",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, func(ctx context.Context, a *app) error {
				item, err := a.items.Get(ctx, args[0])
				if err != nil {
					return err
				}

				var when time.Time
				if at != "" {
					when, err = time.Parse(time.RFC3339, at)
					if err != nil {
						return fmt.Errorf("parsing --at %q: %w", at, err)
					}
				}
				entry, err := a.history.Append(ctx, item.ProfileID, item.ID, item.Title, note, when)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "marked %s done at %s\n",
					item.Title, entry.Timestamp.Local().Format(time.RFC822))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&note, "note", "", "note to attach to the entry")
	cmd.Flags().StringVar(&at, "at", "", "timestamp in RFC 3339 form (defaults to now)")
	return cmd
}

func newHistoryListCommand(opts *RootOptions) *cobra.Command {
	var profileID string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the profile's history, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, func(ctx context.Context, a *app) error {
				profile, err := a.requireProfile(ctx, profileID)
				if err != nil {
					return err
				}
				entries, err := a.history.ListByProfile(ctx, profile.ID)
				if err != nil {
					return err
				}
				if limit > 0 && len(entries) > limit {
					entries = entries[:limit]
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tWHEN\tITEM\tNOTE\t")
				for _, entry := range entries {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
						entry.ID, entry.Timestamp.Local().Format(time.RFC822), entry.ItemTitle, entry.Note)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&profileID, "profile", "", "profile ID (defaults to the current profile)")
	cmd.Flags().IntVar(&limit, "limit", 0, "show at most this many entries (0 for all)")
	return cmd
}

func newHistoryDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entry-id>",
		Short: "Delete a history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, func(ctx context.Context, a *app) error {
				if err := a.history.Delete(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "entry deleted")
				return nil
			})
		},
	}
}
