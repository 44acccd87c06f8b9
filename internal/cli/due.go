package cli

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

// NewDueCommand creates the due command group.
func NewDueCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "due",
		Short: "Show what is due, with done markers",
	}
	cmd.AddCommand(newDueTodayCommand(opts))
	cmd.AddCommand(newDueMonthCommand(opts))
	return cmd
}

func newDueTodayCommand(opts *RootOptions) *cobra.Command {
	var profileID, on string

	cmd := &cobra.Command{
		Use:   "today",
		Short: "Items due today and whether they are done",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, func(ctx context.Context, a *app) error {
				profile, err := a.requireProfile(ctx, profileID)
				if err != nil {
					return err
				}
				date := time.Now()
				if on != "" {
					date, err = time.ParseInLocation("02/01/2006", on, time.Local)
					if err != nil {
						return fmt.Errorf("parsing --on %q: %w", on, err)
					}
				}
				items, err := a.items.DueOn(ctx, profile.ID, date)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTITLE\tSCHEDULE\tDONE\t")
				for _, item := range items {
					done, err := a.history.WasDoneToday(ctx, item.ID, date)
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", item.ID, item.Title, item.Schedule.Label(), doneMarker(done))
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&profileID, "profile", "", "profile ID (defaults to the current profile)")
	cmd.Flags().StringVar(&on, "on", "", "date to check, DD/MM/YYYY (defaults to today)")
	return cmd
}

func newDueMonthCommand(opts *RootOptions) *cobra.Command {
	var profileID, month string

	cmd := &cobra.Command{
		Use:   "month",
		Short: "Items due this month and whether they are done",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(opts, func(ctx context.Context, a *app) error {
				profile, err := a.requireProfile(ctx, profileID)
				if err != nil {
					return err
				}
				now := time.Now()
				m, y := now.Month(), now.Year()
				if month != "" {
					parsed, err := time.Parse("01/2006", month)
					if err != nil {
						return fmt.Errorf("parsing --month %q: %w", month, err)
					}
					m, y = parsed.Month(), parsed.Year()
				}
				items, err := a.items.DueInMonth(ctx, profile.ID, m, y)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTITLE\tSCHEDULE\tDONE\t")
				for _, item := range items {
					done, err := a.history.WasDoneInMonth(ctx, item.ID, m, y)
					if err != nil {
						return err
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", item.ID, item.Title, item.Schedule.Label(), doneMarker(done))
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&profileID, "profile", "", "profile ID (defaults to the current profile)")
	cmd.Flags().StringVar(&month, "month", "", "month to check, MM/YYYY (defaults to this month)")
	return cmd
}

func doneMarker(done bool) string {
	if done {
		return "✓"
	}
	return "-"
}
