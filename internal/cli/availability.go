package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// AvailabilityOptions holds flags for the availability and slots commands.
type AvailabilityOptions struct {
	*RootOptions
	Duration int
}

// NewAvailabilityCommand creates the availability command.
func NewAvailabilityCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AvailabilityOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "availability <zip> <date> <time>",
		Short: "List workers free for a booking",
		Long: `List workers with an explicit service row for the ZIP who are on shift
and have no overlapping booking.

Example:
  coveragectl availability 75201 2026-03-14 09:30 --duration 90`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := openApp(true)
			if err != nil {
				return err
			}
			defer closeFn()

			records := a.Availability.FindAvailableWorkers(cmd.Context(), args[0], args[1], args[2], opts.Duration)
			if err := emit(cmd.OutOrStdout(), opts.RootOptions, records, func(w io.Writer) {
				if len(records) == 0 {
					fmt.Fprintln(w, "no workers available")
					return
				}
				for _, r := range records {
					fmt.Fprintf(w, "%s  %-24s %-16s %3d min  %s\n", r.WorkerID, r.Name, r.AssignmentSource,
						r.AvgResponseTime, strings.Join(r.Specializations, ","))
				}
			}); err != nil {
				return err
			}
			if len(records) == 0 {
				return NewExitError(ExitFailure, "no workers available")
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&opts.Duration, "duration", "d", 60, "job duration in minutes")

	return cmd
}

// NewSlotsCommand creates the slots command.
func NewSlotsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AvailabilityOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "slots <zip> <date>",
		Short: "List bookable start times for a day",
		Long: `List the start times on a day where at least one worker is free for
the whole duration.

Example:
  coveragectl slots 75201 2026-03-14 --duration 120`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := openApp(true)
			if err != nil {
				return err
			}
			defer closeFn()

			slots := a.Availability.Slots(cmd.Context(), args[0], args[1], opts.Duration)
			return emit(cmd.OutOrStdout(), opts.RootOptions, slots, func(w io.Writer) {
				if len(slots) == 0 {
					fmt.Fprintln(w, "no open slots")
					return
				}
				for _, s := range slots {
					fmt.Fprintf(w, "%s  %d free\n", s.Time, s.Available)
				}
			})
		},
	}

	cmd.Flags().IntVarP(&opts.Duration, "duration", "d", 60, "job duration in minutes")

	return cmd
}
