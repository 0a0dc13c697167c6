package cli

import (
	"fmt"
	"io"

	"github.com/mountly/coverage-backend/internal/coverage"
	"github.com/spf13/cobra"
)

// NewCoverageCommand creates the coverage command.
func NewCoverageCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "coverage <zip>",
		Short: "Resolve service coverage for a ZIP",
		Long: `Resolve service coverage for a ZIP the way the booking API does:
the ZCTA check and the worker count run side by side and are reconciled.

Exits 1 when the ZIP is not bookable.

Example:
  coveragectl coverage 75201 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := openApp(true)
			if err != nil {
				return err
			}
			defer closeFn()

			res := a.Coverage.GetZctaServiceCoverage(cmd.Context(), args[0])
			if err := emit(cmd.OutOrStdout(), opts, res, func(w io.Writer) {
				printCoverage(w, args[0], res)
			}); err != nil {
				return err
			}
			if !res.HasServiceCoverage {
				return NewExitError(ExitFailure, fmt.Sprintf("%s is not covered", args[0]))
			}
			return nil
		},
	}
}

func printCoverage(w io.Writer, zip string, res coverage.Result) {
	state := "not covered"
	if res.HasServiceCoverage {
		state = "covered"
	}
	fmt.Fprintf(w, "%s: %s (%d workers, source %s)\n", zip, state, res.WorkerCount, res.CoverageSource)
	if z := res.ZctaData; z != nil {
		fmt.Fprintf(w, "  zcta: valid=%t usable=%t %s, %s\n", z.IsValid, z.CanUseForService, z.City, z.StateAbbr)
		if z.GeometricOverlap {
			fmt.Fprintf(w, "  drawn areas of %d workers overlap this ZIP\n", z.OverlapWorkers)
		}
	}
}
