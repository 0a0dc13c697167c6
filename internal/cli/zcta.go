package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/mountly/coverage-backend/internal/zcta"
	"github.com/spf13/cobra"
)

// NewBoundaryCommand creates the boundary command.
func NewBoundaryCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "boundary <zip>",
		Short: "Show the ZCTA boundary summary for a ZIP",
		Long: `Show area, bounds and centroid of the ZCTA polygon for a ZIP.
Reads ZCTA_BOUNDARY_SOURCE; no database is needed.

Example:
  coveragectl boundary 75201`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := openApp(false)
			if err != nil {
				return err
			}
			defer closeFn()

			f, err := a.Boundaries.Boundary(cmd.Context(), args[0])
			if err != nil {
				return WrapExitError(ExitCommandError, "load boundaries", err)
			}
			if f == nil {
				return NewExitError(ExitFailure, fmt.Sprintf("no ZCTA boundary for %s", args[0]))
			}

			s := f.Summarize()
			return emit(cmd.OutOrStdout(), opts, s, func(w io.Writer) {
				fmt.Fprintf(w, "%s\n", s.Zipcode)
				fmt.Fprintf(w, "  land   %.4f sq mi\n", s.Area.LandSqMi)
				fmt.Fprintf(w, "  water  %.4f sq mi\n", s.Area.WaterSqMi)
				fmt.Fprintf(w, "  bounds N %.5f S %.5f E %.5f W %.5f\n", s.Bounds.North, s.Bounds.South, s.Bounds.East, s.Bounds.West)
				fmt.Fprintf(w, "  centroid %.5f, %.5f\n", s.Centroid[1], s.Centroid[0])
			})
		},
	}
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <zip>",
		Short: "Check whether a ZIP is a usable ZCTA",
		Long: `Check whether a ZIP is a real ZCTA with land area and look up its
city and state. Drawn-area overlap is not checked; use coverage for that.

Example:
  coveragectl validate 75201-1234`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := openApp(false)
			if err != nil {
				return err
			}
			defer closeFn()

			v, err := a.Validator.ValidateZctaCode(cmd.Context(), args[0])
			if errors.Is(err, zcta.ErrInvalidZip) {
				return WrapExitError(ExitCommandError, args[0], err)
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "load boundaries", err)
			}
			if err := emit(cmd.OutOrStdout(), opts, v, func(w io.Writer) {
				fmt.Fprintf(w, "%s: valid=%t usable=%t", v.Zipcode, v.IsValid, v.CanUseForService)
				if v.City != "" {
					fmt.Fprintf(w, " (%s, %s)", v.City, v.StateAbbr)
				}
				fmt.Fprintln(w)
			}); err != nil {
				return err
			}
			if !v.CanUseForService {
				return NewExitError(ExitFailure, fmt.Sprintf("%s cannot be used for service", v.Zipcode))
			}
			return nil
		},
	}
}

// NearbyOptions holds flags for the nearby command.
type NearbyOptions struct {
	*RootOptions
	Radius float64
}

// NewNearbyCommand creates the nearby command.
func NewNearbyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &NearbyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "nearby <zip>",
		Short: "List ZCTAs near a ZIP",
		Long: `List ZCTAs whose centroid lies within the radius of the ZIP's centroid,
nearest first. The radius is capped at 100 miles.

Example:
  coveragectl nearby 75201 --radius 5`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := openApp(false)
			if err != nil {
				return err
			}
			defer closeFn()

			near, err := a.Boundaries.Nearby(cmd.Context(), args[0], opts.Radius)
			if errors.Is(err, zcta.ErrUnknownZip) {
				return NewExitError(ExitFailure, fmt.Sprintf("no ZCTA boundary for %s", args[0]))
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "load boundaries", err)
			}
			return emit(cmd.OutOrStdout(), opts.RootOptions, near, func(w io.Writer) {
				for _, n := range near {
					fmt.Fprintf(w, "%s  %6.2f mi\n", n.Zipcode, n.DistanceMiles)
				}
			})
		},
	}

	cmd.Flags().Float64VarP(&opts.Radius, "radius", "r", zcta.DefaultNearbyRadiusMiles, "search radius in miles")

	return cmd
}
