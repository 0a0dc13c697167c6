package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/mountly/coverage-backend/internal/auth"
	"github.com/mountly/coverage-backend/internal/workers"
	"github.com/mountly/coverage-backend/internal/zipcode"
	"github.com/spf13/cobra"
)

// NewExpandCommand creates the expand command.
func NewExpandCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "expand",
		Short: "Re-expand drawn service areas into ZIP rows",
		Long: `Re-run polygon expansion for every active worker's drawn areas. Run it
after replacing the ZCTA boundary file. Existing rows are kept; new ZIPs
get polygon rows.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, closeFn, err := openApp(true)
			if err != nil {
				return err
			}
			defer closeFn()
			workers.Init()

			touched, err := a.Workers.ReexpandAreas(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "expand areas", err)
			}
			zips := unique(touched)
			return emit(cmd.OutOrStdout(), opts, map[string]any{"zipcodes": zips, "count": len(zips)}, func(w io.Writer) {
				fmt.Fprintf(w, "expanded areas cover %d ZIPs\n", len(zips))
				if opts.Verbose {
					for _, z := range zips {
						fmt.Fprintln(w, "  "+z)
					}
				}
			})
		},
	}
}

func unique(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// CreateAdminOptions holds flags for the create-admin command.
type CreateAdminOptions struct {
	*RootOptions
	Password string
	Role     string
}

// NewCreateAdminCommand creates the create-admin command.
func NewCreateAdminCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CreateAdminOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "create-admin <username>",
		Short: "Create a back-office user",
		Long: `Create a back-office user who can manage workers and the coverage cache.
The password comes from --password or COVERAGECTL_PASSWORD.

Example:
  COVERAGECTL_PASSWORD=... coveragectl create-admin ops`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			password := opts.Password
			if password == "" {
				password = os.Getenv("COVERAGECTL_PASSWORD")
			}
			if password == "" {
				return NewExitError(ExitCommandError, "a password is required")
			}
			if opts.Role != auth.RoleAdmin && opts.Role != auth.RoleStaff {
				return NewExitError(ExitCommandError, fmt.Sprintf("unknown role %q", opts.Role))
			}

			_, closeFn, err := openApp(true)
			if err != nil {
				return err
			}
			defer closeFn()
			auth.Init()

			user, err := auth.CreateUser(args[0], password, opts.Role)
			if errors.Is(err, auth.ErrUsernameTaken) {
				return WrapExitError(ExitFailure, args[0], err)
			}
			if err != nil {
				return WrapExitError(ExitCommandError, "create user", err)
			}
			return emit(cmd.OutOrStdout(), opts.RootOptions, auth.MeResponse{
				UserID: user.UserID, Username: user.Username, Role: user.Role,
			}, func(w io.Writer) {
				fmt.Fprintf(w, "created %s %s (%s)\n", user.Role, user.Username, user.UserID)
			})
		},
	}

	cmd.Flags().StringVar(&opts.Password, "password", "", "password for the new user")
	cmd.Flags().StringVar(&opts.Role, "role", auth.RoleAdmin, "role (admin|staff)")

	return cmd
}

type formatted struct {
	Input     string `json:"input"`
	Zipcode   string `json:"zipcode,omitempty"`
	Formatted string `json:"formatted"`
	Valid     bool   `json:"valid"`
}

// NewFormatCommand creates the format command.
func NewFormatCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "format <zip>...",
		Short: "Normalize and format ZIP codes",
		Long: `Normalize ZIP input to its 5-digit form and render it for display.

Example:
  coveragectl format "75201 1234" 75201`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := make([]formatted, 0, len(args))
			for _, raw := range args {
				zip, ok := zipcode.Normalize(raw)
				out = append(out, formatted{Input: raw, Zipcode: zip, Formatted: zipcode.Format(raw), Valid: ok})
			}
			return emit(cmd.OutOrStdout(), opts, out, func(w io.Writer) {
				for _, f := range out {
					if !f.Valid {
						fmt.Fprintf(w, "%-14q invalid\n", f.Input)
						continue
					}
					fmt.Fprintf(w, "%-14q %s  %s\n", f.Input, f.Zipcode, f.Formatted)
				}
			})
		},
	}
}
