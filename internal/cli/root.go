// Package cli implements coveragectl, the operator tool for inspecting and
// maintaining ZIP coverage outside the HTTP server.
package cli

import (
	"fmt"
	"os"

	"github.com/mountly/coverage-backend/internal/app"
	"github.com/mountly/coverage-backend/internal/config"
	"github.com/mountly/coverage-backend/internal/db"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for coveragectl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "coveragectl",
		Short: "Inspect and maintain ZIP service coverage",
		Long: `coveragectl answers the same questions as the booking API (is this ZIP
covered, who is free, where is it) and runs maintenance jobs such as
re-expanding drawn service areas after a boundary data refresh.

Commands that read workers or bookings need DATABASE_URL.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if opts.ConfigFile != "" {
				return os.Setenv("CONFIG_FILE", opts.ConfigFile)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "YAML config file (overrides CONFIG_FILE)")

	cmd.AddCommand(NewCoverageCommand(opts))
	cmd.AddCommand(NewAvailabilityCommand(opts))
	cmd.AddCommand(NewSlotsCommand(opts))
	cmd.AddCommand(NewBoundaryCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewNearbyCommand(opts))
	cmd.AddCommand(NewExpandCommand(opts))
	cmd.AddCommand(NewCreateAdminCommand(opts))
	cmd.AddCommand(NewFormatCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// openApp builds the services from the environment. With withDB it also
// connects to Postgres; the returned func releases the connection.
func openApp(withDB bool) (*app.App, func(), error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "load config", err)
	}
	if !withDB {
		return app.New(cfg, nil), func() {}, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "config", err)
	}
	if err := db.Connect(cfg.DatabaseURL); err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "database", err)
	}
	return app.New(cfg, db.DB), db.Close, nil
}
