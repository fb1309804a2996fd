// Package main provides the Lead Engine CLI entrypoint.
package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spherical-ai/spherical/libs/lead-engine/internal/app"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/config"
	"github.com/spherical-ai/spherical/libs/lead-engine/internal/observability"
)

// Set at build time with -ldflags.
var (
	version = "dev"
	commit  = "none"
)

// cli holds the state shared by all subcommands.
type cli struct {
	cfgFile    string
	outputJSON bool
	noColor    bool
	verbose    bool

	cfg    *config.Config
	logger *observability.Logger
	ui     *UI
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "lead-engine-cli",
		Short: "Lead Engine CLI for importing, searching and exporting leads",
		Long: `Lead Engine CLI manages the lead database.

Use this tool to:
- Import leads from Excel workbooks
- Search leads by keyword or with AI matching
- Inspect, delete and export stored leads

All commands support --json for automation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			c.cfg, err = config.Load(c.cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			level := c.cfg.Observability.LogLevel
			if c.verbose {
				level = "debug"
			}
			logFormat := "console"
			if c.outputJSON {
				logFormat = "json"
			}
			c.logger = observability.NewLogger(observability.LogConfig{
				Level:       level,
				Format:      logFormat,
				Output:      cmd.ErrOrStderr(),
				ServiceName: "lead-engine-cli",
			})

			if c.noColor {
				color.NoColor = true
			}
			c.ui = NewUI(cmd.OutOrStdout(), cmd.ErrOrStderr(), c.outputJSON, c.noColor)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.ui != nil {
				c.ui.Close()
			}
		},
	}

	root.PersistentFlags().StringVarP(&c.cfgFile, "config", "c", "", "config file path (default: CONFIG_PATH or env vars)")
	root.PersistentFlags().BoolVar(&c.outputJSON, "json", false, "output in JSON format")
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable colored output")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(c.newIngestCmd())
	root.AddCommand(c.newExportCmd())
	root.AddCommand(c.newSearchCmd())
	root.AddCommand(c.newMatchCmd())
	root.AddCommand(c.newIndustriesCmd())
	root.AddCommand(c.newLeadsCmd())
	root.AddCommand(c.newUploadsCmd())
	root.AddCommand(c.newMigrateCmd())
	root.AddCommand(c.newVersionCmd())

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// services opens the database and wires every component for one command.
func (c *cli) services(ctx context.Context) (*app.Services, error) {
	svc, err := app.New(ctx, c.cfg, c.logger)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

func (c *cli) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		Long:  "Migrate connects to the configured database and creates any missing tables and indexes.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := app.OpenDatabase(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			c.logger.Info().Str("driver", c.cfg.Database.Driver).Msg("Schema migrated")
			if c.outputJSON {
				return c.ui.JSON(map[string]string{"status": "ok", "driver": c.cfg.Database.Driver})
			}
			c.ui.Success("Schema is up to date (%s)", c.cfg.Database.Driver)
			return nil
		},
	}
}

func (c *cli) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := map[string]string{
				"version": version,
				"commit":  commit,
				"go":      runtime.Version(),
			}
			if c.outputJSON {
				return c.ui.JSON(info)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "lead-engine-cli %s (commit %s, %s)\n", version, commit, runtime.Version())
			return nil
		},
	}
}
