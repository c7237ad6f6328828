// Package cli provides the command-line interface for the options lab.
package cli

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"options-lab/internal/config"
	"options-lab/internal/service"
	"options-lab/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2026-10-19"
)

// App holds the application dependencies.
type App struct {
	Config    *config.Config
	ConfigDir string
	Logger    zerolog.Logger
	Store     store.HistoryStore

	svc *service.OptionsService
}

// Service returns the options service, opening the history store on first
// use. A store that fails to open is logged and history is disabled.
func (app *App) Service() *service.OptionsService {
	if app.svc != nil {
		return app.svc
	}

	if app.Store == nil && app.Config.Store.Enabled {
		historyStore, err := store.NewSQLiteStore(app.Config.Store.Path)
		if err != nil {
			app.Logger.Warn().Err(err).Str("path", app.Config.Store.Path).Msg("Failed to open history store, history disabled")
		} else {
			app.Store = historyStore
			app.Logger.Debug().Str("path", app.Config.Store.Path).Msg("SQLite history store initialized")
		}
	}

	app.svc = service.NewOptionsService(app.Config, app.Store, app.Logger)
	return app.svc
}

// Close releases the service and the history store.
func (app *App) Close() {
	if app.svc != nil {
		app.svc.Close()
		app.svc = nil
	}
	if app.Store != nil {
		if err := app.Store.Close(); err != nil {
			app.Logger.Warn().Err(err).Msg("Failed to close history store")
		}
		app.Store = nil
	}
}

// output builds an Output honoring the UI color setting.
func (app *App) output(cmd *cobra.Command) *Output {
	out := NewOutput(cmd)
	if !app.Config.UI.ColorEnabled {
		out.DisableColor()
	}
	return out
}

// NewApp creates the CLI application. Run it with Execute.
func NewApp(cfg *config.Config, configDir string, logger zerolog.Logger) *App {
	return &App{
		Config:    cfg,
		ConfigDir: configDir,
		Logger:    logger,
	}
}

func newRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "optionslab",
		Short: "Options strategy pricing and risk analysis",
		Long: `Options Lab prices European options with Black-Scholes, builds common
multi-leg strategies and analyzes their P&L profile across a price grid.

Use 'optionslab options strategy list' to see available strategies.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/options-lab)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("yaml", false, "output in YAML format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addOptionsCommands(rootCmd, app)
	addHistoryCommands(rootCmd, app)
	addServeCommand(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd(app))
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if output.IsStructured() {
				return output.Emit(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("Options Lab v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if output.IsStructured() {
				return output.Emit(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if output.IsStructured() {
				return output.Emit(map[string]string{"path": app.ConfigDir})
			}
			output.Println(app.ConfigDir)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsStructured() {
				return output.Emit(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Pricing Defaults")
	output.Printf("  Risk-Free Rate:  %s\n", FormatPercent(cfg.Pricing.RiskFreeRate))
	output.Printf("  Volatility:      %s\n", FormatPercent(cfg.Pricing.Volatility))
	output.Printf("  Days to Expiry:  %d\n", cfg.Pricing.DaysToExpiry)
	output.Println()

	output.Bold("Server")
	output.Printf("  Address:         %s\n", cfg.Server.Addr)
	output.Printf("  Mode:            %s\n", cfg.Server.Mode)
	output.Printf("  Max Compare:     %d\n", cfg.Server.MaxCompare)
	output.Println()

	output.Bold("History")
	output.Printf("  Enabled:         %v\n", cfg.Store.Enabled)
	output.Printf("  Path:            %s\n", cfg.Store.Path)
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:           %s\n", cfg.Logging.Level)
	output.Printf("  File:            %v (%s)\n", cfg.Logging.File, cfg.Logging.FilePath)
	output.Println()

	output.Bold("Batch")
	output.Printf("  Workers:         %d\n", cfg.Batch.Workers)
}

// Execute runs the command line in args and prints any error to stderr.
// The app is closed on return, whether or not the command failed.
func Execute(app *App, args []string) int {
	defer app.Close()

	rootCmd := newRootCmd(app)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return 1
	}
	return 0
}
