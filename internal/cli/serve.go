package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"options-lab/internal/server"
)

// addServeCommand adds the HTTP API command.
func addServeCommand(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Long: `Serve pricing, strategy analysis and history over HTTP.

Endpoints:
  GET    /health
  GET    /api/v1/strategies
  POST   /api/v1/options/price
  POST   /api/v1/strategies/analyze
  POST   /api/v1/strategies/compare
  GET    /api/v1/analyses
  GET    /api/v1/analyses/:id
  DELETE /api/v1/analyses/:id`,
		Example: `  optionslab serve
  optionslab serve --addr 127.0.0.1:9090`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.Config.Server
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := server.New(cfg, app.Service(), app.Logger)
			if err := srv.Run(ctx); err != nil {
				app.Logger.Error().Err(err).Msg("HTTP API stopped")
				return err
			}
			return nil
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default from config)")

	rootCmd.AddCommand(cmd)
}
