package cli

import (
	"time"

	"github.com/spf13/cobra"

	"options-lab/internal/store"
)

// addHistoryCommands adds commands over saved analyses.
func addHistoryCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Saved strategy analyses",
		Long:  "List, show and delete analyses recorded with 'options strategy analyze --save'.",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List saved analyses, newest first",
		Example: `  optionslab history list
  optionslab history list --symbol SPY --since 168h --limit 10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)

			filter := store.AnalysisFilter{}
			filter.Symbol, _ = cmd.Flags().GetString("symbol")
			filter.Strategy, _ = cmd.Flags().GetString("strategy")
			filter.Limit, _ = cmd.Flags().GetInt("limit")
			if since, _ := cmd.Flags().GetDuration("since"); since > 0 {
				filter.Since = time.Now().Add(-since)
			}
			if filter.Strategy != "" {
				filter.Strategy = resolveStrategyName(filter.Strategy)
			}

			analyses, err := app.Service().History(cmd.Context(), filter)
			if err != nil {
				output.Error("Failed to list analyses: %v", err)
				return err
			}
			if output.IsStructured() {
				return output.Emit(analyses)
			}
			if len(analyses) == 0 {
				output.Dim("No saved analyses")
				return nil
			}

			table := NewTable(output, "ID", "Created", "Symbol", "Strategy", "Spot", "Max Profit", "Max Loss", "POP")
			for _, a := range analyses {
				table.AddRow(
					a.ID,
					FormatDateTime(a.CreatedAt),
					a.Symbol,
					a.Strategy,
					FormatPrice(a.UnderlyingPrice),
					output.FormatPnL(a.MaxProfit),
					output.FormatPnL(a.MaxLoss),
					FormatProbability(a.ProbabilityOfProfit),
				)
			}
			table.Render()
			return nil
		},
	}
	list.Flags().String("symbol", "", "Filter by underlying symbol")
	list.Flags().String("strategy", "", "Filter by strategy name")
	list.Flags().Duration("since", 0, "Only analyses newer than this duration")
	list.Flags().Int("limit", 20, "Maximum number of analyses (0 for all)")
	cmd.AddCommand(list)

	cmd.AddCommand(&cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			record, err := app.Service().GetAnalysis(cmd.Context(), args[0])
			if err != nil {
				output.Error("Failed to load analysis: %v", err)
				return err
			}
			if output.IsStructured() {
				return output.Emit(record)
			}
			output.Dim("%s  saved %s", record.ID, FormatDateTime(record.CreatedAt))
			displayAnalysis(output, record.Strategy, record.Analysis)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			if err := app.Service().DeleteAnalysis(cmd.Context(), args[0]); err != nil {
				output.Error("Failed to delete analysis: %v", err)
				return err
			}
			if output.IsStructured() {
				return output.Emit(map[string]string{"deleted": args[0]})
			}
			output.Success("✓ Deleted %s", args[0])
			return nil
		},
	})

	rootCmd.AddCommand(cmd)
}
