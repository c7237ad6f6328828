package cli

import (
	"context"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"options-lab/internal/batch"
	apperrors "options-lab/internal/errors"
	"options-lab/internal/models"
	"options-lab/internal/strategy"
)

// addOptionsCommands adds pricing and strategy commands.
func addOptionsCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Option pricing and strategy analysis",
		Long:  "Commands for pricing single contracts, building strategies and analyzing their payoff.",
	}

	cmd.AddCommand(newOptionsPriceCmd(app))
	cmd.AddCommand(newOptionsGreeksCmd(app))
	cmd.AddCommand(newOptionsStrategyCmd(app))
	cmd.AddCommand(newOptionsPayoffCmd(app))
	cmd.AddCommand(newOptionsCompareCmd(app))

	rootCmd.AddCommand(cmd)
}

// addMarketFlags registers the market context flags shared by strategy commands.
func addMarketFlags(cmd *cobra.Command) {
	cmd.Flags().String("symbol", "", "Underlying symbol")
	cmd.Flags().Float64("spot", 0, "Underlying price")
	cmd.Flags().Float64("rate", 0, "Risk-free rate as a decimal (default from config)")
	cmd.Flags().Float64("vol", 0, "Annualized volatility as a decimal (default from config)")
	cmd.Flags().Int("days", 0, "Days to expiry (default from config)")
}

func newOptionsPriceCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Price a single option",
		Long:  "Price a European call or put with Black-Scholes and show its Greeks.",
		Example: `  optionslab options price --spot 100 --strike 105 --type call
  optionslab options price --spot 42 --strike 40 --days 182 --rate 0.10 --vol 0.20 --type put`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrice(cmd, app, true)
		},
	}
	addPriceFlags(cmd)
	return cmd
}

func newOptionsGreeksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "greeks",
		Short:   "Show Greeks for a single option",
		Example: `  optionslab options greeks --spot 100 --strike 100 --days 365 --vol 0.2 --type call`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPrice(cmd, app, false)
		},
	}
	addPriceFlags(cmd)
	return cmd
}

func addPriceFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("spot", 0, "Underlying price")
	cmd.Flags().Float64("strike", 0, "Strike price")
	cmd.Flags().String("type", "call", "Option type (call, put)")
	cmd.Flags().Float64("rate", 0, "Risk-free rate as a decimal (default from config)")
	cmd.Flags().Float64("vol", 0, "Annualized volatility as a decimal (default from config)")
	cmd.Flags().Int("days", 0, "Days to expiry (default from config)")
	_ = cmd.MarkFlagRequired("spot")
	_ = cmd.MarkFlagRequired("strike")
}

func runPrice(cmd *cobra.Command, app *App, showPrice bool) error {
	output := app.output(cmd)

	req := &models.PriceRequest{}
	req.Spot, _ = cmd.Flags().GetFloat64("spot")
	req.Strike, _ = cmd.Flags().GetFloat64("strike")
	req.Type, _ = cmd.Flags().GetString("type")
	if cmd.Flags().Changed("rate") {
		v, _ := cmd.Flags().GetFloat64("rate")
		req.RiskFreeRate = &v
	}
	if cmd.Flags().Changed("vol") {
		v, _ := cmd.Flags().GetFloat64("vol")
		req.Volatility = &v
	}
	if cmd.Flags().Changed("days") {
		v, _ := cmd.Flags().GetInt("days")
		req.DaysToExpiry = &v
	}

	quote, err := app.Service().Price(cmd.Context(), req)
	if err != nil {
		output.Error("Failed to price option: %v", err)
		return err
	}

	if output.IsStructured() {
		if showPrice {
			return output.Emit(quote)
		}
		return output.Emit(quote.Greeks)
	}

	output.Bold("%s %s  (spot %s, %d DTE)", quote.Type, FormatPrice(quote.Strike), FormatPrice(quote.Spot), quote.DaysToExpiry)
	output.Dim("  rate %s  vol %s", FormatPercent(quote.RiskFreeRate), FormatPercent(quote.Volatility))
	if showPrice {
		output.Printf("  Price:  %s  (%s per contract)\n", FormatPrice(quote.Price), FormatCurrency(quote.Price*models.ContractMultiplier))
	}
	printGreeks(output, quote.Greeks)
	return nil
}

func printGreeks(output *Output, g models.Greeks) {
	output.Printf("  Delta:  %10.4f\n", g.Delta)
	output.Printf("  Gamma:  %10.4f\n", g.Gamma)
	output.Printf("  Theta:  %10.4f  /day\n", g.Theta)
	output.Printf("  Vega:   %10.4f  /vol pt\n", g.Vega)
	output.Printf("  Rho:    %10.4f  /1%% rate\n", g.Rho)
}

func newOptionsStrategyCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strategy",
		Short: "Option strategy builder",
		Long: `Build and analyze option strategies.

Strategies are built from templates with strikes defaulted around spot.
Override strikes with --param, for example --param long_strike=95.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List strategies by proficiency tier",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			catalog := strategy.Catalog()
			if output.IsStructured() {
				return output.Emit(catalog)
			}

			for _, listing := range catalog {
				output.Bold("%s", strings.ToUpper(string(listing.Tier)))
				for _, e := range listing.Strategies {
					if e.Supported {
						output.Printf("  %-20s %s\n", output.Cyan(e.Name), strategy.Description(e.Name))
					} else {
						output.Printf("  %s\n", output.DimText(e.Name+" (not yet supported)"))
					}
				}
				output.Println()
			}
			return nil
		},
	})

	analyze := &cobra.Command{
		Use:   "analyze <strategy>",
		Short: "Build a strategy and analyze its P&L profile",
		Example: `  optionslab options strategy analyze "Bull Call Spread" --symbol SPY --spot 450
  optionslab options strategy analyze iron-condor --spot 450 --param put_short_strike=430 --save
  optionslab options strategy analyze --request request.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			req, err := analysisRequestFromFlags(cmd, args)
			if err != nil {
				output.Error("%v", err)
				return err
			}
			save, _ := cmd.Flags().GetBool("save")

			result, err := app.Service().Analyze(cmd.Context(), req, save)
			if err != nil {
				output.Error("Failed to analyze strategy: %v", err)
				return err
			}
			if output.IsStructured() {
				return output.Emit(result)
			}

			displayAnalysis(output, result.Strategy, result.Analysis)
			if result.ID != "" {
				output.Println()
				output.Success("Saved as %s", result.ID)
			} else if save {
				output.Warning("History is disabled; analysis not saved")
			}
			return nil
		},
	}
	addMarketFlags(analyze)
	addRequestFlags(analyze)
	analyze.Flags().Bool("save", false, "Record the analysis in history")
	cmd.AddCommand(analyze)

	return cmd
}

func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("param", nil, "Strategy parameter as key=value (repeatable)")
	cmd.Flags().String("request", "", "Read the analysis request from a YAML or JSON file")
}

func newOptionsPayoffCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payoff <strategy>",
		Short: "Display payoff diagram at expiration",
		Long:  "Display an ASCII payoff diagram of a strategy held to expiration.",
		Example: `  optionslab options payoff "Long Straddle" --spot 100
  optionslab options payoff bull-call-spread --spot 250 --param long_strike=240 --param short_strike=250`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)
			req, err := analysisRequestFromFlags(cmd, args)
			if err != nil {
				output.Error("%v", err)
				return err
			}

			result, err := app.Service().Payoff(cmd.Context(), req)
			if err != nil {
				output.Error("Failed to build payoff: %v", err)
				return err
			}
			if output.IsStructured() {
				return output.Emit(result)
			}

			s, a := result.Strategy, result.Analysis
			output.Bold("Payoff at Expiration - %s", strategyTitle(s))
			output.Println()
			width, height := app.Config.UI.ChartWidth, app.Config.UI.ChartHeight
			for _, line := range RenderPayoff(a.PriceGrid, a.PnLGrid, s.Context.UnderlyingPrice, width, height) {
				output.Println(line)
			}
			output.Println()
			output.Printf("  Breakevens: %s\n", FormatBreakevens(a.BreakevenPoints))
			output.Printf("  Max Profit: %s\n", output.FormatPnL(a.MaxProfit))
			output.Printf("  Max Loss:   %s\n", output.FormatPnL(a.MaxLoss))
			return nil
		},
	}
	addMarketFlags(cmd)
	addRequestFlags(cmd)
	return cmd
}

func newOptionsCompareCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [strategy...]",
		Short: "Analyze several strategies side by side",
		Long: `Analyze several strategies against the same market context concurrently.
With no strategies given, every supported strategy is compared.`,
		Example: `  optionslab options compare --spot 450
  optionslab options compare long-call long-straddle iron-condor --spot 450 --vol 0.3 --rank`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := app.output(cmd)

			req := &models.CompareRequest{}
			if err := applyMarketFlags(cmd, &req.AnalysisRequest); err != nil {
				output.Error("%v", err)
				return err
			}
			for _, arg := range args {
				req.Strategies = append(req.Strategies, resolveStrategyName(arg))
			}

			timeout, _ := cmd.Flags().GetDuration("timeout")
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			results, err := app.Service().Compare(ctx, req)
			if err != nil {
				output.Error("Failed to compare strategies: %v", err)
				return err
			}
			if rank, _ := cmd.Flags().GetBool("rank"); rank {
				results = batch.Rank(results)
			}
			if output.IsStructured() {
				return output.Emit(results)
			}

			displayComparison(output, results)
			return nil
		},
	}
	addMarketFlags(cmd)
	cmd.Flags().StringArray("param", nil, "Strategy parameter as key=value (repeatable)")
	cmd.Flags().Bool("rank", false, "Sort by probability of profit")
	cmd.Flags().Duration("timeout", 30*time.Second, "Comparison timeout")
	return cmd
}

// analysisRequestFromFlags builds a request from --request, positional
// strategy name and the market flags, in increasing precedence.
func analysisRequestFromFlags(cmd *cobra.Command, args []string) (*models.AnalysisRequest, error) {
	req := &models.AnalysisRequest{}
	if path, _ := cmd.Flags().GetString("request"); path != "" {
		loaded, err := loadRequestFile(path)
		if err != nil {
			return nil, err
		}
		req = loaded
	}
	if len(args) > 0 {
		req.StrategyName = resolveStrategyName(strings.Join(args, " "))
	}
	if req.StrategyName == "" {
		return nil, apperrors.NewValidationError("strategy", "", "strategy name is required")
	}
	if err := applyMarketFlags(cmd, req); err != nil {
		return nil, err
	}
	return req, nil
}

// applyMarketFlags copies explicitly set market flags onto req.
func applyMarketFlags(cmd *cobra.Command, req *models.AnalysisRequest) error {
	flags := cmd.Flags()
	if flags.Changed("symbol") || req.UnderlyingSymbol == "" {
		symbol, _ := flags.GetString("symbol")
		req.UnderlyingSymbol = strings.ToUpper(symbol)
	}
	if flags.Changed("spot") {
		req.UnderlyingPrice, _ = flags.GetFloat64("spot")
	}
	if flags.Changed("rate") {
		v, _ := flags.GetFloat64("rate")
		req.RiskFreeRate = &v
	}
	if flags.Changed("vol") {
		v, _ := flags.GetFloat64("vol")
		req.Volatility = &v
	}
	if flags.Changed("days") {
		v, _ := flags.GetInt("days")
		req.DaysToExpiry = &v
	}

	if flags.Lookup("param") != nil {
		raw, _ := flags.GetStringArray("param")
		params, err := parseParams(raw)
		if err != nil {
			return err
		}
		if len(params) > 0 && req.Parameters == nil {
			req.Parameters = map[string]float64{}
		}
		for k, v := range params {
			req.Parameters[k] = v
		}
	}
	return nil
}

// parseParams parses key=value pairs into numeric parameters.
func parseParams(raw []string) (map[string]float64, error) {
	params := make(map[string]float64, len(raw))
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, apperrors.NewValidationError("param", kv, "expected key=value")
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, apperrors.NewValidationError("param", kv, "value must be a number")
		}
		params[key] = f
	}
	return params, nil
}

// loadRequestFile reads an AnalysisRequest from YAML. JSON files parse too,
// JSON being a subset of YAML.
func loadRequestFile(path string) (*models.AnalysisRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading request file: %w", err)
	}
	var req models.AnalysisRequest
	if err := yaml.Unmarshal(data, &req); err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "parsing request file %s: %v", path, err)
	}
	if req.StrategyName != "" {
		req.StrategyName = resolveStrategyName(req.StrategyName)
	}
	return &req, nil
}

// resolveStrategyName maps loose spellings such as "bull-call-spread" onto
// catalog names. Unknown names pass through unchanged; BuildByName itself
// only accepts exact catalog names.
func resolveStrategyName(name string) string {
	key := normalizeName(name)
	for _, supported := range strategy.SupportedNames() {
		if normalizeName(supported) == key {
			return supported
		}
	}
	return strings.TrimSpace(name)
}

func normalizeName(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case ' ', '-', '_':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func strategyTitle(s *models.Strategy) string {
	if s.Symbol == "" {
		return s.Name
	}
	return fmt.Sprintf("%s - %s", s.Name, s.Symbol)
}

func displayAnalysis(output *Output, s *models.Strategy, a *models.StrategyAnalysis) {
	output.Bold("%s", strategyTitle(s))
	if s.Description != "" {
		output.Dim("%s", s.Description)
	}
	c := s.Context
	output.Printf("  Spot: %s  Vol: %s  Rate: %s  DTE: %d\n\n",
		FormatPrice(c.UnderlyingPrice), FormatPercent(c.Volatility), FormatPercent(c.RiskFreeRate), c.DaysToExpiry)

	output.Bold("Legs")
	table := NewTable(output, "#", "Action", "Type", "Strike", "Qty", "Premium")
	for i, leg := range s.Legs {
		table.AddRow(
			strconv.Itoa(i+1),
			leg.Action.String(),
			leg.Kind.String(),
			FormatPrice(leg.Strike),
			strconv.Itoa(leg.Quantity),
			FormatPrice(leg.Premium),
		)
	}
	table.Render()
	output.Println()

	net := s.NetPremium() * models.ContractMultiplier
	label := "Net Debit"
	if net < 0 {
		label = "Net Credit"
	}
	output.Bold("Analysis")
	output.Printf("  %-12s %s\n", label+":", FormatCurrency(math.Abs(net)))
	output.Printf("  Max Profit:  %s\n", output.FormatPnL(a.MaxProfit))
	output.Printf("  Max Loss:    %s\n", output.FormatPnL(a.MaxLoss))
	output.Printf("  Breakevens:  %s\n", FormatBreakevens(a.BreakevenPoints))
	output.Printf("  Prob Profit: %s\n", FormatProbability(a.ProbabilityOfProfit))
	output.Printf("  Greeks:      %s\n", FormatGreeks(a.Greeks))
}

func displayComparison(output *Output, results []batch.Result) {
	table := NewTable(output, "Strategy", "Net", "Max Profit", "Max Loss", "Breakevens", "POP", "Delta", "Theta")
	for _, r := range results {
		if !r.OK() {
			table.AddRow(r.Name, output.Red("error: "+TruncateString(r.Error, 60)))
			continue
		}
		table.AddRow(
			r.Name,
			FormatPnL(-r.Strategy.NetPremium()*models.ContractMultiplier),
			output.FormatPnL(r.Analysis.MaxProfit),
			output.FormatPnL(r.Analysis.MaxLoss),
			FormatBreakevens(r.Analysis.BreakevenPoints),
			FormatProbability(r.Analysis.ProbabilityOfProfit),
			fmt.Sprintf("%.3f", r.Analysis.Greeks.Delta),
			fmt.Sprintf("%.3f", r.Analysis.Greeks.Theta),
		)
	}
	table.Render()
}
