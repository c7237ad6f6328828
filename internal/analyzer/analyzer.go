// Package analyzer evaluates the profit and loss profile of a priced option
// strategy across a simulated range of underlying prices.
package analyzer

import (
	"math"

	apperrors "options-lab/internal/errors"
	"options-lab/internal/models"
	"options-lab/internal/pricing"
)

// Grid parameters: GridPoints prices spanning [GridLow*spot, GridHigh*spot].
const (
	GridPoints = 100
	GridLow    = 0.5
	GridHigh   = 1.5
)

// Analyze revalues every leg across the price grid using the strategy's own
// time to expiry and returns the risk/reward report.
//
// MaxProfit and MaxLoss are bounded by the grid edges, and
// ProbabilityOfProfit is the share of grid points with positive P&L. Both are
// coarse approximations, not closed-form or risk-neutral measures.
func Analyze(s *models.Strategy) (*models.StrategyAnalysis, error) {
	return analyze(s, false)
}

// AnalyzeAtExpiration is Analyze with every leg revalued at its expiry
// payoff. Aggregate Greeks are still taken at the strategy's current time.
func AnalyzeAtExpiration(s *models.Strategy) (*models.StrategyAnalysis, error) {
	return analyze(s, true)
}

func analyze(s *models.Strategy, atExpiration bool) (*models.StrategyAnalysis, error) {
	if s == nil {
		return nil, apperrors.NewValidationError("strategy", nil, "must not be nil")
	}
	ctx := s.Context
	horizon := ctx.TimeToExpiryYears()
	if atExpiration {
		horizon = 0
	}
	if err := ctx.Validate(); err != nil {
		return nil, apperrors.NewStrategyError(s.Name, "invalid context", err)
	}
	for _, leg := range s.Legs {
		if err := leg.Validate(); err != nil {
			return nil, apperrors.NewStrategyError(s.Name, "invalid leg", err)
		}
	}

	grid := PriceGrid(ctx.UnderlyingPrice)
	pnl := make([]float64, len(grid))
	for i, price := range grid {
		v, err := pnlAt(s.Legs, price, horizon, ctx)
		if err != nil {
			return nil, apperrors.NewStrategyError(s.Name, "revaluation failed", err)
		}
		pnl[i] = v
	}

	greeks, err := aggregateGreeks(s.Legs, ctx)
	if err != nil {
		return nil, apperrors.NewStrategyError(s.Name, "greeks failed", err)
	}

	maxProfit, maxLoss := extremes(pnl)
	return &models.StrategyAnalysis{
		MaxProfit:           maxProfit,
		MaxLoss:             maxLoss,
		BreakevenPoints:     Breakevens(grid, pnl),
		ProbabilityOfProfit: ProbabilityOfProfit(pnl),
		Greeks:              greeks,
		PriceGrid:           grid,
		PnLGrid:             pnl,
	}, nil
}

// PriceGrid returns GridPoints ascending, evenly spaced prices from
// GridLow*spot to GridHigh*spot inclusive.
func PriceGrid(spot float64) []float64 {
	low, high := GridLow*spot, GridHigh*spot
	step := (high - low) / float64(GridPoints-1)

	grid := make([]float64, GridPoints)
	for i := range grid {
		grid[i] = low + float64(i)*step
	}
	grid[GridPoints-1] = high
	return grid
}

// pnlAt returns the strategy P&L in currency if the underlying were at price
// with years left to expiry.
func pnlAt(legs []models.Leg, price, years float64, ctx models.StrategyContext) (float64, error) {
	var total float64
	for _, leg := range legs {
		value, err := pricing.Price(price, leg.Strike, years, ctx.RiskFreeRate, ctx.Volatility, leg.Kind)
		if err != nil {
			return 0, err
		}
		total += leg.Action.Sign() * (value - leg.Premium) * float64(leg.Quantity) * models.ContractMultiplier
	}
	return total, nil
}

// aggregateGreeks sums each leg's Greeks at spot, weighted by quantity and
// signed by action.
func aggregateGreeks(legs []models.Leg, ctx models.StrategyContext) (models.Greeks, error) {
	var agg models.Greeks
	years := ctx.TimeToExpiryYears()
	for _, leg := range legs {
		g, err := pricing.Greeks(ctx.UnderlyingPrice, leg.Strike, years, ctx.RiskFreeRate, ctx.Volatility, leg.Kind)
		if err != nil {
			return models.Greeks{}, err
		}
		agg = agg.Add(g, float64(leg.Quantity)*leg.Action.Sign())
	}
	return agg, nil
}

func extremes(values []float64) (hi, lo float64) {
	if len(values) == 0 {
		return 0, 0
	}
	hi, lo = values[0], values[0]
	for _, v := range values[1:] {
		hi = math.Max(hi, v)
		lo = math.Min(lo, v)
	}
	return hi, lo
}

// Breakevens returns the interpolated zero crossings of pnl over prices, in
// ascending price order. A pair counts as a crossing when the P&L moves from
// one side of zero onto or across the other; a point exactly at zero is
// reported once, from the segment that reaches it. A run of zeros at the low
// edge of the grid is reported at its last point, where the P&L leaves zero.
// An all-zero P&L has no breakevens.
func Breakevens(prices, pnl []float64) []float64 {
	n := min(len(prices), len(pnl))
	points := []float64{}

	lead := 0
	for lead < n && pnl[lead] == 0 {
		lead++
	}
	if lead > 0 && lead < n {
		points = append(points, prices[lead-1])
	}

	for i := lead; i+1 < n; i++ {
		a, b := pnl[i], pnl[i+1]
		if !((a < 0 && b >= 0) || (a > 0 && b <= 0)) {
			continue
		}
		p0, p1 := prices[i], prices[i+1]
		points = append(points, p0+(0-a)*(p1-p0)/(b-a))
	}
	return points
}

// ProbabilityOfProfit returns the fraction of pnl values strictly above zero.
func ProbabilityOfProfit(pnl []float64) float64 {
	if len(pnl) == 0 {
		return 0
	}
	var wins int
	for _, v := range pnl {
		if v > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(pnl))
}
