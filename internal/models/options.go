package models

import (
	"math"

	apperrors "options-lab/internal/errors"
)

// Contract multiplier: shares per option contract.
const ContractMultiplier = 100

// DaysPerYear converts days-to-expiry into a year fraction.
const DaysPerYear = 365.0

// Default market parameters used when a request leaves them unset.
const (
	DefaultRiskFreeRate = 0.05
	DefaultVolatility   = 0.25
	DefaultDaysToExpiry = 30
)

// Greeks represents option sensitivities.
// Theta is per calendar day, Vega per volatility point, Rho per 1% rate move.
type Greeks struct {
	Delta float64 `json:"delta" yaml:"delta"`
	Gamma float64 `json:"gamma" yaml:"gamma"`
	Theta float64 `json:"theta" yaml:"theta"`
	Vega  float64 `json:"vega" yaml:"vega"`
	Rho   float64 `json:"rho" yaml:"rho"`
}

// Add returns g + weight*o.
func (g Greeks) Add(o Greeks, weight float64) Greeks {
	return Greeks{
		Delta: g.Delta + o.Delta*weight,
		Gamma: g.Gamma + o.Gamma*weight,
		Theta: g.Theta + o.Theta*weight,
		Vega:  g.Vega + o.Vega*weight,
		Rho:   g.Rho + o.Rho*weight,
	}
}

// Leg represents one option position within a strategy.
type Leg struct {
	Kind     OptionKind `json:"kind" yaml:"kind"`
	Action   Action     `json:"action" yaml:"action"`
	Strike   float64    `json:"strike" yaml:"strike"`
	Quantity int        `json:"quantity" yaml:"quantity"`
	// Premium is the theoretical price at construction time. It is never
	// recomputed after the leg is built.
	Premium float64 `json:"premium" yaml:"premium"`
}

// Validate checks the leg invariants.
func (l Leg) Validate() error {
	if !l.Kind.Valid() {
		return apperrors.NewValidationError("kind", l.Kind, "must be CALL or PUT")
	}
	if !l.Action.Valid() {
		return apperrors.NewValidationError("action", l.Action, "must be BUY or SELL")
	}
	if !(l.Strike > 0) || math.IsInf(l.Strike, 0) {
		return apperrors.NewValidationError("strike", l.Strike, "must be positive")
	}
	if l.Quantity < 1 {
		return apperrors.NewValidationError("quantity", l.Quantity, "must be at least 1")
	}
	if l.Premium < 0 || math.IsNaN(l.Premium) {
		return apperrors.NewValidationError("premium", l.Premium, "must be non-negative")
	}
	return nil
}

// StrategyContext holds the market parameters shared by every leg.
type StrategyContext struct {
	UnderlyingPrice float64 `json:"underlying_price" yaml:"underlying_price"`
	RiskFreeRate    float64 `json:"risk_free_rate" yaml:"risk_free_rate"`
	Volatility      float64 `json:"volatility" yaml:"volatility"`
	DaysToExpiry    int     `json:"days_to_expiry" yaml:"days_to_expiry"`
}

// DefaultStrategyContext returns a context at spot with the default rate,
// volatility and expiry.
func DefaultStrategyContext(spot float64) StrategyContext {
	return StrategyContext{
		UnderlyingPrice: spot,
		RiskFreeRate:    DefaultRiskFreeRate,
		Volatility:      DefaultVolatility,
		DaysToExpiry:    DefaultDaysToExpiry,
	}
}

// TimeToExpiryYears returns DaysToExpiry as a fraction of a year.
func (c StrategyContext) TimeToExpiryYears() float64 {
	return float64(c.DaysToExpiry) / DaysPerYear
}

// Validate checks the context invariants.
func (c StrategyContext) Validate() error {
	if !(c.UnderlyingPrice > 0) || math.IsInf(c.UnderlyingPrice, 0) {
		return apperrors.NewValidationError("underlying_price", c.UnderlyingPrice, "must be positive")
	}
	if math.IsNaN(c.RiskFreeRate) || math.IsInf(c.RiskFreeRate, 0) {
		return apperrors.NewValidationError("risk_free_rate", c.RiskFreeRate, "must be finite")
	}
	if !(c.Volatility >= 0) || math.IsInf(c.Volatility, 0) {
		return apperrors.NewValidationError("volatility", c.Volatility, "must be non-negative")
	}
	if c.DaysToExpiry < 0 {
		return apperrors.NewValidationError("days_to_expiry", c.DaysToExpiry, "must be non-negative")
	}
	return nil
}

// Strategy represents a priced multi-leg option strategy.
type Strategy struct {
	Name        string          `json:"name" yaml:"name"`
	Description string          `json:"description" yaml:"description"`
	Symbol      string          `json:"symbol" yaml:"symbol"`
	Legs        []Leg           `json:"legs" yaml:"legs"`
	Context     StrategyContext `json:"context" yaml:"context"`
}

// NetPremium returns the per-share premium paid for the strategy, summed over
// legs and quantities. Positive is a net debit, negative a net credit.
func (s *Strategy) NetPremium() float64 {
	var net float64
	for _, leg := range s.Legs {
		net += leg.Action.Sign() * leg.Premium * float64(leg.Quantity)
	}
	return net
}

// StrategyAnalysis is the risk/reward report for a strategy.
type StrategyAnalysis struct {
	MaxProfit           float64   `json:"max_profit" yaml:"max_profit"`
	MaxLoss             float64   `json:"max_loss" yaml:"max_loss"`
	BreakevenPoints     []float64 `json:"breakeven_points" yaml:"breakeven_points"`
	ProbabilityOfProfit float64   `json:"probability_of_profit" yaml:"probability_of_profit"`
	Greeks              Greeks    `json:"greeks" yaml:"greeks"`
	PriceGrid           []float64 `json:"price_grid" yaml:"price_grid"`
	PnLGrid             []float64 `json:"pnl_grid" yaml:"pnl_grid"`
}
