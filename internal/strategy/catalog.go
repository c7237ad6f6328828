// Package strategy builds priced multi-leg option strategies from named
// templates.
package strategy

import (
	"math"

	apperrors "options-lab/internal/errors"
	"options-lab/internal/models"
	"options-lab/internal/pricing"
)

// Name identifies a supported strategy template.
type Name string

const (
	LongCall       Name = "Long Call"
	LongPut        Name = "Long Put"
	BullCallSpread Name = "Bull Call Spread"
	BearPutSpread  Name = "Bear Put Spread"
	IronCondor     Name = "Iron Condor"
	LongStraddle   Name = "Long Straddle"
	CoveredCall    Name = "Covered Call"
	CashSecuredPut Name = "Cash-Secured Put"
)

// Params holds explicit leg parameters such as "strike" or "long_strike".
// Missing entries take the template's default.
type Params map[string]float64

// Parameter names understood by the builders.
const (
	ParamStrike          = "strike"
	ParamLongStrike      = "long_strike"
	ParamShortStrike     = "short_strike"
	ParamPutLongStrike   = "put_long_strike"
	ParamPutShortStrike  = "put_short_strike"
	ParamCallShortStrike = "call_short_strike"
	ParamCallLongStrike  = "call_long_strike"
	ParamQuantity        = "quantity"
)

// Builder turns a context and parameters into a priced strategy.
type Builder func(symbol string, ctx models.StrategyContext, params Params) (*models.Strategy, error)

// descriptions holds the one-line summary of every supported template.
var descriptions = map[Name]string{
	LongCall:       "Buy a call; profits when the underlying rises above strike plus premium",
	LongPut:        "Buy a put; profits when the underlying falls below strike minus premium",
	BullCallSpread: "Buy a lower-strike call and sell a higher-strike call",
	BearPutSpread:  "Buy a higher-strike put and sell a lower-strike put",
	IronCondor:     "Sell an OTM put spread and an OTM call spread; profits in a range",
	LongStraddle:   "Buy a call and a put at the same strike; profits on a large move",
	CoveredCall:    "Sell a call against shares already owned (shares not modelled as a leg)",
	CashSecuredPut: "Sell a put backed by cash already held (cash not modelled as a leg)",
}

type template struct {
	name  Name
	build Builder
}

// templates is in catalog order.
var templates = []template{
	{LongCall, buildLongCall},
	{LongPut, buildLongPut},
	{BullCallSpread, buildBullCallSpread},
	{BearPutSpread, buildBearPutSpread},
	{IronCondor, buildIronCondor},
	{LongStraddle, buildLongStraddle},
	{CoveredCall, buildCoveredCall},
	{CashSecuredPut, buildCashSecuredPut},
}

var builders = func() map[Name]template {
	m := make(map[Name]template, len(templates))
	for _, t := range templates {
		m[t.name] = t
	}
	return m
}()

// BuildByName builds the named strategy. The lookup is exact; unknown names
// fail with ErrStrategyNotImplemented before any leg is priced.
func BuildByName(name string, symbol string, ctx models.StrategyContext, params Params) (*models.Strategy, error) {
	t, ok := builders[Name(name)]
	if !ok {
		return nil, apperrors.NewStrategyError(name, "unsupported strategy", apperrors.ErrStrategyNotImplemented)
	}
	s, err := t.build(symbol, ctx, params)
	if err != nil {
		return nil, apperrors.NewStrategyError(name, "build failed", err)
	}
	return s, nil
}

// IsSupported reports whether name has a builder.
func IsSupported(name string) bool {
	_, ok := builders[Name(name)]
	return ok
}

// SupportedNames returns the buildable strategy names in catalog order.
func SupportedNames() []string {
	names := make([]string, len(templates))
	for i, t := range templates {
		names[i] = string(t.name)
	}
	return names
}

// Description returns the template description for a supported name.
func Description(name string) string {
	return descriptions[Name(name)]
}

// legSpec is an unpriced leg.
type legSpec struct {
	kind   models.OptionKind
	action models.Action
	strike float64
}

// assemble validates the context, prices every leg once at spot and returns
// the strategy.
func assemble(name Name, symbol string, ctx models.StrategyContext, params Params, specs ...legSpec) (*models.Strategy, error) {
	if err := ctx.Validate(); err != nil {
		return nil, err
	}
	qty, err := quantity(params)
	if err != nil {
		return nil, err
	}

	years := ctx.TimeToExpiryYears()
	legs := make([]models.Leg, 0, len(specs))
	for _, spec := range specs {
		leg := models.Leg{
			Kind:     spec.kind,
			Action:   spec.action,
			Strike:   spec.strike,
			Quantity: qty,
		}
		if err := leg.Validate(); err != nil {
			return nil, err
		}
		premium, err := pricing.Price(ctx.UnderlyingPrice, leg.Strike, years, ctx.RiskFreeRate, ctx.Volatility, leg.Kind)
		if err != nil {
			return nil, err
		}
		leg.Premium = premium
		legs = append(legs, leg)
	}

	return &models.Strategy{
		Name:        string(name),
		Description: descriptions[name],
		Symbol:      symbol,
		Legs:        legs,
		Context:     ctx,
	}, nil
}

// strike returns params[key] or def.
func (p Params) strike(key string, def float64) float64 {
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

func quantity(params Params) (int, error) {
	v, ok := params[ParamQuantity]
	if !ok {
		return 1, nil
	}
	if v < 1 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, apperrors.NewValidationError(ParamQuantity, v, "must be a whole number of contracts, at least 1")
	}
	return int(v), nil
}
