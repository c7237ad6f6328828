package models

// AnalysisRequest is the input contract for a strategy analysis. Pointer
// fields are optional and fall back to configured defaults.
type AnalysisRequest struct {
	UnderlyingSymbol string             `json:"underlying_symbol" yaml:"underlying_symbol"`
	UnderlyingPrice  float64            `json:"underlying_price" yaml:"underlying_price"`
	RiskFreeRate     *float64           `json:"risk_free_rate,omitempty" yaml:"risk_free_rate,omitempty"`
	Volatility       *float64           `json:"volatility,omitempty" yaml:"volatility,omitempty"`
	DaysToExpiry     *int               `json:"days_to_expiry,omitempty" yaml:"days_to_expiry,omitempty"`
	StrategyName     string             `json:"strategy_name" yaml:"strategy_name"`
	Parameters       map[string]float64 `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

// Context resolves the request into a StrategyContext, taking unset fields
// from defaults. UnderlyingPrice always comes from the request.
func (r *AnalysisRequest) Context(defaults StrategyContext) StrategyContext {
	ctx := StrategyContext{
		UnderlyingPrice: r.UnderlyingPrice,
		RiskFreeRate:    defaults.RiskFreeRate,
		Volatility:      defaults.Volatility,
		DaysToExpiry:    defaults.DaysToExpiry,
	}
	if r.RiskFreeRate != nil {
		ctx.RiskFreeRate = *r.RiskFreeRate
	}
	if r.Volatility != nil {
		ctx.Volatility = *r.Volatility
	}
	if r.DaysToExpiry != nil {
		ctx.DaysToExpiry = *r.DaysToExpiry
	}
	return ctx
}

// AnalysisResult pairs a built strategy with its analysis.
type AnalysisResult struct {
	ID       string            `json:"id,omitempty" yaml:"id,omitempty"`
	Strategy *Strategy         `json:"strategy" yaml:"strategy"`
	Analysis *StrategyAnalysis `json:"analysis" yaml:"analysis"`
}

// CompareRequest analyzes several strategies against one market context.
// An empty Strategies list means every supported strategy.
type CompareRequest struct {
	AnalysisRequest `yaml:",inline"`
	Strategies      []string `json:"strategies,omitempty" yaml:"strategies,omitempty"`
}

// PriceRequest values a single contract.
type PriceRequest struct {
	Type         string   `json:"type" yaml:"type"`
	Spot         float64  `json:"spot" yaml:"spot"`
	Strike       float64  `json:"strike" yaml:"strike"`
	DaysToExpiry *int     `json:"days_to_expiry,omitempty" yaml:"days_to_expiry,omitempty"`
	RiskFreeRate *float64 `json:"risk_free_rate,omitempty" yaml:"risk_free_rate,omitempty"`
	Volatility   *float64 `json:"volatility,omitempty" yaml:"volatility,omitempty"`
}

// PriceQuote is the valuation of a single contract with the inputs used.
type PriceQuote struct {
	Type         OptionKind `json:"type" yaml:"type"`
	Spot         float64    `json:"spot" yaml:"spot"`
	Strike       float64    `json:"strike" yaml:"strike"`
	DaysToExpiry int        `json:"days_to_expiry" yaml:"days_to_expiry"`
	RiskFreeRate float64    `json:"risk_free_rate" yaml:"risk_free_rate"`
	Volatility   float64    `json:"volatility" yaml:"volatility"`
	Price        float64    `json:"price" yaml:"price"`
	Greeks       Greeks     `json:"greeks" yaml:"greeks"`
}
