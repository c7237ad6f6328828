package analyzer

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"options-lab/internal/models"
	"options-lab/internal/strategy"
)

// Property: every analysis has a 100-point ascending grid spanning
// [0.5*spot, 1.5*spot] with a P&L value per point, breakevens in ascending
// order inside the grid, and a probability of profit in [0,1].
func TestProperty_AnalysisShape(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	names := strategy.SupportedNames()

	properties.Property("analysis is well formed", prop.ForAll(
		func(nameIdx int, spot, vol float64, days int) bool {
			ctx := models.StrategyContext{
				UnderlyingPrice: spot,
				RiskFreeRate:    0.05,
				Volatility:      vol,
				DaysToExpiry:    days,
			}
			s, err := strategy.BuildByName(names[nameIdx%len(names)], "TEST", ctx, nil)
			if err != nil {
				t.Logf("build failed: %v", err)
				return false
			}
			a, err := Analyze(s)
			if err != nil {
				t.Logf("analyze failed: %v", err)
				return false
			}

			if len(a.PriceGrid) != GridPoints || len(a.PnLGrid) != GridPoints {
				return false
			}
			if a.PriceGrid[0] != 0.5*spot || a.PriceGrid[GridPoints-1] != 1.5*spot {
				t.Logf("grid endpoints %f..%f for spot %f", a.PriceGrid[0], a.PriceGrid[GridPoints-1], spot)
				return false
			}
			for i := 1; i < GridPoints; i++ {
				if !(a.PriceGrid[i] > a.PriceGrid[i-1]) {
					return false
				}
			}
			for _, v := range a.PnLGrid {
				if math.IsNaN(v) || math.IsInf(v, 0) || v > a.MaxProfit || v < a.MaxLoss {
					return false
				}
			}
			for i, be := range a.BreakevenPoints {
				if be < a.PriceGrid[0] || be > a.PriceGrid[GridPoints-1] {
					return false
				}
				if i > 0 && be < a.BreakevenPoints[i-1] {
					return false
				}
			}
			return a.ProbabilityOfProfit >= 0 && a.ProbabilityOfProfit <= 1
		},
		gen.IntRange(0, 7),
		gen.Float64Range(50, 2000),
		gen.Float64Range(0.05, 1.2),
		gen.IntRange(0, 365),
	))

	properties.TestingRun(t)
}
