package pricing

import (
	"math"

	"options-lab/internal/models"
)

// Greeks returns the Black-Scholes sensitivities of a European option.
// Theta is decay per calendar day, Vega per volatility point and Rho per 1%
// move in the rate. At expiry only Delta is non-zero.
func Greeks(spot, strike, t, rate, vol float64, kind models.OptionKind) (models.Greeks, error) {
	if err := validate("greeks", spot, strike, t, rate, vol, kind); err != nil {
		return models.Greeks{}, err
	}
	if t <= 0 {
		return expiryGreeks(spot, strike, kind), nil
	}
	if vol == 0 {
		return models.Greeks{}, degenerate("greeks", vol, t)
	}

	sqrtT := math.Sqrt(t)
	d1, d2 := d1d2(spot, strike, t, rate, vol)
	pdf := NormPDF(d1)
	discount := strike * math.Exp(-rate*t)

	g := models.Greeks{
		Gamma: pdf / (spot * vol * sqrtT),
		Vega:  spot * pdf * sqrtT / 100,
	}
	decay := -spot * pdf * vol / (2 * sqrtT)

	if kind == models.Call {
		g.Delta = NormCDF(d1)
		g.Theta = (decay - rate*discount*NormCDF(d2)) / DaysPerYear
		g.Rho = discount * t * NormCDF(d2) / 100
	} else {
		g.Delta = NormCDF(d1) - 1
		g.Theta = (decay + rate*discount*NormCDF(-d2)) / DaysPerYear
		g.Rho = -discount * t * NormCDF(-d2) / 100
	}
	return g, nil
}

// DaysPerYear scales continuous theta to per-day decay.
const DaysPerYear = models.DaysPerYear

func expiryGreeks(spot, strike float64, kind models.OptionKind) models.Greeks {
	var delta float64
	switch {
	case kind == models.Call && spot > strike:
		delta = 1
	case kind == models.Put && spot < strike:
		delta = -1
	}
	return models.Greeks{Delta: delta}
}

// NormCDF is the standard normal cumulative distribution function.
func NormCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// NormPDF is the standard normal probability density function.
func NormPDF(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}
