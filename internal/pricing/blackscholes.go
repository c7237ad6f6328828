// Package pricing implements closed-form Black-Scholes valuation of European
// options and their Greeks.
//
// All functions are pure and safe for concurrent use.
package pricing

import (
	"fmt"
	"math"

	apperrors "options-lab/internal/errors"
	"options-lab/internal/models"
)

// Pricer prices single option contracts.
type Pricer interface {
	Price(spot, strike, t, rate, vol float64, kind models.OptionKind) (float64, error)
	Greeks(spot, strike, t, rate, vol float64, kind models.OptionKind) (models.Greeks, error)
}

// Kernel is the stateless Black-Scholes Pricer.
type Kernel struct{}

var _ Pricer = Kernel{}

// Price implements Pricer.
func (Kernel) Price(spot, strike, t, rate, vol float64, kind models.OptionKind) (float64, error) {
	return Price(spot, strike, t, rate, vol, kind)
}

// Greeks implements Pricer.
func (Kernel) Greeks(spot, strike, t, rate, vol float64, kind models.OptionKind) (models.Greeks, error) {
	return Greeks(spot, strike, t, rate, vol, kind)
}

// Price returns the Black-Scholes value of a European option. t is the time to
// expiry in years. At or past expiry the intrinsic value is returned.
func Price(spot, strike, t, rate, vol float64, kind models.OptionKind) (float64, error) {
	if err := validate("price", spot, strike, t, rate, vol, kind); err != nil {
		return 0, err
	}
	if t <= 0 {
		return Intrinsic(spot, strike, kind), nil
	}
	if vol == 0 {
		return 0, degenerate("price", vol, t)
	}

	d1, d2 := d1d2(spot, strike, t, rate, vol)
	discount := strike * math.Exp(-rate*t)

	var price float64
	if kind == models.Call {
		price = spot*NormCDF(d1) - discount*NormCDF(d2)
	} else {
		price = discount*NormCDF(-d2) - spot*NormCDF(-d1)
	}

	// Deep out-of-the-money contracts can round to a tiny negative number.
	if price < 0 {
		price = 0
	}
	return price, nil
}

// Intrinsic returns the exercise value of an option at spot.
func Intrinsic(spot, strike float64, kind models.OptionKind) float64 {
	if kind == models.Call {
		return math.Max(spot-strike, 0)
	}
	return math.Max(strike-spot, 0)
}

func d1d2(spot, strike, t, rate, vol float64) (float64, float64) {
	sqrtT := math.Sqrt(t)
	d1 := (math.Log(spot/strike) + (rate+0.5*vol*vol)*t) / (vol * sqrtT)
	return d1, d1 - vol*sqrtT
}

func validate(op string, spot, strike, t, rate, vol float64, kind models.OptionKind) error {
	var verr error
	switch {
	case !kind.Valid():
		verr = apperrors.NewValidationError("kind", kind, "must be CALL or PUT")
	case !(spot > 0) || math.IsInf(spot, 0):
		verr = apperrors.NewValidationError("spot", spot, "must be positive")
	case !(strike > 0) || math.IsInf(strike, 0):
		verr = apperrors.NewValidationError("strike", strike, "must be positive")
	case !(t >= 0) || math.IsInf(t, 0):
		verr = apperrors.NewValidationError("time_to_expiry", t, "must be non-negative")
	case !(vol >= 0) || math.IsInf(vol, 0):
		verr = apperrors.NewValidationError("volatility", vol, "must be non-negative")
	case math.IsNaN(rate) || math.IsInf(rate, 0):
		verr = apperrors.NewValidationError("risk_free_rate", rate, "must be finite")
	}
	if verr != nil {
		return apperrors.NewPricingError(op, "invalid input", verr)
	}
	return nil
}

func degenerate(op string, vol, t float64) error {
	reason := fmt.Sprintf("volatility %g with %.4f years to expiry", vol, t)
	return apperrors.NewPricingError(op, reason, apperrors.ErrDegenerateInput)
}
