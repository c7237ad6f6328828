package pricing

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"options-lab/internal/models"
)

func newProperties() *gopter.Properties {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	return gopter.NewProperties(parameters)
}

// Property: call - put == spot - strike*exp(-rate*t) for any valid input with
// time and volatility remaining.
func TestProperty_PutCallParity(t *testing.T) {
	properties := newProperties()

	properties.Property("put-call parity holds", prop.ForAll(
		func(spot, strike, years, rate, vol float64) bool {
			call, err := Price(spot, strike, years, rate, vol, models.Call)
			if err != nil {
				t.Logf("call price failed: %v", err)
				return false
			}
			put, err := Price(spot, strike, years, rate, vol, models.Put)
			if err != nil {
				t.Logf("put price failed: %v", err)
				return false
			}

			want := spot - strike*math.Exp(-rate*years)
			if math.Abs((call-put)-want) > 1e-6 {
				t.Logf("parity broken: spot=%f strike=%f t=%f r=%f vol=%f call=%f put=%f want=%f",
					spot, strike, years, rate, vol, call, put, want)
				return false
			}
			return true
		},
		gen.Float64Range(10, 1000),
		gen.Float64Range(10, 1000),
		gen.Float64Range(1.0/365, 2),
		gen.Float64Range(0, 0.1),
		gen.Float64Range(0.05, 1.5),
	))

	properties.TestingRun(t)
}

// Property: call delta in [0,1], put delta in [-1,0], gamma and vega
// non-negative.
func TestProperty_GreekSigns(t *testing.T) {
	properties := newProperties()

	properties.Property("greek signs are bounded", prop.ForAll(
		func(spot, strike, days, rate, vol float64) bool {
			years := days / 365
			call, err := Greeks(spot, strike, years, rate, vol, models.Call)
			if err != nil {
				return false
			}
			put, err := Greeks(spot, strike, years, rate, vol, models.Put)
			if err != nil {
				return false
			}

			if call.Delta < 0 || call.Delta > 1 {
				t.Logf("call delta out of range: %f", call.Delta)
				return false
			}
			if put.Delta < -1 || put.Delta > 0 {
				t.Logf("put delta out of range: %f", put.Delta)
				return false
			}
			for _, g := range []models.Greeks{call, put} {
				if g.Gamma < 0 || g.Vega < 0 {
					t.Logf("negative gamma/vega: %+v", g)
					return false
				}
			}
			return true
		},
		gen.Float64Range(1, 2000),
		gen.Float64Range(1, 2000),
		gen.Float64Range(0, 730),
		gen.Float64Range(-0.01, 0.15),
		gen.Float64Range(0.01, 2),
	))

	properties.TestingRun(t)
}

// Property: call value is non-decreasing and put value non-increasing in spot.
func TestProperty_MonotonicInSpot(t *testing.T) {
	properties := newProperties()

	properties.Property("price is monotonic in spot", prop.ForAll(
		func(spot, bump, strike, years, vol float64) bool {
			const rate = 0.05
			lowCall, _ := Price(spot, strike, years, rate, vol, models.Call)
			highCall, _ := Price(spot+bump, strike, years, rate, vol, models.Call)
			lowPut, _ := Price(spot, strike, years, rate, vol, models.Put)
			highPut, _ := Price(spot+bump, strike, years, rate, vol, models.Put)

			if highCall < lowCall-1e-9 {
				t.Logf("call decreased: %f -> %f", lowCall, highCall)
				return false
			}
			if highPut > lowPut+1e-9 {
				t.Logf("put increased: %f -> %f", lowPut, highPut)
				return false
			}
			return true
		},
		gen.Float64Range(1, 1000),
		gen.Float64Range(0.01, 100),
		gen.Float64Range(1, 1000),
		gen.Float64Range(0, 2),
		gen.Float64Range(0.01, 1.5),
	))

	properties.TestingRun(t)
}

// Property: every price is finite and non-negative.
func TestProperty_PriceFiniteNonNegative(t *testing.T) {
	properties := newProperties()

	properties.Property("price is finite and non-negative", prop.ForAll(
		func(spot, strike, years, vol float64, isCall bool) bool {
			kind := models.Put
			if isCall {
				kind = models.Call
			}
			p, err := Price(spot, strike, years, 0.05, vol, kind)
			if err != nil {
				return false
			}
			return p >= 0 && !math.IsNaN(p) && !math.IsInf(p, 0)
		},
		gen.Float64Range(0.01, 10000),
		gen.Float64Range(0.01, 10000),
		gen.Float64Range(0, 5),
		gen.Float64Range(0.001, 3),
		gen.Bool(),
	))

	properties.TestingRun(t)
}
