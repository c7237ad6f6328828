package cli

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
)

var groupedPattern = regexp.MustCompile(`^\d{1,3}(,\d{3})*$`)

// For any amount, FormatCurrency should:
// 1. Start with $ (or -$ for negative amounts that do not round to zero)
// 2. Have exactly 2 decimal places
// 3. Group the integer part in threes
// 4. Preserve the numeric value when parsed back
func TestProperty_CurrencyFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("FormatCurrency produces grouped dollar amounts", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatCurrency(amount)

			body := strings.TrimPrefix(formatted, "-")
			if !strings.HasPrefix(body, "$") {
				t.Logf("Expected $ prefix for %f, got %s", amount, formatted)
				return false
			}
			if strings.HasPrefix(formatted, "-") && math.Round(amount*100) == 0 {
				t.Logf("Negative zero for %f: %s", amount, formatted)
				return false
			}

			parts := strings.Split(strings.TrimPrefix(body, "$"), ".")
			if len(parts) != 2 || len(parts[1]) != 2 {
				t.Logf("Expected 2 decimal places for %f, got %s", amount, formatted)
				return false
			}
			if !groupedPattern.MatchString(parts[0]) {
				t.Logf("Invalid grouping for %f: %s", amount, formatted)
				return false
			}
			return true
		},
		gen.Float64Range(-1e12, 1e12),
	))

	properties.Property("FormatCurrency preserves value", prop.ForAll(
		func(amount float64) bool {
			parsed := parseCurrency(FormatCurrency(amount))
			diff := math.Abs(parsed - math.Round(amount*100)/100)
			if diff > 0.01 {
				t.Logf("Value not preserved: original=%f, parsed=%f", amount, parsed)
				return false
			}
			return true
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.Property("FormatPnL signs positive amounts", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatPnL(amount)
			switch {
			case math.Round(amount*100) == 0:
				return formatted == "$0.00"
			case amount > 0:
				return strings.HasPrefix(formatted, "+$")
			default:
				return strings.HasPrefix(formatted, "-$")
			}
		},
		gen.Float64Range(-1e6, 1e6),
	))

	properties.TestingRun(t)
}

// parseCurrency parses a FormatCurrency string back to a float.
func parseCurrency(s string) float64 {
	s = strings.TrimPrefix(s, "+")
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	if negative {
		return -v
	}
	return v
}

func TestFormatCurrency_Examples(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{0, "$0.00"},
		{-0.004, "$0.00"},
		{12.346, "$12.35"},
		{999.99, "$999.99"},
		{1000, "$1,000.00"},
		{-1234567.891, "-$1,234,567.89"},
		{100000, "$100,000.00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatCurrency(tt.amount), "amount %v", tt.amount)
	}
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "25.00%", FormatPercent(0.25))
	assert.Equal(t, "57%", FormatProbability(0.57))
	assert.Equal(t, "none", FormatBreakevens(nil))
	assert.Equal(t, "240.00, 262.34", FormatBreakevens([]float64{240, 262.3412}))
	assert.Equal(t, "4.7594", FormatPrice(4.75942))
	assert.Equal(t, "450.00", FormatPrice(450))
	assert.Equal(t, "abc...", TruncateString("abcdefghij", 6))
	assert.Equal(t, "   42", PadLeft("42", 5))
}
