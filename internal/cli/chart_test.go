package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"options-lab/internal/analyzer"
)

func TestRenderPayoff_Shape(t *testing.T) {
	prices := analyzer.PriceGrid(100)
	pnl := make([]float64, len(prices))
	for i, p := range prices {
		pnl[i] = (p - 100) * 100
	}

	lines := RenderPayoff(prices, pnl, 100, 40, 9)
	require.Len(t, lines, 11)

	for _, line := range lines[:9] {
		assert.Contains(t, line, "│")
	}
	assert.Contains(t, lines[9], "└")
	assert.Contains(t, lines[10], "50.00")
	assert.Contains(t, lines[10], "100.00")
	assert.Contains(t, lines[10], "150.00")

	// Rising line: first column bottom row, last column top row.
	assert.True(t, strings.HasSuffix(lines[0], "*"))
	assert.Contains(t, lines[8], "│*")
	assert.Contains(t, lines[4], "─")
}

func TestRenderPayoff_FlatAndInvalid(t *testing.T) {
	prices := analyzer.PriceGrid(50)
	flat := make([]float64, len(prices))

	lines := RenderPayoff(prices, flat, 50, 20, 5)
	require.Len(t, lines, 7)

	assert.Nil(t, RenderPayoff(nil, nil, 0, 10, 5))
	assert.Nil(t, RenderPayoff(prices, flat[:10], 50, 10, 5))
}
