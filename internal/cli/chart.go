package cli

import (
	"fmt"
	"math"
	"strings"
)

const (
	chartPoint = '*'
	chartZero  = '─'
	chartSpot  = '┊'
)

// RenderPayoff draws pnl against prices as an ASCII chart of the given
// plot size. The zero line and the spot column are marked. Returns
// height plot rows followed by an axis row and a label row.
func RenderPayoff(prices, pnl []float64, spot float64, width, height int) []string {
	if len(prices) == 0 || len(prices) != len(pnl) {
		return nil
	}
	if width < 2 {
		width = 2
	}
	if height < 3 {
		height = 3
	}

	// Sample one value per column.
	values := make([]float64, width)
	for c := 0; c < width; c++ {
		values[c] = pnl[c*(len(pnl)-1)/(width-1)]
	}

	hi, lo := 0.0, 0.0
	for _, v := range values {
		hi = math.Max(hi, v)
		lo = math.Min(lo, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	row := func(v float64) int {
		return int(math.Round((hi - v) / (hi - lo) * float64(height-1)))
	}

	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", width))
	}

	zero := row(0)
	for c := range grid[zero] {
		grid[zero][c] = chartZero
	}

	low, high := prices[0], prices[len(prices)-1]
	if spot > low && spot < high {
		sc := int(math.Round((spot - low) / (high - low) * float64(width-1)))
		for r := range grid {
			if grid[r][sc] == ' ' {
				grid[r][sc] = chartSpot
			}
		}
	}

	for c, v := range values {
		grid[row(v)][c] = chartPoint
	}

	labels := make([]string, height)
	labels[0] = FormatPnL(hi)
	labels[zero] = "0"
	labels[height-1] = FormatPnL(lo)
	labelWidth := 0
	for _, l := range labels {
		labelWidth = max(labelWidth, len(l))
	}

	lines := make([]string, 0, height+2)
	for r := range grid {
		lines = append(lines, fmt.Sprintf("%s │%s", PadLeft(labels[r], labelWidth), string(grid[r])))
	}
	lines = append(lines, strings.Repeat(" ", labelWidth)+" └"+strings.Repeat("─", width))

	left := fmt.Sprintf("%.2f", low)
	mid := fmt.Sprintf("%.2f", spot)
	right := fmt.Sprintf("%.2f", high)
	gap := width - len(left) - len(mid) - len(right)
	axis := left + strings.Repeat(" ", max(gap/2, 1)) + mid + strings.Repeat(" ", max(gap-gap/2, 1)) + right
	lines = append(lines, strings.Repeat(" ", labelWidth+2)+axis)

	return lines
}
