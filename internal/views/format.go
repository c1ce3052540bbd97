package views

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// MillionThreshold is the default point at which counters switch to millions
const MillionThreshold = 1_000_000

// FormatMagnitude renders n in millions with one decimal when n >= threshold
// and as a grouped integer otherwise.
func FormatMagnitude(n, threshold int64) string {
	if n >= threshold && n > 0 {
		return fmt.Sprintf("%.1fM", float64(n)/1e6)
	}
	return humanize.Comma(n)
}

// FormatCount renders a counter with the default million threshold
func FormatCount(n int64) string {
	return FormatMagnitude(n, MillionThreshold)
}

// FormatBytes renders a byte counter in SI units
func FormatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

// FormatPercent renders a percentage with one decimal
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

func formatLength(n int64) string {
	return humanize.Comma(n) + "B"
}
