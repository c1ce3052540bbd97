package views

// ScaleRates divides every value by divisor into a new slice. A zero divisor
// returns an unscaled copy.
func ScaleRates(values []float64, divisor float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if divisor == 0 {
			out[i] = v
			continue
		}
		out[i] = v / divisor
	}
	return out
}

// KiloRates converts per-second counters to thousands per second
func KiloRates(values []float64) []float64 {
	return ScaleRates(values, 1000)
}
