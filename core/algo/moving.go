// Package algo has the pure statistics behind the period summary and KPI cards.
package algo

// MovingAverage returns the trailing mean of values over the given window.
// Leading positions with fewer than window values average what is available,
// so the output has the same length and no gaps. A window below 1 is treated as 1.
func MovingAverage(values []float64, window int) []float64 {
	window = max(window, 1)
	out := make([]float64, len(values))
	sum := 0.0
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		out[i] = sum / float64(min(i+1, window))
	}
	return out
}
