package performance

import "math"

// TradingDaysPerYear annualizes daily statistics.
const TradingDaysPerYear = 252

// Returns is the step-over-step fractional change of values. The first
// element has no predecessor and is NaN, as is any step from a zero value.
func Returns(values []float64) []float64 {
	out := make([]float64, len(values))
	for i := range values {
		if i == 0 || values[i-1] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = values[i]/values[i-1] - 1
	}
	return out
}

// Drawdowns computes (cum - runningMax) / runningMax over the compounded
// returns. NaN returns are skipped and keep their NaN slot.
func Drawdowns(returns []float64) []float64 {
	out := make([]float64, len(returns))
	cum := 1.0
	peak := math.Inf(-1)
	for i, r := range returns {
		if math.IsNaN(r) {
			out[i] = math.NaN()
			continue
		}
		cum *= 1 + r
		if cum > peak {
			peak = cum
		}
		out[i] = (cum - peak) / peak
	}
	return out
}

// minSkipNaN returns the smallest non-NaN value, or NaN if there is none.
func minSkipNaN(x []float64) float64 {
	m := math.NaN()
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(m) || v < m {
			m = v
		}
	}
	return m
}

// negatives keeps the strictly negative values of x.
func negatives(x []float64) []float64 {
	var out []float64
	for _, v := range x {
		if v < 0 {
			out = append(out, v)
		}
	}
	return out
}

// orZero maps undefined results to 0.
func orZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
