package indicators

import "math"

// Momentum calculates the percentage rate of change over period bars:
// (x[i] - x[i-period]) / x[i-period] * 100.
func Momentum(x []float64, period int) ([]float64, error) {
	if err := checkPeriod("momentum", period); err != nil {
		return nil, err
	}

	out := nans(len(x))
	for i := period; i < len(x); i++ {
		prev := x[i-period]
		if prev == 0 || math.IsNaN(prev) || math.IsNaN(x[i]) {
			continue
		}
		out[i] = (x[i] - prev) / prev * 100
	}
	return out, nil
}
