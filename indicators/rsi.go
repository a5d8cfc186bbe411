package indicators

import "math"

// RSI calculates the Relative Strength Index from the rolling mean of gains
// and losses over period price changes. The first change is taken as zero,
// so the value is defined from index period-1.
//
// A window with no losses reads 100; a window with neither gains nor losses
// is undefined (NaN).
func RSI(x []float64, period int) ([]float64, error) {
	if err := checkPeriod("rsi", period); err != nil {
		return nil, err
	}

	gains := make([]float64, len(x))
	losses := make([]float64, len(x))
	for i := 1; i < len(x); i++ {
		d := x[i] - x[i-1]
		if d > 0 {
			gains[i] = d
		} else if d < 0 {
			losses[i] = -d
		}
	}

	avgGain := rolling(gains, period, Mean)
	avgLoss := rolling(losses, period, Mean)

	out := nans(len(x))
	for i := range x {
		g, l := avgGain[i], avgLoss[i]
		switch {
		case math.IsNaN(g) || math.IsNaN(l):
		case l == 0 && g == 0:
		case l == 0:
			out[i] = 100
		default:
			out[i] = 100 - 100/(1+g/l)
		}
	}
	return out, nil
}
