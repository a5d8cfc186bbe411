package indicators

import "math"

// SMA calculates the Simple Moving Average over a trailing window.
func SMA(x []float64, period int) ([]float64, error) {
	if err := checkPeriod("sma", period); err != nil {
		return nil, err
	}
	return rolling(x, period, Mean), nil
}

// EMA calculates the Exponential Moving Average with span period
// (multiplier 2/(period+1)), seeded with the first value so it is defined
// from index 0.
func EMA(x []float64, period int) ([]float64, error) {
	if err := checkPeriod("ema", period); err != nil {
		return nil, err
	}

	multiplier := 2.0 / float64(period+1)
	out := nans(len(x))
	ema := math.NaN()
	for i, v := range x {
		switch {
		case math.IsNaN(v):
		case math.IsNaN(ema):
			ema = v
		default:
			ema = (v-ema)*multiplier + ema
		}
		out[i] = ema
	}
	return out, nil
}
