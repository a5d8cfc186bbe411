package indicators

import "math"

// Stochastic calculates the %K and %D lines of the stochastic oscillator.
// %K is undefined when the window's high equals its low.
func Stochastic(high, low, close []float64, kPeriod, dPeriod int) (k, d []float64, err error) {
	if err := checkPeriod("stochastic %K", kPeriod); err != nil {
		return nil, nil, err
	}
	if err := checkPeriod("stochastic %D", dPeriod); err != nil {
		return nil, nil, err
	}
	if err := sameLen(high, low, close); err != nil {
		return nil, nil, err
	}

	lowest := rolling(low, kPeriod, func(w []float64) float64 {
		m := w[0]
		for _, v := range w[1:] {
			m = math.Min(m, v)
		}
		return m
	})
	highest := rolling(high, kPeriod, func(w []float64) float64 {
		m := w[0]
		for _, v := range w[1:] {
			m = math.Max(m, v)
		}
		return m
	})

	k = nans(len(close))
	for i := range close {
		rng := highest[i] - lowest[i]
		if math.IsNaN(rng) || rng == 0 {
			continue
		}
		k[i] = 100 * (close[i] - lowest[i]) / rng
	}
	d = rolling(k, dPeriod, Mean)
	return k, d, nil
}
