package indicators

import "fmt"

// MACDResult holds the three MACD lines.
type MACDResult struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// MACD calculates Moving Average Convergence Divergence: the fast EMA minus
// the slow EMA, its signal EMA and the difference of the two.
func MACD(x []float64, fast, slow, signal int) (MACDResult, error) {
	if fast >= slow {
		return MACDResult{}, fmt.Errorf("macd: fast period %d must be less than slow %d", fast, slow)
	}
	emaFast, err := EMA(x, fast)
	if err != nil {
		return MACDResult{}, err
	}
	emaSlow, err := EMA(x, slow)
	if err != nil {
		return MACDResult{}, err
	}

	line := make([]float64, len(x))
	for i := range x {
		line[i] = emaFast[i] - emaSlow[i]
	}

	sig, err := EMA(line, signal)
	if err != nil {
		return MACDResult{}, err
	}

	hist := make([]float64, len(x))
	for i := range x {
		hist[i] = line[i] - sig[i]
	}

	return MACDResult{MACD: line, Signal: sig, Histogram: hist}, nil
}
