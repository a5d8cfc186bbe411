package indicators

import (
	"fmt"
	"math"
)

// ATR calculates the Average True Range as the rolling mean of true ranges.
// The first bar has no previous close, so its true range is high-low.
func ATR(high, low, close []float64, period int) ([]float64, error) {
	if err := checkPeriod("atr", period); err != nil {
		return nil, err
	}
	if err := sameLen(high, low, close); err != nil {
		return nil, err
	}

	tr := make([]float64, len(close))
	for i := range close {
		if i == 0 {
			tr[i] = high[i] - low[i]
			continue
		}
		tr[i] = trueRange(high[i], low[i], close[i-1])
	}
	return rolling(tr, period, Mean), nil
}

// trueRange calculates the True Range for a bar given the previous close
func trueRange(high, low, prevClose float64) float64 {
	highLow := high - low
	highClose := math.Abs(high - prevClose)
	lowClose := math.Abs(low - prevClose)

	return math.Max(highLow, math.Max(highClose, lowClose))
}

func sameLen(high, low, close []float64) error {
	if len(high) != len(close) || len(low) != len(close) {
		return fmt.Errorf("indicators: high/low/close lengths differ (%d/%d/%d)", len(high), len(low), len(close))
	}
	return nil
}
