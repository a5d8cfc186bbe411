package strategies

import (
	"fmt"
	"math"
	"strconv"

	"github.com/rustyeddy/tradebot/indicators"
	"github.com/rustyeddy/tradebot/market"
)

// RSIThreshold buys when RSI drops below Oversold while flat and sells when
// it rises above Overbought while in position.
type RSIThreshold struct {
	Period     int     // 14
	Oversold   float64 // 30
	Overbought float64 // 70
}

func NewRSIThreshold(period int, oversold, overbought float64) (*RSIThreshold, error) {
	if period <= 0 {
		return nil, fmt.Errorf("rsi: period must be positive, got %d", period)
	}
	if oversold >= overbought {
		return nil, fmt.Errorf("rsi: oversold %v must be less than overbought %v", oversold, overbought)
	}
	return &RSIThreshold{Period: period, Oversold: oversold, Overbought: overbought}, nil
}

func (s *RSIThreshold) Name() string { return "RSI Strategy" }

func (s *RSIThreshold) Parameters() []Param {
	return []Param{
		{Name: "period", Value: strconv.Itoa(s.Period)},
		{Name: "oversold", Value: formatFloat(s.Oversold)},
		{Name: "overbought", Value: formatFloat(s.Overbought)},
	}
}

func (s *RSIThreshold) GenerateSignals(series market.Series) ([]Signal, error) {
	rsi, err := indicators.RSI(series.Closes(), s.Period)
	if err != nil {
		return nil, err
	}

	signals := holds(len(rsi))
	pos := flat
	for i, v := range rsi {
		if math.IsNaN(v) {
			continue
		}
		switch {
		case pos == flat && v < s.Oversold:
			signals[i] = Buy
			pos = holding
		case pos == holding && v > s.Overbought:
			signals[i] = Sell
			pos = flat
		}
	}
	return signals, nil
}

// position is the flat/in-position state of the threshold strategies.
type position bool

const (
	flat    position = false
	holding position = true
)

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
