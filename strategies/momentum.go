package strategies

import (
	"fmt"
	"math"
	"strconv"

	"github.com/rustyeddy/tradebot/indicators"
	"github.com/rustyeddy/tradebot/market"
)

// Momentum trades the percentage rate of change over LookbackPeriod bars.
//   - Buy when momentum exceeds +threshold while flat
//   - Sell when momentum falls below -threshold, or below half the
//     threshold, while in position
//
// The half-threshold exit also fires on weak positive momentum.
type Momentum struct {
	LookbackPeriod int     // 20
	Threshold      float64 // 0.02 = 2%
}

func NewMomentum(lookback int, threshold float64) (*Momentum, error) {
	if lookback <= 0 {
		return nil, fmt.Errorf("momentum: lookback must be positive, got %d", lookback)
	}
	if threshold <= 0 {
		return nil, fmt.Errorf("momentum: threshold must be positive, got %v", threshold)
	}
	return &Momentum{LookbackPeriod: lookback, Threshold: threshold}, nil
}

func (s *Momentum) Name() string { return "Momentum Strategy" }

func (s *Momentum) Parameters() []Param {
	return []Param{
		{Name: "lookback_period", Value: strconv.Itoa(s.LookbackPeriod)},
		{Name: "threshold", Value: formatFloat(s.thresholdPct()) + "%"},
	}
}

// thresholdPct is the threshold in the percent units of indicators.Momentum.
func (s *Momentum) thresholdPct() float64 {
	return s.Threshold * 100
}

func (s *Momentum) GenerateSignals(series market.Series) ([]Signal, error) {
	mom, err := indicators.Momentum(series.Closes(), s.LookbackPeriod)
	if err != nil {
		return nil, err
	}

	th := s.thresholdPct()
	signals := holds(len(mom))
	pos := flat
	for i, v := range mom {
		if math.IsNaN(v) {
			continue
		}
		switch {
		case pos == flat && v > th:
			signals[i] = Buy
			pos = holding
		case pos == holding && (v < -th || v < th/2):
			signals[i] = Sell
			pos = flat
		}
	}
	return signals, nil
}
