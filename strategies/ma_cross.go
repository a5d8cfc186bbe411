package strategies

import (
	"fmt"
	"math"
	"strconv"

	"github.com/rustyeddy/tradebot/indicators"
	"github.com/rustyeddy/tradebot/market"
)

// MACrossover trades simple moving average crossovers.
//   - Buy on the bar the short SMA moves above the long SMA
//   - Sell on the bar it stops being above (falls to or below the long SMA)
//
// Signals alternate, and a sustained crossed state does not repeat them.
type MACrossover struct {
	ShortWindow int // 20
	LongWindow  int // 50
}

func NewMACrossover(short, long int) (*MACrossover, error) {
	if short <= 0 || long <= 0 {
		return nil, fmt.Errorf("ma-cross: windows must be positive, got %d/%d", short, long)
	}
	if short >= long {
		return nil, fmt.Errorf("ma-cross: short window %d must be less than long window %d", short, long)
	}
	return &MACrossover{ShortWindow: short, LongWindow: long}, nil
}

func (s *MACrossover) Name() string { return "Moving Average Crossover" }

func (s *MACrossover) Parameters() []Param {
	return []Param{
		{Name: "short_window", Value: strconv.Itoa(s.ShortWindow)},
		{Name: "long_window", Value: strconv.Itoa(s.LongWindow)},
	}
}

func (s *MACrossover) GenerateSignals(series market.Series) ([]Signal, error) {
	closes := series.Closes()

	short, err := indicators.SMA(closes, s.ShortWindow)
	if err != nil {
		return nil, err
	}
	long, err := indicators.SMA(closes, s.LongWindow)
	if err != nil {
		return nil, err
	}

	signals := holds(len(closes))

	// Bars without both averages carry no signal.
	wasAbove := false
	for i := range closes {
		if math.IsNaN(short[i]) || math.IsNaN(long[i]) {
			continue
		}
		above := short[i] > long[i]

		switch {
		case above && !wasAbove:
			signals[i] = Buy
		case !above && wasAbove:
			signals[i] = Sell
		}

		wasAbove = above
	}
	return signals, nil
}
