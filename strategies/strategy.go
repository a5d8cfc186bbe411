package strategies

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/tradebot/config"
	"github.com/rustyeddy/tradebot/market"
)

// Strategy maps a price history to one Signal per bar.
//
// GenerateSignals must return a slice aligned with series.Bars and may only
// use bars up to and including the current index when deciding each signal.
// Any state it keeps lives for the duration of one call.
type Strategy interface {
	Name() string
	Parameters() []Param
	GenerateSignals(series market.Series) ([]Signal, error)
}

// Param is a named strategy parameter, already formatted for display.
type Param struct {
	Name  string
	Value string
}

// Describe renders a strategy as "Name(k=v, k=v)".
func Describe(s Strategy) string {
	params := s.Parameters()
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Name + "=" + p.Value
	}
	return fmt.Sprintf("%s(%s)", s.Name(), strings.Join(parts, ", "))
}

// Names lists the strategy keys accepted by ByName, in comparison order.
func Names() []string {
	return []string{"ma", "rsi", "momentum"}
}

// ByName builds the strategy for a command-line key using the configured
// parameters.
func ByName(name string, p config.StrategyParams) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "noop", "none":
		return NoopStrategy{}, nil

	case "ma", "moving-average", "sma-cross":
		return NewMACrossover(p.MovingAverage.ShortWindow, p.MovingAverage.LongWindow)

	case "rsi":
		return NewRSIThreshold(p.RSI.Period, p.RSI.Oversold, p.RSI.Overbought)

	case "momentum", "mom":
		return NewMomentum(p.Momentum.LookbackPeriod, p.Momentum.Threshold)

	default:
		return nil, fmt.Errorf("unknown strategy %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
}

// All builds every strategy listed by Names.
func All(p config.StrategyParams) ([]Strategy, error) {
	out := make([]Strategy, 0, len(Names()))
	for _, name := range Names() {
		s, err := ByName(name, p)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
