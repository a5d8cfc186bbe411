package strategies

import "github.com/rustyeddy/tradebot/market"

// NoopStrategy holds on every bar. It is the baseline for engine tests:
// the equity curve stays flat at the initial capital.
type NoopStrategy struct{}

func (NoopStrategy) Name() string { return "Noop" }

func (NoopStrategy) Parameters() []Param { return nil }

func (NoopStrategy) GenerateSignals(series market.Series) ([]Signal, error) {
	return holds(series.Len()), nil
}
