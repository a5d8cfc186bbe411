package backtest

import (
	"time"

	"github.com/rustyeddy/tradebot/performance"
	"github.com/rustyeddy/tradebot/portfolio"
	"github.com/rustyeddy/tradebot/strategies"
)

// Result is the summary of one strategy run on one symbol.
type Result struct {
	Strategy   string // strategies.Describe output
	Parameters []strategies.Param
	Symbol     string
	Start      time.Time
	End        time.Time

	InitialCapital float64
	BuyHoldReturn  float64 // percent, first to last close

	performance.Metrics

	Rejected    int // orders refused by the executor
	EquityCurve []portfolio.EquityPoint
	Trades      []portfolio.Trade
}

// TradeCount is the number of executions, buys and sells counted apart.
func (r Result) TradeCount() int {
	return len(r.Trades)
}

func buyHoldReturn(first, last float64) float64 {
	if first == 0 {
		return 0
	}
	return (last/first - 1) * 100
}
