// Package performance computes return and risk statistics from a finished
// run's equity curve and trade log.
//
// Ratios that are undefined (zero standard deviation, zero drawdown, no
// elapsed days, no paired trades) are reported as 0.
package performance

import (
	"math"

	"github.com/rustyeddy/tradebot/indicators"
	"github.com/rustyeddy/tradebot/portfolio"
)

// Metrics is the full performance report of a run. Percent-valued fields
// are in percent (12.5 means 12.5%).
type Metrics struct {
	TotalReturn      float64
	AnnualizedReturn float64
	Volatility       float64
	Sharpe           float64
	Sortino          float64
	MaxDrawdown      float64 // <= 0
	Calmar           float64

	TotalTrades   int // round trips, min(buys, sells)
	WinningTrades int
	LosingTrades  int
	WinRate       float64
	AvgWin        float64
	AvgLoss       float64 // <= 0
	ProfitFactor  float64

	FinalValue float64
}

// Compute derives Metrics from the equity curve, trade log and starting
// capital. An empty curve yields the zero Metrics.
func Compute(equity []portfolio.EquityPoint, trades []portfolio.Trade, initial float64) Metrics {
	if len(equity) == 0 {
		return Metrics{}
	}

	values := make([]float64, len(equity))
	for i, pt := range equity {
		values[i] = pt.TotalValue
	}

	var m Metrics
	m.FinalValue = values[len(values)-1]
	if initial > 0 {
		m.TotalReturn = (m.FinalValue/initial - 1) * 100
		days := float64(len(values))
		m.AnnualizedReturn = orZero((math.Pow(m.FinalValue/initial, TradingDaysPerYear/days) - 1) * 100)
	}

	rets := Returns(values)
	mean := indicators.Mean(rets)
	std := indicators.StdDev(rets)
	annual := math.Sqrt(TradingDaysPerYear)

	m.Volatility = orZero(std * annual * 100)
	if std > 0 {
		m.Sharpe = orZero(mean / std * annual)
	}
	if down := indicators.StdDev(negatives(rets)); down > 0 {
		m.Sortino = orZero(mean / down * annual)
	}

	m.MaxDrawdown = orZero(minSkipNaN(Drawdowns(rets)) * 100)
	if m.MaxDrawdown != 0 {
		m.Calmar = math.Abs(m.AnnualizedReturn / m.MaxDrawdown)
	}

	pnl := RoundTrips(trades)
	m.TotalTrades = len(pnl)
	var wins, losses []float64
	for _, p := range pnl {
		if p > 0 {
			wins = append(wins, p)
		} else {
			m.LosingTrades++
			if p < 0 {
				losses = append(losses, p)
			}
		}
	}
	m.WinningTrades = len(wins)
	if m.TotalTrades > 0 {
		m.WinRate = float64(m.WinningTrades) / float64(m.TotalTrades) * 100
		m.AvgWin = orZero(indicators.Mean(wins))
		m.AvgLoss = orZero(indicators.Mean(losses))
		if m.AvgLoss != 0 {
			m.ProfitFactor = math.Abs(m.AvgWin / m.AvgLoss)
		}
	}

	return m
}

// RoundTrips pairs the i-th buy with the i-th sell in log order and returns
// each pair's profit after commissions. Unpaired trades are ignored.
func RoundTrips(trades []portfolio.Trade) []float64 {
	var buys, sells []portfolio.Trade
	for _, t := range trades {
		switch t.Action {
		case portfolio.ActionBuy:
			buys = append(buys, t)
		case portfolio.ActionSell:
			sells = append(sells, t)
		}
	}

	n := min(len(buys), len(sells))
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		cost := buys[i].Gross() + buys[i].Commission
		proceeds := sells[i].Gross() - sells[i].Commission
		out[i] = proceeds - cost
	}
	return out
}
