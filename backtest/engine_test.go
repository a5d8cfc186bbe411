package backtest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradebot/config"
	"github.com/rustyeddy/tradebot/market"
	"github.com/rustyeddy/tradebot/market/data"
	"github.com/rustyeddy/tradebot/portfolio"
	"github.com/rustyeddy/tradebot/strategies"
)

var day0 = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

func testSeries(symbol string, closes ...float64) market.Series {
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{Time: day0.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c, Volume: 1000}
	}
	return market.NewSeries(symbol, bars)
}

// scripted replays a fixed signal sequence.
type scripted struct {
	signals []strategies.Signal
}

func (s scripted) Name() string                   { return "Scripted" }
func (s scripted) Parameters() []strategies.Param { return nil }
func (s scripted) GenerateSignals(series market.Series) ([]strategies.Signal, error) {
	out := make([]strategies.Signal, series.Len())
	copy(out, s.signals)
	return out, nil
}

type staticProvider struct {
	series map[string]market.Series
	err    error
}

func (p staticProvider) Bars(ctx context.Context, symbol string, start, end time.Time) (market.Series, error) {
	if p.err != nil {
		return market.Series{}, p.err
	}
	s, ok := p.series[symbol]
	if !ok {
		return market.Series{}, data.ErrDataUnavailable
	}
	return s, nil
}

func newEngine(t *testing.T, s strategies.Strategy) *Engine {
	t.Helper()
	e, err := NewEngine(s, config.DefaultTrading(), nil)
	require.NoError(t, err)
	return e
}

func TestSingleBuyThenForcedLiquidation(t *testing.T) {
	t.Parallel()

	e := newEngine(t, scripted{signals: []strategies.Signal{strategies.Buy}})
	res, err := e.Run(testSeries("AAPL", 100, 105, 110))
	require.NoError(t, err)

	require.Len(t, res.Trades, 2)
	buy, sell := res.Trades[0], res.Trades[1]
	assert.Equal(t, portfolio.ActionBuy, buy.Action)
	assert.Equal(t, portfolio.ActionSell, sell.Action)

	// 10% of 100000 at 100.05 plus commission floors to 99 shares.
	assert.Equal(t, 99, buy.Shares)
	assert.Equal(t, 99, sell.Shares)
	assert.Equal(t, day0.AddDate(0, 0, 2), sell.Date)

	shares := 99.0
	wantCash := 100000 - shares*100.05*1.001 + shares*109.945*0.999
	final := res.EquityCurve[len(res.EquityCurve)-1]
	assert.InDelta(t, wantCash, final.Cash, 1e-6)
	assert.Equal(t, 0.0, final.PositionsValue)
	assert.InDelta(t, wantCash, res.FinalValue, 1e-6)
	assert.InDelta(t, (wantCash/100000-1)*100, res.TotalReturn, 1e-9)

	assert.Equal(t, 1, res.TotalTrades)
	assert.Equal(t, 100.0, res.WinRate)
	assert.InDelta(t, 10, res.BuyHoldReturn, 1e-9)
	assert.Equal(t, "Scripted()", res.Strategy)
}

func TestEquityRecordedEveryBar(t *testing.T) {
	t.Parallel()

	e := newEngine(t, scripted{signals: []strategies.Signal{
		strategies.Hold, strategies.Buy, strategies.Hold, strategies.Sell, strategies.Buy,
	}})
	series := testSeries("AAPL", 100, 101, 103, 99, 98, 102)
	res, err := e.Run(series)
	require.NoError(t, err)

	require.Len(t, res.EquityCurve, series.Len())
	for i, pt := range res.EquityCurve {
		assert.Equal(t, series.Bars[i].Time, pt.Date)
		assert.Equal(t, pt.Cash+pt.PositionsValue, pt.TotalValue)
		assert.GreaterOrEqual(t, pt.Cash, 0.0)
	}

	cash := res.InitialCapital
	for _, tr := range res.Trades {
		cash += tr.Total
	}
	assert.InDelta(t, res.EquityCurve[len(res.EquityCurve)-1].Cash, cash, 1e-9)
	assert.Len(t, res.Trades, 4)
}

func TestSellWithoutPositionIsNoop(t *testing.T) {
	t.Parallel()

	e := newEngine(t, scripted{signals: []strategies.Signal{strategies.Sell, strategies.Sell}})
	res, err := e.Run(testSeries("AAPL", 100, 101, 102))
	require.NoError(t, err)
	assert.Empty(t, res.Trades)
	assert.Equal(t, 0, res.Rejected)
	assert.Equal(t, 100000.0, res.FinalValue)
}

func TestRepeatedBuysAreCappedByPositionLimit(t *testing.T) {
	t.Parallel()

	signals := make([]strategies.Signal, 6)
	for i := range signals {
		signals[i] = strategies.Buy
	}
	e := newEngine(t, scripted{signals: signals})
	res, err := e.Run(testSeries("AAPL", 100, 100, 100, 100, 100, 100, 100))
	require.NoError(t, err)

	// One buy adds ~10% exposure, so only the first two fit under 20%.
	assert.Equal(t, 4, res.Rejected)
	for _, pt := range res.EquityCurve {
		assert.LessOrEqual(t, pt.PositionsValue, 0.2*pt.TotalValue+1)
	}
}

func TestNoopStrategyKeepsCapital(t *testing.T) {
	t.Parallel()

	e := newEngine(t, strategies.NoopStrategy{})
	res, err := e.Run(testSeries("AAPL", 100, 90, 120, 80))
	require.NoError(t, err)
	assert.Empty(t, res.Trades)
	assert.Equal(t, 100000.0, res.FinalValue)
	assert.Equal(t, 0.0, res.MaxDrawdown)
	assert.Equal(t, 0.0, res.Sharpe)
	assert.InDelta(t, -20, res.BuyHoldReturn, 1e-9)
}

func TestMACrossoverRun(t *testing.T) {
	t.Parallel()

	ma, err := strategies.NewMACrossover(2, 3)
	require.NoError(t, err)

	res, err := newEngine(t, ma).Run(testSeries("AAPL", 1, 2, 3, 4, 5, 4, 3, 2, 1))
	require.NoError(t, err)
	require.Len(t, res.Trades, 2)
	assert.Equal(t, day0.AddDate(0, 0, 2), res.Trades[0].Date)
	assert.Equal(t, day0.AddDate(0, 0, 6), res.Trades[1].Date)
	assert.Equal(t, 1, res.TotalTrades)
}

func TestRunIsDeterministic(t *testing.T) {
	t.Parallel()

	rsi, err := strategies.NewRSIThreshold(2, 30, 70)
	require.NoError(t, err)
	series := testSeries("AAPL", 10, 11, 12, 11, 10, 9, 10, 11, 12, 11, 10, 9, 10)

	e := newEngine(t, rsi)
	a, err := e.Run(series)
	require.NoError(t, err)
	b, err := e.Run(series)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.NotEmpty(t, a.Trades)
}

func TestRunSymbol(t *testing.T) {
	t.Parallel()

	p := staticProvider{series: map[string]market.Series{"AAPL": testSeries("AAPL", 100, 101)}}
	e := newEngine(t, strategies.NoopStrategy{})
	ctx := context.Background()

	res, err := e.RunSymbol(ctx, p, "AAPL", day0, day0.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, "AAPL", res.Symbol)
	assert.Len(t, res.EquityCurve, 2)

	_, err = e.RunSymbol(ctx, p, "MSFT", day0, day0.AddDate(0, 0, 1))
	require.ErrorIs(t, err, data.ErrDataUnavailable)
}

func TestEngineValidation(t *testing.T) {
	t.Parallel()

	_, err := NewEngine(nil, config.DefaultTrading(), nil)
	assert.ErrorContains(t, err, "Strategy is required")

	bad := config.DefaultTrading()
	bad.InitialCapital = 0
	_, err = NewEngine(strategies.NoopStrategy{}, bad, nil)
	assert.ErrorContains(t, err, "initial_capital")

	_, err = newEngine(t, strategies.NoopStrategy{}).Run(market.Series{Symbol: "X"})
	assert.ErrorIs(t, err, market.ErrEmptySeries)
}

func TestCompare(t *testing.T) {
	t.Parallel()

	p := staticProvider{series: map[string]market.Series{
		"AAPL": testSeries("AAPL", 1, 2, 3, 4, 5, 4, 3, 2, 1),
		"MSFT": testSeries("MSFT", 5, 4, 3, 2, 1, 2, 3, 4, 5),
	}}
	ma, err := strategies.NewMACrossover(2, 3)
	require.NoError(t, err)

	results, err := Compare(context.Background(), p,
		[]strategies.Strategy{strategies.NoopStrategy{}, ma},
		[]string{"AAPL", "GONE", "MSFT"},
		CompareOptions{Trading: config.DefaultTrading(), Parallelism: 2}, nil)
	require.NoError(t, err)
	require.Len(t, results, 4)

	var got []string
	for _, r := range results {
		got = append(got, r.Strategy+"/"+r.Symbol)
	}
	assert.Equal(t, []string{
		"Noop()/AAPL",
		"Noop()/MSFT",
		"Moving Average Crossover(short_window=2, long_window=3)/AAPL",
		"Moving Average Crossover(short_window=2, long_window=3)/MSFT",
	}, got)

	// each run is independent of the others
	single, err := newEngine(t, ma).Run(p.series["MSFT"])
	require.NoError(t, err)
	assert.Equal(t, single, results[3])
}

func TestCompareAbortsOnProviderError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	_, err := Compare(context.Background(), staticProvider{err: boom},
		[]strategies.Strategy{strategies.NoopStrategy{}}, []string{"AAPL"},
		CompareOptions{Trading: config.DefaultTrading()}, nil)
	require.ErrorIs(t, err, boom)
}
