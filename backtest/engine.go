package backtest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradebot/broker"
	"github.com/rustyeddy/tradebot/config"
	"github.com/rustyeddy/tradebot/internal/logger"
	"github.com/rustyeddy/tradebot/market"
	"github.com/rustyeddy/tradebot/market/data"
	"github.com/rustyeddy/tradebot/performance"
	"github.com/rustyeddy/tradebot/portfolio"
	"github.com/rustyeddy/tradebot/strategies"
)

// Engine simulates one strategy over one symbol's daily bars.
//
// Each Run owns a fresh Portfolio and Executor, so an Engine may be reused
// and several Engines may run concurrently.
type Engine struct {
	strategy strategies.Strategy
	cfg      config.Trading
	log      *zap.Logger
}

func NewEngine(s strategies.Strategy, cfg config.Trading, log *zap.Logger) (*Engine, error) {
	if s == nil {
		return nil, fmt.Errorf("backtest: Strategy is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("backtest: %w", err)
	}
	return &Engine{strategy: s, cfg: cfg, log: logger.OrNop(log)}, nil
}

// RunSymbol fetches the bars for symbol and runs them. A fetch failure
// aborts the run before any simulation.
func (e *Engine) RunSymbol(ctx context.Context, p data.Provider, symbol string, start, end time.Time) (Result, error) {
	if p == nil {
		return Result{}, fmt.Errorf("backtest: Provider is required")
	}
	series, err := p.Bars(ctx, symbol, start, end)
	if err != nil {
		return Result{}, fmt.Errorf("backtest: %s: %w", symbol, err)
	}
	return e.Run(series)
}

// Run walks the series one bar at a time:
//  1. Buy signals buy AllocationPct of the portfolio value
//  2. Sell signals sell the whole position
//  3. On the last bar any open position is sold at the close
//  4. Equity is recorded for every bar, after its trades
func (e *Engine) Run(series market.Series) (Result, error) {
	if err := series.Validate(); err != nil {
		return Result{}, fmt.Errorf("backtest: %w", err)
	}

	signals, err := e.strategy.GenerateSignals(series)
	if err != nil {
		return Result{}, fmt.Errorf("backtest: %s: %w", e.strategy.Name(), err)
	}
	if len(signals) != series.Len() {
		return Result{}, fmt.Errorf("backtest: %s returned %d signals for %d bars",
			e.strategy.Name(), len(signals), series.Len())
	}

	sym := series.Symbol
	p := portfolio.New(e.cfg.InitialCapital)
	ex := broker.NewExecutor(p, e.cfg, e.log)
	log := e.log.With(zap.String("symbol", sym), zap.String("strategy", e.strategy.Name()))

	rejected := 0
	record := func(res broker.OrderResult, note string) {
		if !res.Accepted {
			rejected++
			return
		}
		t := res.Trade
		log.Info("trade",
			zap.String("date", t.Date.Format(market.DateLayout)),
			zap.Stringer("action", t.Action),
			zap.Int("shares", t.Shares),
			zap.Float64("price", t.Price),
			zap.Float64("commission", t.Commission),
			zap.String("note", note),
		)
	}

	last := series.Len() - 1
	for i, bar := range series.Bars {
		price := bar.Close

		switch signals[i] {
		case strategies.Buy:
			shares := ex.SizeForAllocation(sym, price, e.cfg.AllocationPct)
			record(ex.Buy(sym, price, shares, bar.Time), "signal")
		case strategies.Sell:
			if held := p.PositionSize(sym); held > 0 {
				record(ex.Sell(sym, price, held, bar.Time), "signal")
			}
		}

		if i == last {
			if held := p.PositionSize(sym); held > 0 {
				record(ex.Sell(sym, price, held, bar.Time), "closing position")
			}
		}

		p.RecordEquity(bar.Time, map[string]float64{sym: price})
	}

	equity := p.EquityCurve()
	trades := p.Trades()

	res := Result{
		Strategy:       strategies.Describe(e.strategy),
		Parameters:     e.strategy.Parameters(),
		Symbol:         sym,
		Start:          series.First().Time,
		End:            series.Last().Time,
		InitialCapital: e.cfg.InitialCapital,
		BuyHoldReturn:  buyHoldReturn(series.First().Close, series.Last().Close),
		Metrics:        performance.Compute(equity, trades, e.cfg.InitialCapital),
		Rejected:       rejected,
		EquityCurve:    equity,
		Trades:         trades,
	}

	log.Debug("run complete",
		zap.Int("bars", series.Len()),
		zap.Int("trades", len(trades)),
		zap.Int("rejected", rejected),
		zap.Float64("final_value", res.FinalValue),
	)
	return res, nil
}
