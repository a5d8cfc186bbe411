package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rustyeddy/tradebot/config"
	"github.com/rustyeddy/tradebot/internal/logger"
	"github.com/rustyeddy/tradebot/market"
	"github.com/rustyeddy/tradebot/market/data"
	"github.com/rustyeddy/tradebot/strategies"
)

// CompareOptions controls a multi-strategy, multi-symbol comparison.
type CompareOptions struct {
	Start time.Time
	End   time.Time

	Trading config.Trading

	// Parallelism bounds concurrent runs; 0 means unbounded.
	Parallelism int
}

// Compare runs every strategy on every symbol as independent simulations.
//
// Bars are fetched once per symbol, in order, before any run starts.
// Symbols without data are logged and skipped; any other fetch or run error
// aborts the comparison. Results are ordered by strategy, then symbol, in
// the order given.
func Compare(ctx context.Context, p data.Provider, strats []strategies.Strategy, symbols []string, opts CompareOptions, log *zap.Logger) ([]Result, error) {
	if p == nil {
		return nil, fmt.Errorf("backtest: Provider is required")
	}
	if len(strats) == 0 {
		return nil, fmt.Errorf("backtest: at least one strategy is required")
	}
	log = logger.OrNop(log)

	series := make([]market.Series, len(symbols))
	ok := make([]bool, len(symbols))
	for i, sym := range symbols {
		s, err := p.Bars(ctx, sym, opts.Start, opts.End)
		if errors.Is(err, data.ErrDataUnavailable) {
			log.Warn("skipping symbol", zap.String("symbol", sym), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("backtest: %s: %w", sym, err)
		}
		series[i], ok[i] = s, true
	}

	slots := make([]*Result, len(strats)*len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	if opts.Parallelism > 0 {
		g.SetLimit(opts.Parallelism)
	}

	for si, strat := range strats {
		eng, err := NewEngine(strat, opts.Trading, log)
		if err != nil {
			return nil, err
		}
		for yi := range symbols {
			if !ok[yi] {
				continue
			}
			slot := si*len(symbols) + yi
			s := series[yi]
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				res, err := eng.Run(s)
				if err != nil {
					return err
				}
				slots[slot] = &res
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(slots))
	for _, r := range slots {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}
