// Package data supplies daily price series to the backtester: CSV files,
// the Alpaca market data API, and a SQLite cache in front of either.
package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradebot/internal/logger"
	"github.com/rustyeddy/tradebot/market"
)

// ErrDataUnavailable is wrapped by every provider when a symbol has no bars
// in the requested range.
var ErrDataUnavailable = errors.New("data unavailable")

// Provider returns the daily bars of symbol whose calendar date falls in
// [start, end], ordered by strictly increasing date.
type Provider interface {
	Bars(ctx context.Context, symbol string, start, end time.Time) (market.Series, error)
}

// Versioned is implemented by providers whose data can change under a
// cached entry. Version returns an opaque token for symbol's current data;
// a cache entry stored under another token is refetched.
type Versioned interface {
	Version(symbol string) (string, error)
}

func unavailable(symbol string, start, end time.Time) error {
	return fmt.Errorf("%w: %s %s..%s", ErrDataUnavailable, symbol,
		start.Format(market.DateLayout), end.Format(market.DateLayout))
}

// FetchMany loads several symbols from p. Symbols that fail are logged and
// left out of the result; only context cancellation is returned as an
// error.
func FetchMany(ctx context.Context, p Provider, symbols []string, start, end time.Time, log *zap.Logger) (map[string]market.Series, error) {
	log = logger.OrNop(log)
	out := make(map[string]market.Series, len(symbols))
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		s, err := p.Bars(ctx, sym, start, end)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			log.Warn("skipping symbol", zap.String("symbol", sym), zap.Error(err))
			continue
		}
		out[sym] = s
	}
	return out, nil
}
