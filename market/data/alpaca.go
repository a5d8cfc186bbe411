package data

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/rustyeddy/tradebot/config"
	"github.com/rustyeddy/tradebot/internal/logger"
	"github.com/rustyeddy/tradebot/market"
)

// barsClient is the part of *marketdata.Client the provider uses.
type barsClient interface {
	GetBars(symbol string, req marketdata.GetBarsRequest) ([]marketdata.Bar, error)
}

// AlpacaProvider loads split and dividend adjusted daily bars from the
// Alpaca market data API. Requests are throttled to the configured rate.
type AlpacaProvider struct {
	client  barsClient
	feed    string
	limiter *rate.Limiter
	log     *zap.Logger
}

func NewAlpacaProvider(cfg config.AlpacaConfig, log *zap.Logger) *AlpacaProvider {
	opts := marketdata.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
	}
	if cfg.BaseURL != "" {
		opts.BaseURL = cfg.BaseURL
	}
	return newAlpacaProvider(marketdata.NewClient(opts), cfg.Feed, cfg.RateLimit, log)
}

// newAlpacaProvider allows rps requests per second; 0 disables throttling.
func newAlpacaProvider(client barsClient, feed string, rps float64, log *zap.Logger) *AlpacaProvider {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}
	return &AlpacaProvider{
		client:  client,
		feed:    feed,
		limiter: rate.NewLimiter(limit, 1),
		log:     logger.OrNop(log),
	}
}

func (p *AlpacaProvider) Bars(ctx context.Context, symbol string, start, end time.Time) (market.Series, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))

	if err := p.limiter.Wait(ctx); err != nil {
		return market.Series{}, err
	}

	req := marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Start:      market.Day(start),
		Adjustment: marketdata.All,
		Feed:       marketdata.Feed(p.feed),
	}
	if !end.IsZero() {
		req.End = market.Day(end).AddDate(0, 0, 1)
	}

	t0 := time.Now()
	raw, err := p.client.GetBars(sym, req)
	if err != nil {
		return market.Series{}, fmt.Errorf("alpaca: bars %s: %w", sym, err)
	}
	p.log.Debug("alpaca bars",
		zap.String("symbol", sym),
		zap.Int("bars", len(raw)),
		zap.Duration("elapsed", time.Since(t0)),
	)

	bars := make([]market.Bar, 0, len(raw))
	for _, ab := range raw {
		b := market.Bar{
			Time:   market.Day(ab.Timestamp),
			Open:   ab.Open,
			High:   ab.High,
			Low:    ab.Low,
			Close:  ab.Close,
			Volume: float64(ab.Volume),
		}
		if n := len(bars); n > 0 && !b.Time.After(bars[n-1].Time) {
			continue
		}
		bars = append(bars, b)
	}

	s := market.NewSeries(sym, bars).Between(start, end)
	if s.Len() == 0 {
		return market.Series{}, fmt.Errorf("alpaca: %w", unavailable(sym, start, end))
	}
	return s, nil
}
