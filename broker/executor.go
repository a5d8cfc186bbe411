package broker

import (
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/tradebot/config"
	"github.com/rustyeddy/tradebot/internal/logger"
	"github.com/rustyeddy/tradebot/portfolio"
	"github.com/rustyeddy/tradebot/risk"
)

// Executor fills market orders against a Ledger.
//   - Buys pay price*(1+slippage), sells receive price*(1-slippage)
//   - Commission is a fraction of the execution notional on both sides
//   - Buys must pass risk.Evaluate before reaching the ledger
type Executor struct {
	ledger Ledger
	cfg    config.Trading
	limits risk.Limits
	log    *zap.Logger
}

func NewExecutor(l Ledger, cfg config.Trading, log *zap.Logger) *Executor {
	return &Executor{
		ledger: l,
		cfg:    cfg,
		limits: risk.Limits{MaxPositionPct: cfg.MaxPositionPct},
		log:    logger.OrNop(log),
	}
}

// Buy submits a buy of shares at marketPrice.
func (e *Executor) Buy(symbol string, marketPrice float64, shares int, date time.Time) OrderResult {
	price := risk.ExecutionPrice(marketPrice, e.cfg.SlippageRate, portfolio.ActionBuy)
	commission := risk.Commission(price, shares, e.cfg.CommissionRate)

	d := risk.Evaluate(e.limits, risk.Intent{
		Symbol: symbol,
		Action: portfolio.ActionBuy,
		Shares: shares,
		Price:  price,
	}, risk.Snapshot{
		Cash:       e.ledger.Cash(),
		Value:      e.ledger.Value(map[string]float64{symbol: price}),
		HeldShares: e.ledger.PositionSize(symbol),
	})
	if !d.Allowed {
		res := rejected(decisionReason(d), nil)
		e.logRejected(symbol, portfolio.ActionBuy, shares, price, res, d.Violations)
		return res
	}

	t, err := e.ledger.Buy(symbol, price, shares, date, commission)
	if err != nil {
		res := rejected(ledgerReason(err), err)
		e.logRejected(symbol, portfolio.ActionBuy, shares, price, res, nil)
		return res
	}
	return filled(t)
}

// Sell submits a sell of shares at marketPrice. Sells are never blocked by
// position limits.
func (e *Executor) Sell(symbol string, marketPrice float64, shares int, date time.Time) OrderResult {
	price := risk.ExecutionPrice(marketPrice, e.cfg.SlippageRate, portfolio.ActionSell)
	commission := risk.Commission(price, shares, e.cfg.CommissionRate)

	d := risk.Evaluate(e.limits, risk.Intent{
		Symbol: symbol,
		Action: portfolio.ActionSell,
		Shares: shares,
		Price:  price,
	}, risk.Snapshot{
		Cash:       e.ledger.Cash(),
		HeldShares: e.ledger.PositionSize(symbol),
	})
	if !d.Allowed {
		res := rejected(decisionReason(d), nil)
		e.logRejected(symbol, portfolio.ActionSell, shares, price, res, d.Violations)
		return res
	}

	t, err := e.ledger.Sell(symbol, price, shares, date, commission)
	if err != nil {
		res := rejected(ledgerReason(err), err)
		e.logRejected(symbol, portfolio.ActionSell, shares, price, res, nil)
		return res
	}
	return filled(t)
}

// SizeForAllocation returns the shares a buy at marketPrice needs to commit
// allocationPct of the current portfolio value. The minimum is one share.
func (e *Executor) SizeForAllocation(symbol string, marketPrice, allocationPct float64) int {
	value := e.ledger.Value(map[string]float64{symbol: marketPrice})
	price := risk.ExecutionPrice(marketPrice, e.cfg.SlippageRate, portfolio.ActionBuy)
	return risk.SizeForAllocation(value, price, e.cfg.CommissionRate, allocationPct)
}

func (e *Executor) logRejected(symbol string, action portfolio.Action, shares int, price float64, res OrderResult, vs []risk.Violation) {
	fields := []zap.Field{
		zap.String("symbol", symbol),
		zap.Stringer("action", action),
		zap.Int("shares", shares),
		zap.Float64("price", price),
		zap.String("reason", string(res.Reason)),
	}
	for _, v := range vs {
		fields = append(fields, zap.String(v.Code, v.Msg))
	}
	if res.Err != nil {
		fields = append(fields, zap.Error(res.Err))
	}
	e.log.Debug("order rejected", fields...)
}
