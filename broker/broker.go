// Package broker simulates order execution against a portfolio ledger:
// slippage, commission, admission checks and position sizing.
package broker

import (
	"errors"
	"time"

	"github.com/rustyeddy/tradebot/portfolio"
	"github.com/rustyeddy/tradebot/risk"
)

// Ledger is the portfolio surface the executor trades against.
type Ledger interface {
	Buy(symbol string, price float64, shares int, date time.Time, commission float64) (portfolio.Trade, error)
	Sell(symbol string, price float64, shares int, date time.Time, commission float64) (portfolio.Trade, error)
	Cash() float64
	Value(prices map[string]float64) float64
	PositionSize(symbol string) int
}

// Rejection names why an order was not filled.
type Rejection string

const (
	RejectNone             Rejection = ""
	RejectNoShares         Rejection = "no_shares"
	RejectInsufficientCash Rejection = "insufficient_cash"
	RejectPositionLimit    Rejection = "position_limit"
	RejectNoPosition       Rejection = "no_position"
	RejectOverSell         Rejection = "oversell"
	RejectLedger           Rejection = "ledger"
)

// OrderResult is the outcome of a Buy or Sell. A rejected order is a normal
// outcome; Err carries the ledger error when the ledger refused it.
type OrderResult struct {
	Accepted bool
	Trade    portfolio.Trade
	Reason   Rejection
	Err      error
}

func filled(t portfolio.Trade) OrderResult {
	return OrderResult{Accepted: true, Trade: t}
}

func rejected(reason Rejection, err error) OrderResult {
	return OrderResult{Reason: reason, Err: err}
}

var violationReasons = map[string]Rejection{
	risk.CodeNoShares:         RejectNoShares,
	risk.CodeInsufficientCash: RejectInsufficientCash,
	risk.CodePositionLimit:    RejectPositionLimit,
}

// decisionReason maps the first violation of a refused decision.
func decisionReason(d risk.Decision) Rejection {
	if len(d.Violations) == 0 {
		return RejectLedger
	}
	if r, ok := violationReasons[d.Violations[0].Code]; ok {
		return r
	}
	return RejectLedger
}

// ledgerReason maps a ledger error onto a rejection reason.
func ledgerReason(err error) Rejection {
	switch {
	case errors.Is(err, portfolio.ErrInsufficientFunds):
		return RejectInsufficientCash
	case errors.Is(err, portfolio.ErrNoPosition):
		return RejectNoPosition
	case errors.Is(err, portfolio.ErrOverSell):
		return RejectOverSell
	case errors.Is(err, portfolio.ErrInvalidShares):
		return RejectNoShares
	default:
		return RejectLedger
	}
}
