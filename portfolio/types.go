package portfolio

import "time"

// Action is the side of an executed trade.
type Action int8

const (
	ActionBuy  Action = 1
	ActionSell Action = -1
)

func (a Action) String() string {
	switch a {
	case ActionBuy:
		return "BUY"
	case ActionSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Position is an open long holding in one symbol.
type Position struct {
	Symbol  string
	Shares  int
	AvgCost float64 // volume-weighted execution price across buys
}

// MarketValue values the position at price.
func (p Position) MarketValue(price float64) float64 {
	return float64(p.Shares) * price
}

// Trade is an immutable execution record.
type Trade struct {
	Date       time.Time
	Symbol     string
	Action     Action
	Shares     int
	Price      float64 // execution price after slippage
	Commission float64
	Total      float64 // signed cash impact: negative for buys, positive for sells
}

// Gross is the notional of the trade before commission.
func (t Trade) Gross() float64 {
	return t.Price * float64(t.Shares)
}

// EquityPoint is one dated snapshot of the portfolio.
// TotalValue is always Cash + PositionsValue.
type EquityPoint struct {
	Date           time.Time
	TotalValue     float64
	Cash           float64
	PositionsValue float64
}
