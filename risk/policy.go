package risk

import "github.com/rustyeddy/tradebot/portfolio"

// Limits are the admission limits applied to new exposure.
type Limits struct {
	MaxPositionPct float64 // 0.20 of portfolio value per symbol
}

// Intent is an order about to be submitted, priced at execution.
type Intent struct {
	Symbol string
	Action portfolio.Action
	Shares int
	Price  float64 // execution price after slippage
}

// Snapshot is the portfolio state the intent is checked against, valued at
// the intent's price.
type Snapshot struct {
	Cash       float64
	Value      float64
	HeldShares int
}
