package risk

import "github.com/rustyeddy/tradebot/portfolio"

// ExecutionPrice applies slippage against the trader: buys pay more, sells
// receive less.
func ExecutionPrice(marketPrice, slippageRate float64, action portfolio.Action) float64 {
	if action == portfolio.ActionSell {
		return marketPrice * (1 - slippageRate)
	}
	return marketPrice * (1 + slippageRate)
}

// Commission is charged on the execution notional.
func Commission(executionPrice float64, shares int, commissionRate float64) float64 {
	return executionPrice * float64(shares) * commissionRate
}
