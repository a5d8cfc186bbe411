package risk

import "math"

// SizeForAllocation returns the whole shares that put allocationPct of
// portfolioValue to work at executionPrice, leaving room for commission.
//
// It never returns less than 1. Affordability is checked again when the
// order is admitted, so an oversized minimum order is rejected there.
func SizeForAllocation(portfolioValue, executionPrice, commissionRate, allocationPct float64) int {
	if executionPrice <= 0 {
		return 1
	}
	target := portfolioValue * allocationPct
	shares := math.Floor(target / (executionPrice * (1 + commissionRate)))
	if shares < 1 || math.IsNaN(shares) {
		return 1
	}
	return int(shares)
}
