package risk

import (
	"fmt"

	"github.com/rustyeddy/tradebot/portfolio"
)

const (
	CodeNoShares         = "NO_SHARES"
	CodeInsufficientCash = "INSUFFICIENT_CASH"
	CodePositionLimit    = "POSITION_LIMIT"
)

type Violation struct {
	Code string
	Msg  string
}

type Decision struct {
	Allowed    bool
	Violations []Violation

	Cost          float64 // execution notional, before commission
	PositionValue float64 // symbol exposure after the order
	PositionLimit float64
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// Has reports whether a violation with code was recorded.
func (d Decision) Has(code string) bool {
	for _, v := range d.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

// Evaluate applies the admission rules to an order intent.
// Buys must be affordable and keep the symbol under MaxPositionPct of the
// portfolio value. Sells are never limited here; the ledger rejects
// sells larger than the holding.
func Evaluate(l Limits, intent Intent, snap Snapshot) Decision {
	d := Decision{Allowed: true}

	if intent.Shares <= 0 {
		d.add(CodeNoShares, fmt.Sprintf("shares must be positive, got %d", intent.Shares))
		return d
	}
	if intent.Action != portfolio.ActionBuy {
		return d
	}

	d.Cost = intent.Price * float64(intent.Shares)
	if d.Cost > snap.Cash {
		d.add(CodeInsufficientCash,
			fmt.Sprintf("cost %.2f exceeds cash %.2f", d.Cost, snap.Cash))
	}

	d.PositionValue = float64(snap.HeldShares)*intent.Price + d.Cost
	d.PositionLimit = snap.Value * l.MaxPositionPct
	if d.PositionValue > d.PositionLimit {
		d.add(CodePositionLimit,
			fmt.Sprintf("%s position %.2f exceeds %.2f%% of portfolio (%.2f)",
				intent.Symbol, d.PositionValue, 100*l.MaxPositionPct, d.PositionLimit))
	}

	return d
}
