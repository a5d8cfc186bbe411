// Package portfolio is the cash and position ledger of a single simulation
// run. It enforces the ledger invariants and nothing else; admission rules
// such as position limits belong to the executor.
package portfolio

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNoPosition        = errors.New("no position")
	ErrOverSell          = errors.New("oversell")
	ErrInvalidShares     = errors.New("share count must be positive")
)

// Portfolio tracks cash, open positions, the trade log and the equity curve.
// It is not safe for concurrent use; each run owns its own Portfolio.
type Portfolio struct {
	initial   float64
	cash      float64
	positions map[string]*Position
	trades    []Trade
	equity    []EquityPoint
}

func New(initialCapital float64) *Portfolio {
	return &Portfolio{
		initial:   initialCapital,
		cash:      initialCapital,
		positions: make(map[string]*Position),
	}
}

func (p *Portfolio) InitialCapital() float64 { return p.initial }

func (p *Portfolio) Cash() float64 { return p.cash }

// Buy debits price*shares + commission and opens or averages into the
// position.
func (p *Portfolio) Buy(symbol string, price float64, shares int, date time.Time, commission float64) (Trade, error) {
	if shares <= 0 {
		return Trade{}, fmt.Errorf("buy %s: %w, got %d", symbol, ErrInvalidShares, shares)
	}

	cost := price*float64(shares) + commission
	if cost > p.cash {
		return Trade{}, fmt.Errorf("buy %s: %w: need %.2f, have %.2f", symbol, ErrInsufficientFunds, cost, p.cash)
	}

	p.cash -= cost

	pos, ok := p.positions[symbol]
	if !ok {
		p.positions[symbol] = &Position{Symbol: symbol, Shares: shares, AvgCost: price}
	} else {
		held := float64(pos.Shares) * pos.AvgCost
		pos.Shares += shares
		pos.AvgCost = (held + price*float64(shares)) / float64(pos.Shares)
	}

	t := Trade{
		Date:       date,
		Symbol:     symbol,
		Action:     ActionBuy,
		Shares:     shares,
		Price:      price,
		Commission: commission,
		Total:      -cost,
	}
	p.trades = append(p.trades, t)
	return t, nil
}

// Sell credits price*shares - commission and reduces the position, removing
// it when no shares remain. A failed sell leaves the portfolio unchanged.
func (p *Portfolio) Sell(symbol string, price float64, shares int, date time.Time, commission float64) (Trade, error) {
	if shares <= 0 {
		return Trade{}, fmt.Errorf("sell %s: %w, got %d", symbol, ErrInvalidShares, shares)
	}

	pos, ok := p.positions[symbol]
	if !ok {
		return Trade{}, fmt.Errorf("sell %s: %w", symbol, ErrNoPosition)
	}
	if shares > pos.Shares {
		return Trade{}, fmt.Errorf("sell %s: %w: cannot sell %d shares, only have %d", symbol, ErrOverSell, shares, pos.Shares)
	}

	proceeds := price*float64(shares) - commission
	p.cash += proceeds

	pos.Shares -= shares
	if pos.Shares == 0 {
		delete(p.positions, symbol)
	}

	t := Trade{
		Date:       date,
		Symbol:     symbol,
		Action:     ActionSell,
		Shares:     shares,
		Price:      price,
		Commission: commission,
		Total:      proceeds,
	}
	p.trades = append(p.trades, t)
	return t, nil
}

// PositionsValue marks every open position to prices, falling back to the
// average cost for symbols without a price.
func (p *Portfolio) PositionsValue(prices map[string]float64) float64 {
	total := 0.0
	for _, pos := range p.sortedPositions() {
		price, ok := prices[pos.Symbol]
		if !ok {
			price = pos.AvgCost
		}
		total += pos.MarketValue(price)
	}
	return total
}

// Value is cash plus PositionsValue.
func (p *Portfolio) Value(prices map[string]float64) float64 {
	return p.cash + p.PositionsValue(prices)
}

// RecordEquity appends the snapshot for date. Call it once per simulated
// date, after that date's trades.
func (p *Portfolio) RecordEquity(date time.Time, prices map[string]float64) EquityPoint {
	pv := p.PositionsValue(prices)
	pt := EquityPoint{
		Date:           date,
		TotalValue:     p.cash + pv,
		Cash:           p.cash,
		PositionsValue: pv,
	}
	p.equity = append(p.equity, pt)
	return pt
}

// PositionSize returns the shares held in symbol, 0 when flat.
func (p *Portfolio) PositionSize(symbol string) int {
	if pos, ok := p.positions[symbol]; ok {
		return pos.Shares
	}
	return 0
}

func (p *Portfolio) Position(symbol string) (Position, bool) {
	pos, ok := p.positions[symbol]
	if !ok {
		return Position{}, false
	}
	return *pos, true
}

// Positions returns the open positions sorted by symbol.
func (p *Portfolio) Positions() []Position {
	sorted := p.sortedPositions()
	out := make([]Position, len(sorted))
	for i, pos := range sorted {
		out[i] = *pos
	}
	return out
}

// Trades returns a copy of the trade log.
func (p *Portfolio) Trades() []Trade {
	return append([]Trade(nil), p.trades...)
}

// EquityCurve returns a copy of the equity curve.
func (p *Portfolio) EquityCurve() []EquityPoint {
	return append([]EquityPoint(nil), p.equity...)
}

// sortedPositions fixes the summation order so valuations are reproducible.
func (p *Portfolio) sortedPositions() []*Position {
	out := make([]*Position, 0, len(p.positions))
	for _, pos := range p.positions {
		out = append(out, pos)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out
}
