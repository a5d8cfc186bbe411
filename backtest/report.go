package backtest

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/rustyeddy/tradebot/market"
	"github.com/rustyeddy/tradebot/performance"
)

const rule = "============================================================"

// ComparisonRow is one line of the strategy comparison table. Percent
// fields are in percent.
type ComparisonRow struct {
	Strategy    string
	Symbol      string
	TotalReturn float64
	Sharpe      float64
	MaxDrawdown float64
	WinRate     float64
	TradeCount  int
	FinalValue  float64
}

// Rows projects results onto the comparison table, in order.
func Rows(results []Result) []ComparisonRow {
	rows := make([]ComparisonRow, len(results))
	for i, r := range results {
		rows[i] = ComparisonRow{
			Strategy:    r.Strategy,
			Symbol:      r.Symbol,
			TotalReturn: r.TotalReturn,
			Sharpe:      r.Sharpe,
			MaxDrawdown: r.MaxDrawdown,
			WinRate:     r.WinRate,
			TradeCount:  r.TotalTrades,
			FinalValue:  r.FinalValue,
		}
	}
	return rows
}

func PrintResult(w io.Writer, r Result) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, " Backtest Result")
	fmt.Fprintln(w, rule)

	fmt.Fprintf(w, "Strategy:          %s\n", r.Strategy)
	fmt.Fprintf(w, "Symbol:            %s\n", r.Symbol)
	fmt.Fprintf(w, "Period:            %s to %s\n",
		r.Start.Format(market.DateLayout), r.End.Format(market.DateLayout))
	fmt.Fprintf(w, "Initial Capital:   $%s\n", money(r.InitialCapital))
	fmt.Fprintf(w, "Final Value:       $%s\n", money(r.FinalValue))
	fmt.Fprintf(w, "Total Return:      %.2f%%\n", r.TotalReturn)
	fmt.Fprintf(w, "Buy & Hold Return: %.2f%%\n", r.BuyHoldReturn)
	fmt.Fprintf(w, "Sharpe Ratio:      %.2f\n", r.Sharpe)
	fmt.Fprintf(w, "Max Drawdown:      %.2f%%\n", r.MaxDrawdown)
	fmt.Fprintf(w, "Total Trades:      %d\n", r.TotalTrades)
	fmt.Fprintf(w, "Win Rate:          %.2f%%\n", r.WinRate)
	if r.Rejected > 0 {
		fmt.Fprintf(w, "Rejected Orders:   %d\n", r.Rejected)
	}
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}

// PrintTrades lists the trade log.
func PrintTrades(w io.Writer, r Result) {
	if len(r.Trades) == 0 {
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "Date\tAction\tShares\tPrice\tCommission\tTotal\t")
	for _, t := range r.Trades {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\t%.2f\t%s\t\n",
			t.Date.Format(market.DateLayout), t.Action, t.Shares, t.Price, t.Commission, money(t.Total))
	}
	tw.Flush()
	fmt.Fprintln(w)
}

// PrintMetrics writes the detailed performance section.
func PrintMetrics(w io.Writer, m performance.Metrics) {
	fmt.Fprintln(w, "Detailed Metrics")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Annualized Return:  %.2f%%\n", m.AnnualizedReturn)
	fmt.Fprintf(w, "Volatility:         %.2f%%\n", m.Volatility)
	fmt.Fprintf(w, "Sharpe Ratio:       %.2f\n", m.Sharpe)
	fmt.Fprintf(w, "Sortino Ratio:      %.2f\n", m.Sortino)
	fmt.Fprintf(w, "Calmar Ratio:       %.2f\n", m.Calmar)
	fmt.Fprintf(w, "Profit Factor:      %.2f\n", m.ProfitFactor)
	fmt.Fprintf(w, "Winning Trades:     %d\n", m.WinningTrades)
	fmt.Fprintf(w, "Losing Trades:      %d\n", m.LosingTrades)
	fmt.Fprintf(w, "Average Win:        $%.2f\n", m.AvgWin)
	fmt.Fprintf(w, "Average Loss:       $%.2f\n", m.AvgLoss)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}

// PrintComparison writes rows as an aligned table.
func PrintComparison(w io.Writer, rows []ComparisonRow) {
	fmt.Fprintln(w, "Strategy Comparison")
	fmt.Fprintln(w, rule)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "Strategy\tSymbol\tTotal Return (%)\tSharpe Ratio\tMax Drawdown (%)\tWin Rate (%)\tTotal Trades\tFinal Value ($)")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.2f\t%.2f\t%.2f\t%d\t%s\n",
			r.Strategy, r.Symbol, r.TotalReturn, r.Sharpe, r.MaxDrawdown, r.WinRate, r.TradeCount, money(r.FinalValue))
	}
	tw.Flush()

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)
}

// money formats v with two decimals and thousands separators.
func money(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")

	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + b.String() + "." + frac
}
