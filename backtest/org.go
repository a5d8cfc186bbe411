package backtest

import (
	"fmt"
	"io"
	"text/template"
	"time"
)

// OrgMeta is the run bookkeeping printed in an Org report's drawer. It is
// kept out of Result so results stay reproducible.
type OrgMeta struct {
	RunID   string
	Created time.Time
}

type orgView struct {
	Result
	OrgMeta
}

var orgFuncs = template.FuncMap{
	"date": func(t time.Time) string { return t.Format("2006-01-02") },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
	"money": money,
}

var orgTemplate = template.Must(template.New("org").Funcs(orgFuncs).Parse(OrgTemplate))

// WriteOrg renders r as an Org-mode entry.
func WriteOrg(w io.Writer, r Result, meta OrgMeta) error {
	if err := orgTemplate.Execute(w, orgView{Result: r, OrgMeta: meta}); err != nil {
		return fmt.Errorf("backtest: org report: %w", err)
	}
	return nil
}

const OrgTemplate = `* BACKTEST: {{.Strategy}} {{.Symbol}}
:PROPERTIES:
:RUN_ID:      {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:SYMBOL:      {{.Symbol}}
:START_DATE:  {{date .Start}}
:END_DATE:    {{date .End}}
:START_BAL:   {{printf "%.2f" .InitialCapital}}
:END_BAL:     {{printf "%.2f" .FinalValue}}
:RETURN_PCT:  {{printf "%.2f" .TotalReturn}}
:MAX_DD_PCT:  {{printf "%.2f" .MaxDrawdown}}
:TRADES:      {{.TotalTrades}}
:WINS:        {{.WinningTrades}}
:LOSSES:      {{.LosingTrades}}
:WIN_RATE:    {{printf "%.2f" .WinRate}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Strategy Parameters
| Parameter | Value |
|-----------+-------|
{{- range .Parameters}}
| {{.Name}} | {{.Value}} |
{{- end}}

** Performance Summary
- Final Value:       *${{money .FinalValue}}*
- Return:            *{{printf "%.2f" .TotalReturn}}%*
- Buy & Hold:        *{{printf "%.2f" .BuyHoldReturn}}%*
- Annualized:        *{{printf "%.2f" .AnnualizedReturn}}%*
- Volatility:        *{{printf "%.2f" .Volatility}}%*
- Sharpe / Sortino:  *{{printf "%.2f" .Sharpe}} / {{printf "%.2f" .Sortino}}*
- Calmar:            *{{printf "%.2f" .Calmar}}*
- Max Drawdown:      *{{printf "%.2f" .MaxDrawdown}}%*
- Profit Factor:     *{{printf "%.2f" .ProfitFactor}}*

** Trades
| Date | Action | Shares | Price | Commission | Total |
|------+--------+--------+-------+------------+-------|
{{- range .Trades}}
| {{date .Date}} | {{.Action}} | {{.Shares}} | {{printf "%.2f" .Price}} | {{printf "%.2f" .Commission}} | {{printf "%.2f" .Total}} |
{{- end}}
`
