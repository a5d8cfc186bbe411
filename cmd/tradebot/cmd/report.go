package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradebot/backtest"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Detailed performance report for one strategy",
	Long: `Run a single backtest and print its summary followed by the full
performance metrics. With --org the report is also written as an Org-mode
entry.

Example:
  tradebot report --strategy rsi --symbol TSLA --start 2023-01-01 --end 2024-01-01 --org tsla.org`,
	RunE: runReport,
}

var (
	rptStrategy string
	rptSymbol   string
	rptStart    string
	rptEnd      string
	rptCapital  float64
	rptOrg      string
)

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().StringVarP(&rptStrategy, "strategy", "s", "", "strategy name (ma, rsi, momentum)")
	reportCmd.Flags().StringVar(&rptSymbol, "symbol", "", "stock symbol")
	reportCmd.Flags().StringVar(&rptStart, "start", "", "first date (YYYY-MM-DD)")
	reportCmd.Flags().StringVar(&rptEnd, "end", "", "last date (YYYY-MM-DD)")
	reportCmd.Flags().Float64Var(&rptCapital, "capital", 100000, "initial capital")
	reportCmd.Flags().StringVar(&rptOrg, "org", "", "also write an Org-mode report to this file")

	reportCmd.MarkFlagRequired("strategy")
	reportCmd.MarkFlagRequired("symbol")
	reportCmd.MarkFlagRequired("start")
	reportCmd.MarkFlagRequired("end")
}

func runReport(cmd *cobra.Command, args []string) error {
	res, runID, err := runSingle(cmd, rptStrategy, rptSymbol, rptStart, rptEnd, rptCapital)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	backtest.PrintResult(out, res)
	fmt.Fprintln(out)
	backtest.PrintMetrics(out, res.Metrics)

	if rptOrg == "" {
		return nil
	}
	f, err := os.Create(rptOrg)
	if err != nil {
		return fmt.Errorf("create org report: %w", err)
	}
	if err := backtest.WriteOrg(f, res, backtest.OrgMeta{RunID: runID, Created: time.Now()}); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close org report: %w", err)
	}
	fmt.Fprintf(out, "\n✓ Wrote org report: %s\n", rptOrg)
	return nil
}
