package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradebot/backtest"
	"github.com/rustyeddy/tradebot/strategies"
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run one strategy on one symbol",
	Long: `Run a single strategy over a symbol's daily bars and print a summary.

Supported strategies: ma, rsi, momentum (and noop as a baseline).

Example:
  tradebot backtest --strategy ma --symbol AAPL --start 2023-01-01 --end 2024-01-01`,
	RunE: runBacktest,
}

var (
	btStrategy string
	btSymbol   string
	btStart    string
	btEnd      string
	btCapital  float64
	btTrades   bool
)

func init() {
	rootCmd.AddCommand(backtestCmd)

	backtestCmd.Flags().StringVarP(&btStrategy, "strategy", "s", "", "strategy name (ma, rsi, momentum)")
	backtestCmd.Flags().StringVar(&btSymbol, "symbol", "", "stock symbol, e.g. AAPL")
	backtestCmd.Flags().StringVar(&btStart, "start", "", "first date (YYYY-MM-DD)")
	backtestCmd.Flags().StringVar(&btEnd, "end", "", "last date (YYYY-MM-DD)")
	backtestCmd.Flags().Float64Var(&btCapital, "capital", 100000, "initial capital")
	backtestCmd.Flags().BoolVar(&btTrades, "trades", false, "print the trade log")

	backtestCmd.MarkFlagRequired("strategy")
	backtestCmd.MarkFlagRequired("symbol")
	backtestCmd.MarkFlagRequired("start")
	backtestCmd.MarkFlagRequired("end")
}

func runBacktest(cmd *cobra.Command, args []string) error {
	res, _, err := runSingle(cmd, btStrategy, btSymbol, btStart, btEnd, btCapital)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	backtest.PrintResult(out, res)
	if btTrades {
		fmt.Fprintln(out)
		backtest.PrintTrades(out, res)
	}
	return nil
}

// runSingle is shared by backtest and report.
func runSingle(cmd *cobra.Command, strategy, symbol, start, end string, capital float64) (backtest.Result, string, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return backtest.Result{}, "", err
	}
	log, runID, err := newLogger(cfg)
	if err != nil {
		return backtest.Result{}, "", err
	}
	defer log.Sync()

	from, to, err := parseRange(start, end)
	if err != nil {
		return backtest.Result{}, "", err
	}
	strat, err := strategies.ByName(strategy, cfg.Strategies)
	if err != nil {
		return backtest.Result{}, "", err
	}

	p, closeProvider, err := openProvider(cfg, log)
	if err != nil {
		return backtest.Result{}, "", err
	}
	defer closeProvider()

	engine, err := backtest.NewEngine(strat, tradingConfig(cmd, cfg, capital), log)
	if err != nil {
		return backtest.Result{}, "", err
	}

	log.Info("backtest started",
		zap.String("strategy", strategies.Describe(strat)),
		zap.String("symbol", symbol),
		zap.Time("start", from),
		zap.Time("end", to),
	)
	res, err := engine.RunSymbol(cmd.Context(), p, symbol, from, to)
	if err != nil {
		return backtest.Result{}, "", fmt.Errorf("backtest %s: %w", symbol, err)
	}
	log.Info("backtest finished",
		zap.Float64("final_value", res.FinalValue),
		zap.Int("trades", res.TradeCount()),
	)
	return res, runID, nil
}
