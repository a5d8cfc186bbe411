package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradebot/backtest"
	"github.com/rustyeddy/tradebot/strategies"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare strategies across symbols",
	Long: `Run every selected strategy on every symbol and print a comparison table.

Each strategy/symbol pair is an independent simulation with its own capital.
Symbols without data are skipped with a warning.

Example:
  tradebot compare --symbols AAPL,MSFT,GOOGL --start 2023-01-01 --end 2024-01-01`,
	RunE: runCompare,
}

var (
	cmpSymbols    []string
	cmpStrategies []string
	cmpStart      string
	cmpEnd        string
	cmpCapital    float64
	cmpParallel   int
)

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringSliceVar(&cmpSymbols, "symbols", nil, "comma-separated symbols")
	compareCmd.Flags().StringSliceVar(&cmpStrategies, "strategies", strategies.Names(), "strategies to compare")
	compareCmd.Flags().StringVar(&cmpStart, "start", "", "first date (YYYY-MM-DD)")
	compareCmd.Flags().StringVar(&cmpEnd, "end", "", "last date (YYYY-MM-DD)")
	compareCmd.Flags().Float64Var(&cmpCapital, "capital", 100000, "initial capital per run")
	compareCmd.Flags().IntVar(&cmpParallel, "parallel", 4, "concurrent runs (0 = unbounded)")

	compareCmd.MarkFlagRequired("symbols")
	compareCmd.MarkFlagRequired("start")
	compareCmd.MarkFlagRequired("end")
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, _, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	from, to, err := parseRange(cmpStart, cmpEnd)
	if err != nil {
		return err
	}

	strats := make([]strategies.Strategy, 0, len(cmpStrategies))
	for _, name := range cmpStrategies {
		s, err := strategies.ByName(name, cfg.Strategies)
		if err != nil {
			return err
		}
		strats = append(strats, s)
	}

	p, closeProvider, err := openProvider(cfg, log)
	if err != nil {
		return err
	}
	defer closeProvider()

	results, err := backtest.Compare(cmd.Context(), p, strats, cmpSymbols, backtest.CompareOptions{
		Start:       from,
		End:         to,
		Trading:     tradingConfig(cmd, cfg, cmpCapital),
		Parallelism: cmpParallel,
	}, log)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return fmt.Errorf("no data for any of %v", cmpSymbols)
	}
	log.Info("comparison finished", zap.Int("runs", len(results)))

	backtest.PrintComparison(cmd.OutOrStdout(), backtest.Rows(results))
	return nil
}
