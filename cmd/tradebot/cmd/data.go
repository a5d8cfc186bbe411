package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradebot/market"
	"github.com/rustyeddy/tradebot/market/data"
)

var dataCmd = &cobra.Command{
	Use:   "data",
	Short: "Fetch daily bars and manage the bar cache",
	Long: `Work with market data outside of a backtest.

Subcommands:
  fetch       - Download bars and write them as CSV
  clear-cache - Remove every cached fetch

Examples:
  tradebot --source alpaca data fetch --symbols AAPL,MSFT --start 2023-01-01 --end 2024-01-01 --out ./data
  tradebot data clear-cache`,
}

var dataFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download bars and write them as CSV",
	Long: `Fetch bars for each symbol from the configured source and write them
to <out>/<SYMBOL>.csv, the layout the csv source reads. With no --out the
bars of a single symbol are written to stdout.`,
	RunE: runDataFetch,
}

var dataClearCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Remove every cached fetch",
	RunE:  runDataClear,
}

var (
	dfSymbols []string
	dfStart   string
	dfEnd     string
	dfOut     string
)

func init() {
	rootCmd.AddCommand(dataCmd)
	dataCmd.AddCommand(dataFetchCmd)
	dataCmd.AddCommand(dataClearCmd)

	dataFetchCmd.Flags().StringSliceVar(&dfSymbols, "symbols", nil, "comma-separated symbols")
	dataFetchCmd.Flags().StringVar(&dfStart, "start", "", "first date (YYYY-MM-DD)")
	dataFetchCmd.Flags().StringVar(&dfEnd, "end", "", "last date (YYYY-MM-DD)")
	dataFetchCmd.Flags().StringVarP(&dfOut, "out", "o", "", "output directory (stdout when empty)")

	dataFetchCmd.MarkFlagRequired("symbols")
	dataFetchCmd.MarkFlagRequired("start")
	dataFetchCmd.MarkFlagRequired("end")
}

func runDataFetch(cmd *cobra.Command, args []string) error {
	if dfOut == "" && len(dfSymbols) != 1 {
		return fmt.Errorf("--out is required when fetching more than one symbol")
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, _, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	from, to, err := parseRange(dfStart, dfEnd)
	if err != nil {
		return err
	}
	p, closeProvider, err := openProvider(cfg, log)
	if err != nil {
		return err
	}
	defer closeProvider()

	bars, err := data.FetchMany(cmd.Context(), p, dfSymbols, from, to, log)
	if err != nil {
		return err
	}

	if dfOut == "" {
		s, ok := bars[dfSymbols[0]]
		if !ok {
			return fmt.Errorf("no data for %s", dfSymbols[0])
		}
		return data.WriteCSV(cmd.OutOrStdout(), s)
	}

	if err := os.MkdirAll(dfOut, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dfOut, err)
	}
	for _, sym := range dfSymbols {
		s, ok := bars[sym]
		if !ok {
			continue
		}
		path := filepath.Join(dfOut, strings.ToUpper(sym)+".csv")
		if err := writeCSVFile(path, s); err != nil {
			return err
		}
		log.Info("wrote bars", zap.String("symbol", sym), zap.Int("bars", s.Len()), zap.String("path", path))
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d bars -> %s\n", sym, s.Len(), path)
	}
	return nil
}

func writeCSVFile(path string, s market.Series) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := data.WriteCSV(f, s); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func runDataClear(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Data.CachePath == "" {
		return fmt.Errorf("no cache configured")
	}
	log, _, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	c, err := data.NewSQLiteCache(cfg.Data.CachePath, cfg.Data.Source, data.NewCSVProvider(cfg.Data.Dir), log)
	if err != nil {
		return err
	}
	defer c.Close()

	n, err := c.Clear(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Cleared %d cached fetches from %s\n", n, cfg.Data.CachePath)
	return nil
}
