package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradebot/config"
	"github.com/rustyeddy/tradebot/internal/id"
	"github.com/rustyeddy/tradebot/internal/logger"
	"github.com/rustyeddy/tradebot/market"
	"github.com/rustyeddy/tradebot/market/data"
)

var rootCmd = &cobra.Command{
	Use:   "tradebot",
	Short: "Backtest and compare daily stock trading strategies",
	Long: `Tradebot simulates trading strategies against historical daily bars and
reports risk-adjusted performance.

It provides tools for:
  - Backtesting a strategy on one symbol
  - Comparing every strategy across several symbols
  - Detailed performance reports (Sharpe, Sortino, Calmar, drawdown)
  - Fetching and caching daily bars from CSV files or Alpaca

Examples:
  tradebot backtest --strategy ma --symbol AAPL --start 2023-01-01 --end 2024-01-01
  tradebot compare --symbols AAPL,MSFT,GOOGL --start 2023-01-01 --end 2024-01-01
  tradebot report --strategy rsi --symbol TSLA --start 2023-01-01 --end 2024-01-01`,
	SilenceUsage: true,
}

var (
	cfgFile   string
	logLevel  string
	logFormat string
	source    string
	dataDir   string
	cachePath string
	noCache   bool
)

// Execute adds all child commands to the root command and sets flags appropriately.
// An interrupt cancels the command context, stopping in-flight fetches and runs.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults apply when empty")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&logFormat, "log-format", "", "log format (console, json)")
	pf.StringVar(&source, "source", "", "market data source (csv, alpaca)")
	pf.StringVar(&dataDir, "data-dir", "", "directory of <SYMBOL>.csv files for the csv source")
	pf.StringVar(&cachePath, "cache", "", "SQLite bar cache path")
	pf.BoolVar(&noCache, "no-cache", false, "bypass the bar cache")
}

// loadConfig reads the config file, if any, and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		var err error
		if cfg, err = config.LoadFromFile(cfgFile); err != nil {
			return nil, err
		}
	} else {
		cfg.ApplyEnv()
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = logFormat
	}
	if flags.Changed("source") {
		cfg.Data.Source = source
	}
	if flags.Changed("data-dir") {
		cfg.Data.Dir = dataDir
	}
	if flags.Changed("cache") {
		cfg.Data.CachePath = cachePath
	}
	if noCache {
		cfg.Data.CachePath = ""
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger builds the process logger, tagged with a fresh run ID.
func newLogger(cfg *config.Config) (*zap.Logger, string, error) {
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, "", fmt.Errorf("logger: %w", err)
	}
	runID := id.New()
	return log.With(zap.String("run_id", runID)), runID, nil
}

// openProvider builds the configured provider, behind the SQLite cache
// unless caching is disabled. The returned close func is never nil.
func openProvider(cfg *config.Config, log *zap.Logger) (data.Provider, func() error, error) {
	var p data.Provider
	switch cfg.Data.Source {
	case "csv":
		p = data.NewCSVProvider(cfg.Data.Dir)
	case "alpaca":
		if cfg.Data.Alpaca.APIKey == "" || cfg.Data.Alpaca.APISecret == "" {
			return nil, nil, fmt.Errorf("alpaca source needs APCA_API_KEY_ID and APCA_API_SECRET_KEY")
		}
		p = data.NewAlpacaProvider(cfg.Data.Alpaca, log)
	default:
		return nil, nil, fmt.Errorf("unknown data source %q", cfg.Data.Source)
	}

	if cfg.Data.CachePath == "" {
		return p, func() error { return nil }, nil
	}
	c, err := data.NewSQLiteCache(cfg.Data.CachePath, cfg.Data.Source, p, log)
	if err != nil {
		return nil, nil, err
	}
	return c, c.Close, nil
}

// parseRange parses --start/--end.
func parseRange(start, end string) (time.Time, time.Time, error) {
	s, err := market.ParseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--start: %w", err)
	}
	e, err := market.ParseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("--end: %w", err)
	}
	if e.Before(s) {
		return time.Time{}, time.Time{}, fmt.Errorf("--end %s is before --start %s", end, start)
	}
	return s, e, nil
}

// tradingConfig applies --capital when it was given.
func tradingConfig(cmd *cobra.Command, cfg *config.Config, capital float64) config.Trading {
	t := cfg.Trading
	if cmd.Flags().Changed("capital") {
		t.InitialCapital = capital
	}
	return t
}
