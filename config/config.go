package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the complete backtest configuration
type Config struct {
	Trading    Trading        `json:"trading" yaml:"trading"`
	Strategies StrategyParams `json:"strategies" yaml:"strategies"`
	Data       DataConfig     `json:"data" yaml:"data"`
	Log        LogConfig      `json:"log" yaml:"log"`
}

// Trading holds the execution and risk parameters of a single run. It is
// passed by value into the portfolio, executor and engine constructors.
type Trading struct {
	InitialCapital float64 `json:"initial_capital" yaml:"initial_capital"`
	CommissionRate float64 `json:"commission_rate" yaml:"commission_rate"` // 0.001 = 0.1% of notional
	SlippageRate   float64 `json:"slippage_rate" yaml:"slippage_rate"`     // 0.0005 = 0.05%
	MaxPositionPct float64 `json:"max_position_pct" yaml:"max_position_pct"`
	AllocationPct  float64 `json:"allocation_pct" yaml:"allocation_pct"` // portfolio share per buy signal
}

// StrategyParams contains per-strategy parameters
type StrategyParams struct {
	MovingAverage MovingAverageParams `json:"moving_average" yaml:"moving_average"`
	RSI           RSIParams           `json:"rsi" yaml:"rsi"`
	Momentum      MomentumParams      `json:"momentum" yaml:"momentum"`
}

type MovingAverageParams struct {
	ShortWindow int `json:"short_window" yaml:"short_window"`
	LongWindow  int `json:"long_window" yaml:"long_window"`
}

type RSIParams struct {
	Period     int     `json:"period" yaml:"period"`
	Oversold   float64 `json:"oversold" yaml:"oversold"`
	Overbought float64 `json:"overbought" yaml:"overbought"`
}

type MomentumParams struct {
	LookbackPeriod int     `json:"lookback_period" yaml:"lookback_period"`
	Threshold      float64 `json:"threshold" yaml:"threshold"` // 0.02 = 2%
}

// DataConfig selects and configures the market data provider
type DataConfig struct {
	Source    string       `json:"source" yaml:"source"` // "csv" or "alpaca"
	Dir       string       `json:"dir,omitempty" yaml:"dir,omitempty"`
	CachePath string       `json:"cache_path,omitempty" yaml:"cache_path,omitempty"` // empty disables the cache
	Alpaca    AlpacaConfig `json:"alpaca" yaml:"alpaca"`
}

type AlpacaConfig struct {
	APIKey    string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	APISecret string  `json:"api_secret,omitempty" yaml:"api_secret,omitempty"`
	BaseURL   string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Feed      string  `json:"feed,omitempty" yaml:"feed,omitempty"`
	RateLimit float64 `json:"rate_limit" yaml:"rate_limit"` // requests per second
}

type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "console" or "json"
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON).
// Fields missing from the file keep their Default values.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (JSON or YAML based on extension)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// ApplyEnv fills Alpaca credentials from the standard APCA_* variables when
// the config leaves them empty. LoadFromFile calls it; callers starting from
// Default call it themselves.
func (c *Config) ApplyEnv() {
	if c.Data.Alpaca.APIKey == "" {
		c.Data.Alpaca.APIKey = os.Getenv("APCA_API_KEY_ID")
	}
	if c.Data.Alpaca.APISecret == "" {
		c.Data.Alpaca.APISecret = os.Getenv("APCA_API_SECRET_KEY")
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Trading.Validate(); err != nil {
		return err
	}
	if err := c.Strategies.Validate(); err != nil {
		return err
	}
	switch c.Data.Source {
	case "csv":
		if c.Data.Dir == "" {
			return fmt.Errorf("data.dir required for csv source")
		}
	case "alpaca":
		if c.Data.Alpaca.RateLimit < 0 {
			return fmt.Errorf("data.alpaca.rate_limit must not be negative")
		}
	default:
		return fmt.Errorf("data.source must be 'csv' or 'alpaca'")
	}
	return nil
}

func (t Trading) Validate() error {
	if t.InitialCapital <= 0 {
		return fmt.Errorf("trading.initial_capital must be positive")
	}
	if t.CommissionRate < 0 || t.CommissionRate >= 1 {
		return fmt.Errorf("trading.commission_rate must be in [0, 1)")
	}
	if t.SlippageRate < 0 || t.SlippageRate >= 1 {
		return fmt.Errorf("trading.slippage_rate must be in [0, 1)")
	}
	if t.MaxPositionPct <= 0 || t.MaxPositionPct > 1 {
		return fmt.Errorf("trading.max_position_pct must be between 0 and 1")
	}
	if t.AllocationPct <= 0 || t.AllocationPct > 1 {
		return fmt.Errorf("trading.allocation_pct must be between 0 and 1")
	}
	return nil
}

func (p StrategyParams) Validate() error {
	ma := p.MovingAverage
	if ma.ShortWindow <= 0 || ma.LongWindow <= 0 {
		return fmt.Errorf("strategies.moving_average windows must be positive")
	}
	if ma.ShortWindow >= ma.LongWindow {
		return fmt.Errorf("strategies.moving_average short_window must be less than long_window")
	}
	if p.RSI.Period <= 0 {
		return fmt.Errorf("strategies.rsi.period must be positive")
	}
	if p.RSI.Oversold >= p.RSI.Overbought {
		return fmt.Errorf("strategies.rsi.oversold must be less than overbought")
	}
	if p.Momentum.LookbackPeriod <= 0 {
		return fmt.Errorf("strategies.momentum.lookback_period must be positive")
	}
	if p.Momentum.Threshold <= 0 {
		return fmt.Errorf("strategies.momentum.threshold must be positive")
	}
	return nil
}

// DefaultTrading returns the execution defaults: $100k, 0.1% commission,
// 0.05% slippage, 20% max position and 10% allocation per buy.
func DefaultTrading() Trading {
	return Trading{
		InitialCapital: 100000,
		CommissionRate: 0.001,
		SlippageRate:   0.0005,
		MaxPositionPct: 0.2,
		AllocationPct:  0.1,
	}
}

func DefaultStrategyParams() StrategyParams {
	return StrategyParams{
		MovingAverage: MovingAverageParams{ShortWindow: 20, LongWindow: 50},
		RSI:           RSIParams{Period: 14, Oversold: 30, Overbought: 70},
		Momentum:      MomentumParams{LookbackPeriod: 20, Threshold: 0.02},
	}
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		Trading:    DefaultTrading(),
		Strategies: DefaultStrategyParams(),
		Data: DataConfig{
			Source:    "csv",
			Dir:       "./data",
			CachePath: "./data_cache/bars.sqlite",
			Alpaca: AlpacaConfig{
				Feed:      "iex",
				RateLimit: 3,
			},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
