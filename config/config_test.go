package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, 100000.0, cfg.Trading.InitialCapital)
	assert.Equal(t, 0.001, cfg.Trading.CommissionRate)
	assert.Equal(t, 0.0005, cfg.Trading.SlippageRate)
	assert.Equal(t, 0.2, cfg.Trading.MaxPositionPct)
	assert.Equal(t, 0.1, cfg.Trading.AllocationPct)
	assert.Equal(t, 20, cfg.Strategies.MovingAverage.ShortWindow)
	assert.Equal(t, 50, cfg.Strategies.MovingAverage.LongWindow)
	assert.Equal(t, 14, cfg.Strategies.RSI.Period)
	assert.Equal(t, 0.02, cfg.Strategies.Momentum.Threshold)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"valid config", func(c *Config) {}, ""},
		{"zero capital", func(c *Config) { c.Trading.InitialCapital = 0 }, "trading.initial_capital must be positive"},
		{"negative commission", func(c *Config) { c.Trading.CommissionRate = -0.1 }, "trading.commission_rate"},
		{"slippage too large", func(c *Config) { c.Trading.SlippageRate = 1 }, "trading.slippage_rate"},
		{"max position too large", func(c *Config) { c.Trading.MaxPositionPct = 1.5 }, "trading.max_position_pct"},
		{"zero allocation", func(c *Config) { c.Trading.AllocationPct = 0 }, "trading.allocation_pct"},
		{"ma windows inverted", func(c *Config) { c.Strategies.MovingAverage.ShortWindow = 60 }, "short_window must be less than long_window"},
		{"rsi thresholds inverted", func(c *Config) { c.Strategies.RSI.Oversold = 80 }, "oversold must be less than overbought"},
		{"momentum threshold zero", func(c *Config) { c.Strategies.Momentum.Threshold = 0 }, "strategies.momentum.threshold"},
		{"unknown source", func(c *Config) { c.Data.Source = "ftp" }, "data.source must be"},
		{"csv without dir", func(c *Config) { c.Data.Dir = "" }, "data.dir required"},
		{"alpaca negative rate", func(c *Config) {
			c.Data.Source = "alpaca"
			c.Data.Alpaca.RateLimit = -1
		}, "rate_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Trading.InitialCapital = 50000
			cfg.Strategies.RSI.Period = 10
			path := filepath.Join(tmpDir, "test"+tt.ext)

			err := cfg.SaveToFile(path)
			require.NoError(t, err)

			_, err = os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)

			assert.Equal(t, cfg.Trading, loaded.Trading)
			assert.Equal(t, cfg.Strategies, loaded.Strategies)
			assert.Equal(t, cfg.Data.Source, loaded.Data.Source)
		})
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("trading:\n  initial_capital: 25000\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 25000.0, cfg.Trading.InitialCapital)
	assert.Equal(t, 0.001, cfg.Trading.CommissionRate)
	assert.Equal(t, 50, cfg.Strategies.MovingAverage.LongWindow)
}

func TestLoadAlpacaCredentialsFromEnv(t *testing.T) {
	t.Setenv("APCA_API_KEY_ID", "key")
	t.Setenv("APCA_API_SECRET_KEY", "secret")

	path := filepath.Join(t.TempDir(), "alpaca.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data:\n  source: alpaca\n"), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "key", cfg.Data.Alpaca.APIKey)
	assert.Equal(t, "secret", cfg.Data.Alpaca.APISecret)
}

func TestApplyEnvOnDefault(t *testing.T) {
	t.Setenv("APCA_API_KEY_ID", "key")
	t.Setenv("APCA_API_SECRET_KEY", "secret")

	cfg := Default()
	assert.Empty(t, cfg.Data.Alpaca.APIKey)
	cfg.ApplyEnv()
	assert.Equal(t, "key", cfg.Data.Alpaca.APIKey)
	assert.Equal(t, "secret", cfg.Data.Alpaca.APISecret)

	// values already set are kept
	cfg.Data.Alpaca.APIKey = "mine"
	cfg.ApplyEnv()
	assert.Equal(t, "mine", cfg.Data.Alpaca.APIKey)
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)
}
