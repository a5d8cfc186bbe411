package strategies

import (
	"testing"
	"time"

	"github.com/rustyeddy/tradebot/config"
	"github.com/rustyeddy/tradebot/indicators"
	"github.com/rustyeddy/tradebot/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closesSeries(closes ...float64) market.Series {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]market.Bar, len(closes))
	for i, c := range closes {
		bars[i] = market.Bar{Time: start.AddDate(0, 0, i), Open: c, High: c, Low: c, Close: c}
	}
	return market.NewSeries("TEST", bars)
}

// nonHold returns the index of every non-Hold signal.
func nonHold(signals []Signal) map[int]Signal {
	out := map[int]Signal{}
	for i, s := range signals {
		if s != Hold {
			out[i] = s
		}
	}
	return out
}

func TestSignalString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "BUY", Buy.String())
	assert.Equal(t, "SELL", Sell.String())
	assert.Equal(t, "HOLD", Hold.String())
}

func TestMACrossoverSignals(t *testing.T) {
	t.Parallel()

	s, err := NewMACrossover(2, 3)
	require.NoError(t, err)

	signals, err := s.GenerateSignals(closesSeries(1, 2, 3, 4, 5, 4, 3, 2, 1))
	require.NoError(t, err)
	require.Len(t, signals, 9)

	assert.Equal(t, map[int]Signal{2: Buy, 6: Sell}, nonHold(signals))
}

func TestMACrossoverNoRepeatWhileCrossed(t *testing.T) {
	t.Parallel()

	s, err := NewMACrossover(2, 3)
	require.NoError(t, err)

	signals, err := s.GenerateSignals(closesSeries(1, 2, 3, 4, 5, 6, 7, 8))
	require.NoError(t, err)
	assert.Equal(t, map[int]Signal{2: Buy}, nonHold(signals))
}

func TestMACrossoverSellsWhenAveragesMeet(t *testing.T) {
	t.Parallel()

	s, err := NewMACrossover(1, 2)
	require.NoError(t, err)

	// short: 1 2 2 3, long: nan 1.5 2 2.5; the equal bar ends the crossed state
	signals, err := s.GenerateSignals(closesSeries(1, 2, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, []Signal{Hold, Buy, Sell, Buy}, signals)
}

func TestMACrossoverSignalsAlternate(t *testing.T) {
	t.Parallel()

	s, err := NewMACrossover(2, 3)
	require.NoError(t, err)

	// flat stretches make the averages meet at bars 4 and 11
	signals, err := s.GenerateSignals(closesSeries(1, 2, 3, 3, 3, 3, 4, 5, 4, 3, 3, 3, 4, 5))
	require.NoError(t, err)
	assert.Equal(t, map[int]Signal{2: Buy, 4: Sell, 6: Buy, 9: Sell, 12: Buy}, nonHold(signals))

	last := Sell
	for i, sig := range signals {
		if sig == Hold {
			continue
		}
		assert.NotEqual(t, last, sig, "bar %d repeats %s", i, sig)
		last = sig
	}
}

func TestMACrossoverShortHistory(t *testing.T) {
	t.Parallel()

	s, err := NewMACrossover(20, 50)
	require.NoError(t, err)

	signals, err := s.GenerateSignals(closesSeries(1, 2, 3, 4, 5))
	require.NoError(t, err)
	assert.Equal(t, []Signal{Hold, Hold, Hold, Hold, Hold}, signals)
}

func TestRSIThresholdStateMachine(t *testing.T) {
	t.Parallel()

	s, err := NewRSIThreshold(2, 30, 70)
	require.NoError(t, err)

	// RSI(2): nan 100 100 50 0 0 50 100 100
	signals, err := s.GenerateSignals(closesSeries(10, 11, 12, 11, 10, 9, 10, 11, 12))
	require.NoError(t, err)
	assert.Equal(t, map[int]Signal{4: Buy, 7: Sell}, nonHold(signals))
}

func TestRSIThresholdIgnoresPersistentExtremes(t *testing.T) {
	t.Parallel()

	s, err := NewRSIThreshold(5, 30, 70)
	require.NoError(t, err)

	// RSI(5) sits at 80, falls through 40 to 20 and stays oversold for
	// eight bars, then climbs through 60 back to 80 and stays overbought.
	closes := closesSeries(100, 102, 103, 104, 103, 103, 101, 100, 99, 100, 100,
		98, 97, 96, 97, 97, 99, 100, 101, 100, 100, 102, 103)
	rsi, err := indicators.RSI(closes.Closes(), 5)
	require.NoError(t, err)
	for _, i := range []int{4, 5, 17, 19, 20} {
		assert.InDelta(t, 80, rsi[i], 1e-9, "bar %d", i)
	}
	for _, i := range []int{7, 9, 10, 11, 12, 13, 14, 15} {
		assert.InDelta(t, 20, rsi[i], 1e-9, "bar %d", i)
	}

	signals, err := s.GenerateSignals(closes)
	require.NoError(t, err)
	assert.Equal(t, map[int]Signal{7: Buy, 17: Sell}, nonHold(signals))
}

func TestMomentumEarlyExit(t *testing.T) {
	t.Parallel()

	s, err := NewMomentum(1, 0.02)
	require.NoError(t, err)

	// momentum: nan 3% 3% 0.86% -6.5%; the exit fires below half the threshold
	signals, err := s.GenerateSignals(closesSeries(100, 103, 106.09, 107, 100))
	require.NoError(t, err)
	assert.Equal(t, map[int]Signal{1: Buy, 3: Sell}, nonHold(signals))
}

func TestMomentumIgnoresDropWhileFlat(t *testing.T) {
	t.Parallel()

	s, err := NewMomentum(1, 0.02)
	require.NoError(t, err)

	signals, err := s.GenerateSignals(closesSeries(100, 90, 80, 70))
	require.NoError(t, err)
	assert.Empty(t, nonHold(signals))
}

func TestSignalsDoNotLeakBetweenCalls(t *testing.T) {
	t.Parallel()

	s, err := NewRSIThreshold(2, 30, 70)
	require.NoError(t, err)
	series := closesSeries(10, 11, 12, 11, 10, 9)

	first, err := s.GenerateSignals(series)
	require.NoError(t, err)
	second, err := s.GenerateSignals(series)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, map[int]Signal{4: Buy}, nonHold(second))
}

func TestConstructorsRejectBadParams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		build   func() error
		wantErr string
	}{
		{"ma inverted", func() error { _, err := NewMACrossover(50, 20); return err }, "must be less than"},
		{"ma zero", func() error { _, err := NewMACrossover(0, 20); return err }, "must be positive"},
		{"rsi period", func() error { _, err := NewRSIThreshold(0, 30, 70); return err }, "period must be positive"},
		{"rsi levels", func() error { _, err := NewRSIThreshold(14, 70, 30); return err }, "oversold"},
		{"momentum lookback", func() error { _, err := NewMomentum(0, 0.02); return err }, "lookback"},
		{"momentum threshold", func() error { _, err := NewMomentum(20, 0); return err }, "threshold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestByName(t *testing.T) {
	t.Parallel()

	p := config.DefaultStrategyParams()

	tests := []struct {
		name string
		want string
	}{
		{"ma", "Moving Average Crossover(short_window=20, long_window=50)"},
		{" SMA-Cross ", "Moving Average Crossover(short_window=20, long_window=50)"},
		{"rsi", "RSI Strategy(period=14, oversold=30, overbought=70)"},
		{"momentum", "Momentum Strategy(lookback_period=20, threshold=2%)"},
		{"noop", "Noop()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ByName(tt.name, p)
			require.NoError(t, err)
			assert.Equal(t, tt.want, Describe(s))
		})
	}

	_, err := ByName("martingale", p)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown strategy")
}

func TestAll(t *testing.T) {
	t.Parallel()

	all, err := All(config.DefaultStrategyParams())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Moving Average Crossover", all[0].Name())
	assert.Equal(t, "RSI Strategy", all[1].Name())
	assert.Equal(t, "Momentum Strategy", all[2].Name())
}

func TestNoopHoldsEverywhere(t *testing.T) {
	t.Parallel()

	signals, err := NoopStrategy{}.GenerateSignals(closesSeries(1, 2, 3))
	require.NoError(t, err)
	assert.Equal(t, []Signal{Hold, Hold, Hold}, signals)
}
