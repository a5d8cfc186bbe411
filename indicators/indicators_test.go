package indicators

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertSeries(t *testing.T, want, got []float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		if math.IsNaN(want[i]) {
			assert.True(t, math.IsNaN(got[i]), "index %d: want NaN, got %v", i, got[i])
			continue
		}
		assert.InDelta(t, want[i], got[i], 1e-9, "index %d", i)
	}
}

var nan = math.NaN()

func TestSMA(t *testing.T) {
	t.Parallel()

	got, err := SMA([]float64{1, 2, 3, 4, 5}, 3)
	require.NoError(t, err)
	assertSeries(t, []float64{nan, nan, 2, 3, 4}, got)

	_, err = SMA([]float64{1}, 0)
	assert.Error(t, err)
}

func TestEMA(t *testing.T) {
	t.Parallel()

	got, err := EMA([]float64{1, 2, 3}, 3)
	require.NoError(t, err)
	assertSeries(t, []float64{1, 1.5, 2.25}, got)
}

func TestRSI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		prices []float64
		period int
		want   []float64
	}{
		{"mixed", []float64{1, 2, 3, 2}, 2, []float64{nan, 100, 100, 50}},
		{"flat is undefined", []float64{5, 5, 5}, 2, []float64{nan, nan, nan}},
		{"falling", []float64{5, 4, 3}, 2, []float64{nan, 0, 0}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := RSI(tt.prices, tt.period)
			require.NoError(t, err)
			assertSeries(t, tt.want, got)
		})
	}
}

func TestMomentum(t *testing.T) {
	t.Parallel()

	got, err := Momentum([]float64{100, 110, 121}, 1)
	require.NoError(t, err)
	assertSeries(t, []float64{nan, 10, 10}, got)

	got, err = Momentum([]float64{100, 110, 121}, 2)
	require.NoError(t, err)
	assertSeries(t, []float64{nan, nan, 21}, got)
}

func TestMACD(t *testing.T) {
	t.Parallel()

	prices := []float64{10, 11, 12, 13, 12, 11, 12, 13, 14, 15}
	got, err := MACD(prices, 3, 6, 2)
	require.NoError(t, err)
	require.Len(t, got.MACD, len(prices))
	assert.Equal(t, 0.0, got.MACD[0])
	for i := range prices {
		assert.InDelta(t, got.MACD[i]-got.Signal[i], got.Histogram[i], 1e-12)
	}

	_, err = MACD(prices, 6, 3, 2)
	assert.Error(t, err)
}

func TestBollinger(t *testing.T) {
	t.Parallel()

	got, err := Bollinger([]float64{1, 2, 3}, 3, 2)
	require.NoError(t, err)
	assertSeries(t, []float64{nan, nan, 4}, got.Upper)
	assertSeries(t, []float64{nan, nan, 2}, got.Middle)
	assertSeries(t, []float64{nan, nan, 0}, got.Lower)
}

func TestATR(t *testing.T) {
	t.Parallel()

	got, err := ATR([]float64{10, 11, 12}, []float64{8, 9, 10}, []float64{9, 10, 11}, 2)
	require.NoError(t, err)
	assertSeries(t, []float64{nan, 2, 2}, got)

	_, err = ATR([]float64{1}, []float64{1, 2}, []float64{1}, 2)
	assert.Error(t, err)
}

func TestTrueRange(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 10.0, trueRange(110, 100, 104))
	assert.Equal(t, 15.0, trueRange(110, 100, 95))
}

func TestStochastic(t *testing.T) {
	t.Parallel()

	k, d, err := Stochastic([]float64{10, 12, 14}, []float64{8, 9, 10}, []float64{9, 11, 13}, 2, 2)
	require.NoError(t, err)
	assertSeries(t, []float64{nan, 75, 80}, k)
	assertSeries(t, []float64{nan, nan, 77.5}, d)
}

func TestMeanStdDev(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 2.0, Mean([]float64{1, nan, 3}), 1e-12)
	assert.InDelta(t, 1.0, StdDev([]float64{1, 2, 3}), 1e-12)
	assert.True(t, math.IsNaN(StdDev([]float64{1})))
	assert.True(t, math.IsNaN(Mean(nil)))
}
