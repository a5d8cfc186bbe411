// Package indicators provides stateless technical analysis indicators.
//
// Every function takes a price slice and returns a slice of the same length,
// aligned index for index with the input. Values that cannot be computed yet
// (insufficient history) are math.NaN(); callers test them with math.IsNaN.
package indicators

import (
	"fmt"
	"math"
)

func checkPeriod(name string, period int) error {
	if period <= 0 {
		return fmt.Errorf("%s: period must be positive, got %d", name, period)
	}
	return nil
}

func nans(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

// Mean returns the arithmetic mean of the non-NaN values in x, or NaN if
// there are none.
func Mean(x []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

// StdDev returns the sample standard deviation (n-1) of the non-NaN values
// in x, or NaN with fewer than two values.
func StdDev(x []float64) float64 {
	m := Mean(x)
	ss, n := 0.0, 0
	for _, v := range x {
		if math.IsNaN(v) {
			continue
		}
		d := v - m
		ss += d * d
		n++
	}
	if n < 2 {
		return math.NaN()
	}
	return math.Sqrt(ss / float64(n-1))
}

// rolling applies fn to every full window of x. A window holding a NaN
// yields NaN.
func rolling(x []float64, period int, fn func(w []float64) float64) []float64 {
	out := nans(len(x))
	for i := period - 1; i < len(x); i++ {
		w := x[i-period+1 : i+1]
		if hasNaN(w) {
			continue
		}
		out[i] = fn(w)
	}
	return out
}

func hasNaN(w []float64) bool {
	for _, v := range w {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
