package market

import (
	"errors"
	"fmt"
	"time"
)

var ErrEmptySeries = errors.New("market: empty series")

// Series is the time-ordered price history for a single symbol.
type Series struct {
	Symbol string
	Bars   []Bar
}

func NewSeries(symbol string, bars []Bar) Series {
	return Series{Symbol: symbol, Bars: bars}
}

func (s Series) Len() int { return len(s.Bars) }

// Validate checks the invariants every consumer of a Series relies on:
// at least one bar, strictly increasing times and non-negative values.
func (s Series) Validate() error {
	if len(s.Bars) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptySeries, s.Symbol)
	}
	for i, b := range s.Bars {
		if b.Open < 0 || b.High < 0 || b.Low < 0 || b.Close < 0 || b.Volume < 0 {
			return fmt.Errorf("market: %s bar %d (%s) has negative values", s.Symbol, i, b.Time.Format(DateLayout))
		}
		if i > 0 && !b.Time.After(s.Bars[i-1].Time) {
			return fmt.Errorf("market: %s bar %d (%s) not after %s", s.Symbol, i,
				b.Time.Format(DateLayout), s.Bars[i-1].Time.Format(DateLayout))
		}
	}
	return nil
}

func (s Series) First() Bar { return s.Bars[0] }

func (s Series) Last() Bar { return s.Bars[len(s.Bars)-1] }

func (s Series) Closes() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Close
	}
	return out
}

func (s Series) Highs() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.High
	}
	return out
}

func (s Series) Lows() []float64 {
	out := make([]float64, len(s.Bars))
	for i, b := range s.Bars {
		out[i] = b.Low
	}
	return out
}

// CloseOn returns the close of the bar on the given calendar date.
func (s Series) CloseOn(date time.Time) (float64, bool) {
	d := Day(date)
	for _, b := range s.Bars {
		if b.Date().Equal(d) {
			return b.Close, true
		}
	}
	return 0, false
}

// Between returns the bars whose calendar date falls in [start, end].
// A zero start or end leaves that side open.
func (s Series) Between(start, end time.Time) Series {
	out := Series{Symbol: s.Symbol}
	for _, b := range s.Bars {
		d := b.Date()
		if !start.IsZero() && d.Before(Day(start)) {
			continue
		}
		if !end.IsZero() && d.After(Day(end)) {
			continue
		}
		out.Bars = append(out.Bars, b)
	}
	return out
}
