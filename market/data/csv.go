package data

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rustyeddy/tradebot/market"
)

// CSVProvider reads <Dir>/<SYMBOL>.csv files of daily bars:
//
//	date,open,high,low,close[,volume]
//
// A header row is optional. When present its column names select the
// fields, so exports with extra columns (Adj Close, Dividends) load too.
// Empty and short rows are skipped.
type CSVProvider struct {
	Dir string
}

func NewCSVProvider(dir string) *CSVProvider {
	return &CSVProvider{Dir: dir}
}

// Path is the file the provider reads for symbol.
func (p *CSVProvider) Path(symbol string) string {
	return filepath.Join(p.Dir, strings.ToUpper(strings.TrimSpace(symbol))+".csv")
}

// Version is the file's size and modification time, or "" when the file
// does not exist.
func (p *CSVProvider) Version(symbol string) (string, error) {
	fi, err := os.Stat(p.Path(symbol))
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("csv: %w", err)
	}
	return fmt.Sprintf("%d-%d", fi.Size(), fi.ModTime().UnixNano()), nil
}

func (p *CSVProvider) Bars(ctx context.Context, symbol string, start, end time.Time) (market.Series, error) {
	if err := ctx.Err(); err != nil {
		return market.Series{}, err
	}

	f, err := os.Open(p.Path(symbol))
	if errors.Is(err, fs.ErrNotExist) {
		return market.Series{}, fmt.Errorf("csv: %w", unavailable(symbol, start, end))
	}
	if err != nil {
		return market.Series{}, fmt.Errorf("csv: %w", err)
	}
	defer f.Close()

	all, err := ReadCSV(f, strings.ToUpper(strings.TrimSpace(symbol)))
	if err != nil {
		return market.Series{}, fmt.Errorf("csv: %s: %w", p.Path(symbol), err)
	}

	s := all.Between(start, end)
	if s.Len() == 0 {
		return market.Series{}, fmt.Errorf("csv: %w", unavailable(symbol, start, end))
	}
	return s, nil
}

// columns maps bar fields to CSV column indexes.
type columns struct {
	date, open, high, low, close, volume int
}

var positional = columns{date: 0, open: 1, high: 2, low: 3, close: 4, volume: 5}

// headerColumns reports whether row is a header and, if so, where each
// field lives.
func headerColumns(row []string) (columns, bool) {
	first := strings.ToLower(strings.TrimSpace(row[0]))
	if first != "date" && first != "time" && first != "timestamp" {
		return columns{}, false
	}
	c := columns{date: 0, open: -1, high: -1, low: -1, close: -1, volume: -1}
	for i, name := range row {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "open":
			c.open = i
		case "high":
			c.high = i
		case "low":
			c.low = i
		case "close":
			c.close = i
		case "volume":
			c.volume = i
		}
	}
	if c.open < 0 || c.high < 0 || c.low < 0 || c.close < 0 {
		return positional, true
	}
	return c, true
}

// ReadCSV parses daily bars from r. Times are truncated to their calendar
// day and the result is sorted by date; a repeated date keeps its last row.
func ReadCSV(r io.Reader, symbol string) (market.Series, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	cols := positional
	sawFirst := false
	byDate := map[time.Time]market.Bar{}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return market.Series{}, err
		}
		if len(row) == 0 {
			continue
		}

		if !sawFirst {
			sawFirst = true
			if c, ok := headerColumns(row); ok {
				cols = c
				continue
			}
		}

		b, ok, err := parseBarRow(row, cols)
		if err != nil {
			return market.Series{}, err
		}
		if !ok {
			continue
		}
		byDate[b.Time] = b
	}

	bars := make([]market.Bar, 0, len(byDate))
	for _, b := range byDate {
		bars = append(bars, b)
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return market.NewSeries(symbol, bars), nil
}

func parseBarRow(row []string, c columns) (market.Bar, bool, error) {
	need := max(c.date, c.open, c.high, c.low, c.close)
	if len(row) <= need {
		return market.Bar{}, false, nil
	}

	ts := strings.TrimSpace(row[c.date])
	if ts == "" {
		return market.Bar{}, false, nil
	}
	t, err := market.ParseDate(ts)
	if err != nil {
		return market.Bar{}, false, err
	}

	b := market.Bar{Time: market.Day(t)}
	fields := []struct {
		idx  int
		name string
		dst  *float64
	}{
		{c.open, "open", &b.Open},
		{c.high, "high", &b.High},
		{c.low, "low", &b.Low},
		{c.close, "close", &b.Close},
		{c.volume, "volume", &b.Volume},
	}
	for _, f := range fields {
		if f.idx < 0 || f.idx >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[f.idx])
		if v == "" {
			continue
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return market.Bar{}, false, fmt.Errorf("bad %s %q on %s: %w", f.name, v, ts, err)
		}
		*f.dst = x
	}
	return b, true, nil
}

// WriteCSV writes s in the format ReadCSV and CSVProvider read.
func WriteCSV(w io.Writer, s market.Series) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"date", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, b := range s.Bars {
		rec := []string{
			b.Time.Format(market.DateLayout),
			formatPrice(b.Open),
			formatPrice(b.High),
			formatPrice(b.Low),
			formatPrice(b.Close),
			formatPrice(b.Volume),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
