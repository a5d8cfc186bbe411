package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/rustyeddy/tradebot/internal/logger"
	"github.com/rustyeddy/tradebot/market"
)

// cacheSchemaVersion is stored in PRAGMA user_version; a database written
// with another version is rebuilt on open.
const cacheSchemaVersion = 2

const cacheSchema = `
CREATE TABLE IF NOT EXISTS fetches (
	source TEXT NOT NULL,
	symbol TEXT NOT NULL,
	range_start TEXT NOT NULL,
	range_end TEXT NOT NULL,
	version TEXT NOT NULL,
	fetched_at DATETIME NOT NULL,
	rows INTEGER NOT NULL,
	PRIMARY KEY (source, symbol, range_start, range_end)
);

CREATE TABLE IF NOT EXISTS bars (
	source TEXT NOT NULL,
	symbol TEXT NOT NULL,
	range_start TEXT NOT NULL,
	range_end TEXT NOT NULL,
	date TEXT NOT NULL,
	open REAL NOT NULL,
	high REAL NOT NULL,
	low REAL NOT NULL,
	close REAL NOT NULL,
	volume REAL NOT NULL,
	PRIMARY KEY (source, symbol, range_start, range_end, date)
);
`

// SQLiteCache is a Provider that remembers every (symbol, start, end)
// request it forwards to its upstream. Entries are namespaced by source, so
// one database can sit in front of several providers. A cached range is
// served without calling the upstream unless the upstream is Versioned and
// reports a different version for the symbol. Failed fetches are not cached.
type SQLiteCache struct {
	db       *sql.DB
	source   string
	upstream Provider
	log      *zap.Logger
}

// cacheKey identifies one cached request.
type cacheKey struct {
	source, symbol, start, end string
}

// NewSQLiteCache opens (or creates) the cache database at path. source
// names the upstream ("csv", "alpaca").
func NewSQLiteCache(path, source string, upstream Provider, log *zap.Logger) (*SQLiteCache, error) {
	if upstream == nil {
		return nil, fmt.Errorf("cache: upstream provider is required")
	}
	if source == "" {
		return nil, fmt.Errorf("cache: source is required")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cache: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: schema: %w", err)
	}

	return &SQLiteCache{db: db, source: source, upstream: upstream, log: logger.OrNop(log)}, nil
}

func migrate(db *sql.DB) error {
	var v int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&v); err != nil {
		return err
	}
	if v != cacheSchemaVersion {
		if _, err := db.Exec(`DROP TABLE IF EXISTS fetches; DROP TABLE IF EXISTS bars;`); err != nil {
			return err
		}
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		return err
	}
	_, err := db.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, cacheSchemaVersion))
	return err
}

func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

func (c *SQLiteCache) key(symbol string, start, end time.Time) cacheKey {
	day := func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(market.DateLayout)
	}
	return cacheKey{
		source: c.source,
		symbol: strings.ToUpper(strings.TrimSpace(symbol)),
		start:  day(start),
		end:    day(end),
	}
}

// version asks a Versioned upstream for the symbol's current version.
func (c *SQLiteCache) version(symbol string) (string, error) {
	v, ok := c.upstream.(Versioned)
	if !ok {
		return "", nil
	}
	return v.Version(symbol)
}

func (c *SQLiteCache) Bars(ctx context.Context, symbol string, start, end time.Time) (market.Series, error) {
	k := c.key(symbol, start, end)
	ver, err := c.version(symbol)
	if err != nil {
		return market.Series{}, fmt.Errorf("cache: %s: %w", k.symbol, err)
	}

	s, hit, err := c.load(ctx, k, ver)
	if err != nil {
		return market.Series{}, err
	}
	if hit {
		c.log.Debug("cache hit", zap.String("source", k.source), zap.String("symbol", k.symbol), zap.Int("bars", s.Len()))
		return s, nil
	}

	s, err = c.upstream.Bars(ctx, symbol, start, end)
	if err != nil {
		return market.Series{}, err
	}
	if err := c.store(ctx, k, ver, s); err != nil {
		c.log.Warn("cache store failed", zap.String("symbol", k.symbol), zap.Error(err))
	}
	return s, nil
}

func (c *SQLiteCache) load(ctx context.Context, k cacheKey, ver string) (market.Series, bool, error) {
	sym := k.symbol
	var n int
	var stored string
	err := c.db.QueryRowContext(ctx, `
		SELECT rows, version FROM fetches
		WHERE source = ? AND symbol = ? AND range_start = ? AND range_end = ?`,
		k.source, sym, k.start, k.end).Scan(&n, &stored)
	if errors.Is(err, sql.ErrNoRows) {
		return market.Series{}, false, nil
	}
	if err != nil {
		return market.Series{}, false, fmt.Errorf("cache: lookup %s: %w", sym, err)
	}
	if stored != ver {
		c.log.Debug("cache stale", zap.String("symbol", sym), zap.String("cached", stored), zap.String("current", ver))
		return market.Series{}, false, nil
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT date, open, high, low, close, volume FROM bars
		WHERE source = ? AND symbol = ? AND range_start = ? AND range_end = ?
		ORDER BY date`, k.source, sym, k.start, k.end)
	if err != nil {
		return market.Series{}, false, fmt.Errorf("cache: load %s: %w", sym, err)
	}
	defer rows.Close()

	bars := make([]market.Bar, 0, n)
	for rows.Next() {
		var date string
		var b market.Bar
		if err := rows.Scan(&date, &b.Open, &b.High, &b.Low, &b.Close, &b.Volume); err != nil {
			return market.Series{}, false, fmt.Errorf("cache: scan %s: %w", sym, err)
		}
		t, err := market.ParseDate(date)
		if err != nil {
			return market.Series{}, false, fmt.Errorf("cache: %s: %w", sym, err)
		}
		b.Time = t
		bars = append(bars, b)
	}
	if err := rows.Err(); err != nil {
		return market.Series{}, false, fmt.Errorf("cache: load %s: %w", sym, err)
	}
	// An incomplete entry is refetched.
	if len(bars) != n || n == 0 {
		return market.Series{}, false, nil
	}
	return market.NewSeries(sym, bars), true, nil
}

func (c *SQLiteCache) store(ctx context.Context, k cacheKey, ver string, s market.Series) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM bars WHERE source = ? AND symbol = ? AND range_start = ? AND range_end = ?`,
		k.source, k.symbol, k.start, k.end); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bars (source, symbol, range_start, range_end, date, open, high, low, close, volume)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, b := range s.Bars {
		if _, err := stmt.ExecContext(ctx, k.source, k.symbol, k.start, k.end, b.Date().Format(market.DateLayout),
			b.Open, b.High, b.Low, b.Close, b.Volume); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO fetches (source, symbol, range_start, range_end, version, fetched_at, rows)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		k.source, k.symbol, k.start, k.end, ver, time.Now().UTC(), s.Len()); err != nil {
		return err
	}

	return tx.Commit()
}

// Clear removes every cached range and returns how many were dropped.
func (c *SQLiteCache) Clear(ctx context.Context) (int64, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("cache: clear: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM fetches`)
	if err != nil {
		return 0, fmt.Errorf("cache: clear: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM bars`); err != nil {
		return 0, fmt.Errorf("cache: clear: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("cache: clear: %w", err)
	}

	n, _ := res.RowsAffected()
	return n, nil
}
