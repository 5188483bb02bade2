// Package store is the caller-side result cache. The pipeline itself is a
// pure function; memoization lives here, keyed on the dataset fingerprint
// plus the option fingerprint, so identical invocations can skip the run.
package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Cache memoizes pipeline results in SQLite via modernc.org/sqlite.
type Cache struct {
	db *sql.DB
}

// Open opens (creating if needed) a cache database at the given path and
// configures WAL mode.
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "store: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}

	c := &Cache{db: db}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS results (
	key        TEXT PRIMARY KEY,
	run_id     TEXT NOT NULL,
	csv        BLOB NOT NULL,
	stats      BLOB NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_results_created_at ON results(created_at);
`

func (c *Cache) migrate() error {
	_, err := c.db.Exec(migration)
	return eris.Wrap(err, "store: migrate")
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Key combines a dataset fingerprint and an options fingerprint into one
// cache key.
func Key(datasetFingerprint, optionsFingerprint string) string {
	h := sha256.Sum256([]byte(datasetFingerprint + "|" + optionsFingerprint))
	return hex.EncodeToString(h[:])
}

// CachedResult is one memoized pipeline run: the enriched CSV and the
// statistics JSON exactly as they were produced.
type CachedResult struct {
	RunID     string
	CSV       []byte
	Stats     []byte
	CreatedAt time.Time
}

// Get returns the cached result for key, or nil on a miss.
func (c *Cache) Get(ctx context.Context, key string) (*CachedResult, error) {
	var res CachedResult
	err := c.db.QueryRowContext(ctx,
		`SELECT run_id, csv, stats, created_at FROM results WHERE key = ?`, key,
	).Scan(&res.RunID, &res.CSV, &res.Stats, &res.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: get result")
	}
	return &res, nil
}

// Put stores a result under key, replacing any previous entry, and returns
// the new run id.
func (c *Cache) Put(ctx context.Context, key string, csvData, statsJSON []byte) (string, error) {
	runID := uuid.New().String()
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO results (key, run_id, csv, stats, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET run_id = excluded.run_id, csv = excluded.csv,
		 stats = excluded.stats, created_at = excluded.created_at`,
		key, runID, csvData, statsJSON, time.Now().UTC(),
	)
	if err != nil {
		return "", eris.Wrap(err, "store: put result")
	}
	return runID, nil
}
