package cache

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"katalog-hunter/pkg/models"

	_ "modernc.org/sqlite"
)

// Cache keeps the last fresh catalog envelope per target URL in sqlite.
type Cache struct {
	db  *sql.DB
	ttl time.Duration
	now func() time.Time
}

func New(dbPath string, ttl time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS catalog_snapshots (
			target TEXT NOT NULL PRIMARY KEY,
			data TEXT NOT NULL,
			fetched_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Cache{db: db, ttl: ttl, now: time.Now}, nil
}

// Get returns the stored envelope for target while it is younger than the TTL.
func (c *Cache) Get(target string) (*models.Envelope, bool) {
	var data string
	var fetchedAt time.Time

	err := c.db.QueryRow(
		`SELECT data, fetched_at FROM catalog_snapshots WHERE target = ?`,
		target,
	).Scan(&data, &fetchedAt)

	if err != nil {
		return nil, false
	}

	if c.now().Sub(fetchedAt) > c.ttl {
		return nil, false
	}

	var env models.Envelope
	if err := json.Unmarshal([]byte(data), &env); err != nil {
		slog.Warn("cache: failed to unmarshal snapshot", "target", target, "err", err)
		return nil, false
	}

	return &env, true
}

func (c *Cache) Set(target string, env models.Envelope, fetchedAt time.Time) {
	data, err := json.Marshal(env)
	if err != nil {
		slog.Warn("cache: failed to marshal snapshot", "target", target, "err", err)
		return
	}

	_, err = c.db.Exec(
		`INSERT INTO catalog_snapshots (target, data, fetched_at)
		 VALUES (?, ?, ?)
		 ON CONFLICT(target)
		 DO UPDATE SET data = excluded.data, fetched_at = excluded.fetched_at`,
		target, string(data), fetchedAt.UTC(),
	)
	if err != nil {
		slog.Warn("cache: failed to store snapshot", "target", target, "err", err)
	}
}

func (c *Cache) Close() error {
	return c.db.Close()
}
