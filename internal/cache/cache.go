package cache

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// TagCache stores remote tags keyed by file path. An entry is only returned
// while the file's size, modification time and the model that produced it
// are unchanged.
type TagCache struct {
	db *sql.DB
}

// Open opens or creates the cache database at path
func Open(path string) (*TagCache, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Scan workers share one connection; sqlite serialises writers anyway
	db.SetMaxOpenConns(1)

	c := &TagCache{db: db}
	if err := c.configure(); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := c.initSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return c, nil
}

func (c *TagCache) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := c.db.Exec(p); err != nil {
			return fmt.Errorf("sqlite pragma %q: %w", p, err)
		}
	}
	return nil
}

func (c *TagCache) initSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS remote_tags (
			path TEXT PRIMARY KEY,
			size INTEGER NOT NULL,
			mod_time INTEGER NOT NULL,
			model TEXT NOT NULL DEFAULT '',
			tags TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_remote_tags_created ON remote_tags(created_at)`,
	}
	for _, stmt := range stmts {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Close closes the database
func (c *TagCache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Get returns cached tags for a file. The bool is false on a miss or when
// the stored entry is stale.
func (c *TagCache) Get(path string, size int64, modTime time.Time, model string) ([]string, bool, error) {
	var (
		storedSize  int64
		storedMod   int64
		storedModel string
		tags        string
	)
	err := c.db.QueryRow(
		`SELECT size, mod_time, model, tags FROM remote_tags WHERE path = ?`, path,
	).Scan(&storedSize, &storedMod, &storedModel, &tags)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("query cache: %w", err)
	}

	if storedSize != size || storedMod != modTime.Unix() || storedModel != model {
		return nil, false, nil
	}
	return splitTags(tags), true, nil
}

// Put stores tags for a file, replacing any previous entry
func (c *TagCache) Put(path string, size int64, modTime time.Time, model string, tags []string) error {
	_, err := c.db.Exec(`
		INSERT INTO remote_tags (path, size, mod_time, model, tags, created_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(path) DO UPDATE SET
			size = excluded.size,
			mod_time = excluded.mod_time,
			model = excluded.model,
			tags = excluded.tags,
			created_at = excluded.created_at
	`, path, size, modTime.Unix(), model, strings.Join(tags, ","))
	if err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}

// Len returns the number of cached entries
func (c *TagCache) Len() (int, error) {
	var n int
	if err := c.db.QueryRow(`SELECT COUNT(*) FROM remote_tags`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cache: %w", err)
	}
	return n, nil
}

// Purge removes entries older than maxAge and returns how many were removed.
// A zero maxAge removes everything.
func (c *TagCache) Purge(maxAge time.Duration) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if maxAge <= 0 {
		res, err = c.db.Exec(`DELETE FROM remote_tags`)
	} else {
		cutoff := time.Now().UTC().Add(-maxAge).Format("2006-01-02 15:04:05")
		res, err = c.db.Exec(`DELETE FROM remote_tags WHERE created_at < ?`, cutoff)
	}
	if err != nil {
		return 0, fmt.Errorf("purge cache: %w", err)
	}
	return res.RowsAffected()
}

func splitTags(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
