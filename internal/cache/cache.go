// Package cache stores compiled bundles in SQLite, keyed by a hash of the
// source they were compiled from.
package cache

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"
)

var log = commonlog.GetLogger("jitzu.cache")

// ErrNotFound indicates no bundle is stored under the key.
var ErrNotFound = errors.New("bundle not found")

// schemaVersion is mixed into every key so that bundles written by an older
// instruction set are never loaded.
const schemaVersion = "jzb1"

// BundleCache is a SQLite-backed bundle store.
type BundleCache struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Open opens (creating if needed) the cache database at path.
func Open(path string) (*BundleCache, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening cache: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS bundles (
		key TEXT PRIMARY KEY,
		source_file TEXT NOT NULL,
		data BLOB NOT NULL,
		created_at INTEGER NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}
	return &BundleCache{db: db, path: path}, nil
}

// Key derives the cache key of a compilation: the source text and the
// names of the host modules it was compiled against.
func Key(source string, modules []string) string {
	h := sha256.New()
	h.Write([]byte(schemaVersion))
	for _, m := range modules {
		h.Write([]byte{0})
		h.Write([]byte(m))
	}
	h.Write([]byte{1})
	h.Write([]byte(source))
	return hex.EncodeToString(h.Sum(nil))
}

// Get returns the bundle stored under key, or ErrNotFound.
func (c *BundleCache) Get(key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var data []byte
	err := c.db.QueryRow("SELECT data FROM bundles WHERE key = ?", key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying bundle: %w", err)
	}
	log.Debugf("cache hit %s (%d bytes)", key[:12], len(data))
	return data, nil
}

// Put stores a bundle, replacing any previous one under key.
func (c *BundleCache) Put(key, sourceFile string, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.Exec(
		"INSERT OR REPLACE INTO bundles (key, source_file, data, created_at) VALUES (?, ?, ?, ?)",
		key, sourceFile, data, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("saving bundle: %w", err)
	}
	log.Debugf("cached %s for %s (%d bytes)", key[:12], sourceFile, len(data))
	return nil
}

// Prune removes every bundle stored for sourceFile except the one under keep.
func (c *BundleCache) Prune(sourceFile, keep string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	res, err := c.db.Exec("DELETE FROM bundles WHERE source_file = ? AND key != ?", sourceFile, keep)
	if err != nil {
		return 0, fmt.Errorf("pruning bundles: %w", err)
	}
	return res.RowsAffected()
}

// Len returns the number of stored bundles.
func (c *BundleCache) Len() (int, error) {
	var n int
	if err := c.db.QueryRow("SELECT COUNT(*) FROM bundles").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting bundles: %w", err)
	}
	return n, nil
}

// Path returns the database file.
func (c *BundleCache) Path() string { return c.path }

// Close closes the database connection
func (c *BundleCache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
