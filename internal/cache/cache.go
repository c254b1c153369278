// Package cache persists parsed document outlines and build history in SQLite
// so unchanged documents are not re-parsed between builds.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/apiref/internal/docmodel"
)

// InMemory is the dsn for a throwaway cache.
const InMemory = ":memory:"

// SQLiteCache stores one row per document path.
type SQLiteCache struct {
	db *sql.DB
	mu sync.RWMutex

	hits   atomic.Int64
	misses atomic.Int64
}

// Open opens (or creates) the cache database at dsn.
func Open(dsn string) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent.
	db.SetMaxOpenConns(1)

	c := &SQLiteCache{db: db}
	if err := c.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return c, nil
}

func (c *SQLiteCache) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		path TEXT PRIMARY KEY,
		fingerprint TEXT NOT NULL,
		doc_id TEXT NOT NULL,
		title TEXT NOT NULL,
		outline TEXT NOT NULL,
		max_depth INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS builds (
		build_id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		status TEXT NOT NULL,
		documents INTEGER NOT NULL,
		nav_entries INTEGER NOT NULL,
		stale_anchors INTEGER NOT NULL,
		set_hash TEXT NOT NULL,
		config_hash TEXT NOT NULL DEFAULT '',
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_builds_started ON builds(started_at);
	`
	if _, err := c.db.Exec(schema); err != nil {
		return err
	}
	return c.migrate()
}

// migrate adds columns missing from databases created by older versions.
// Rows migrated with max_depth 0 never match a lookup and are re-parsed.
func (c *SQLiteCache) migrate() error {
	rows, err := c.db.Query("SELECT name FROM pragma_table_info('documents')")
	if err != nil {
		return err
	}
	defer func() { _ = rows.Close() }()

	hasDepth := false
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return err
		}
		if name == "max_depth" {
			hasDepth = true
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if hasDepth {
		return nil
	}
	_, err = c.db.Exec("ALTER TABLE documents ADD COLUMN max_depth INTEGER NOT NULL DEFAULT 0")
	return err
}

// Close closes the database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}

// Lookup returns the cached outline for path when its fingerprint and the
// outline depth both match.
func (c *SQLiteCache) Lookup(path, fingerprint string, maxDepth int) (docmodel.TableOfContents, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var outline string
	err := c.db.QueryRowContext(context.Background(),
		"SELECT outline FROM documents WHERE path = ? AND fingerprint = ? AND max_depth = ?",
		path, fingerprint, maxDepth,
	).Scan(&outline)
	if err != nil {
		c.misses.Add(1)
		return docmodel.TableOfContents{}, false
	}

	var toc docmodel.TableOfContents
	if err := json.Unmarshal([]byte(outline), &toc); err != nil {
		c.misses.Add(1)
		return docmodel.TableOfContents{}, false
	}
	c.hits.Add(1)
	return toc, true
}

// Store upserts the row for doc, whose outline was extracted with maxDepth.
func (c *SQLiteCache) Store(doc *docmodel.Document, maxDepth int) error {
	outline, err := json.Marshal(doc.TableOfContents)
	if err != nil {
		return fmt.Errorf("marshal outline: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	_, err = c.db.ExecContext(context.Background(), `
		INSERT INTO documents (path, fingerprint, doc_id, title, outline, max_depth, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			fingerprint = excluded.fingerprint,
			doc_id = excluded.doc_id,
			title = excluded.title,
			outline = excluded.outline,
			max_depth = excluded.max_depth,
			updated_at = excluded.updated_at`,
		doc.Path, doc.Fingerprint, doc.ID, doc.Frontmatter.Title, string(outline), maxDepth, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// Prune deletes rows whose path is not in keep and returns how many went.
func (c *SQLiteCache) Prune(ctx context.Context, keep []string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin prune: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "CREATE TEMP TABLE IF NOT EXISTS keep_paths (path TEXT PRIMARY KEY)"); err != nil {
		return 0, fmt.Errorf("create keep table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM keep_paths"); err != nil {
		return 0, fmt.Errorf("reset keep table: %w", err)
	}
	for _, p := range keep {
		if _, err := tx.ExecContext(ctx, "INSERT OR IGNORE INTO keep_paths (path) VALUES (?)", p); err != nil {
			return 0, fmt.Errorf("insert keep path: %w", err)
		}
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE path NOT IN (SELECT path FROM keep_paths)")
	if err != nil {
		return 0, fmt.Errorf("prune documents: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit prune: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Stats reports lookup hits and misses since Open.
func (c *SQLiteCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of cached documents.
func (c *SQLiteCache) Len(ctx context.Context) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents").Scan(&n); err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}
