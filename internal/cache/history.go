package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// BuildRecord is one row of build history.
type BuildRecord struct {
	BuildID      string
	StartedAt    time.Time
	Duration     time.Duration
	Status       string
	Documents    int
	NavEntries   int
	StaleAnchors int
	SetHash      string
	ConfigHash   string
	Error        string
}

// RecordBuild appends a build to the history.
func (c *SQLiteCache) RecordBuild(ctx context.Context, rec BuildRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errText sql.NullString
	if rec.Error != "" {
		errText = sql.NullString{String: rec.Error, Valid: true}
	}
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO builds (build_id, started_at, duration_ms, status, documents, nav_entries, stale_anchors, set_hash, config_hash, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.BuildID, rec.StartedAt.UnixMilli(), rec.Duration.Milliseconds(), rec.Status,
		rec.Documents, rec.NavEntries, rec.StaleAnchors, rec.SetHash, rec.ConfigHash, errText,
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	return nil
}

// LastBuild returns the most recent build with the given status, or nil.
func (c *SQLiteCache) LastBuild(ctx context.Context, status string) (*BuildRecord, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var (
		rec       BuildRecord
		startedMS int64
		durMS     int64
		errText   sql.NullString
	)
	err := c.db.QueryRowContext(ctx, `
		SELECT build_id, started_at, duration_ms, status, documents, nav_entries, stale_anchors, set_hash, config_hash, error
		FROM builds WHERE status = ? ORDER BY started_at DESC, rowid DESC LIMIT 1`,
		status,
	).Scan(&rec.BuildID, &startedMS, &durMS, &rec.Status, &rec.Documents, &rec.NavEntries, &rec.StaleAnchors, &rec.SetHash, &rec.ConfigHash, &errText)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last build: %w", err)
	}
	rec.StartedAt = time.UnixMilli(startedMS)
	rec.Duration = time.Duration(durMS) * time.Millisecond
	rec.Error = errText.String
	return &rec, nil
}
