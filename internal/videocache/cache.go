// Package videocache persists provider video details in SQLite so repeated
// trailer lookups within the TTL skip the network.
//
// Entries older than the TTL are ignored on read and removed by Prune, which
// also trims the table to the newest max_entries rows after every write.
package videocache

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"cinesearch/internal/logging"
	"cinesearch/internal/metrics"
	"cinesearch/internal/services/youtube"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// ErrSchemaMismatch indicates the cache was written by an incompatible build.
var ErrSchemaMismatch = errors.New("video cache schema version mismatch")

// Cache stores video details keyed by video id.
type Cache struct {
	db         *sql.DB
	path       string
	ttl        time.Duration
	maxEntries int
	logger     *slog.Logger
	now        func() time.Time
}

var _ youtube.DetailsCache = (*Cache)(nil)

// Open creates or connects to the cache database at path.
func Open(path string, ttl time.Duration, maxEntries int, logger *slog.Logger) (*Cache, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("video cache path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create video cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	cache := &Cache{
		db:         db,
		path:       path,
		ttl:        ttl,
		maxEntries: maxEntries,
		logger:     logging.NewComponentLogger(logger, "videocache"),
		now:        time.Now,
	}
	if err := cache.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return cache, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Path returns the database location.
func (c *Cache) Path() string {
	if c == nil {
		return ""
	}
	return c.path
}

func (c *Cache) initSchema(ctx context.Context) error {
	var tableExists int
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}

	if tableExists == 0 {
		return c.createSchema(ctx)
	}

	var version int
	err = c.db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: database has version %d, expected %d (delete %s)",
			ErrSchemaMismatch, version, schemaVersion, c.path)
	}
	return nil
}

func (c *Cache) createSchema(ctx context.Context) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}

// Lookup returns the cached details for id when present and fresh.
func (c *Cache) Lookup(ctx context.Context, id string) (youtube.VideoInfo, bool, error) {
	var (
		payload   string
		fetchedAt int64
	)
	err := c.db.QueryRowContext(ctx,
		"SELECT payload_json, fetched_at FROM video_details WHERE video_id = ?", id,
	).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return youtube.VideoInfo{}, false, nil
	}
	if err != nil {
		return youtube.VideoInfo{}, false, fmt.Errorf("query video details: %w", err)
	}
	if c.expired(fetchedAt) {
		return youtube.VideoInfo{}, false, nil
	}
	var info youtube.VideoInfo
	if err := json.Unmarshal([]byte(payload), &info); err != nil {
		return youtube.VideoInfo{}, false, fmt.Errorf("decode cached video %s: %w", id, err)
	}
	return info, true, nil
}

// Store upserts details for info.ID and prunes the table.
func (c *Cache) Store(ctx context.Context, info youtube.VideoInfo) error {
	if strings.TrimSpace(info.ID) == "" {
		return errors.New("video id required")
	}
	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encode video details: %w", err)
	}
	err = retryOnBusy(ctx, func() error {
		_, execErr := c.db.ExecContext(ctx,
			`INSERT INTO video_details (video_id, payload_json, fetched_at) VALUES (?, ?, ?)
             ON CONFLICT(video_id) DO UPDATE SET payload_json = excluded.payload_json, fetched_at = excluded.fetched_at`,
			info.ID, string(payload), c.now().UnixNano(),
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("store video details: %w", err)
	}
	if _, err := c.Prune(ctx); err != nil {
		return err
	}
	return nil
}

// Prune removes expired entries and everything beyond the newest
// maxEntries rows. It returns the number of rows removed.
func (c *Cache) Prune(ctx context.Context) (int64, error) {
	var removed int64
	if c.ttl > 0 {
		cutoff := c.now().Add(-c.ttl).UnixNano()
		res, err := c.db.ExecContext(ctx, "DELETE FROM video_details WHERE fetched_at < ?", cutoff)
		if err != nil {
			return 0, fmt.Errorf("prune expired video details: %w", err)
		}
		n, _ := res.RowsAffected()
		removed += n
	}
	if c.maxEntries > 0 {
		res, err := c.db.ExecContext(ctx,
			`DELETE FROM video_details WHERE video_id NOT IN (
                SELECT video_id FROM video_details ORDER BY fetched_at DESC, video_id LIMIT ?
             )`, c.maxEntries)
		if err != nil {
			return removed, fmt.Errorf("trim video details: %w", err)
		}
		n, _ := res.RowsAffected()
		removed += n
	}
	return removed, nil
}

// Len returns the number of stored rows, fresh or not.
func (c *Cache) Len(ctx context.Context) (int, error) {
	var count int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM video_details").Scan(&count); err != nil {
		return 0, fmt.Errorf("count video details: %w", err)
	}
	return count, nil
}

// Get implements youtube.DetailsCache. Read errors count as misses.
func (c *Cache) Get(ctx context.Context, id string) (youtube.VideoInfo, bool) {
	info, ok, err := c.Lookup(ctx, id)
	switch {
	case err != nil:
		metrics.VideoCacheLookups.WithLabelValues("error").Inc()
		logging.WarnWithContext(logging.WithContext(ctx, c.logger), "video cache read failed", "video_cache_read_failed",
			logging.String("video_id", id),
			logging.Error(err),
			logging.String(logging.FieldImpact, "details fetched from provider"),
		)
		return youtube.VideoInfo{}, false
	case ok:
		metrics.VideoCacheLookups.WithLabelValues("hit").Inc()
	default:
		metrics.VideoCacheLookups.WithLabelValues("miss").Inc()
	}
	return info, ok
}

// Put implements youtube.DetailsCache. Write errors are logged.
func (c *Cache) Put(ctx context.Context, info youtube.VideoInfo) {
	if err := c.Store(ctx, info); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, c.logger), "video cache write failed", "video_cache_write_failed",
			logging.String("video_id", info.ID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check permissions on video_cache.path"),
		)
	}
}

func (c *Cache) expired(fetchedAt int64) bool {
	if c.ttl <= 0 {
		return false
	}
	return c.now().Sub(time.Unix(0, fetchedAt)) > c.ttl
}
