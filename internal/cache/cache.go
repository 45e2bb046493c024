package cache

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/crypto/sha3"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/sidenote/internal/model"
)

// FileName is the name of the database file inside the cache directory.
const FileName = "sidenote.db"

// ErrNotFound is returned by Open when the database does not exist and
// Options.CreateIfNotExists is false.
var ErrNotFound = errors.New("render cache not found")

// DB stores rendered documents keyed by their inputs.
type DB struct {
	db     *sql.DB
	dbPath string
}

// Options configures DB behavior.
type Options struct {
	// CreateIfNotExists creates the directory and database file if needed.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so concurrent batch workers
	// can read while one of them writes.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the render cache in dir.
func Open(dir string, opts Options) (*DB, error) {
	dbPath := filepath.Join(dir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check cache path: %w", err)
		}
	} else if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	c := &DB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := c.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return c, nil
}

// Close closes the database connection.
func (c *DB) Close() error {
	return c.db.Close()
}

// Path returns the database file path.
func (c *DB) Path() string {
	return c.dbPath
}

func (c *DB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS renders (
		key TEXT PRIMARY KEY,
		path TEXT NOT NULL,
		doc_id TEXT NOT NULL DEFAULT '',
		html TEXT NOT NULL,
		notes_json TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_renders_path ON renders(path);
	CREATE INDEX IF NOT EXISTS idx_renders_created ON renders(created_at);
	`
	_, err := c.db.ExecContext(context.Background(), schema)
	return err
}

// Key returns the cache key for a render of source with the given document
// id and render flags. Flag order does not matter.
func Key(source, docID string, flags ...string) string {
	h := sha3.New256()
	h.Write([]byte(source))
	h.Write([]byte{0})
	h.Write([]byte(docID))
	sorted := slices.Clone(flags)
	slices.Sort(sorted)
	for _, f := range sorted {
		h.Write([]byte{0})
		h.Write([]byte(f))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Entry is one cached render.
type Entry struct {
	Key       string
	Path      string
	DocID     string
	HTML      string
	Sidenotes []model.Sidenote
	CreatedAt time.Time
}

// Put inserts or replaces an entry. A zero CreatedAt means now.
func (c *DB) Put(ctx context.Context, e *Entry) error {
	notesJSON, err := json.Marshal(e.Sidenotes)
	if err != nil {
		return fmt.Errorf("failed to serialize sidenotes: %w", err)
	}

	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	query := `
	INSERT INTO renders (key, path, doc_id, html, notes_json, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		path = excluded.path,
		doc_id = excluded.doc_id,
		html = excluded.html,
		notes_json = excluded.notes_json,
		created_at = excluded.created_at
	`
	_, err = c.db.ExecContext(ctx, query,
		e.Key,
		e.Path,
		e.DocID,
		e.HTML,
		string(notesJSON),
		created.UTC().Format(sqliteTimeFormat),
	)
	if err != nil {
		return fmt.Errorf("failed to store render: %w", err)
	}
	return nil
}

// Get returns the entry stored under key, or nil when there is none.
func (c *DB) Get(ctx context.Context, key string) (*Entry, error) {
	query := `
	SELECT key, path, doc_id, html, notes_json, created_at
	FROM renders
	WHERE key = ?
	`

	var e Entry
	var notesJSON, created string
	err := c.db.QueryRowContext(ctx, query, key).Scan(
		&e.Key,
		&e.Path,
		&e.DocID,
		&e.HTML,
		&notesJSON,
		&created,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get render: %w", err)
	}

	e.CreatedAt = parseTimestamp(created)
	if err := json.Unmarshal([]byte(notesJSON), &e.Sidenotes); err != nil {
		return nil, fmt.Errorf("failed to parse sidenotes: %w", err)
	}
	if e.Sidenotes == nil {
		e.Sidenotes = []model.Sidenote{}
	}
	return &e, nil
}

// Stats describes the cache contents.
type Stats struct {
	Entries int       `json:"entries"`
	Bytes   int64     `json:"bytes"`
	Oldest  time.Time `json:"oldest"`
	Newest  time.Time `json:"newest"`
}

// Stats returns the number of entries, the stored HTML size and the age
// range of the entries.
func (c *DB) Stats(ctx context.Context) (Stats, error) {
	query := `
	SELECT COUNT(*), COALESCE(SUM(LENGTH(html)), 0), MIN(created_at), MAX(created_at)
	FROM renders
	`

	var s Stats
	var oldest, newest sql.NullString
	if err := c.db.QueryRowContext(ctx, query).Scan(&s.Entries, &s.Bytes, &oldest, &newest); err != nil {
		return Stats{}, fmt.Errorf("failed to read cache stats: %w", err)
	}
	if oldest.Valid {
		s.Oldest = parseTimestamp(oldest.String)
	}
	if newest.Valid {
		s.Newest = parseTimestamp(newest.String)
	}
	return s, nil
}

// Clear removes every entry and returns how many were removed.
func (c *DB) Clear(ctx context.Context) (int64, error) {
	result, err := c.db.ExecContext(ctx, "DELETE FROM renders")
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache: %w", err)
	}
	return result.RowsAffected()
}

// Prune removes entries created more than olderThan ago.
func (c *DB) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UTC().Format(sqliteTimeFormat)
	result, err := c.db.ExecContext(ctx, "DELETE FROM renders WHERE created_at < ?", cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}
	return result.RowsAffected()
}

const sqliteTimeFormat = "2006-01-02 15:04:05"

var timestampFormats = []string{
	sqliteTimeFormat,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999",
}

// parseTimestamp parses the formats SQLite may return. It returns the
// zero time when none matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
