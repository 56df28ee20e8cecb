package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/entityscan/internal/annotation"
	"github.com/nao1215/entityscan/internal/model"
)

// FileName is the name of the history database inside its directory.
const FileName = "entityscan.db"

// ErrNotFound is returned when no extraction has the requested id.
var ErrNotFound = errors.New("database: extraction not found")

// timeLayout is fixed width so that text comparison orders timestamps.
const timeLayout = "2006-01-02 15:04:05.000000"

// HistoryDB stores past extractions.
type HistoryDB struct {
	db     *sql.DB
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS extractions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		source_kind TEXT NOT NULL,
		source_name TEXT,
		text_digest TEXT,
		lang TEXT,
		entity_count INTEGER NOT NULL DEFAULT 0,
		elapsed_ms INTEGER NOT NULL DEFAULT 0,
		rows_json TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_extractions_timestamp ON extractions(timestamp);
	CREATE INDEX IF NOT EXISTS idx_extractions_digest ON extractions(text_digest);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// SaveExtraction stores e and sets e.ID to the new row id.
func (h *HistoryDB) SaveExtraction(ctx context.Context, e *model.Extraction) (int64, error) {
	rows := e.Rows
	if rows == nil {
		rows = []annotation.Row{}
	}
	rowsJSON, err := json.Marshal(rows)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize rows: %w", err)
	}

	date := e.DateExtracted
	if date.IsZero() {
		date = time.Now()
	}

	query := `
	INSERT INTO extractions (timestamp, source_kind, source_name, text_digest, lang, entity_count, elapsed_ms, rows_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := h.db.ExecContext(ctx, query,
		formatTimestamp(date),
		e.Source.Kind,
		e.Source.Name,
		e.TextDigest,
		e.Lang,
		len(rows),
		e.Elapsed.Milliseconds(),
		string(rowsJSON),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save extraction: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get extraction id: %w", err)
	}
	e.ID = id
	return id, nil
}

// Entry is one history listing line without its rows.
type Entry struct {
	ID          int64         `json:"id"`
	Timestamp   time.Time     `json:"timestamp"`
	Source      model.Source  `json:"source"`
	TextDigest  string        `json:"text_digest"`
	Lang        string        `json:"lang,omitempty"`
	EntityCount int           `json:"entity_count"`
	Elapsed     time.Duration `json:"elapsed_ns"`
}

// ListOptions filters ListExtractions.
type ListOptions struct {
	// Limit caps the number of entries. Zero or negative means no limit.
	Limit int

	// Since drops entries older than this time when non-zero.
	Since time.Time

	// TextDigest restricts the listing to one text when non-empty.
	TextDigest string
}

// ListExtractions returns history entries, newest first.
func (h *HistoryDB) ListExtractions(ctx context.Context, opts ListOptions) ([]Entry, error) {
	query := `
	SELECT id, timestamp, source_kind, source_name, text_digest, lang, entity_count, elapsed_ms
	FROM extractions
	WHERE 1 = 1`
	var args []any

	if !opts.Since.IsZero() {
		query += ` AND timestamp >= ?`
		args = append(args, formatTimestamp(opts.Since))
	}
	if opts.TextDigest != "" {
		query += ` AND text_digest = ?`
		args = append(args, opts.TextDigest)
	}
	query += ` ORDER BY timestamp DESC, id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list extractions: %w", err)
	}
	defer rows.Close()

	var results []Entry
	for rows.Next() {
		var (
			entry      Entry
			timestamp  string
			sourceName sql.NullString
			digest     sql.NullString
			lang       sql.NullString
			elapsedMS  int64
		)
		if err := rows.Scan(&entry.ID, &timestamp, &entry.Source.Kind, &sourceName, &digest, &lang, &entry.EntityCount, &elapsedMS); err != nil {
			return nil, fmt.Errorf("failed to scan extraction: %w", err)
		}
		entry.Timestamp = parseTimestamp(timestamp)
		entry.Source.Name = sourceName.String
		entry.TextDigest = digest.String
		entry.Lang = lang.String
		entry.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		results = append(results, entry)
	}

	return results, rows.Err()
}

// GetExtractionByID loads a saved extraction including its rows.
// It returns ErrNotFound when id does not exist.
func (h *HistoryDB) GetExtractionByID(ctx context.Context, id int64) (*model.Extraction, error) {
	query := `
	SELECT timestamp, source_kind, source_name, text_digest, lang, elapsed_ms, rows_json
	FROM extractions
	WHERE id = ?
	`

	var (
		timestamp  string
		sourceName sql.NullString
		digest     sql.NullString
		lang       sql.NullString
		elapsedMS  int64
		rowsJSON   string
	)
	e := &model.Extraction{ID: id, UnitsLeft: -1}
	err := h.db.QueryRowContext(ctx, query, id).Scan(&timestamp, &e.Source.Kind, &sourceName, &digest, &lang, &elapsedMS, &rowsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get extraction: %w", err)
	}

	e.DateExtracted = parseTimestamp(timestamp)
	e.Source.Name = sourceName.String
	e.TextDigest = digest.String
	e.Lang = lang.String
	e.Elapsed = time.Duration(elapsedMS) * time.Millisecond

	if err := json.Unmarshal([]byte(rowsJSON), &e.Rows); err != nil {
		return nil, fmt.Errorf("failed to parse rows: %w", err)
	}
	if e.Rows == nil {
		e.Rows = []annotation.Row{}
	}

	return e, nil
}

// DeleteBefore removes extractions older than t and returns how many were removed.
func (h *HistoryDB) DeleteBefore(ctx context.Context, t time.Time) (int64, error) {
	result, err := h.db.ExecContext(ctx, `DELETE FROM extractions WHERE timestamp < ?`, formatTimestamp(t))
	if err != nil {
		return 0, fmt.Errorf("failed to delete extractions: %w", err)
	}
	return result.RowsAffected()
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	timeLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// parseTimestamp tries each known format and returns the zero time when none match.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
