package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"mediascan/internal/extract"
	"mediascan/internal/logging"
	"mediascan/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// Database manages all persistence for scanned media records.
type Database struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// Batch is one open write transaction. Each batch carries its own start
// time, so overlapping batches record their durations independently.
type Batch struct {
	tx    *sql.Tx
	start time.Time
}

// New opens (creating if necessary) the database at dbPath and ensures
// the schema exists. dbPath must be the full path to the database file
// and its parent directory must be writable.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Database path: %s", dbPath)

	// WAL mode and a busy timeout keep the single-writer scanner from
	// tripping over reader connections.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=10000&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{
		db:     db,
		dbPath: dbPath,
	}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully at %s", dbPath)
	return d, nil
}

func (d *Database) initialize(ctx context.Context) error {
	schema := `
	-- Main files table, one row per scanned media file
	CREATE TABLE IF NOT EXISTS files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		filepath TEXT NOT NULL UNIQUE,
		filename TEXT NOT NULL,
		original_filename TEXT,
		file_type TEXT NOT NULL,
		file_size INTEGER NOT NULL DEFAULT 0,
		file_hash TEXT,
		perceptual_hash TEXT,
		width INTEGER,
		height INTEGER,
		created_date INTEGER,
		modified_date INTEGER,
		exif_data TEXT,
		description TEXT,
		tags TEXT,
		ai_analyzed INTEGER NOT NULL DEFAULT 0,
		is_duplicate INTEGER NOT NULL DEFAULT 0,
		duplicate_of INTEGER,
		is_junk INTEGER NOT NULL DEFAULT 0,
		junk_reason TEXT,
		scan_date INTEGER,
		FOREIGN KEY (duplicate_of) REFERENCES files(id)
	);

	CREATE INDEX IF NOT EXISTS idx_files_hash ON files(file_hash);
	CREATE INDEX IF NOT EXISTS idx_files_phash ON files(perceptual_hash);
	CREATE INDEX IF NOT EXISTS idx_files_type ON files(file_type);
	CREATE INDEX IF NOT EXISTS idx_files_is_duplicate ON files(is_duplicate);
	CREATE INDEX IF NOT EXISTS idx_files_is_junk ON files(is_junk);
	CREATE INDEX IF NOT EXISTS idx_files_modified ON files(modified_date);

	-- Full-text search over path, name and annotation fields
	CREATE VIRTUAL TABLE IF NOT EXISTS files_fts USING fts5(
		filepath,
		filename,
		description,
		tags,
		content='files',
		content_rowid='id'
	);

	CREATE TRIGGER IF NOT EXISTS files_ai AFTER INSERT ON files BEGIN
		INSERT INTO files_fts(rowid, filepath, filename, description, tags)
		VALUES (new.id, new.filepath, new.filename, new.description, new.tags);
	END;

	CREATE TRIGGER IF NOT EXISTS files_ad AFTER DELETE ON files BEGIN
		INSERT INTO files_fts(files_fts, rowid, filepath, filename, description, tags)
		VALUES ('delete', old.id, old.filepath, old.filename, old.description, old.tags);
	END;

	CREATE TRIGGER IF NOT EXISTS files_au AFTER UPDATE ON files BEGIN
		INSERT INTO files_fts(files_fts, rowid, filepath, filename, description, tags)
		VALUES ('delete', old.id, old.filepath, old.filename, old.description, old.tags);
		INSERT INTO files_fts(rowid, filepath, filename, description, tags)
		VALUES (new.id, new.filepath, new.filename, new.description, new.tags);
	END;
	`

	_, err := d.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// BeginBatch starts a transaction for batched writes. The caller is
// responsible for calling EndBatch when done.
func (d *Database) BeginBatch() (*Batch, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()

	// Background context: the transaction's lifetime is managed by
	// EndBatch, a deferred cancel here would kill it on return.
	tx, err := d.db.BeginTx(context.Background(), nil)
	if err != nil {
		return nil, err
	}

	return &Batch{tx: tx, start: start}, nil
}

// EndBatch commits the batch, or rolls it back when err is non-nil.
func (d *Database) EndBatch(b *Batch, err error) error {
	duration := time.Since(b.start).Seconds()

	if err != nil {
		metrics.DBTransactionDuration.WithLabelValues("rollback").Observe(duration)
		if rbErr := b.tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return err
	}

	metrics.DBTransactionDuration.WithLabelValues("commit").Observe(duration)
	return b.tx.Commit()
}

// UpsertRecord inserts or updates a record by path within a batch and
// returns the record's id. Extraction fields are overwritten, not
// merged; annotation fields (description, tags, ai_analyzed) and
// duplicate links are left to their own writers.
func (d *Database) UpsertRecord(b *Batch, rec *MediaRecord) (int64, error) {
	start := time.Now()

	exifJSON, err := marshalEXIF(rec.EXIF)
	if err != nil {
		return 0, fmt.Errorf("failed to encode EXIF for %s: %w", rec.Path, err)
	}

	query := `
	INSERT INTO files (
		filepath, filename, original_filename, file_type, file_size,
		file_hash, perceptual_hash, width, height,
		created_date, modified_date, exif_data,
		is_junk, junk_reason, scan_date
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(filepath) DO UPDATE SET
		filename = excluded.filename,
		file_type = excluded.file_type,
		file_size = excluded.file_size,
		file_hash = excluded.file_hash,
		perceptual_hash = excluded.perceptual_hash,
		width = excluded.width,
		height = excluded.height,
		created_date = excluded.created_date,
		modified_date = excluded.modified_date,
		exif_data = excluded.exif_data,
		is_junk = excluded.is_junk,
		junk_reason = excluded.junk_reason,
		scan_date = excluded.scan_date
	RETURNING id
	`

	var id int64
	err = b.tx.QueryRowContext(context.Background(), query,
		rec.Path,
		rec.Name,
		nullString(rec.OriginalName),
		rec.Kind,
		rec.Size,
		nullString(rec.Digest),
		nullString(rec.Perceptual),
		nullInt(rec.Width),
		nullInt(rec.Height),
		nullTime(rec.CreatedAt),
		nullTime(rec.ModifiedAt),
		exifJSON,
		rec.IsJunk,
		nullString(rec.JunkReason),
		nullTime(rec.ScannedAt),
	).Scan(&id)
	recordQuery("upsert_record", start, err)
	if err != nil {
		return 0, err
	}

	rec.ID = id
	return id, nil
}

// ClearDuplicateLinks removes every duplicate mark before a resolver run
// rewrites them from scratch.
func (d *Database) ClearDuplicateLinks() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx,
		"UPDATE files SET is_duplicate = 0, duplicate_of = NULL WHERE is_duplicate = 1 OR duplicate_of IS NOT NULL")
	recordQuery("clear_duplicate_links", start, err)
	if err != nil {
		return err
	}
	if rows, rowsErr := result.RowsAffected(); rowsErr == nil && rows > 0 {
		metrics.DBRowsAffected.WithLabelValues("clear_duplicate_links").Observe(float64(rows))
	}
	return nil
}

// MarkDuplicate links a record to its canonical original. The write is
// guarded on the record not already being a duplicate, preserving the
// no-chain invariant even under concurrent link application.
func (d *Database) MarkDuplicate(id, originalID int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx,
		"UPDATE files SET is_duplicate = 1, duplicate_of = ? WHERE id = ? AND is_duplicate = 0",
		originalID, id)
	recordQuery("mark_duplicate", start, err)
	return err
}

// recordQuery records query metrics.
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

func marshalEXIF(exif map[string]extract.MetaValue) (sql.NullString, error) {
	if len(exif) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(exif)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func marshalTags(tags []string) (sql.NullString, error) {
	if len(tags) == 0 {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(i int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(i), Valid: i != 0}
}

func nullTime(t time.Time) sql.NullInt64 {
	return sql.NullInt64{Int64: t.Unix(), Valid: !t.IsZero()}
}
