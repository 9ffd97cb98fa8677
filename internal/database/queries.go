package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"mediascan/internal/extract"
	"mediascan/internal/logging"
	"mediascan/internal/mediatypes"
	"mediascan/internal/resolver"
)

const recordColumns = `
	id, filepath, filename, original_filename, file_type, file_size,
	file_hash, perceptual_hash, width, height,
	created_date, modified_date, exif_data,
	description, tags, ai_analyzed,
	is_duplicate, duplicate_of, is_junk, junk_reason, scan_date`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*MediaRecord, error) {
	var (
		rec          MediaRecord
		originalName sql.NullString
		kind         string
		digest       sql.NullString
		perceptual   sql.NullString
		width        sql.NullInt64
		height       sql.NullInt64
		created      sql.NullInt64
		modified     sql.NullInt64
		exifData     sql.NullString
		description  sql.NullString
		tags         sql.NullString
		duplicateOf  sql.NullInt64
		junkReason   sql.NullString
		scanned      sql.NullInt64
	)

	err := row.Scan(
		&rec.ID, &rec.Path, &rec.Name, &originalName, &kind, &rec.Size,
		&digest, &perceptual, &width, &height,
		&created, &modified, &exifData,
		&description, &tags, &rec.AIAnalyzed,
		&rec.IsDuplicate, &duplicateOf, &rec.IsJunk, &junkReason, &scanned,
	)
	if err != nil {
		return nil, err
	}

	rec.Kind = mediatypes.Kind(kind)
	rec.OriginalName = originalName.String
	rec.Digest = digest.String
	rec.Perceptual = perceptual.String
	rec.Width = int(width.Int64)
	rec.Height = int(height.Int64)
	rec.Description = description.String
	rec.JunkReason = junkReason.String

	if created.Valid {
		rec.CreatedAt = time.Unix(created.Int64, 0)
	}
	if modified.Valid {
		rec.ModifiedAt = time.Unix(modified.Int64, 0)
	}
	if scanned.Valid {
		rec.ScannedAt = time.Unix(scanned.Int64, 0)
	}
	if duplicateOf.Valid {
		id := duplicateOf.Int64
		rec.DuplicateOf = &id
	}
	if exifData.Valid && exifData.String != "" {
		meta := make(map[string]extract.MetaValue)
		if err := json.Unmarshal([]byte(exifData.String), &meta); err != nil {
			logging.Warn("corrupt EXIF JSON for %s: %v", rec.Path, err)
		} else {
			rec.EXIF = meta
		}
	}
	if tags.Valid && tags.String != "" {
		if err := json.Unmarshal([]byte(tags.String), &rec.Tags); err != nil {
			logging.Warn("corrupt tags JSON for %s: %v", rec.Path, err)
			rec.Tags = nil
		}
	}

	return &rec, nil
}

// RecordByID returns a single record, or sql.ErrNoRows when absent.
func (d *Database) RecordByID(id int64) (*MediaRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM files WHERE id = ?", id)
	rec, err := scanRecord(row)
	recordQuery("record_by_id", start, err)
	return rec, err
}

// RecordByPath returns the record for an absolute path, or sql.ErrNoRows.
func (d *Database) RecordByPath(path string) (*MediaRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	row := d.db.QueryRowContext(ctx,
		"SELECT "+recordColumns+" FROM files WHERE filepath = ?", path)
	rec, err := scanRecord(row)
	recordQuery("record_by_path", start, err)
	return rec, err
}

// Search runs a full-text query over paths, names, descriptions and
// tags. An empty query lists records newest-modified first.
func (d *Database) Search(opts SearchOptions) ([]*MediaRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}

	var (
		sb   strings.Builder
		args []any
	)

	if opts.Query != "" {
		sb.WriteString("SELECT " + recordColumns + ` FROM files
			WHERE id IN (SELECT rowid FROM files_fts WHERE files_fts MATCH ?)`)
		args = append(args, ftsQuery(opts.Query))
	} else {
		sb.WriteString("SELECT " + recordColumns + " FROM files WHERE 1=1")
	}

	if opts.Kind != "" {
		sb.WriteString(" AND file_type = ?")
		args = append(args, string(opts.Kind))
	}

	if opts.Query != "" {
		// Keep FTS rank ordering by joining back through the match list.
		sb.WriteString(` ORDER BY (SELECT rank FROM files_fts WHERE rowid = files.id AND files_fts MATCH ?)`)
		args = append(args, ftsQuery(opts.Query))
	} else {
		sb.WriteString(" ORDER BY modified_date DESC")
	}

	sb.WriteString(" LIMIT ? OFFSET ?")
	args = append(args, limit, opts.Offset)

	rows, err := d.db.QueryContext(ctx, sb.String(), args...)
	recordQuery("search", start, err)
	if err != nil {
		return nil, fmt.Errorf("search query failed: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// ftsQuery turns free text into an FTS5 query of quoted prefix terms so
// user input cannot inject FTS syntax.
func ftsQuery(query string) string {
	fields := strings.Fields(query)
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ReplaceAll(f, `"`, `""`)
		terms = append(terms, `"`+f+`"*`)
	}
	return strings.Join(terms, " ")
}

func collectRecords(rows *sql.Rows) ([]*MediaRecord, error) {
	var records []*MediaRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Duplicates returns every record marked as a duplicate, joined with
// its canonical original's path and name.
func (d *Database) Duplicates() ([]*DuplicateRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
	SELECT f.id, f.filepath, f.filename, f.original_filename, f.file_type, f.file_size,
		f.file_hash, f.perceptual_hash, f.width, f.height,
		f.created_date, f.modified_date, f.exif_data,
		f.description, f.tags, f.ai_analyzed,
		f.is_duplicate, f.duplicate_of, f.is_junk, f.junk_reason, f.scan_date,
		o.filepath, o.filename
	FROM files f
	LEFT JOIN files o ON f.duplicate_of = o.id
	WHERE f.is_duplicate = 1
	ORDER BY f.file_hash, f.id
	`

	rows, err := d.db.QueryContext(ctx, query)
	recordQuery("duplicates", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dupes []*DuplicateRecord
	for rows.Next() {
		var (
			rec          MediaRecord
			originalName sql.NullString
			kind         string
			digest       sql.NullString
			perceptual   sql.NullString
			width        sql.NullInt64
			height       sql.NullInt64
			created      sql.NullInt64
			modified     sql.NullInt64
			exifData     sql.NullString
			description  sql.NullString
			tags         sql.NullString
			duplicateOf  sql.NullInt64
			junkReason   sql.NullString
			scanned      sql.NullInt64
			origPath     sql.NullString
			origName     sql.NullString
		)
		err := rows.Scan(
			&rec.ID, &rec.Path, &rec.Name, &originalName, &kind, &rec.Size,
			&digest, &perceptual, &width, &height,
			&created, &modified, &exifData,
			&description, &tags, &rec.AIAnalyzed,
			&rec.IsDuplicate, &duplicateOf, &rec.IsJunk, &junkReason, &scanned,
			&origPath, &origName,
		)
		if err != nil {
			return nil, err
		}

		rec.Kind = mediatypes.Kind(kind)
		rec.OriginalName = originalName.String
		rec.Digest = digest.String
		rec.Perceptual = perceptual.String
		rec.Width = int(width.Int64)
		rec.Height = int(height.Int64)
		rec.Description = description.String
		rec.JunkReason = junkReason.String
		if duplicateOf.Valid {
			id := duplicateOf.Int64
			rec.DuplicateOf = &id
		}
		if modified.Valid {
			rec.ModifiedAt = time.Unix(modified.Int64, 0)
		}
		if created.Valid {
			rec.CreatedAt = time.Unix(created.Int64, 0)
		}
		if scanned.Valid {
			rec.ScannedAt = time.Unix(scanned.Int64, 0)
		}

		dupes = append(dupes, &DuplicateRecord{
			MediaRecord:  rec,
			OriginalPath: origPath.String,
			OriginalName: origName.String,
		})
	}
	return dupes, rows.Err()
}

// JunkFiles returns every record flagged as junk.
func (d *Database) JunkFiles() ([]*MediaRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		"SELECT "+recordColumns+" FROM files WHERE is_junk = 1 ORDER BY file_size ASC")
	recordQuery("junk_files", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRecords(rows)
}

// GetStats returns aggregate counts for the whole record set.
func (d *Database) GetStats() (*Stats, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := `
	SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN file_type = 'image' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN file_type = 'video' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(ai_analyzed), 0),
		COALESCE(SUM(is_duplicate), 0),
		COALESCE(SUM(is_junk), 0),
		COALESCE(SUM(file_size), 0)
	FROM files
	`

	var stats Stats
	err := d.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalFiles, &stats.Images, &stats.Videos,
		&stats.Analyzed, &stats.Duplicates, &stats.Junk, &stats.TotalSize,
	)
	recordQuery("get_stats", start, err)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// AllTags returns every distinct tag with its usage count, most used
// first. Tags are compared case-insensitively.
func (d *Database) AllTags() ([]TagCount, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		"SELECT tags FROM files WHERE tags IS NOT NULL AND tags != ''")
	recordQuery("all_tags", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var tags []string
		if err := json.Unmarshal([]byte(raw), &tags); err != nil {
			continue
		}
		for _, tag := range tags {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag != "" {
				counts[tag]++
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]TagCount, 0, len(counts))
	for name, count := range counts {
		result = append(result, TagCount{Name: name, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// PendingAnnotation returns up to limit image records that have not been
// annotated yet, skipping duplicates and junk. limit <= 0 means no cap.
func (d *Database) PendingAnnotation(limit int) ([]*MediaRecord, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	query := "SELECT " + recordColumns + ` FROM files
		WHERE ai_analyzed = 0 AND is_duplicate = 0 AND is_junk = 0 AND file_type = 'image'
		ORDER BY id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	recordQuery("pending_annotation", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectRecords(rows)
}

// SetAnnotation stores a description and tags for a record and marks it
// annotated.
func (d *Database) SetAnnotation(id int64, description string, tags []string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	tagsJSON, err := marshalTags(tags)
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}

	result, err := d.db.ExecContext(ctx,
		"UPDATE files SET description = ?, tags = ?, ai_analyzed = 1 WHERE id = ?",
		nullString(description), tagsJSON, id)
	recordQuery("set_annotation", start, err)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("no record with id %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// FingerprintEntries returns id, kind and both fingerprints for every
// record, in insertion order. Feed for duplicate resolution.
func (d *Database) FingerprintEntries() ([]resolver.Entry, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		"SELECT id, file_type, file_hash, perceptual_hash FROM files ORDER BY id")
	recordQuery("fingerprint_entries", start, err)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []resolver.Entry
	for rows.Next() {
		var (
			entry      resolver.Entry
			kind       string
			digest     sql.NullString
			perceptual sql.NullString
		)
		if err := rows.Scan(&entry.ID, &kind, &digest, &perceptual); err != nil {
			return nil, err
		}
		entry.Kind = mediatypes.Kind(kind)
		entry.Digest = digest.String
		entry.Perceptual = perceptual.String
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// DeleteByPath removes a record by path. Records linking to it as their
// duplicate original are unlinked first.
func (d *Database) DeleteByPath(path string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		recordQuery("delete_by_path", start, err)
		return err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE files SET is_duplicate = 0, duplicate_of = NULL
		WHERE duplicate_of = (SELECT id FROM files WHERE filepath = ?)`, path)
	if err == nil {
		_, err = tx.ExecContext(ctx, "DELETE FROM files WHERE filepath = ?", path)
	}
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			err = errors.Join(err, rbErr)
		}
		recordQuery("delete_by_path", start, err)
		return err
	}
	err = tx.Commit()
	recordQuery("delete_by_path", start, err)
	return err
}
