// Package store provides a SQLite-backed cache of parsed plan dataset files.
// Only file contents are cached; household selections and rankings are
// never written.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-json"

	"github.com/theirongolddev/fehbrank/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// Cache provides SQLite-backed dataset caching.
type Cache struct {
	db *sql.DB
}

// Open opens or creates the cache database at the given path.
func Open(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// FileInfo holds the tracked state of one dataset file.
type FileInfo struct {
	MtimeNs      int64
	SizeBytes    int64
	PlanCount    int
	SkippedRows  int
	CellWarnings int
}

// Fresh reports whether the tracked entry still matches the file on disk.
func (fi FileInfo) Fresh(mtimeNs, sizeBytes int64) bool {
	return fi.MtimeNs == mtimeNs && fi.SizeBytes == sizeBytes
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all tracked files.
func (c *Cache) GetTrackedFiles() (map[string]FileInfo, error) {
	rows, err := c.db.Query(`SELECT file_path, mtime_ns, size_bytes, plan_count, skipped_rows, cell_warnings
		FROM file_tracker`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes, &fi.PlanCount, &fi.SkippedRows, &fi.CellWarnings); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// SaveFile replaces the cached plans of one dataset file and its tracking info.
func (c *Cache) SaveFile(path string, plans []model.PlanRecord, info FileInfo) error {
	tx, err := c.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Cascades to plans.
	if _, err := tx.Exec("DELETE FROM file_tracker WHERE file_path = ?", path); err != nil {
		return err
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = tx.Exec(`INSERT INTO file_tracker
		(file_path, mtime_ns, size_bytes, plan_count, skipped_rows, cell_warnings, parsed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		path, info.MtimeNs, info.SizeBytes, len(plans), info.SkippedRows, info.CellWarnings, now,
	)
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO plans
		(file_path, position, plan_id, program, carrier, plan_name, network, nationwide, hsa_eligible, record)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, p := range plans {
		record, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encoding plan %s: %w", p.ID, err)
		}
		_, err = stmt.Exec(path, i, p.ID, string(p.Program), p.Carrier, p.Name, p.Network,
			boolInt(p.Nationwide), boolInt(p.HSAEligible), record)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadFile reads the cached plans of one dataset file in their original order.
func (c *Cache) LoadFile(path string) ([]model.PlanRecord, error) {
	rows, err := c.db.Query(`SELECT record FROM plans WHERE file_path = ? ORDER BY position`, path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var plans []model.PlanRecord
	for rows.Next() {
		var record []byte
		if err := rows.Scan(&record); err != nil {
			return nil, err
		}
		var p model.PlanRecord
		if err := json.Unmarshal(record, &p); err != nil {
			return nil, fmt.Errorf("decoding cached plan in %s: %w", path, err)
		}
		p.SourceFile = path
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// DeleteFile removes a file's tracking entry and its plans.
func (c *Cache) DeleteFile(path string) error {
	_, err := c.db.Exec("DELETE FROM file_tracker WHERE file_path = ?", path)
	return err
}

// Clear removes every cached file.
func (c *Cache) Clear() error {
	_, err := c.db.Exec("DELETE FROM file_tracker")
	return err
}

// Stats returns the number of tracked files and cached plans.
func (c *Cache) Stats() (files, plans int, err error) {
	err = c.db.QueryRow(`SELECT
		(SELECT COUNT(*) FROM file_tracker),
		(SELECT COUNT(*) FROM plans)`).Scan(&files, &plans)
	return files, plans, err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
