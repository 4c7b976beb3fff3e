package platform

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"

	"github.com/smartnet-labs/netscope/internal/models"
)

// StatsDB is the sqlite-backed traffic accounting store. It implements
// UsageRecordSource over raw, non-deduplicated samples.
type StatsDB struct {
	*sql.DB
	path string
}

// OpenStatsDB opens the traffic store at path and initializes the schema.
func OpenStatsDB(path string) (*StatsDB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &StatsDB{
		DB:   sqlDB,
		path: path,
	}

	if err := db.configure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := db.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return db, nil
}

// Path returns the database file path.
func (db *StatsDB) Path() string {
	return db.path
}

// configure sets up database pragmas for optimal performance.
func (db *StatsDB) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-64000", // 64MB cache
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

func (db *StatsDB) createSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS traffic_samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		sample_time INTEGER NOT NULL,
		transport INTEGER NOT NULL,
		uid INTEGER NOT NULL,
		rx_bytes INTEGER NOT NULL DEFAULT 0,
		tx_bytes INTEGER NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_samples_time_transport ON traffic_samples(transport, sample_time);
	CREATE INDEX IF NOT EXISTS idx_samples_uid ON traffic_samples(uid);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

// RecordSample appends one raw traffic sample.
func (db *StatsDB) RecordSample(ts time.Time, transport models.Transport, uid int, rxBytes, txBytes uint64) error {
	if ts.IsZero() {
		ts = time.Now()
	}

	query := `
		INSERT INTO traffic_samples (sample_time, transport, uid, rx_bytes, tx_bytes)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := db.ExecContext(context.Background(), query,
		ts.UnixMilli(),
		int(transport),
		uid,
		int64(rxBytes),
		int64(txBytes),
	)
	if err != nil {
		return fmt.Errorf("failed to insert traffic sample: %w", err)
	}
	return nil
}

// seedRecord is one NDJSON line of an import stream.
type seedRecord struct {
	TimeMillis int64  `json:"time"`
	Transport  int    `json:"transport"`
	UID        int    `json:"uid"`
	RxBytes    uint64 `json:"rxBytes"`
	TxBytes    uint64 `json:"txBytes"`
}

// ImportRecords loads newline-delimited JSON samples into the store, one
// object per line. The whole import is a single transaction; a malformed
// line aborts it.
func (db *StatsDB) ImportRecords(ctx context.Context, r io.Reader) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO traffic_samples (sample_time, transport, uid, rx_bytes, tx_bytes)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare import: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	count := 0
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var rec seedRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return 0, fmt.Errorf("failed to parse import line %d: %w", count+1, err)
		}

		if _, err := stmt.ExecContext(ctx, rec.TimeMillis, rec.Transport, rec.UID,
			int64(rec.RxBytes), int64(rec.TxBytes)); err != nil {
			return 0, fmt.Errorf("failed to insert import line %d: %w", count+1, err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read import stream: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return count, nil
}

// PruneBefore deletes samples recorded before cutoffMillis and reports how
// many rows were removed.
func (db *StatsDB) PruneBefore(ctx context.Context, cutoffMillis int64) (int64, error) {
	res, err := db.ExecContext(ctx,
		`DELETE FROM traffic_samples WHERE sample_time < ?`, cutoffMillis)
	if err != nil {
		return 0, fmt.Errorf("failed to prune traffic samples: %w", err)
	}
	return res.RowsAffected()
}

// Query streams the raw samples in [startMillis, endMillis] for one
// transport, oldest first. The caller owns the cursor.
func (db *StatsDB) Query(ctx context.Context, startMillis, endMillis int64, transport models.Transport) (RecordCursor, error) {
	query := `
		SELECT uid, rx_bytes, tx_bytes
		FROM traffic_samples
		WHERE transport = ? AND sample_time >= ? AND sample_time <= ?
		ORDER BY sample_time ASC
	`

	rows, err := db.QueryContext(ctx, query, int(transport), startMillis, endMillis)
	if err != nil {
		return nil, fmt.Errorf("failed to query traffic samples: %w", err)
	}

	return &sqlCursor{rows: rows}, nil
}

// sqlCursor adapts sql.Rows to RecordCursor.
type sqlCursor struct {
	rows *sql.Rows
}

func (c *sqlCursor) Next() bool {
	return c.rows.Next()
}

func (c *sqlCursor) Record() (models.UsageRecord, error) {
	var rec models.UsageRecord
	var rx, tx int64
	if err := c.rows.Scan(&rec.UID, &rx, &tx); err != nil {
		return models.UsageRecord{}, fmt.Errorf("failed to scan traffic sample: %w", err)
	}
	if rx > 0 {
		rec.RxBytes = uint64(rx)
	}
	if tx > 0 {
		rec.TxBytes = uint64(tx)
	}
	return rec, nil
}

func (c *sqlCursor) Err() error {
	return c.rows.Err()
}

func (c *sqlCursor) Close() error {
	return c.rows.Close()
}

// Close closes the database connection gracefully.
func (db *StatsDB) Close() error {
	// Checkpoint WAL before closing
	_, _ = db.ExecContext(context.Background(), "PRAGMA wal_checkpoint(TRUNCATE)")
	return db.DB.Close()
}

// Vacuum performs database maintenance to reclaim space.
func (db *StatsDB) Vacuum() error {
	_, err := db.ExecContext(context.Background(), "VACUUM")
	return err
}
