package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gallerycurator/logging"
	"gallerycurator/types"

	_ "github.com/mattn/go-sqlite3"
)

// Catalog records curation runs for later auditing
type Catalog interface {
	RecordRun(ctx context.Context, run types.RunRecord) (int64, error)
	Close() error
}

// Open picks a backend from the DSN: postgres:// and postgresql:// URLs go
// to PostgreSQL, anything else is treated as a SQLite file path.
func Open(ctx context.Context, dsn string) (Catalog, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return OpenPostgres(ctx, dsn)
	}
	return OpenSQLite(dsn)
}

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at TEXT NOT NULL,
		root TEXT NOT NULL,
		processed INTEGER,
		kept INTEGER,
		deleted INTEGER,
		duplicate_groups INTEGER
	);
	CREATE TABLE IF NOT EXISTS assets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		src TEXT NOT NULL,
		source TEXT,
		width INTEGER,
		height INTEGER,
		date TEXT,
		cluster_size INTEGER,
		average_hash TEXT,
		difference_hash TEXT,
		perceptual_hash TEXT
	);
	CREATE TABLE IF NOT EXISTS merged (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		member TEXT NOT NULL,
		kept_as TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_assets_run ON assets(run_id);
	CREATE INDEX IF NOT EXISTS idx_assets_average_hash ON assets(average_hash);
	CREATE INDEX IF NOT EXISTS idx_merged_run ON merged(run_id);`

// SQLiteCatalog stores runs in a local SQLite file
type SQLiteCatalog struct {
	db *sql.DB
}

// OpenSQLite opens or creates the catalog at dbPath
func OpenSQLite(dbPath string) (*SQLiteCatalog, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open catalog %s: %w", dbPath, err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot create catalog schema: %w", err)
	}

	logging.DebugLog("opened sqlite catalog %s", dbPath)
	return &SQLiteCatalog{db: db}, nil
}

// RecordRun stores the run, its kept assets and merged members in one
// transaction and returns the run id
func (c *SQLiteCatalog) RecordRun(ctx context.Context, run types.RunRecord) (int64, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (started_at, root, processed, kept, deleted, duplicate_groups) VALUES (?, ?, ?, ?, ?, ?)`,
		run.StartedAt, run.Root,
		run.Report.ProcessedCount, run.Report.KeptCount, run.Report.DeletedCount, run.Report.DuplicateGroupCount)
	if err != nil {
		return 0, fmt.Errorf("cannot insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("cannot read run id: %w", err)
	}

	assetStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO assets (
			run_id, src, source, width, height, date, cluster_size, average_hash, difference_hash, perceptual_hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("cannot prepare asset statement: %w", err)
	}
	defer assetStmt.Close()

	for _, e := range run.Manifest {
		if _, err := assetStmt.ExecContext(ctx, runID, e.Src, e.Source, e.Width, e.Height, e.Date,
			e.ClusterSize, e.AverageHash, e.DifferenceHash, e.PerceptualHash); err != nil {
			return 0, fmt.Errorf("cannot insert asset %s: %w", e.Src, err)
		}
	}

	mergedStmt, err := tx.PrepareContext(ctx, `INSERT INTO merged (run_id, member, kept_as) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("cannot prepare merged statement: %w", err)
	}
	defer mergedStmt.Close()

	for _, g := range run.Report.DuplicateGroups {
		for _, m := range g.Members {
			if _, err := mergedStmt.ExecContext(ctx, runID, m, g.KeptAs); err != nil {
				return 0, fmt.Errorf("cannot insert merged member %s: %w", m, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("cannot commit run: %w", err)
	}
	return runID, nil
}

// Close closes the underlying database
func (c *SQLiteCatalog) Close() error {
	return c.db.Close()
}
