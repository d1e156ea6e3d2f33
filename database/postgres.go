package database

import (
	"context"
	"fmt"
	"time"

	"gallerycurator/logging"
	"gallerycurator/types"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

var postgresSchema = []string{
	`CREATE EXTENSION IF NOT EXISTS vector`,
	`CREATE TABLE IF NOT EXISTS runs (
		id BIGSERIAL PRIMARY KEY,
		started_at TIMESTAMPTZ NOT NULL,
		root TEXT NOT NULL,
		processed INTEGER,
		kept INTEGER,
		deleted INTEGER,
		duplicate_groups INTEGER
	)`,
	`CREATE TABLE IF NOT EXISTS assets (
		id BIGSERIAL PRIMARY KEY,
		run_id BIGINT NOT NULL REFERENCES runs(id),
		src TEXT NOT NULL,
		source TEXT,
		width INTEGER,
		height INTEGER,
		date TEXT,
		cluster_size INTEGER,
		average_hash TEXT,
		difference_hash TEXT,
		perceptual_hash TEXT,
		mean_color vector(3)
	)`,
	`CREATE TABLE IF NOT EXISTS merged (
		id BIGSERIAL PRIMARY KEY,
		run_id BIGINT NOT NULL REFERENCES runs(id),
		member TEXT NOT NULL,
		kept_as TEXT NOT NULL
	)`,
}

// PostgresCatalog stores runs in PostgreSQL with the kept asset's mean color
// as a pgvector column
type PostgresCatalog struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to connString and makes sure the schema exists
func OpenPostgres(ctx context.Context, connString string) (*PostgresCatalog, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("cannot create catalog schema: %w", err)
		}
	}

	logging.DebugLog("connected to postgres catalog")
	return &PostgresCatalog{pool: pool}, nil
}

// RecordRun stores the run in one transaction and returns its id
func (c *PostgresCatalog) RecordRun(ctx context.Context, run types.RunRecord) (int64, error) {
	startedAt, err := time.Parse(time.RFC3339, run.StartedAt)
	if err != nil {
		startedAt = time.Now()
	}

	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("cannot begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var runID int64
	err = tx.QueryRow(ctx,
		`INSERT INTO runs (started_at, root, processed, kept, deleted, duplicate_groups)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		startedAt, run.Root,
		run.Report.ProcessedCount, run.Report.KeptCount, run.Report.DeletedCount, run.Report.DuplicateGroupCount,
	).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("cannot insert run: %w", err)
	}

	batch := &pgx.Batch{}
	for _, e := range run.Manifest {
		batch.Queue(`
			INSERT INTO assets (
				run_id, src, source, width, height, date, cluster_size,
				average_hash, difference_hash, perceptual_hash, mean_color
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			runID, e.Src, e.Source, e.Width, e.Height, e.Date, e.ClusterSize,
			e.AverageHash, e.DifferenceHash, e.PerceptualHash, meanColorVector(e.MeanColor))
	}
	for _, g := range run.Report.DuplicateGroups {
		for _, m := range g.Members {
			batch.Queue(`INSERT INTO merged (run_id, member, kept_as) VALUES ($1, $2, $3)`, runID, m, g.KeptAs)
		}
	}

	if batch.Len() > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return 0, fmt.Errorf("cannot insert run %d rows: %w", runID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("cannot commit run: %w", err)
	}
	return runID, nil
}

// Close closes the connection pool
func (c *PostgresCatalog) Close() error {
	if c.pool != nil {
		c.pool.Close()
	}
	return nil
}

func meanColorVector(c [3]float64) pgvector.Vector {
	return pgvector.NewVector([]float32{float32(c[0]), float32(c[1]), float32(c[2])})
}
