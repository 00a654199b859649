// Package db provides PostgreSQL persistence for screening runs and their
// per-stage artifacts. Persistence is optional: callers that run without a
// database simply never construct a DB.
package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database and verifies it.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// CreateRun records the start of a screening run. The run ID is generated
// by the orchestrator so filesystem artifacts and database rows share it.
func (db *DB) CreateRun(ctx context.Context, runID uuid.UUID, requisitionTitle, mode string) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO screening_runs (id, requisition_title, mode, status)
		 VALUES ($1, $2, $3, 'running')`,
		runID, requisitionTitle, mode,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// CompleteRun marks a screening run as finished with the given status.
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, status string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE screening_runs SET status = $1, completed_at = NOW() WHERE id = $2`,
		status, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	return nil
}

// SaveArtifact stores one candidate-stage artifact as JSON. Re-running a
// stage for the same candidate overwrites the previous artifact.
func (db *DB) SaveArtifact(ctx context.Context, runID uuid.UUID, candidateSlug, stage string, content any) error {
	jsonBytes, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("failed to marshal artifact: %w", err)
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO stage_artifacts (run_id, candidate_slug, stage, content)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (run_id, candidate_slug, stage) DO UPDATE SET content = $4, created_at = NOW()`,
		runID, candidateSlug, stage, jsonBytes,
	)
	if err != nil {
		return fmt.Errorf("failed to save artifact %s/%s: %w", candidateSlug, stage, err)
	}
	return nil
}

// GetArtifact retrieves one candidate-stage artifact. Returns nil with no
// error when the artifact does not exist.
func (db *DB) GetArtifact(ctx context.Context, runID uuid.UUID, candidateSlug, stage string) ([]byte, error) {
	var content []byte
	err := db.pool.QueryRow(ctx,
		`SELECT content FROM stage_artifacts WHERE run_id = $1 AND candidate_slug = $2 AND stage = $3`,
		runID, candidateSlug, stage,
	).Scan(&content)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get artifact %s/%s: %w", candidateSlug, stage, err)
	}
	return content, nil
}

// ListRuns returns recent screening runs, newest first.
func (db *DB) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, requisition_title, mode, status, created_at, completed_at
		 FROM screening_runs
		 ORDER BY created_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.RequisitionTitle, &r.Mode, &r.Status, &r.CreatedAt, &r.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
