package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Run is a row in the runs table.
type Run struct {
	ID              uuid.UUID `db:"id"`
	Stage           string    `db:"stage"`
	Status          string    `db:"status"`
	Message         string    `db:"message"`
	TestAssemblies  int       `db:"test_assemblies"`
	ScopeAssemblies int       `db:"scope_assemblies"`
	StartedAt       time.Time `db:"started_at"`
	FinishedAt      time.Time `db:"finished_at"`
}

// RecordRun inserts a finished run. A zero ID is replaced with a new one.
func (d *DB) RecordRun(ctx context.Context, r Run) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	_, err := d.pool.Exec(ctx,
		`INSERT INTO runs (id, stage, status, message, test_assemblies, scope_assemblies, started_at, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.Stage, r.Status, r.Message, r.TestAssemblies, r.ScopeAssemblies, r.StartedAt, r.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first, optionally filtered by stage.
func (d *DB) ListRuns(ctx context.Context, stage string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.pool.Query(ctx,
		`SELECT id, stage, status, message, test_assemblies, scope_assemblies, started_at, finished_at
		 FROM runs WHERE ($1 = '' OR stage = $1) ORDER BY started_at DESC, id LIMIT $2`,
		stage, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	runs, err := pgx.CollectRows(rows, pgx.RowToStructByName[Run])
	if err != nil {
		return nil, fmt.Errorf("scan runs: %w", err)
	}
	return runs, nil
}

// GetRun returns the run with id, or nil when there is none.
func (d *DB) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, stage, status, message, test_assemblies, scope_assemblies, started_at, finished_at
		 FROM runs WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	run, err := pgx.CollectOneRow(rows, pgx.RowToAddrOfStructByName[Run])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}
