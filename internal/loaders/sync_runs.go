package loaders

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"

	"github.com/pblonline/ops-dashboard/internal/types"
)

func (c *PostgresClient) CreateSyncRun(ctx context.Context, run types.SyncRun) error {
	_, err := c.pool.Exec(ctx, `
		INSERT INTO sync_runs (id, kind, status, record_count, error, started_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		run.ID, string(run.Kind), string(run.Status), run.RecordCount, run.Error, run.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create sync run: %w", err)
	}
	return nil
}

func (c *PostgresClient) UpdateSyncRun(ctx context.Context, run types.SyncRun) error {
	tag, err := c.pool.Exec(ctx, `
		UPDATE sync_runs SET status = $2, record_count = $3, error = $4, finished_at = $5
		WHERE id = $1`,
		run.ID, string(run.Status), run.RecordCount, run.Error, run.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to update sync run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

// LatestSyncRun returns the most recently started run of the given kind.
func (c *PostgresClient) LatestSyncRun(ctx context.Context, kind types.SyncKind) (*types.SyncRun, error) {
	var (
		run   types.SyncRun
		k, st string
	)
	err := c.pool.QueryRow(ctx, `
		SELECT id::text, kind, status, record_count, error, started_at, finished_at
		FROM sync_runs WHERE kind = $1
		ORDER BY started_at DESC LIMIT 1`, string(kind)).
		Scan(&run.ID, &k, &st, &run.RecordCount, &run.Error, &run.StartedAt, &run.FinishedAt)
	if err == pgx.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sync run: %w", err)
	}
	run.Kind = types.SyncKind(k)
	run.Status = types.ProcessStatus(st)
	return &run, nil
}
