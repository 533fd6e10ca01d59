package loaders

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"

	"github.com/pblonline/ops-dashboard/internal/utils"
)

// PostgresClient owns the connection pool and implements every store the
// API packages depend on.
type PostgresClient struct {
	pool      *pgxpool.Pool
	batchSize int
}

func NewPostgresClient(dsn string, maxConns int, batchSize int) (*PostgresClient, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}
	cfg.MaxConnLifetime = 5 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if batchSize <= 0 {
		batchSize = 100
	}

	utils.Zlog.Info("Database connected",
		zap.Int32("maxConns", cfg.MaxConns),
		zap.Int("batchSize", batchSize))

	return &PostgresClient{pool: pool, batchSize: batchSize}, nil
}

func (c *PostgresClient) Close() {
	c.pool.Close()
}

func (c *PostgresClient) HealthCheck(ctx context.Context) error {
	return c.pool.Ping(ctx)
}

// withTx runs fn in a transaction, rolling back on error.
func (c *PostgresClient) withTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// sendBatches queues rows in groups of batchSize and executes each group.
func (c *PostgresClient) sendBatches(ctx context.Context, tx pgx.Tx, n int, queue func(b *pgx.Batch, i int)) error {
	for start := 0; start < n; start += c.batchSize {
		end := start + c.batchSize
		if end > n {
			end = n
		}

		batch := &pgx.Batch{}
		for i := start; i < end; i++ {
			queue(batch, i)
		}

		results := tx.SendBatch(ctx, batch)
		for i := start; i < end; i++ {
			if _, err := results.Exec(); err != nil {
				results.Close()
				return fmt.Errorf("batch row %d: %w", i, err)
			}
		}
		if err := results.Close(); err != nil {
			return err
		}
	}
	return nil
}
