package loaders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"
	"golang.org/x/oauth2"

	"github.com/pblonline/ops-dashboard/internal/types"
)

func (c *PostgresClient) SaveToken(ctx context.Context, provider string, tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return err
	}
	_, err = c.pool.Exec(ctx, `
		INSERT INTO oauth_tokens (provider, token, updated_at) VALUES ($1, $2::jsonb, now())
		ON CONFLICT (provider) DO UPDATE SET token = EXCLUDED.token, updated_at = now()`,
		provider, string(data))
	if err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

func (c *PostgresClient) LoadToken(ctx context.Context, provider string) (*oauth2.Token, error) {
	var data []byte
	err := c.pool.QueryRow(ctx, `SELECT token FROM oauth_tokens WHERE provider = $1`, provider).Scan(&data)
	if err == pgx.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load token: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return &tok, nil
}
