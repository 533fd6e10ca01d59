package loaders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"

	"github.com/pblonline/ops-dashboard/internal/types"
)

func (c *PostgresClient) ListUsers(ctx context.Context) ([]types.User, error) {
	rows, err := c.pool.Query(ctx, `SELECT id::text, name, email, avatar_url, created_at FROM users ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	users := []types.User{}
	for rows.Next() {
		var u types.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.AvatarURL, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (c *PostgresClient) CreateUser(ctx context.Context, u types.User) (*types.User, error) {
	err := c.pool.QueryRow(ctx, `
		INSERT INTO users (id, name, email, avatar_url) VALUES ($1, $2, $3, $4)
		RETURNING created_at`,
		u.ID, u.Name, types.NormalizeEmail(u.Email), u.AvatarURL).Scan(&u.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("user %s already exists: %w", u.Email, types.ErrConflict)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	u.Email = types.NormalizeEmail(u.Email)
	return &u, nil
}
