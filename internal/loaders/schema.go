package loaders

import (
	"context"
	"fmt"

	"github.com/pblonline/ops-dashboard/internal/utils"
)

const schema = `
CREATE TABLE IF NOT EXISTS consolidated_members (
    email            TEXT PRIMARY KEY,
    name             TEXT NOT NULL DEFAULT '',
    vimeo_status     TEXT NOT NULL DEFAULT '',
    vimeo_product    TEXT NOT NULL DEFAULT '',
    vimeo_plan       TEXT NOT NULL DEFAULT '',
    vimeo_join_date  TIMESTAMPTZ,
    mailchimp_status TEXT NOT NULL DEFAULT '',
    mailchimp_tags   TEXT[] NOT NULL DEFAULT '{}',
    mailchimp_lists  TEXT[] NOT NULL DEFAULT '{}',
    source           TEXT NOT NULL,
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sync_runs (
    id           UUID PRIMARY KEY,
    kind         TEXT NOT NULL,
    status       TEXT NOT NULL,
    record_count INTEGER NOT NULL DEFAULT 0,
    error        TEXT NOT NULL DEFAULT '',
    started_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    finished_at  TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS email_drafts (
    id               UUID PRIMARY KEY,
    name             TEXT NOT NULL DEFAULT '',
    subject          TEXT NOT NULL DEFAULT '',
    preview_text     TEXT NOT NULL DEFAULT '',
    audience_list_id TEXT NOT NULL DEFAULT '',
    audience_tags    TEXT[] NOT NULL DEFAULT '{}',
    step             TEXT NOT NULL DEFAULT 'setup',
    body             TEXT NOT NULL DEFAULT '',
    reference_url    TEXT NOT NULL DEFAULT '',
    analysis         JSONB,
    status           TEXT NOT NULL DEFAULT 'draft',
    version          INTEGER NOT NULL DEFAULT 1,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS users (
    id         UUID PRIMARY KEY,
    name       TEXT NOT NULL,
    email      TEXT UNIQUE NOT NULL,
    avatar_url TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS tasks (
    id          UUID PRIMARY KEY,
    title       TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    column_id   TEXT NOT NULL,
    position    INTEGER NOT NULL DEFAULT 0,
    assignee_id UUID REFERENCES users(id) ON DELETE SET NULL,
    due_date    TIMESTAMPTZ,
    priority    TEXT NOT NULL DEFAULT 'medium',
    subtasks    JSONB NOT NULL DEFAULT '[]',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS youtube_videos (
    id                    TEXT PRIMARY KEY,
    title                 TEXT NOT NULL DEFAULT '',
    description           TEXT NOT NULL DEFAULT '',
    tags                  TEXT[] NOT NULL DEFAULT '{}',
    category_id           TEXT NOT NULL DEFAULT '',
    published_at          TIMESTAMPTZ,
    thumbnail_url         TEXT NOT NULL DEFAULT '',
    duration              TEXT NOT NULL DEFAULT '',
    view_count            BIGINT NOT NULL DEFAULT 0,
    like_count            BIGINT NOT NULL DEFAULT 0,
    comment_count         BIGINT NOT NULL DEFAULT 0,
    privacy_status        TEXT NOT NULL DEFAULT '',
    transcript            TEXT NOT NULL DEFAULT '',
    generated_title       TEXT NOT NULL DEFAULT '',
    generated_description TEXT NOT NULL DEFAULT '',
    generated_tags        TEXT[] NOT NULL DEFAULT '{}',
    synced_at             TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS oauth_tokens (
    provider   TEXT PRIMARY KEY,
    token      JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_members_vimeo_status ON consolidated_members(vimeo_status);
CREATE INDEX IF NOT EXISTS idx_members_source ON consolidated_members(source);
CREATE INDEX IF NOT EXISTS idx_sync_runs_kind_started ON sync_runs(kind, started_at DESC);
CREATE INDEX IF NOT EXISTS idx_tasks_column_position ON tasks(column_id, position);
`

// Migrate creates the tables if they don't exist.
func (c *PostgresClient) Migrate(ctx context.Context) error {
	if _, err := c.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}
	utils.Zlog.Info("Database tables verified/created successfully")
	return nil
}
