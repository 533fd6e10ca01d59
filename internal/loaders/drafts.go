package loaders

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4"

	"github.com/pblonline/ops-dashboard/internal/types"
)

const draftColumns = `id::text, name, subject, preview_text, audience_list_id, audience_tags, step, body,
	reference_url, analysis, status, version, created_at, updated_at`

func (c *PostgresClient) ListDrafts(ctx context.Context) ([]types.EmailDraft, error) {
	rows, err := c.pool.Query(ctx, `SELECT `+draftColumns+` FROM email_drafts ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query drafts: %w", err)
	}
	defer rows.Close()

	drafts := []types.EmailDraft{}
	for rows.Next() {
		d, err := scanDraft(rows)
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}

func (c *PostgresClient) GetDraft(ctx context.Context, id string) (*types.EmailDraft, error) {
	d, err := scanDraft(c.pool.QueryRow(ctx, `SELECT `+draftColumns+` FROM email_drafts WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query draft: %w", err)
	}
	return &d, nil
}

func (c *PostgresClient) CreateDraft(ctx context.Context, d types.EmailDraft) (*types.EmailDraft, error) {
	created, err := scanDraft(c.pool.QueryRow(ctx, `
		INSERT INTO email_drafts (id, name, subject, preview_text, audience_list_id, audience_tags,
			step, body, reference_url, analysis, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+draftColumns,
		d.ID, d.Name, d.Subject, d.PreviewText, d.AudienceListID, nonNil(d.AudienceTags),
		string(d.Step), d.Body, d.ReferenceURL, jsonParam(d.Analysis), string(d.Status)))
	if err != nil {
		return nil, fmt.Errorf("failed to create draft: %w", err)
	}
	return &created, nil
}

// UpdateDraft writes the non-nil patch fields and bumps the version.
func (c *PostgresClient) UpdateDraft(ctx context.Context, id string, p types.DraftPatch) (*types.EmailDraft, error) {
	var tags interface{}
	if p.AudienceTags != nil {
		tags = nonNil(*p.AudienceTags)
	}
	var analysis interface{}
	if p.Analysis != nil {
		analysis = jsonParam(*p.Analysis)
	}

	updated, err := scanDraft(c.pool.QueryRow(ctx, `
		UPDATE email_drafts SET
			name = COALESCE($2, name),
			subject = COALESCE($3, subject),
			preview_text = COALESCE($4, preview_text),
			audience_list_id = COALESCE($5, audience_list_id),
			audience_tags = COALESCE($6::text[], audience_tags),
			step = COALESCE($7, step),
			body = COALESCE($8, body),
			reference_url = COALESCE($9, reference_url),
			analysis = COALESCE($10::jsonb, analysis),
			status = COALESCE($11, status),
			version = version + 1,
			updated_at = now()
		WHERE id = $1
		RETURNING `+draftColumns,
		id, p.Name, p.Subject, p.PreviewText, p.AudienceListID, tags,
		stringPtr(p.Step), p.Body, p.ReferenceURL, analysis, stringPtr(p.Status)))
	if err == pgx.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update draft: %w", err)
	}
	return &updated, nil
}

func (c *PostgresClient) DeleteDraft(ctx context.Context, id string) error {
	tag, err := c.pool.Exec(ctx, `DELETE FROM email_drafts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func scanDraft(row pgx.Row) (types.EmailDraft, error) {
	var (
		d        types.EmailDraft
		step     string
		status   string
		analysis []byte
	)
	err := row.Scan(&d.ID, &d.Name, &d.Subject, &d.PreviewText, &d.AudienceListID, &d.AudienceTags,
		&step, &d.Body, &d.ReferenceURL, &analysis, &status, &d.Version, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return d, err
	}
	d.Step = types.DraftStep(step)
	d.Status = types.DraftStatus(status)
	if len(analysis) > 0 {
		d.Analysis = json.RawMessage(analysis)
	}
	return d, nil
}

// jsonParam passes raw JSON as text so an empty value becomes NULL.
func jsonParam(raw json.RawMessage) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}

func stringPtr[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}
