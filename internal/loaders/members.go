package loaders

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"go.uber.org/zap"

	"github.com/pblonline/ops-dashboard/internal/types"
	"github.com/pblonline/ops-dashboard/internal/utils"
)

const memberColumns = `email, name, vimeo_status, vimeo_product, vimeo_plan, vimeo_join_date,
	mailchimp_status, mailchimp_tags, mailchimp_lists, source, updated_at`

// ListMembers returns every consolidated member ordered by email.
func (c *PostgresClient) ListMembers(ctx context.Context) ([]types.ConsolidatedMember, error) {
	rows, err := c.pool.Query(ctx, `SELECT `+memberColumns+` FROM consolidated_members ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	members := []types.ConsolidatedMember{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (c *PostgresClient) GetMember(ctx context.Context, email string) (*types.ConsolidatedMember, error) {
	row := c.pool.QueryRow(ctx, `SELECT `+memberColumns+` FROM consolidated_members WHERE email = $1`,
		types.NormalizeEmail(email))
	m, err := scanMember(row)
	if err == pgx.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ReplaceMembers makes the table hold exactly the given members.
func (c *PostgresClient) ReplaceMembers(ctx context.Context, members []types.ConsolidatedMember) error {
	emails := make([]string, len(members))
	for i, m := range members {
		emails[i] = m.Email
	}

	return c.withTx(ctx, func(tx pgx.Tx) error {
		err := c.sendBatches(ctx, tx, len(members), func(b *pgx.Batch, i int) {
			m := members[i]
			b.Queue(`
				INSERT INTO consolidated_members (`+memberColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, now())
				ON CONFLICT (email) DO UPDATE SET
					name = EXCLUDED.name,
					vimeo_status = EXCLUDED.vimeo_status,
					vimeo_product = EXCLUDED.vimeo_product,
					vimeo_plan = EXCLUDED.vimeo_plan,
					vimeo_join_date = EXCLUDED.vimeo_join_date,
					mailchimp_status = EXCLUDED.mailchimp_status,
					mailchimp_tags = EXCLUDED.mailchimp_tags,
					mailchimp_lists = EXCLUDED.mailchimp_lists,
					source = EXCLUDED.source,
					updated_at = now()`,
				m.Email, m.Name, string(m.VimeoStatus), m.VimeoProduct, m.VimeoPlan, m.VimeoJoinDate,
				string(m.MailchimpStatus), nonNil(m.MailchimpTags), nonNil(m.MailchimpLists), string(m.Source))
		})
		if err != nil {
			return fmt.Errorf("failed to upsert members: %w", err)
		}

		tag, err := tx.Exec(ctx, `DELETE FROM consolidated_members WHERE NOT (email = ANY($1))`, emails)
		if err != nil {
			return fmt.Errorf("failed to prune members: %w", err)
		}

		utils.Zlog.Info("Members replaced",
			zap.Int("upserted", len(members)),
			zap.Int64("pruned", tag.RowsAffected()))
		return nil
	})
}

// ApplyTagActions mirrors applied Mailchimp tag changes onto the stored members.
func (c *PostgresClient) ApplyTagActions(ctx context.Context, actions []types.TagFixAction) error {
	return c.withTx(ctx, func(tx pgx.Tx) error {
		return c.sendBatches(ctx, tx, len(actions), func(b *pgx.Batch, i int) {
			a := actions[i]
			if a.Action == types.TagActionAdd {
				b.Queue(`
					UPDATE consolidated_members
					SET mailchimp_tags = array_append(mailchimp_tags, $2::text), updated_at = now()
					WHERE email = $1 AND NOT ($2::text = ANY(mailchimp_tags))`,
					types.NormalizeEmail(a.Email), a.Tag)
				return
			}
			b.Queue(`
				UPDATE consolidated_members
				SET mailchimp_tags = array_remove(mailchimp_tags, $2::text), updated_at = now()
				WHERE email = $1`,
				types.NormalizeEmail(a.Email), a.Tag)
		})
	})
}

func scanMember(row pgx.Row) (types.ConsolidatedMember, error) {
	var (
		m               types.ConsolidatedMember
		vimeoStatus     string
		mailchimpStatus string
		source          string
		joinDate        *time.Time
	)
	err := row.Scan(&m.Email, &m.Name, &vimeoStatus, &m.VimeoProduct, &m.VimeoPlan, &joinDate,
		&mailchimpStatus, &m.MailchimpTags, &m.MailchimpLists, &source, &m.UpdatedAt)
	if err != nil {
		return m, err
	}
	m.VimeoStatus = types.VimeoStatus(vimeoStatus)
	m.MailchimpStatus = types.MailchimpStatus(mailchimpStatus)
	m.Source = types.MemberSource(source)
	m.VimeoJoinDate = joinDate
	return m, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
