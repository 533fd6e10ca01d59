package loaders

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"

	"github.com/pblonline/ops-dashboard/internal/types"
)

const videoColumns = `id, title, description, tags, category_id, published_at, thumbnail_url, duration,
	view_count, like_count, comment_count, privacy_status, transcript, generated_title,
	generated_description, generated_tags, synced_at`

func (c *PostgresClient) ListVideos(ctx context.Context) ([]types.Video, error) {
	rows, err := c.pool.Query(ctx, `SELECT `+videoColumns+` FROM youtube_videos ORDER BY published_at DESC NULLS LAST`)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	defer rows.Close()

	videos := []types.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

func (c *PostgresClient) GetVideo(ctx context.Context, id string) (*types.Video, error) {
	v, err := scanVideo(c.pool.QueryRow(ctx, `SELECT `+videoColumns+` FROM youtube_videos WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query video: %w", err)
	}
	return &v, nil
}

// PutVideos upserts whole video records.
func (c *PostgresClient) PutVideos(ctx context.Context, videos []types.Video) error {
	return c.withTx(ctx, func(tx pgx.Tx) error {
		return c.sendBatches(ctx, tx, len(videos), func(b *pgx.Batch, i int) {
			v := videos[i]
			b.Queue(`
				INSERT INTO youtube_videos (`+videoColumns+`)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
				ON CONFLICT (id) DO UPDATE SET
					title = EXCLUDED.title,
					description = EXCLUDED.description,
					tags = EXCLUDED.tags,
					category_id = EXCLUDED.category_id,
					published_at = EXCLUDED.published_at,
					thumbnail_url = EXCLUDED.thumbnail_url,
					duration = EXCLUDED.duration,
					view_count = EXCLUDED.view_count,
					like_count = EXCLUDED.like_count,
					comment_count = EXCLUDED.comment_count,
					privacy_status = EXCLUDED.privacy_status,
					transcript = EXCLUDED.transcript,
					generated_title = EXCLUDED.generated_title,
					generated_description = EXCLUDED.generated_description,
					generated_tags = EXCLUDED.generated_tags,
					synced_at = EXCLUDED.synced_at`,
				v.ID, v.Title, v.Description, nonNil(v.Tags), v.CategoryID, v.PublishedAt, v.ThumbnailURL,
				v.Duration, int64(v.ViewCount), int64(v.LikeCount), int64(v.CommentCount), v.PrivacyStatus,
				v.Transcript, v.GeneratedTitle, v.GeneratedDescription, nonNil(v.GeneratedTags), v.SyncedAt)
		})
	})
}

func scanVideo(row pgx.Row) (types.Video, error) {
	var (
		v                          types.Video
		publishedAt                *time.Time
		views, likes, commentCount int64
	)
	err := row.Scan(&v.ID, &v.Title, &v.Description, &v.Tags, &v.CategoryID, &publishedAt, &v.ThumbnailURL,
		&v.Duration, &views, &likes, &commentCount, &v.PrivacyStatus, &v.Transcript, &v.GeneratedTitle,
		&v.GeneratedDescription, &v.GeneratedTags, &v.SyncedAt)
	if err != nil {
		return v, err
	}
	if publishedAt != nil {
		v.PublishedAt = *publishedAt
	}
	v.ViewCount = uint64(views)
	v.LikeCount = uint64(likes)
	v.CommentCount = uint64(commentCount)
	return v, nil
}
