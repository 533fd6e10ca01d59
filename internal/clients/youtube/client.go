// Package youtube reads a channel's uploads and edits video metadata
// through the YouTube Data API v3.
package youtube

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/pblonline/ops-dashboard/internal/types"
	"github.com/pblonline/ops-dashboard/internal/utils"
)

// videos.list accepts at most 50 ids per call.
const pageSize = 50

type Client struct {
	svc *youtube.Service
}

// NewClient builds a client. Reads need option.WithAPIKey, writes need an
// OAuth token source (option.WithTokenSource).
func NewClient(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// UploadsPlaylist returns the id of the channel's uploads playlist.
func (c *Client) UploadsPlaylist(ctx context.Context, channelID string) (string, error) {
	resp, err := c.svc.Channels.List([]string{"contentDetails"}).Id(channelID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get channel %s: %w", channelID, err)
	}
	if len(resp.Items) == 0 || resp.Items[0].ContentDetails == nil || resp.Items[0].ContentDetails.RelatedPlaylists == nil {
		return "", fmt.Errorf("channel %s: %w", channelID, types.ErrNotFound)
	}
	return resp.Items[0].ContentDetails.RelatedPlaylists.Uploads, nil
}

// ListChannelVideos walks the uploads playlist and resolves every video's
// details, statistics and status.
func (c *Client) ListChannelVideos(ctx context.Context, channelID string) ([]types.Video, error) {
	playlistID, err := c.UploadsPlaylist(ctx, channelID)
	if err != nil {
		return nil, err
	}

	var videos []types.Video
	pageToken := ""
	for {
		call := c.svc.PlaylistItems.List([]string{"contentDetails"}).
			PlaylistId(playlistID).
			MaxResults(pageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		resp, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list playlist items: %w", err)
		}

		ids := make([]string, 0, len(resp.Items))
		for _, item := range resp.Items {
			if item.ContentDetails != nil && item.ContentDetails.VideoId != "" {
				ids = append(ids, item.ContentDetails.VideoId)
			}
		}
		page, err := c.Videos(ctx, ids)
		if err != nil {
			return nil, err
		}
		videos = append(videos, page...)

		utils.Zlog.Debug("Fetched YouTube uploads page",
			zap.String("playlistId", playlistID),
			zap.Int("count", len(page)))

		if resp.NextPageToken == "" {
			break
		}
		pageToken = resp.NextPageToken
	}
	return videos, nil
}

// Videos fetches up to pageSize videos by id.
func (c *Client) Videos(ctx context.Context, ids []string) ([]types.Video, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > pageSize {
		return nil, fmt.Errorf("%w: at most %d ids per call", types.ErrValidation, pageSize)
	}
	resp, err := c.svc.Videos.List([]string{"snippet", "contentDetails", "statistics", "status"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}

	now := time.Now().UTC()
	out := make([]types.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		v := toVideo(item)
		v.SyncedAt = now
		out = append(out, v)
	}
	return out, nil
}

// UpdateVideo rewrites the snippet fields set in update. The current
// snippet is read first since videos.update requires the category.
func (c *Client) UpdateVideo(ctx context.Context, update types.VideoUpdate) (*types.Video, error) {
	resp, err := c.svc.Videos.List([]string{"snippet"}).Id(update.VideoID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get video %s: %w", update.VideoID, err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return nil, fmt.Errorf("video %s: %w", update.VideoID, types.ErrNotFound)
	}

	snippet := resp.Items[0].Snippet
	if update.Title != nil {
		snippet.Title = *update.Title
	}
	if update.Description != nil {
		snippet.Description = *update.Description
	}
	if update.Tags != nil {
		snippet.Tags = *update.Tags
	}

	updated, err := c.svc.Videos.Update([]string{"snippet"}, &youtube.Video{
		Id: update.VideoID,
		Snippet: &youtube.VideoSnippet{
			Title:       snippet.Title,
			Description: snippet.Description,
			Tags:        snippet.Tags,
			CategoryId:  snippet.CategoryId,
		},
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update video %s: %w", update.VideoID, err)
	}

	v := toVideo(updated)
	return &v, nil
}

func toVideo(item *youtube.Video) types.Video {
	v := types.Video{ID: item.Id}
	if s := item.Snippet; s != nil {
		v.Title = s.Title
		v.Description = s.Description
		v.Tags = s.Tags
		v.CategoryID = s.CategoryId
		if t, err := time.Parse(time.RFC3339, s.PublishedAt); err == nil {
			v.PublishedAt = t
		}
		v.ThumbnailURL = thumbnailURL(s.Thumbnails)
	}
	if item.ContentDetails != nil {
		v.Duration = item.ContentDetails.Duration
	}
	if st := item.Statistics; st != nil {
		v.ViewCount = st.ViewCount
		v.LikeCount = st.LikeCount
		v.CommentCount = st.CommentCount
	}
	if item.Status != nil {
		v.PrivacyStatus = item.Status.PrivacyStatus
	}
	return v
}

func thumbnailURL(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*youtube.Thumbnail{t.Maxres, t.High, t.Medium, t.Default} {
		if th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}
