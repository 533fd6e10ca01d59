package loaders

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"cloud.google.com/go/datastore"

	"github.com/pblonline/ops-dashboard/internal/types"
)

const kindVideo = "YtVideo"

// datastore rejects more than 500 entities per multi-put
const datastorePutLimit = 500

const datastoreConnectTimeout = 5 * time.Second

type dataStoreClient interface {
	io.Closer
	Get(ctx context.Context, key *datastore.Key, dst interface{}) error
	GetAll(ctx context.Context, q *datastore.Query, dst interface{}) ([]*datastore.Key, error)
	PutMulti(ctx context.Context, keys []*datastore.Key, src interface{}) ([]*datastore.Key, error)
}

// VideoDatastore caches YouTube videos in Cloud Datastore.
type VideoDatastore struct {
	client dataStoreClient
}

func NewVideoDatastore(ctx context.Context, projectID string) (*VideoDatastore, error) {
	dialCtx, cancel := context.WithTimeout(ctx, datastoreConnectTimeout)
	defer cancel()

	client, err := datastore.NewClient(dialCtx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create datastore client: %w", err)
	}
	return &VideoDatastore{client: client}, nil
}

func (s *VideoDatastore) Close() error {
	return s.client.Close()
}

type videoEntity struct {
	Title                string    `datastore:",noindex"`
	Description          string    `datastore:",noindex"`
	Tags                 []string  `datastore:",noindex"`
	CategoryID           string    `datastore:",noindex"`
	PublishedAt          time.Time `datastore:"PublishedAt"`
	ThumbnailURL         string    `datastore:",noindex"`
	Duration             string    `datastore:",noindex"`
	ViewCount            int64     `datastore:",noindex"`
	LikeCount            int64     `datastore:",noindex"`
	CommentCount         int64     `datastore:",noindex"`
	PrivacyStatus        string    `datastore:"PrivacyStatus"`
	Transcript           string    `datastore:",noindex"`
	GeneratedTitle       string    `datastore:",noindex"`
	GeneratedDescription string    `datastore:",noindex"`
	GeneratedTags        []string  `datastore:",noindex"`
	SyncedAt             time.Time `datastore:",noindex"`
}

func videoKey(id string) *datastore.Key {
	return datastore.NameKey(kindVideo, id, nil)
}

func (s *VideoDatastore) ListVideos(ctx context.Context) ([]types.Video, error) {
	var entities []videoEntity
	keys, err := s.client.GetAll(ctx, datastore.NewQuery(kindVideo).Order("-PublishedAt"), &entities)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos: %w", err)
	}
	videos := make([]types.Video, len(keys))
	for i, key := range keys {
		videos[i] = entities[i].toVideo(key.Name)
	}
	return videos, nil
}

func (s *VideoDatastore) GetVideo(ctx context.Context, id string) (*types.Video, error) {
	var e videoEntity
	if err := s.client.Get(ctx, videoKey(id), &e); err != nil {
		if errors.Is(err, datastore.ErrNoSuchEntity) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get video: %w", err)
	}
	v := e.toVideo(id)
	return &v, nil
}

func (s *VideoDatastore) PutVideos(ctx context.Context, videos []types.Video) error {
	for start := 0; start < len(videos); start += datastorePutLimit {
		end := start + datastorePutLimit
		if end > len(videos) {
			end = len(videos)
		}
		keys := make([]*datastore.Key, 0, end-start)
		entities := make([]*videoEntity, 0, end-start)
		for _, v := range videos[start:end] {
			keys = append(keys, videoKey(v.ID))
			entities = append(entities, fromVideo(v))
		}
		if _, err := s.client.PutMulti(ctx, keys, entities); err != nil {
			return fmt.Errorf("failed to store videos: %w", err)
		}
	}
	return nil
}

func fromVideo(v types.Video) *videoEntity {
	return &videoEntity{
		Title:                v.Title,
		Description:          v.Description,
		Tags:                 v.Tags,
		CategoryID:           v.CategoryID,
		PublishedAt:          v.PublishedAt,
		ThumbnailURL:         v.ThumbnailURL,
		Duration:             v.Duration,
		ViewCount:            int64(v.ViewCount),
		LikeCount:            int64(v.LikeCount),
		CommentCount:         int64(v.CommentCount),
		PrivacyStatus:        v.PrivacyStatus,
		Transcript:           v.Transcript,
		GeneratedTitle:       v.GeneratedTitle,
		GeneratedDescription: v.GeneratedDescription,
		GeneratedTags:        v.GeneratedTags,
		SyncedAt:             v.SyncedAt,
	}
}

func (e videoEntity) toVideo(id string) types.Video {
	return types.Video{
		ID:                   id,
		Title:                e.Title,
		Description:          e.Description,
		Tags:                 e.Tags,
		CategoryID:           e.CategoryID,
		PublishedAt:          e.PublishedAt,
		ThumbnailURL:         e.ThumbnailURL,
		Duration:             e.Duration,
		ViewCount:            uint64(e.ViewCount),
		LikeCount:            uint64(e.LikeCount),
		CommentCount:         uint64(e.CommentCount),
		PrivacyStatus:        e.PrivacyStatus,
		Transcript:           e.Transcript,
		GeneratedTitle:       e.GeneratedTitle,
		GeneratedDescription: e.GeneratedDescription,
		GeneratedTags:        e.GeneratedTags,
		SyncedAt:             e.SyncedAt,
	}
}
