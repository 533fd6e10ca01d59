package loaders

import (
	"context"
	"reflect"
	"testing"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pblonline/ops-dashboard/internal/types"
)

// fakeDatastore keeps entities in memory keyed by name.
type fakeDatastore struct {
	entities map[string]videoEntity
	putCalls []int
}

func newFakeDatastore() *fakeDatastore {
	return &fakeDatastore{entities: map[string]videoEntity{}}
}

func (f *fakeDatastore) Close() error { return nil }

func (f *fakeDatastore) Get(_ context.Context, key *datastore.Key, dst interface{}) error {
	e, ok := f.entities[key.Name]
	if !ok {
		return datastore.ErrNoSuchEntity
	}
	*(dst.(*videoEntity)) = e
	return nil
}

func (f *fakeDatastore) GetAll(_ context.Context, _ *datastore.Query, dst interface{}) ([]*datastore.Key, error) {
	out := reflect.ValueOf(dst).Elem()
	var keys []*datastore.Key
	for name, e := range f.entities {
		keys = append(keys, videoKey(name))
		out.Set(reflect.Append(out, reflect.ValueOf(e)))
	}
	return keys, nil
}

func (f *fakeDatastore) PutMulti(_ context.Context, keys []*datastore.Key, src interface{}) ([]*datastore.Key, error) {
	entities := src.([]*videoEntity)
	for i, key := range keys {
		f.entities[key.Name] = *entities[i]
	}
	f.putCalls = append(f.putCalls, len(keys))
	return keys, nil
}

func TestVideoDatastore_RoundTrip(t *testing.T) {
	fake := newFakeDatastore()
	store := &VideoDatastore{client: fake}
	ctx := context.Background()

	published := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	err := store.PutVideos(ctx, []types.Video{{
		ID:          "abc123",
		Title:       "Project planning basics",
		Tags:        []string{"pbl", "planning"},
		PublishedAt: published,
		ViewCount:   42,
		Transcript:  "hello",
	}})
	require.NoError(t, err)

	got, err := store.GetVideo(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "Project planning basics", got.Title)
	assert.Equal(t, uint64(42), got.ViewCount)
	assert.Equal(t, published, got.PublishedAt)
	assert.Equal(t, "hello", got.Transcript)

	all, err := store.ListVideos(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "abc123", all[0].ID)
}

func TestVideoDatastore_GetMissing(t *testing.T) {
	store := &VideoDatastore{client: newFakeDatastore()}

	_, err := store.GetVideo(context.Background(), "missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestVideoDatastore_PutChunksLargeBatches(t *testing.T) {
	fake := newFakeDatastore()
	store := &VideoDatastore{client: fake}

	videos := make([]types.Video, 1200)
	for i := range videos {
		videos[i] = types.Video{ID: time.Unix(int64(i), 0).UTC().Format(time.RFC3339)}
	}
	require.NoError(t, store.PutVideos(context.Background(), videos))

	assert.Equal(t, []int{500, 500, 200}, fake.putCalls)
	assert.Len(t, fake.entities, 1200)
}

func TestNewVideoDatastore_EmulatorDialsLazily(t *testing.T) {
	t.Setenv("DATASTORE_EMULATOR_HOST", "127.0.0.1:1")

	store, err := NewVideoDatastore(context.Background(), "pbl-test")
	require.NoError(t, err)
	assert.NoError(t, store.Close())
}
