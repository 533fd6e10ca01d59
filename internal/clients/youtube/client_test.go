package youtube

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/pblonline/ops-dashboard/internal/types"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := NewClient(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func TestListChannelVideos(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/youtube/v3/channels", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "UC1", r.URL.Query().Get("id"))
		writeJSON(w, map[string]interface{}{
			"items": []map[string]interface{}{
				{"contentDetails": map[string]interface{}{"relatedPlaylists": map[string]string{"uploads": "UU1"}}},
			},
		})
	})
	mux.HandleFunc("/youtube/v3/playlistItems", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "UU1", r.URL.Query().Get("playlistId"))
		if r.URL.Query().Get("pageToken") == "" {
			writeJSON(w, map[string]interface{}{
				"nextPageToken": "p2",
				"items":         []map[string]interface{}{{"contentDetails": map[string]string{"videoId": "v1"}}},
			})
			return
		}
		writeJSON(w, map[string]interface{}{
			"items": []map[string]interface{}{{"contentDetails": map[string]string{"videoId": "v2"}}},
		})
	})
	mux.HandleFunc("/youtube/v3/videos", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("id")
		writeJSON(w, map[string]interface{}{
			"items": []map[string]interface{}{{
				"id": id,
				"snippet": map[string]interface{}{
					"title":       "Video " + id,
					"publishedAt": "2024-03-01T10:00:00Z",
					"thumbnails":  map[string]interface{}{"high": map[string]string{"url": "https://img/" + id}},
				},
				"contentDetails": map[string]string{"duration": "PT4M13S"},
				"statistics":     map[string]string{"viewCount": "120", "likeCount": "7"},
				"status":         map[string]string{"privacyStatus": "public"},
			}},
		})
	})

	c := newTestClient(t, mux)
	videos, err := c.ListChannelVideos(context.Background(), "UC1")
	require.NoError(t, err)
	require.Len(t, videos, 2)

	assert.Equal(t, "v1", videos[0].ID)
	assert.Equal(t, "Video v1", videos[0].Title)
	assert.Equal(t, "https://img/v1", videos[0].ThumbnailURL)
	assert.Equal(t, uint64(120), videos[0].ViewCount)
	assert.Equal(t, "public", videos[0].PrivacyStatus)
	assert.Equal(t, 2024, videos[0].PublishedAt.Year())
	assert.False(t, videos[1].SyncedAt.IsZero())
}

func TestUpdateVideo_PreservesCategory(t *testing.T) {
	var sent map[string]interface{}
	mux := http.NewServeMux()
	mux.HandleFunc("/youtube/v3/videos", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, map[string]interface{}{
				"items": []map[string]interface{}{{
					"id":      "v1",
					"snippet": map[string]interface{}{"title": "Old", "description": "Old desc", "categoryId": "27"},
				}},
			})
		case http.MethodPut:
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
			writeJSON(w, sent)
		}
	})

	c := newTestClient(t, mux)
	title := "New title"
	v, err := c.UpdateVideo(context.Background(), types.VideoUpdate{VideoID: "v1", Title: &title})
	require.NoError(t, err)

	snippet := sent["snippet"].(map[string]interface{})
	assert.Equal(t, "27", snippet["categoryId"])
	assert.Equal(t, "Old desc", snippet["description"])
	assert.Equal(t, "New title", v.Title)
}

func TestUpdateVideo_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/youtube/v3/videos", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]interface{}{"items": []interface{}{}})
	})

	c := newTestClient(t, mux)
	_, err := c.UpdateVideo(context.Background(), types.VideoUpdate{VideoID: "missing"})
	assert.ErrorIs(t, err, types.ErrNotFound)
}
