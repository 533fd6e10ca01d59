package vimeo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pblonline/ops-dashboard/internal/types"
)

type fakeJobs struct {
	last      *types.SyncRun
	submitErr error
}

func (f *fakeJobs) Submit(_ context.Context, kind types.SyncKind) (*types.SyncRun, error) {
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &types.SyncRun{ID: "r1", Kind: kind, Status: types.StatusPending}, nil
}

func (f *fakeJobs) LatestRun(context.Context, types.SyncKind) (*types.SyncRun, error) {
	if f.last == nil {
		return nil, types.ErrNotFound
	}
	return f.last, nil
}

func serve(jobs *fakeJobs, method string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/api"), jobs)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(method, "/api/vimeo-ott/sync", nil))
	return w
}

func TestStatus(t *testing.T) {
	w := serve(&fakeJobs{}, http.MethodGet)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"lastRun":null}`, w.Body.String())

	w = serve(&fakeJobs{last: &types.SyncRun{ID: "r0", Kind: types.SyncKindVimeo, Status: types.StatusCompleted, RecordCount: 7}}, http.MethodGet)
	require.Equal(t, http.StatusOK, w.Code)

	var resp StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 7, resp.LastRun.RecordCount)
}

func TestSync(t *testing.T) {
	w := serve(&fakeJobs{}, http.MethodPost)
	assert.Equal(t, http.StatusAccepted, w.Code)

	w = serve(&fakeJobs{submitErr: types.ErrNotConfigured}, http.MethodPost)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
