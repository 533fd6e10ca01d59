package vimeo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCustomers_Paginates(t *testing.T) {
	var pages []int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "secret", user)
		assert.Equal(t, "/customers", r.URL.Path)
		assert.Equal(t, "42", r.URL.Query().Get("product"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		pages = append(pages, page)

		resp := map[string]interface{}{"total": 3}
		switch page {
		case 1:
			resp["_embedded"] = map[string]interface{}{"customers": []map[string]interface{}{
				{"id": 1, "email": "a@example.com", "status": "enabled"},
				{"id": 2, "email": "b@example.com", "status": "cancelled"},
			}}
		default:
			resp["_embedded"] = map[string]interface{}{"customers": []map[string]interface{}{
				{"id": 3, "email": "c@example.com", "status": "enabled",
					"_embedded": map[string]interface{}{"products": []map[string]interface{}{{"id": 42, "name": "PBL Online Subscription"}}}},
			}}
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	client, err := NewClient("secret")
	require.NoError(t, err)
	client.WithBaseURL(srv.URL)

	customers, err := client.ListCustomers(context.Background(), "42")
	require.NoError(t, err)

	require.Len(t, customers, 3)
	assert.Equal(t, []int{1, 2}, pages)
	assert.Equal(t, "cancelled", customers[1].Status)
	assert.Equal(t, "PBL Online Subscription", customers[2].ProductName("fallback"))
	assert.Equal(t, "fallback", customers[0].ProductName("fallback"))
}

func TestListCustomers_StopsOnEmptyPage(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"_embedded": map[string]interface{}{"customers": []interface{}{}}})
	}))
	defer srv.Close()

	client, _ := NewClient("secret")
	customers, err := client.WithBaseURL(srv.URL).ListCustomers(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, customers)
	assert.Equal(t, 1, calls)
}

func TestListCustomers_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, _ := NewClient("bad")
	_, err := client.WithBaseURL(srv.URL).ListCustomers(context.Background(), "")
	assert.ErrorContains(t, err, "status 401")
}

func TestNewClient_RequiresKey(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)
}
