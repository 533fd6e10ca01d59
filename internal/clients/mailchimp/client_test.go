package mailchimp

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := NewClient("key-us21", "")
	require.NoError(t, err)
	return c.WithBaseURL(srv.URL)
}

func TestNewClient_ServerPrefix(t *testing.T) {
	c, err := NewClient("abc123-us21", "")
	require.NoError(t, err)
	assert.Equal(t, "https://us21.api.mailchimp.com/3.0", c.baseURL)

	c, err = NewClient("abc123", "us5")
	require.NoError(t, err)
	assert.Equal(t, "https://us5.api.mailchimp.com/3.0", c.baseURL)

	_, err = NewClient("abc123", "")
	assert.Error(t, err)

	_, err = NewClient("", "us5")
	assert.Error(t, err)
}

func TestSubscriberHash(t *testing.T) {
	assert.Equal(t, SubscriberHash("Urist.McVankab@freddiesjokes.com"), SubscriberHash(" urist.mcvankab@freddiesjokes.com "))
	assert.Equal(t, "62eeb292278cc15f5817cb78f7790b08", SubscriberHash("urist.mcvankab@freddiesjokes.com"))
}

func TestListMembers_Paginates(t *testing.T) {
	var offsets []int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "anystring", user)
		assert.Equal(t, "key-us21", pass)
		assert.Equal(t, "/lists/L1/members", r.URL.Path)

		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		offsets = append(offsets, offset)

		members := []Member{}
		if offset == 0 {
			for i := 0; i < membersPageSize; i++ {
				members = append(members, Member{EmailAddress: strconv.Itoa(i) + "@example.com", Status: "subscribed"})
			}
		} else {
			members = append(members, Member{
				EmailAddress: "last@example.com",
				Status:       "unsubscribed",
				Tags:         []Tag{{ID: 1, Name: "current members"}},
			})
		}
		_ = json.NewEncoder(w).Encode(membersResponse{Members: members, TotalItems: membersPageSize + 1})
	})

	members, err := c.ListMembers(context.Background(), "L1")
	require.NoError(t, err)
	require.Len(t, members, membersPageSize+1)
	assert.Equal(t, []int{0, membersPageSize}, offsets)

	last := members[len(members)-1]
	assert.Equal(t, "L1", last.ListID)
	assert.Equal(t, []string{"current members"}, last.TagNames())
}

func TestUpdateMemberTags(t *testing.T) {
	var got tagsRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/lists/L1/members/"+SubscriberHash("a@example.com")+"/tags", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	})

	err := c.UpdateMemberTags(context.Background(), "L1", "A@example.com", []TagUpdate{
		{Name: "cancelled members", Status: TagInactive},
		{Name: "current members", Status: TagActive},
	})
	require.NoError(t, err)
	require.Len(t, got.Tags, 2)
	assert.Equal(t, TagInactive, got.Tags[0].Status)
	assert.Equal(t, "current members", got.Tags[1].Name)
}

func TestUpsertMember_SplitsName(t *testing.T) {
	var got upsertMemberRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(Member{EmailAddress: got.EmailAddress, Status: "subscribed"})
	})

	m, err := c.UpsertMember(context.Background(), "L1", "new@example.com", "Ada Lovelace King")
	require.NoError(t, err)
	assert.Equal(t, "subscribed", m.Status)
	assert.Equal(t, "subscribed", got.StatusIfNew)
	assert.Equal(t, "Ada", got.MergeFields["FNAME"])
	assert.Equal(t, "Lovelace King", got.MergeFields["LNAME"])
}

func TestAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":400,"title":"Member Exists","detail":"already a list member"}`))
	})

	_, err := c.UpsertMember(context.Background(), "L1", "a@example.com", "")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Member Exists", apiErr.Title)
}
