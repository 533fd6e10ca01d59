// Package mailchimp wraps the parts of the Mailchimp Marketing API the
// dashboard uses: audiences, members, tags and campaign reports.
package mailchimp

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pblonline/ops-dashboard/internal/utils"
)

const membersPageSize = 1000

type Client struct {
	apiKey  string
	client  *http.Client
	baseURL string
}

// NewClient builds a client for the data center named by serverPrefix, or
// by the "-us21" style suffix of the API key when serverPrefix is empty.
func NewClient(apiKey, serverPrefix string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("mailchimp api key is required")
	}
	if serverPrefix == "" {
		if i := strings.LastIndex(apiKey, "-"); i >= 0 && i < len(apiKey)-1 {
			serverPrefix = apiKey[i+1:]
		}
	}
	if serverPrefix == "" {
		return nil, fmt.Errorf("mailchimp server prefix is required")
	}
	return &Client{
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: fmt.Sprintf("https://%s.api.mailchimp.com/3.0", serverPrefix),
	}, nil
}

// WithBaseURL points the client at another host, for tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// SubscriberHash is the member id Mailchimp derives from an address.
func SubscriberHash(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}

func (c *Client) Lists(ctx context.Context) ([]List, error) {
	var resp listsResponse
	q := url.Values{"count": {"100"}}
	if err := c.do(ctx, http.MethodGet, "/lists", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Lists, nil
}

// ListMembers pages through every member of an audience.
func (c *Client) ListMembers(ctx context.Context, listID string) ([]Member, error) {
	var all []Member
	for offset := 0; ; offset += membersPageSize {
		q := url.Values{}
		q.Set("count", strconv.Itoa(membersPageSize))
		q.Set("offset", strconv.Itoa(offset))
		q.Set("fields", "members.email_address,members.status,members.full_name,members.tags,members.list_id,total_items")

		var resp membersResponse
		if err := c.do(ctx, http.MethodGet, "/lists/"+url.PathEscape(listID)+"/members", q, nil, &resp); err != nil {
			return nil, fmt.Errorf("offset %d: %w", offset, err)
		}
		for i := range resp.Members {
			if resp.Members[i].ListID == "" {
				resp.Members[i].ListID = listID
			}
		}
		all = append(all, resp.Members...)

		utils.Zlog.Debug("Fetched Mailchimp members page",
			zap.String("listId", listID),
			zap.Int("offset", offset),
			zap.Int("count", len(resp.Members)),
			zap.Int("total", resp.TotalItems))

		if len(resp.Members) < membersPageSize || len(all) >= resp.TotalItems {
			break
		}
	}
	return all, nil
}

// UpdateMemberTags activates or deactivates tags on one member.
func (c *Client) UpdateMemberTags(ctx context.Context, listID, email string, tags []TagUpdate) error {
	path := fmt.Sprintf("/lists/%s/members/%s/tags", url.PathEscape(listID), SubscriberHash(email))
	return c.do(ctx, http.MethodPost, path, nil, tagsRequest{Tags: tags}, nil)
}

// UpsertMember adds an address to an audience, subscribing it if new.
func (c *Client) UpsertMember(ctx context.Context, listID, email, name string) (*Member, error) {
	req := upsertMemberRequest{
		EmailAddress: strings.TrimSpace(email),
		StatusIfNew:  "subscribed",
	}
	if name = strings.TrimSpace(name); name != "" {
		first, last, _ := strings.Cut(name, " ")
		req.MergeFields = map[string]string{"FNAME": first}
		if last != "" {
			req.MergeFields["LNAME"] = last
		}
	}

	var member Member
	path := fmt.Sprintf("/lists/%s/members/%s", url.PathEscape(listID), SubscriberHash(email))
	if err := c.do(ctx, http.MethodPut, path, nil, req, &member); err != nil {
		return nil, err
	}
	return &member, nil
}

// Reports returns the most recent sent-campaign reports.
func (c *Client) Reports(ctx context.Context, count int) ([]Report, error) {
	if count <= 0 {
		count = 10
	}
	q := url.Values{}
	q.Set("count", strconv.Itoa(count))
	q.Set("type", "regular")

	var resp reportsResponse
	if err := c.do(ctx, http.MethodGet, "/reports", q, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Reports, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth("anystring", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// APIError is Mailchimp's problem-details error body.
type APIError struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mailchimp returned status %d: %s: %s", e.Status, e.Title, e.Detail)
}

func decodeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	apiErr := &APIError{Status: resp.StatusCode}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Title == "" {
		apiErr.Title = http.StatusText(resp.StatusCode)
		apiErr.Detail = string(body)
	}
	apiErr.Status = resp.StatusCode
	return apiErr
}
