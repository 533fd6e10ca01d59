// Package vimeo is a small client for the Vimeo OTT (VHX) customers API.
package vimeo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/pblonline/ops-dashboard/internal/utils"
)

const (
	defaultBaseURL = "https://api.vhx.tv"
	pageSize       = 100
)

type Product struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Customer struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Plan      string    `json:"plan"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Embedded  struct {
		Products []Product `json:"products"`
	} `json:"_embedded"`
}

// ProductName returns the first embedded product name, or fallback.
func (c Customer) ProductName(fallback string) string {
	if len(c.Embedded.Products) > 0 && c.Embedded.Products[0].Name != "" {
		return c.Embedded.Products[0].Name
	}
	return fallback
}

type customersPage struct {
	Count    int `json:"count"`
	Total    int `json:"total"`
	Embedded struct {
		Customers []Customer `json:"customers"`
	} `json:"_embedded"`
}

type Client struct {
	apiKey  string
	client  *http.Client
	baseURL string
}

func NewClient(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("vimeo ott api key is required")
	}
	return &Client{
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultBaseURL,
	}, nil
}

// WithBaseURL points the client at another host, for tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// GetProduct fetches a product so customers can be labelled with its name.
func (c *Client) GetProduct(ctx context.Context, productID string) (*Product, error) {
	var p Product
	if err := c.get(ctx, "/products/"+url.PathEscape(productID), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListCustomers pages through every customer of a product.
func (c *Client) ListCustomers(ctx context.Context, productID string) ([]Customer, error) {
	var all []Customer
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("per_page", strconv.Itoa(pageSize))
		if productID != "" {
			q.Set("product", productID)
		}

		var resp customersPage
		if err := c.get(ctx, "/customers", q, &resp); err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		all = append(all, resp.Embedded.Customers...)

		utils.Zlog.Debug("Fetched Vimeo OTT customers page",
			zap.Int("page", page),
			zap.Int("count", len(resp.Embedded.Customers)),
			zap.Int("total", resp.Total))

		if len(resp.Embedded.Customers) == 0 || (resp.Total > 0 && len(all) >= resp.Total) {
			break
		}
	}
	return all, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("vimeo ott returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
