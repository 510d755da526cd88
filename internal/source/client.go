// Package source implements the client for the paginated shifts API.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"shift-etl/internal/model"
)

// Client fetches raw shift records from the shifts API.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// New creates a Client for the given shifts endpoint.
func New(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

// FetchAll walks the paginated shifts endpoint until the API stops
// returning a next link and returns every record in page order. Any
// non-2xx response or malformed page aborts the whole fetch.
func (c *Client) FetchAll(ctx context.Context) ([]model.RawShift, error) {
	var all []model.RawShift

	url := c.baseURL
	for page := 1; ; page++ {
		p, err := c.fetchPage(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("fetching shifts page %d: %w", page, err)
		}
		all = append(all, p.Results...)

		c.log.Debug("fetched shifts page",
			zap.Int("page", page),
			zap.Int("records", len(p.Results)))

		if p.Links.Next == "" {
			break
		}
		url = p.Links.Base + p.Links.Next
	}

	c.log.Info("fetched all shifts", zap.Int("records", len(all)))
	return all, nil
}

func (c *Client) fetchPage(ctx context.Context, url string) (*model.ShiftsPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("shifts API status=%d, body=%s", resp.StatusCode, string(b))
	}

	var page model.ShiftsPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding shifts page: %w", err)
	}

	return &page, nil
}
