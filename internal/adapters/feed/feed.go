// Package feed pulls entity definitions from an upstream catalog feed
// and folds them into the local catalog on a schedule.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/marquee-live/marquee/internal/domain/types"
)

// Client fetches the upstream entity feed. The zero value is not usable;
// construct with NewClient.
type Client struct {
	baseURL string
	httpc   *http.Client
}

// NewClient builds a feed client for the given endpoint URL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		httpc:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves the full entity list from the upstream feed. The body is
// expected to be a JSON array of wire entities; a top-level object with an
// "entities" key is also accepted.
func (c *Client) Fetch(ctx context.Context) ([]types.WireEntity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("feed: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed: fetch: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s", ErrUpstreamStatus, res.Status)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("feed: read body: %w", err)
	}

	return decodeFeed(body)
}

// envelope is the alternate upstream shape.
type envelope struct {
	Entities []types.WireEntity `json:"entities"`
}

func decodeFeed(body []byte) ([]types.WireEntity, error) {
	var list []types.WireEntity
	if err := json.Unmarshal(body, &list); err == nil {
		return list, nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
	}
	return env.Entities, nil
}
