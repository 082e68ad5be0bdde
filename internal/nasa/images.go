package nasa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"astrodeck/internal/common/httpclient"
)

// ImageClient queries the NASA Image and Video Library search endpoint.
type ImageClient struct {
	baseURL string
	http    *httpclient.Client
}

func NewImageClient(baseURL string, client *httpclient.Client) *ImageClient {
	return &ImageClient{
		baseURL: baseURL,
		http:    client,
	}
}

// Search runs a free-text query. mediaType and the year bounds are
// optional; zero values are omitted from the request.
func (c *ImageClient) Search(ctx context.Context, query, mediaType string, yearStart, yearEnd int) (*ImageSearch, error) {
	params := url.Values{}
	params.Set("q", query)
	if mediaType != "" {
		params.Set("media_type", mediaType)
	}
	if yearStart > 0 {
		params.Set("year_start", strconv.Itoa(yearStart))
	}
	if yearEnd > 0 {
		params.Set("year_end", strconv.Itoa(yearEnd))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("image search: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("image search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image search: unexpected status %d", resp.StatusCode)
	}

	var result ImageSearch
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("image search: decode response: %w", err)
	}
	return &result, nil
}
