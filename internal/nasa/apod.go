package nasa

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"astrodeck/internal/common/httpclient"
)

// ApodClient fetches the Astronomy Picture of the Day.
type ApodClient struct {
	baseURL string
	apiKey  string
	http    *httpclient.Client
}

func NewApodClient(baseURL, apiKey string, client *httpclient.Client) *ApodClient {
	return &ApodClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    client,
	}
}

// Fetch retrieves the APOD entry for the given calendar date. Video
// entries include a thumbnail URL because thumbs is always requested.
func (c *ApodClient) Fetch(ctx context.Context, date time.Time) (*Apod, error) {
	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("date", date.Format("2006-01-02"))
	params.Set("thumbs", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("apod: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apod: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("apod: unexpected status %d", resp.StatusCode)
	}

	var apod Apod
	if err := json.NewDecoder(resp.Body).Decode(&apod); err != nil {
		return nil, fmt.Errorf("apod: decode response: %w", err)
	}
	return &apod, nil
}
