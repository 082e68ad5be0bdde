package httpclient

import (
	"net/http"
	"time"
)

// Client is a thin wrapper around http.Client shared by all upstream
// adapters. Per-attempt deadlines come from the request context; the
// client-level timeout is only a hard upper bound.
type Client struct {
	httpClient *http.Client
}

func New(timeout time.Duration) *Client {
	transport := &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 50,
		IdleConnTimeout:     30 * time.Second,
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}
