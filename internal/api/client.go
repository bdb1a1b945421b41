package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/banshee-data/model-ranker/internal/httputil"
	"github.com/banshee-data/model-ranker/internal/report"
)

// Client calls a remote ranking server.
type Client struct {
	BaseURL string
	HTTP    httputil.HTTPClient
}

// NewClient returns a Client for baseURL with a 30 second request timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Rank asks the server to rank req.
func (c *Client) Rank(ctx context.Context, req RankRequest) (*report.Report, error) {
	var out report.Report
	if err := httputil.PostJSON(ctx, c.HTTP, c.BaseURL+"/api/rank", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Proximity asks the server for the per-criterion proximity matrix of req.
func (c *Client) Proximity(ctx context.Context, req RankRequest) (*ProximityResponse, error) {
	var out ProximityResponse
	if err := httputil.PostJSON(ctx, c.HTTP, c.BaseURL+"/api/proximity", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
