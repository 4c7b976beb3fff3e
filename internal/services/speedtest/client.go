// Package speedtest measures ping and download throughput against a
// Cloudflare-style speed endpoint.
package speedtest

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// Client issues the ping and download requests of a measurement.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewClient builds a client for baseURL. connectTimeout bounds dialing and
// response headers; body reads are bounded by the request context.
func NewClient(baseURL, userAgent string, connectTimeout time.Duration) *Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: connectTimeout,
		}).DialContext,
		ResponseHeaderTimeout: connectTimeout,
	}

	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		http:      &http.Client{Transport: transport},
	}
}

// setHeaders applies the common request headers.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Pragma", "no-cache")
}

// Ping measures the wall-clock milliseconds to response headers for a
// zero-byte download.
func (c *Client) Ping(ctx context.Context) (int, error) {
	url := c.baseURL + "/__down?bytes=0"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build ping request: %w", err)
	}
	c.setHeaders(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("ping failed: %w", err)
	}
	elapsed := time.Since(start)
	defer func() { _ = resp.Body.Close() }()

	// Drain the (empty) body so the connection is reusable.
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("ping returned status %d", resp.StatusCode)
	}
	return int(elapsed.Milliseconds()), nil
}

// Download opens the measurement stream of totalBytes. The caller owns the
// returned body; cancelling ctx unblocks reads.
func (c *Client) Download(ctx context.Context, totalBytes int64) (io.ReadCloser, error) {
	url := fmt.Sprintf("%s/__down?bytes=%d", c.baseURL, totalBytes)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("download returned status %d", resp.StatusCode)
	}
	if resp.Body == nil {
		return nil, fmt.Errorf("download returned no body")
	}
	return resp.Body, nil
}
