// Package httpclient is the JSON-over-GET transport shared by the external
// data providers. It applies a timeout, an optional request rate limit, and
// records per-provider metrics. It never retries.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"agriinsight/internal/metrics"
)

// Config configures a Client.
type Config struct {
	Provider          string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
	HTTPClient        *http.Client
}

// Client issues GET requests and decodes JSON bodies.
type Client struct {
	provider string
	client   *http.Client
	limiter  *rate.Limiter
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL    string
	Status string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s failed: %s", e.URL, e.Status)
}

// New creates a client. A zero timeout defaults to 12 seconds.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 12 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	c := &Client{provider: cfg.Provider, client: hc}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c
}

// GetJSON requests endpoint with the given query and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, endpoint string, query url.Values, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveExternal(c.provider, time.Since(start).Seconds(), err)
	}()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return err
	}
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			uerr.URL = endpoint
		}
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		// query strings may carry API keys
		return &StatusError{URL: endpoint, Status: resp.Status, Code: resp.StatusCode}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
