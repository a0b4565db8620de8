// Package gameapi implements the Fetch-stage collaborator: a vendor match
// data client with per-region rate limiting and retry classification, per
// spec.md §4.4/§6.
package gameapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/matchmind/matchmind/internal/core"
	"github.com/matchmind/matchmind/internal/ratelimit"
	"github.com/matchmind/matchmind/pkg/version"
)

// Client encapsulates vendor HTTP calls for match detail/timeline,
// grounded on the teacher's recovery-classification pattern
// (pkg/mcp/recovery.go) generalized from MCP transport errors to vendor
// HTTP statuses.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiToken   string
	buckets    *ratelimit.Registry
	maxTries   int
}

// Config configures a Client.
type Config struct {
	BaseURL    string
	APIToken   string
	MaxTries   int
	HTTPClient *http.Client
}

// NewClient constructs a gameapi.Client backed by a per-region rate-limit
// registry sized from the caller's RateLimitConfig lookup.
func NewClient(cfg Config, buckets *ratelimit.Registry) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	maxTries := cfg.MaxTries
	if maxTries <= 0 {
		maxTries = 3
	}
	return &Client{httpClient: hc, baseURL: cfg.BaseURL, apiToken: cfg.APIToken, buckets: buckets, maxTries: maxTries}
}

// GetMatchDetail retrieves match detail, respecting the region's token
// bucket and retrying transient failures per spec.md §4.4.
func (c *Client) GetMatchDetail(ctx context.Context, matchID, region string) (core.MatchDetail, error) {
	var detail core.MatchDetail
	path := fmt.Sprintf("/match/%s", matchID)
	err := c.call(ctx, region, path, &detail)
	return detail, err
}

// GetMatchTimeline retrieves the per-minute timeline frames.
func (c *Client) GetMatchTimeline(ctx context.Context, matchID, region string) ([]core.TimelineFrame, error) {
	var frames []core.TimelineFrame
	path := fmt.Sprintf("/match/%s/timeline", matchID)
	err := c.call(ctx, region, path, &frames)
	return frames, err
}

// call performs one rate-limited, retried GET and decodes the JSON body
// into out.
func (c *Client) call(ctx context.Context, region, path string, out any) error {
	bucket := c.buckets.For(region)

	attempt := 0
	operation := func() error {
		attempt++
		if err := bucket.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("X-API-Token", c.apiToken)
		req.Header.Set("User-Agent", version.Full())

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("gameapi request: %w", err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			return json.NewDecoder(resp.Body).Decode(out)
		case resp.StatusCode == http.StatusTooManyRequests:
			wait := retryAfter(resp.Header.Get("Retry-After"))
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("gameapi rate limited: %d", resp.StatusCode)
		case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden:
			body, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(core.NewPipelineError("fetch", core.KindPermanentVendor,
				fmt.Errorf("gameapi status %d: %s", resp.StatusCode, string(body))))
		case resp.StatusCode >= 500:
			return fmt.Errorf("gameapi server error: %d", resp.StatusCode)
		default:
			body, _ := io.ReadAll(resp.Body)
			return backoff.Permanent(core.NewPipelineError("fetch", core.KindPermanentVendor,
				fmt.Errorf("gameapi unexpected status %d: %s", resp.StatusCode, string(body))))
		}
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	bo.Multiplier = 2
	bo.RandomizationFactor = 0.25
	bounded := backoff.WithMaxRetries(bo, uint64(c.maxTries-1))

	if err := backoff.Retry(operation, backoff.WithContext(bounded, ctx)); err != nil {
		return fmt.Errorf("gameapi call %s: %w", path, err)
	}
	return nil
}

// retryAfter parses the Retry-After header as seconds, defaulting to the
// minimum 1s floor spec.md §4.4 requires.
func retryAfter(header string) time.Duration {
	if header == "" {
		return 1 * time.Second
	}
	secs, err := strconv.Atoi(header)
	if err != nil || secs < 1 {
		return 1 * time.Second
	}
	return time.Duration(secs) * time.Second
}
