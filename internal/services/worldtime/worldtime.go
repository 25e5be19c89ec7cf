package worldtime

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	requestTimeout = 5 * time.Second
	cacheKey       = "worldtime:current"
	maxBodyBytes   = 1 << 20
)

// Snapshot is the subset of the upstream world-time payload we expose.
type Snapshot struct {
	Timezone  string `json:"timezone"`
	Datetime  string `json:"datetime"`
	UTCOffset string `json:"utc_offset"`
}

// Client fetches the current world time from an upstream service. Responses
// are cached in Redis for a short TTL when a cache is configured; cache
// failures degrade to a direct fetch, never to an error.
type Client struct {
	upstreamURL string
	httpClient  *http.Client
	cache       *redis.Client
	cacheTTL    time.Duration
	log         *zap.Logger
}

// New creates a world-time client. cache may be nil to disable caching.
func New(upstreamURL string, cache *redis.Client, cacheTTL time.Duration, log *zap.Logger) *Client {
	return &Client{
		upstreamURL: upstreamURL,
		httpClient:  &http.Client{Timeout: requestTimeout},
		cache:       cache,
		cacheTTL:    cacheTTL,
		log:         log,
	}
}

// Current returns the current world time, from cache when fresh.
func (c *Client) Current(ctx context.Context) (*Snapshot, error) {
	if snap := c.fromCache(ctx); snap != nil {
		return snap, nil
	}

	snap, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	c.store(ctx, snap)
	return snap, nil
}

func (c *Client) fetch(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.upstreamURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build world time request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("world time upstream unreachable: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("world time upstream returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read world time response: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse world time response: %w", err)
	}
	if snap.Datetime == "" {
		return nil, fmt.Errorf("world time response missing datetime")
	}

	return &snap, nil
}

func (c *Client) fromCache(ctx context.Context) *Snapshot {
	if c.cache == nil {
		return nil
	}

	raw, err := c.cache.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Debug("world_time_cache_read_failed", zap.Error(err))
		}
		return nil
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil
	}
	return &snap
}

func (c *Client) store(ctx context.Context, snap *Snapshot) {
	if c.cache == nil {
		return
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, cacheKey, raw, c.cacheTTL).Err(); err != nil {
		c.log.Debug("world_time_cache_write_failed", zap.Error(err))
	}
}
