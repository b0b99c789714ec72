package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"reposition/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	// CatalogVersionKey tracks a global version for the scored catalog.
	// Clients poll or subscribe for changes instead of re-fetching data.
	CatalogVersionKey = "reposition:catalog:version"

	// teamAnalyticsKeyPrefix namespaces cached team-analysis payloads,
	// keyed by the diacritic-folded club name.
	teamAnalyticsKeyPrefix = "reposition:analytics:team:"
)

// Cache handles all Redis operations: the catalog version counter and the
// team-analytics read-through cache. Oracle results are deliberately never
// cached - identical input re-invokes the process every time.
type Cache struct {
	client *redis.Client
}

// NewCache creates a Redis-backed cache.
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// BumpCatalogVersion increments the catalog version after ingestion or bulk
// analysis writes compatibility records.
func (c *Cache) BumpCatalogVersion(ctx context.Context) error {
	return c.client.Incr(ctx, CatalogVersionKey).Err()
}

// CatalogVersion returns the current catalog version, 0 when unset.
func (c *Cache) CatalogVersion(ctx context.Context) (int64, error) {
	version, err := c.client.Get(ctx, CatalogVersionKey).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return version, nil
}

// GetTeamAnalytics returns a cached team-analysis payload, or (nil, false)
// on a miss. Cache errors degrade to a miss; the database stays the source
// of truth.
func (c *Cache) GetTeamAnalytics(ctx context.Context, foldedClub string) (*models.TeamAnalysisResponse, bool) {
	raw, err := c.client.Get(ctx, teamAnalyticsKeyPrefix+foldedClub).Bytes()
	if err != nil {
		return nil, false
	}
	var resp models.TeamAnalysisResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, false
	}
	return &resp, true
}

// SetTeamAnalytics caches a team-analysis payload with a TTL.
func (c *Cache) SetTeamAnalytics(ctx context.Context, foldedClub string, resp *models.TeamAnalysisResponse, ttl time.Duration) error {
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal team analytics: %w", err)
	}
	return c.client.Set(ctx, teamAnalyticsKeyPrefix+foldedClub, raw, ttl).Err()
}

// Ping checks if Redis is reachable
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}
