package catalog

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is a read-through cache for exact-triple lookups. Edges are
// reference data, so entries only go stale when an admin edits the
// catalog, and those paths invalidate explicitly. A nil *Cache is valid
// and caches nothing.
type Cache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
	if rdb == nil {
		return nil
	}
	return &Cache{rdb: rdb, ttl: ttl}
}

func cacheKey(originID, destinationID string, mode Mode) string {
	return "catalog:edge:" + originID + ":" + destinationID + ":" + string(mode)
}

func (c *Cache) get(ctx context.Context, originID, destinationID string, mode Mode) (Edge, bool) {
	if c == nil {
		return Edge{}, false
	}
	raw, err := c.rdb.Get(ctx, cacheKey(originID, destinationID, mode)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.WarnContext(ctx, "catalog cache read failed", slog.String("error", err.Error()))
		}
		return Edge{}, false
	}
	var edge Edge
	if err := json.Unmarshal(raw, &edge); err != nil {
		return Edge{}, false
	}
	return edge, true
}

func (c *Cache) put(ctx context.Context, edge Edge) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(edge)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, cacheKey(edge.OriginID, edge.DestinationID, edge.Mode), payload, c.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "catalog cache write failed", slog.String("error", err.Error()))
	}
}

func (c *Cache) invalidate(ctx context.Context, edge Edge) {
	if c == nil {
		return
	}
	_ = c.rdb.Del(ctx, cacheKey(edge.OriginID, edge.DestinationID, edge.Mode)).Err()
}
