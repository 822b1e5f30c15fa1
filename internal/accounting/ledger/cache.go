package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/odyssey-journals/internal/shared"
)

// BumpChannel carries ledger version bumps as "org:period:version".
const BumpChannel = "ledger.bump"

// Cache stores derived ledger views in Redis under a per-period version.
// Bumping the version orphans every view built from the previous one.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache instantiates the cache helper. A nil client disables caching.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// Version returns the current version of a period, initialising when missing.
func (c *Cache) Version(ctx context.Context, orgID, periodID string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	key := shared.LedgerVersionKey(orgID, periodID)
	ver, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		if err := c.client.SetNX(ctx, key, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, key).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey composes a view key with the period's current version.
func (c *Cache) BuildKey(ctx context.Context, view, orgID, periodID string) (string, error) {
	ver, err := c.Version(ctx, orgID, periodID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("ledger:%s:%s:%s:%d", view, orgID, periodID, ver), nil
}

// FetchJSON loads a cached value or populates it using the loader.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest any, loader func(context.Context) (any, error)) error {
	if loader == nil {
		return errors.New("ledger cache: loader required")
	}
	if c != nil && c.client != nil {
		payload, err := c.client.Get(ctx, key).Bytes()
		if err == nil {
			return json.Unmarshal(payload, dest)
		}
		if !errors.Is(err, redis.Nil) {
			return err
		}
	}
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if c != nil && c.client != nil {
		if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
			return err
		}
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates a period's views and announces the new version.
func (c *Cache) Bump(ctx context.Context, orgID, periodID string) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Incr(ctx, shared.LedgerVersionKey(orgID, periodID)).Result()
	if err != nil {
		return 0, err
	}
	msg := orgID + ":" + periodID + ":" + strconv.FormatInt(ver, 10)
	if err := c.client.Publish(ctx, BumpChannel, msg).Err(); err != nil {
		return ver, err
	}
	return ver, nil
}
