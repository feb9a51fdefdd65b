// Package cache provides caching implementations for repository interfaces.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"tradeview/internal/feature/symbolsearch/domain/entity"
	"tradeview/internal/feature/symbolsearch/usecase"
)

var _ usecase.SymbolRepository = (*CachingSymbolRepository)(nil)

// CachingSymbolRepository decorates a SymbolRepository with Redis caching.
// It implements the decorator pattern, transparently adding caching without
// modifying the underlying repository.
type CachingSymbolRepository struct {
	inner     usecase.SymbolRepository
	rdb       *redis.Client
	ttl       time.Duration
	namespace string
}

// NewCachingSymbolRepository decorates a SymbolRepository with Redis caching.
// If ttl is 0, it defaults to 10 minutes. If namespace is empty, it uses "symbolsearch".
func NewCachingSymbolRepository(rdb *redis.Client, ttl time.Duration, inner usecase.SymbolRepository, namespace string) *CachingSymbolRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if namespace == "" {
		namespace = "symbolsearch"
	}
	return &CachingSymbolRepository{
		inner:     inner,
		rdb:       rdb,
		ttl:       ttl,
		namespace: namespace,
	}
}

// Search returns matching symbols, checking cache first then falling back to the database.
func (c *CachingSymbolRepository) Search(ctx context.Context, query string, limit int) ([]entity.Symbol, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.Search(ctx, query, limit)
	}

	key := c.cacheKey(query, limit)

	// 1) Check cache
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var out []entity.Symbol
		if err := json.Unmarshal(b, &out); err == nil {
			return out, nil
		}
		// Delete corrupted cache entry
		_ = c.rdb.Del(ctx, key).Err()
	}

	// 2) Fallback to database
	out, err := c.inner.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}

	return out, nil
}

// Invalidate drops every cached search result, e.g. after the catalog was reseeded.
func (c *CachingSymbolRepository) Invalidate(ctx context.Context) error {
	if c.rdb == nil {
		return nil
	}
	return c.deleteByPattern(ctx, c.namespace+":*")
}

// cacheKey generates a cache key for a specific query.
// The search is case-insensitive, so the query is lowercased.
func (c *CachingSymbolRepository) cacheKey(query string, limit int) string {
	return fmt.Sprintf("%s:%s:%d",
		c.namespace,
		safe(strings.ToLower(query)),
		limit,
	)
}

// deleteByPattern deletes all cache keys matching a given pattern using SCAN.
func (c *CachingSymbolRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, cur, err := c.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = cur
		if cursor == 0 {
			break
		}
	}
	return nil
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
