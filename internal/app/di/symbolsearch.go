package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"tradeview/internal/feature/symbolsearch/adapters"
	"tradeview/internal/platform/cache"
)

// symbolSearchTTL bounds how stale a cached search result may be after a catalog change.
const symbolSearchTTL = 10 * time.Minute

// NewSymbolRepository creates the symbol search repository, wrapped with the
// Redis cache. A nil rdb bypasses the cache.
func NewSymbolRepository(rdb *redis.Client, db *gorm.DB) *cache.CachingSymbolRepository {
	return cache.NewCachingSymbolRepository(rdb, symbolSearchTTL, adapters.NewSymbolRepository(db), "symbolsearch")
}
