package di

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"tradeview/internal/feature/watchlist/adapters"
	"tradeview/internal/feature/watchlist/usecase"
)

// NewWatchlistStorage creates the key-value storage behind every watchlist.
// If Redis is available, it returns a Redis-backed implementation.
// Otherwise, it falls back to the database, and to process memory when there is none.
func NewWatchlistStorage(rdb *redis.Client, db *gorm.DB) usecase.Storage {
	if rdb != nil {
		return adapters.NewRedisStorage(rdb, "kv")
	}
	if db != nil {
		return adapters.NewGormStorage(db)
	}
	return adapters.NewMemoryStorage()
}
