// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	mdusecase "tradeview/internal/feature/marketdata/usecase"
	"tradeview/internal/platform/externalapi/twelvedata"
	infrahttp "tradeview/internal/platform/http"
	"tradeview/internal/shared/ratelimiter"
)

// NewQuoteSource creates a fully configured Twelve Data quote client with HTTP client.
func NewQuoteSource(cfg twelvedata.Config) *twelvedata.TwelveDataQuotes {
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return twelvedata.NewTwelveDataQuotes(cfg, httpClient)
}

// NewMarketData wires a Feed and the Poller that fills it.
// symbols is called on every poll to get the symbols currently watched.
// The Twelve Data plan limit is enforced per minute.
func NewMarketData(cfg twelvedata.Config, symbols func() []string, interval time.Duration) (*mdusecase.Feed, *mdusecase.Poller) {
	feed := mdusecase.NewFeed()
	limiter := ratelimiter.NewRateLimiter(cfg.RateLimit, time.Minute)
	poller := mdusecase.NewPoller(NewQuoteSource(cfg), feed, symbols, limiter, interval, mdusecase.DefaultBatchSize)
	return feed, poller
}
