package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tradeview/internal/feature/marketdata/domain/entity"
	"tradeview/internal/shared/ratelimiter"
)

const (
	// DefaultPollInterval は気配取得の既定間隔です。
	DefaultPollInterval = 5 * time.Second
	// DefaultBatchSize は1リクエストで取得する銘柄数の既定値です。
	DefaultBatchSize = 8
)

// QuoteSource は外部APIから気配を取得するインターフェースです。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type QuoteSource interface {
	GetQuotes(ctx context.Context, symbols []string) ([]entity.QuoteSnapshot, error)
}

// Poller は一定間隔でウォッチリストの銘柄の気配を取得し、Feedへ反映します。
type Poller struct {
	source      QuoteSource
	feed        *Feed
	symbols     func() []string
	rateLimiter ratelimiter.RateLimiterInterface
	interval    time.Duration
	batchSize   int
}

// NewPoller は新しいPollerを生成します。
// intervalが0以下の場合はDefaultPollInterval、batchSizeが0以下の場合はDefaultBatchSizeを使います。
func NewPoller(source QuoteSource, feed *Feed, symbols func() []string, rateLimiter ratelimiter.RateLimiterInterface, interval time.Duration, batchSize int) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Poller{
		source:      source,
		feed:        feed,
		symbols:     symbols,
		rateLimiter: rateLimiter,
		interval:    interval,
		batchSize:   batchSize,
	}
}

// Run はctxがキャンセルされるまで気配の取得を繰り返します。
// 開始直後に1回取得し、以降はintervalごとに取得します。取得エラーはログに出力して継続します。
func (p *Poller) Run(ctx context.Context) error {
	slog.Info("quote poller started", "interval", p.interval)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if err := p.PollOnce(ctx); err != nil && ctx.Err() == nil {
			slog.Warn("quote poll failed", "error", err)
		}
		select {
		case <-ctx.Done():
			slog.Info("quote poller stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// PollOnce は現在の銘柄一覧をbatchSizeごとに分けて取得し、Feedへ反映します。
// 一部のバッチが失敗しても残りは処理し、失敗をまとめて返します。
func (p *Poller) PollOnce(ctx context.Context) error {
	symbols := p.symbols()
	if len(symbols) == 0 {
		return nil
	}

	var errs []error
	for start := 0; start < len(symbols); start += p.batchSize {
		end := min(start+p.batchSize, len(symbols))
		batch := symbols[start:end]

		if p.rateLimiter != nil {
			if err := p.rateLimiter.WaitIfNeeded(ctx); err != nil {
				return err
			}
		}

		quotes, err := p.source.GetQuotes(ctx, batch)
		if err != nil {
			errs = append(errs, fmt.Errorf("get quotes %v: %w", batch, err))
			continue
		}
		now := time.Now()
		for i := range quotes {
			if quotes[i].UpdatedAt.IsZero() {
				quotes[i].UpdatedAt = now
			}
		}
		p.feed.Update(quotes)
	}
	return errors.Join(errs...)
}
