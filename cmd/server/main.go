package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"tradeview/internal/app/di"
	"tradeview/internal/app/router"
	symbolsearchadapters "tradeview/internal/feature/symbolsearch/adapters"
	symbolsearchhandler "tradeview/internal/feature/symbolsearch/transport/handler"
	symbolsearchusecase "tradeview/internal/feature/symbolsearch/usecase"
	watchlistadapters "tradeview/internal/feature/watchlist/adapters"
	watchlisthandler "tradeview/internal/feature/watchlist/transport/handler"
	watchlistusecase "tradeview/internal/feature/watchlist/usecase"
	"tradeview/internal/platform/db"
	"tradeview/internal/platform/externalapi/twelvedata"
	platformhandler "tradeview/internal/platform/http/handler"
	jwtmw "tradeview/internal/platform/jwt"
	"tradeview/internal/platform/logger"
	infraredis "tradeview/internal/platform/redis"
)

const (
	quotePollInterval = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
)

func main() {
	log := logger.NewLogger(os.Getenv("LOG_LEVEL"), "json", os.Stdout)
	slog.SetDefault(log)

	if err := run(log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// db
	gdb, err := db.OpenPostgres(db.LoadConfigFromEnv())
	if err != nil {
		return err
	}

	// Redis
	var rdb *redisv9.Client
	if cfg := infraredis.LoadConfig(); cfg.Enabled() {
		client, err := infraredis.NewRedisClient(ctx, cfg)
		if err != nil {
			log.Warn("redis unavailable, running without cache", "addr", cfg.Addr(), "error", err)
		} else {
			rdb = client
			defer func() {
				if err := rdb.Close(); err != nil {
					log.Error("failed to close redis client", "error", err)
				}
			}()
		}
	}

	// 銘柄カタログ
	symbolRepo := di.NewSymbolRepository(rdb, gdb)
	if err := symbolsearchadapters.EnsureCatalog(ctx, gdb, symbolsearchadapters.DefaultCatalog); err != nil {
		return err
	}
	if err := symbolRepo.Invalidate(ctx); err != nil {
		log.Warn("failed to invalidate symbol search cache", "error", err)
	}

	// Watchlist
	registry := watchlistusecase.NewRegistry(di.NewWatchlistStorage(rdb, gdb), watchlistadapters.NewSlogNotifier(log))

	// 気配
	tdCfg := twelvedata.LoadConfig()
	feed, poller := di.NewMarketData(tdCfg, registry.Symbols, quotePollInterval)

	// Handler
	checks := map[string]platformhandler.Check{
		"db": func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	healthH := platformhandler.NewHealthHandler(checks)
	searchH := symbolsearchhandler.NewSymbolSearchHandler(symbolsearchusecase.NewSymbolSearchUsecase(symbolRepo))
	watchlistH := watchlisthandler.NewWatchlistHandler(registry, feed)

	jwtCfg := jwtmw.LoadConfig()
	// JWT_SECRETチェック（開発中の注意喚起）
	if jwtCfg.Secret == "" {
		log.Warn("JWT_SECRET is not set; watchlist routes will reject every request")
	}

	// ルータ生成
	r := router.NewRouter(router.Handlers{
		Health:       healthH,
		SymbolSearch: searchH,
		Watchlist:    watchlistH,
	}, jwtCfg.Secret, log)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if tdCfg.TwelveDataAPIKey != "" {
		g.Go(func() error {
			return poller.Run(gctx)
		})
	} else {
		log.Warn("TWELVE_DATA_API_KEY is not set; watchlist rows will show no quotes")
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
