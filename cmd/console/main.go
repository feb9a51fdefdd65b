// Command console runs the watchlist panel in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"tradeview/internal/app/config"
	"tradeview/internal/app/di"
	"tradeview/internal/feature/watchlist/adapters"
	"tradeview/internal/feature/watchlist/domain/entity"
	"tradeview/internal/feature/watchlist/transport/tui"
	"tradeview/internal/feature/watchlist/usecase"
	"tradeview/internal/platform/db"
	"tradeview/internal/platform/externalapi/twelvedata"
	infrahttp "tradeview/internal/platform/http"
	jwtmw "tradeview/internal/platform/jwt"
	"tradeview/internal/platform/logger"
)

const tokenLifetime = 24 * time.Hour

func main() {
	configPath := flag.String("config", "configs/console.yaml", "path to the console configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logFile, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	log := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Format, logFile)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("console exited", "error", err)
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Console, log *slog.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ウォッチリストの保存先
	storage, err := openStorage(cfg.Storage.SQLitePath)
	if err != nil {
		return err
	}

	// バックエンドAPI
	apiCfg := adapters.APIConfig{
		BaseURL: cfg.API.BaseURL,
		Token:   cfg.API.Token,
		Timeout: cfg.API.Timeout,
	}
	if apiCfg.Token == "" && cfg.Auth.JWTSecret != "" {
		token, err := jwtmw.NewGenerator(cfg.Auth.JWTSecret, tokenLifetime).GenerateToken(cfg.Auth.UserID, cfg.Auth.Email)
		if err != nil {
			return err
		}
		apiCfg.Token = token
	}
	if apiCfg.Token == "" {
		log.Warn("no API token configured; quick orders will be rejected by the backend")
	}
	client := infrahttp.NewHTTPClient(apiCfg.Timeout)

	notifier := tui.NewChannelNotifier(16)

	store := usecase.NewStore(storage, entity.StorageKey, notifier)
	if !store.Load(ctx) {
		log.Warn("watchlist could not be read; changes will retry the read before saving", "key", store.Key())
	}

	search := usecase.NewSearchClient(adapters.NewHTTPSymbolSearcher(apiCfg, client), store, notifier, cfg.Panel.SearchDebounce)
	orders := usecase.NewQuickOrder(adapters.NewHTTPPositionOpener(apiCfg, client), notifier)

	// 気配
	feed, poller := di.NewMarketData(twelvedata.Config{
		TwelveDataAPIKey: cfg.Market.TwelveDataAPIKey,
		BaseURL:          twelvedata.DefaultBaseURL,
		Timeout:          cfg.API.Timeout,
		RateLimit:        cfg.Market.RateLimit,
	}, store.Symbols, cfg.Market.PollInterval)

	panel := usecase.NewPanel(cfg.PanelMode(), usecase.PanelDeps{
		Store:    store,
		Search:   search,
		Orders:   orders,
		Feed:     feed,
		Selector: feed,
	}, cfg.Panel.Open)

	g, gctx := errgroup.WithContext(ctx)
	if cfg.Market.TwelveDataAPIKey != "" {
		g.Go(func() error {
			return poller.Run(gctx)
		})
	} else {
		log.Info("market data disabled: twelvedata_api_key is empty")
	}

	g.Go(func() error {
		// UI終了時に他のゴルーチンも止める
		defer cancel()
		p := tea.NewProgram(tui.New(gctx, panel, notifier.C()), tea.WithAltScreen(), tea.WithMouseCellMotion())
		_, err := p.Run()
		return err
	})

	return g.Wait()
}

func openStorage(path string) (usecase.Storage, error) {
	if path == "" {
		return adapters.NewMemoryStorage(), nil
	}
	gdb, err := db.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	return adapters.NewGormStorage(gdb), nil
}
