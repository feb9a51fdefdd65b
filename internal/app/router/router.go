package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	symbolsearchhandler "tradeview/internal/feature/symbolsearch/transport/handler"
	watchlisthandler "tradeview/internal/feature/watchlist/transport/handler"
	platformhandler "tradeview/internal/platform/http/handler"
	jwtmw "tradeview/internal/platform/jwt"
	"tradeview/internal/platform/middleware"
)

// Handlers are the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Health       *platformhandler.HealthHandler
	SymbolSearch *symbolsearchhandler.SymbolSearchHandler
	Watchlist    *watchlisthandler.WatchlistHandler
}

// NewRouter builds the Gin engine. Watchlist routes require a JWT signed with jwtSecret.
func NewRouter(h Handlers, jwtSecret string, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logging(logger, "/healthz"))

	// 認証不要
	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	r.OPTIONS("/healthz", h.Health.Health)
	// 銘柄検索
	r.GET("/api/market/symbols/search", h.SymbolSearch.Search)

	// 認証必須のルート
	// → リクエストヘッダーに JWT が必要になる
	watchlist := r.Group("/api/watchlist")
	watchlist.Use(jwtmw.AuthRequired(jwtSecret))
	{
		watchlist.GET("", h.Watchlist.List)
		watchlist.POST("", h.Watchlist.Add)
		watchlist.GET("/rows", h.Watchlist.Rows)
		watchlist.DELETE("/:symbol", h.Watchlist.Remove)
	}

	return r
}
