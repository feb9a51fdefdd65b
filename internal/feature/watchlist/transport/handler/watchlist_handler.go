package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"tradeview/internal/api"
	mdentity "tradeview/internal/feature/marketdata/domain/entity"
	"tradeview/internal/feature/watchlist/domain/entity"
	"tradeview/internal/feature/watchlist/transport/http/dto"
	"tradeview/internal/feature/watchlist/usecase"
	jwtmw "tradeview/internal/platform/jwt"
)

// StoreProvider は保存キーごとのウォッチリストを返すインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type StoreProvider interface {
	Store(ctx context.Context, key string) *usecase.Store
}

// WatchlistHandler はユーザーごとのウォッチリストに関するHTTPリクエストを処理します。
type WatchlistHandler struct {
	stores  StoreProvider
	feed    usecase.QuoteFeed
	baseKey string
}

// NewWatchlistHandler は新しい WatchlistHandler を作成します。feedがnilの場合、行はすべてプレースホルダーになります。
func NewWatchlistHandler(stores StoreProvider, feed usecase.QuoteFeed) *WatchlistHandler {
	return &WatchlistHandler{stores: stores, feed: feed, baseKey: entity.StorageKey}
}

// store は認証済みユーザーのウォッチリストを返します。
func (h *WatchlistHandler) store(c *gin.Context) (*usecase.Store, bool) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return nil, false
	}
	return h.stores.Store(c.Request.Context(), usecase.UserKey(h.baseKey, userID)), true
}

// List はウォッチリストの銘柄一覧を返します。
func (h *WatchlistHandler) List(c *gin.Context) {
	s, ok := h.store(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.SymbolsResponse{Symbols: s.Symbols()})
}

// Add は銘柄をウォッチリストの末尾に追加します。
// 新規追加の場合は201、既に登録済みの場合は200を返します。
func (h *WatchlistHandler) Add(c *gin.Context) {
	var req dto.AddSymbolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request"})
		return
	}
	s, ok := h.store(c)
	if !ok {
		return
	}

	added, err := s.Add(c.Request.Context(), strings.TrimSpace(req.Symbol))
	if err != nil {
		writeStoreError(c, err)
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	c.JSON(status, dto.AddSymbolResponse{Added: added, Symbols: s.Symbols()})
}

// Remove は銘柄をウォッチリストから削除します。存在しない銘柄の削除も成功として扱います。
func (h *WatchlistHandler) Remove(c *gin.Context) {
	s, ok := h.store(c)
	if !ok {
		return
	}

	if err := s.Remove(c.Request.Context(), c.Param("symbol")); err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SymbolsResponse{Symbols: s.Symbols()})
}

// Rows はウォッチリストを最新の気配と結合した表示用の行を返します。
func (h *WatchlistHandler) Rows(c *gin.Context) {
	s, ok := h.store(c)
	if !ok {
		return
	}

	var quotes []mdentity.QuoteSnapshot
	if h.feed != nil {
		quotes = h.feed.Quotes()
	}
	rows := usecase.JoinQuotes(s.Symbols(), quotes, nil)

	out := make([]dto.WatchlistRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.WatchlistRow{
			Symbol:      r.Symbol,
			SymbolID:    r.SymbolID,
			Bid:         r.Bid,
			Ask:         r.Ask,
			Last:        r.Last,
			Change:      r.Change,
			ChangeBadge: r.ChangeBadge,
			Spread:      r.Spread,
			Positive:    r.Positive,
			HasQuote:    r.HasQuote,
		})
	}
	c.JSON(http.StatusOK, dto.RowsResponse{Rows: out})
}

func writeStoreError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrEmptySymbol):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrPersist):
		slog.Error("watchlist persist failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "watchlist could not be saved"})
	default:
		slog.Error("watchlist operation failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal server error"})
	}
}
