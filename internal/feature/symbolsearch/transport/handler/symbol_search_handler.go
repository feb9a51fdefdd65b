package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tradeview/internal/api"
	"tradeview/internal/feature/symbolsearch/domain/entity"
	"tradeview/internal/feature/symbolsearch/transport/http/dto"
	"tradeview/internal/feature/symbolsearch/usecase"
)

// SymbolSearchUsecase は銘柄検索のユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type SymbolSearchUsecase interface {
	Search(ctx context.Context, query string) ([]entity.Symbol, error)
}

// SymbolSearchHandler は銘柄検索に関するHTTPリクエストを処理します。
type SymbolSearchHandler struct {
	uc SymbolSearchUsecase
}

// NewSymbolSearchHandler は新しい SymbolSearchHandler を作成します。
func NewSymbolSearchHandler(uc SymbolSearchUsecase) *SymbolSearchHandler {
	return &SymbolSearchHandler{uc: uc}
}

// Search はクエリパラメータ q に部分一致する銘柄を返すAPIです。
// q が空の場合は空の一覧を返します。クエリが長すぎる場合は400、
// Usecaseでその他のエラーが発生した場合は500 Internal Server Errorを返します。
func (h *SymbolSearchHandler) Search(c *gin.Context) {
	symbols, err := h.uc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		if errors.Is(err, usecase.ErrQueryTooLong) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
		slog.Error("symbol search failed", "query", c.Query("q"), "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: err.Error()})
		return
	}

	out := make([]dto.SymbolItem, 0, len(symbols))
	for _, s := range symbols {
		out = append(out, dto.SymbolItem{
			ID:            s.ID,
			Symbol:        s.Code,
			Name:          s.Name,
			BaseCurrency:  s.BaseCurrency,
			QuoteCurrency: s.QuoteCurrency,
			CategoryName:  s.CategoryName(),
		})
	}
	c.JSON(http.StatusOK, dto.SearchResponse{Symbols: out})
}
