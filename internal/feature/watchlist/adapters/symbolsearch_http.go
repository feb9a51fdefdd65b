package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"tradeview/internal/feature/watchlist/domain/entity"
	"tradeview/internal/feature/watchlist/usecase"
)

// SymbolSearchPath は銘柄検索エンドポイントのパスです。
const SymbolSearchPath = "/api/market/symbols/search"

type symbolSearchResponse struct {
	Symbols []entity.SearchResult `json:"symbols"`
}

// HTTPSymbolSearcher はSymbolSearcherインターフェースのHTTP実装です。
type HTTPSymbolSearcher struct {
	cfg    APIConfig
	client *http.Client
}

var _ usecase.SymbolSearcher = (*HTTPSymbolSearcher)(nil)

// NewHTTPSymbolSearcher は指定された設定とHTTPクライアントでHTTPSymbolSearcherを生成します。
func NewHTTPSymbolSearcher(cfg APIConfig, client *http.Client) *HTTPSymbolSearcher {
	return &HTTPSymbolSearcher{cfg: cfg, client: client}
}

// Search は部分一致で銘柄を検索します。2xx以外のステータスはエラーとして扱います。
func (s *HTTPSymbolSearcher) Search(ctx context.Context, query string) ([]entity.SearchResult, error) {
	q := url.Values{}
	q.Set("q", query)
	u := fmt.Sprintf("%s%s?%s", s.cfg.BaseURL, SymbolSearchPath, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, fmt.Errorf("symbol search http %d", res.StatusCode)
	}

	var body symbolSearchResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode symbol search response: %w", err)
	}
	if body.Symbols == nil {
		return []entity.SearchResult{}, nil
	}
	return body.Symbols, nil
}
