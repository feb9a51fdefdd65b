package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tradeview/internal/feature/marketdata/domain/entity"
	"tradeview/internal/feature/marketdata/usecase"
	"tradeview/internal/platform/externalapi/twelvedata/dto"
)

// TwelveDataQuotes はTwelve Data外部APIから最新気配を取得するQuoteSource実装です。
type TwelveDataQuotes struct {
	cfg    Config
	client *http.Client
}

// TwelveDataQuotesがQuoteSourceを実装していることをコンパイル時に検証します。
var _ usecase.QuoteSource = (*TwelveDataQuotes)(nil)

// NewTwelveDataQuotes は指定された設定とHTTPクライアントでTwelveDataQuotesの新しいインスタンスを生成します。
func NewTwelveDataQuotes(cfg Config, client *http.Client) *TwelveDataQuotes {
	return &TwelveDataQuotes{cfg: cfg, client: client}
}

// GetQuotes は複数銘柄の気配を1リクエストで取得します。
// quoteエンドポイントはbid/askを返さないため、Last(終値)とChangeのみを設定します。
// 銘柄ごとのエラーはログに出力してスキップします。
func (t *TwelveDataQuotes) GetQuotes(ctx context.Context, symbols []string) ([]entity.QuoteSnapshot, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	// APIシンボル → ウォッチリストシンボル
	byAPI := make(map[string]string, len(symbols))
	apiSymbols := make([]string, 0, len(symbols))
	for _, s := range symbols {
		a := ToAPISymbol(s)
		if _, dup := byAPI[a]; dup {
			continue
		}
		byAPI[a] = s
		apiSymbols = append(apiSymbols, a)
	}

	q := url.Values{}
	q.Set("symbol", strings.Join(apiSymbols, ","))
	q.Set("apikey", t.cfg.TwelveDataAPIKey)
	u := fmt.Sprintf("%s/quote?%s", t.cfg.BaseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	res, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("twelvedata http %d", res.StatusCode)
	}

	items, err := decodeQuotes(res, len(apiSymbols) == 1)
	if err != nil {
		return nil, err
	}

	out := make([]entity.QuoteSnapshot, 0, len(items))
	for _, a := range apiSymbols {
		item, ok := items[a]
		if !ok {
			continue
		}
		if item.IsError() {
			slog.Warn("twelvedata quote error", "symbol", a, "code", item.Code, "message", item.Message)
			continue
		}
		snap, err := toSnapshot(byAPI[a], item)
		if err != nil {
			slog.Warn("skip malformed quote", "symbol", a, "error", err)
			continue
		}
		out = append(out, snap)
	}
	return out, nil
}

// decodeQuotes は単一銘柄(オブジェクト)と複数銘柄(シンボルをキーにしたオブジェクト)の両方の形式を読み込みます。
func decodeQuotes(res *http.Response, single bool) (map[string]dto.QuoteResponse, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(res.Body).Decode(&raw); err != nil {
		return nil, err
	}

	// 全体エラー、または単一銘柄レスポンス
	var one dto.QuoteResponse
	if err := json.Unmarshal(raw, &one); err == nil {
		if one.IsError() {
			return nil, fmt.Errorf("twelvedata: %s", one.Message)
		}
		if single || one.Symbol != "" {
			return map[string]dto.QuoteResponse{one.Symbol: one}, nil
		}
	}

	var many map[string]dto.QuoteResponse
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, fmt.Errorf("decode quote response: %w", err)
	}
	return many, nil
}

func toSnapshot(symbol string, q dto.QuoteResponse) (entity.QuoteSnapshot, error) {
	snap := entity.QuoteSnapshot{Symbol: symbol, UpdatedAt: time.Now()}
	if q.Timestamp > 0 {
		snap.UpdatedAt = time.Unix(q.Timestamp, 0)
	}

	last, err := parseOptional(q.Close)
	if err != nil {
		return snap, fmt.Errorf("parse close %q: %w", q.Close, err)
	}
	change, err := parseOptional(q.Change)
	if err != nil {
		return snap, fmt.Errorf("parse change %q: %w", q.Change, err)
	}
	snap.Last = last
	snap.Change = change
	return snap, nil
}

func parseOptional(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ToAPISymbol はウォッチリストの銘柄表記をTwelve Dataの表記に変換します。
// 6文字の英字(通貨ペア・貴金属・暗号資産)は "EUR/USD" の形式にし、それ以外はそのまま返します。
func ToAPISymbol(symbol string) string {
	if len(symbol) != 6 || strings.Contains(symbol, "/") {
		return symbol
	}
	for _, r := range symbol {
		if r < 'A' || r > 'Z' {
			return symbol
		}
	}
	return symbol[:3] + "/" + symbol[3:]
}
