package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"tradeview/internal/feature/watchlist/domain/entity"
	"tradeview/internal/feature/watchlist/usecase"
)

// OpenPositionPath はポジション建て（成行注文）エンドポイントのパスです。
const OpenPositionPath = "/api/trading/positions"

// maxErrorBody はエラーレスポンスから読み込む最大バイト数です。
const maxErrorBody = 4 << 10

// HTTPPositionOpener はPositionOpenerインターフェースのHTTP実装です。
type HTTPPositionOpener struct {
	cfg    APIConfig
	client *http.Client
}

var _ usecase.PositionOpener = (*HTTPPositionOpener)(nil)

// NewHTTPPositionOpener は指定された設定とHTTPクライアントでHTTPPositionOpenerを生成します。
func NewHTTPPositionOpener(cfg APIConfig, client *http.Client) *HTTPPositionOpener {
	return &HTTPPositionOpener{cfg: cfg, client: client}
}

// OpenPosition は注文をJSONでPOSTします。
// 2xx以外の場合はレスポンスの error または message フィールドをエラー文言に使います。
func (o *HTTPPositionOpener) OpenPosition(ctx context.Context, order entity.OrderRequest) error {
	payload, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.BaseURL+OpenPositionPath, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if o.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+o.cfg.Token)
	}

	res, err := o.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	return errors.New(errorMessage(res))
}

// errorMessage はエラーレスポンスから表示用の文言を取り出します。
func errorMessage(res *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" && !strings.HasPrefix(text, "{") {
		return text
	}
	return fmt.Sprintf("open position http %d", res.StatusCode)
}
