package adapters

import (
	"os"
	"strings"
	"time"
)

// APIConfig はtradeviewバックエンドAPIへの接続設定を保持します。
type APIConfig struct {
	BaseURL string        // 例: "http://localhost:8080"
	Token   string        // Bearerトークン（空の場合は送信しない）
	Timeout time.Duration // HTTPリクエストタイムアウト
}

// LoadAPIConfig は環境変数からAPI設定を読み込みます。
func LoadAPIConfig() APIConfig {
	return APIConfig{
		BaseURL: strings.TrimRight(os.Getenv("TRADEVIEW_API_URL"), "/"),
		Token:   os.Getenv("TRADEVIEW_API_TOKEN"),
		Timeout: 10 * time.Second,
	}
}
