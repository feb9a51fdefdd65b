// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

const checkTimeout = 2 * time.Second

// Check は依存先（DB、Redisなど）の疎通を確認する関数です。
type Check func(ctx context.Context) error

// HealthHandler は /healthz を処理します。登録された依存先チェックを順に実行します。
type HealthHandler struct {
	checks map[string]Check
}

// NewHealthHandler は名前付きチェックを持つ HealthHandler を作成します。checks は nil でも構いません。
func NewHealthHandler(checks map[string]Check) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// HealthResponse はヘルスチェックのレスポンスです。
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health はサービスヘルスチェック用の /healthz エンドポイントを処理します。
// いずれかのチェックが失敗した場合は503を返します。
func (h *HealthHandler) Health(c *gin.Context) {
	// 明示的にキャッシュを防止
	c.Header("Cache-Control", "no-store")

	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusNoContent)
		return
	}

	res, healthy := h.run(c.Request.Context())
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}

	if c.Request.Method == http.MethodHead {
		c.Status(status)
		return
	}
	c.JSON(status, res)
}

func (h *HealthHandler) run(ctx context.Context) (HealthResponse, bool) {
	res := HealthResponse{Status: "ok"}
	if len(h.checks) == 0 {
		return res, true
	}

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	healthy := true
	res.Checks = make(map[string]string, len(names))
	for _, name := range names {
		checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := h.checks[name](checkCtx)
		cancel()
		if err != nil {
			healthy = false
			res.Checks[name] = err.Error()
			continue
		}
		res.Checks[name] = "ok"
	}
	if !healthy {
		res.Status = "degraded"
	}
	return res, healthy
}
