package adapters

import (
	"context"
	"log/slog"

	"tradeview/internal/feature/watchlist/domain/entity"
	"tradeview/internal/feature/watchlist/usecase"
)

var _ usecase.Notifier = (*SlogNotifier)(nil)

// SlogNotifier はトースト通知を構造化ログとして出力するNotifier実装です。
// 画面を持たないサーバーで使用します。
type SlogNotifier struct {
	logger *slog.Logger
}

// NewSlogNotifier はSlogNotifierを生成します。loggerがnilの場合はslog.Default()を使います。
func NewSlogNotifier(logger *slog.Logger) *SlogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogNotifier{logger: logger}
}

// Notify は通知をログに出力します。破壊的な通知はWarnレベルになります。
func (n *SlogNotifier) Notify(msg entity.Notification) {
	level := slog.LevelInfo
	if msg.Variant == entity.VariantDestructive {
		level = slog.LevelWarn
	}
	n.logger.Log(context.Background(), level, "watchlist notification", "title", msg.Title, "description", msg.Description)
}
