package tui

import (
	"tradeview/internal/feature/watchlist/domain/entity"
	"tradeview/internal/feature/watchlist/usecase"
)

var _ usecase.Notifier = (*ChannelNotifier)(nil)

// ChannelNotifier forwards notifications to the terminal model as toasts.
// When the buffer is full the notification is dropped rather than blocking the caller.
type ChannelNotifier struct {
	ch chan entity.Notification
}

func NewChannelNotifier(buffer int) *ChannelNotifier {
	if buffer < 1 {
		buffer = 1
	}
	return &ChannelNotifier{ch: make(chan entity.Notification, buffer)}
}

func (n *ChannelNotifier) Notify(note entity.Notification) {
	select {
	case n.ch <- note:
	default:
	}
}

// C returns the receive side consumed by the model.
func (n *ChannelNotifier) C() <-chan entity.Notification {
	return n.ch
}
