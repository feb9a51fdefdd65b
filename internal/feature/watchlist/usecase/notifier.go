package usecase

import "tradeview/internal/feature/watchlist/domain/entity"

// Notifier delivers user-facing notifications.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type Notifier interface {
	Notify(n entity.Notification)
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(n entity.Notification)

// Notify calls f(n).
func (f NotifierFunc) Notify(n entity.Notification) { f(n) }

type discardNotifier struct{}

func (discardNotifier) Notify(entity.Notification) {}

func orDiscard(n Notifier) Notifier {
	if n == nil {
		return discardNotifier{}
	}
	return n
}
