package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"tradeview/internal/feature/watchlist/domain/entity"
)

// PositionOpener is the trading collaborator that opens a position.
type PositionOpener interface {
	OpenPosition(ctx context.Context, order entity.OrderRequest) error
}

// QuickOrder submits one-click market orders from the watchlist.
// Each symbol has a loading flag that is set for the duration of its request;
// while it is set further orders for that symbol are refused.
type QuickOrder struct {
	opener   PositionOpener
	notifier Notifier

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	loading  map[string]bool
	closed   bool
	onChange func(symbol string, loading bool)
}

// NewQuickOrder creates a QuickOrder that sends orders through opener.
func NewQuickOrder(opener PositionOpener, notifier Notifier) *QuickOrder {
	ctx, cancel := context.WithCancel(context.Background())
	return &QuickOrder{
		opener:   opener,
		notifier: orDiscard(notifier),
		ctx:      ctx,
		cancel:   cancel,
		loading:  make(map[string]bool),
	}
}

// OnChange registers fn to be called whenever a loading flag flips.
func (q *QuickOrder) OnChange(fn func(symbol string, loading bool)) {
	q.mu.Lock()
	q.onChange = fn
	q.mu.Unlock()
}

// IsLoading reports whether an order for symbol is outstanding.
func (q *QuickOrder) IsLoading(symbol string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.loading[symbol]
}

// Submit sends a market order of entity.QuickLotSize and waits for the result.
// The outcome is reported through the notifier as well as the returned error.
func (q *QuickOrder) Submit(ctx context.Context, symbol string, side entity.Side) error {
	if err := q.begin(symbol, side); err != nil {
		return err
	}
	return q.run(ctx, symbol, side)
}

// SubmitAsync starts Submit in the background and returns immediately.
// Validation and in-flight errors are returned synchronously.
func (q *QuickOrder) SubmitAsync(symbol string, side entity.Side) error {
	if err := q.begin(symbol, side); err != nil {
		return err
	}
	go func() {
		_ = q.run(q.ctx, symbol, side)
	}()
	return nil
}

// Close cancels outstanding orders and waits for them to settle.
func (q *QuickOrder) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.cancel()
	q.wg.Wait()
}

// begin validates the request and raises the loading flag.
func (q *QuickOrder) begin(symbol string, side entity.Side) error {
	if strings.TrimSpace(symbol) == "" {
		return ErrEmptySymbol
	}
	if !side.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSide, side)
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	if q.loading[symbol] {
		q.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrOrderInFlight, symbol)
	}
	q.loading[symbol] = true
	q.wg.Add(1)
	fn := q.onChange
	q.mu.Unlock()

	if fn != nil {
		fn(symbol, true)
	}
	return nil
}

func (q *QuickOrder) run(ctx context.Context, symbol string, side entity.Side) error {
	defer q.finish(symbol)

	order := entity.NewQuickOrder(symbol, side)
	label := fmt.Sprintf("%s %s", strings.ToUpper(string(side)), symbol)

	if err := q.opener.OpenPosition(ctx, order); err != nil {
		slog.Warn("quick order failed", "symbol", symbol, "side", side, "error", err)
		if q.isClosed() {
			// 破棄後に返ってきた結果は通知しない
			return err
		}
		q.notifier.Notify(entity.Notification{
			Title:       "Order error",
			Description: err.Error(),
			Variant:     entity.VariantDestructive,
		})
		return err
	}

	slog.Info("quick order placed", "symbol", symbol, "side", side, "lot_size", order.LotSize)
	if q.isClosed() {
		return nil
	}
	q.notifier.Notify(entity.Notification{
		Title:       "Order placed",
		Description: label,
		Variant:     entity.VariantDefault,
	})
	return nil
}

func (q *QuickOrder) isClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// finish clears the loading flag; it runs on every exit path of run.
func (q *QuickOrder) finish(symbol string) {
	q.mu.Lock()
	delete(q.loading, symbol)
	fn := q.onChange
	q.mu.Unlock()
	q.wg.Done()

	if fn != nil {
		fn(symbol, false)
	}
}
