package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeview/internal/feature/watchlist/domain/entity"
	"tradeview/internal/feature/watchlist/usecase"
)

// mockPositionOpener はPositionOpenerインターフェースのモック実装です。
type mockPositionOpener struct {
	OpenPositionFunc func(ctx context.Context, order entity.OrderRequest) error

	mu     sync.Mutex
	orders []entity.OrderRequest
}

func (m *mockPositionOpener) OpenPosition(ctx context.Context, order entity.OrderRequest) error {
	m.mu.Lock()
	m.orders = append(m.orders, order)
	m.mu.Unlock()
	if m.OpenPositionFunc != nil {
		return m.OpenPositionFunc(ctx, order)
	}
	return nil
}

func (m *mockPositionOpener) sent() []entity.OrderRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.OrderRequest(nil), m.orders...)
}

// TestQuickOrder_Submit は発注の成否に応じた通知とローディングフラグを検証します。
func TestQuickOrder_Submit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		openErr     error
		side        entity.Side
		wantTitle   string
		wantDesc    string
		wantVariant entity.Variant
	}{
		{
			name:      "buy success",
			side:      entity.SideBuy,
			wantTitle: "Order placed", wantDesc: "BUY EURUSD", wantVariant: entity.VariantDefault,
		},
		{
			name:      "sell success",
			side:      entity.SideSell,
			wantTitle: "Order placed", wantDesc: "SELL EURUSD", wantVariant: entity.VariantDefault,
		},
		{
			name:      "failure",
			side:      entity.SideBuy,
			openErr:   errors.New("insufficient margin"),
			wantTitle: "Order error", wantDesc: "insufficient margin", wantVariant: entity.VariantDestructive,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			notifier := &recordingNotifier{}
			var q *usecase.QuickOrder
			var loadingDuringCall bool
			opener := &mockPositionOpener{
				OpenPositionFunc: func(ctx context.Context, order entity.OrderRequest) error {
					loadingDuringCall = q.IsLoading(order.SymbolID)
					return tt.openErr
				},
			}
			q = usecase.NewQuickOrder(opener, notifier)
			t.Cleanup(q.Close)

			err := q.Submit(context.Background(), "EURUSD", tt.side)

			if tt.openErr != nil {
				assert.ErrorIs(t, err, tt.openErr)
			} else {
				assert.NoError(t, err)
			}
			assert.True(t, loadingDuringCall)
			assert.False(t, q.IsLoading("EURUSD"))

			n := notifier.last()
			assert.Equal(t, tt.wantTitle, n.Title)
			assert.Equal(t, tt.wantDesc, n.Description)
			assert.Equal(t, tt.wantVariant, n.Variant)
		})
	}
}

// TestQuickOrder_Payload はクイック注文のペイロードが固定値で組み立てられることを検証します。
func TestQuickOrder_Payload(t *testing.T) {
	t.Parallel()

	opener := &mockPositionOpener{}
	q := usecase.NewQuickOrder(opener, nil)
	t.Cleanup(q.Close)

	require.NoError(t, q.Submit(context.Background(), "XAUUSD", entity.SideBuy))

	sent := opener.sent()
	require.Len(t, sent, 1)
	assert.Equal(t, entity.OrderRequest{
		SymbolID:  "XAUUSD",
		Side:      entity.SideBuy,
		LotSize:   0.01,
		OrderType: entity.OrderTypeMarket,
		Comment:   "Quick BUY XAUUSD",
	}, sent[0])
}

// TestQuickOrder_RejectsWhileInFlight は発注中の同一シンボルへの再発注が拒否されることを検証します。
func TestQuickOrder_RejectsWhileInFlight(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	started := make(chan struct{}, 1)
	opener := &mockPositionOpener{
		OpenPositionFunc: func(ctx context.Context, order entity.OrderRequest) error {
			if order.SymbolID == "EURUSD" {
				started <- struct{}{}
				<-release
			}
			return nil
		},
	}
	q := usecase.NewQuickOrder(opener, nil)
	t.Cleanup(q.Close)

	require.NoError(t, q.SubmitAsync("EURUSD", entity.SideBuy))
	<-started
	assert.True(t, q.IsLoading("EURUSD"))

	err := q.SubmitAsync("EURUSD", entity.SideSell)
	assert.ErrorIs(t, err, usecase.ErrOrderInFlight)

	// 他のシンボルは独立して発注できる
	require.NoError(t, q.Submit(context.Background(), "USDJPY", entity.SideSell))
	assert.False(t, q.IsLoading("USDJPY"))

	close(release)
	require.Eventually(t, func() bool { return !q.IsLoading("EURUSD") }, time.Second, 5*time.Millisecond)
	assert.Len(t, opener.sent(), 2)
}

// TestQuickOrder_Validation は不正な入力が同期的にエラーになることを検証します。
func TestQuickOrder_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		symbol  string
		side    entity.Side
		wantErr error
	}{
		{name: "empty symbol", symbol: "", side: entity.SideBuy, wantErr: usecase.ErrEmptySymbol},
		{name: "blank symbol", symbol: "  ", side: entity.SideBuy, wantErr: usecase.ErrEmptySymbol},
		{name: "invalid side", symbol: "EURUSD", side: entity.Side("hold"), wantErr: usecase.ErrInvalidSide},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opener := &mockPositionOpener{}
			q := usecase.NewQuickOrder(opener, nil)
			t.Cleanup(q.Close)

			err := q.SubmitAsync(tt.symbol, tt.side)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, opener.sent())
		})
	}
}

// TestQuickOrder_OnChange はローディングフラグの変化がtrue→falseの順で通知されることを検証します。
func TestQuickOrder_OnChange(t *testing.T) {
	t.Parallel()

	q := usecase.NewQuickOrder(&mockPositionOpener{}, nil)
	t.Cleanup(q.Close)

	var mu sync.Mutex
	var flips []bool
	q.OnChange(func(symbol string, loading bool) {
		mu.Lock()
		flips = append(flips, loading)
		mu.Unlock()
	})

	require.NoError(t, q.Submit(context.Background(), "BTCUSD", entity.SideBuy))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false}, flips)
}

// TestQuickOrder_CloseSuppressesLateSuccess はClose後に成功した注文が通知されないことを検証します。
func TestQuickOrder_CloseSuppressesLateSuccess(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	opener := &mockPositionOpener{
		OpenPositionFunc: func(ctx context.Context, order entity.OrderRequest) error {
			close(started)
			// キャンセルを無視して約定する
			<-ctx.Done()
			return nil
		},
	}
	notifier := &recordingNotifier{}
	q := usecase.NewQuickOrder(opener, notifier)

	require.NoError(t, q.SubmitAsync("GBPUSD", entity.SideSell))
	<-started

	q.Close()

	assert.False(t, q.IsLoading("GBPUSD"))
	assert.Empty(t, notifier.all())
}

// TestQuickOrder_CloseCancelsOutstanding はClose時に実行中の注文がキャンセルされ、以降の発注が拒否されることを検証します。
func TestQuickOrder_CloseCancelsOutstanding(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	opener := &mockPositionOpener{
		OpenPositionFunc: func(ctx context.Context, order entity.OrderRequest) error {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		},
	}
	notifier := &recordingNotifier{}
	q := usecase.NewQuickOrder(opener, notifier)

	require.NoError(t, q.SubmitAsync("EURUSD", entity.SideBuy))
	<-started

	q.Close()

	assert.False(t, q.IsLoading("EURUSD"))
	assert.Empty(t, notifier.all())
	assert.ErrorIs(t, q.SubmitAsync("EURUSD", entity.SideBuy), usecase.ErrClosed)
}
