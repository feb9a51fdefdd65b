// Package usecase はmarketdataフィーチャーのビジネスロジックを提供します。
package usecase

import (
	"slices"
	"sync"

	"tradeview/internal/feature/marketdata/domain/entity"
)

// Feed は銘柄ごとの最新気配と、ユーザーが選択中の銘柄を保持します。
type Feed struct {
	mu       sync.RWMutex
	order    []string
	quotes   map[string]entity.QuoteSnapshot
	selected string

	subMu   sync.Mutex
	subs    map[uint64]func([]entity.QuoteSnapshot)
	nextSub uint64
}

// NewFeed は空のFeedを生成します。
func NewFeed() *Feed {
	return &Feed{
		quotes: make(map[string]entity.QuoteSnapshot),
		subs:   make(map[uint64]func([]entity.QuoteSnapshot)),
	}
}

// Quotes は最初に受信した順で現在の気配一覧のコピーを返します。
func (f *Feed) Quotes() []entity.QuoteSnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snapshotLocked()
}

// Quote は指定銘柄の気配を返します。
func (f *Feed) Quote(symbol string) (entity.QuoteSnapshot, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	q, ok := f.quotes[symbol]
	return q, ok
}

// Update は受信した気配を銘柄単位でマージします。
// 新しい値がnilのフィールドは直前の値を保持します。
func (f *Feed) Update(quotes []entity.QuoteSnapshot) {
	if len(quotes) == 0 {
		return
	}

	f.mu.Lock()
	for _, q := range quotes {
		if q.Symbol == "" {
			continue
		}
		prev, ok := f.quotes[q.Symbol]
		if !ok {
			f.order = append(f.order, q.Symbol)
		} else {
			q = merge(prev, q)
		}
		f.quotes[q.Symbol] = q
	}
	snapshot := f.snapshotLocked()
	f.mu.Unlock()

	f.publish(snapshot)
}

// SetSelectedSymbol はユーザーが選択した銘柄を記録します。
func (f *Feed) SetSelectedSymbol(symbol string) {
	f.mu.Lock()
	f.selected = symbol
	f.mu.Unlock()
}

// SelectedSymbol は選択中の銘柄を返します。
func (f *Feed) SelectedSymbol() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.selected
}

// Subscribe は気配更新のたびにfnを呼び出すよう登録し、解除関数を返します。
func (f *Feed) Subscribe(fn func([]entity.QuoteSnapshot)) func() {
	f.subMu.Lock()
	id := f.nextSub
	f.nextSub++
	f.subs[id] = fn
	f.subMu.Unlock()

	return func() {
		f.subMu.Lock()
		delete(f.subs, id)
		f.subMu.Unlock()
	}
}

func (f *Feed) publish(snapshot []entity.QuoteSnapshot) {
	f.subMu.Lock()
	fns := make([]func([]entity.QuoteSnapshot), 0, len(f.subs))
	for _, fn := range f.subs {
		fns = append(fns, fn)
	}
	f.subMu.Unlock()

	for _, fn := range fns {
		fn(slices.Clone(snapshot))
	}
}

func (f *Feed) snapshotLocked() []entity.QuoteSnapshot {
	out := make([]entity.QuoteSnapshot, 0, len(f.order))
	for _, sym := range f.order {
		out = append(out, f.quotes[sym])
	}
	return out
}

func merge(prev, next entity.QuoteSnapshot) entity.QuoteSnapshot {
	if next.SymbolID == 0 {
		next.SymbolID = prev.SymbolID
	}
	if next.Bid == nil {
		next.Bid = prev.Bid
	}
	if next.Ask == nil {
		next.Ask = prev.Ask
	}
	if next.Last == nil {
		next.Last = prev.Last
	}
	if next.Change == nil {
		next.Change = prev.Change
	}
	if next.UpdatedAt.IsZero() {
		next.UpdatedAt = prev.UpdatedAt
	}
	return next
}
