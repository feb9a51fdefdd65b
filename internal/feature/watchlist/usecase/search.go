package usecase

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"tradeview/internal/feature/watchlist/domain/entity"
)

// DefaultSearchDebounce is how long the query must stay unchanged before a search is issued.
const DefaultSearchDebounce = 300 * time.Millisecond

// SymbolSearcher looks up symbols by free text.
type SymbolSearcher interface {
	Search(ctx context.Context, query string) ([]entity.SearchResult, error)
}

// SearchClient drives the watchlist search box.
//
// Keystrokes restart a debounce timer; when it fires, one request is issued for
// the query current at that moment. Every issued request gets a generation
// number and only the latest generation may touch the state, so a slow
// response for an old query never overwrites a newer one.
type SearchClient struct {
	searcher SymbolSearcher
	store    *Store
	notifier Notifier
	debounce time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu         sync.Mutex
	state      entity.SearchState
	timer      *time.Timer
	pending    uint64
	generation uint64
	closed     bool
	onChange   func(entity.SearchState)
}

// NewSearchClient creates a SearchClient that adds selected results to store.
// A non-positive debounce uses DefaultSearchDebounce.
func NewSearchClient(searcher SymbolSearcher, store *Store, notifier Notifier, debounce time.Duration) *SearchClient {
	if debounce <= 0 {
		debounce = DefaultSearchDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &SearchClient{
		searcher: searcher,
		store:    store,
		notifier: orDiscard(notifier),
		debounce: debounce,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// OnChange registers fn to be called after every state change.
func (c *SearchClient) OnChange(fn func(entity.SearchState)) {
	c.mu.Lock()
	c.onChange = fn
	c.mu.Unlock()
}

// State returns a copy of the current search state.
func (c *SearchClient) State() entity.SearchState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// SetQuery records the text of the search box and restarts the debounce timer.
// A blank query hides the results immediately and issues no request.
func (c *SearchClient) SetQuery(query string) {
	c.mu.Lock()
	if c.closed || query == c.state.Query {
		c.mu.Unlock()
		return
	}
	c.state.Query = query
	c.stopTimerLocked()
	c.pending++
	// 入力が変わった時点で実行中の検索は古くなる
	c.generation++

	if strings.TrimSpace(query) == "" {
		c.state.Results = nil
		c.state.ShowResults = false
		c.state.Searching = false
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.emit(snap)
		return
	}

	token := c.pending
	c.timer = time.AfterFunc(c.debounce, func() { c.fire(token) })
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(snap)
}

func (c *SearchClient) fire(token uint64) {
	c.mu.Lock()
	if c.closed || token != c.pending {
		c.mu.Unlock()
		return
	}
	query := c.state.Query
	c.generation++
	gen := c.generation
	c.state.Searching = true
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(snap)

	results, err := c.searcher.Search(c.ctx, query)

	c.mu.Lock()
	if c.closed || gen != c.generation {
		c.mu.Unlock()
		slog.Debug("discarding stale search response", "query", query)
		return
	}
	c.state.Searching = false
	if err != nil {
		c.state.Results = nil
		c.state.ShowResults = false
	} else {
		c.state.Results = results
		c.state.ShowResults = true
	}
	snap = c.snapshotLocked()
	c.mu.Unlock()

	if err != nil {
		slog.Warn("symbol search failed", "query", query, "error", err)
		c.notifier.Notify(entity.Notification{
			Title:       "Search failed",
			Description: "Unable to search symbols",
			Variant:     entity.VariantDestructive,
		})
	}
	c.emit(snap)
}

// Select adds the chosen result to the watchlist, clears the query and hides the results.
func (c *SearchClient) Select(ctx context.Context, result entity.SearchResult) (bool, error) {
	added, err := c.store.Add(ctx, result.Symbol)

	c.mu.Lock()
	c.stopTimerLocked()
	c.pending++
	c.generation++
	c.state.Query = ""
	c.state.ShowResults = false
	c.state.Searching = false
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(snap)
	return added, err
}

// Dismiss hides the results panel and keeps the query text.
// It is what a pointer-down outside the search region does.
func (c *SearchClient) Dismiss() {
	c.mu.Lock()
	if !c.state.ShowResults {
		c.mu.Unlock()
		return
	}
	c.state.ShowResults = false
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(snap)
}

// Clear empties the query and hides the results (the clear button).
func (c *SearchClient) Clear() {
	c.SetQuery("")
}

// Close stops the debounce timer and cancels the request in flight.
// Responses arriving afterwards are dropped.
func (c *SearchClient) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.stopTimerLocked()
	c.mu.Unlock()
	c.cancel()
}

func (c *SearchClient) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *SearchClient) snapshotLocked() entity.SearchState {
	s := c.state
	s.Results = slices.Clone(c.state.Results)
	return s
}

func (c *SearchClient) emit(s entity.SearchState) {
	c.mu.Lock()
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(s)
	}
}
