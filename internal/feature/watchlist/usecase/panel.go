package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"tradeview/internal/feature/watchlist/domain/entity"
)

// Mode selects how the panel is laid out. It is fixed at construction.
type Mode int

const (
	// ModeInline docks the panel beside its parent; no backdrop.
	ModeInline Mode = iota
	// ModeOverlay floats the panel over its parent with a backdrop.
	ModeOverlay
)

// OverlayTransition is the cosmetic slide-in/out duration of the overlay.
// Input is never blocked while it runs.
const OverlayTransition = 300 * time.Millisecond

func (m Mode) String() string {
	switch m {
	case ModeInline:
		return "inline"
	case ModeOverlay:
		return "overlay"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "inline" or "overlay".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "inline":
		return ModeInline, nil
	case "overlay":
		return ModeOverlay, nil
	default:
		return ModeInline, fmt.Errorf("unknown panel mode %q", s)
	}
}

// Rect is a screen region in cells.
type Rect struct {
	X, Y, Width, Height int
}

// Contains reports whether the point (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// PanelDeps are the collaborators a Panel is assembled from.
// Feed and Selector may be nil.
type PanelDeps struct {
	Store    *Store
	Search   *SearchClient
	Orders   *QuickOrder
	Feed     QuoteFeed
	Selector SymbolSelector
}

// Panel is one watchlist panel instance: the open/closed flag, the layout mode
// and the wiring between the store, the search box, quick orders and the quote feed.
type Panel struct {
	mode     Mode
	store    *Store
	search   *SearchClient
	orders   *QuickOrder
	feed     QuoteFeed
	selector SymbolSelector

	mu           sync.Mutex
	open         bool
	searchRegion Rect

	listenMu     sync.Mutex
	listeners    map[uint64]func()
	nextListener uint64
	stopStore    func()
}

// NewPanel creates a panel in the given mode.
// The panel takes over the OnChange callbacks of deps.Search and deps.Orders.
func NewPanel(mode Mode, deps PanelDeps, open bool) *Panel {
	p := &Panel{
		mode:      mode,
		store:     deps.Store,
		search:    deps.Search,
		orders:    deps.Orders,
		feed:      deps.Feed,
		selector:  deps.Selector,
		open:      open,
		listeners: make(map[uint64]func()),
	}
	if p.search != nil {
		p.search.OnChange(func(entity.SearchState) { p.changed() })
	}
	if p.orders != nil {
		p.orders.OnChange(func(string, bool) { p.changed() })
	}
	p.stopStore = p.store.Subscribe(func([]string) { p.changed() })
	return p
}

func (p *Panel) Mode() Mode { return p.mode }

func (p *Panel) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

func (p *Panel) Open()  { p.setOpen(true) }
func (p *Panel) Close() { p.setOpen(false) }

// Toggle flips the open flag and returns the new value.
func (p *Panel) Toggle() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = !p.open
	return p.open
}

func (p *Panel) setOpen(open bool) {
	p.mu.Lock()
	p.open = open
	p.mu.Unlock()
}

// ShowsBackdrop reports whether a backdrop is drawn under the panel.
func (p *Panel) ShowsBackdrop() bool {
	return p.mode == ModeOverlay && p.IsOpen()
}

// TransitionDuration is the entrance/exit animation length for this mode.
func (p *Panel) TransitionDuration() time.Duration {
	if p.mode == ModeOverlay {
		return OverlayTransition
	}
	return 0
}

// ClickBackdrop closes an overlay panel. Inline panels have no backdrop.
func (p *Panel) ClickBackdrop() {
	if p.mode == ModeOverlay {
		p.Close()
	}
}

// SetSearchRegion records where the search input and its results are drawn.
func (p *Panel) SetSearchRegion(r Rect) {
	p.mu.Lock()
	p.searchRegion = r
	p.mu.Unlock()
}

// PointerDown handles a pointer press anywhere on screen. A press outside the
// search region hides the search results.
func (p *Panel) PointerDown(x, y int) {
	p.mu.Lock()
	region := p.searchRegion
	p.mu.Unlock()

	if !region.Contains(x, y) && p.search != nil {
		p.search.Dismiss()
	}
}

// Count is the number of watched symbols, shown in the header badge.
func (p *Panel) Count() int {
	return p.store.Len()
}

// Rows joins the watchlist with the current quotes.
func (p *Panel) Rows() []entity.WatchlistRow {
	var loading func(string) bool
	if p.orders != nil {
		loading = p.orders.IsLoading
	}
	if p.feed == nil {
		return JoinQuotes(p.store.Symbols(), nil, loading)
	}
	return JoinQuotes(p.store.Symbols(), p.feed.Quotes(), loading)
}

// OnChange registers fn to run after any search, order or watchlist change.
// fn may run on any goroutine. The returned function removes fn.
func (p *Panel) OnChange(fn func()) (unsubscribe func()) {
	p.listenMu.Lock()
	id := p.nextListener
	p.nextListener++
	p.listeners[id] = fn
	p.listenMu.Unlock()

	return func() {
		p.listenMu.Lock()
		delete(p.listeners, id)
		p.listenMu.Unlock()
	}
}

func (p *Panel) changed() {
	p.listenMu.Lock()
	fns := make([]func(), 0, len(p.listeners))
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.listenMu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Search returns the panel's search client.
func (p *Panel) Search() *SearchClient { return p.search }

// SelectSymbol makes symbol the active symbol of the market data collaborator.
// An overlay panel closes so the chart for symbol is visible; an inline panel stays open.
func (p *Panel) SelectSymbol(symbol string) {
	if p.selector != nil {
		p.selector.SetSelectedSymbol(symbol)
	}
	if p.mode == ModeOverlay {
		p.Close()
	}
}

// Remove drops symbol from the watchlist.
func (p *Panel) Remove(ctx context.Context, symbol string) error {
	return p.store.Remove(ctx, symbol)
}

// QuickOrder starts a one-click order in the background.
func (p *Panel) QuickOrder(symbol string, side entity.Side) error {
	if p.orders == nil {
		return ErrClosed
	}
	return p.orders.SubmitAsync(symbol, side)
}

// Dispose cancels the pending search and outstanding orders.
// Their late results are dropped.
func (p *Panel) Dispose() {
	if p.stopStore != nil {
		p.stopStore()
	}
	if p.search != nil {
		p.search.Close()
	}
	if p.orders != nil {
		p.orders.Close()
	}
}
