// Package entity defines the domain models for the watchlist feature.
package entity

// StorageKey is the key under which the serialized watchlist is persisted.
const StorageKey = "tradeview_watchlist"

// DefaultSymbols seeds a watchlist that has never been saved or cannot be read.
var DefaultSymbols = []string{"EURUSD", "USDJPY", "GBPUSD", "XAUUSD", "BTCUSD"}

// WatchlistRow is the display projection of one watchlist symbol joined with its quote.
// Price fields are already formatted; missing values render as Placeholder.
type WatchlistRow struct {
	Symbol      string
	SymbolID    int64
	Bid         string
	Ask         string
	Last        string
	Change      string
	ChangeBadge string
	Spread      string
	Positive    bool
	HasQuote    bool
	Loading     bool
}

// Placeholder is shown in place of any value that is not available.
const Placeholder = "-"
