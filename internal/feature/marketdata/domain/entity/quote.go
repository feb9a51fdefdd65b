// Package entity defines the domain models for the marketdata feature.
package entity

import "time"

// QuoteSnapshot is the latest known price state of a single symbol.
// Numeric fields are nil when the provider did not supply them.
type QuoteSnapshot struct {
	Symbol    string    // Watchlist symbol (e.g., "EURUSD")
	SymbolID  int64     // Backend identifier, 0 when unknown
	Bid       *float64  // Best bid
	Ask       *float64  // Best ask
	Last      *float64  // Last traded or close price
	Change    *float64  // Absolute change against the previous close
	UpdatedAt time.Time // When the snapshot was received
}
