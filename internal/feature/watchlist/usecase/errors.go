// Package usecase implements the watchlist panel: the persistent symbol list,
// the debounced symbol search, quick orders and the quote join.
package usecase

import "errors"

var (
	// ErrEmptySymbol is returned when a blank symbol is added to the watchlist.
	ErrEmptySymbol = errors.New("symbol must not be empty")

	// ErrPersist is returned when the watchlist could not be written to storage.
	// The in-memory list is left as it was before the call.
	ErrPersist = errors.New("failed to persist watchlist")

	// ErrOrderInFlight is returned when a quick order for the same symbol is still outstanding.
	ErrOrderInFlight = errors.New("order already in flight for symbol")

	// ErrInvalidSide is returned for an order side other than buy or sell.
	ErrInvalidSide = errors.New("invalid order side")

	// ErrClosed is returned by components that have been disposed.
	ErrClosed = errors.New("component closed")
)
