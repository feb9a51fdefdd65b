// Package dto defines data transfer objects for the watchlist HTTP API.
package dto

// AddSymbolRequest is the body of POST /api/watchlist.
type AddSymbolRequest struct {
	Symbol string `json:"symbol" binding:"required,max=20"`
}

// SymbolsResponse carries the current watchlist in order.
type SymbolsResponse struct {
	Symbols []string `json:"symbols"`
}

// AddSymbolResponse reports whether the symbol was newly added.
type AddSymbolResponse struct {
	Added   bool     `json:"added"`
	Symbols []string `json:"symbols"`
}

// WatchlistRow is one formatted row of the watchlist joined with its quote.
type WatchlistRow struct {
	Symbol      string `json:"symbol"`
	SymbolID    int64  `json:"symbol_id,omitempty"`
	Bid         string `json:"bid"`
	Ask         string `json:"ask"`
	Last        string `json:"last"`
	Change      string `json:"change"`
	ChangeBadge string `json:"change_badge"`
	Spread      string `json:"spread"`
	Positive    bool   `json:"positive"`
	HasQuote    bool   `json:"has_quote"`
}

// RowsResponse is the body of GET /api/watchlist/rows.
type RowsResponse struct {
	Rows []WatchlistRow `json:"rows"`
}
