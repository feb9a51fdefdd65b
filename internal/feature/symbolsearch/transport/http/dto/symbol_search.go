// Package dto defines data transfer objects for the symbolsearch HTTP API.
package dto

// SymbolItem represents a symbol in the search response.
// It contains only the public-facing fields needed by clients.
type SymbolItem struct {
	ID            uint   `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	BaseCurrency  string `json:"base_currency"`
	QuoteCurrency string `json:"quote_currency"`
	CategoryName  string `json:"category_name"`
}

// SearchResponse is the body of GET /api/market/symbols/search.
type SearchResponse struct {
	Symbols []SymbolItem `json:"symbols"`
}
