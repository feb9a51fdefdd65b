package entity

// SearchResult is one symbol returned by the backend search endpoint.
type SearchResult struct {
	ID            int64  `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	BaseCurrency  string `json:"base_currency"`
	QuoteCurrency string `json:"quote_currency"`
	CategoryName  string `json:"category_name"`
}

// SearchState is the observable state of the symbol search box.
type SearchState struct {
	Query       string
	Results     []SearchResult
	ShowResults bool
	Searching   bool
}

// NoResults reports whether the results panel should show the empty state.
func (s SearchState) NoResults() bool {
	return s.ShowResults && len(s.Results) == 0 && !s.Searching && s.Query != ""
}
