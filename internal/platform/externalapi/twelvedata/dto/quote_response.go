// Package dto defines data transfer objects for the Twelve Data API responses.
package dto

// QuoteResponse represents one instrument in the JSON response from the Twelve Data quote endpoint.
// Numeric values are sent as strings.
type QuoteResponse struct {
	Status        string `json:"status,omitempty"`
	Code          int    `json:"code,omitempty"`
	Message       string `json:"message,omitempty"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Datetime      string `json:"datetime"`
	Timestamp     int64  `json:"timestamp"`
	Open          string `json:"open"`
	High          string `json:"high"`
	Low           string `json:"low"`
	Close         string `json:"close"`
	PreviousClose string `json:"previous_close"`
	Change        string `json:"change"`
	PercentChange string `json:"percent_change"`
}

// IsError reports whether the entry is an error object instead of a quote.
func (q QuoteResponse) IsError() bool {
	return q.Status == "error"
}
