package usecase

import (
	"github.com/shopspring/decimal"

	mdentity "tradeview/internal/feature/marketdata/domain/entity"
	"tradeview/internal/feature/watchlist/domain/entity"
)

const (
	// priceDecimals is the number of decimals every price column is shown with.
	priceDecimals = 5
	// badgeDecimals is the number of decimals of the signed change badge.
	badgeDecimals = 4
)

// QuoteFeed is the read side of the market data collaborator.
type QuoteFeed interface {
	// Quotes returns the current snapshot list.
	Quotes() []mdentity.QuoteSnapshot
}

// SymbolSelector receives the symbol the user clicked on.
type SymbolSelector interface {
	SetSelectedSymbol(symbol string)
}

// JoinQuotes projects each watched symbol onto its quote, in watchlist order.
// Symbols without a quote, and quotes with missing fields, render Placeholder.
// loading may be nil.
func JoinQuotes(symbols []string, quotes []mdentity.QuoteSnapshot, loading func(symbol string) bool) []entity.WatchlistRow {
	bySymbol := make(map[string]mdentity.QuoteSnapshot, len(quotes))
	for _, q := range quotes {
		if _, dup := bySymbol[q.Symbol]; !dup {
			bySymbol[q.Symbol] = q
		}
	}

	rows := make([]entity.WatchlistRow, 0, len(symbols))
	for _, sym := range symbols {
		q, ok := bySymbol[sym]
		row := entity.WatchlistRow{
			Symbol:      sym,
			Bid:         entity.Placeholder,
			Ask:         entity.Placeholder,
			Last:        entity.Placeholder,
			Change:      entity.Placeholder,
			ChangeBadge: entity.Placeholder,
			Spread:      entity.Placeholder,
			Positive:    true,
			HasQuote:    ok,
		}
		if loading != nil {
			row.Loading = loading(sym)
		}
		if ok {
			row.SymbolID = q.SymbolID
			row.Bid = FormatPrice(q.Bid)
			row.Ask = FormatPrice(q.Ask)
			row.Last = FormatPrice(q.Last)
			row.Change = FormatPrice(q.Change)
			if q.Bid != nil && q.Ask != nil {
				spread := decimal.NewFromFloat(*q.Ask).Sub(decimal.NewFromFloat(*q.Bid))
				row.Spread = spread.StringFixed(priceDecimals)
			}
			if q.Change != nil {
				row.Positive = *q.Change >= 0
				row.ChangeBadge = formatSigned(*q.Change)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// FormatPrice renders v with five decimals, or Placeholder when v is nil.
func FormatPrice(v *float64) string {
	if v == nil {
		return entity.Placeholder
	}
	return decimal.NewFromFloat(*v).StringFixed(priceDecimals)
}

func formatSigned(v float64) string {
	d := decimal.NewFromFloat(v).StringFixed(badgeDecimals)
	if v >= 0 {
		return "+" + d
	}
	return d
}
