package adapters

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradeview/internal/feature/symbolsearch/domain/entity"
)

// CatalogEntry は初期投入する銘柄の定義です。
type CatalogEntry struct {
	Code          string
	Name          string
	BaseCurrency  string
	QuoteCurrency string
	Category      string
}

// DefaultCatalog は空のデータベースに投入される銘柄一覧です。
var DefaultCatalog = []CatalogEntry{
	{"EURUSD", "Euro / US Dollar", "EUR", "USD", "Forex"},
	{"USDJPY", "US Dollar / Japanese Yen", "USD", "JPY", "Forex"},
	{"GBPUSD", "British Pound / US Dollar", "GBP", "USD", "Forex"},
	{"AUDUSD", "Australian Dollar / US Dollar", "AUD", "USD", "Forex"},
	{"USDCHF", "US Dollar / Swiss Franc", "USD", "CHF", "Forex"},
	{"USDCAD", "US Dollar / Canadian Dollar", "USD", "CAD", "Forex"},
	{"EURJPY", "Euro / Japanese Yen", "EUR", "JPY", "Forex"},
	{"EURGBP", "Euro / British Pound", "EUR", "GBP", "Forex"},
	{"XAUUSD", "Gold / US Dollar", "XAU", "USD", "Metals"},
	{"XAGUSD", "Silver / US Dollar", "XAG", "USD", "Metals"},
	{"BTCUSD", "Bitcoin / US Dollar", "BTC", "USD", "Crypto"},
	{"ETHUSD", "Ethereum / US Dollar", "ETH", "USD", "Crypto"},
}

// EnsureCatalog はカテゴリと銘柄をupsertします。既存の銘柄は変更しません。
func EnsureCatalog(ctx context.Context, db *gorm.DB, entries []CatalogEntry) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories := make(map[string]uint)
		for i, e := range entries {
			id, ok := categories[e.Category]
			if !ok {
				cat := entity.Category{Name: e.Category}
				if err := tx.Where(entity.Category{Name: e.Category}).FirstOrCreate(&cat).Error; err != nil {
					return fmt.Errorf("ensure category %s: %w", e.Category, err)
				}
				id = cat.ID
				categories[e.Category] = id
			}

			sym := entity.Symbol{
				Code:          e.Code,
				Name:          e.Name,
				BaseCurrency:  e.BaseCurrency,
				QuoteCurrency: e.QuoteCurrency,
				CategoryID:    &id,
				IsActive:      true,
				SortKey:       i + 1,
			}
			if err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "code"}},
				DoNothing: true,
			}).Create(&sym).Error; err != nil {
				return fmt.Errorf("ensure symbol %s: %w", e.Code, err)
			}
		}
		slog.Info("symbol catalog ensured", "count", len(entries))
		return nil
	})
}
