// Package entity defines the domain models for the symbolsearch feature.
package entity

import "time"

// Category groups symbols by asset class (e.g., "Forex", "Metals", "Crypto").
type Category struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100;not null;uniqueIndex"`
}

// TableName returns the table name for Category.
func (Category) TableName() string { return "symbol_categories" }

// Symbol represents a tradable instrument that can be added to a watchlist.
// Code is the identifier users type and the watchlist stores (e.g., "EURUSD").
type Symbol struct {
	ID            uint      `gorm:"primaryKey"`
	Code          string    `gorm:"size:20;not null;uniqueIndex"`
	Name          string    `gorm:"size:255;not null"`
	BaseCurrency  string    `gorm:"size:10"`
	QuoteCurrency string    `gorm:"size:10"`
	CategoryID    *uint     `gorm:"index"`
	Category      *Category `gorm:"foreignKey:CategoryID"`
	IsActive      bool      `gorm:"not null;default:true"`
	SortKey       int       `gorm:"not null;default:0"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// CategoryName returns the name of the symbol's category, or "" when it has none.
func (s Symbol) CategoryName() string {
	if s.Category == nil {
		return ""
	}
	return s.Category.Name
}
