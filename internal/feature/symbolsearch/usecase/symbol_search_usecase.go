// Package usecase implements the business logic for symbol search.
package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"tradeview/internal/feature/symbolsearch/domain/entity"
)

const (
	// DefaultLimit is the maximum number of results returned by a search.
	DefaultLimit = 20
	// MaxQueryLength bounds the query text accepted from clients.
	MaxQueryLength = 64
)

// SymbolRepository abstracts the persistence layer for searchable symbols.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SymbolRepository interface {
	// Search returns up to limit active symbols whose code or name contains query, case-insensitively.
	Search(ctx context.Context, query string, limit int) ([]entity.Symbol, error)
}

// SymbolSearchUsecase provides business logic for symbol search.
type SymbolSearchUsecase struct {
	repo SymbolRepository
}

// NewSymbolSearchUsecase creates a new SymbolSearchUsecase with the given repository.
func NewSymbolSearchUsecase(r SymbolRepository) *SymbolSearchUsecase {
	return &SymbolSearchUsecase{repo: r}
}

// Search trims the query and looks it up. A blank query returns an empty slice
// without touching the repository.
func (u *SymbolSearchUsecase) Search(ctx context.Context, query string) ([]entity.Symbol, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return []entity.Symbol{}, nil
	}
	if utf8.RuneCountInString(q) > MaxQueryLength {
		return nil, fmt.Errorf("%w: %d characters", ErrQueryTooLong, utf8.RuneCountInString(q))
	}
	symbols, err := u.repo.Search(ctx, q, DefaultLimit)
	if err != nil {
		return nil, err
	}
	if symbols == nil {
		return []entity.Symbol{}, nil
	}
	return symbols, nil
}
