// Package adapters はsymbolsearchフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"tradeview/internal/feature/symbolsearch/domain/entity"
	"tradeview/internal/feature/symbolsearch/usecase"
)

// likeEscaper はLIKEパターンのワイルドカード文字をエスケープします。
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// symbolGorm はSymbolRepositoryインターフェースのGORM実装です。
type symbolGorm struct {
	db *gorm.DB
}

var _ usecase.SymbolRepository = (*symbolGorm)(nil)

// NewSymbolRepository は指定されたDB接続でsymbolGormリポジトリの新しいインスタンスを生成します。
func NewSymbolRepository(db *gorm.DB) *symbolGorm {
	return &symbolGorm{db: db}
}

// Search はコードまたは名称に query を含むアクティブな銘柄を、大文字小文字を区別せずに
// sort_key、code の順で最大 limit 件返します。
func (r *symbolGorm) Search(ctx context.Context, query string, limit int) ([]entity.Symbol, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"

	var symbols []entity.Symbol
	if err := r.db.WithContext(ctx).
		Preload("Category").
		Where("is_active = ?", true).
		Where(`(LOWER(code) LIKE ? ESCAPE '\' OR LOWER(name) LIKE ? ESCAPE '\')`, pattern, pattern).
		Order("sort_key ASC").
		Order("code ASC").
		Limit(limit).
		Find(&symbols).Error; err != nil {
		return nil, err
	}
	return symbols, nil
}
