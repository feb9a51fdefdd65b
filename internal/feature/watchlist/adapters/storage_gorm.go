// Package adapters はwatchlistフィーチャーのストレージと外部APIクライアントの実装を提供します。
package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradeview/internal/feature/watchlist/usecase"
)

// KVEntryModel はキー・バリュー形式の永続化テーブルを表すGORMモデルです。
type KVEntryModel struct {
	Key       string    `gorm:"primaryKey;size:191"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName はテーブル名を返します。
func (KVEntryModel) TableName() string { return "kv_entries" }

// gormStorage はStorageインターフェースのGORM実装です。
type gormStorage struct {
	db *gorm.DB
}

var _ usecase.Storage = (*gormStorage)(nil)

// NewGormStorage は指定されたDB接続でgormStorageの新しいインスタンスを生成します。
func NewGormStorage(db *gorm.DB) *gormStorage {
	return &gormStorage{db: db}
}

// Get はキーに対応する値を返します。存在しない場合はok=falseを返します。
func (s *gormStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var m KVEntryModel
	err := s.db.WithContext(ctx).Where("key = ?", key).Take(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return m.Value, true, nil
}

// Set はキーに値を保存します。既存のキーは上書きされます。
func (s *gormStorage) Set(ctx context.Context, key, value string) error {
	m := KVEntryModel{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}
