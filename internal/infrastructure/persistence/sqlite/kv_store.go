package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/alchemorsel/recipebook/internal/ports/outbound"
)

// EntryModel is one persisted key-value entry
type EntryModel struct {
	Key       string    `gorm:"primaryKey;size:64"`
	Value     string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName returns the table name for GORM
func (EntryModel) TableName() string {
	return "kv_entries"
}

// KeyValueStore stores session entries in the kv_entries table
type KeyValueStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewKeyValueStore creates a store over an already migrated database
func NewKeyValueStore(db *gorm.DB, logger *zap.Logger) *KeyValueStore {
	return &KeyValueStore{
		db:     db,
		logger: logger.Named("sqlite-store"),
	}
}

var _ outbound.KeyValueStore = (*KeyValueStore)(nil)

// Get returns the stored value
func (s *KeyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry EntryModel
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, outbound.ErrKeyNotFound
	}
	if err != nil {
		s.logger.Debug("Entry read failed", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(entry.Value), nil
}

// Set upserts value under key
func (s *KeyValueStore) Set(ctx context.Context, key string, value []byte) error {
	entry := EntryModel{
		Key:       key,
		Value:     string(value),
		UpdatedAt: time.Now(),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (s *KeyValueStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Where("key = ?", key).Delete(&EntryModel{}).Error; err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database
func (s *KeyValueStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
