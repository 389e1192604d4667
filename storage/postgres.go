package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// KVEntry is the single table backing the Postgres store. Entity records
// are stored as JSON documents keyed by their namespaced key.
type KVEntry struct {
	Key       string    `gorm:"primaryKey;size:255" json:"key"`
	Value     []byte    `gorm:"type:jsonb;not null" json:"value"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (KVEntry) TableName() string { return "kv_entries" }

// PostgresStore implements Store on a Postgres kv_entries table via GORM.
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore migrates the kv table and returns the store.
func NewPostgresStore(db *gorm.DB) (*PostgresStore, error) {
	if err := db.AutoMigrate(&KVEntry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate kv_entries: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var entry KVEntry
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv get %q: %w", key, err)
	}
	return entry.Value, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	entry := KVEntry{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("kv set %q: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) GetByPrefix(ctx context.Context, prefix string) ([][]byte, error) {
	var entries []KVEntry
	err := s.db.WithContext(ctx).
		Where("key LIKE ?", prefix+"%").
		Order("key ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("kv scan %q: %w", prefix, err)
	}
	values := make([][]byte, len(entries))
	for i, e := range entries {
		values[i] = e.Value
	}
	return values, nil
}
