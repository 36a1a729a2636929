package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCartStore keeps cart records in the cart_records table.
type GORMCartStore struct {
	db *gorm.DB
}

// NewGORMCartStore creates a new instance of GORMCartStore.
func NewGORMCartStore(db *gorm.DB) *GORMCartStore {
	return &GORMCartStore{db: db}
}

// Get loads the record stored under key.
func (s *GORMCartStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var rec models.CartRecord
	if err := s.db.WithContext(ctx).First(&rec, "session_key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get cart record %s: %w", key, err)
	}
	return rec.Payload, true, nil
}

// Set inserts or replaces the record stored under key.
func (s *GORMCartStore) Set(ctx context.Context, key string, value []byte) error {
	rec := models.CartRecord{SessionKey: key, Payload: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "session_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"payload", "updated_at"}),
		}).
		Create(&rec).Error
	if err != nil {
		return fmt.Errorf("failed to save cart record %s: %w", key, err)
	}
	return nil
}

// Delete removes the record stored under key.
func (s *GORMCartStore) Delete(ctx context.Context, key string) error {
	if err := s.db.WithContext(ctx).Delete(&models.CartRecord{}, "session_key = ?", key).Error; err != nil {
		return fmt.Errorf("failed to delete cart record %s: %w", key, err)
	}
	return nil
}
