// Package metadata persists process-wide facts as fixed-key rows.
package metadata

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// The metadata table holds exactly one row.
const singletonID = 1

// AppMetadata records the completion time of the most recent refresh cycle,
// independent of any individual country's timestamp.
type AppMetadata struct {
	ID              int64      `gorm:"primaryKey" json:"id"`
	LastRefreshedAt *time.Time `json:"last_refreshed_at"`
}

// TableName sets the database table name.
func (AppMetadata) TableName() string { return "app_metadata" }

// Repository reads and updates the singleton row. Touch writes through the
// caller's transaction so it commits with the refresh batch.
type Repository interface {
	Get(ctx context.Context) (*AppMetadata, error)
	Touch(ctx context.Context, tx *gorm.DB, at time.Time) error
}

type repository struct {
	db *gorm.DB
}

func Provide(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context) (*AppMetadata, error) {
	var meta AppMetadata
	err := r.db.WithContext(ctx).Where("id = ?", singletonID).First(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &meta, nil
}

func (r *repository) Touch(ctx context.Context, tx *gorm.DB, at time.Time) error {
	var meta AppMetadata
	err := tx.WithContext(ctx).Where("id = ?", singletonID).First(&meta).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		meta = AppMetadata{ID: singletonID, LastRefreshedAt: &at}
		return tx.WithContext(ctx).Create(&meta).Error
	}
	if err != nil {
		return err
	}
	meta.LastRefreshedAt = &at
	return tx.WithContext(ctx).Save(&meta).Error
}
