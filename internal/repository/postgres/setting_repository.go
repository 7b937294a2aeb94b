package postgres

import (
	"context"
	"errors"
	"fmt"

	"nfcExperience/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository struct {
	DB *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{DB: db}
}

func (r *SettingRepository) GetSetting(ctx context.Context, key string) (string, bool, error) {
	setting, found, err := r.FindSetting(ctx, key)
	if err != nil || !found {
		return "", found, err
	}
	return setting.Value, true, nil
}

func (r *SettingRepository) FindSetting(ctx context.Context, key string) (domain.Setting, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Setting{}, false, fmt.Errorf("context error: %w", err)
	}

	var setting domain.Setting
	err := r.DB.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Setting{}, false, nil
	}
	if err != nil {
		return domain.Setting{}, false, fmt.Errorf("failed to find setting: %w", err)
	}

	return setting, true, nil
}

func (r *SettingRepository) UpsertSetting(ctx context.Context, setting domain.Setting) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "description", "updated_at"}),
		}).
		Create(&setting).Error
	if err != nil {
		return fmt.Errorf("failed to upsert setting: %w", err)
	}

	return nil
}
