package postgres

import (
	"context"
	"errors"
	"fmt"

	"nfcExperience/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UnitRepository struct {
	DB *gorm.DB
}

func NewUnitRepository(db *gorm.DB) *UnitRepository {
	return &UnitRepository{DB: db}
}

func (r *UnitRepository) FindUnitWithRelations(ctx context.Context, uid int64) (domain.Unit, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Unit{}, false, fmt.Errorf("context error: %w", err)
	}

	var unit domain.Unit
	err := r.DB.WithContext(ctx).
		Preload("Product").
		Preload("Campaign").
		Where("uid = ?", uid).
		First(&unit).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Unit{}, false, nil
	}
	if err != nil {
		return domain.Unit{}, false, fmt.Errorf("failed to find unit: %w", err)
	}

	return unit, true, nil
}

// CreateUnit registers a unit without touching its product or campaign rows.
func (r *UnitRepository) CreateUnit(ctx context.Context, unit *domain.Unit) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	if err := r.DB.WithContext(ctx).Omit(clause.Associations).Create(unit).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrUnitExists
		}
		return fmt.Errorf("failed to create unit: %w", err)
	}

	return nil
}
