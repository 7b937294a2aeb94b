package postgres

import (
	"context"
	"errors"
	"fmt"

	"nfcExperience/domain"

	"gorm.io/gorm"
)

// CatalogRepository reads products and campaigns. Their content is owned
// upstream; this service only looks them up.
type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

func (r *CatalogRepository) FindProduct(ctx context.Context, prd int64, brand string) (domain.Product, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, false, fmt.Errorf("context error: %w", err)
	}

	var product domain.Product
	err := r.DB.WithContext(ctx).
		Where("prd = ? AND brand = ?", prd, brand).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Product{}, false, nil
	}
	if err != nil {
		return domain.Product{}, false, fmt.Errorf("failed to find product: %w", err)
	}

	return product, true, nil
}

func (r *CatalogRepository) FindCampaign(ctx context.Context, cc int64) (domain.Campaign, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Campaign{}, false, fmt.Errorf("context error: %w", err)
	}

	var campaign domain.Campaign
	err := r.DB.WithContext(ctx).Where("cc = ?", cc).First(&campaign).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Campaign{}, false, nil
	}
	if err != nil {
		return domain.Campaign{}, false, fmt.Errorf("failed to find campaign: %w", err)
	}

	return campaign, true, nil
}
