package postgres

import (
	"context"
	"errors"
	"fmt"

	"nfcExperience/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ScanRepository struct {
	DB *gorm.DB
}

func NewScanRepository(db *gorm.DB) *ScanRepository {
	return &ScanRepository{DB: db}
}

func (r *ScanRepository) FindScan(ctx context.Context, uid int64) (domain.Scan, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Scan{}, false, fmt.Errorf("context error: %w", err)
	}

	var scan domain.Scan
	err := r.DB.WithContext(ctx).Where("uid = ?", uid).First(&scan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.Scan{}, false, nil
	}
	if err != nil {
		return domain.Scan{}, false, fmt.Errorf("failed to find scan: %w", err)
	}

	return scan, true, nil
}

// UpsertScan inserts the first scan of a unit. On conflict the row is
// incremented in place so concurrent scans never lose a count;
// first_scan_at and user_agent keep their original values.
func (r *ScanRepository) UpsertScan(ctx context.Context, scan domain.Scan) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("context error: %w", err)
	}

	err := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "uid"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"scan_count":   gorm.Expr("scans.scan_count + 1"),
				"last_scan_at": gorm.Expr("excluded.last_scan_at"),
			}),
		}).
		Create(&scan).Error
	if err != nil {
		return fmt.Errorf("failed to upsert scan: %w", err)
	}

	return nil
}

// ListScans returns every scan row, most recent first.
func (r *ScanRepository) ListScans(ctx context.Context) ([]domain.Scan, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	var scans []domain.Scan
	if err := r.DB.WithContext(ctx).Order("last_scan_at DESC").Find(&scans).Error; err != nil {
		return nil, fmt.Errorf("failed to list scans: %w", err)
	}

	return scans, nil
}
