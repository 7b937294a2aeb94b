package postgres

import (
	"nfcExperience/business/admin"
	"nfcExperience/business/experience"

	"gorm.io/gorm"
)

// ExperienceGateway bundles the repositories behind one store handle.
type ExperienceGateway struct {
	*SettingRepository
	*CatalogRepository
	*UnitRepository
	*ScanRepository
}

var (
	_ experience.Gateway = (*ExperienceGateway)(nil)
	_ admin.Store        = (*ExperienceGateway)(nil)
)

func NewExperienceGateway(db *gorm.DB) *ExperienceGateway {
	return &ExperienceGateway{
		SettingRepository: NewSettingRepository(db),
		CatalogRepository: NewCatalogRepository(db),
		UnitRepository:    NewUnitRepository(db),
		ScanRepository:    NewScanRepository(db),
	}
}
