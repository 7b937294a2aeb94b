package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"nfcExperience/business/nfcparams"
	"nfcExperience/domain"
	"nfcExperience/pkg/logger"

	"github.com/go-playground/validator/v10"
)

// Store is what the back office needs from the backing database.
type Store interface {
	FindSetting(ctx context.Context, key string) (domain.Setting, bool, error)
	UpsertSetting(ctx context.Context, setting domain.Setting) error
	FindProduct(ctx context.Context, prd int64, brand string) (domain.Product, bool, error)
	FindCampaign(ctx context.Context, cc int64) (domain.Campaign, bool, error)
	FindUnitWithRelations(ctx context.Context, uid int64) (domain.Unit, bool, error)
	CreateUnit(ctx context.Context, unit *domain.Unit) error
	FindScan(ctx context.Context, uid int64) (domain.Scan, bool, error)
	ListScans(ctx context.Context) ([]domain.Scan, error)
}

var (
	ErrUnknownSetting            = errors.New("unknown setting")
	ErrProductOrCampaignNotFound = errors.New("product or campaign not found")
)

var settingDescriptions = map[string]string{
	domain.SettingPreRegistrationRequired: "Require units to be registered before their tag resolves",
	domain.SettingScanCooldownSeconds:     "Seconds after a first scan during which the unboxing experience is shown again",
}

type RegisterUnitRequest struct {
	UID            int64      `json:"uid" validate:"required,gt=0"`
	Prd            int64      `json:"prd" validate:"required,gt=0"`
	Brand          string     `json:"brand" validate:"required,oneof=IQOS VEEV ZYN"`
	Cc             int64      `json:"cc" validate:"required,gt=0"`
	ManufacturedAt *time.Time `json:"manufactured_at"`
}

type NFCURLRequest struct {
	Lang  string `query:"lang" validate:"omitempty,oneof=en fr"`
	Brand string `query:"brand" validate:"required,oneof=IQOS VEEV ZYN"`
	Type  string `query:"type" validate:"required,oneof=d f a"`
	Cc    int64  `query:"cc" validate:"required,gt=0"`
	Prd   int64  `query:"prd" validate:"required,gt=0"`
	UID   int64  `query:"uid" validate:"required,gt=0"`
}

type adminService struct {
	store    Store
	validate *validator.Validate
	now      func() time.Time
}

func NewAdminService(store Store, validate *validator.Validate) *adminService {
	return &adminService{
		store:    store,
		validate: validate,
		now:      time.Now,
	}
}

func (s *adminService) GetSetting(ctx context.Context, key string) (domain.Setting, error) {
	if err := ctx.Err(); err != nil {
		return domain.Setting{}, fmt.Errorf("context error: %w", err)
	}

	setting, found, err := s.store.FindSetting(ctx, key)
	if err != nil {
		logger.Error("failed to find setting", "key", key, "error", err)
		return domain.Setting{}, err
	}
	if !found {
		return domain.Setting{}, domain.ErrNotFound
	}

	return setting, nil
}

// UpdateSetting stores a value for one of the known policy keys.
func (s *adminService) UpdateSetting(ctx context.Context, key, value string) (domain.Setting, error) {
	if err := ctx.Err(); err != nil {
		return domain.Setting{}, fmt.Errorf("context error: %w", err)
	}

	description, known := settingDescriptions[key]
	if !known {
		return domain.Setting{}, ErrUnknownSetting
	}

	value = strings.TrimSpace(value)
	if err := checkSettingValue(key, value); err != nil {
		return domain.Setting{}, err
	}

	setting := domain.Setting{
		Key:         key,
		Value:       value,
		Description: &description,
		UpdatedAt:   s.now().UTC(),
	}
	if err := s.store.UpsertSetting(ctx, setting); err != nil {
		logger.Error("failed to update setting", "key", key, "error", err)
		return domain.Setting{}, fmt.Errorf("failed to update setting: %w", err)
	}

	logger.Info("setting updated", "key", key, "value", value)
	return setting, nil
}

func checkSettingValue(key, value string) error {
	switch key {
	case domain.SettingPreRegistrationRequired:
		if value != "true" && value != "false" {
			return fmt.Errorf("%w: %s must be true or false", domain.ErrInvalidSetting, key)
		}
	case domain.SettingScanCooldownSeconds:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidSetting, key)
		}
	}
	return nil
}

// RegisterUnit pre-registers a tagged unit against an existing product
// and campaign.
func (s *adminService) RegisterUnit(ctx context.Context, req RegisterUnitRequest) (domain.Unit, error) {
	if err := ctx.Err(); err != nil {
		return domain.Unit{}, fmt.Errorf("context error: %w", err)
	}

	if err := s.validate.Struct(req); err != nil {
		return domain.Unit{}, err
	}

	product, productFound, err := s.store.FindProduct(ctx, req.Prd, req.Brand)
	if err != nil {
		return domain.Unit{}, err
	}
	campaign, campaignFound, err := s.store.FindCampaign(ctx, req.Cc)
	if err != nil {
		return domain.Unit{}, err
	}
	if !productFound || !campaignFound {
		return domain.Unit{}, ErrProductOrCampaignNotFound
	}

	unit := domain.Unit{
		UID:            req.UID,
		Prd:            req.Prd,
		Brand:          req.Brand,
		Cc:             req.Cc,
		ManufacturedAt: req.ManufacturedAt,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.store.CreateUnit(ctx, &unit); err != nil {
		logger.Error("failed to register unit", "uid", req.UID, "error", err)
		return domain.Unit{}, err
	}

	unit.Product = product
	unit.Campaign = campaign

	logger.Info("unit registered", "uid", unit.UID, "prd", unit.Prd, "cc", unit.Cc)
	return unit, nil
}

func (s *adminService) GetUnit(ctx context.Context, uid int64) (domain.Unit, error) {
	if err := ctx.Err(); err != nil {
		return domain.Unit{}, fmt.Errorf("context error: %w", err)
	}

	unit, found, err := s.store.FindUnitWithRelations(ctx, uid)
	if err != nil {
		return domain.Unit{}, err
	}
	if !found {
		return domain.Unit{}, domain.ErrNotFound
	}

	return unit, nil
}

func (s *adminService) GetScan(ctx context.Context, uid int64) (domain.Scan, error) {
	if err := ctx.Err(); err != nil {
		return domain.Scan{}, fmt.Errorf("context error: %w", err)
	}

	scan, found, err := s.store.FindScan(ctx, uid)
	if err != nil {
		return domain.Scan{}, err
	}
	if !found {
		return domain.Scan{}, domain.ErrNotFound
	}

	return scan, nil
}

func (s *adminService) NFCURL(req NFCURLRequest) (string, error) {
	if err := s.validate.Struct(req); err != nil {
		return "", err
	}

	lang := req.Lang
	if lang == "" {
		lang = nfcparams.DefaultLang
	}

	return nfcparams.BuildURL(lang, req.Brand, req.Type, req.Cc, req.Prd, req.UID), nil
}
