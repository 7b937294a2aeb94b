package experience

import (
	"context"
	"strconv"
	"strings"
	"time"

	"nfcExperience/business/nfcparams"
	"nfcExperience/domain"
	"nfcExperience/pkg/logger"
	"nfcExperience/pkg/metrics"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const DefaultCooldownSeconds = 300

// Gateway is the narrow view of the backing store used during resolution.
// Lookups report found=false with a nil error for missing rows.
type Gateway interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	FindUnitWithRelations(ctx context.Context, uid int64) (domain.Unit, bool, error)
	FindProduct(ctx context.Context, prd int64, brand string) (domain.Product, bool, error)
	FindCampaign(ctx context.Context, cc int64) (domain.Campaign, bool, error)
	FindScan(ctx context.Context, uid int64) (domain.Scan, bool, error)
	// UpsertScan inserts scan, or on a uid conflict increments scan_count
	// and sets last_scan_at, leaving first_scan_at and user_agent alone.
	UpsertScan(ctx context.Context, scan domain.Scan) error
}

type ScanEventPublisher interface {
	PublishScan(ctx context.Context, event ScanEvent) error
}

type Service struct {
	gateway   Gateway
	publisher ScanEventPublisher
	sessions  SessionStore
	locks     *keyedMutex
	now       func() time.Time
	tracer    trace.Tracer
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithPublisher(p ScanEventPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithSessionStore(store SessionStore) Option {
	return func(s *Service) { s.sessions = store }
}

func NewService(gateway Gateway, opts ...Option) *Service {
	s := &Service{
		gateway: gateway,
		locks:   newKeyedMutex(),
		now:     time.Now,
		tracer:  otel.Tracer("nfcExperience/business/experience"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.sessions == nil {
		s.sessions = NewMemorySessionStore(30 * time.Minute)
	}
	return s
}

// Resolve decides which experience a tag scan gets and records the scan.
func (s *Service) Resolve(ctx context.Context, params nfcparams.Params, userAgent string) (Resolution, error) {
	start := time.Now()
	defer func() { metrics.ScanResolveLatency.Observe(time.Since(start).Seconds()) }()

	ctx, span := s.tracer.Start(ctx, "experience.Resolve")
	defer span.End()

	res, err := s.resolve(ctx, params, userAgent)
	if err != nil {
		code := CodeOf(err)
		metrics.ScanResolveErrors.WithLabelValues(string(code)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, string(code))
		return Resolution{}, err
	}

	metrics.ScanResolutions.WithLabelValues(string(res.Experience)).Inc()
	span.SetAttributes(
		attribute.Int64("nfc.uid", res.Unit.UID),
		attribute.String("nfc.experience", string(res.Experience)),
	)
	return res, nil
}

func (s *Service) resolve(ctx context.Context, params nfcparams.Params, userAgent string) (Resolution, error) {
	if !params.Valid() {
		return Resolution{}, newError(CodeInvalidParams, params.ErrorMessage())
	}
	if err := ctx.Err(); err != nil {
		return Resolution{}, wrapError(CodeNetwork, "context error", err)
	}

	uid, prd, cc := *params.UID, *params.Prd, *params.CC

	preReg, _, err := s.gateway.GetSetting(ctx, domain.SettingPreRegistrationRequired)
	if err != nil {
		logger.Error("failed to read pre-registration setting", "uid", uid, "error", err)
		return Resolution{}, wrapError(CodeNetwork, "failed to read settings", err)
	}

	var unit domain.Unit
	if preReg == "true" {
		found := false
		unit, found, err = s.gateway.FindUnitWithRelations(ctx, uid)
		if err != nil {
			logger.Error("failed to find unit", "uid", uid, "error", err)
			return Resolution{}, wrapError(CodeNetwork, "failed to find unit", err)
		}
		if !found {
			return Resolution{}, newError(CodeInvalidUnit, "unit not registered")
		}
	} else {
		unit, err = s.synthesizeUnit(ctx, uid, prd, params.Brand, cc)
		if err != nil {
			return Resolution{}, err
		}
	}

	cooldown := DefaultCooldownSeconds
	raw, found, err := s.gateway.GetSetting(ctx, domain.SettingScanCooldownSeconds)
	if err != nil {
		logger.Error("failed to read cooldown setting", "uid", uid, "error", err)
		return Resolution{}, wrapError(CodeNetwork, "failed to read settings", err)
	}
	if found {
		if n, convErr := strconv.Atoi(strings.TrimSpace(raw)); convErr == nil {
			cooldown = n
		}
	}

	previous, hasPrevious, err := s.gateway.FindScan(ctx, uid)
	if err != nil {
		logger.Error("failed to find scan", "uid", uid, "error", err)
		return Resolution{}, wrapError(CodeNetwork, "failed to find scan", err)
	}

	now := s.now().UTC()
	firstScan := isFirstScan(previous, hasPrevious, now, cooldown)
	experience := Select(firstScan)

	scanCount := 1
	if hasPrevious {
		scanCount = previous.ScanCount + 1
	}
	s.recordScan(ctx, unit, scanCount, now, userAgent, experience)

	return Resolution{
		FirstScan:  firstScan,
		Experience: experience,
		Unit:       unit,
		Lang:       params.Lang,
		Theme:      domain.ThemeOf(&unit.Campaign),
	}, nil
}

// synthesizeUnit builds the transient unit used when tags are not
// pre-registered. It is never persisted.
func (s *Service) synthesizeUnit(ctx context.Context, uid, prd int64, brand string, cc int64) (domain.Unit, error) {
	product, productFound, err := s.gateway.FindProduct(ctx, prd, brand)
	if err != nil {
		logger.Error("failed to find product", "prd", prd, "brand", brand, "error", err)
		return domain.Unit{}, wrapError(CodeNetwork, "failed to find product", err)
	}

	campaign, campaignFound, err := s.gateway.FindCampaign(ctx, cc)
	if err != nil {
		logger.Error("failed to find campaign", "cc", cc, "error", err)
		return domain.Unit{}, wrapError(CodeNetwork, "failed to find campaign", err)
	}

	if !productFound || !campaignFound {
		return domain.Unit{}, newError(CodeInvalidProductOrCampaign, "product or campaign not found")
	}

	return domain.Unit{
		UID:            uid,
		Prd:            prd,
		Brand:          brand,
		Cc:             cc,
		ManufacturedAt: nil,
		CreatedAt:      s.now().UTC(),
		Product:        product,
		Campaign:       campaign,
	}, nil
}

// isFirstScan keeps showing the unboxing experience while the unit is
// still inside its cooldown window.
func isFirstScan(previous domain.Scan, hasPrevious bool, now time.Time, cooldownSeconds int) bool {
	if !hasPrevious {
		return true
	}
	if previous.FirstScanAt.IsZero() {
		return false
	}
	secondsPassed := now.Sub(previous.FirstScanAt).Seconds()
	return secondsPassed < float64(cooldownSeconds)
}

// recordScan is best-effort: failures are logged and counted, never returned.
func (s *Service) recordScan(ctx context.Context, unit domain.Unit, scanCount int, now time.Time, userAgent string, experience Experience) {
	scan := domain.Scan{
		ID:          uuid.New(),
		UID:         unit.UID,
		ScanCount:   scanCount,
		FirstScanAt: now,
		LastScanAt:  now,
	}
	if userAgent != "" {
		scan.UserAgent = &userAgent
	}

	if err := s.gateway.UpsertScan(ctx, scan); err != nil {
		metrics.ScanPersistFailures.Inc()
		logger.Error("failed to record scan", "uid", unit.UID, "error", err)
		return
	}

	if s.publisher == nil {
		return
	}

	event := ScanEvent{
		UID:        unit.UID,
		Prd:        unit.Prd,
		Brand:      unit.Brand,
		Cc:         unit.Cc,
		Experience: experience,
		ScanCount:  scanCount,
		ScannedAt:  now,
	}
	if err := s.publisher.PublishScan(ctx, event); err != nil {
		metrics.ScanEventPublishFailures.Inc()
		logger.Warn("failed to publish scan event", "uid", unit.UID, "error", err)
	}
}
