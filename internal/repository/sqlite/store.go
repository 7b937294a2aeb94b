// Package sqlite is the single-file store used for local runs and tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"nfcExperience/business/admin"
	"nfcExperience/business/experience"
	"nfcExperience/domain"
	"nfcExperience/internal/repository/sqlite/migrations"
	"nfcExperience/pkg/database"

	"github.com/google/uuid"
)

type Store struct {
	db *sql.DB
}

var (
	_ experience.Gateway = (*Store)(nil)
	_ admin.Store        = (*Store)(nil)
)

// Open opens the database at path and applies pending migrations.
func Open(path string) (*Store, error) {
	db, err := database.OpenSQLite(path)
	if err != nil {
		return nil, err
	}

	if err := applyMigrations(db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) GetSetting(ctx context.Context, key string) (string, bool, error) {
	setting, found, err := s.FindSetting(ctx, key)
	if err != nil || !found {
		return "", found, err
	}
	return setting.Value, true, nil
}

func (s *Store) FindSetting(ctx context.Context, key string) (domain.Setting, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Setting{}, false, err
	}

	var (
		setting     domain.Setting
		description sql.NullString
		updatedAt   int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT key, value, description, updated_at FROM settings WHERE key = ?`, key,
	).Scan(&setting.Key, &setting.Value, &description, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Setting{}, false, nil
	}
	if err != nil {
		return domain.Setting{}, false, fmt.Errorf("find setting: %w", err)
	}

	setting.Description = stringPtr(description)
	setting.UpdatedAt = fromMillis(updatedAt)
	return setting, true, nil
}

func (s *Store) UpsertSetting(ctx context.Context, setting domain.Setting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if setting.UpdatedAt.IsZero() {
		setting.UpdatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO settings (key, value, description, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT (key) DO UPDATE SET
	value = excluded.value,
	description = excluded.description,
	updated_at = excluded.updated_at
`,
		setting.Key,
		setting.Value,
		nullString(setting.Description),
		toMillis(setting.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}
	return nil
}

const productColumns = `prd, brand, name, type, model_url, model_scale,
	model_position_x, model_position_y, model_position_z,
	model_rotation_x, model_rotation_y, model_rotation_z, created_at`

func (s *Store) FindProduct(ctx context.Context, prd int64, brand string) (domain.Product, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Product{}, false, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE prd = ? AND brand = ?`, prd, brand)
	product, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Product{}, false, nil
	}
	if err != nil {
		return domain.Product{}, false, fmt.Errorf("find product: %w", err)
	}
	return product, true, nil
}

func scanProduct(row *sql.Row) (domain.Product, error) {
	var (
		p         domain.Product
		modelURL  sql.NullString
		createdAt int64
	)
	err := row.Scan(
		&p.Prd, &p.Brand, &p.Name, &p.Type, &modelURL, &p.ModelScale,
		&p.ModelPositionX, &p.ModelPositionY, &p.ModelPositionZ,
		&p.ModelRotationX, &p.ModelRotationY, &p.ModelRotationZ,
		&createdAt,
	)
	if err != nil {
		return domain.Product{}, err
	}
	p.ModelURL = stringPtr(modelURL)
	p.CreatedAt = fromMillis(createdAt)
	return p, nil
}

func (s *Store) UpsertProduct(ctx context.Context, p domain.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO products (`+productColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (prd, brand) DO UPDATE SET
	name = excluded.name,
	type = excluded.type,
	model_url = excluded.model_url,
	model_scale = excluded.model_scale,
	model_position_x = excluded.model_position_x,
	model_position_y = excluded.model_position_y,
	model_position_z = excluded.model_position_z,
	model_rotation_x = excluded.model_rotation_x,
	model_rotation_y = excluded.model_rotation_y,
	model_rotation_z = excluded.model_rotation_z
`,
		p.Prd, p.Brand, p.Name, p.Type, nullString(p.ModelURL), p.ModelScale,
		p.ModelPositionX, p.ModelPositionY, p.ModelPositionZ,
		p.ModelRotationX, p.ModelRotationY, p.ModelRotationZ,
		toMillis(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}

func (s *Store) FindCampaign(ctx context.Context, cc int64) (domain.Campaign, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Campaign{}, false, err
	}

	var (
		c           domain.Campaign
		description sql.NullString
		createdAt   int64
	)
	err := s.db.QueryRowContext(ctx, `
SELECT cc, name, theme_primary, theme_secondary, theme_accent, description, created_at
FROM campaigns WHERE cc = ?`, cc,
	).Scan(&c.Cc, &c.Name, &c.ThemePrimary, &c.ThemeSecondary, &c.ThemeAccent, &description, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Campaign{}, false, nil
	}
	if err != nil {
		return domain.Campaign{}, false, fmt.Errorf("find campaign: %w", err)
	}

	c.Description = stringPtr(description)
	c.CreatedAt = fromMillis(createdAt)
	return c, true, nil
}

func (s *Store) UpsertCampaign(ctx context.Context, c domain.Campaign) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO campaigns (cc, name, theme_primary, theme_secondary, theme_accent, description, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (cc) DO UPDATE SET
	name = excluded.name,
	theme_primary = excluded.theme_primary,
	theme_secondary = excluded.theme_secondary,
	theme_accent = excluded.theme_accent,
	description = excluded.description
`,
		c.Cc, c.Name, c.ThemePrimary, c.ThemeSecondary, c.ThemeAccent,
		nullString(c.Description), toMillis(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert campaign: %w", err)
	}
	return nil
}

func (s *Store) FindUnitWithRelations(ctx context.Context, uid int64) (domain.Unit, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Unit{}, false, err
	}

	var (
		u              domain.Unit
		manufacturedAt sql.NullInt64
		createdAt      int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT uid, prd, brand, cc, manufactured_at, created_at FROM units WHERE uid = ?`, uid,
	).Scan(&u.UID, &u.Prd, &u.Brand, &u.Cc, &manufacturedAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Unit{}, false, nil
	}
	if err != nil {
		return domain.Unit{}, false, fmt.Errorf("find unit: %w", err)
	}
	if manufacturedAt.Valid {
		t := fromMillis(manufacturedAt.Int64)
		u.ManufacturedAt = &t
	}
	u.CreatedAt = fromMillis(createdAt)

	if u.Product, _, err = s.FindProduct(ctx, u.Prd, u.Brand); err != nil {
		return domain.Unit{}, false, err
	}
	if u.Campaign, _, err = s.FindCampaign(ctx, u.Cc); err != nil {
		return domain.Unit{}, false, err
	}

	return u, true, nil
}

func (s *Store) CreateUnit(ctx context.Context, unit *domain.Unit) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if unit.CreatedAt.IsZero() {
		unit.CreatedAt = time.Now().UTC()
	}

	var manufacturedAt sql.NullInt64
	if unit.ManufacturedAt != nil {
		manufacturedAt = sql.NullInt64{Int64: toMillis(*unit.ManufacturedAt), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO units (uid, prd, brand, cc, manufactured_at, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`,
		unit.UID, unit.Prd, unit.Brand, unit.Cc, manufacturedAt, toMillis(unit.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrUnitExists
		}
		return fmt.Errorf("create unit: %w", err)
	}
	return nil
}

func (s *Store) FindScan(ctx context.Context, uid int64) (domain.Scan, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.Scan{}, false, err
	}

	row := s.db.QueryRowContext(ctx, `
SELECT id, uid, scan_count, first_scan_at, last_scan_at, user_agent
FROM scans WHERE uid = ?`, uid)

	var (
		scan        domain.Scan
		id          string
		first, last int64
		userAgent   sql.NullString
	)
	err := row.Scan(&id, &scan.UID, &scan.ScanCount, &first, &last, &userAgent)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Scan{}, false, nil
	}
	if err != nil {
		return domain.Scan{}, false, fmt.Errorf("find scan: %w", err)
	}

	if scan.ID, err = uuid.Parse(id); err != nil {
		return domain.Scan{}, false, fmt.Errorf("parse scan id: %w", err)
	}
	scan.FirstScanAt = fromMillis(first)
	scan.LastScanAt = fromMillis(last)
	scan.UserAgent = stringPtr(userAgent)
	return scan, true, nil
}

func (s *Store) UpsertScan(ctx context.Context, scan domain.Scan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if scan.ID == uuid.Nil {
		scan.ID = uuid.New()
	}

	_, err := s.db.ExecContext(ctx, `
INSERT INTO scans (id, uid, scan_count, first_scan_at, last_scan_at, user_agent)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (uid) DO UPDATE SET
	scan_count = scans.scan_count + 1,
	last_scan_at = excluded.last_scan_at
`,
		scan.ID.String(),
		scan.UID,
		scan.ScanCount,
		toMillis(scan.FirstScanAt),
		toMillis(scan.LastScanAt),
		nullString(scan.UserAgent),
	)
	if err != nil {
		return fmt.Errorf("upsert scan: %w", err)
	}
	return nil
}

func (s *Store) ListScans(ctx context.Context) ([]domain.Scan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT id, uid, scan_count, first_scan_at, last_scan_at, user_agent
FROM scans ORDER BY last_scan_at DESC, uid`)
	if err != nil {
		return nil, fmt.Errorf("list scans: %w", err)
	}
	defer rows.Close()

	var scans []domain.Scan
	for rows.Next() {
		var (
			scan        domain.Scan
			id          string
			first, last int64
			userAgent   sql.NullString
		)
		if err := rows.Scan(&id, &scan.UID, &scan.ScanCount, &first, &last, &userAgent); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		scan.ID, _ = uuid.Parse(id)
		scan.FirstScanAt = fromMillis(first)
		scan.LastScanAt = fromMillis(last)
		scan.UserAgent = stringPtr(userAgent)
		scans = append(scans, scan)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scans: %w", err)
	}
	return scans, nil
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "primary key")
}
