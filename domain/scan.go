package domain

import (
	"time"

	"github.com/google/uuid"
)

// CREATE TABLE public.scans (
//     id             UUID PRIMARY KEY DEFAULT gen_random_uuid(),
//     uid            BIGINT NOT NULL UNIQUE,
//     scan_count     INTEGER NOT NULL DEFAULT 1,
//     first_scan_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//     last_scan_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
//     user_agent     TEXT
// );

type Scan struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	UID         int64     `gorm:"column:uid;uniqueIndex;not null" json:"uid"`
	ScanCount   int       `gorm:"column:scan_count;not null;default:1" json:"scan_count"`
	FirstScanAt time.Time `gorm:"column:first_scan_at;not null" json:"first_scan_at"`
	LastScanAt  time.Time `gorm:"column:last_scan_at;not null" json:"last_scan_at"`
	UserAgent   *string   `gorm:"column:user_agent;type:text" json:"user_agent"`
}

func (Scan) TableName() string {
	return "scans"
}
