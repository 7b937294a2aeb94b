package experience

import (
	"time"

	"nfcExperience/domain"
)

type Experience string

const (
	Unboxing   Experience = "unboxing"
	SupportHub Experience = "support_hub"
)

func Select(firstScan bool) Experience {
	if firstScan {
		return Unboxing
	}
	return SupportHub
}

// Resolution is what a page needs to render once a tag has been resolved.
type Resolution struct {
	FirstScan  bool         `json:"first_scan"`
	Experience Experience   `json:"experience"`
	Unit       domain.Unit  `json:"unit"`
	Lang       string       `json:"lang"`
	Theme      domain.Theme `json:"theme"`
}

// ScanEvent is emitted after a scan record has been written.
type ScanEvent struct {
	UID        int64      `json:"uid"`
	Prd        int64      `json:"prd"`
	Brand      string     `json:"brand"`
	Cc         int64      `json:"cc"`
	Experience Experience `json:"experience"`
	ScanCount  int        `json:"scan_count"`
	ScannedAt  time.Time  `json:"scanned_at"`
}
