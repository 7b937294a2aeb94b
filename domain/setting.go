package domain

import "time"

const (
	SettingPreRegistrationRequired = "pre_registration_required"
	SettingScanCooldownSeconds     = "scan_cooldown_seconds"
)

// CREATE TABLE public.settings (
//     key          TEXT PRIMARY KEY,
//     value        TEXT NOT NULL,
//     description  TEXT,
//     updated_at   TIMESTAMPTZ DEFAULT NOW()
// );

type Setting struct {
	Key         string    `gorm:"column:key;primaryKey;type:text" json:"key"`
	Value       string    `gorm:"column:value;type:text;not null" json:"value"`
	Description *string   `gorm:"column:description;type:text" json:"description"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Setting) TableName() string {
	return "settings"
}
