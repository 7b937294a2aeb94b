package domain

import "time"

// CREATE TABLE public.campaigns (
//     cc               BIGINT PRIMARY KEY,
//     name             TEXT NOT NULL,
//     theme_primary    TEXT NOT NULL,
//     theme_secondary  TEXT NOT NULL,
//     theme_accent     TEXT NOT NULL,
//     description      TEXT,
//     created_at       TIMESTAMPTZ DEFAULT NOW()
// );

type Campaign struct {
	Cc             int64     `gorm:"column:cc;primaryKey;autoIncrement:false" json:"cc"`
	Name           string    `gorm:"column:name;type:text;not null" json:"name"`
	ThemePrimary   string    `gorm:"column:theme_primary;type:text;not null" json:"theme_primary"`
	ThemeSecondary string    `gorm:"column:theme_secondary;type:text;not null" json:"theme_secondary"`
	ThemeAccent    string    `gorm:"column:theme_accent;type:text;not null" json:"theme_accent"`
	Description    *string   `gorm:"column:description;type:text" json:"description"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Campaign) TableName() string {
	return "campaigns"
}

type Theme struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
	Accent    string `json:"accent"`
}

var DefaultTheme = Theme{
	Primary:   "#0066CC",
	Secondary: "#00AAFF",
	Accent:    "#66D9FF",
}

// ThemeOf returns the campaign colours, or DefaultTheme when there is no
// campaign to read them from.
func ThemeOf(c *Campaign) Theme {
	if c == nil || c.Cc == 0 {
		return DefaultTheme
	}
	return Theme{
		Primary:   c.ThemePrimary,
		Secondary: c.ThemeSecondary,
		Accent:    c.ThemeAccent,
	}
}
