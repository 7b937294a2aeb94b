package domain

import "time"

// CREATE TABLE public.units (
//     uid              BIGINT PRIMARY KEY,
//     prd              BIGINT NOT NULL,
//     brand            TEXT NOT NULL,
//     cc               BIGINT NOT NULL REFERENCES campaigns(cc),
//     manufactured_at  TIMESTAMPTZ,
//     created_at       TIMESTAMPTZ DEFAULT NOW(),
//     FOREIGN KEY (prd, brand) REFERENCES products(prd, brand)
// );

type Unit struct {
	UID            int64      `gorm:"column:uid;primaryKey;autoIncrement:false" json:"uid"`
	Prd            int64      `gorm:"column:prd;not null" json:"prd"`
	Brand          string     `gorm:"column:brand;type:text;not null" json:"brand"`
	Cc             int64      `gorm:"column:cc;not null" json:"cc"`
	ManufacturedAt *time.Time `gorm:"column:manufactured_at" json:"manufactured_at"`
	CreatedAt      time.Time  `gorm:"column:created_at" json:"created_at"`

	Product  Product  `gorm:"foreignKey:Prd,Brand;references:Prd,Brand" json:"product"`
	Campaign Campaign `gorm:"foreignKey:Cc;references:Cc" json:"campaign"`
}

func (Unit) TableName() string {
	return "units"
}

// UnitWithRelations is a unit whose Product and Campaign are populated,
// either loaded from the store or synthesised from tag parameters.
type UnitWithRelations = Unit
