package domain

import (
	"time"
)

// CREATE TABLE public.products (
//     prd              BIGINT NOT NULL,
//     brand            TEXT NOT NULL,
//     name             TEXT NOT NULL,
//     type             TEXT NOT NULL CHECK (type IN ('d','f','a')),
//     model_url        TEXT,
//     model_scale      NUMERIC NOT NULL DEFAULT 10,
//     model_position_x NUMERIC NOT NULL DEFAULT 0,
//     model_position_y NUMERIC NOT NULL DEFAULT 0,
//     model_position_z NUMERIC NOT NULL DEFAULT 0,
//     model_rotation_x NUMERIC NOT NULL DEFAULT 0,
//     model_rotation_y NUMERIC NOT NULL DEFAULT 0,
//     model_rotation_z NUMERIC NOT NULL DEFAULT 0,
//     created_at       TIMESTAMPTZ DEFAULT NOW(),
//     PRIMARY KEY (prd, brand)
// );

type Product struct {
	Prd            int64     `gorm:"column:prd;primaryKey;autoIncrement:false" json:"prd"`
	Brand          string    `gorm:"column:brand;primaryKey;type:text" json:"brand"`
	Name           string    `gorm:"column:name;type:text;not null" json:"name"`
	Type           string    `gorm:"column:type;type:text;not null" json:"type"`
	ModelURL       *string   `gorm:"column:model_url;type:text" json:"model_url"`
	ModelScale     float64   `gorm:"column:model_scale;default:10" json:"model_scale"`
	ModelPositionX float64   `gorm:"column:model_position_x;default:0" json:"model_position_x"`
	ModelPositionY float64   `gorm:"column:model_position_y;default:0" json:"model_position_y"`
	ModelPositionZ float64   `gorm:"column:model_position_z;default:0" json:"model_position_z"`
	ModelRotationX float64   `gorm:"column:model_rotation_x;default:0" json:"model_rotation_x"`
	ModelRotationY float64   `gorm:"column:model_rotation_y;default:0" json:"model_rotation_y"`
	ModelRotationZ float64   `gorm:"column:model_rotation_z;default:0" json:"model_rotation_z"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
}

func (Product) TableName() string {
	return "products"
}

// ModelTransform is the static placement of the product's 3D model.
// Rotations are in degrees.
type ModelTransform struct {
	ModelURL *string `json:"model_url"`
	Scale    float64 `json:"scale"`
	Position Vector3 `json:"position"`
	Rotation Vector3 `json:"rotation"`
}

type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

func (p Product) Transform() ModelTransform {
	return ModelTransform{
		ModelURL: p.ModelURL,
		Scale:    p.ModelScale,
		Position: Vector3{X: p.ModelPositionX, Y: p.ModelPositionY, Z: p.ModelPositionZ},
		Rotation: Vector3{X: p.ModelRotationX, Y: p.ModelRotationY, Z: p.ModelRotationZ},
	}
}
