package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is the catalog row consulted when a BOGO get-side line has to be
// materialized for a product not already in the cart.
type Product struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	VariantID *uuid.UUID `gorm:"column:variant_id;type:uuid"`
	Name      string     `gorm:"column:name;not null"`
	Price     float64    `gorm:"column:price;not null"`
	IsActive  bool       `gorm:"column:is_active;not null;default:true"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Product) TableName() string { return "products" }
