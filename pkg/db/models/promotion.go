package models

import (
	"time"

	"github.com/google/uuid"
)

// ComboPromotion is a fixed-price bundle definition.
type ComboPromotion struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Name       string               `gorm:"column:name;not null"`
	ComboPrice float64              `gorm:"column:combo_price;not null"`
	StartsAt   time.Time            `gorm:"column:starts_at;not null"`
	EndsAt     time.Time            `gorm:"column:ends_at;not null"`
	Items      []ComboPromotionItem `gorm:"foreignKey:ComboID"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
}

func (ComboPromotion) TableName() string { return "combo_promotions" }

// ComboPromotionItem is one constituent of a combo; position fixes the
// declaration order used by the pattern matcher.
type ComboPromotionItem struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	ComboID   uuid.UUID  `gorm:"column:combo_id;type:uuid;not null;index"`
	ProductID uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	VariantID *uuid.UUID `gorm:"column:variant_id;type:uuid"`
	Quantity  int        `gorm:"column:quantity;not null"`
	Position  int        `gorm:"column:position;not null"`
}

func (ComboPromotionItem) TableName() string { return "combo_promotion_items" }

// BogoOffer is a single-product buy-X-get-Y offer with optional usage caps.
// CurrentUses is only advanced through a conditional update so two terminals
// cannot over-apply a capped offer.
type BogoOffer struct {
	ID              uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	BuyProductID    uuid.UUID  `gorm:"column:buy_product_id;type:uuid;not null"`
	BuyVariantID    *uuid.UUID `gorm:"column:buy_variant_id;type:uuid"`
	BuyQuantity     int        `gorm:"column:buy_quantity;not null"`
	GetProductID    uuid.UUID  `gorm:"column:get_product_id;type:uuid;not null"`
	GetVariantID    *uuid.UUID `gorm:"column:get_variant_id;type:uuid"`
	GetQuantity     int        `gorm:"column:get_quantity;not null"`
	DiscountPercent float64    `gorm:"column:discount_percent;not null"`
	MaxPerSale      *int       `gorm:"column:max_per_sale"`
	MaxTotalUses    *int       `gorm:"column:max_total_uses"`
	CurrentUses     int        `gorm:"column:current_uses;not null;default:0"`
	StartsAt        time.Time  `gorm:"column:starts_at;not null"`
	EndsAt          time.Time  `gorm:"column:ends_at;not null"`
}

func (BogoOffer) TableName() string { return "bogo_offers" }

// MultiBogoOffer halves the unit price of every eligible line while the cart
// holds more than one eligible unit.
type MultiBogoOffer struct {
	ID       uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Name     string               `gorm:"column:name;not null"`
	StartsAt time.Time            `gorm:"column:starts_at;not null"`
	EndsAt   time.Time            `gorm:"column:ends_at;not null"`
	Items    []MultiBogoOfferItem `gorm:"foreignKey:OfferID"`
}

func (MultiBogoOffer) TableName() string { return "multi_bogo_offers" }

type MultiBogoOfferItem struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	OfferID   uuid.UUID  `gorm:"column:offer_id;type:uuid;not null;index"`
	ProductID uuid.UUID  `gorm:"column:product_id;type:uuid;not null"`
	VariantID *uuid.UUID `gorm:"column:variant_id;type:uuid"`
}

func (MultiBogoOfferItem) TableName() string { return "multi_bogo_offer_items" }
