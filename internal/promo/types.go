package promo

import (
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the closed set of promotion variants.
type Kind string

const (
	KindCombo      Kind = "combo"
	KindSingleBogo Kind = "single_bogo"
	KindMultiBogo  Kind = "multi_bogo"
)

// Promotion is the sealed union of the three promotion variants. Only types in
// this package implement it, so switches over the concrete types are
// exhaustive.
type Promotion interface {
	PromotionKind() Kind
}

// ProductRef identifies a sellable: a base product, optionally narrowed to a
// variant.
type ProductRef struct {
	ProductID uuid.UUID  `json:"product_id"`
	VariantID *uuid.UUID `json:"variant_id,omitempty"`
}

// LineID returns the stable cart line identity this ref resolves to.
func (r ProductRef) LineID() string {
	if r.VariantID != nil {
		return r.VariantID.String()
	}
	return r.ProductID.String()
}

// ComboItem is one constituent of a combo in declaration order.
type ComboItem struct {
	Product  ProductRef `json:"product"`
	Quantity int        `json:"quantity"`
}

// Combo is a fixed-price bundle. BundleSize is a property of the definition,
// not a global constant.
type Combo struct {
	ID       uuid.UUID   `json:"id"`
	Name     string      `json:"name"`
	Price    float64     `json:"price"`
	Items    []ComboItem `json:"items"`
	StartsAt time.Time   `json:"starts_at"`
	EndsAt   time.Time   `json:"ends_at"`
}

func (Combo) PromotionKind() Kind { return KindCombo }

// BundleSize is the total unit count one application of the combo consumes.
func (c Combo) BundleSize() int {
	total := 0
	for _, item := range c.Items {
		total += item.Quantity
	}
	return total
}

// SingleBogo is a buy-X-get-Y offer on specific products.
type SingleBogo struct {
	ID              uuid.UUID  `json:"id"`
	Buy             ProductRef `json:"buy"`
	BuyQuantity     int        `json:"buy_quantity"`
	Get             ProductRef `json:"get"`
	GetQuantity     int        `json:"get_quantity"`
	DiscountPercent float64    `json:"discount_percent"`
	MaxPerSale      *int       `json:"max_per_sale,omitempty"`
	MaxTotalUses    *int       `json:"max_total_uses,omitempty"`
	CurrentUses     int        `json:"current_uses"`
	StartsAt        time.Time  `json:"starts_at"`
	EndsAt          time.Time  `json:"ends_at"`
}

func (SingleBogo) PromotionKind() Kind { return KindSingleBogo }

// RemainingGlobalUses returns how many more times the offer may apply across
// all sales, or a negative value when uncapped.
func (o SingleBogo) RemainingGlobalUses() int {
	if o.MaxTotalUses == nil {
		return -1
	}
	remaining := *o.MaxTotalUses - o.CurrentUses
	if remaining < 0 {
		return 0
	}
	return remaining
}

// MultiBogo halves the unit price of every eligible line while more than one
// eligible unit is in the cart.
type MultiBogo struct {
	ID       uuid.UUID    `json:"id"`
	Name     string       `json:"name"`
	Items    []ProductRef `json:"items"`
	StartsAt time.Time    `json:"starts_at"`
	EndsAt   time.Time    `json:"ends_at"`
}

func (MultiBogo) PromotionKind() Kind { return KindMultiBogo }

// Set is the loaded, window-filtered promotion view the engine consults.
type Set struct {
	Combos      []Combo
	SingleBogos []SingleBogo
	MultiBogos  []MultiBogo
}

// Active reports whether now falls inside the promotion window (inclusive).
func Active(startsAt, endsAt time.Time, now time.Time) bool {
	if now.Before(startsAt) {
		return false
	}
	if !endsAt.IsZero() && now.After(endsAt) {
		return false
	}
	return true
}
