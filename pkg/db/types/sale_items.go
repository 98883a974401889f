package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ComboPart records one constituent consumed when a combo line was formed.
type ComboPart struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
}

// SaleItem is the immutable snapshot of a cart line at settlement time.
type SaleItem struct {
	ID                string      `json:"id"`
	ProductID         uuid.UUID   `json:"product_id"`
	Name              string      `json:"name"`
	DisplayName       *string     `json:"display_name,omitempty"`
	Price             float64     `json:"price"`
	OriginalPrice     *float64    `json:"original_price,omitempty"`
	Quantity          int         `json:"quantity"`
	ItemDiscount      *float64    `json:"item_discount,omitempty"`
	CustomPrice       *float64    `json:"custom_price,omitempty"`
	ManualPriceChange bool        `json:"manual_price_change,omitempty"`
	IsCombo           bool        `json:"is_combo,omitempty"`
	ComboID           *uuid.UUID  `json:"combo_id,omitempty"`
	ComboItems        []ComboPart `json:"combo_items,omitempty"`
	IsBogo            bool        `json:"is_bogo,omitempty"`
	BogoOfferID       *uuid.UUID  `json:"bogo_offer_id,omitempty"`
	BogoGenerated     bool        `json:"bogo_generated,omitempty"`
}

// SaleItems is stored as a JSON column on both the local SQLite queue and the
// remote sales table.
type SaleItems []SaleItem

// Value implements driver.Valuer.
func (s SaleItems) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

// Scan implements sql.Scanner.
func (s *SaleItems) Scan(value interface{}) error {
	if value == nil {
		*s = SaleItems{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported sale items column type %T", value)
	}
}
