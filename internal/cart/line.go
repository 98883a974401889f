package cart

import (
	"github.com/google/uuid"

	"github.com/martinortega/abarrote-pos/internal/promo"
	dbtypes "github.com/martinortega/abarrote-pos/pkg/db/types"
)

// ComboPart records one constituent consumed when a combo line was formed.
type ComboPart struct {
	ProductID uuid.UUID
	Name      string
	Quantity  int
}

// Line is one row of the active sale. Exactly one of plain, combo-generated,
// or BOGO-generated applies; quantity is always at least 1 (a line reaching 0
// is removed, never kept).
type Line struct {
	// ID is the stable identity: base product id, variant id, or a synthetic
	// id for generated combo/BOGO lines.
	ID        string
	ProductID uuid.UUID
	Name      string
	// DisplayName is a sale-local override; it never mutates the catalog.
	DisplayName *string
	// Price is the catalog price at time of add, possibly replaced by an
	// auto-discount; OriginalPrice keeps the pre-discount value so the
	// discount can be reversed without drift.
	Price         float64
	OriginalPrice *float64
	Quantity      int
	// ItemDiscount and CustomPrice are operator overrides when
	// ManualPriceChange is set; they must survive promotion recomputation.
	ItemDiscount      *float64
	CustomPrice       *float64
	ManualPriceChange bool

	IsCombo    bool
	ComboID    *uuid.UUID
	ComboItems []ComboPart

	IsBogo      bool
	BogoOfferID *uuid.UUID
	// BogoGenerated distinguishes appended get-side lines from regular lines
	// that merely carry a multi-BOGO discount flag.
	BogoGenerated bool
}

// IsRegular reports whether the line is neither combo- nor BOGO-generated.
func (l Line) IsRegular() bool {
	return !l.IsCombo && !l.BogoGenerated
}

// UnitPrice is the effective per-unit price the settlement math uses.
func (l Line) UnitPrice() float64 {
	if l.CustomPrice != nil {
		return *l.CustomPrice
	}
	return l.Price
}

// LineTotal is the extended amount for the line before bill-level discounts.
func (l Line) LineTotal() float64 {
	total := l.UnitPrice() * float64(l.Quantity)
	if l.ItemDiscount != nil {
		total -= *l.ItemDiscount * float64(l.Quantity)
	}
	return total
}

// Matches reports whether the line is the sellable a promotion references.
// Matching is by stable identifier, never by display name.
func (l Line) Matches(ref promo.ProductRef) bool {
	if ref.VariantID != nil {
		return l.ID == ref.VariantID.String()
	}
	return l.ProductID == ref.ProductID
}

func (l Line) clone() Line {
	out := l
	out.DisplayName = copyString(l.DisplayName)
	out.OriginalPrice = copyFloat(l.OriginalPrice)
	out.ItemDiscount = copyFloat(l.ItemDiscount)
	out.CustomPrice = copyFloat(l.CustomPrice)
	out.ComboID = copyUUID(l.ComboID)
	out.BogoOfferID = copyUUID(l.BogoOfferID)
	if l.ComboItems != nil {
		out.ComboItems = append([]ComboPart(nil), l.ComboItems...)
	}
	return out
}

func cloneLines(lines []Line) []Line {
	out := make([]Line, 0, len(lines))
	for _, line := range lines {
		out = append(out, line.clone())
	}
	return out
}

// Snapshot converts the line into its persisted settlement form.
func (l Line) Snapshot() dbtypes.SaleItem {
	item := dbtypes.SaleItem{
		ID:                l.ID,
		ProductID:         l.ProductID,
		Name:              l.Name,
		DisplayName:       copyString(l.DisplayName),
		Price:             l.Price,
		OriginalPrice:     copyFloat(l.OriginalPrice),
		Quantity:          l.Quantity,
		ItemDiscount:      copyFloat(l.ItemDiscount),
		CustomPrice:       copyFloat(l.CustomPrice),
		ManualPriceChange: l.ManualPriceChange,
		IsCombo:           l.IsCombo,
		ComboID:           copyUUID(l.ComboID),
		IsBogo:            l.IsBogo,
		BogoOfferID:       copyUUID(l.BogoOfferID),
		BogoGenerated:     l.BogoGenerated,
	}
	for _, part := range l.ComboItems {
		item.ComboItems = append(item.ComboItems, dbtypes.ComboPart{
			ProductID: part.ProductID,
			Name:      part.Name,
			Quantity:  part.Quantity,
		})
	}
	return item
}

func copyFloat(src *float64) *float64 {
	if src == nil {
		return nil
	}
	val := *src
	return &val
}

func copyString(src *string) *string {
	if src == nil {
		return nil
	}
	val := *src
	return &val
}

func copyUUID(src *uuid.UUID) *uuid.UUID {
	if src == nil {
		return nil
	}
	val := *src
	return &val
}
