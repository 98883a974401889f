package settle

import (
	"github.com/shopspring/decimal"

	"github.com/martinortega/abarrote-pos/internal/cart"
	"github.com/martinortega/abarrote-pos/internal/tax"
)

// Figures is the money breakdown of a settlement. Amounts are computed in
// float64 and rounded to cents only here, at the persistence boundary.
type Figures struct {
	Subtotal      float64
	BillDiscount  float64
	Net           float64
	Tax           float64
	TaxApplicable bool
	Total         float64
}

// Calculate derives the settlement figures from a flushed cart. The input
// lines are read only.
func Calculate(lines []cart.Line, billDiscount float64, taxFn tax.Func) Figures {
	subtotal := 0.0
	for _, line := range lines {
		subtotal += line.LineTotal()
	}
	if billDiscount < 0 {
		billDiscount = 0
	}
	if billDiscount > subtotal {
		billDiscount = subtotal
	}

	net := subtotal - billDiscount
	taxAmount, applicable := taxFn(net)

	return Figures{
		Subtotal:      Round2(subtotal),
		BillDiscount:  Round2(billDiscount),
		Net:           Round2(net),
		Tax:           Round2(taxAmount),
		TaxApplicable: applicable,
		Total:         Round2(net + taxAmount),
	}
}

// Round2 rounds half away from zero to two decimal places.
func Round2(v float64) float64 {
	out, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return out
}
