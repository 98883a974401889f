package settle

import (
	"testing"

	"github.com/martinortega/abarrote-pos/internal/cart"
	"github.com/martinortega/abarrote-pos/internal/tax"
)

func line(price float64, qty int) cart.Line {
	return cart.Line{ID: "l", Name: "Item", Price: price, Quantity: qty}
}

func TestCalculateBasicFigures(t *testing.T) {
	lines := []cart.Line{line(2.50, 4), line(1.25, 2)}
	figures := Calculate(lines, 0, tax.None())
	if figures.Subtotal != 12.50 || figures.Total != 12.50 {
		t.Fatalf("unexpected figures: %+v", figures)
	}
}

func TestCalculateAppliesOverrides(t *testing.T) {
	custom := 2.00
	discount := 0.50
	l := line(3.00, 2)
	l.CustomPrice = &custom
	l.ItemDiscount = &discount

	figures := Calculate([]cart.Line{l}, 0, tax.None())
	// (2.00 - 0.50) * 2
	if figures.Subtotal != 3.00 {
		t.Fatalf("expected overridden subtotal 3.00, got %+v", figures)
	}
}

func TestCalculateTaxAtThresholdBoundary(t *testing.T) {
	figures := Calculate([]cart.Line{line(10.00, 2)}, 5, tax.Threshold(10, 15))
	if figures.Net != 15 || !figures.TaxApplicable {
		t.Fatalf("net at threshold must be taxable: %+v", figures)
	}
	if figures.Tax != 1.50 || figures.Total != 16.50 {
		t.Fatalf("unexpected tax figures: %+v", figures)
	}
}

func TestCalculateClampsBillDiscount(t *testing.T) {
	figures := Calculate([]cart.Line{line(1.00, 1)}, 5, tax.None())
	if figures.BillDiscount != 1 || figures.Total != 0 {
		t.Fatalf("discount must clamp to subtotal: %+v", figures)
	}
}

func TestCalculateSubtotalIgnoresLineOrder(t *testing.T) {
	custom := 2.00
	discount := 0.25
	overridden := line(3.00, 2)
	overridden.CustomPrice = &custom
	overridden.ItemDiscount = &discount

	lines := []cart.Line{line(2.50, 4), overridden, line(1.25, 3), line(0.10, 7)}
	want := Calculate(lines, 0, tax.None()).Subtotal

	permuted := []cart.Line{lines[2], lines[0], lines[3], lines[1]}
	if got := Calculate(permuted, 0, tax.None()).Subtotal; got != want {
		t.Fatalf("subtotal changed with line order: %v vs %v", got, want)
	}
	reversed := []cart.Line{lines[3], lines[2], lines[1], lines[0]}
	if got := Calculate(reversed, 0, tax.None()).Subtotal; got != want {
		t.Fatalf("subtotal changed when reversed: %v vs %v", got, want)
	}
}

func TestCalculateRoundsAtBoundaryOnly(t *testing.T) {
	figures := Calculate([]cart.Line{line(0.10, 3)}, 0, tax.None())
	if figures.Subtotal != 0.30 {
		t.Fatalf("expected 0.30, got %v", figures.Subtotal)
	}
}
