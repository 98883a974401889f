package tax

import "testing"

func TestThresholdBoundaryIsInclusive(t *testing.T) {
	fn := Threshold(10, 15)

	// Subtotal 20 with a 5 discount nets exactly the threshold: taxable.
	amount, applicable := fn(15)
	if !applicable || amount != 1.5 {
		t.Fatalf("net at threshold: got amount=%v applicable=%v", amount, applicable)
	}

	amount, applicable = fn(14.99)
	if applicable || amount != 0 {
		t.Fatalf("net below threshold: got amount=%v applicable=%v", amount, applicable)
	}
}

func TestNone(t *testing.T) {
	amount, applicable := None()(100)
	if applicable || amount != 0 {
		t.Fatalf("expected no tax, got amount=%v applicable=%v", amount, applicable)
	}
}
