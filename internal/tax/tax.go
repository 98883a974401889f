package tax

import "github.com/martinortega/abarrote-pos/pkg/config"

// Func computes the tax for a post-discount net amount and reports whether
// tax applies at all. Settlement treats it as opaque so stores with different
// regimes only swap the function.
type Func func(net float64) (amount float64, applicable bool)

// Threshold returns the standard regime: amounts at or above exemptBelow are
// taxed at ratePercent, smaller ones are exempt. The boundary is inclusive.
func Threshold(ratePercent, exemptBelow float64) Func {
	return func(net float64) (float64, bool) {
		if net < exemptBelow {
			return 0, false
		}
		return net * ratePercent / 100, true
	}
}

// None is the zero-tax regime.
func None() Func {
	return func(float64) (float64, bool) { return 0, false }
}

func FromConfig(cfg config.TaxConfig) Func {
	if cfg.RatePercent <= 0 {
		return None()
	}
	return Threshold(cfg.RatePercent, cfg.ExemptBelow)
}
