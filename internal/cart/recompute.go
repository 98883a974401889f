package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/martinortega/abarrote-pos/internal/products"
	"github.com/martinortega/abarrote-pos/internal/promo"
	pkgerrors "github.com/martinortega/abarrote-pos/pkg/errors"
)

// ProductResolver looks up catalog data for a promotion's get-side product
// when no line for it is already in the cart.
type ProductResolver interface {
	Resolve(ctx context.Context, ref promo.ProductRef) (*products.Resolved, error)
}

// usage is a pending global-counter increment produced by a recompute pass.
type usage struct {
	offerID uuid.UUID
	times   int
}

type override struct {
	itemDiscount *float64
	customPrice  *float64
	displayName  *string
}

// recompute rebuilds the promotion-derived lines of the cart from scratch.
// It never mutates its input; on error the caller keeps the previous cart.
//
// The pass order is fixed: manual overrides are snapshotted, single BOGOs
// append discounted get lines, multi BOGOs halve or restore unit prices,
// combos consume the remaining regular pool, and finally overrides are
// restored onto surviving non-generated lines.
func recompute(ctx context.Context, input []Line, set promo.Set, resolver ProductResolver) ([]Line, []usage, error) {
	lines := cloneLines(input)

	overrides := map[string]override{}
	var existingCombos []Line
	var pool []Line
	for _, line := range lines {
		if line.ManualPriceChange || line.DisplayName != nil {
			overrides[line.ID] = override{
				itemDiscount: line.ItemDiscount,
				customPrice:  line.CustomPrice,
				displayName:  line.DisplayName,
			}
		}
		switch {
		case line.IsCombo:
			existingCombos = append(existingCombos, line)
		case line.BogoGenerated:
			// Rebuilt below from the offers still applicable.
		default:
			// Reverse any carried discount so expired offers fall away and
			// active ones re-apply from the undiscounted price.
			if line.IsBogo && line.OriginalPrice != nil {
				line.Price = *line.OriginalPrice
				line.OriginalPrice = nil
				line.IsBogo = false
				line.BogoOfferID = nil
			}
			pool = append(pool, line)
		}
	}

	generated, usages, err := applySingleBogos(ctx, pool, set.SingleBogos, resolver)
	if err != nil {
		return nil, nil, err
	}

	pool = applyMultiBogos(append(pool, generated...), set.MultiBogos)
	pool, generated = splitGenerated(pool)

	pool, newCombos := applyCombos(pool, set.Combos)

	for i := range pool {
		ov, ok := overrides[pool[i].ID]
		if !ok {
			continue
		}
		pool[i].ItemDiscount = copyFloat(ov.itemDiscount)
		pool[i].CustomPrice = copyFloat(ov.customPrice)
		pool[i].DisplayName = copyString(ov.displayName)
		pool[i].ManualPriceChange = ov.itemDiscount != nil || ov.customPrice != nil
	}

	out := make([]Line, 0, len(pool)+len(generated)+len(existingCombos)+len(newCombos))
	out = append(out, pool...)
	out = append(out, generated...)
	out = append(out, existingCombos...)
	out = append(out, newCombos...)
	return out, usages, nil
}

// applySingleBogos appends one discounted get line per applicable offer. The
// application count is the buy-quantity multiple in the cart, clamped by the
// per-sale cap and by the remaining global uses.
func applySingleBogos(ctx context.Context, pool []Line, offers []promo.SingleBogo, resolver ProductResolver) ([]Line, []usage, error) {
	var generated []Line
	var usages []usage
	for _, offer := range offers {
		if offer.BuyQuantity <= 0 || offer.GetQuantity <= 0 {
			continue
		}
		times := poolQuantity(pool, offer.Buy) / offer.BuyQuantity
		if offer.MaxPerSale != nil && times > *offer.MaxPerSale {
			times = *offer.MaxPerSale
		}
		if remaining := offer.RemainingGlobalUses(); remaining >= 0 && times > remaining {
			times = remaining
		}
		if times == 0 {
			continue
		}

		resolved, err := resolveGetSide(ctx, pool, offer.Get, resolver)
		if err != nil {
			return nil, nil, err
		}

		unit := resolved.Price * (1 - offer.DiscountPercent/100)
		for i := 0; i < times; i++ {
			offerID := offer.ID
			original := resolved.Price
			generated = append(generated, Line{
				ID:            fmt.Sprintf("bogo:%s:%d", offer.ID, i),
				ProductID:     resolved.ProductID,
				Name:          resolved.Name,
				Price:         unit,
				OriginalPrice: &original,
				Quantity:      offer.GetQuantity,
				IsBogo:        true,
				BogoOfferID:   &offerID,
				BogoGenerated: true,
			})
		}
		usages = append(usages, usage{offerID: offer.ID, times: times})
	}
	return generated, usages, nil
}

// resolveGetSide prefers catalog data already in the cart so offline carts
// keep working when the remote catalog is unreachable.
func resolveGetSide(ctx context.Context, pool []Line, ref promo.ProductRef, resolver ProductResolver) (*products.Resolved, error) {
	for _, line := range pool {
		if line.Matches(ref) {
			price := line.Price
			if line.OriginalPrice != nil {
				price = *line.OriginalPrice
			}
			return &products.Resolved{
				LineID:    line.ID,
				ProductID: line.ProductID,
				Name:      line.Name,
				Price:     price,
			}, nil
		}
	}
	if resolver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "product catalog unavailable")
	}
	return resolver.Resolve(ctx, ref)
}

// applyMultiBogos flags and half-prices every line matching an offer whose
// matching unit count across the cart exceeds one. Reversal needs no handling
// here; carried discounts were already stripped when the pool was built, so a
// count at or below one simply leaves the line at full price.
func applyMultiBogos(lines []Line, offers []promo.MultiBogo) []Line {
	for _, offer := range offers {
		total := 0
		for _, line := range lines {
			if multiMatches(line, offer) {
				total += line.Quantity
			}
		}
		if total <= 1 {
			continue
		}
		for i := range lines {
			if !multiMatches(lines[i], offer) {
				continue
			}
			// Generated get lines count toward eligibility but keep their own
			// offer's discount and attribution.
			if lines[i].BogoGenerated {
				continue
			}
			if lines[i].OriginalPrice == nil {
				original := lines[i].Price
				lines[i].OriginalPrice = &original
				lines[i].Price = original / 2
			}
			offerID := offer.ID
			lines[i].IsBogo = true
			lines[i].BogoOfferID = &offerID
		}
	}
	return lines
}

func multiMatches(line Line, offer promo.MultiBogo) bool {
	for _, ref := range offer.Items {
		if line.Matches(ref) {
			return true
		}
	}
	return false
}

func splitGenerated(lines []Line) (regular, generated []Line) {
	for _, line := range lines {
		if line.BogoGenerated {
			generated = append(generated, line)
		} else {
			regular = append(regular, line)
		}
	}
	return regular, generated
}
