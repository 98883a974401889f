package cart

import (
	"fmt"

	"github.com/martinortega/abarrote-pos/internal/promo"
)

// comboPatterns enumerates every way to draw size units from k constituents,
// ordered by how many distinct constituents each draw uses. For a two-item
// combo of size 3 the order is (3,0), (0,3), (2,1), (1,2): exhaust a single
// product first, then mix, preferring more units of earlier constituents.
func comboPatterns(k, size int) [][]int {
	var out [][]int
	for used := 1; used <= k && used <= size; used++ {
		indexes := make([]int, used)
		var pick func(start, depth int)
		pick = func(start, depth int) {
			if depth == used {
				for _, split := range compositions(size, used) {
					pattern := make([]int, k)
					for i, idx := range indexes {
						pattern[idx] = split[i]
					}
					out = append(out, pattern)
				}
				return
			}
			for i := start; i < k; i++ {
				indexes[depth] = i
				pick(i+1, depth+1)
			}
		}
		pick(0, 0)
	}
	return out
}

// compositions lists the ordered splits of total into parts positive integers,
// largest leading part first.
func compositions(total, parts int) [][]int {
	if parts == 1 {
		return [][]int{{total}}
	}
	var out [][]int
	for first := total - parts + 1; first >= 1; first-- {
		for _, rest := range compositions(total-first, parts-1) {
			out = append(out, append([]int{first}, rest...))
		}
	}
	return out
}

// poolName returns the display-agnostic name of the first pool line matching
// ref; pattern matching guarantees one exists before a constituent is drawn.
func poolName(pool []Line, ref promo.ProductRef) string {
	for _, line := range pool {
		if line.Matches(ref) {
			return line.Name
		}
	}
	return ""
}

// poolQuantity sums the remaining units across pool lines matching ref.
func poolQuantity(pool []Line, ref promo.ProductRef) int {
	total := 0
	for _, line := range pool {
		if line.Matches(ref) {
			total += line.Quantity
		}
	}
	return total
}

// consume removes count units of ref from the pool, draining earlier lines
// first, and returns the pool with emptied lines dropped.
func consume(pool []Line, ref promo.ProductRef, count int) []Line {
	out := pool[:0]
	for _, line := range pool {
		if count > 0 && line.Matches(ref) {
			take := count
			if take > line.Quantity {
				take = line.Quantity
			}
			line.Quantity -= take
			count -= take
			if line.Quantity == 0 {
				continue
			}
		}
		out = append(out, line)
	}
	return out
}

// applyCombos repeatedly matches combo bundles against the regular pool until
// no pattern fits, returning the depleted pool and one generated line per
// bundle formed. Matching is greedy first-fit over the declared patterns, so
// the same pool always yields the same bundles.
func applyCombos(pool []Line, combos []promo.Combo) ([]Line, []Line) {
	var generated []Line
	for _, combo := range combos {
		seq := 0
		patterns := comboPatterns(len(combo.Items), combo.BundleSize())
		for {
			matched := false
			for _, pattern := range patterns {
				if !patternFits(pool, combo, pattern) {
					continue
				}
				var parts []ComboPart
				for i, need := range pattern {
					if need == 0 {
						continue
					}
					item := combo.Items[i]
					parts = append(parts, ComboPart{
						ProductID: item.Product.ProductID,
						Name:      poolName(pool, item.Product),
						Quantity:  need,
					})
					pool = consume(pool, item.Product, need)
				}
				comboID := combo.ID
				generated = append(generated, Line{
					ID:         fmt.Sprintf("combo:%s:%d", combo.ID, seq),
					Name:       combo.Name,
					Price:      combo.Price,
					Quantity:   1,
					IsCombo:    true,
					ComboID:    &comboID,
					ComboItems: parts,
				})
				seq++
				matched = true
				break
			}
			if !matched {
				break
			}
		}
	}
	return pool, generated
}

func patternFits(pool []Line, combo promo.Combo, pattern []int) bool {
	for i, need := range pattern {
		if need == 0 {
			continue
		}
		if poolQuantity(pool, combo.Items[i].Product) < need {
			return false
		}
	}
	return true
}
