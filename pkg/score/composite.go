package score

import "sort"

// Weights maps category keys to their share of the composite.
type Weights map[string]float64

// Composite combines an entity's normalized per-category values into one
// weighted score. Only categories where the entity has a present value are
// included, and their weights are rescaled to sum to 1 over that subset, so
// a missing category neither drags the score toward zero nor penalizes
// broader coverage.
//
// present reports how many categories contributed; ok is false when none
// did, in which case the entity gets no score this run.
func Composite(normalized map[string]map[string]float64, weights Weights, entity string) (composite float64, present int, ok bool) {
	keys := make([]string, 0, len(weights))
	for cat := range weights {
		keys = append(keys, cat)
	}
	sort.Strings(keys)

	var totalWeight float64
	type part struct {
		value, weight float64
	}
	var parts []part

	for _, cat := range keys {
		v, found := normalized[cat][entity]
		if !found {
			continue
		}
		parts = append(parts, part{value: v, weight: weights[cat]})
		totalWeight += weights[cat]
	}

	if len(parts) == 0 || totalWeight == 0 {
		return 0, 0, false
	}

	for _, p := range parts {
		composite += p.value * p.weight / totalWeight
	}
	return round2(composite), len(parts), true
}

// Dampen scales a composite so partial-coverage scores sit visibly below
// full-coverage ones even after reweighting: the multiplier runs from base
// (single category) up to 1 (all categories). A base outside (0,1) disables
// the dampener.
func Dampen(composite float64, present, total int, base float64) float64 {
	if base <= 0 || base >= 1 || total <= 0 {
		return composite
	}
	factor := base + (1-base)*float64(present)/float64(total)
	return round2(composite * factor)
}
