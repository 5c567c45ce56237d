// Package score rescales raw per-source measurements onto a shared 0-100
// scale and combines per-category values into weighted composite scores.
package score

import "math"

// Normalize rescales one category's raw values across all entities onto
// 0-100. The reference point is the best present value: the max for regular
// metrics, the min for lower-is-better metrics (error rates, cost, latency),
// so the top performer scores exactly 100 either way.
//
// Non-positive values are dropped before picking the reference; a metric's
// meaningfulness requires a positive measurement. Entities absent from the
// input are absent from the output. Absence is propagated, never defaulted
// to zero, so the composite scorer can tell "no data" from "worst score".
func Normalize(raw map[string]float64, lowerIsBetter bool) map[string]float64 {
	vals := make(map[string]float64, len(raw))
	for name, v := range raw {
		if v > 0 {
			vals[name] = v
		}
	}
	if len(vals) == 0 {
		return map[string]float64{}
	}

	out := make(map[string]float64, len(vals))
	if lowerIsBetter {
		ref := math.Inf(1)
		for _, v := range vals {
			if v < ref {
				ref = v
			}
		}
		for name, v := range vals {
			out[name] = round4(ref / v * 100)
		}
		return out
	}

	ref := math.Inf(-1)
	for _, v := range vals {
		if v > ref {
			ref = v
		}
	}
	for name, v := range vals {
		out[name] = round4(v / ref * 100)
	}
	return out
}

func round4(v float64) float64 { return math.Round(v*1e4) / 1e4 }

func round2(v float64) float64 { return math.Round(v*1e2) / 1e2 }
