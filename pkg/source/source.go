// Package source collects raw per-source measurements: for each provider a
// flat {model name: value} map. Values are untrusted; inconsistent names,
// inconsistent scales, and empty results are all normal inputs. A provider
// failing or coming back empty means "source unavailable today", which the
// engine recovers from; it is never a run failure.
package source

import "context"

// Source is the interface every measurement provider implements.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (map[string]float64, error)
}

// Result is one provider's outcome for a run. Failures travel as data:
// Err is recorded and the values are simply empty.
type Result struct {
	Source        string
	Category      string
	LowerIsBetter bool
	Values        map[string]float64
	Err           error
}

// Unavailable reports whether this source contributed nothing this run.
func (r Result) Unavailable() bool {
	return r.Err != nil || len(r.Values) == 0
}

// Collect fetches every source of one category sequentially and tags the
// results with the category's key and direction.
func Collect(ctx context.Context, category string, lowerIsBetter bool, sources []Source) []Result {
	results := make([]Result, 0, len(sources))
	for _, src := range sources {
		values, err := src.Fetch(ctx)
		results = append(results, Result{
			Source:        src.Name(),
			Category:      category,
			LowerIsBetter: lowerIsBetter,
			Values:        values,
			Err:           err,
		})
	}
	return results
}
