package roster

import "sort"

// Discovery accumulates names the resolver could not place. A name becomes
// an admission candidate only once it has been seen by at least minSources
// independent sources, so a single scraper's noise never grows the roster.
// Sightings are keyed on the normalized form, letting "Newcomer 9" and
// "newcomer_9" count as the same candidate; the first-seen spelling is kept
// as the display name.
type Discovery struct {
	minSources int
	display    map[string]string
	sightings  map[string]map[string]struct{}
	values     map[string]map[string]float64
}

// Candidate is an unmatched name that cleared the multi-source guard,
// with the per-category values observed for it today (first source wins
// per category).
type Candidate struct {
	Name    string
	Sources int
	Values  map[string]float64
}

// NewDiscovery creates a tracker with the given multi-source guard.
// A guard below 1 falls back to the default of 2.
func NewDiscovery(minSources int) *Discovery {
	if minSources < 1 {
		minSources = 2
	}
	return &Discovery{
		minSources: minSources,
		display:    make(map[string]string),
		sightings:  make(map[string]map[string]struct{}),
		values:     make(map[string]map[string]float64),
	}
}

// Observe records that source reported value for an unmatched canonical
// name under the given category.
func (d *Discovery) Observe(name, source, category string, value float64) {
	key := NormalizeName(name)
	if key == "" || source == "" {
		return
	}

	if d.sightings[key] == nil {
		d.display[key] = name
		d.sightings[key] = make(map[string]struct{})
		d.values[key] = make(map[string]float64)
	}
	d.sightings[key][source] = struct{}{}

	if _, exists := d.values[key][category]; !exists {
		d.values[key][category] = value
	}
}

// Candidates returns the names that cleared the guard, sorted by name so
// admission order is deterministic across runs.
func (d *Discovery) Candidates() []Candidate {
	var out []Candidate
	for key, srcs := range d.sightings {
		if len(srcs) < d.minSources {
			continue
		}
		out = append(out, Candidate{
			Name:    d.display[key],
			Sources: len(srcs),
			Values:  d.values[key],
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
