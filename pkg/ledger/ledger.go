package ledger

import (
	"errors"
	"fmt"
	"sort"
)

// ErrCorrupt indicates a loaded dataset violates its structural invariants.
// A corrupt ledger must never be mutated or auto-repaired; the run aborts.
var ErrCorrupt = errors.New("ledger corrupt")

// Entity is one tracked model on a board. Scores is aligned slot-for-slot
// with the board's date axis; a nil slot means no score was published for
// that date, which is distinct from a score of zero.
type Entity struct {
	Name    string     `json:"name"`
	Company string     `json:"company,omitempty"`
	Rank    int        `json:"rank"`
	Scores  []*float64 `json:"scores"`

	// SourceCount is the number of categories with data in the latest run.
	// Recomputed every run; drives the qualification gate.
	SourceCount int `json:"source_count"`

	// CategoryValues holds the latest normalized per-category values for
	// display. Overwritten each run, never part of the integrity digest.
	CategoryValues map[string]float64 `json:"category_values,omitempty"`
}

// ScoreAt returns the entity's score at the given date slot, or nil.
func (e *Entity) ScoreAt(idx int) *float64 {
	if idx < 0 || idx >= len(e.Scores) {
		return nil
	}
	return e.Scores[idx]
}

// Ledger is one board's published dataset: a shared date axis, the model
// roster with per-date score histories, and an integrity checksum.
// JSON key spelling matches the datasets already published by the site,
// so existing files stay loadable and digests stay reproducible.
type Ledger struct {
	Dates    []string  `json:"dates"`
	Models   []*Entity `json:"models"`
	Checksum string    `json:"checksum"`
}

// Names returns the canonical roster names in insertion order.
func (l *Ledger) Names() []string {
	names := make([]string, len(l.Models))
	for i, m := range l.Models {
		names[i] = m.Name
	}
	return names
}

// Find returns the entity with the given canonical name, or nil.
func (l *Ledger) Find(name string) *Entity {
	for _, m := range l.Models {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// ResolveDateSlot returns the history index for the given date. If the date
// is already on the axis the run operates in replace mode at that index.
// Otherwise a new slot is appended to the axis and to every entity's history
// (initialized absent) and the run operates in append mode.
func (l *Ledger) ResolveDateSlot(date string) (idx int, replace bool) {
	for i, d := range l.Dates {
		if d == date {
			l.pad()
			return i, true
		}
	}

	l.Dates = append(l.Dates, date)
	l.pad()
	return len(l.Dates) - 1, false
}

// pad extends every history with absent slots up to the date axis length.
func (l *Ledger) pad() {
	n := len(l.Dates)
	for _, m := range l.Models {
		for len(m.Scores) < n {
			m.Scores = append(m.Scores, nil)
		}
	}
}

// AddEntity appends a newly discovered entity with its history backfilled
// absent for every slot on the current date axis. Returns an error if the
// name is already on the roster; identity merging is the resolver's job,
// never the ledger's.
func (l *Ledger) AddEntity(name, company string) (*Entity, error) {
	if name == "" {
		return nil, fmt.Errorf("add entity: empty name")
	}
	if l.Find(name) != nil {
		return nil, fmt.Errorf("add entity %q: already on roster", name)
	}

	e := &Entity{
		Name:    name,
		Company: company,
		Scores:  make([]*float64, len(l.Dates)),
	}
	l.Models = append(l.Models, e)
	return e, nil
}

// SetScore writes a score (or absence) into an entity's date slot.
func (l *Ledger) SetScore(e *Entity, idx int, score *float64) error {
	if idx < 0 || idx >= len(e.Scores) {
		return fmt.Errorf("set score %s: slot %d out of range (%d slots)", e.Name, idx, len(e.Scores))
	}
	e.Scores[idx] = score
	return nil
}

// RecomputeRanks re-ranks the whole roster from scratch for the given date
// slot. An entity is ranked only if it passed the qualification gate
// (SourceCount >= minCategories) and has a score in the slot. Ties keep
// roster insertion order. Everything else gets the unranked sentinel 0.
func (l *Ledger) RecomputeRanks(idx, minCategories int) {
	var ranked []*Entity
	for _, m := range l.Models {
		if m.SourceCount >= minCategories && m.ScoreAt(idx) != nil {
			ranked = append(ranked, m)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].ScoreAt(idx) > *ranked[j].ScoreAt(idx)
	})

	for _, m := range l.Models {
		m.Rank = 0
	}
	for i, m := range ranked {
		m.Rank = i + 1
	}
}

// Validate checks the structural invariants: every history aligned to the
// date axis, no nil entities, no empty or duplicate names. Any violation is
// reported as ErrCorrupt.
func (l *Ledger) Validate() error {
	seen := make(map[string]bool, len(l.Models))
	for i, m := range l.Models {
		if m == nil {
			return fmt.Errorf("%w: nil entity at index %d", ErrCorrupt, i)
		}
		if m.Name == "" {
			return fmt.Errorf("%w: entity %d has empty name", ErrCorrupt, i)
		}
		if seen[m.Name] {
			return fmt.Errorf("%w: duplicate entity %q", ErrCorrupt, m.Name)
		}
		seen[m.Name] = true

		if len(m.Scores) != len(l.Dates) {
			return fmt.Errorf("%w: %s has %d scores for %d dates",
				ErrCorrupt, m.Name, len(m.Scores), len(l.Dates))
		}
	}
	return nil
}

// Stamp recomputes and stores the integrity checksum over the current
// entities. Must run after all scores are written so the digest reflects
// the published state.
func (l *Ledger) Stamp() {
	l.Checksum = Digest(l.Models)
}

// VerifyChecksum recomputes the digest and compares it to the stored value.
func (l *Ledger) VerifyChecksum() error {
	want := Digest(l.Models)
	if l.Checksum != want {
		return fmt.Errorf("%w: checksum %s does not match recomputed %s",
			ErrCorrupt, l.Checksum, want)
	}
	return nil
}
