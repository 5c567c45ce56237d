// Package engine turns raw per-source measurements into a published
// leaderboard state: it resolves names against the roster, normalizes each
// category to a shared scale, computes weighted composites, re-ranks, and
// stamps the integrity digest. The engine mutates a ledger in memory and
// reports what it did; persisting the result is the pipeline's job.
package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/solosevn/trainingrun/pkg/ledger"
	"github.com/solosevn/trainingrun/pkg/roster"
	"github.com/solosevn/trainingrun/pkg/score"
	"github.com/solosevn/trainingrun/pkg/source"
)

// ErrNoQualified indicates no entity cleared the qualification gate this
// run. The caller must discard the mutated ledger instead of persisting it.
var ErrNoQualified = errors.New("no qualified entities")

// Category is one scoring axis of a board.
type Category struct {
	Key           string
	Weight        float64
	LowerIsBetter bool
}

// Options tunes one board's engine.
type Options struct {
	Board string

	// QualificationMin is the number of categories an entity needs data in
	// before it receives a rank. Below 1 every scored entity qualifies.
	QualificationMin int

	// DampenerBase enables the coverage dampener when inside (0, 1).
	DampenerBase float64

	// DiscoveryMinSources is the multi-source guard for admitting unknown
	// names to the roster.
	DiscoveryMinSources int

	TopN int

	// Aliases extends the resolver's alias table; Companies supplies the
	// owning organization for newly admitted entities.
	Aliases   map[string]string
	Companies map[string]string
}

// Engine scores one board.
type Engine struct {
	categories []Category
	weights    score.Weights
	opts       Options
}

// New builds an engine for the given categories. Category order is kept
// for coverage reporting; scoring itself iterates keys sorted.
func New(categories []Category, opts Options) *Engine {
	weights := make(score.Weights, len(categories))
	for _, c := range categories {
		weights[c.Key] = c.Weight
	}
	if opts.TopN <= 0 {
		opts.TopN = 10
	}
	return &Engine{categories: categories, weights: weights, opts: opts}
}

// Standing is one ranked row of the report.
type Standing struct {
	Rank        int     `json:"rank"`
	Name        string  `json:"name"`
	Company     string  `json:"company,omitempty"`
	Score       float64 `json:"score"`
	SourceCount int     `json:"source_count"`
}

// Suggestion pairs an unmatched raw name with its nearest roster entry,
// for the run log. Distance is the edit distance to that entry.
type Suggestion struct {
	Raw      string `json:"raw"`
	Nearest  string `json:"nearest,omitempty"`
	Distance int    `json:"distance"`
}

// Resolution is one raw measurement together with the roster entity it
// resolved to (empty when unmatched). The pipeline archives these.
type Resolution struct {
	Source   string
	Category string
	RawName  string
	Resolved string
	Value    float64
}

// Coverage reports how many of a category's sources contributed data.
type Coverage struct {
	Category  string `json:"category"`
	Available int    `json:"available"`
	Total     int    `json:"total"`
}

// Report is the outcome of one scoring run.
type Report struct {
	Board       string       `json:"board"`
	Date        string       `json:"date"`
	Mode        string       `json:"mode"`
	Qualified   int          `json:"qualified"`
	Total       int          `json:"total"`
	Top         []Standing   `json:"top"`
	Coverage    []Coverage   `json:"coverage"`
	Discoveries []string     `json:"discoveries,omitempty"`
	Unmatched   []Suggestion `json:"unmatched,omitempty"`
	Digest      string       `json:"digest"`

	Resolutions []Resolution `json:"-"`
}

// Run scores one day's measurements into the ledger. The ledger is mutated
// in place; on error the caller must not persist it. An ErrNoQualified
// failure still returns the partial report for archiving.
func (e *Engine) Run(led *ledger.Ledger, date string, results []source.Result) (*Report, error) {
	if err := led.Validate(); err != nil {
		return nil, fmt.Errorf("pre-run validation: %w", err)
	}

	idx, replace := led.ResolveDateSlot(date)
	mode := "append"
	if replace {
		mode = "replace"
	}

	resolver := roster.NewResolver(led.Names(), e.opts.Aliases)
	discovery := roster.NewDiscovery(e.opts.DiscoveryMinSources)

	// Merge resolved values per category. Within a category the first
	// source to report an entity wins; later sources only fill gaps.
	merged := make(map[string]map[string]float64, len(e.categories))
	seen := make(map[string]map[string]struct{})
	available := make(map[string]int)

	report := &Report{Board: e.opts.Board, Date: date, Mode: mode}

	for _, res := range results {
		if res.Unavailable() {
			continue
		}
		available[res.Category]++

		if merged[res.Category] == nil {
			merged[res.Category] = make(map[string]float64)
			seen[res.Category] = make(map[string]struct{})
		}

		for _, raw := range sortedKeys(res.Values) {
			value := res.Values[raw]

			name, ok := resolver.Resolve(raw)
			if !ok {
				canonical := resolver.Canonicalize(raw)
				discovery.Observe(canonical, res.Source, res.Category, value)
				report.Resolutions = append(report.Resolutions, Resolution{
					Source: res.Source, Category: res.Category,
					RawName: raw, Value: value,
				})
				continue
			}

			report.Resolutions = append(report.Resolutions, Resolution{
				Source: res.Source, Category: res.Category,
				RawName: raw, Resolved: name, Value: value,
			})

			if _, dup := seen[res.Category][name]; dup {
				continue
			}
			seen[res.Category][name] = struct{}{}
			merged[res.Category][name] = value
		}
	}

	// Admit discovered entities before normalizing so their values are
	// scored in the same pass, then fold their observations in.
	for _, cand := range discovery.Candidates() {
		entity, err := led.AddEntity(cand.Name, e.opts.Companies[cand.Name])
		if err != nil {
			return nil, fmt.Errorf("admit %q: %w", cand.Name, err)
		}
		report.Discoveries = append(report.Discoveries, entity.Name)

		for cat, value := range cand.Values {
			if merged[cat] == nil {
				merged[cat] = make(map[string]float64)
			}
			if _, exists := merged[cat][cand.Name]; !exists {
				merged[cat][cand.Name] = value
			}
		}
	}
	report.Unmatched = e.suggestions(resolver, discovery, report.Resolutions)

	// Normalize each category independently to the shared 0-100 scale.
	normalized := make(map[string]map[string]float64, len(merged))
	for _, c := range e.categories {
		report.Coverage = append(report.Coverage, Coverage{
			Category:  c.Key,
			Available: available[c.Key],
			Total:     e.sourceTotal(results, c.Key),
		})
		if len(merged[c.Key]) == 0 {
			continue
		}
		normalized[c.Key] = score.Normalize(merged[c.Key], c.LowerIsBetter)
	}

	for _, m := range led.Models {
		composite, present, ok := score.Composite(normalized, e.weights, m.Name)
		if !ok {
			m.SourceCount = 0
			m.CategoryValues = nil
			if err := led.SetScore(m, idx, nil); err != nil {
				return nil, err
			}
			continue
		}

		composite = score.Dampen(composite, present, len(e.categories), e.opts.DampenerBase)
		m.SourceCount = present
		m.CategoryValues = entityValues(normalized, m.Name)
		if err := led.SetScore(m, idx, &composite); err != nil {
			return nil, err
		}
	}

	qualified := 0
	for _, m := range led.Models {
		if m.SourceCount >= e.opts.QualificationMin && m.ScoreAt(idx) != nil {
			qualified++
		}
	}
	if qualified == 0 {
		// The partial report still carries the resolutions and coverage
		// so the failure can be archived and diagnosed.
		return report, fmt.Errorf("%s %s: %w", e.opts.Board, date, ErrNoQualified)
	}

	led.RecomputeRanks(idx, e.opts.QualificationMin)
	led.Stamp()

	report.Qualified = qualified
	report.Total = len(led.Models)
	report.Digest = led.Checksum
	report.Top = topStandings(led, idx, e.opts.TopN)
	return report, nil
}

func (e *Engine) sourceTotal(results []source.Result, category string) int {
	n := 0
	for _, r := range results {
		if r.Category == category {
			n++
		}
	}
	return n
}

// suggestions pairs every unresolved raw name with the closest roster
// entry so the run log shows what an alias entry would have to cover.
func (e *Engine) suggestions(resolver *roster.Resolver, discovery *roster.Discovery, resolutions []Resolution) []Suggestion {
	admitted := make(map[string]struct{})
	for _, cand := range discovery.Candidates() {
		admitted[roster.NormalizeName(cand.Name)] = struct{}{}
	}

	seen := make(map[string]struct{})
	var out []Suggestion
	for _, r := range resolutions {
		if r.Resolved != "" {
			continue
		}
		key := roster.NormalizeName(resolver.Canonicalize(r.RawName))
		if _, ok := admitted[key]; ok {
			continue
		}
		if _, dup := seen[r.RawName]; dup {
			continue
		}
		seen[r.RawName] = struct{}{}

		nearest, dist := resolver.Nearest(r.RawName)
		out = append(out, Suggestion{Raw: r.RawName, Nearest: nearest, Distance: dist})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Raw < out[j].Raw })
	return out
}

func topStandings(led *ledger.Ledger, idx, n int) []Standing {
	var ranked []*ledger.Entity
	for _, m := range led.Models {
		if m.Rank > 0 {
			ranked = append(ranked, m)
		}
	}
	sort.Slice(ranked, func(i, j int) bool { return ranked[i].Rank < ranked[j].Rank })

	if len(ranked) > n {
		ranked = ranked[:n]
	}
	out := make([]Standing, len(ranked))
	for i, m := range ranked {
		out[i] = Standing{
			Rank:        m.Rank,
			Name:        m.Name,
			Company:     m.Company,
			Score:       *m.ScoreAt(idx),
			SourceCount: m.SourceCount,
		}
	}
	return out
}

func entityValues(normalized map[string]map[string]float64, name string) map[string]float64 {
	var out map[string]float64
	for cat, values := range normalized {
		if v, ok := values[name]; ok {
			if out == nil {
				out = make(map[string]float64)
			}
			out[cat] = v
		}
	}
	return out
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Summary renders the report as a short human-readable digest for
// notifications and the CLI.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s (%s): %d/%d qualified\n", r.Board, r.Date, r.Mode, r.Qualified, r.Total)
	for _, s := range r.Top {
		fmt.Fprintf(&b, "%2d. %s", s.Rank, s.Name)
		if s.Company != "" {
			fmt.Fprintf(&b, " (%s)", s.Company)
		}
		fmt.Fprintf(&b, " %.2f [%d cats]\n", s.Score, s.SourceCount)
	}
	if len(r.Discoveries) > 0 {
		fmt.Fprintf(&b, "new: %s\n", strings.Join(r.Discoveries, ", "))
	}
	for _, u := range r.Unmatched {
		if u.Nearest != "" {
			fmt.Fprintf(&b, "unmatched: %q (nearest %q, distance %d)\n", u.Raw, u.Nearest, u.Distance)
		} else {
			fmt.Fprintf(&b, "unmatched: %q\n", u.Raw)
		}
	}
	return b.String()
}
