// Package roster resolves noisy, source-provided model names onto the
// canonical roster. Matching is tiered and deterministic; anything the
// tiers cannot place is a discovery candidate, never a guess.
package roster

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

var (
	orgSlugRe   = regexp.MustCompile(`^[a-z0-9._-]+$`)
	suffixRe    = regexp.MustCompile(`(?i)\s*\((zero shot|scratchpad|thinking|high reasoning)\)\s*$`)
	digitDashRe = regexp.MustCompile(`(\d)\s*-\s*(\d)`)
	versionRe   = regexp.MustCompile(`\bv(\d)`)
	spaceRe     = regexp.MustCompile(`\s+`)
)

// CleanName strips the decoration sources wrap around model names: leading
// emoji and badge characters, org-path prefixes like "anthropic/..." (only
// when the prefix is a pure lowercase slug, so "Qwen3-Coder 480B/A35B" is
// left alone), and trailing harness suffixes like "(zero shot)".
func CleanName(name string) string {
	s := strings.TrimSpace(name)
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	if i := strings.IndexByte(s, '/'); i > 0 {
		if orgSlugRe.MatchString(s[:i]) {
			s = s[i+1:]
		}
	}

	s = suffixRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// NormalizeName produces the fuzzy-comparison form of a name: cleaned,
// lowercased, digit-dash version patterns folded to digit-dot ("4-5" ->
// "4.5"), dashes/underscores and remaining punctuation collapsed to spaces,
// and "v3"-style version markers reduced to the bare number.
func NormalizeName(name string) string {
	s := strings.ToLower(CleanName(name))
	s = digitDashRe.ReplaceAllString(s, "$1.$2")
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	s = versionRe.ReplaceAllString(s, "$1")
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' {
			return r
		}
		return ' '
	}, s)
	return spaceRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// Resolver maps raw source names onto a fixed roster. It is immutable once
// built: alias updates produce a new Resolver, never mutate a live one, so
// a run always sees one consistent table.
type Resolver struct {
	roster  []string
	cleaned []string
	norm    []string
	tokens  []map[string]struct{}
	aliases map[string]string
}

// NewResolver builds a resolver over the given roster and alias table.
// Alias keys are matched case-insensitively against cleaned raw names.
func NewResolver(roster []string, aliases map[string]string) *Resolver {
	r := &Resolver{
		roster:  make([]string, len(roster)),
		cleaned: make([]string, len(roster)),
		norm:    make([]string, len(roster)),
		tokens:  make([]map[string]struct{}, len(roster)),
		aliases: make(map[string]string, len(aliases)),
	}
	copy(r.roster, roster)

	for i, name := range roster {
		r.cleaned[i] = strings.ToLower(CleanName(name))
		r.norm[i] = NormalizeName(name)
		r.tokens[i] = tokenSet(r.norm[i])
	}
	for k, v := range aliases {
		r.aliases[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return r
}

// Roster returns the canonical names this resolver matches against.
func (r *Resolver) Roster() []string { return r.roster }

// Resolve maps a raw name to its canonical roster entry. Tiers, first hit
// wins: exact cleaned match, alias table, substring containment on
// normalized forms, then >=2 token overlap. Returns ok=false when no tier
// matches; callers treat that as a discovery candidate.
func (r *Resolver) Resolve(raw string) (string, bool) {
	if strings.TrimSpace(raw) == "" {
		return "", false
	}

	cl := strings.ToLower(CleanName(raw))

	for i, c := range r.cleaned {
		if c == cl {
			return r.roster[i], true
		}
	}

	target := raw
	if t, ok := r.aliases[cl]; ok {
		tl := strings.ToLower(CleanName(t))
		for i, c := range r.cleaned {
			if c == tl {
				return r.roster[i], true
			}
		}
		// Alias points at a name not yet on the roster; keep matching
		// with the canonical spelling.
		target = t
	}

	n := NormalizeName(target)
	if n == "" {
		return "", false
	}

	for i, rn := range r.norm {
		if rn == "" {
			continue
		}
		if strings.Contains(rn, n) || strings.Contains(n, rn) {
			return r.roster[i], true
		}
	}

	toks := tokenSet(n)
	for i := range r.roster {
		if overlap(toks, r.tokens[i]) >= 2 {
			return r.roster[i], true
		}
	}

	return "", false
}

// Canonicalize returns the display spelling for a raw name: the alias
// target when one exists, otherwise the cleaned raw name. Used to name
// discovery candidates consistently across sources.
func (r *Resolver) Canonicalize(raw string) string {
	cleaned := CleanName(raw)
	if t, ok := r.aliases[strings.ToLower(cleaned)]; ok {
		return t
	}
	return cleaned
}

// Nearest returns the roster name with the smallest edit distance to the
// raw name's cleaned form, for run-report diagnostics on unmatched names.
// It never substitutes for Resolve: a near miss is still NO MATCH.
func (r *Resolver) Nearest(raw string) (string, int) {
	if len(r.roster) == 0 {
		return "", -1
	}

	cl := strings.ToLower(CleanName(raw))
	best, bestDist := r.roster[0], levenshtein.ComputeDistance(cl, r.cleaned[0])
	for i := 1; i < len(r.roster); i++ {
		if d := levenshtein.ComputeDistance(cl, r.cleaned[i]); d < bestDist {
			best, bestDist = r.roster[i], d
		}
	}
	return best, bestDist
}

func tokenSet(norm string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range strings.Fields(norm) {
		set[t] = struct{}{}
	}
	return set
}

func overlap(a, b map[string]struct{}) int {
	n := 0
	for t := range a {
		if _, ok := b[t]; ok {
			n++
		}
	}
	return n
}
