package occupation

import (
	"sort"
)

// Default query parameters, overridable per call via MatchOption.
const (
	DefaultMaxResults    = 5
	DefaultMinConfidence = 0.3
)

// MatchOption adjusts a single Match call.
type MatchOption func(*matchParams)

type matchParams struct {
	maxResults    int
	minConfidence float64
}

// WithMaxResults caps the number of results returned.
func WithMaxResults(n int) MatchOption {
	return func(p *matchParams) {
		if n > 0 {
			p.maxResults = n
		}
	}
}

// WithMinConfidence sets the confidence threshold below which candidates
// are discarded.
func WithMinConfidence(c float64) MatchOption {
	return func(p *matchParams) {
		p.minConfidence = clamp01(c)
	}
}

// Matcher maps free-text job titles to SOC occupations using a precomputed
// title index. It holds only read-only data after construction and is safe
// for concurrent use.
type Matcher struct {
	occupations map[string]Occupation
	index       map[string][]Candidate
	keys        []string // index keys in sorted order, for a deterministic sweep
}

// NewMatcher builds a matcher over the given occupation table and title
// index. Index keys are assumed to be normalized already (the index builder
// guarantees this); keys that are not are normalized defensively.
func NewMatcher(occupations map[string]Occupation, index map[string][]Candidate) *Matcher {
	m := &Matcher{
		occupations: make(map[string]Occupation, len(occupations)),
		index:       make(map[string][]Candidate, len(index)),
	}
	for code, occ := range occupations {
		m.occupations[code] = occ
	}
	for key, candidates := range index {
		norm := Normalize(key)
		if norm == "" {
			continue
		}
		m.index[norm] = append(m.index[norm], candidates...)
	}

	m.keys = make([]string, 0, len(m.index))
	for key := range m.index {
		m.keys = append(m.keys, key)
	}
	sort.Strings(m.keys)

	return m
}

// Lookup returns the occupation for a SOC code, if present.
func (m *Matcher) Lookup(code string) (Occupation, bool) {
	occ, ok := m.occupations[code]
	return occ, ok
}

// Size returns the number of occupations and index entries loaded.
func (m *Matcher) Size() (occupations, indexEntries int) {
	return len(m.occupations), len(m.index)
}

// Match returns the top occupations for a free-text job title, ranked by
// confidence. An empty or whitespace-only query, or a query nothing scores
// above the threshold for, yields an empty result — that is a normal outcome
// the caller handles by asking for a different title, not an error.
func (m *Matcher) Match(query string, opts ...MatchOption) []Match {
	params := matchParams{
		maxResults:    DefaultMaxResults,
		minConfidence: DefaultMinConfidence,
	}
	for _, opt := range opts {
		opt(&params)
	}

	q := Normalize(query)
	if q == "" {
		return []Match{}
	}

	// Dedupe by code, first writer wins. The exact pass runs before the
	// fuzzy sweep, so an exact hit for a code can never be displaced by a
	// lower-confidence fuzzy hit for the same code.
	byCode := make(map[string]Match)
	var order []string

	insert := func(c Candidate, confidence float64) {
		if confidence < params.minConfidence {
			return
		}
		occ, ok := m.occupations[c.Code]
		if !ok || !occ.Wages.Valid() {
			// Index integrity is enforced by the ETL step; a stale
			// reference here is skipped rather than surfaced.
			return
		}
		if _, exists := byCode[c.Code]; exists {
			return
		}
		byCode[c.Code] = Match{
			Code:       c.Code,
			Title:      occ.Title,
			Confidence: confidence,
			MatchedOn:  c.Title,
			MatchType:  c.MatchType,
		}
		order = append(order, c.Code)
	}

	// Exact-key lookup.
	for _, c := range m.index[q] {
		insert(c, score(q, q, c.MatchType))
	}

	// Exhaustive fuzzy sweep over every indexed key. Acceptable at the index
	// sizes in play (low thousands of keys) for interactive queries. The
	// sweep runs one pass per match type so that for any given code its
	// primary entry is considered before alternates, and alternates before
	// word-level partials.
	for _, mt := range []MatchType{MatchPrimary, MatchAlternate, MatchPartial} {
		for _, key := range m.keys {
			if key == q {
				continue
			}
			for _, c := range m.index[key] {
				if c.MatchType != mt {
					continue
				}
				insert(c, score(q, key, c.MatchType))
			}
		}
	}

	results := make([]Match, 0, len(order))
	for _, code := range order {
		results = append(results, byCode[code])
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Confidence != results[j].Confidence {
			return results[i].Confidence > results[j].Confidence
		}
		return results[i].Code < results[j].Code
	})

	if len(results) > params.maxResults {
		results = results[:params.maxResults]
	}
	return results
}
