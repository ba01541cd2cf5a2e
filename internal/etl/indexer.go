package etl

import (
	"sort"
	"strings"

	"github.com/jobeval/jobeval/internal/occupation"
)

// minPartialWordLength keeps single-word index entries meaningful; two-letter
// fragments match almost everything.
const minPartialWordLength = 3

// partialStopwords are title words too generic to index on their own.
var partialStopwords = map[string]bool{
	"and":           true,
	"the":           true,
	"all":           true,
	"other":         true,
	"except":        true,
	"miscellaneous": true,
	"workers":       true,
	"occupations":   true,
}

// BuildIndex constructs the title index consumed by the matcher: every
// occupation contributes its primary title, each alternate title, and a
// word-level partial entry for each significant word of those titles.
// For any given occupation, primary entries are added before alternates and
// alternates before partials, so dedupe-by-code downstream keeps the
// strongest match type.
func BuildIndex(occupations map[string]occupation.Occupation) map[string][]occupation.Candidate {
	index := make(map[string][]occupation.Candidate)

	// Deterministic output regardless of map order.
	codes := make([]string, 0, len(occupations))
	for code := range occupations {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	add := func(key string, c occupation.Candidate) {
		if key == "" {
			return
		}
		for _, existing := range index[key] {
			if existing.Code == c.Code && existing.MatchType == c.MatchType {
				return
			}
		}
		index[key] = append(index[key], c)
	}

	for _, code := range codes {
		occ := occupations[code]
		if !occ.Wages.Valid() {
			continue // the artifact invariant: every indexed code has wage data
		}

		primary := occupation.Normalize(occ.Title)
		add(primary, occupation.Candidate{Code: code, Title: occ.Title, MatchType: occupation.MatchPrimary})

		for _, alt := range occ.AlternateTitles {
			key := occupation.Normalize(alt)
			if key == primary {
				continue
			}
			add(key, occupation.Candidate{Code: code, Title: alt, MatchType: occupation.MatchAlternate})
		}

		for _, source := range append([]string{occ.Title}, occ.AlternateTitles...) {
			for _, word := range strings.Fields(occupation.Normalize(source)) {
				if len(word) < minPartialWordLength || partialStopwords[word] {
					continue
				}
				add(word, occupation.Candidate{Code: code, Title: source, MatchType: occupation.MatchPartial})
			}
		}
	}

	return index
}
