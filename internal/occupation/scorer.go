package occupation

import "strings"

// Match-type multipliers. Primary titles get a slight boost, alternate titles
// a slight discount, and single-word partial entries a heavy discount so they
// can never outrank a full-title match of the same similarity.
const (
	primaryBoost      = 1.1
	alternatePenalty  = 0.95
	partialPenalty    = 0.7
	substringBonus    = 0.15
	wordOverlapWeight = 0.8
)

// score computes the confidence that the normalized query refers to the
// indexed title. Edit distance alone misranks multi-word titles with
// reordered or partially overlapping terms, so two corrections are layered
// on top: a containment bonus and a word-overlap floor.
func score(query, indexed string, matchType MatchType) float64 {
	confidence := similarity(query, indexed)

	switch matchType {
	case MatchPrimary:
		confidence = min(1.0, confidence*primaryBoost)
	case MatchAlternate:
		confidence *= alternatePenalty
	case MatchPartial:
		confidence *= partialPenalty
	}

	// Containment bonus: one title embedded in the other is strong evidence
	// even when lengths differ a lot.
	if query != "" && indexed != "" &&
		(strings.Contains(query, indexed) || strings.Contains(indexed, query)) {
		confidence = min(1.0, confidence+substringBonus)
	}

	// Word-overlap floor rescues titles that share terms in a different order.
	if overlap := wordOverlap(query, indexed); overlap*wordOverlapWeight > confidence {
		confidence = overlap * wordOverlapWeight
	}

	return clamp01(confidence)
}

// wordOverlap returns |common words| / max(word count) for two normalized
// strings, or 0 when either has no words.
func wordOverlap(a, b string) float64 {
	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0.0
	}

	seen := make(map[string]bool, len(wordsA))
	for _, w := range wordsA {
		seen[w] = true
	}

	common := 0
	counted := make(map[string]bool, len(wordsB))
	for _, w := range wordsB {
		if seen[w] && !counted[w] {
			common++
			counted[w] = true
		}
	}

	return float64(common) / float64(max(len(wordsA), len(wordsB)))
}

func clamp01(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}
