package occupation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore_ExactPrimary(t *testing.T) {
	assert.Equal(t, 1.0, score("software developers", "software developers", MatchPrimary))
}

func TestScore_MatchTypeMonotonicity(t *testing.T) {
	// For the same string pair, primary >= alternate >= partial.
	pairs := [][2]string{
		{"software engineer", "software developers"},
		{"web developer", "web developers"},
		{"engineer", "mechanical engineers"},
		{"registered nurse", "nurse practitioners"},
	}
	for _, p := range pairs {
		primary := score(p[0], p[1], MatchPrimary)
		alternate := score(p[0], p[1], MatchAlternate)
		partial := score(p[0], p[1], MatchPartial)
		assert.GreaterOrEqual(t, primary, alternate, "primary < alternate for %v", p)
		assert.GreaterOrEqual(t, alternate, partial, "alternate < partial for %v", p)
	}
}

func TestScore_SubstringBonus(t *testing.T) {
	// "engineer" is contained in "software engineer": edit similarity 8/17,
	// boosted by 1.1, plus the 0.15 containment bonus.
	got := score("engineer", "software engineer", MatchPrimary)
	want := (8.0/17.0)*1.1 + 0.15
	assert.InDelta(t, want, got, 1e-9)
}

func TestScore_WordOverlapFloor(t *testing.T) {
	// Same words in a different order score poorly on raw edit distance; the
	// overlap floor lifts the confidence to overlap * 0.8.
	got := score("senior engineer software", "software engineer senior", MatchAlternate)
	assert.Equal(t, 0.8, got)
}

func TestScore_PartialIdenticalNotPerfect(t *testing.T) {
	// A word-level entry identical to the query still carries the partial
	// penalty: 1.0*0.7 + 0.15 containment = 0.85, floored at 0.8 by overlap.
	assert.InDelta(t, 0.85, score("engineer", "engineer", MatchPartial), 1e-9)
}

func TestScore_ClampedToUnitInterval(t *testing.T) {
	pairs := [][2]string{
		{"a", "a"},
		{"software developers", "software developers"},
		{"x", "completely different title"},
		{"", "anything"},
	}
	for _, p := range pairs {
		for _, mt := range []MatchType{MatchPrimary, MatchAlternate, MatchPartial} {
			got := score(p[0], p[1], mt)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		}
	}
}
