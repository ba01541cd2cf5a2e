package occupation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein_KnownDistances(t *testing.T) {
	assert.Equal(t, 0, levenshtein("kitten", "kitten"))
	assert.Equal(t, 3, levenshtein("kitten", "sitting"))
	assert.Equal(t, 5, levenshtein("", "intro"))
	assert.Equal(t, 5, levenshtein("intro", ""))
	assert.Equal(t, 1, levenshtein("developer", "developers"))
}

func TestSimilarity_Identical(t *testing.T) {
	assert.Equal(t, 1.0, similarity("software developer", "software developer"))
}

func TestSimilarity_BothEmpty(t *testing.T) {
	// Similarity of two empty strings is defined as 1.
	assert.Equal(t, 1.0, similarity("", ""))
}

func TestSimilarity_Disjoint(t *testing.T) {
	// Completely different strings of equal length have similarity 0.
	assert.Equal(t, 0.0, similarity("abc", "xyz"))
}

func TestSimilarity_Normalized(t *testing.T) {
	// One edit over ten characters.
	assert.InDelta(t, 0.9, similarity("developer", "developers"), 1e-9)
}
