package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigil-intel/vigil-engine/pkg/models"
)

func TestMatch_ExactPhrase(t *testing.T) {
	fp := GenerateFingerprint("John Smith")

	match := Match("I had a meeting with John Smith yesterday", fp)
	require.NotNil(t, match)
	assert.Equal(t, models.MatchExact, match.MatchType)
	assert.Equal(t, ConfidenceExact, match.ConfidenceScore)
	assert.Equal(t, "John Smith", match.EntityName)
}

func TestMatch_NoMatch(t *testing.T) {
	fp := GenerateFingerprint("John Smith")

	assert.Nil(t, Match("completely unrelated text about weather", fp))
	assert.Nil(t, Match("", fp))
}

func TestMatch_AliasLayer(t *testing.T) {
	fp := GenerateFingerprint("John Smith")

	match := Match("according to j. smith the deal is off", fp)
	require.NotNil(t, match)
	assert.Equal(t, models.MatchAlias, match.MatchType)
	assert.Equal(t, ConfidenceAlias, match.ConfidenceScore)
}

func TestMatch_HandleLayer(t *testing.T) {
	fp := GenerateFingerprint("John Smith")

	match := Match("did you see what @john_smith posted", fp)
	require.NotNil(t, match)
	assert.Equal(t, models.MatchHandle, match.MatchType)
	assert.Equal(t, ConfidenceHandle, match.ConfidenceScore)
}

func TestMatch_ContextualLayer(t *testing.T) {
	fp := GenerateFingerprint("John Smith")

	// Name token plus a business keyword, but no full phrase.
	match := Match("smith runs that company badly", fp)
	require.NotNil(t, match)
	assert.Equal(t, models.MatchContextual, match.MatchType)
	assert.Equal(t, ConfidenceContextual, match.ConfidenceScore)
	assert.Contains(t, match.ContextKeywords, "company")
}

func TestMatch_ContextualRequiresKeyword(t *testing.T) {
	fp := GenerateFingerprint("John Smith")

	// Name token alone is too weak to count as a mention.
	assert.Nil(t, Match("smith went for a walk", fp))
}

func TestMatch_FuzzyLayer(t *testing.T) {
	fp := GenerateFingerprint("John Smith")

	match := Match("the johnsmith account again", fp)
	require.NotNil(t, match)
	assert.Equal(t, models.MatchFuzzy, match.MatchType)
	assert.Equal(t, ConfidenceFuzzy, match.ConfidenceScore)
}

func TestMatch_StrongerLayerWins(t *testing.T) {
	fp := GenerateFingerprint("John Smith")

	// Content that could satisfy several layers resolves to the strongest.
	match := Match("john smith aka @john_smith aka johnsmith", fp)
	require.NotNil(t, match)
	assert.Equal(t, models.MatchExact, match.MatchType)
}

func TestMatchesEntity_ConfidenceFloor(t *testing.T) {
	fp := GenerateFingerprint("John Smith")

	assert.True(t, MatchesEntity("john smith was here", fp, 0.6))
	assert.False(t, MatchesEntity("the johnsmith account", fp, 0.6), "fuzzy match is below the floor")
	assert.True(t, MatchesEntity("the johnsmith account", fp, 0.4))
}

func TestFilterMatches(t *testing.T) {
	fp := GenerateFingerprint("John Smith")

	contents := []string{
		"john smith was seen downtown",   // exact, kept
		"the johnsmith account again",    // fuzzy, discarded at 0.6
		"totally unrelated text",         // no match
		"@john_smith is at it again",     // handle, kept
	}

	kept, stats := FilterMatches(contents, fp, 0.6)

	assert.Equal(t, []int{0, 3}, kept)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 2, stats.Matched)
	assert.Equal(t, 2, stats.Discarded)
	assert.Equal(t, 1, stats.ByType[models.MatchExact])
	assert.Equal(t, 1, stats.ByType[models.MatchFuzzy])
	assert.Equal(t, 1, stats.ByType[models.MatchHandle])
}
