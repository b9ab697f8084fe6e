package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJaccard_SelfSimilarity(t *testing.T) {
	text := "this company is a complete scam avoid at all costs"
	assert.Equal(t, 1.0, Jaccard(text, text))
}

func TestJaccard_Symmetry(t *testing.T) {
	a := "total scam do not trust them"
	b := "scam alert do not buy"
	assert.Equal(t, Jaccard(a, b), Jaccard(b, a))
}

func TestJaccard_Disjoint(t *testing.T) {
	assert.Equal(t, 0.0, Jaccard("alpha beta gamma", "delta epsilon zeta"))
}

func TestJaccard_Empty(t *testing.T) {
	assert.Equal(t, 0.0, Jaccard("", ""))
	assert.Equal(t, 0.0, Jaccard("something", ""))
}

func TestJaccard_CaseInsensitive(t *testing.T) {
	assert.Equal(t, 1.0, Jaccard("Scam Alert", "scam alert"))
}

func TestJaccard_PartialOverlap(t *testing.T) {
	// 3 shared tokens, 5 in the union.
	sim := Jaccard("avoid this scam company", "avoid this scam outfit")
	assert.InDelta(t, 0.6, sim, 1e-9)
}

func TestSharedTokens(t *testing.T) {
	shared := SharedTokens(
		"avoid this terrible scam company",
		"scam company you should avoid",
		3,
	)

	// Tokens of 3 chars or fewer are dropped as evidence.
	assert.Equal(t, []string{"avoid", "company", "scam"}, shared)
}

func TestSharedTokens_None(t *testing.T) {
	assert.Empty(t, SharedTokens("alpha beta", "gamma delta", 3))
}
