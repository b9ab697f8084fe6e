package analysis

import (
	"sort"
	"strings"
)

// Jaccard computes token-set similarity between two texts: the size of the
// intersection over the size of the union of their lowercased whitespace
// token sets. A text compared with itself yields exactly 1.0; the measure
// is symmetric. Two empty texts yield 0.
func Jaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}

	intersection := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// SharedTokens returns the sorted tokens longer than minLen that appear in
// both texts. Used as human-readable evidence on correlation edges.
func SharedTokens(a, b string, minLen int) []string {
	setB := tokenSet(b)
	var shared []string
	for token := range tokenSet(a) {
		if len(token) <= minLen {
			continue
		}
		if _, ok := setB[token]; ok {
			shared = append(shared, token)
		}
	}
	sort.Strings(shared)
	return shared
}

func tokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, token := range strings.Fields(strings.ToLower(text)) {
		set[token] = struct{}{}
	}
	return set
}
