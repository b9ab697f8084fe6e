package analysis

import (
	"strings"

	"github.com/vigil-intel/vigil-engine/pkg/models"
)

// Layered match confidences, strongest layer first. These are heuristic
// tie-breaks with no formal precision/recall guarantee; they mirror the
// calibration the pipeline shipped with.
const (
	ConfidenceExact      = 1.0
	ConfidenceAlias      = 0.85
	ConfidenceHandle     = 0.8
	ConfidenceContextual = 0.6
	ConfidenceFuzzy      = 0.4
)

// Match tests content against a fingerprint using layered substring checks,
// first matching layer wins. Returns nil when no layer fires.
func Match(content string, fp *models.EntityFingerprint) *models.EntityMatch {
	normalized := strings.ToLower(strings.TrimSpace(content))
	if normalized == "" {
		return nil
	}

	for _, phrase := range fp.ExactPhrases {
		if phrase != "" && strings.Contains(normalized, phrase) {
			return &models.EntityMatch{
				EntityName:      fp.EntityName,
				MatchedText:     phrase,
				MatchType:       models.MatchExact,
				ConfidenceScore: ConfidenceExact,
			}
		}
	}

	for _, alias := range fp.AliasVariations {
		if alias != "" && strings.Contains(normalized, alias) {
			return &models.EntityMatch{
				EntityName:      fp.EntityName,
				MatchedText:     alias,
				MatchType:       models.MatchAlias,
				ConfidenceScore: ConfidenceAlias,
			}
		}
	}

	for _, handle := range fp.SocialHandles {
		if handle != "" && strings.Contains(normalized, handle) {
			return &models.EntityMatch{
				EntityName:      fp.EntityName,
				MatchedText:     handle,
				MatchType:       models.MatchHandle,
				ConfidenceScore: ConfidenceHandle,
			}
		}
	}

	if match := matchContextual(normalized, fp); match != nil {
		return match
	}

	for _, fuzzy := range fp.FuzzyVariations {
		if fuzzy != "" && strings.Contains(normalized, fuzzy) {
			return &models.EntityMatch{
				EntityName:      fp.EntityName,
				MatchedText:     fuzzy,
				MatchType:       models.MatchFuzzy,
				ConfidenceScore: ConfidenceFuzzy,
			}
		}
	}

	return nil
}

// matchContextual requires a name token to appear alongside at least one
// business, location, or negative keyword. The name token alone is too weak
// to count as a mention.
func matchContextual(normalized string, fp *models.EntityFingerprint) *models.EntityMatch {
	if !hasNameToken(normalized, fp) {
		return nil
	}

	var keywords []string
	for _, group := range [][]string{fp.BusinessContexts, fp.LocationContexts, fp.NegativeKeywords} {
		for _, kw := range group {
			if kw != "" && strings.Contains(normalized, kw) {
				keywords = append(keywords, kw)
			}
		}
	}
	if len(keywords) == 0 {
		return nil
	}

	snippet := normalized
	if len(snippet) > 100 {
		snippet = snippet[:100]
	}
	return &models.EntityMatch{
		EntityName:      fp.EntityName,
		MatchedText:     snippet,
		MatchType:       models.MatchContextual,
		ConfidenceScore: ConfidenceContextual,
		ContextKeywords: keywords,
	}
}

// hasNameToken reports whether any individual token of the entity name
// appears in the content.
func hasNameToken(normalized string, fp *models.EntityFingerprint) bool {
	for _, token := range strings.Fields(strings.ToLower(fp.EntityName)) {
		if len(token) > 2 && strings.Contains(normalized, token) {
			return true
		}
	}
	return false
}

// MatchesEntity reports whether content is judged to be about the entity,
// at or above the given confidence floor.
func MatchesEntity(content string, fp *models.EntityFingerprint, minConfidence float64) bool {
	match := Match(content, fp)
	return match != nil && match.ConfidenceScore >= minConfidence
}

// FilterMatches runs the matcher over a batch of candidate texts and returns
// the indices that pass the confidence floor plus filtering statistics.
func FilterMatches(contents []string, fp *models.EntityFingerprint, minConfidence float64) ([]int, models.MatchStats) {
	stats := models.MatchStats{
		Total:  len(contents),
		ByType: make(map[string]int),
	}

	var kept []int
	for i, content := range contents {
		match := Match(content, fp)
		if match == nil {
			continue
		}
		stats.ByType[match.MatchType]++
		if match.ConfidenceScore >= minConfidence {
			kept = append(kept, i)
		}
	}

	stats.Matched = len(kept)
	stats.Discarded = stats.Total - stats.Matched
	return kept, stats
}
