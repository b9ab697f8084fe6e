package models

// Entity types recognized by the extractor.
const (
	EntityPerson       = "person"
	EntityOrganization = "organization"
	EntityHandle       = "handle"
	EntityEmail        = "email"
	EntityWebsite      = "website"
	EntityLocation     = "location"
	EntityUnknown      = "unknown"
)

// Entity is a named person, organization, or handle that the system
// attempts to recognize in text.
type Entity struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	Mentions   int     `json:"mentions"`
}

// EntityFingerprint is a derived bundle of string patterns used to test
// whether text refers to a specific entity. It is a pure function of the
// entity name and is never persisted.
type EntityFingerprint struct {
	EntityName        string   `json:"entity_name"`
	ExactPhrases      []string `json:"exact_phrases"`
	AliasVariations   []string `json:"alias_variations"`
	ContextualPhrases []string `json:"contextual_phrases"`
	BusinessContexts  []string `json:"business_contexts"`
	LocationContexts  []string `json:"location_contexts"`
	NegativeKeywords  []string `json:"negative_keywords"`
	SocialHandles     []string `json:"social_handles"`
	FuzzyVariations   []string `json:"fuzzy_variations"`
}

// Match types produced by the layered matcher, strongest first.
const (
	MatchExact      = "exact"
	MatchAlias      = "alias"
	MatchHandle     = "handle"
	MatchContextual = "contextual"
	MatchFuzzy      = "fuzzy"
)

// EntityMatch is the matcher's judgement that a piece of content is about
// a specific entity, with the layer that fired and its confidence.
type EntityMatch struct {
	EntityName      string   `json:"entity_name"`
	MatchedText     string   `json:"matched_text"`
	MatchType       string   `json:"match_type"`
	ConfidenceScore float64  `json:"confidence_score"`
	ContextKeywords []string `json:"context_keywords,omitempty"`
}

// MatchStats summarizes a batch filtering pass over candidate content.
type MatchStats struct {
	Total     int            `json:"total"`
	Matched   int            `json:"matched"`
	Discarded int            `json:"discarded"`
	ByType    map[string]int `json:"by_type"`
}
