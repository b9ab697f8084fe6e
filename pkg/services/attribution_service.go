package services

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/corazawaf/libinjection-go"
	"go.uber.org/zap"

	"github.com/vigil-intel/vigil-engine/pkg/models"
)

// Scoring weights for the additive coordination point system.
const (
	weightRepeatedSentences = 0.3
	weightWordLengthAnomaly = 0.2
	weightBotPhrases        = 0.4
	weightOffHours          = 0.3
	weightDomainMismatch    = 0.4
	weightManyHandles       = 0.3
	weightInjectionPayload  = 0.3
)

// Coordination score bands for origin classification.
const (
	campaignThreshold = 0.7
	botnetThreshold   = 0.4
)

var botPhrases = []string{
	"click here",
	"act now",
	"limited time",
	"100% guaranteed",
	"make money fast",
	"dm me",
	"follow back",
	"link in bio",
}

// platformDomains maps a claimed platform to the domains its URLs should
// live on.
var platformDomains = map[string][]string{
	"twitter":   {"twitter.com", "x.com", "t.co"},
	"facebook":  {"facebook.com", "fb.com", "fb.me"},
	"instagram": {"instagram.com", "instagr.am"},
	"linkedin":  {"linkedin.com", "lnkd.in"},
	"reddit":    {"reddit.com", "redd.it"},
	"youtube":   {"youtube.com", "youtu.be"},
}

// AttributionService estimates who or what produced a threat and why.
type AttributionService interface {
	Assess(threat *models.ScanResult) *models.AttributionAssessment
}

type attributionService struct {
	logger *zap.Logger
}

// NewAttributionService creates a new AttributionService.
func NewAttributionService(logger *zap.Logger) AttributionService {
	return &attributionService{logger: logger.Named("attribution_service")}
}

var _ AttributionService = (*attributionService)(nil)

// Assess scores a threat against coordination indicators. The score is an
// additive point system clamped to [0,1], not a calibrated probability.
func (s *attributionService) Assess(threat *models.ScanResult) *models.AttributionAssessment {
	score := 0.0
	var indicators []string

	if hasRepeatedSentences(threat.Content) {
		score += weightRepeatedSentences
		indicators = append(indicators, "repetitive sentence structure")
	}
	if avg := averageWordLength(threat.Content); avg > 0 && (avg < 3 || avg > 7) {
		score += weightWordLengthAnomaly
		indicators = append(indicators, fmt.Sprintf("anomalous average word length (%.1f)", avg))
	}
	if phrase := firstBotPhrase(threat.Content); phrase != "" {
		score += weightBotPhrases
		indicators = append(indicators, "known bot phrase: "+phrase)
	}
	if hour := threat.CreatedAt.Hour(); hour < 6 || hour > 23 {
		score += weightOffHours
		indicators = append(indicators, fmt.Sprintf("posted off-hours (%02d:00)", hour))
	}
	if threat.URL != "" && !domainMatchesPlatform(threat.URL, threat.Platform) {
		score += weightDomainMismatch
		indicators = append(indicators, "url domain inconsistent with claimed platform")
	}
	if n := countHandles(threat.DetectedEntities); n > 5 {
		score += weightManyHandles
		indicators = append(indicators, fmt.Sprintf("%d distinct social handles referenced", n))
	}
	if sqli, _ := libinjection.IsSQLi(threat.Content); sqli {
		score += weightInjectionPayload
		indicators = append(indicators, "injection-style payload in content")
	}

	if score > 1.0 {
		score = 1.0
	}

	origin := models.OriginIndividual
	switch {
	case score > campaignThreshold:
		origin = models.OriginCampaign
	case score > botnetThreshold:
		origin = models.OriginBotnet
	}

	confidence := score + 0.3
	if confidence > 1.0 {
		confidence = 1.0
	}

	assessment := &models.AttributionAssessment{
		SuspectedOrigin:   origin,
		IntentProfile:     intentProfile(threat.Content),
		CoordinationScore: score,
		Confidence:        confidence,
		Indicators:        indicators,
		Reasoning:         reasoning(origin, score, indicators),
	}

	s.logger.Debug("attribution assessed",
		zap.String("origin", origin),
		zap.Float64("coordination_score", score),
		zap.Int("indicators", len(indicators)))

	return assessment
}

// hasRepeatedSentences reports whether any normalized sentence occurs more
// than once in the content.
func hasRepeatedSentences(content string) bool {
	seen := make(map[string]bool)
	for _, raw := range strings.FieldsFunc(content, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		sentence := strings.ToLower(strings.TrimSpace(raw))
		if len(sentence) < 10 {
			continue
		}
		if seen[sentence] {
			return true
		}
		seen[sentence] = true
	}
	return false
}

func averageWordLength(content string) float64 {
	words := strings.Fields(content)
	if len(words) == 0 {
		return 0
	}
	total := 0
	for _, w := range words {
		total += len(w)
	}
	return float64(total) / float64(len(words))
}

func firstBotPhrase(content string) string {
	lower := strings.ToLower(content)
	for _, phrase := range botPhrases {
		if strings.Contains(lower, phrase) {
			return phrase
		}
	}
	return ""
}

// domainMatchesPlatform reports whether the URL's host is a known domain for
// the claimed platform. Unknown platforms are not penalized.
func domainMatchesPlatform(rawURL, platform string) bool {
	domains, ok := platformDomains[strings.ToLower(platform)]
	if !ok {
		return true
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")

	for _, d := range domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func countHandles(entities []models.Entity) int {
	seen := make(map[string]bool)
	for _, e := range entities {
		if e.Type == models.EntityHandle {
			seen[strings.ToLower(e.Name)] = true
		}
	}
	return len(seen)
}

// intentProfile applies keyword rules to guess why the content was posted.
func intentProfile(content string) string {
	lower := strings.ToLower(content)
	switch {
	case containsAny(lower, "fake news", "hoax", "truth they", "cover up", "conspiracy"):
		return models.IntentDisinformation
	case containsAny(lower, "competitor", "switch to", "better alternative", "instead of"):
		return models.IntentCompetitive
	case containsAny(lower, "scam", "fraud", "avoid", "warning", "stay away", "do not trust"):
		return models.IntentReputationDamage
	case containsAny(lower, "you personally", "your family", "your house", "i know where"):
		return models.IntentPersonal
	default:
		return models.IntentHarassment
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func reasoning(origin string, score float64, indicators []string) string {
	if len(indicators) == 0 {
		return fmt.Sprintf("No coordination indicators found; assessed as %s activity.", origin)
	}
	return fmt.Sprintf("Assessed as %s activity (coordination score %.2f) based on: %s.",
		origin, score, strings.Join(indicators, "; "))
}
