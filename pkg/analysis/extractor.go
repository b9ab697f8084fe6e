package analysis

import (
	"regexp"
	"strings"

	"github.com/vigil-intel/vigil-engine/pkg/models"
)

// Fixed, non-adaptive extraction confidences per entity type.
const (
	ConfidenceExtractHandle  = 0.95
	ConfidenceExtractEmail   = 0.9
	ConfidenceExtractWebsite = 0.9
	ConfidenceExtractOrg     = 0.85
	ConfidenceExtractPerson  = 0.8
)

var (
	handleRegex  = regexp.MustCompile(`@[A-Za-z0-9_]{2,}`)
	emailRegex   = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	websiteRegex = regexp.MustCompile(`(?:https?://|www\.)[^\s"'<>]+`)
	personRegex  = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\b`)
	orgRegex     = regexp.MustCompile(`\b[A-Z][A-Za-z&.\-]*(?:\s+[A-Z][A-Za-z&.\-]*)*\s+(?:Inc|LLC|Ltd|Limited|Corp|Corporation|Company|Co|Group|Foundation|Association)\b\.?`)
)

// personStoplist suppresses capitalized-sequence false positives like
// "The Company" or "This Morning".
var personStoplist = []string{
	"The", "This", "That", "These", "Those", "Their", "Your", "Our",
}

// Extract runs the five independent regex passes over text and returns the
// deduplicated entities with fixed confidences and aggregated mention counts.
// It never errors; empty or matchless text yields an empty slice.
func Extract(text string) []models.Entity {
	if text == "" {
		return []models.Entity{}
	}

	found := make(map[string]*models.Entity)
	order := make([]string, 0)

	record := func(name, entityType string, confidence float64) {
		if existing, ok := found[name]; ok {
			existing.Mentions++
			return
		}
		found[name] = &models.Entity{
			Name:       name,
			Type:       entityType,
			Confidence: confidence,
			Mentions:   1,
		}
		order = append(order, name)
	}

	// Emails first so the handle pass can skip the user@host tail.
	emails := emailRegex.FindAllString(text, -1)
	for _, email := range emails {
		record(email, models.EntityEmail, ConfidenceExtractEmail)
	}

	for _, handle := range handleRegex.FindAllString(text, -1) {
		if isEmailFragment(handle, emails) {
			continue
		}
		record(handle, models.EntityHandle, ConfidenceExtractHandle)
	}

	for _, site := range websiteRegex.FindAllString(text, -1) {
		record(strings.TrimRight(site, ".,;:!?"), models.EntityWebsite, ConfidenceExtractWebsite)
	}

	for _, org := range orgRegex.FindAllString(text, -1) {
		record(strings.TrimSpace(org), models.EntityOrganization, ConfidenceExtractOrg)
	}

	for _, name := range personRegex.FindAllString(text, -1) {
		if hasStopWord(name) {
			continue
		}
		if coveredByOrganization(name, found) {
			continue
		}
		record(name, models.EntityPerson, ConfidenceExtractPerson)
	}

	entities := make([]models.Entity, 0, len(order))
	for _, name := range order {
		entities = append(entities, *found[name])
	}
	return entities
}

func hasStopWord(name string) bool {
	for _, word := range personStoplist {
		if strings.Contains(name, word) {
			return true
		}
	}
	return false
}

// isEmailFragment reports whether a would-be handle is actually the
// @domain part of an extracted email address.
func isEmailFragment(handle string, emails []string) bool {
	for _, email := range emails {
		if strings.Contains(email, handle) {
			return true
		}
	}
	return false
}

// coveredByOrganization suppresses person-pass hits that are prefixes of an
// already-extracted organization ("Acme Corp" vs "Acme Corp LLC").
func coveredByOrganization(name string, found map[string]*models.Entity) bool {
	for existing, entity := range found {
		if entity.Type == models.EntityOrganization && strings.Contains(existing, name) {
			return true
		}
	}
	return false
}
