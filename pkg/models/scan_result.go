// Package models contains domain types for vigil-engine.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Severity levels for a captured mention.
const (
	SeverityLow    = "low"
	SeverityMedium = "medium"
	SeverityHigh   = "high"
)

// Triage statuses for a scan result. Rows are never hard-deleted;
// they move through statuses instead.
const (
	StatusNew      = "new"
	StatusRead     = "read"
	StatusActioned = "actioned"
	StatusResolved = "resolved"
)

// Source types describing how a mention entered the system.
const (
	SourceManual  = "manual"
	SourceScraper = "scraper"
	SourceAPI     = "api"
)

// ScanResult is a captured mention of interest, with metadata used for triage.
type ScanResult struct {
	ID               uuid.UUID  `json:"id"`
	Content          string     `json:"content"`
	Platform         string     `json:"platform"`
	URL              string     `json:"url,omitempty"`
	Severity         string     `json:"severity"`
	Status           string     `json:"status"`
	ThreatType       string     `json:"threat_type,omitempty"`
	Sentiment        float64    `json:"sentiment"`
	ConfidenceScore  float64    `json:"confidence_score"`
	DetectedEntities []Entity   `json:"detected_entities"`
	RiskEntityName   string     `json:"risk_entity_name,omitempty"`
	RiskEntityType   string     `json:"risk_entity_type,omitempty"`
	ClientID         *uuid.UUID `json:"client_id,omitempty"`
	SourceType       string     `json:"source_type"`
	PotentialReach   int        `json:"potential_reach,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// ValidSeverity reports whether s is a known severity level.
func ValidSeverity(s string) bool {
	return s == SeverityLow || s == SeverityMedium || s == SeverityHigh
}

// ValidStatus reports whether s is a known triage status.
func ValidStatus(s string) bool {
	return s == StatusNew || s == StatusRead || s == StatusActioned || s == StatusResolved
}
