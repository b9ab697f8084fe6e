package models

import (
	"time"

	"github.com/google/uuid"
)

// Correlation types detected by the correlation engine.
const (
	CorrelationLanguage = "language_similarity"
	CorrelationUsername = "username_pattern"
	CorrelationTiming   = "timing_pattern"
)

// Risk levels attached to correlations and case threads.
const (
	RiskLow      = "low"
	RiskMedium   = "medium"
	RiskHigh     = "high"
	RiskCritical = "critical"
)

// ThreatCorrelation is a detected relationship between two or more scan
// results, based on shared text, handles, or timing. Correlations are
// derived values; only case threads persist them in aggregate.
type ThreatCorrelation struct {
	ID              string      `json:"id"`
	ThreatIDs       []uuid.UUID `json:"threat_ids"`
	CorrelationType string      `json:"correlation_type"`
	Confidence      float64     `json:"confidence"`
	Evidence        []string    `json:"evidence"`
	RiskLevel       string      `json:"risk_level"`
}

// Case thread statuses.
const (
	CaseOpen   = "open"
	CaseActive = "active"
	CaseClosed = "closed"
)

// CaseThread aggregates a set of threats and their correlations under an
// operator-assigned title for investigation.
type CaseThread struct {
	ID                 uuid.UUID           `json:"id"`
	Title              string              `json:"title"`
	Status             string              `json:"status"`
	Priority           string              `json:"priority"`
	ThreatIDs          []uuid.UUID         `json:"threat_ids"`
	CorrelationSummary []ThreatCorrelation `json:"correlation_summary"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}
