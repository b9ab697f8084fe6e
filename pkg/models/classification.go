package models

// ThreatClassification is the LLM's structured assessment of a piece of
// content. Field names mirror the JSON the model is prompted to return.
type ThreatClassification struct {
	Category         string   `json:"category"`
	Severity         int      `json:"severity"`
	Explanation      string   `json:"explanation"`
	Recommendation   string   `json:"recommendation"`
	AIReasoning      string   `json:"ai_reasoning"`
	Confidence       float64  `json:"confidence"`
	DetectedEntities []string `json:"detectedEntities"`
	DetectedBeliefs  []string `json:"detectedBeliefs,omitempty"`
}
