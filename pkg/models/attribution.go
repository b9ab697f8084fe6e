package models

// Suspected origins produced by the attribution engine.
const (
	OriginIndividual = "individual"
	OriginBotnet     = "botnet"
	OriginCampaign   = "campaign"
	OriginUnknown    = "unknown"
)

// Intent profiles produced by the attribution engine.
const (
	IntentHarassment       = "harassment"
	IntentDisinformation   = "disinformation"
	IntentCompetitive      = "competitive"
	IntentReputationDamage = "reputation_damage"
	IntentPersonal         = "personal"
)

// AttributionAssessment is a heuristic guess at who or what produced a
// threat and why. The coordination score is an additive point system, not
// a calibrated probability.
type AttributionAssessment struct {
	SuspectedOrigin   string   `json:"suspected_origin"`
	IntentProfile     string   `json:"intent_profile"`
	CoordinationScore float64  `json:"coordination_score"`
	Confidence        float64  `json:"confidence"`
	Indicators        []string `json:"indicators"`
	Reasoning         string   `json:"reasoning"`
}
