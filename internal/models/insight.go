package models

import "time"

// Insight answer sources.
const (
	InsightSourceProvider = "provider"
	InsightSourceLocal    = "local"
)

// InsightAnswer is the response to a natural-language question. Source
// records whether the external provider or the deterministic local parser
// produced the text.
type InsightAnswer struct {
	Question    string    `json:"question"`
	Answer      string    `json:"answer"`
	Source      string    `json:"source"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Recommendation is a deterministic growth-based suggestion.
type Recommendation struct {
	MonthlyGrowthPct float64   `json:"monthly_growth_pct"`
	Message          string    `json:"message"`
	GeneratedAt      time.Time `json:"generated_at"`
}
