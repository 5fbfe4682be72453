package models

import "time"

// RiskLevel controls the allocation blueprint's category weighting.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Valid reports whether the risk level is one of the known values.
func (r RiskLevel) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh:
		return true
	}
	return false
}

// PortfolioRecommendation is one allocation line in a proposed portfolio.
type PortfolioRecommendation struct {
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	Allocation int    `json:"allocation"` // integer percentage, 0-100
	Rationale  string `json:"rationale"`
}

// AnalysisResult is the engine's complete output for one invocation.
// Recommendations are ordered by display priority and their allocations
// always sum to exactly 100.
type AnalysisResult struct {
	Summary         string                    `json:"summary"`
	Recommendations []PortfolioRecommendation `json:"recommendations"`
	RiskNote        string                    `json:"risk_note"`
	Timestamp       time.Time                 `json:"timestamp"`
	WhyNow          string                    `json:"why_now,omitempty"`
	Risks           string                    `json:"risks,omitempty"`
	Opportunities   string                    `json:"opportunities,omitempty"`
	IsAIGenerated   bool                      `json:"is_ai_generated"`
}
