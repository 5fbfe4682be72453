package analysis

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/mtasci89/weekly-wealth-advisor/internal/models"
)

// aiCandidate is the relaxed decoding target for a model response.
// Allocations decode as floats so near-integer values survive.
type aiCandidate struct {
	Summary         string `json:"summary"`
	Recommendations []struct {
		Symbol     string  `json:"symbol"`
		Name       string  `json:"name"`
		Allocation float64 `json:"allocation"`
		Rationale  string  `json:"rationale"`
	} `json:"recommendations"`
	RiskNote      string `json:"risk_note"`
	WhyNow        string `json:"why_now"`
	Risks         string `json:"risks"`
	Opportunities string `json:"opportunities"`
}

// parseAIResult extracts the first balanced JSON object from a raw model
// response, validates it, and normalizes allocations to integers summing to
// exactly 100. Any failure returns an error; the caller falls back to the
// rule-based engine.
func parseAIResult(raw string) (*models.AnalysisResult, error) {
	payload, ok := extractJSONObject(raw)
	if !ok {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	var candidate aiCandidate
	if err := json.Unmarshal([]byte(payload), &candidate); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	if candidate.Summary == "" {
		return nil, fmt.Errorf("missing summary")
	}
	if len(candidate.Recommendations) == 0 {
		return nil, fmt.Errorf("no recommendations")
	}

	seen := make(map[string]bool, len(candidate.Recommendations))
	weights := make([]float64, len(candidate.Recommendations))
	for i, rec := range candidate.Recommendations {
		if rec.Symbol == "" {
			return nil, fmt.Errorf("recommendation %d has no symbol", i)
		}
		if seen[rec.Symbol] {
			return nil, fmt.Errorf("duplicate symbol %s", rec.Symbol)
		}
		seen[rec.Symbol] = true
		if rec.Allocation < 0 || math.IsNaN(rec.Allocation) || math.IsInf(rec.Allocation, 0) {
			return nil, fmt.Errorf("invalid allocation for %s", rec.Symbol)
		}
		weights[i] = rec.Allocation
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return nil, fmt.Errorf("allocations sum to %.2f", total)
	}

	// Within a small tolerance the normalization only absorbs rounding
	// drift; beyond it, it rescales every position proportionally.
	allocations := normalizeAllocations(weights)

	recommendations := make([]models.PortfolioRecommendation, len(candidate.Recommendations))
	for i, rec := range candidate.Recommendations {
		recommendations[i] = models.PortfolioRecommendation{
			Symbol:     rec.Symbol,
			Name:       rec.Name,
			Allocation: allocations[i],
			Rationale:  rec.Rationale,
		}
	}

	return &models.AnalysisResult{
		Summary:         candidate.Summary,
		Recommendations: recommendations,
		RiskNote:        candidate.RiskNote,
		WhyNow:          candidate.WhyNow,
		Risks:           candidate.Risks,
		Opportunities:   candidate.Opportunities,
	}, nil
}

// extractJSONObject returns the first balanced top-level JSON object in s.
// Brace counting is string-aware so braces inside string values do not
// terminate the scan.
func extractJSONObject(s string) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}

		switch c {
		case '"':
			if start >= 0 {
				inString = true
			}
		case '{':
			if start < 0 {
				start = i
			}
			depth++
		case '}':
			if start >= 0 {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}

	return "", false
}
