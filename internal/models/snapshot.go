package models

import "time"

// SnapshotRecommendation is one persisted allocation line with its entry price.
type SnapshotRecommendation struct {
	Symbol                string  `json:"symbol"`
	Name                  string  `json:"name"`
	Allocation            int     `json:"allocation"`
	PriceAtRecommendation float64 `json:"price_at_recommendation"`
}

// PortfolioSnapshot is the durable record of one recommendation event, used
// for later performance comparison. Never mutated after creation.
type PortfolioSnapshot struct {
	ID              string                   `json:"id"`
	Timestamp       time.Time                `json:"timestamp"`
	Recommendations []SnapshotRecommendation `json:"recommendations"`
	TargetReturn    float64                  `json:"target_return"`
	RiskLevel       RiskLevel                `json:"risk_level"`
	DataSource      string                   `json:"data_source"`
}

// PerformanceMetric is the derived performance of one snapshot line against
// the current feed. Not persisted.
type PerformanceMetric struct {
	Symbol               string  `json:"symbol"`
	Name                 string  `json:"name"`
	Allocation           int     `json:"allocation"`
	EntryPrice           float64 `json:"entry_price"`
	CurrentPrice         float64 `json:"current_price"`
	ChangePct            float64 `json:"change_pct"`            // 2-decimal
	WeightedContribution float64 `json:"weighted_contribution"` // 3-decimal
}

// PerformanceResult is the derived performance of a whole snapshot.
type PerformanceResult struct {
	SnapshotID       string              `json:"snapshot_id"`
	Timestamp        time.Time           `json:"timestamp"`
	DaysSince        int                 `json:"days_since"`
	Metrics          []PerformanceMetric `json:"metrics"`
	TotalPnL         float64             `json:"total_pnl"` // 2-decimal
	HasCurrentPrices bool                `json:"has_current_prices"`
}

// DiffAction classifies a symbol's movement between two recommendation sets.
type DiffAction string

const (
	DiffNew  DiffAction = "NEW"
	DiffHold DiffAction = "HOLD"
	DiffSell DiffAction = "SELL"
)

// RecommendationDiff is the classification of one symbol across two
// successive recommendation sets.
type RecommendationDiff struct {
	Symbol          string     `json:"symbol"`
	Name            string     `json:"name"`
	Action          DiffAction `json:"action"`
	Allocation      int        `json:"allocation"`      // new allocation (0 for SELL)
	PrevAllocation  int        `json:"prev_allocation"` // previous allocation (0 for NEW)
	AllocationDelta int        `json:"allocation_delta"`
}

// PortfolioDiff compares the newest recommendation set to the previously
// stored one. Entries are ordered NEW, then HOLD, then SELL.
type PortfolioDiff struct {
	Entries        []RecommendationDiff `json:"entries"`
	ChangedSymbols []string             `json:"changed_symbols"` // HOLDs with |delta| >= 3
	HasChanges     bool                 `json:"has_changes"`
	ComparedAt     time.Time            `json:"compared_at"`
}

// PreviousEntry is one (symbol, name, allocation) triple in the
// single-slot previous-recommendation record.
type PreviousEntry struct {
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	Allocation int    `json:"allocation"`
}

// PreviousRecommendations is the single persisted baseline the diff engine
// compares against. Overwritten only by an explicit commit step.
type PreviousRecommendations struct {
	Timestamp time.Time       `json:"timestamp"`
	Entries   []PreviousEntry `json:"entries"`
}
