package interfaces

import (
	"context"

	"github.com/mtasci89/weekly-wealth-advisor/internal/models"
)

// AnalysisOptions configures one allocation analysis run.
type AnalysisOptions struct {
	TargetReturn float64                  // target monthly return, percent
	RiskLevel    models.RiskLevel         // low/medium/high
	UseAI        bool                     // attempt the AI-augmented path
	MacroContext string                   // optional free-text macro commentary for the prompt
	Signals      []models.TechnicalSignal // optional technical enrichment for the prompt
}

// AnalysisService produces allocation recommendations.
type AnalysisService interface {
	// Analyze runs the AI-augmented path when requested and configured,
	// degrading to the deterministic rule-based engine on timeout or on any
	// recoverable validation failure. Credential and rate-limit errors
	// propagate instead of falling back.
	Analyze(ctx context.Context, assets []models.Asset, opts AnalysisOptions) (*models.AnalysisResult, error)

	// AnalyzeRuleBased runs only the deterministic engine. Pure and cheap;
	// safe to invoke repeatedly, including as a timeout substitute.
	AnalyzeRuleBased(assets []models.Asset, targetReturn float64, risk models.RiskLevel) *models.AnalysisResult
}

// SnapshotService persists recommendation events and computes performance.
type SnapshotService interface {
	// BuildSnapshot joins recommendations against the asset feed to capture
	// entry prices, dropping lines with an unknown or non-positive price.
	BuildSnapshot(result *models.AnalysisResult, assets []models.Asset, targetReturn float64, risk models.RiskLevel, dataSource string) *models.PortfolioSnapshot

	// SaveSnapshot appends to the bounded FIFO history (10 most recent).
	SaveSnapshot(ctx context.Context, snapshot *models.PortfolioSnapshot) error

	// ListSnapshots returns the stored history, newest last.
	ListSnapshots(ctx context.Context) ([]models.PortfolioSnapshot, error)

	// GetSnapshot returns one snapshot by ID.
	GetSnapshot(ctx context.Context, id string) (*models.PortfolioSnapshot, error)

	// CalculatePerformance joins a snapshot with the current feed.
	CalculatePerformance(snapshot *models.PortfolioSnapshot, currentAssets []models.Asset) *models.PerformanceResult
}

// DiffService compares successive recommendation sets.
type DiffService interface {
	// ComputeDiff classifies each symbol as NEW/HOLD/SELL against the stored
	// previous-recommendation baseline. Repeatable: computing a diff does not
	// advance the baseline.
	ComputeDiff(ctx context.Context, recommendations []models.PortfolioRecommendation) (*models.PortfolioDiff, error)

	// CommitPrevious overwrites the baseline with the given snapshot's lines.
	CommitPrevious(ctx context.Context, snapshot *models.PortfolioSnapshot) error
}
