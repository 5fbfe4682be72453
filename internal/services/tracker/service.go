// Package tracker persists recommendation snapshots and measures their
// performance against the live feed.
package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/mtasci89/weekly-wealth-advisor/internal/common"
	"github.com/mtasci89/weekly-wealth-advisor/internal/interfaces"
	"github.com/mtasci89/weekly-wealth-advisor/internal/models"
)

const (
	// snapshotsKey holds the bounded FIFO snapshot history.
	snapshotsKey = "portfolio:snapshots"

	// maxSnapshots bounds the history; the oldest entry is evicted first.
	maxSnapshots = 10
)

// Service implements the SnapshotService interface on the key-value store.
type Service struct {
	kv     interfaces.KeyValueStore
	logger *common.Logger
}

// NewService creates a new tracker service.
func NewService(kv interfaces.KeyValueStore, logger *common.Logger) *Service {
	return &Service{
		kv:     kv,
		logger: logger,
	}
}

// BuildSnapshot joins recommendations against the asset universe to record
// entry prices. Lines whose symbol is absent from the feed or priced at or
// below zero are dropped; the join is lossy by design of the price record.
func (s *Service) BuildSnapshot(result *models.AnalysisResult, assets []models.Asset, targetReturn float64, risk models.RiskLevel, dataSource string) *models.PortfolioSnapshot {
	prices := make(map[string]float64, len(assets))
	for i := range assets {
		if assets[i].Investable() {
			prices[assets[i].Symbol] = assets[i].Price
		}
	}

	now := time.Now()
	snapshot := &models.PortfolioSnapshot{
		ID:           fmt.Sprintf("snap-%s-%s", now.Format("20060102-150405"), uuid.NewString()[:8]),
		Timestamp:    now,
		TargetReturn: targetReturn,
		RiskLevel:    risk,
		DataSource:   dataSource,
	}

	for _, rec := range result.Recommendations {
		price, ok := prices[rec.Symbol]
		if !ok {
			s.logger.Debug().Str("symbol", rec.Symbol).Msg("Dropping snapshot line without a usable price")
			continue
		}
		snapshot.Recommendations = append(snapshot.Recommendations, models.SnapshotRecommendation{
			Symbol:                rec.Symbol,
			Name:                  rec.Name,
			Allocation:            rec.Allocation,
			PriceAtRecommendation: price,
		})
	}

	return snapshot
}

// SaveSnapshot appends the snapshot to the stored history, evicting the
// oldest entry once the cap is reached.
func (s *Service) SaveSnapshot(ctx context.Context, snapshot *models.PortfolioSnapshot) error {
	history, err := s.ListSnapshots(ctx)
	if err != nil {
		return err
	}

	history = append(history, *snapshot)
	if len(history) > maxSnapshots {
		history = history[len(history)-maxSnapshots:]
	}

	payload, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("marshal snapshot history: %w", err)
	}

	if err := s.kv.Set(ctx, snapshotsKey, string(payload)); err != nil {
		return fmt.Errorf("persist snapshot history: %w", err)
	}

	s.logger.Info().Str("id", snapshot.ID).Int("history", len(history)).Msg("Snapshot saved")
	return nil
}

// ListSnapshots returns the stored history, oldest first. A missing or
// corrupt record yields an empty history rather than an error.
func (s *Service) ListSnapshots(ctx context.Context) ([]models.PortfolioSnapshot, error) {
	raw, err := s.kv.Get(ctx, snapshotsKey)
	if err != nil {
		return []models.PortfolioSnapshot{}, nil
	}

	var history []models.PortfolioSnapshot
	if err := json.Unmarshal([]byte(raw), &history); err != nil {
		s.logger.Warn().Err(err).Msg("Snapshot history corrupt, treating as empty")
		return []models.PortfolioSnapshot{}, nil
	}

	return history, nil
}

// GetSnapshot returns one snapshot by ID.
func (s *Service) GetSnapshot(ctx context.Context, id string) (*models.PortfolioSnapshot, error) {
	history, err := s.ListSnapshots(ctx)
	if err != nil {
		return nil, err
	}

	for i := range history {
		if history[i].ID == id {
			return &history[i], nil
		}
	}

	return nil, fmt.Errorf("snapshot %s not found", id)
}

// CalculatePerformance joins a snapshot with the current feed. Lines whose
// symbol has left the feed are skipped entirely, not counted as zero;
// HasCurrentPrices reports whether at least one line matched.
func (s *Service) CalculatePerformance(snapshot *models.PortfolioSnapshot, currentAssets []models.Asset) *models.PerformanceResult {
	prices := make(map[string]float64, len(currentAssets))
	for i := range currentAssets {
		if currentAssets[i].Investable() {
			prices[currentAssets[i].Symbol] = currentAssets[i].Price
		}
	}

	result := &models.PerformanceResult{
		SnapshotID: snapshot.ID,
		Timestamp:  snapshot.Timestamp,
		DaysSince:  int(time.Since(snapshot.Timestamp).Hours() / 24),
	}

	total := 0.0
	for _, rec := range snapshot.Recommendations {
		current, ok := prices[rec.Symbol]
		if !ok || rec.PriceAtRecommendation <= 0 {
			s.logger.Debug().Str("symbol", rec.Symbol).Msg("Skipping performance line without a current price")
			continue
		}

		metric := models.PerformanceMetric{
			Symbol:       rec.Symbol,
			Name:         rec.Name,
			Allocation:   rec.Allocation,
			EntryPrice:   rec.PriceAtRecommendation,
			CurrentPrice: current,
		}
		metric.ChangePct = round2((current - rec.PriceAtRecommendation) / rec.PriceAtRecommendation * 100)
		metric.WeightedContribution = round3(metric.ChangePct * float64(rec.Allocation) / 100)
		total += metric.WeightedContribution

		result.Metrics = append(result.Metrics, metric)
	}

	result.HasCurrentPrices = len(result.Metrics) > 0
	result.TotalPnL = round2(total)
	return result
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Ensure Service implements SnapshotService
var _ interfaces.SnapshotService = (*Service)(nil)
