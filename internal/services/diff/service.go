// Package diff compares the newest recommendation set to the stored
// previous baseline and classifies each symbol as NEW, HOLD or SELL.
package diff

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mtasci89/weekly-wealth-advisor/internal/common"
	"github.com/mtasci89/weekly-wealth-advisor/internal/interfaces"
	"github.com/mtasci89/weekly-wealth-advisor/internal/models"
)

const (
	// previousKey is the single-slot baseline record.
	previousKey = "portfolio:previous"

	// materialDelta is the absolute allocation change at which a HOLD is
	// reported among the changed symbols.
	materialDelta = 3
)

// Service implements the DiffService interface on the key-value store.
type Service struct {
	kv     interfaces.KeyValueStore
	logger *common.Logger
}

// NewService creates a new diff service.
func NewService(kv interfaces.KeyValueStore, logger *common.Logger) *Service {
	return &Service{
		kv:     kv,
		logger: logger,
	}
}

// ComputeDiff classifies the given recommendations against the stored
// baseline. Repeatable: the baseline only moves on an explicit commit.
// A missing or corrupt baseline marks every symbol NEW.
func (s *Service) ComputeDiff(ctx context.Context, recommendations []models.PortfolioRecommendation) (*models.PortfolioDiff, error) {
	previous := s.loadPrevious(ctx)

	prevBySymbol := make(map[string]models.PreviousEntry, len(previous.Entries))
	for _, e := range previous.Entries {
		prevBySymbol[e.Symbol] = e
	}

	var news, holds, sells []models.RecommendationDiff

	seen := make(map[string]bool, len(recommendations))
	for _, rec := range recommendations {
		seen[rec.Symbol] = true
		prev, held := prevBySymbol[rec.Symbol]
		if !held {
			news = append(news, models.RecommendationDiff{
				Symbol:          rec.Symbol,
				Name:            rec.Name,
				Action:          models.DiffNew,
				Allocation:      rec.Allocation,
				AllocationDelta: rec.Allocation,
			})
			continue
		}
		holds = append(holds, models.RecommendationDiff{
			Symbol:          rec.Symbol,
			Name:            rec.Name,
			Action:          models.DiffHold,
			Allocation:      rec.Allocation,
			PrevAllocation:  prev.Allocation,
			AllocationDelta: rec.Allocation - prev.Allocation,
		})
	}

	for _, e := range previous.Entries {
		if seen[e.Symbol] {
			continue
		}
		sells = append(sells, models.RecommendationDiff{
			Symbol:          e.Symbol,
			Name:            e.Name,
			Action:          models.DiffSell,
			PrevAllocation:  e.Allocation,
			AllocationDelta: -e.Allocation,
		})
	}

	result := &models.PortfolioDiff{
		ComparedAt: time.Now(),
	}
	result.Entries = append(result.Entries, news...)
	result.Entries = append(result.Entries, holds...)
	result.Entries = append(result.Entries, sells...)

	for _, h := range holds {
		if h.AllocationDelta >= materialDelta || h.AllocationDelta <= -materialDelta {
			result.ChangedSymbols = append(result.ChangedSymbols, h.Symbol)
		}
	}
	result.HasChanges = len(news) > 0 || len(sells) > 0 || len(result.ChangedSymbols) > 0

	s.logger.Debug().
		Int("new", len(news)).
		Int("hold", len(holds)).
		Int("sell", len(sells)).
		Msg("Portfolio diff computed")

	return result, nil
}

// CommitPrevious overwrites the baseline with the snapshot's lines.
func (s *Service) CommitPrevious(ctx context.Context, snapshot *models.PortfolioSnapshot) error {
	record := models.PreviousRecommendations{
		Timestamp: snapshot.Timestamp,
		Entries:   make([]models.PreviousEntry, 0, len(snapshot.Recommendations)),
	}
	for _, rec := range snapshot.Recommendations {
		record.Entries = append(record.Entries, models.PreviousEntry{
			Symbol:     rec.Symbol,
			Name:       rec.Name,
			Allocation: rec.Allocation,
		})
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal previous recommendations: %w", err)
	}

	if err := s.kv.Set(ctx, previousKey, string(payload)); err != nil {
		return fmt.Errorf("persist previous recommendations: %w", err)
	}

	s.logger.Info().Int("entries", len(record.Entries)).Msg("Previous-recommendation baseline committed")
	return nil
}

// loadPrevious reads the baseline, treating a missing or corrupt record as
// empty.
func (s *Service) loadPrevious(ctx context.Context) models.PreviousRecommendations {
	var record models.PreviousRecommendations

	raw, err := s.kv.Get(ctx, previousKey)
	if err != nil {
		return record
	}

	if err := json.Unmarshal([]byte(raw), &record); err != nil {
		s.logger.Warn().Err(err).Msg("Previous-recommendation record corrupt, treating as empty")
		return models.PreviousRecommendations{}
	}

	return record
}

// Ensure Service implements DiffService
var _ interfaces.DiffService = (*Service)(nil)
