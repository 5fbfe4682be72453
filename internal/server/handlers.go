package server

import (
	"net/http"
	"time"

	"github.com/mtasci89/weekly-wealth-advisor/internal/common"
	"github.com/mtasci89/weekly-wealth-advisor/internal/interfaces"
	"github.com/mtasci89/weekly-wealth-advisor/internal/models"
	"github.com/mtasci89/weekly-wealth-advisor/internal/services/tracker"
	"github.com/mtasci89/weekly-wealth-advisor/internal/signals"
)

// handleHealth responds to GET/HEAD /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleVersion responds to GET /api/version with build info.
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
		"uptime":  time.Since(s.app.StartupTime).Round(time.Second).String(),
	})
}

// analyzeRequest is the POST /api/analyze body.
type analyzeRequest struct {
	TargetReturn float64 `json:"target_return"`
	RiskLevel    string  `json:"risk_level"`
	UseAI        bool    `json:"use_ai"`
	MacroContext string  `json:"macro_context"`
	Save         *bool   `json:"save"` // persist a snapshot; defaults to true
}

// analyzeResponse pairs the analysis with its persisted snapshot ID.
type analyzeResponse struct {
	Analysis   *models.AnalysisResult `json:"analysis"`
	SnapshotID string                 `json:"snapshot_id,omitempty"`
}

// handleAnalyze runs one allocation analysis: fetch the universe, enrich
// with technical signals, analyze, and optionally persist a snapshot.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if s.app.FeedClient == nil {
		WriteError(w, http.StatusServiceUnavailable, "Asset feed is not configured")
		return
	}

	var req analyzeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	risk := models.RiskLevel(req.RiskLevel)
	if req.RiskLevel != "" && !risk.Valid() {
		WriteError(w, http.StatusBadRequest, "risk_level must be low, medium or high")
		return
	}
	if !risk.Valid() {
		risk = models.RiskMedium
	}

	assets, err := s.app.FeedClient.FetchAssets(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Asset feed fetch failed")
		WriteError(w, http.StatusBadGateway, "Failed to fetch asset universe")
		return
	}

	result, err := s.app.AnalysisService.Analyze(r.Context(), assets, interfaces.AnalysisOptions{
		TargetReturn: req.TargetReturn,
		RiskLevel:    risk,
		UseAI:        req.UseAI,
		MacroContext: req.MacroContext,
		Signals:      computeSignals(assets),
	})
	if err != nil {
		switch {
		case common.IsCredentialError(err):
			WriteError(w, http.StatusUnauthorized, "AI provider rejected the configured credential")
		case common.IsRateLimitError(err):
			WriteError(w, http.StatusTooManyRequests, "AI provider rate limit reached")
		default:
			WriteError(w, http.StatusInternalServerError, "Analysis failed")
		}
		return
	}

	resp := analyzeResponse{Analysis: result}

	if req.Save == nil || *req.Save {
		dataSource := "rule-based"
		if result.IsAIGenerated {
			dataSource = "ai"
		}
		snapshot := s.app.SnapshotService.BuildSnapshot(result, assets, req.TargetReturn, risk, dataSource)
		if err := s.app.SnapshotService.SaveSnapshot(r.Context(), snapshot); err != nil {
			s.logger.Error().Err(err).Msg("Snapshot save failed")
		} else {
			resp.SnapshotID = snapshot.ID
		}
	}

	WriteJSON(w, http.StatusOK, resp)
}

// handleSignals responds to GET /api/signals with per-symbol technical
// signals computed from each asset's sparkline.
func (s *Server) handleSignals(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	if s.app.FeedClient == nil {
		WriteError(w, http.StatusServiceUnavailable, "Asset feed is not configured")
		return
	}

	assets, err := s.app.FeedClient.FetchAssets(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Asset feed fetch failed")
		WriteError(w, http.StatusBadGateway, "Failed to fetch asset universe")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"signals": computeSignals(assets),
	})
}

// handleSnapshotList responds to GET /api/snapshots.
func (s *Server) handleSnapshotList(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	history, err := s.app.SnapshotService.ListSnapshots(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to load snapshots")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"snapshots": history,
		"count":     len(history),
	})
}

// handleSnapshotGet responds to GET /api/snapshots/{id}.
func (s *Server) handleSnapshotGet(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	snapshot, err := s.app.SnapshotService.GetSnapshot(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Snapshot not found")
		return
	}

	WriteJSON(w, http.StatusOK, snapshot)
}

// handleSnapshotPerformance responds to GET /api/snapshots/{id}/performance.
func (s *Server) handleSnapshotPerformance(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	perf, ok := s.snapshotPerformance(w, r, id)
	if !ok {
		return
	}

	WriteJSON(w, http.StatusOK, perf)
}

// handleSnapshotChart responds to GET /api/snapshots/{id}/chart with a PNG
// bar chart of weighted contributions.
func (s *Server) handleSnapshotChart(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	perf, ok := s.snapshotPerformance(w, r, id)
	if !ok {
		return
	}

	png, err := tracker.RenderPerformanceChart(perf)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, "Chart unavailable: "+err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

// snapshotPerformance loads a snapshot and joins it with the current feed,
// writing the error response itself on failure.
func (s *Server) snapshotPerformance(w http.ResponseWriter, r *http.Request, id string) (*models.PerformanceResult, bool) {
	if s.app.FeedClient == nil {
		WriteError(w, http.StatusServiceUnavailable, "Asset feed is not configured")
		return nil, false
	}

	snapshot, err := s.app.SnapshotService.GetSnapshot(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Snapshot not found")
		return nil, false
	}

	assets, err := s.app.FeedClient.FetchAssets(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Asset feed fetch failed")
		WriteError(w, http.StatusBadGateway, "Failed to fetch asset universe")
		return nil, false
	}

	return s.app.SnapshotService.CalculatePerformance(snapshot, assets), true
}

// handleDiff responds to GET /api/diff: the latest snapshot's lines against
// the committed baseline. Computing a diff never advances the baseline.
func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	latest, ok := s.latestSnapshot(w, r)
	if !ok {
		return
	}

	recommendations := make([]models.PortfolioRecommendation, 0, len(latest.Recommendations))
	for _, rec := range latest.Recommendations {
		recommendations = append(recommendations, models.PortfolioRecommendation{
			Symbol:     rec.Symbol,
			Name:       rec.Name,
			Allocation: rec.Allocation,
		})
	}

	result, err := s.app.DiffService.ComputeDiff(r.Context(), recommendations)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Diff computation failed")
		return
	}

	WriteJSON(w, http.StatusOK, result)
}

// diffCommitRequest is the POST /api/diff/commit body.
type diffCommitRequest struct {
	SnapshotID string `json:"snapshot_id"` // defaults to the latest snapshot
}

// handleDiffCommit overwrites the diff baseline with a snapshot's lines.
func (s *Server) handleDiffCommit(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req diffCommitRequest
	if r.ContentLength > 0 && !DecodeJSON(w, r, &req) {
		return
	}

	var snapshot *models.PortfolioSnapshot
	if req.SnapshotID != "" {
		found, err := s.app.SnapshotService.GetSnapshot(r.Context(), req.SnapshotID)
		if err != nil {
			WriteError(w, http.StatusNotFound, "Snapshot not found")
			return
		}
		snapshot = found
	} else {
		latest, ok := s.latestSnapshot(w, r)
		if !ok {
			return
		}
		snapshot = latest
	}

	if err := s.app.DiffService.CommitPrevious(r.Context(), snapshot); err != nil {
		WriteError(w, http.StatusInternalServerError, "Baseline commit failed")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":      "committed",
		"snapshot_id": snapshot.ID,
	})
}

// latestSnapshot returns the newest stored snapshot, writing the error
// response itself when the history is empty.
func (s *Server) latestSnapshot(w http.ResponseWriter, r *http.Request) (*models.PortfolioSnapshot, bool) {
	history, err := s.app.SnapshotService.ListSnapshots(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to load snapshots")
		return nil, false
	}
	if len(history) == 0 {
		WriteError(w, http.StatusNotFound, "No snapshots recorded yet")
		return nil, false
	}
	return &history[len(history)-1], true
}

// computeSignals derives technical signals for every asset carrying a
// sparkline.
func computeSignals(assets []models.Asset) []models.TechnicalSignal {
	var result []models.TechnicalSignal
	for i := range assets {
		if len(assets[i].Sparkline) == 0 {
			continue
		}
		result = append(result, signals.Compute(assets[i].Symbol, assets[i].Sparkline))
	}
	return result
}
