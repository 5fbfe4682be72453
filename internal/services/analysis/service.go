// Package analysis implements the allocation recommendation engine: a
// deterministic rule-based path driven by risk-level blueprints, and an
// AI-augmented path that degrades to the rule-based result on timeout or
// on any recoverable response failure.
package analysis

import (
	"context"
	"time"

	"github.com/mtasci89/weekly-wealth-advisor/internal/common"
	"github.com/mtasci89/weekly-wealth-advisor/internal/interfaces"
	"github.com/mtasci89/weekly-wealth-advisor/internal/models"
)

const DefaultAITimeout = 45 * time.Second

// Service implements the AnalysisService interface.
type Service struct {
	ai        interfaces.AIClient // nil when no provider credential is configured
	aiTimeout time.Duration
	logger    *common.Logger
}

// ServiceOption configures the service
type ServiceOption func(*Service)

// WithAIClient attaches an AI provider for the augmented path.
func WithAIClient(ai interfaces.AIClient) ServiceOption {
	return func(s *Service) {
		s.ai = ai
	}
}

// WithAITimeout bounds the AI call before falling back.
func WithAITimeout(timeout time.Duration) ServiceOption {
	return func(s *Service) {
		if timeout > 0 {
			s.aiTimeout = timeout
		}
	}
}

// NewService creates a new analysis service.
func NewService(logger *common.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		aiTimeout: DefaultAITimeout,
		logger:    logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Analyze produces an allocation recommendation. The AI path runs only when
// requested and a provider is configured; it falls back to the rule-based
// engine on timeout, transport failure or an unusable response. Credential
// and rate-limit errors propagate so operators see them instead of a silent
// downgrade.
func (s *Service) Analyze(ctx context.Context, assets []models.Asset, opts interfaces.AnalysisOptions) (*models.AnalysisResult, error) {
	if !opts.RiskLevel.Valid() {
		opts.RiskLevel = models.RiskMedium
	}

	if !opts.UseAI || s.ai == nil {
		if opts.UseAI {
			s.logger.Info().Msg("AI requested but no provider configured, using rule-based engine")
		}
		return s.AnalyzeRuleBased(assets, opts.TargetReturn, opts.RiskLevel), nil
	}

	prompt := buildPrompt(assets, opts)

	type outcome struct {
		text string
		err  error
	}

	aiCtx, cancel := context.WithTimeout(ctx, s.aiTimeout)
	defer cancel()

	ch := make(chan outcome, 1)
	go func() {
		text, err := s.ai.GenerateContent(aiCtx, prompt)
		ch <- outcome{text: text, err: err}
	}()

	select {
	case <-aiCtx.Done():
		s.logger.Warn().Dur("timeout", s.aiTimeout).Msg("AI analysis timed out, using rule-based engine")
		return s.AnalyzeRuleBased(assets, opts.TargetReturn, opts.RiskLevel), nil

	case out := <-ch:
		if out.err != nil {
			if common.IsCredentialError(out.err) || common.IsRateLimitError(out.err) {
				return nil, out.err
			}
			s.logger.Warn().Err(out.err).Msg("AI analysis failed, using rule-based engine")
			return s.AnalyzeRuleBased(assets, opts.TargetReturn, opts.RiskLevel), nil
		}

		result, err := parseAIResult(out.text)
		if err != nil {
			s.logger.Warn().Err(err).Msg("AI response rejected, using rule-based engine")
			return s.AnalyzeRuleBased(assets, opts.TargetReturn, opts.RiskLevel), nil
		}

		result.Timestamp = time.Now()
		result.IsAIGenerated = true
		if result.RiskNote == "" {
			result.RiskNote = riskNotes[opts.RiskLevel]
		}
		s.logger.Info().Int("recommendations", len(result.Recommendations)).Msg("AI analysis accepted")
		return result, nil
	}
}

// Ensure Service implements AnalysisService
var _ interfaces.AnalysisService = (*Service)(nil)
