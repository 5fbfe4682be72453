package analysis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mtasci89/weekly-wealth-advisor/internal/common"
	"github.com/mtasci89/weekly-wealth-advisor/internal/interfaces"
	"github.com/mtasci89/weekly-wealth-advisor/internal/models"
)

// mockAIClient is a configurable AIClient test double.
type mockAIClient struct {
	response string
	err      error
	delay    time.Duration
}

func (m *mockAIClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return m.response, m.err
}

func makeAsset(symbol string, typ models.AssetType, category string, price, weekly float64) models.Asset {
	return models.Asset{
		Symbol:          symbol,
		Name:            symbol + " Asset",
		Type:            typ,
		Category:        category,
		Price:           price,
		WeeklyChangePct: weekly,
	}
}

// broadUniverse covers every pool so each blueprint slot can fill.
func broadUniverse() []models.Asset {
	return []models.Asset{
		makeAsset("THYAO", models.AssetStock, "bist", 280, 4.2),
		makeAsset("ASELS", models.AssetStock, "bist", 62, 2.1),
		makeAsset("GARAN", models.AssetStock, "bist", 95, -1.3),
		makeAsset("AAPL", models.AssetStock, "us", 212, 1.8),
		makeAsset("MSFT", models.AssetStock, "us", 430, 0.9),
		makeAsset("SPX", models.AssetIndex, "us", 5400, 1.1),
		makeAsset("GLDTR", models.AssetETF, "etf", 45, 0.6),
		makeAsset("TFF", models.AssetFund, "fund", 12, 0.8),
		makeAsset("AFA", models.AssetFund, "fund", 9, 0.4),
		makeAsset("BTC", models.AssetCrypto, "crypto", 67000, 6.5),
		makeAsset("ETH", models.AssetCrypto, "crypto", 3500, 3.2),
		makeAsset("XAUUSD", models.AssetCommodity, "commodity", 2400, 0.7),
		makeAsset("USDTRY", models.AssetForex, "forex", 33, 0.3),
		makeAsset("TRBOND", models.AssetBond, "bond", 100, 0.2),
	}
}

func newTestService(opts ...ServiceOption) *Service {
	return NewService(common.NewSilentLogger(), opts...)
}

func TestAnalyzeRuleBased_AllocationsSumTo100(t *testing.T) {
	svc := newTestService()

	for _, risk := range []models.RiskLevel{models.RiskLow, models.RiskMedium, models.RiskHigh} {
		result := svc.AnalyzeRuleBased(broadUniverse(), 10, risk)

		require.NotEmpty(t, result.Recommendations, "risk %s", risk)
		sum := 0
		seen := make(map[string]bool)
		for _, rec := range result.Recommendations {
			sum += rec.Allocation
			assert.False(t, seen[rec.Symbol], "duplicate symbol %s at risk %s", rec.Symbol, risk)
			seen[rec.Symbol] = true
			assert.NotEmpty(t, rec.Rationale)
		}
		assert.Equal(t, 100, sum, "risk %s", risk)
		assert.False(t, result.IsAIGenerated)
		assert.NotEmpty(t, result.Summary)
		assert.NotEmpty(t, result.RiskNote)
	}
}

func TestAnalyzeRuleBased_PicksBestWeeklyPerformers(t *testing.T) {
	svc := newTestService()

	result := svc.AnalyzeRuleBased(broadUniverse(), 10, models.RiskMedium)

	symbols := make(map[string]int)
	for _, rec := range result.Recommendations {
		symbols[rec.Symbol] = rec.Allocation
	}

	// Medium blueprint takes the two best domestic equities and the single
	// best crypto.
	assert.Contains(t, symbols, "THYAO")
	assert.Contains(t, symbols, "ASELS")
	assert.Contains(t, symbols, "BTC")
	assert.NotContains(t, symbols, "GARAN")
	assert.NotContains(t, symbols, "ETH")
}

func TestAnalyzeRuleBased_LowRiskFavorsFunds(t *testing.T) {
	svc := newTestService()
	assets := []models.Asset{
		makeAsset("TFF", models.AssetFund, "fund", 12, 1.0),
		makeAsset("AFA", models.AssetFund, "fund", 9, 2.0),
		makeAsset("TRBOND", models.AssetBond, "bond", 100, 0.5),
		makeAsset("THYAO", models.AssetStock, "bist", 280, 3.0),
		makeAsset("GLDTR", models.AssetETF, "etf", 45, 1.5),
		makeAsset("BTC", models.AssetCrypto, "crypto", 67000, 5.0),
	}

	result := svc.AnalyzeRuleBased(assets, 10, models.RiskLow)

	require.GreaterOrEqual(t, len(result.Recommendations), 5)
	sum := 0
	funds := 0
	crypto := 0
	for _, rec := range result.Recommendations {
		sum += rec.Allocation
		switch rec.Symbol {
		case "TFF", "AFA":
			funds += rec.Allocation
		case "BTC":
			crypto = rec.Allocation
		}
	}

	assert.Equal(t, 100, sum)
	// Empty foreign and commodity pools forfeit their share, so the fund
	// sleeve scales slightly above its nominal 30 and crypto stays near
	// its 5-point slot.
	assert.GreaterOrEqual(t, funds, 28)
	assert.LessOrEqual(t, funds, 36)
	assert.GreaterOrEqual(t, crypto, 3)
	assert.LessOrEqual(t, crypto, 7)
}

func TestAnalyzeRuleBased_GainerFallbackPadsThinSelection(t *testing.T) {
	svc := newTestService()
	// Only one blueprint pool is populated at medium risk; the remaining
	// foreign stocks arrive through the gainer fallback.
	assets := []models.Asset{
		makeAsset("BTC", models.AssetCrypto, "crypto", 67000, 6.5),
		makeAsset("AAPL", models.AssetStock, "us", 212, 1.8),
		makeAsset("MSFT", models.AssetStock, "us", 430, 0.9),
		makeAsset("NVDA", models.AssetStock, "us", 120, 5.0),
	}

	result := svc.AnalyzeRuleBased(assets, 10, models.RiskMedium)

	require.GreaterOrEqual(t, len(result.Recommendations), 3)
	sum := 0
	for _, rec := range result.Recommendations {
		sum += rec.Allocation
	}
	assert.Equal(t, 100, sum)
}

func TestAnalyzeRuleBased_GainerFallbackWhenNoSlotFills(t *testing.T) {
	svc := newTestService()
	// The medium blueprint has no ETF slot, so an all-ETF universe fills
	// nothing; the gainer fallback must still produce a portfolio.
	assets := []models.Asset{
		makeAsset("GLDTR", models.AssetETF, "etf", 45, 1.0),
		makeAsset("QQQTR", models.AssetETF, "etf", 80, 2.5),
		makeAsset("SPYTR", models.AssetETF, "etf", 120, -0.5),
	}

	result := svc.AnalyzeRuleBased(assets, 10, models.RiskMedium)

	require.Len(t, result.Recommendations, 3)
	assert.Equal(t, "QQQTR", result.Recommendations[0].Symbol, "best weekly gainer first")

	sum := 0
	for _, rec := range result.Recommendations {
		sum += rec.Allocation
		assert.Positive(t, rec.Allocation)
	}
	assert.Equal(t, 100, sum)
}

func TestAnalyzeRuleBased_SkipsNonInvestableAssets(t *testing.T) {
	svc := newTestService()
	assets := []models.Asset{
		makeAsset("DEAD", models.AssetStock, "bist", 0, 9.9),
		makeAsset("THYAO", models.AssetStock, "bist", 280, 4.2),
		makeAsset("BTC", models.AssetCrypto, "crypto", 67000, 6.5),
		makeAsset("GLDTR", models.AssetETF, "etf", 45, 0.6),
	}

	result := svc.AnalyzeRuleBased(assets, 10, models.RiskMedium)

	for _, rec := range result.Recommendations {
		assert.NotEqual(t, "DEAD", rec.Symbol)
	}
}

func TestAnalyzeRuleBased_EmptyUniverse(t *testing.T) {
	svc := newTestService()

	result := svc.AnalyzeRuleBased(nil, 10, models.RiskMedium)

	assert.Empty(t, result.Recommendations)
	assert.NotEmpty(t, result.Summary)
	assert.False(t, result.IsAIGenerated)
}

func TestAnalyzeRuleBased_InvalidRiskDefaultsToMedium(t *testing.T) {
	svc := newTestService()

	got := svc.AnalyzeRuleBased(broadUniverse(), 10, models.RiskLevel("aggressive"))
	want := svc.AnalyzeRuleBased(broadUniverse(), 10, models.RiskMedium)

	assert.Equal(t, want.Recommendations, got.Recommendations)
}

func TestNormalizeAllocations(t *testing.T) {
	t.Run("sums to exactly 100", func(t *testing.T) {
		allocations := normalizeAllocations([]float64{12.5, 12.5, 25, 15, 15, 5})
		sum := 0
		for _, a := range allocations {
			sum += a
		}
		assert.Equal(t, 100, sum)
	})

	t.Run("zero total falls back to equal split", func(t *testing.T) {
		allocations := normalizeAllocations([]float64{0, 0, 0, 0})
		assert.Equal(t, []int{25, 25, 25, 25}, allocations)
	})

	t.Run("last entry never drops below one", func(t *testing.T) {
		allocations := normalizeAllocations([]float64{60, 40, 0.1})
		assert.GreaterOrEqual(t, allocations[len(allocations)-1], 1)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Nil(t, normalizeAllocations(nil))
	})
}

const validAIResponse = `Here is my allocation analysis:
{
  "summary": "Momentum favors domestic equities and crypto this week.",
  "recommendations": [
    {"symbol": "THYAO", "name": "Turkish Airlines", "allocation": 30, "rationale": "Strong weekly momentum"},
    {"symbol": "BTC", "name": "Bitcoin", "allocation": 25, "rationale": "Crypto leadership"},
    {"symbol": "GLDTR", "name": "Gold ETF", "allocation": 25, "rationale": "Hedge"},
    {"symbol": "TFF", "name": "Bond Fund", "allocation": 20, "rationale": "Stability"}
  ],
  "risk_note": "Concentrated positions carry drawdown risk.",
  "why_now": "Breadth improved across equities.",
  "risks": "A risk-off turn would hit crypto hardest.",
  "opportunities": "Domestic equities may extend gains."
}
Let me know if you need adjustments.`

func TestParseAIResult(t *testing.T) {
	t.Run("valid response with surrounding prose", func(t *testing.T) {
		result, err := parseAIResult(validAIResponse)
		require.NoError(t, err)

		assert.Equal(t, "Momentum favors domestic equities and crypto this week.", result.Summary)
		require.Len(t, result.Recommendations, 4)
		sum := 0
		for _, rec := range result.Recommendations {
			sum += rec.Allocation
		}
		assert.Equal(t, 100, sum)
		assert.Equal(t, "Breadth improved across equities.", result.WhyNow)
	})

	t.Run("no JSON object", func(t *testing.T) {
		_, err := parseAIResult("I cannot produce an allocation right now.")
		assert.Error(t, err)
	})

	t.Run("missing summary", func(t *testing.T) {
		_, err := parseAIResult(`{"recommendations":[{"symbol":"BTC","allocation":100}]}`)
		assert.Error(t, err)
	})

	t.Run("empty recommendations", func(t *testing.T) {
		_, err := parseAIResult(`{"summary":"ok","recommendations":[]}`)
		assert.Error(t, err)
	})

	t.Run("duplicate symbols rejected", func(t *testing.T) {
		_, err := parseAIResult(`{"summary":"ok","recommendations":[
			{"symbol":"BTC","allocation":50},{"symbol":"BTC","allocation":50}]}`)
		assert.Error(t, err)
	})

	t.Run("small drift absorbed into last entry", func(t *testing.T) {
		result, err := parseAIResult(`{"summary":"ok","recommendations":[
			{"symbol":"A","allocation":49},{"symbol":"B","allocation":49}]}`)
		require.NoError(t, err)
		sum := 0
		for _, rec := range result.Recommendations {
			sum += rec.Allocation
		}
		assert.Equal(t, 100, sum)
	})

	t.Run("large deviation rescaled proportionally", func(t *testing.T) {
		result, err := parseAIResult(`{"summary":"ok","recommendations":[
			{"symbol":"A","allocation":100},{"symbol":"B","allocation":100}]}`)
		require.NoError(t, err)
		require.Len(t, result.Recommendations, 2)
		assert.Equal(t, 50, result.Recommendations[0].Allocation)
		assert.Equal(t, 50, result.Recommendations[1].Allocation)
	})

	t.Run("negative allocation rejected", func(t *testing.T) {
		_, err := parseAIResult(`{"summary":"ok","recommendations":[
			{"symbol":"A","allocation":-10},{"symbol":"B","allocation":110}]}`)
		assert.Error(t, err)
	})
}

func TestExtractJSONObject_BracesInsideStrings(t *testing.T) {
	payload, ok := extractJSONObject(`prefix {"summary":"a {tricky} value","recommendations":[]} suffix`)
	require.True(t, ok)
	assert.Equal(t, `{"summary":"a {tricky} value","recommendations":[]}`, payload)
}

func TestAnalyze_AIPathAccepted(t *testing.T) {
	svc := newTestService(WithAIClient(&mockAIClient{response: validAIResponse}))

	result, err := svc.Analyze(context.Background(), broadUniverse(), interfaces.AnalysisOptions{
		TargetReturn: 10,
		RiskLevel:    models.RiskMedium,
		UseAI:        true,
	})

	require.NoError(t, err)
	assert.True(t, result.IsAIGenerated)
	assert.Len(t, result.Recommendations, 4)
}

func TestAnalyze_MalformedAIResponseFallsBack(t *testing.T) {
	svc := newTestService(WithAIClient(&mockAIClient{response: "not json at all"}))

	result, err := svc.Analyze(context.Background(), broadUniverse(), interfaces.AnalysisOptions{
		TargetReturn: 10,
		RiskLevel:    models.RiskMedium,
		UseAI:        true,
	})

	require.NoError(t, err)
	assert.False(t, result.IsAIGenerated)

	ruleBased := svc.AnalyzeRuleBased(broadUniverse(), 10, models.RiskMedium)
	assert.Equal(t, ruleBased.Recommendations, result.Recommendations)
}

func TestAnalyze_CredentialErrorPropagates(t *testing.T) {
	svc := newTestService(WithAIClient(&mockAIClient{err: common.ErrInvalidCredential}))

	_, err := svc.Analyze(context.Background(), broadUniverse(), interfaces.AnalysisOptions{
		TargetReturn: 10,
		RiskLevel:    models.RiskMedium,
		UseAI:        true,
	})

	require.Error(t, err)
	assert.True(t, common.IsCredentialError(err))
}

func TestAnalyze_RateLimitErrorPropagates(t *testing.T) {
	svc := newTestService(WithAIClient(&mockAIClient{err: common.ErrRateLimited}))

	_, err := svc.Analyze(context.Background(), broadUniverse(), interfaces.AnalysisOptions{
		TargetReturn: 10,
		RiskLevel:    models.RiskMedium,
		UseAI:        true,
	})

	require.Error(t, err)
	assert.True(t, common.IsRateLimitError(err))
}

func TestAnalyze_TimeoutFallsBack(t *testing.T) {
	svc := newTestService(
		WithAIClient(&mockAIClient{response: validAIResponse, delay: 500 * time.Millisecond}),
		WithAITimeout(20*time.Millisecond),
	)

	start := time.Now()
	result, err := svc.Analyze(context.Background(), broadUniverse(), interfaces.AnalysisOptions{
		TargetReturn: 10,
		RiskLevel:    models.RiskMedium,
		UseAI:        true,
	})

	require.NoError(t, err)
	assert.False(t, result.IsAIGenerated)
	assert.Less(t, time.Since(start), 400*time.Millisecond)
}

func TestAnalyze_NoClientUsesRuleBased(t *testing.T) {
	svc := newTestService()

	result, err := svc.Analyze(context.Background(), broadUniverse(), interfaces.AnalysisOptions{
		TargetReturn: 10,
		RiskLevel:    models.RiskHigh,
		UseAI:        true,
	})

	require.NoError(t, err)
	assert.False(t, result.IsAIGenerated)
	assert.NotEmpty(t, result.Recommendations)
}

func TestBuildPrompt_IncludesContext(t *testing.T) {
	rsi := 75.0
	prompt := buildPrompt(broadUniverse(), interfaces.AnalysisOptions{
		TargetReturn: 10,
		RiskLevel:    models.RiskMedium,
		MacroContext: "Central bank held rates steady.",
		Signals: []models.TechnicalSignal{
			{Symbol: "THYAO", RSI14: &rsi, Signal: models.SignalSell, Label: "overbought"},
		},
	})

	assert.Contains(t, prompt, "THYAO")
	assert.Contains(t, prompt, "Central bank held rates steady.")
	assert.Contains(t, prompt, "RSI14 75.00")
	assert.Contains(t, prompt, "sum to exactly 100")
	assert.NotContains(t, prompt, "DEAD")
}
