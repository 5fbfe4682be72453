package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mtasci89/weekly-wealth-advisor/internal/models"
)

// minimumPicks is the floor on portfolio breadth; when blueprint slots
// cannot fill it, the best unused weekly gainers are appended at zero weight.
const minimumPicks = 3

// pick is one selected asset together with its raw blueprint weight.
type pick struct {
	asset  models.Asset
	weight float64
	pool   Pool
}

// AnalyzeRuleBased runs the deterministic engine: partition investable
// assets into pools, fill the risk blueprint's slots with the best weekly
// performers, then normalize raw weights into integer percentages that sum
// to exactly 100.
func (s *Service) AnalyzeRuleBased(assets []models.Asset, targetReturn float64, risk models.RiskLevel) *models.AnalysisResult {
	if !risk.Valid() {
		risk = models.RiskMedium
	}

	investable := make([]models.Asset, 0, len(assets))
	for i := range assets {
		if assets[i].Investable() {
			investable = append(investable, assets[i])
		}
	}

	result := &models.AnalysisResult{
		Timestamp: time.Now(),
		RiskNote:  riskNotes[risk],
	}

	picks := selectPicks(blueprintFor(risk), partition(investable))
	picks = ensureMinimumPicks(picks, investable)
	if len(picks) == 0 {
		result.Summary = "No investable assets were available this week; no allocation was produced."
		result.Recommendations = []models.PortfolioRecommendation{}
		return result
	}

	weights := make([]float64, len(picks))
	for i, p := range picks {
		weights[i] = p.weight
	}
	allocations := normalizeAllocations(weights)

	recommendations := make([]models.PortfolioRecommendation, len(picks))
	for i, p := range picks {
		recommendations[i] = models.PortfolioRecommendation{
			Symbol:     p.asset.Symbol,
			Name:       p.asset.Name,
			Allocation: allocations[i],
			Rationale:  rationaleFor(p),
		}
	}

	result.Recommendations = recommendations
	result.Summary = buildSummary(investable, picks, allocations, targetReturn, risk)

	s.logger.Debug().
		Str("risk", string(risk)).
		Int("investable", len(investable)).
		Int("picks", len(picks)).
		Msg("Rule-based analysis complete")

	return result
}

// partition groups investable assets into pools, each sorted by weekly
// change descending.
func partition(assets []models.Asset) map[Pool][]models.Asset {
	pools := make(map[Pool][]models.Asset)
	for i := range assets {
		p := poolFor(&assets[i])
		pools[p] = append(pools[p], assets[i])
	}
	for p := range pools {
		list := pools[p]
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].WeeklyChangePct > list[j].WeeklyChangePct
		})
	}
	return pools
}

// selectPicks fills each blueprint slot with its pool's best unused
// performers. A slot's target percentage splits evenly across the assets it
// actually fills; pools with nothing left forfeit their share entirely.
// A symbol is never selected twice across slots.
func selectPicks(slots []BlueprintSlot, pools map[Pool][]models.Asset) []pick {
	used := make(map[string]bool)
	var picks []pick

	for _, slot := range slots {
		var selected []models.Asset
		for _, a := range pools[slot.Pool] {
			if len(selected) == slot.Picks {
				break
			}
			if used[a.Symbol] {
				continue
			}
			selected = append(selected, a)
			used[a.Symbol] = true
		}
		if len(selected) == 0 {
			continue
		}
		per := slot.TargetPct / float64(len(selected))
		for _, a := range selected {
			picks = append(picks, pick{asset: a, weight: per, pool: slot.Pool})
		}
	}

	return picks
}

// ensureMinimumPicks pads a thin selection with the best unused weekly
// gainers at zero weight so normalization decides their share.
func ensureMinimumPicks(picks []pick, investable []models.Asset) []pick {
	if len(picks) >= minimumPicks {
		return picks
	}

	used := make(map[string]bool, len(picks))
	for _, p := range picks {
		used[p.asset.Symbol] = true
	}

	candidates := make([]models.Asset, 0, len(investable))
	for i := range investable {
		if !used[investable[i].Symbol] {
			candidates = append(candidates, investable[i])
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].WeeklyChangePct > candidates[j].WeeklyChangePct
	})

	for _, a := range candidates {
		if len(picks) >= minimumPicks {
			break
		}
		picks = append(picks, pick{asset: a, weight: 0, pool: poolFor(&a)})
	}

	return picks
}

// normalizeAllocations converts raw weights into integer percentages summing
// to exactly 100: every entry but the last rounds, the last absorbs the
// remainder and never drops below 1, borrowing from the largest position
// when rounding overshoots. A non-positive total falls back to an equal
// split.
func normalizeAllocations(weights []float64) []int {
	n := len(weights)
	if n == 0 {
		return nil
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		for i := range weights {
			weights[i] = 1
		}
		total = float64(n)
	}

	allocations := make([]int, n)
	sum := 0
	for i := 0; i < n-1; i++ {
		allocations[i] = int(math.Round(weights[i] / total * 100))
		sum += allocations[i]
	}

	last := 100 - sum
	if last < 1 {
		deficit := 1 - last
		last = 1
		maxIdx := 0
		for i := 1; i < n-1; i++ {
			if allocations[i] > allocations[maxIdx] {
				maxIdx = i
			}
		}
		allocations[maxIdx] -= deficit
	}
	allocations[n-1] = last

	return allocations
}

// rationaleFor produces a one-line, pool-flavored explanation citing the
// asset's weekly move.
func rationaleFor(p pick) string {
	wc := p.asset.WeeklyChangePct
	switch p.pool {
	case PoolDomestic:
		return fmt.Sprintf("Top domestic equity performer with a %+.2f%% weekly move", wc)
	case PoolETF:
		return fmt.Sprintf("Diversified ETF exposure, %+.2f%% this week", wc)
	case PoolFund:
		return fmt.Sprintf("Managed fund with a %+.2f%% weekly result", wc)
	case PoolCrypto:
		return fmt.Sprintf("Crypto momentum position, %+.2f%% this week", wc)
	case PoolCommodity:
		return fmt.Sprintf("Commodity hedge, %+.2f%% weekly change", wc)
	case PoolBond:
		return fmt.Sprintf("Income-oriented holding, %+.2f%% weekly change", wc)
	default:
		return fmt.Sprintf("Strong weekly return of %+.2f%%", wc)
	}
}

// buildSummary narrates market breadth, the extremes and the portfolio's
// expected weekly return, with a caution when that pace trails the target.
func buildSummary(investable []models.Asset, picks []pick, allocations []int, targetReturn float64, risk models.RiskLevel) string {
	gainers, losers := 0, 0
	best, worst := investable[0], investable[0]
	for _, a := range investable {
		if a.WeeklyChangePct > 0 {
			gainers++
		} else if a.WeeklyChangePct < 0 {
			losers++
		}
		if a.WeeklyChangePct > best.WeeklyChangePct {
			best = a
		}
		if a.WeeklyChangePct < worst.WeeklyChangePct {
			worst = a
		}
	}

	expected := 0.0
	for i, p := range picks {
		expected += float64(allocations[i]) * p.asset.WeeklyChangePct / 100
	}
	expected = math.Round(expected*100) / 100

	summary := fmt.Sprintf(
		"%d of %d tracked assets gained this week, %d declined. Best performer: %s (%+.2f%%), worst: %s (%+.2f%%). The %s-risk allocation carries an expected weekly return of %.2f%% based on current momentum.",
		gainers, len(investable), losers,
		best.Symbol, best.WeeklyChangePct,
		worst.Symbol, worst.WeeklyChangePct,
		risk, expected,
	)

	weekly := weeklyTargetEquivalent(targetReturn)
	if expected < weekly {
		summary += fmt.Sprintf(
			" Caution: this trails the %.2f%% weekly pace implied by the %.1f%% monthly target.",
			weekly, targetReturn,
		)
	}

	return summary
}

// weeklyTargetEquivalent converts a monthly percentage target into its
// compounded weekly equivalent, treating a month as four weeks.
func weeklyTargetEquivalent(monthlyPct float64) float64 {
	return (math.Pow(1+monthlyPct/100, 0.25) - 1) * 100
}
