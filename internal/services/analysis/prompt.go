package analysis

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mtasci89/weekly-wealth-advisor/internal/interfaces"
	"github.com/mtasci89/weekly-wealth-advisor/internal/models"
)

const topMoversCount = 5

// buildPrompt assembles the analysis prompt: target and risk context,
// category performance, the week's extremes, the full symbol universe,
// optional technical signals and macro commentary, and a strict JSON
// output contract. No credential material ever enters the prompt.
func buildPrompt(assets []models.Asset, opts interfaces.AnalysisOptions) string {
	investable := make([]models.Asset, 0, len(assets))
	for i := range assets {
		if assets[i].Investable() {
			investable = append(investable, assets[i])
		}
	}

	var b strings.Builder

	b.WriteString("You are a portfolio allocation assistant for a weekly rebalanced portfolio.\n\n")
	fmt.Fprintf(&b, "Date: %s\n", time.Now().Format("2006-01-02"))
	fmt.Fprintf(&b, "Target return: %.1f%% monthly (%.2f%% compounded weekly equivalent)\n",
		opts.TargetReturn, weeklyTargetEquivalent(opts.TargetReturn))
	fmt.Fprintf(&b, "Risk profile: %s\n\n", opts.RiskLevel)

	writeCategoryPerformance(&b, investable)
	writeMovers(&b, investable)
	writeUniverse(&b, investable)
	writeSignals(&b, opts.Signals)

	if opts.MacroContext != "" {
		b.WriteString("Macro context:\n")
		b.WriteString(opts.MacroContext)
		b.WriteString("\n\n")
	}

	writeGuidance(&b, opts.RiskLevel)
	writeOutputContract(&b)

	return b.String()
}

func writeCategoryPerformance(b *strings.Builder, assets []models.Asset) {
	sums := make(map[Pool]float64)
	counts := make(map[Pool]int)
	for i := range assets {
		p := poolFor(&assets[i])
		sums[p] += assets[i].WeeklyChangePct
		counts[p]++
	}

	pools := make([]Pool, 0, len(sums))
	for p := range sums {
		pools = append(pools, p)
	}
	sort.Slice(pools, func(i, j int) bool { return pools[i] < pools[j] })

	b.WriteString("Category performance this week (average change):\n")
	for _, p := range pools {
		fmt.Fprintf(b, "- %s: %+.2f%% across %d assets\n", p, sums[p]/float64(counts[p]), counts[p])
	}
	b.WriteString("\n")
}

func writeMovers(b *strings.Builder, assets []models.Asset) {
	sorted := make([]models.Asset, len(assets))
	copy(sorted, assets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].WeeklyChangePct > sorted[j].WeeklyChangePct
	})

	top := topMoversCount
	if top > len(sorted) {
		top = len(sorted)
	}

	b.WriteString("Top weekly gainers:\n")
	for _, a := range sorted[:top] {
		fmt.Fprintf(b, "- %s (%s): %+.2f%%\n", a.Symbol, a.Name, a.WeeklyChangePct)
	}
	b.WriteString("Top weekly losers:\n")
	for _, a := range sorted[len(sorted)-top:] {
		fmt.Fprintf(b, "- %s (%s): %+.2f%%\n", a.Symbol, a.Name, a.WeeklyChangePct)
	}
	b.WriteString("\n")
}

func writeUniverse(b *strings.Builder, assets []models.Asset) {
	b.WriteString("Available symbols (only recommend from this list):\n")
	for _, a := range assets {
		fmt.Fprintf(b, "- %s | %s | %s | weekly %+.2f%%\n", a.Symbol, a.Name, a.Type, a.WeeklyChangePct)
	}
	b.WriteString("\n")
}

func writeSignals(b *strings.Builder, signals []models.TechnicalSignal) {
	if len(signals) == 0 {
		return
	}
	b.WriteString("Technical signals:\n")
	for _, s := range signals {
		fmt.Fprintf(b, "- %s: %s", s.Symbol, s.Signal)
		if s.RSI14 != nil {
			fmt.Fprintf(b, ", RSI14 %.2f", *s.RSI14)
		}
		if s.Label != "" {
			fmt.Fprintf(b, " (%s)", s.Label)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func writeGuidance(b *strings.Builder, risk models.RiskLevel) {
	b.WriteString("Suggested category weighting for this risk profile:\n")
	for _, slot := range blueprintFor(risk) {
		fmt.Fprintf(b, "- %s: about %.0f%% across up to %d positions\n", slot.Pool, slot.TargetPct, slot.Picks)
	}
	b.WriteString("\n")
}

func writeOutputContract(b *strings.Builder) {
	b.WriteString(`Respond with a single JSON object and nothing else, in this exact shape:
{
  "summary": "one-paragraph market and portfolio summary",
  "recommendations": [
    {"symbol": "SYM", "name": "Asset Name", "allocation": 25, "rationale": "one sentence"}
  ],
  "risk_note": "one-sentence risk disclaimer",
  "why_now": "why this allocation fits the current week",
  "risks": "main downside scenarios",
  "opportunities": "main upside scenarios"
}
Rules:
- allocation values are integer percentages and must sum to exactly 100
- recommend 4 to 8 positions, each symbol exactly once
- use only symbols from the available list
`)
}
