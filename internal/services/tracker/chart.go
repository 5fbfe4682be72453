package tracker

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/mtasci89/weekly-wealth-advisor/internal/models"
)

// RenderPerformanceChart renders a PNG bar chart of each position's weighted
// contribution to the snapshot's total P&L.
func RenderPerformanceChart(perf *models.PerformanceResult) ([]byte, error) {
	if len(perf.Metrics) == 0 {
		return nil, fmt.Errorf("no metrics to chart")
	}

	flat := true
	bars := make([]chart.Value, 0, len(perf.Metrics))
	for _, m := range perf.Metrics {
		if m.WeightedContribution != 0 {
			flat = false
		}
		bars = append(bars, chart.Value{
			Value: m.WeightedContribution,
			Label: m.Symbol,
		})
	}
	if flat {
		// The renderer rejects a zero value range.
		return nil, fmt.Errorf("all contributions are zero, nothing to chart")
	}

	graph := chart.BarChart{
		Title:    fmt.Sprintf("Weighted contribution since %s (total %+.2f%%)", perf.Timestamp.Format("2006-01-02"), perf.TotalPnL),
		Height:   512,
		BarWidth: 48,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}

	return buf.Bytes(), nil
}
