// Package signals provides technical indicator calculations
package signals

import (
	"fmt"
	"math"
	"strings"

	"github.com/mtasci89/weekly-wealth-advisor/internal/models"
)

const (
	rsiPeriod = 14

	// SMA7/SMA14 spread (percent) beyond which a NEUTRAL signal is upgraded.
	smaTrendThreshold = 0.5
)

// RSI14 calculates the 14-period Relative Strength Index with Wilder
// smoothing from a chronological (oldest first) close series.
// Returns nil when fewer than 15 data points are available.
func RSI14(closes []float64) *float64 {
	if len(closes) < rsiPeriod+1 {
		return nil
	}

	var avgGain, avgLoss float64
	for i := 1; i <= rsiPeriod; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss -= change
		}
	}
	avgGain /= rsiPeriod
	avgLoss /= rsiPeriod

	// Wilder smoothing over the remainder of the series
	for i := rsiPeriod + 1; i < len(closes); i++ {
		change := closes[i] - closes[i-1]
		gain, loss := 0.0, 0.0
		if change > 0 {
			gain = change
		} else {
			loss = -change
		}
		avgGain = (avgGain*(rsiPeriod-1) + gain) / rsiPeriod
		avgLoss = (avgLoss*(rsiPeriod-1) + loss) / rsiPeriod
	}

	var rsi float64
	if avgLoss == 0 {
		rsi = 100 // no losses observed
	} else {
		rsi = 100 - 100/(1+avgGain/avgLoss)
	}
	rsi = round2(rsi)
	return &rsi
}

// SMA calculates the simple mean of the last period closes.
// Returns nil when fewer than period points are available.
func SMA(closes []float64, period int) *float64 {
	if period <= 0 || len(closes) < period {
		return nil
	}

	sum := 0.0
	for _, c := range closes[len(closes)-period:] {
		sum += c
	}
	sma := round2(sum / float64(period))
	return &sma
}

// Compute builds the composite TechnicalSignal for one symbol from its daily
// close series. The RSI verdict takes priority; the SMA crossover only fills
// a NEUTRAL slot, never overrides an existing BUY/SELL. Missing-data paths
// return nil fields rather than failing.
func Compute(symbol string, closes []float64) models.TechnicalSignal {
	rsi := RSI14(closes)
	sma7 := SMA(closes, 7)
	sma14 := SMA(closes, 14)

	signal := models.SignalNeutral
	var parts []string

	if rsi != nil {
		switch {
		case *rsi > 70:
			signal = models.SignalSell
			parts = append(parts, fmt.Sprintf("aşırı alım (RSI %.2f)", *rsi))
		case *rsi < 30:
			signal = models.SignalBuy
			parts = append(parts, fmt.Sprintf("aşırı satım (RSI %.2f)", *rsi))
		default:
			parts = append(parts, fmt.Sprintf("RSI %.2f", *rsi))
		}
	}

	if sma7 != nil && sma14 != nil && *sma14 != 0 {
		diff := (*sma7 - *sma14) / *sma14 * 100
		switch {
		case diff > smaTrendThreshold:
			if signal == models.SignalNeutral {
				signal = models.SignalBuy
			}
			parts = append(parts, "short-term uptrend")
		case diff < -smaTrendThreshold:
			if signal == models.SignalNeutral {
				signal = models.SignalSell
			}
			parts = append(parts, "short-term downtrend")
		default:
			parts = append(parts, "sideways trend")
		}
	}

	label := "insufficient data"
	if len(parts) > 0 {
		label = strings.Join(parts, " | ")
	}

	return models.TechnicalSignal{
		Symbol: symbol,
		RSI14:  rsi,
		SMA7:   sma7,
		SMA14:  sma14,
		Signal: signal,
		Label:  label,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
