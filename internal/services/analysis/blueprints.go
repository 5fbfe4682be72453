package analysis

import (
	"strings"

	"github.com/mtasci89/weekly-wealth-advisor/internal/models"
)

// Pool is one of the fixed category buckets assets are partitioned into
// before slot selection.
type Pool string

const (
	PoolDomestic  Pool = "domestic_equity" // BIST-listed equities
	PoolForeign   Pool = "foreign_equity"  // US/foreign equities and indices
	PoolETF       Pool = "etf"
	PoolFund      Pool = "fund"
	PoolCrypto    Pool = "crypto"
	PoolCommodity Pool = "commodity"
	PoolBond      Pool = "bond" // bonds plus FX treated as fixed-income proxies
)

// BlueprintSlot is one (pool, pick count, target percentage) entry of a
// risk-level allocation blueprint. Blueprints are data, not control flow:
// selection and normalization never depend on the risk level directly.
type BlueprintSlot struct {
	Pool      Pool
	Picks     int
	TargetPct float64
}

// blueprints maps each risk level to its ordered slot list. Target
// percentages per level sum to 100; empty pools forfeit their share before
// normalization rescales the remainder back to 100.
var blueprints = map[models.RiskLevel][]BlueprintSlot{
	models.RiskLow: {
		{Pool: PoolFund, Picks: 2, TargetPct: 30},
		{Pool: PoolBond, Picks: 1, TargetPct: 25},
		{Pool: PoolDomestic, Picks: 1, TargetPct: 15},
		{Pool: PoolETF, Picks: 1, TargetPct: 15},
		{Pool: PoolCommodity, Picks: 1, TargetPct: 5},
		{Pool: PoolForeign, Picks: 1, TargetPct: 5},
		{Pool: PoolCrypto, Picks: 1, TargetPct: 5},
	},
	models.RiskMedium: {
		{Pool: PoolDomestic, Picks: 2, TargetPct: 25},
		{Pool: PoolForeign, Picks: 1, TargetPct: 20},
		{Pool: PoolFund, Picks: 1, TargetPct: 20},
		{Pool: PoolCrypto, Picks: 1, TargetPct: 15},
		{Pool: PoolCommodity, Picks: 1, TargetPct: 10},
		{Pool: PoolBond, Picks: 1, TargetPct: 10},
	},
	models.RiskHigh: {
		{Pool: PoolDomestic, Picks: 3, TargetPct: 30},
		{Pool: PoolForeign, Picks: 2, TargetPct: 25},
		{Pool: PoolCrypto, Picks: 2, TargetPct: 25},
		{Pool: PoolETF, Picks: 1, TargetPct: 5},
		{Pool: PoolCommodity, Picks: 1, TargetPct: 5},
		{Pool: PoolFund, Picks: 1, TargetPct: 5},
		{Pool: PoolBond, Picks: 1, TargetPct: 5},
	},
}

// blueprintFor returns the slot list for a risk level, defaulting to medium.
func blueprintFor(risk models.RiskLevel) []BlueprintSlot {
	if slots, ok := blueprints[risk]; ok {
		return slots
	}
	return blueprints[models.RiskMedium]
}

// poolFor maps an asset to its category pool.
func poolFor(a *models.Asset) Pool {
	switch a.Type {
	case models.AssetStock:
		if strings.Contains(strings.ToLower(a.Category), "bist") {
			return PoolDomestic
		}
		return PoolForeign
	case models.AssetIndex:
		return PoolForeign
	case models.AssetETF:
		return PoolETF
	case models.AssetFund:
		return PoolFund
	case models.AssetCrypto:
		return PoolCrypto
	case models.AssetCommodity:
		return PoolCommodity
	case models.AssetBond, models.AssetForex:
		return PoolBond
	default:
		return PoolForeign
	}
}

// riskNotes are fixed, risk-level-keyed disclaimer strings.
var riskNotes = map[models.RiskLevel]string{
	models.RiskLow:    "Low-risk profile: capital preservation is prioritized over growth. Allocations favor funds, bonds and commodities; expect modest weekly movement. Not investment advice.",
	models.RiskMedium: "Medium-risk profile: balanced exposure across equities, funds and a limited crypto sleeve. Weekly drawdowns of several percent are possible. Not investment advice.",
	models.RiskHigh:   "High-risk profile: concentrated in equities and crypto. Large weekly swings, including double-digit drawdowns, are expected. Not investment advice.",
}
