// Package models defines data structures for the advisor
package models

// AssetType identifies the instrument class of an asset.
type AssetType string

const (
	AssetStock     AssetType = "stock"
	AssetETF       AssetType = "etf"
	AssetIndex     AssetType = "index"
	AssetForex     AssetType = "forex"
	AssetCrypto    AssetType = "crypto"
	AssetCommodity AssetType = "commodity"
	AssetBond      AssetType = "bond"
	AssetFund      AssetType = "fund"
)

// HistoricalReturns holds trailing period returns as percentages.
type HistoricalReturns struct {
	OneMonth   float64 `json:"one_month"`
	ThreeMonth float64 `json:"three_month"`
	SixMonth   float64 `json:"six_month"`
	YTD        float64 `json:"ytd"`
	OneYear    float64 `json:"one_year"`
}

// Asset is one tradable/quotable instrument at a point in time, as supplied
// by the external feed. Immutable once handed to the engine.
type Asset struct {
	Symbol            string            `json:"symbol"`
	Name              string            `json:"name"`
	Type              AssetType         `json:"type"`
	Category          string            `json:"category"` // market segment tag, e.g. "bist", "us", "crypto"
	Price             float64           `json:"price"`
	PriceUSD          float64           `json:"price_usd,omitempty"`
	WeeklyChangePct   float64           `json:"weekly_change_pct"`
	HistoricalReturns HistoricalReturns `json:"historical_returns"`
	Sparkline         []float64         `json:"sparkline,omitempty"` // daily closes, oldest first
}

// Investable reports whether the asset can be considered for allocation.
// Assets with a non-positive price are excluded from every engine path.
func (a *Asset) Investable() bool {
	return a.Price > 0
}
