package models

// SignalDirection is the composite BUY/SELL/NEUTRAL verdict for a symbol.
type SignalDirection string

const (
	SignalBuy     SignalDirection = "BUY"
	SignalSell    SignalDirection = "SELL"
	SignalNeutral SignalDirection = "NEUTRAL"
)

// TechnicalSignal is a per-symbol derived indicator bundle computed fresh
// from a daily closing-price series. Never persisted.
//
// Nil pointer fields mean the series was too short to compute the indicator.
type TechnicalSignal struct {
	Symbol string          `json:"symbol"`
	RSI14  *float64        `json:"rsi14"`
	SMA7   *float64        `json:"sma7"`
	SMA14  *float64        `json:"sma14"`
	Signal SignalDirection `json:"signal"`
	Label  string          `json:"label"`
}
