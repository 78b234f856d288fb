package types

import "time"

// TradeRecord is a single simulated trade produced by the external
// trade-generation engine. The rescaler never mutates these.
type TradeRecord struct {
	EntryDate     time.Time `json:"entry_date"`
	Ticker        string    `json:"ticker"`
	Shares        float64   `json:"shares"`
	PnL           float64   `json:"pnl"`
	PnLRate       float64   `json:"pnl_rate"`
	HoldingPeriod int       `json:"holding_period"`
}

// AugmentedTrade is a TradeRecord rescaled by a dynamically computed
// position size. Shares and PnL carry the multiplier; PnLRate is the
// percentage return of the underlying trade and is never rescaled.
type AugmentedTrade struct {
	TradeRecord

	OriginalPositionSize float64 `json:"original_position_size"`
	DynamicPositionSize  float64 `json:"dynamic_position_size"`
	PositionMultiplier   float64 `json:"position_multiplier"`
	PositionReason       string  `json:"position_reason"`

	// Market context at entry; nil when no breadth data was found
	// within the lookup window.
	Breadth8MAAtEntry    *float64 `json:"breadth_8ma_at_entry,omitempty"`
	BearishSignalAtEntry *bool    `json:"bearish_signal_at_entry,omitempty"`
	MarketRegime         Regime   `json:"market_regime"`
}
