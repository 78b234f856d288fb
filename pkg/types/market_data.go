package types

import "time"

// Regime is the discrete market-condition bucket derived from the 8-day
// moving average of the breadth index.
type Regime string

const (
	RegimeExtremeStress  Regime = "extreme_stress"
	RegimeStress         Regime = "stress"
	RegimeNormal         Regime = "normal"
	RegimeBullish        Regime = "bullish"
	RegimeExtremeBullish Regime = "extreme_bullish"
	RegimeUnknown        Regime = "unknown"
)

// BreadthRecord is one day of the market breadth indicator series.
// The source series carries exactly one record per calendar date.
type BreadthRecord struct {
	Date               time.Time
	IndexPrice         float64
	BreadthRaw         float64
	Breadth200MA       float64
	Breadth8MA         float64
	Trend200MA         int
	BearishSignal      bool
	IsPeak             bool
	IsTrough           bool
	IsTrough8MABelow04 bool
}
