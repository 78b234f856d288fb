package sizing

import "fmt"

// ReasonTag identifies which rule produced a position size.
type ReasonTag string

const (
	ReasonStress             ReasonTag = "stress"
	ReasonNormal             ReasonTag = "normal"
	ReasonBullish            ReasonTag = "bullish"
	ReasonExtremeStress      ReasonTag = "extreme_stress"
	ReasonExtremeBullish     ReasonTag = "extreme_bullish"
	ReasonBearishReduction   ReasonTag = "bearish_reduction"
	ReasonStage1Bearish      ReasonTag = "stage1_bearish"
	ReasonStage2Bottom       ReasonTag = "stage2_8ma_bottom"
	ReasonStage3Bottom       ReasonTag = "stage3_200ma_bottom"
	ReasonStage2Continuation ReasonTag = "stage2_continuation"
	ReasonNoMarketData       ReasonTag = "no_market_data"
)

// Reason is the tagged outcome of a sizing decision, carrying the
// breadth value that triggered it when market data was available.
type Reason struct {
	Tag        ReasonTag
	Breadth8MA float64
	HasBreadth bool
}

func reasonWithBreadth(tag ReasonTag, breadth8MA float64) Reason {
	return Reason{Tag: tag, Breadth8MA: breadth8MA, HasBreadth: true}
}

// String renders the reason for logs and reports, e.g. "stage2_8ma_bottom_0.372".
func (r Reason) String() string {
	if !r.HasBreadth {
		return string(r.Tag)
	}
	return fmt.Sprintf("%s_%.3f", r.Tag, r.Breadth8MA)
}
