package sizing

import (
	"time"

	"github.com/quangminh-dev/dynamic-sizing-backtest/internal/breadth"
	"github.com/quangminh-dev/dynamic-sizing-backtest/pkg/types"
)

// Calculator computes per-trade position sizes under the configured
// strategy. The breadth_8ma, advanced_5stage and bearish_signal
// strategies are stateless per call; bottom_3stage keeps windowed
// per-run state and therefore requires dates in ascending order.
type Calculator struct {
	cfg   *Config
	state *State
}

// NewCalculator creates a calculator with a fresh state. The config
// must already be validated.
func NewCalculator(cfg *Config) *Calculator {
	return &Calculator{
		cfg:   cfg,
		state: NewState(),
	}
}

// ResetState empties the bottom_3stage memory; call before each run.
func (c *Calculator) ResetState() {
	c.state.Reset()
}

// CalculateSize returns the position size and the reason for the given
// entry date. A nil snapshot falls back to the default size with reason
// no_market_data. The result is always clamped to [MinSize, MaxSize].
func (c *Calculator) CalculateSize(snapshot *types.BreadthRecord, date time.Time) (float64, Reason) {
	if snapshot == nil {
		return c.clamp(c.cfg.DefaultSize), Reason{Tag: ReasonNoMarketData}
	}

	var size float64
	var reason Reason

	switch c.cfg.Strategy {
	case StrategyBreadth8MA:
		size, reason = c.sizeBreadth8MA(snapshot)
	case StrategyAdvanced5Stage:
		size, reason = c.sizeAdvanced5Stage(snapshot)
	case StrategyBearishSignal:
		size, reason = c.sizeBearishSignal(snapshot)
	case StrategyBottom3Stage:
		size, reason = c.sizeBottom3Stage(snapshot, breadth.NormalizeDate(date))
	default:
		size, reason = c.cfg.DefaultSize, Reason{Tag: ReasonNoMarketData}
	}

	return c.clamp(size), reason
}

// sizeBreadth8MA implements the simple 3-stage table split at 0.4/0.7.
func (c *Calculator) sizeBreadth8MA(snapshot *types.BreadthRecord) (float64, Reason) {
	breadth8MA := snapshot.Breadth8MA

	switch {
	case breadth8MA < 0.4:
		return c.cfg.StressSize, reasonWithBreadth(ReasonStress, breadth8MA)
	case breadth8MA >= 0.7:
		return c.cfg.BullishSize, reasonWithBreadth(ReasonBullish, breadth8MA)
	default:
		return c.cfg.NormalSize, reasonWithBreadth(ReasonNormal, breadth8MA)
	}
}

// sizeAdvanced5Stage implements the refined 5-stage table split at
// 0.3/0.4/0.7/0.8, mirroring the regime buckets.
func (c *Calculator) sizeAdvanced5Stage(snapshot *types.BreadthRecord) (float64, Reason) {
	breadth8MA := snapshot.Breadth8MA

	switch {
	case breadth8MA < 0.3:
		return c.cfg.ExtremeStressSize, reasonWithBreadth(ReasonExtremeStress, breadth8MA)
	case breadth8MA < 0.4:
		return c.cfg.StressStageSize, reasonWithBreadth(ReasonStress, breadth8MA)
	case breadth8MA < 0.7:
		return c.cfg.NormalStageSize, reasonWithBreadth(ReasonNormal, breadth8MA)
	case breadth8MA < 0.8:
		return c.cfg.BullishStageSize, reasonWithBreadth(ReasonBullish, breadth8MA)
	default:
		return c.cfg.ExtremeBullishSize, reasonWithBreadth(ReasonExtremeBullish, breadth8MA)
	}
}

// sizeBearishSignal reduces the 3-stage base size while the bearish
// flag is set for the date.
func (c *Calculator) sizeBearishSignal(snapshot *types.BreadthRecord) (float64, Reason) {
	baseSize, baseReason := c.sizeBreadth8MA(snapshot)

	if snapshot.BearishSignal {
		return baseSize * c.cfg.BearishReductionMult,
			reasonWithBreadth(ReasonBearishReduction, snapshot.Breadth8MA)
	}
	return baseSize, baseReason
}

// sizeBottom3Stage implements the stateful bottom-detection strategy.
// Priority order matters: bearish reduction wins over bottom boosts,
// and a fresh 8MA bottom wins over a trailing 200MA trough.
func (c *Calculator) sizeBottom3Stage(snapshot *types.BreadthRecord, date time.Time) (float64, Reason) {
	breadth8MA := snapshot.Breadth8MA
	baseSize, _ := c.sizeBreadth8MA(snapshot)

	var size float64
	var reason Reason

	switch {
	// Stage 1: bearish signal, shrink exposure
	case snapshot.BearishSignal:
		size = baseSize * c.cfg.Stage1BearishMult
		reason = reasonWithBreadth(ReasonStage1Bearish, breadth8MA)

	// Stage 2: 8MA bottom detected, first expansion; record the trigger
	case snapshot.IsTrough8MABelow04:
		size = baseSize * c.cfg.Stage2BottomMult
		reason = reasonWithBreadth(ReasonStage2Bottom, breadth8MA)
		c.state.recordTrigger(date)

	// Stage 3: 200MA trough within the trigger window, second expansion
	case snapshot.IsTrough && c.state.hasRecentTrigger(date):
		size = baseSize * c.cfg.Stage3BottomMult
		reason = reasonWithBreadth(ReasonStage3Bottom, breadth8MA)

	// Stage 2 continuation while breadth stays depressed
	case c.state.hasRecentTrigger(date) && breadth8MA < c.cfg.ContinuationThreshold:
		size = baseSize * c.cfg.ContinuationMult
		reason = reasonWithBreadth(ReasonStage2Continuation, breadth8MA)

	default:
		size = baseSize
		reason = reasonWithBreadth(ReasonNormal, breadth8MA)
		// Market judged recovered: drop all active triggers
		if breadth8MA > c.cfg.ResetThreshold {
			c.state.deactivateTriggers()
		}
	}

	c.state.evictStale(date)

	return size, reason
}

func (c *Calculator) clamp(size float64) float64 {
	if size < c.cfg.MinSize {
		return c.cfg.MinSize
	}
	if size > c.cfg.MaxSize {
		return c.cfg.MaxSize
	}
	return size
}

// StateSummary describes the calculator's current bottom_3stage memory.
type StateSummary struct {
	Strategy       Strategy
	StateEntries   int
	ActiveTriggers int
}

// StateSummary returns a snapshot of the internal state for debugging
// and run reports.
func (c *Calculator) StateSummary() StateSummary {
	return StateSummary{
		Strategy:       c.cfg.Strategy,
		StateEntries:   c.state.Len(),
		ActiveTriggers: c.state.ActiveTriggers(),
	}
}
