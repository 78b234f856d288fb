package sizing

import (
	"fmt"

	apperrors "github.com/quangminh-dev/dynamic-sizing-backtest/internal/errors"
)

// Strategy selects one of the four position sizing strategies.
type Strategy string

const (
	StrategyBreadth8MA     Strategy = "breadth_8ma"
	StrategyAdvanced5Stage Strategy = "advanced_5stage"
	StrategyBearishSignal  Strategy = "bearish_signal"
	StrategyBottom3Stage   Strategy = "bottom_3stage"
)

// AllStrategies lists the recognized strategies in display order.
var AllStrategies = []Strategy{
	StrategyBreadth8MA,
	StrategyAdvanced5Stage,
	StrategyBearishSignal,
	StrategyBottom3Stage,
}

// ParseStrategy validates a strategy identifier.
func ParseStrategy(s string) (Strategy, error) {
	for _, strategy := range AllStrategies {
		if s == string(strategy) {
			return strategy, nil
		}
	}
	return "", fmt.Errorf("unknown strategy %q (valid: %v)", s, AllStrategies)
}

// Config holds all sizing parameters. Immutable after construction;
// Validate must pass before any sizing call.
type Config struct {
	Strategy Strategy `json:"strategy"`

	// 3-stage table (breadth_8ma, also the base for bearish_signal
	// and bottom_3stage)
	StressSize  float64 `json:"stress_size"`
	NormalSize  float64 `json:"normal_size"`
	BullishSize float64 `json:"bullish_size"`

	// 5-stage table (advanced_5stage)
	ExtremeStressSize  float64 `json:"extreme_stress_size"`
	StressStageSize    float64 `json:"stress_stage_size"`
	NormalStageSize    float64 `json:"normal_stage_size"`
	BullishStageSize   float64 `json:"bullish_stage_size"`
	ExtremeBullishSize float64 `json:"extreme_bullish_size"`

	// bearish_signal
	BearishReductionMult float64 `json:"bearish_reduction_mult"`

	// bottom_3stage
	Stage1BearishMult     float64 `json:"stage1_bearish_mult"`
	Stage2BottomMult      float64 `json:"stage2_bottom_mult"`
	Stage3BottomMult      float64 `json:"stage3_bottom_mult"`
	ContinuationMult      float64 `json:"continuation_mult"`
	ContinuationThreshold float64 `json:"continuation_threshold"`
	ResetThreshold        float64 `json:"reset_threshold"`

	// Global clamps and the fallback when no market data is found
	MinSize     float64 `json:"min_size"`
	MaxSize     float64 `json:"max_size"`
	DefaultSize float64 `json:"default_size"`
}

// DefaultConfig returns the parameter set the original trade runs were
// calibrated against.
func DefaultConfig() *Config {
	return &Config{
		Strategy: StrategyBreadth8MA,

		StressSize:  8.0,
		NormalSize:  15.0,
		BullishSize: 20.0,

		ExtremeStressSize:  6.0,
		StressStageSize:    10.0,
		NormalStageSize:    15.0,
		BullishStageSize:   20.0,
		ExtremeBullishSize: 25.0,

		BearishReductionMult: 0.6,

		Stage1BearishMult:     0.7,
		Stage2BottomMult:      1.3,
		Stage3BottomMult:      1.6,
		ContinuationMult:      1.2,
		ContinuationThreshold: 0.5,
		ResetThreshold:        0.6,

		MinSize:     5.0,
		MaxSize:     25.0,
		DefaultSize: 15.0,
	}
}

// Validate checks every parameter range. Any violation is a fatal
// CONFIG error raised before sizing can occur.
func (c *Config) Validate() error {
	if _, err := ParseStrategy(string(c.Strategy)); err != nil {
		return apperrors.NewConfigurationError("sizing", "validate", err.Error())
	}

	sizes := map[string]float64{
		"stress_size":          c.StressSize,
		"normal_size":          c.NormalSize,
		"bullish_size":         c.BullishSize,
		"extreme_stress_size":  c.ExtremeStressSize,
		"stress_stage_size":    c.StressStageSize,
		"normal_stage_size":    c.NormalStageSize,
		"bullish_stage_size":   c.BullishStageSize,
		"extreme_bullish_size": c.ExtremeBullishSize,
		"default_size":         c.DefaultSize,
	}
	for name, size := range sizes {
		if size <= 0 || size > 100 {
			return apperrors.NewConfigurationError("sizing", "validate",
				fmt.Sprintf("%s must be in (0, 100], got %.2f", name, size))
		}
	}

	multipliers := map[string]float64{
		"bearish_reduction_mult": c.BearishReductionMult,
		"stage1_bearish_mult":    c.Stage1BearishMult,
		"stage2_bottom_mult":     c.Stage2BottomMult,
		"stage3_bottom_mult":     c.Stage3BottomMult,
		"continuation_mult":      c.ContinuationMult,
	}
	for name, mult := range multipliers {
		if mult < 0.1 || mult > 3.0 {
			return apperrors.NewConfigurationError("sizing", "validate",
				fmt.Sprintf("%s must be in [0.1, 3.0], got %.2f", name, mult))
		}
	}

	thresholds := map[string]float64{
		"continuation_threshold": c.ContinuationThreshold,
		"reset_threshold":        c.ResetThreshold,
	}
	for name, threshold := range thresholds {
		if threshold < 0.0 || threshold > 1.0 {
			return apperrors.NewConfigurationError("sizing", "validate",
				fmt.Sprintf("%s must be in [0.0, 1.0], got %.2f", name, threshold))
		}
	}

	if c.MinSize >= c.MaxSize {
		return apperrors.NewConfigurationError("sizing", "validate",
			fmt.Sprintf("min_size (%.2f) must be less than max_size (%.2f)", c.MinSize, c.MaxSize))
	}

	return nil
}

// WithStrategy returns a copy of the config with only the strategy changed.
func (c *Config) WithStrategy(strategy Strategy) *Config {
	copied := *c
	copied.Strategy = strategy
	return &copied
}

// Description returns a one-line description of the selected strategy.
func (c *Config) Description() string {
	switch c.Strategy {
	case StrategyBreadth8MA:
		return "Simple 3-stage adjustment on the breadth index 8MA"
	case StrategyAdvanced5Stage:
		return "Refined 5-stage adjustment for finer market conditions"
	case StrategyBearishSignal:
		return "Bearish-signal linked reduction, risk management first"
	case StrategyBottom3Stage:
		return "3-stage bottom detection targeting market turning points"
	default:
		return "Unknown strategy"
	}
}
