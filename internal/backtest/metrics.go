package backtest

import (
	"math"

	"github.com/quangminh-dev/dynamic-sizing-backtest/pkg/types"
)

// Stats holds summary statistics for one distribution.
type Stats struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
}

// ReasonStats aggregates trades that shared a sizing reason.
type ReasonStats struct {
	Count     int     `json:"count"`
	AvgSize   float64 `json:"avg_size"`
	TotalPnL  float64 `json:"total_pnl"`
	AvgReturn float64 `json:"avg_return"`
}

// RunMetrics are the aggregate metrics recomputed from a rescaled
// trade sequence.
type RunMetrics struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	LosingTrades  int     `json:"losing_trades"`
	WinRate       float64 `json:"win_rate"`

	TotalPnL    float64 `json:"total_pnl"`
	TotalReturn float64 `json:"total_return"` // percent of initial capital
	AvgReturn   float64 `json:"avg_return"`   // percent per trade
	AvgWin      float64 `json:"avg_win"`
	AvgLoss     float64 `json:"avg_loss"`
	BestTrade   float64 `json:"best_trade"`
	WorstTrade  float64 `json:"worst_trade"`

	AvgHoldingDays float64 `json:"avg_holding_days"`

	PositionSizeStats Stats `json:"position_size_stats"`
	MultiplierStats   Stats `json:"position_multiplier_stats"`

	RegimeDistribution map[types.Regime]int   `json:"market_condition_distribution"`
	ReasonBreakdown    map[string]ReasonStats `json:"reason_breakdown"`

	TradesAboveDefault int `json:"trades_above_default"`
	TradesBelowDefault int `json:"trades_below_default"`
}

// ComputeMetrics recomputes aggregate metrics from an augmented trade
// sequence. Wins are trades with positive PnL; break-even trades count
// as losses, matching the baseline reporting convention.
func ComputeMetrics(trades []types.AugmentedTrade, initialCapital, defaultSize float64) *RunMetrics {
	metrics := &RunMetrics{
		RegimeDistribution: make(map[types.Regime]int),
		ReasonBreakdown:    make(map[string]ReasonStats),
	}
	if len(trades) == 0 {
		return metrics
	}

	sizes := make([]float64, 0, len(trades))
	multipliers := make([]float64, 0, len(trades))

	var totalWin, totalLoss float64
	var returnSum, holdingSum float64
	metrics.BestTrade = math.Inf(-1)
	metrics.WorstTrade = math.Inf(1)

	for _, trade := range trades {
		metrics.TotalTrades++
		metrics.TotalPnL += trade.PnL
		returnSum += trade.PnLRate
		holdingSum += float64(trade.HoldingPeriod)

		if trade.PnL > 0 {
			metrics.WinningTrades++
			totalWin += trade.PnL
		} else {
			metrics.LosingTrades++
			totalLoss += trade.PnL
		}
		if trade.PnL > metrics.BestTrade {
			metrics.BestTrade = trade.PnL
		}
		if trade.PnL < metrics.WorstTrade {
			metrics.WorstTrade = trade.PnL
		}

		sizes = append(sizes, trade.DynamicPositionSize)
		multipliers = append(multipliers, trade.PositionMultiplier)

		metrics.RegimeDistribution[trade.MarketRegime]++

		rs := metrics.ReasonBreakdown[trade.PositionReason]
		rs.Count++
		rs.AvgSize += trade.DynamicPositionSize
		rs.TotalPnL += trade.PnL
		rs.AvgReturn += trade.PnLRate
		metrics.ReasonBreakdown[trade.PositionReason] = rs

		if trade.DynamicPositionSize > defaultSize {
			metrics.TradesAboveDefault++
		} else if trade.DynamicPositionSize < defaultSize {
			metrics.TradesBelowDefault++
		}
	}

	metrics.WinRate = float64(metrics.WinningTrades) / float64(metrics.TotalTrades)
	metrics.AvgReturn = returnSum / float64(metrics.TotalTrades) * 100
	metrics.AvgHoldingDays = holdingSum / float64(metrics.TotalTrades)
	if initialCapital > 0 {
		metrics.TotalReturn = metrics.TotalPnL / initialCapital * 100
	}
	if metrics.WinningTrades > 0 {
		metrics.AvgWin = totalWin / float64(metrics.WinningTrades)
	}
	if metrics.LosingTrades > 0 {
		metrics.AvgLoss = totalLoss / float64(metrics.LosingTrades)
	}

	metrics.PositionSizeStats = computeStats(sizes)
	metrics.MultiplierStats = computeStats(multipliers)

	for reason, rs := range metrics.ReasonBreakdown {
		rs.AvgSize /= float64(rs.Count)
		rs.AvgReturn = rs.AvgReturn / float64(rs.Count) * 100
		metrics.ReasonBreakdown[reason] = rs
	}

	return metrics
}

// ComputeBaseline computes the same aggregates for the unscaled input
// trades, with every position pinned at the baseline size.
func ComputeBaseline(trades []types.TradeRecord, baselineSize, initialCapital float64) *RunMetrics {
	augmented := make([]types.AugmentedTrade, 0, len(trades))
	for _, trade := range trades {
		augmented = append(augmented, types.AugmentedTrade{
			TradeRecord:          trade,
			OriginalPositionSize: baselineSize,
			DynamicPositionSize:  baselineSize,
			PositionMultiplier:   1.0,
			PositionReason:       "baseline",
			MarketRegime:         types.RegimeUnknown,
		})
	}
	metrics := ComputeMetrics(augmented, initialCapital, baselineSize)
	metrics.RegimeDistribution = make(map[types.Regime]int)
	metrics.ReasonBreakdown = make(map[string]ReasonStats)
	return metrics
}

func computeStats(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	stats := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	sum := 0.0
	for _, v := range values {
		sum += v
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
	}
	stats.Mean = sum / float64(len(values))

	variance := 0.0
	for _, v := range values {
		diff := v - stats.Mean
		variance += diff * diff
	}
	stats.Std = math.Sqrt(variance / float64(len(values)))

	return stats
}

// Comparison contrasts a dynamic run against the fixed-size baseline.
type Comparison struct {
	BaseTotalReturn    float64 `json:"base_total_return"`
	DynamicTotalReturn float64 `json:"dynamic_total_return"`
	ImprovementAbs     float64 `json:"improvement_absolute"`
	ImprovementPct     float64 `json:"improvement_percentage"`
	BaseTrades         int     `json:"base_trades"`
	DynamicTrades      int     `json:"dynamic_trades"`
}

// Compare builds the baseline-vs-dynamic comparison block.
func Compare(base, dynamic *RunMetrics) *Comparison {
	cmp := &Comparison{
		BaseTotalReturn:    base.TotalReturn,
		DynamicTotalReturn: dynamic.TotalReturn,
		ImprovementAbs:     dynamic.TotalReturn - base.TotalReturn,
		BaseTrades:         base.TotalTrades,
		DynamicTrades:      dynamic.TotalTrades,
	}
	if base.TotalReturn != 0 {
		cmp.ImprovementPct = cmp.ImprovementAbs / math.Abs(base.TotalReturn) * 100
	}
	return cmp
}
