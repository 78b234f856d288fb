package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/quangminh-dev/dynamic-sizing-backtest/cmd/common"
	"github.com/quangminh-dev/dynamic-sizing-backtest/internal/backtest"
	"github.com/quangminh-dev/dynamic-sizing-backtest/internal/breadth"
	"github.com/quangminh-dev/dynamic-sizing-backtest/internal/sizing"
	"github.com/quangminh-dev/dynamic-sizing-backtest/pkg/types"
)

// printDataSummary prints the loaded market data and trade counts
func printDataSummary(manager *breadth.Manager, breadthPath, tradesPath string, tradeCount int) {
	stats := manager.Statistics()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("DATA SOURCES")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"📊 Breadth CSV", breadthPath},
		{"📈 Breadth Records", stats.TotalRecords},
		{"📅 Breadth Range", fmt.Sprintf("%s → %s", stats.FirstDate.Format("2006-01-02"), stats.LastDate.Format("2006-01-02"))},
		{"🧮 Breadth 8MA", fmt.Sprintf("min %.3f / mean %.3f / max %.3f", stats.Breadth8MAMin, stats.Breadth8MAMean, stats.Breadth8MAMax)},
		{"🚨 Bearish Signals", stats.BearishSignals},
		{"🕳️ Troughs (8MA<0.4)", stats.Troughs8MABelow04},
		{"💼 Trades CSV", tradesPath},
		{"💼 Trades", tradeCount},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 20, WidthMax: 22, Align: text.AlignLeft},
		{Number: 2, WidthMin: 30, WidthMax: 45, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}

// printConfigSummary prints the sizing configuration for the run
func printConfigSummary(cfg *sizing.Config, baselineSize, initialCapital float64) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("RUN CONFIGURATION")
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"🎯 Strategy", string(cfg.Strategy)},
		{"📝 Description", cfg.Description()},
		{"📐 Baseline Size", fmt.Sprintf("%.1f%%", baselineSize)},
		{"💰 Initial Capital", common.FormatCurrency(initialCapital)},
	})

	t.AppendSeparator()

	switch cfg.Strategy {
	case sizing.StrategyAdvanced5Stage:
		t.AppendRows([]table.Row{
			{"📊 Stage Sizes", fmt.Sprintf("%.0f/%.0f/%.0f/%.0f/%.0f", cfg.ExtremeStressSize, cfg.StressStageSize, cfg.NormalStageSize, cfg.BullishStageSize, cfg.ExtremeBullishSize)},
		})
	case sizing.StrategyBearishSignal:
		t.AppendRows([]table.Row{
			{"📊 Base Sizes", fmt.Sprintf("%.0f/%.0f/%.0f", cfg.StressSize, cfg.NormalSize, cfg.BullishSize)},
			{"🔻 Bearish Reduction", fmt.Sprintf("x%.2f", cfg.BearishReductionMult)},
		})
	case sizing.StrategyBottom3Stage:
		t.AppendRows([]table.Row{
			{"📊 Base Sizes", fmt.Sprintf("%.0f/%.0f/%.0f", cfg.StressSize, cfg.NormalSize, cfg.BullishSize)},
			{"🔻 Stage 1 (bearish)", fmt.Sprintf("x%.2f", cfg.Stage1BearishMult)},
			{"🕳️ Stage 2 (8MA bottom)", fmt.Sprintf("x%.2f", cfg.Stage2BottomMult)},
			{"🚀 Stage 3 (200MA trough)", fmt.Sprintf("x%.2f", cfg.Stage3BottomMult)},
			{"➡️ Continuation", fmt.Sprintf("x%.2f below %.2f", cfg.ContinuationMult, cfg.ContinuationThreshold)},
			{"🔄 Reset Threshold", fmt.Sprintf("%.2f", cfg.ResetThreshold)},
		})
	default:
		t.AppendRows([]table.Row{
			{"📊 Stage Sizes", fmt.Sprintf("%.0f/%.0f/%.0f", cfg.StressSize, cfg.NormalSize, cfg.BullishSize)},
		})
	}

	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"🔒 Size Clamp", fmt.Sprintf("[%.0f%%, %.0f%%]", cfg.MinSize, cfg.MaxSize)},
		{"🪂 Default Size", fmt.Sprintf("%.1f%%", cfg.DefaultSize)},
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, WidthMin: 24, WidthMax: 26, Align: text.AlignLeft},
		{Number: 2, WidthMin: 25, WidthMax: 45, Align: text.AlignLeft},
	})

	t.Render()
	fmt.Println()
}

// printResults prints the run metrics next to the fixed-size baseline
func printResults(results *backtest.Results) {
	m, b := results.Metrics, results.BaseMetrics

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("RESULTS: %s", results.Strategy))
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Metric", "Dynamic", "Baseline"})
	t.AppendRows([]table.Row{
		{"Total Trades", m.TotalTrades, b.TotalTrades},
		{"Win Rate", common.FormatPercent(m.WinRate, 1), common.FormatPercent(b.WinRate, 1)},
		{"Total PnL", common.FormatCurrency(m.TotalPnL), common.FormatCurrency(b.TotalPnL)},
		{"Total Return", fmt.Sprintf("%.2f%%", m.TotalReturn), fmt.Sprintf("%.2f%%", b.TotalReturn)},
		{"Avg Return/Trade", fmt.Sprintf("%.2f%%", m.AvgReturn), fmt.Sprintf("%.2f%%", b.AvgReturn)},
		{"Avg Win / Avg Loss", fmt.Sprintf("%s / %s", common.FormatCurrency(m.AvgWin), common.FormatCurrency(m.AvgLoss)), fmt.Sprintf("%s / %s", common.FormatCurrency(b.AvgWin), common.FormatCurrency(b.AvgLoss))},
		{"Best / Worst Trade", fmt.Sprintf("%s / %s", common.FormatCurrency(m.BestTrade), common.FormatCurrency(m.WorstTrade)), fmt.Sprintf("%s / %s", common.FormatCurrency(b.BestTrade), common.FormatCurrency(b.WorstTrade))},
		{"Avg Holding Days", fmt.Sprintf("%.1f", m.AvgHoldingDays), fmt.Sprintf("%.1f", b.AvgHoldingDays)},
		{"Position Size (avg)", fmt.Sprintf("%.1f%%", m.PositionSizeStats.Mean), fmt.Sprintf("%.1f%%", b.PositionSizeStats.Mean)},
		{"Multiplier (min-max)", fmt.Sprintf("%.2f - %.2f", m.MultiplierStats.Min, m.MultiplierStats.Max), "1.00"},
		{"Trades Above/Below Default", fmt.Sprintf("%d / %d", m.TradesAboveDefault, m.TradesBelowDefault), "-"},
	})

	t.AppendSeparator()
	improvement := results.Comparison.ImprovementAbs
	marker := "📈"
	if improvement < 0 {
		marker = "📉"
	}
	t.AppendRow(table.Row{"Improvement", fmt.Sprintf("%s %+.2f%% (%+.1f%% relative)", marker, improvement, results.Comparison.ImprovementPct), ""})

	t.Render()
	fmt.Println()

	printRegimeBreakdown(m)
	printReasonBreakdown(m)
}

// printRegimeBreakdown prints the trade count per market regime
func printRegimeBreakdown(m *backtest.RunMetrics) {
	if len(m.RegimeDistribution) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("MARKET REGIMES AT ENTRY")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Regime", "Trades"})

	order := []types.Regime{
		types.RegimeExtremeStress,
		types.RegimeStress,
		types.RegimeNormal,
		types.RegimeBullish,
		types.RegimeExtremeBullish,
		types.RegimeUnknown,
	}
	for _, regime := range order {
		if count, ok := m.RegimeDistribution[regime]; ok {
			t.AppendRow(table.Row{string(regime), count})
		}
	}

	t.Render()
	fmt.Println()
}

// printReasonBreakdown prints per-reason trade aggregates
func printReasonBreakdown(m *backtest.RunMetrics) {
	if len(m.ReasonBreakdown) == 0 {
		return
	}

	reasons := make([]string, 0, len(m.ReasonBreakdown))
	for reason := range m.ReasonBreakdown {
		reasons = append(reasons, reason)
	}
	sort.Slice(reasons, func(i, j int) bool {
		return m.ReasonBreakdown[reasons[i]].Count > m.ReasonBreakdown[reasons[j]].Count
	})

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("SIZING REASONS")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Reason", "Trades", "Avg Size", "Total PnL", "Avg Return"})

	for _, reason := range reasons {
		rs := m.ReasonBreakdown[reason]
		t.AppendRow(table.Row{
			reason,
			rs.Count,
			fmt.Sprintf("%.1f%%", rs.AvgSize),
			common.FormatCurrency(rs.TotalPnL),
			fmt.Sprintf("%.2f%%", rs.AvgReturn),
		})
	}

	t.Render()
	fmt.Println()
}

// printComparisonTable prints all strategies side by side, best first
func printComparisonTable(allResults []*backtest.Results) {
	sorted := make([]*backtest.Results, len(allResults))
	copy(sorted, allResults)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Metrics.TotalReturn > sorted[j].Metrics.TotalReturn
	})

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("STRATEGY COMPARISON")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Strategy", "Total Return", "Win Rate", "Total PnL", "Avg Size", "vs Baseline"})

	for i, results := range sorted {
		marker := "  "
		if i == 0 {
			marker = "🏆"
		}
		m := results.Metrics
		t.AppendRow(table.Row{
			fmt.Sprintf("%s %s", marker, results.Strategy),
			fmt.Sprintf("%.2f%%", m.TotalReturn),
			common.FormatPercent(m.WinRate, 1),
			common.FormatCurrency(m.TotalPnL),
			fmt.Sprintf("%.1f%%", m.PositionSizeStats.Mean),
			fmt.Sprintf("%+.2f%%", results.Comparison.ImprovementAbs),
		})
	}

	t.Render()
	fmt.Println()

	if len(sorted) > 0 {
		base := sorted[0].BaseMetrics
		fmt.Printf("📊 Baseline (fixed %.1f%%): %.2f%% total return\n\n", sorted[0].BaselineSize, base.TotalReturn)
	}
}
