package reporting

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/quangminh-dev/dynamic-sizing-backtest/internal/backtest"
)

// ExcelStyles holds the style IDs shared across sheets
type ExcelStyles struct {
	HeaderStyle   int
	CurrencyStyle int
	PercentStyle  int
	RedStyle      int
	GreenStyle    int
	BaseStyle     int
}

// DefaultExcelReporter implements Excel output functionality
type DefaultExcelReporter struct{}

// NewDefaultExcelReporter creates a new Excel reporter
func NewDefaultExcelReporter() *DefaultExcelReporter {
	return &DefaultExcelReporter{}
}

// WriteResultsXLSX writes the rescaled trades and run summary to an Excel workbook
func (r *DefaultExcelReporter) WriteResultsXLSX(results *backtest.Results, path string) error {
	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const tradesSheet = "Trades"
	const summarySheet = "Summary"

	// Replace default sheet and create additional sheets
	fx.SetSheetName(fx.GetSheetName(0), tradesSheet)
	fx.NewSheet(summarySheet)

	styles, err := r.createExcelStyles(fx)
	if err != nil {
		return err
	}

	if err := r.writeTradesSheet(fx, tradesSheet, results, styles); err != nil {
		return err
	}
	if err := r.writeSummarySheet(fx, summarySheet, results, styles); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

// createExcelStyles creates all Excel styles
func (r *DefaultExcelReporter) createExcelStyles(fx *excelize.File) (ExcelStyles, error) {
	var styles ExcelStyles
	var err error

	// Header style - dark background with white text
	styles.HeaderStyle, err = fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold:   true,
			Size:   11,
			Color:  "FFFFFF",
			Family: "Calibri",
		},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"2F4F4F"}, // Dark slate gray
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	// Currency style (right aligned, $ format)
	styles.CurrencyStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 7, // Currency format with $ symbol
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "E0E0E0", Style: 1},
			{Type: "right", Color: "E0E0E0", Style: 1},
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	// Percentage style (right aligned, % format)
	styles.PercentStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 9, // Percentage format with % symbol
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "E0E0E0", Style: 1},
			{Type: "right", Color: "E0E0E0", Style: 1},
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	// Red style for losing trades
	styles.RedStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 7,
		Font: &excelize.Font{
			Color: "FF0000",
		},
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "E0E0E0", Style: 1},
			{Type: "right", Color: "E0E0E0", Style: 1},
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	// Green style for winning trades
	styles.GreenStyle, err = fx.NewStyle(&excelize.Style{
		NumFmt: 7,
		Font: &excelize.Font{
			Color: "008000",
		},
		Alignment: &excelize.Alignment{
			Horizontal: "right",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "E0E0E0", Style: 1},
			{Type: "right", Color: "E0E0E0", Style: 1},
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	if err != nil {
		return styles, err
	}

	// Base style (light borders)
	styles.BaseStyle, err = fx.NewStyle(&excelize.Style{
		Border: []excelize.Border{
			{Type: "left", Color: "E0E0E0", Style: 1},
			{Type: "right", Color: "E0E0E0", Style: 1},
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	return styles, err
}

// writeTradesSheet writes one row per rescaled trade
func (r *DefaultExcelReporter) writeTradesSheet(fx *excelize.File, sheet string, results *backtest.Results, styles ExcelStyles) error {
	headers := []string{
		"Entry_Date", "Ticker", "Market_Regime", "Breadth_8MA", "Reason",
		"Base_Size_%", "Dynamic_Size_%", "Multiplier",
		"Shares", "PnL_$", "PnL_Rate", "Holding_Days",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	for i, trade := range results.Trades {
		row := i + 2

		breadth := ""
		if trade.Breadth8MAAtEntry != nil {
			breadth = fmt.Sprintf("%.3f", *trade.Breadth8MAAtEntry)
		}

		values := []interface{}{
			trade.EntryDate.Format("2006-01-02"),
			trade.Ticker,
			string(trade.MarketRegime),
			breadth,
			trade.PositionReason,
			trade.OriginalPositionSize,
			trade.DynamicPositionSize,
			trade.PositionMultiplier,
			trade.Shares,
			trade.PnL,
			trade.PnLRate,
			trade.HoldingPeriod,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			fx.SetCellValue(sheet, cell, v)
			fx.SetCellStyle(sheet, cell, cell, styles.BaseStyle)
		}

		// Color the PnL column by outcome
		pnlCell, _ := excelize.CoordinatesToCellName(10, row)
		if trade.PnL > 0 {
			fx.SetCellStyle(sheet, pnlCell, pnlCell, styles.GreenStyle)
		} else if trade.PnL < 0 {
			fx.SetCellStyle(sheet, pnlCell, pnlCell, styles.RedStyle)
		}

		rateCell, _ := excelize.CoordinatesToCellName(11, row)
		fx.SetCellStyle(sheet, rateCell, rateCell, styles.PercentStyle)
	}

	fx.SetColWidth(sheet, "A", "L", 14)
	return nil
}

// writeSummarySheet writes the dynamic run metrics next to the baseline
func (r *DefaultExcelReporter) writeSummarySheet(fx *excelize.File, sheet string, results *backtest.Results, styles ExcelStyles) error {
	headers := []string{"Metric", "Dynamic", "Baseline"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		fx.SetCellValue(sheet, cell, h)
		fx.SetCellStyle(sheet, cell, cell, styles.HeaderStyle)
	}

	m, b := results.Metrics, results.BaseMetrics
	rows := []struct {
		name    string
		dynamic interface{}
		base    interface{}
	}{
		{"Strategy", string(results.Strategy), "fixed"},
		{"Total Trades", m.TotalTrades, b.TotalTrades},
		{"Winning Trades", m.WinningTrades, b.WinningTrades},
		{"Win Rate", fmt.Sprintf("%.1f%%", m.WinRate*100), fmt.Sprintf("%.1f%%", b.WinRate*100)},
		{"Total PnL", m.TotalPnL, b.TotalPnL},
		{"Total Return %", m.TotalReturn, b.TotalReturn},
		{"Avg Return %", m.AvgReturn, b.AvgReturn},
		{"Avg Win", m.AvgWin, b.AvgWin},
		{"Avg Loss", m.AvgLoss, b.AvgLoss},
		{"Best Trade", m.BestTrade, b.BestTrade},
		{"Worst Trade", m.WorstTrade, b.WorstTrade},
		{"Avg Holding Days", m.AvgHoldingDays, b.AvgHoldingDays},
		{"Avg Position Size", m.PositionSizeStats.Mean, b.PositionSizeStats.Mean},
		{"Avg Multiplier", m.MultiplierStats.Mean, b.MultiplierStats.Mean},
		{"Improvement %", results.Comparison.ImprovementAbs, ""},
	}

	for i, row := range rows {
		nameCell, _ := excelize.CoordinatesToCellName(1, i+2)
		dynCell, _ := excelize.CoordinatesToCellName(2, i+2)
		baseCell, _ := excelize.CoordinatesToCellName(3, i+2)
		fx.SetCellValue(sheet, nameCell, row.name)
		fx.SetCellValue(sheet, dynCell, row.dynamic)
		fx.SetCellValue(sheet, baseCell, row.base)
		fx.SetCellStyle(sheet, nameCell, baseCell, styles.BaseStyle)
	}

	fx.SetColWidth(sheet, "A", "C", 20)
	return nil
}

// Package-level convenience function
func WriteResultsXLSX(results *backtest.Results, path string) error {
	reporter := NewDefaultExcelReporter()
	return reporter.WriteResultsXLSX(results, path)
}
