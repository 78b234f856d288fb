package reporting

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/quangminh-dev/dynamic-sizing-backtest/internal/backtest"
)

// DefaultCSVReporter implements CSV output functionality
type DefaultCSVReporter struct{}

// NewDefaultCSVReporter creates a new CSV reporter
func NewDefaultCSVReporter() *DefaultCSVReporter {
	return &DefaultCSVReporter{}
}

// WriteTradesCSV writes the rescaled trades to a CSV file
func (r *DefaultCSVReporter) WriteTradesCSV(results *backtest.Results, path string) error {
	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return err
	}

	// If the user requests an Excel file, delegate to Excel writer
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		return WriteResultsXLSX(results, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{
		"entry_date",
		"ticker",
		"market_regime",
		"breadth_8ma",
		"reason",
		"base_size",
		"dynamic_size",
		"multiplier",
		"shares",
		"pnl",
		"pnl_rate",
		"holding_period",
		"win_loss",
	}); err != nil {
		return err
	}

	var totalPnL float64
	for _, t := range results.Trades {
		totalPnL += t.PnL

		winLoss := "L"
		if t.PnL > 0 {
			winLoss = "W"
		}

		breadth := ""
		if t.Breadth8MAAtEntry != nil {
			breadth = fmt.Sprintf("%.3f", *t.Breadth8MAAtEntry)
		}

		row := []string{
			t.EntryDate.Format("2006-01-02"),
			t.Ticker,
			string(t.MarketRegime),
			breadth,
			t.PositionReason,
			fmt.Sprintf("%.1f", t.OriginalPositionSize),
			fmt.Sprintf("%.1f", t.DynamicPositionSize),
			fmt.Sprintf("%.3f", t.PositionMultiplier),
			fmt.Sprintf("%.4f", t.Shares),
			fmt.Sprintf("%.2f", t.PnL),
			fmt.Sprintf("%.4f", t.PnLRate),
			strconv.Itoa(t.HoldingPeriod),
			winLoss,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("SUMMARY: total_pnl=$%.2f; total_return=%.2f%%; base_return=%.2f%%; total_trades=%d",
		totalPnL, results.Metrics.TotalReturn, results.BaseMetrics.TotalReturn, len(results.Trades))

	// Summary row keeps the column count, text in the last column
	summaryRow := make([]string, 13)
	summaryRow[12] = summary
	return w.Write(summaryRow)
}

// Package-level convenience function
func WriteTradesCSV(results *backtest.Results, path string) error {
	reporter := NewDefaultCSVReporter()
	return reporter.WriteTradesCSV(results, path)
}
