package reporting

import (
	"encoding/json"
	"os"

	"github.com/quangminh-dev/dynamic-sizing-backtest/internal/backtest"
)

// resultsDocument is the serialized run summary; trades go to their
// own CSV/XLSX file and are omitted here to keep the JSON small.
type resultsDocument struct {
	Strategy       string               `json:"strategy"`
	BaselineSize   float64              `json:"baseline_size"`
	InitialCapital float64              `json:"initial_capital"`
	Metrics        *backtest.RunMetrics `json:"metrics"`
	BaseMetrics    *backtest.RunMetrics `json:"base_metrics"`
	Comparison     *backtest.Comparison `json:"comparison"`
}

// WriteResultsJSON writes the run summary to a JSON file
func WriteResultsJSON(results *backtest.Results, path string) error {
	doc := resultsDocument{
		Strategy:       string(results.Strategy),
		BaselineSize:   results.BaselineSize,
		InitialCapital: results.InitialCapital,
		Metrics:        results.Metrics,
		BaseMetrics:    results.BaseMetrics,
		Comparison:     results.Comparison,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	if err := NewDefaultPathManager().EnsureDirectoryExists(path); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
