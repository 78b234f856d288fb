package breadth

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/quangminh-dev/dynamic-sizing-backtest/internal/errors"
	"github.com/quangminh-dev/dynamic-sizing-backtest/pkg/types"
)

const (
	// Maximum distance in calendar days for the nearest-date lookup.
	lookupWindowDays = 5

	componentName = "breadth"
)

// Expected column headers in the breadth CSV. Only Date and the 8MA
// column are mandatory; the rest default to zero values when absent.
const (
	colDate               = "Date"
	colIndexPrice         = "S&P500_Price"
	colBreadthRaw         = "Breadth_Index_Raw"
	colBreadth200MA       = "Breadth_Index_200MA"
	colBreadth8MA         = "Breadth_Index_8MA"
	colTrend200MA         = "Breadth_200MA_Trend"
	colBearishSignal      = "Bearish_Signal"
	colIsPeak             = "Is_Peak"
	colIsTrough           = "Is_Trough"
	colIsTrough8MABelow04 = "Is_Trough_8MA_Below_04"
)

// Manager loads and serves the date-indexed market breadth series.
// The series is read-only after Load and safe to share across calculators.
type Manager struct {
	csvPath string
	byDate  map[time.Time]*types.BreadthRecord
	ordered []*types.BreadthRecord
}

// Load parses the breadth indicator CSV into a Manager. A missing or
// unparseable file is a fatal DATA_LOAD error.
func Load(csvPath string) (*Manager, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return nil, apperrors.NewDataLoadError(componentName, "load", err).
			WithContext("path", csvPath)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, apperrors.NewDataLoadError(componentName, "read_header", err).
			WithContext("path", csvPath)
	}

	cols := mapColumns(header)
	if cols[colDate] < 0 || cols[colBreadth8MA] < 0 {
		return nil, apperrors.NewDataLoadErrorf(componentName, "read_header",
			"required columns missing: need %s and %s, got %v", colDate, colBreadth8MA, header)
	}

	m := &Manager{
		csvPath: csvPath,
		byDate:  make(map[time.Time]*types.BreadthRecord),
	}

	lineNum := 1
	for {
		row, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, apperrors.NewDataLoadError(componentName, "read_row", err).
				WithContext("line", lineNum)
		}
		lineNum++

		record, err := parseRecord(row, cols)
		if err != nil {
			return nil, apperrors.NewDataLoadErrorf(componentName, "parse_row",
				"line %d: %v", lineNum, err)
		}

		if _, exists := m.byDate[record.Date]; exists {
			return nil, apperrors.NewDataLoadErrorf(componentName, "parse_row",
				"duplicate record for date %s at line %d", record.Date.Format("2006-01-02"), lineNum)
		}

		m.byDate[record.Date] = record
		m.ordered = append(m.ordered, record)
	}

	if len(m.ordered) == 0 {
		return nil, apperrors.NewDataLoadErrorf(componentName, "load",
			"no breadth records found in %s", csvPath)
	}

	sort.Slice(m.ordered, func(i, j int) bool {
		return m.ordered[i].Date.Before(m.ordered[j].Date)
	})

	return m, nil
}

// mapColumns maps known header names to their column indices (-1 when absent)
func mapColumns(header []string) map[string]int {
	cols := map[string]int{
		colDate:               -1,
		colIndexPrice:         -1,
		colBreadthRaw:         -1,
		colBreadth200MA:       -1,
		colBreadth8MA:         -1,
		colTrend200MA:         -1,
		colBearishSignal:      -1,
		colIsPeak:             -1,
		colIsTrough:           -1,
		colIsTrough8MABelow04: -1,
	}
	for i, name := range header {
		name = strings.TrimSpace(name)
		if _, known := cols[name]; known {
			cols[name] = i
		}
	}
	return cols
}

func parseRecord(row []string, cols map[string]int) (*types.BreadthRecord, error) {
	date, err := parseDate(field(row, cols[colDate]))
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", field(row, cols[colDate]), err)
	}

	breadth8MA, err := parseFloat(field(row, cols[colBreadth8MA]))
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", colBreadth8MA, field(row, cols[colBreadth8MA]), err)
	}

	return &types.BreadthRecord{
		Date:               date,
		IndexPrice:         parseFloatOrZero(field(row, cols[colIndexPrice])),
		BreadthRaw:         parseFloatOrZero(field(row, cols[colBreadthRaw])),
		Breadth200MA:       parseFloatOrZero(field(row, cols[colBreadth200MA])),
		Breadth8MA:         breadth8MA,
		Trend200MA:         parseIntOrZero(field(row, cols[colTrend200MA])),
		BearishSignal:      parseBool(field(row, cols[colBearishSignal])),
		IsPeak:             parseBool(field(row, cols[colIsPeak])),
		IsTrough:           parseBool(field(row, cols[colIsTrough])),
		IsTrough8MABelow04: parseBool(field(row, cols[colIsTrough8MABelow04])),
	}, nil
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseDate(value string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04:05", "2006/01/02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return NormalizeDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}

func parseFloat(value string) (float64, error) {
	if value == "" {
		return 0, fmt.Errorf("empty value")
	}
	return strconv.ParseFloat(value, 64)
}

func parseFloatOrZero(value string) float64 {
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return f
}

func parseIntOrZero(value string) int {
	// Trend values may be persisted as "1.0"
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0
	}
	return int(f)
}

// parseBool coerces boolean-like text case-insensitively ("True", "true", "1")
func parseBool(value string) bool {
	switch strings.ToLower(value) {
	case "true", "1":
		return true
	default:
		return false
	}
}

// NormalizeDate truncates a timestamp to calendar-date resolution in UTC.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// GetMarketData returns the breadth record for the given date. When no
// exact match exists it searches alternating offsets -1,+1,-2,+2,... up
// to ±5 calendar days and returns the first hit. A nil result means no
// data within the window; this is a normal outcome, not an error.
func (m *Manager) GetMarketData(date time.Time) *types.BreadthRecord {
	target := NormalizeDate(date)

	if record, ok := m.byDate[target]; ok {
		return record
	}

	for offset := 1; offset <= lookupWindowDays; offset++ {
		if record, ok := m.byDate[target.AddDate(0, 0, -offset)]; ok {
			return record
		}
		if record, ok := m.byDate[target.AddDate(0, 0, offset)]; ok {
			return record
		}
	}

	return nil
}

// GetMarketCondition classifies a breadth 8MA value into a regime.
// Total over all finite inputs: five half-open buckets split at
// 0.3, 0.4, 0.7 and 0.8.
func GetMarketCondition(breadth8MA float64) types.Regime {
	switch {
	case breadth8MA < 0.3:
		return types.RegimeExtremeStress
	case breadth8MA < 0.4:
		return types.RegimeStress
	case breadth8MA < 0.7:
		return types.RegimeNormal
	case breadth8MA < 0.8:
		return types.RegimeBullish
	default:
		return types.RegimeExtremeBullish
	}
}

// DataRange returns the first and last dates in the loaded series.
func (m *Manager) DataRange() (time.Time, time.Time) {
	return m.ordered[0].Date, m.ordered[len(m.ordered)-1].Date
}

// RecordCount returns the number of loaded records.
func (m *Manager) RecordCount() int {
	return len(m.ordered)
}

// Coverage reports whether the loaded series spans a requested interval.
type Coverage struct {
	Covered            bool
	RequestedStart     time.Time
	RequestedEnd       time.Time
	AvailableStart     time.Time
	AvailableEnd       time.Time
	MissingStartDays   int
	MissingEndDays     int
	PeriodRecords      int
	RegimeDistribution map[types.Regime]int
}

// ValidateCoverage checks that the series covers [start, end] so the
// orchestrator can fail fast instead of defaulting every lookup.
func (m *Manager) ValidateCoverage(start, end time.Time) Coverage {
	start = NormalizeDate(start)
	end = NormalizeDate(end)
	dataStart, dataEnd := m.DataRange()

	cov := Coverage{
		Covered:        !start.Before(dataStart) && !end.After(dataEnd),
		RequestedStart: start,
		RequestedEnd:   end,
		AvailableStart: dataStart,
		AvailableEnd:   dataEnd,
	}

	if start.Before(dataStart) {
		cov.MissingStartDays = int(dataStart.Sub(start).Hours() / 24)
	}
	if end.After(dataEnd) {
		cov.MissingEndDays = int(end.Sub(dataEnd).Hours() / 24)
	}

	cov.RegimeDistribution = make(map[types.Regime]int)
	for _, record := range m.ordered {
		if record.Date.Before(start) || record.Date.After(end) {
			continue
		}
		cov.PeriodRecords++
		cov.RegimeDistribution[GetMarketCondition(record.Breadth8MA)]++
	}

	return cov
}

// Statistics summarizes the loaded series for reports and startup output.
type Statistics struct {
	TotalRecords       int
	FirstDate          time.Time
	LastDate           time.Time
	Breadth8MAMin      float64
	Breadth8MAMax      float64
	Breadth8MAMean     float64
	Breadth8MAStd      float64
	RegimeDistribution map[types.Regime]int
	BearishSignals     int
	Peaks              int
	Troughs            int
	Troughs8MABelow04  int
}

// Statistics computes series-level summary statistics.
func (m *Manager) Statistics() Statistics {
	stats := Statistics{
		TotalRecords:       len(m.ordered),
		FirstDate:          m.ordered[0].Date,
		LastDate:           m.ordered[len(m.ordered)-1].Date,
		Breadth8MAMin:      math.Inf(1),
		Breadth8MAMax:      math.Inf(-1),
		RegimeDistribution: make(map[types.Regime]int),
	}

	sum := 0.0
	for _, record := range m.ordered {
		v := record.Breadth8MA
		sum += v
		if v < stats.Breadth8MAMin {
			stats.Breadth8MAMin = v
		}
		if v > stats.Breadth8MAMax {
			stats.Breadth8MAMax = v
		}
		stats.RegimeDistribution[GetMarketCondition(v)]++
		if record.BearishSignal {
			stats.BearishSignals++
		}
		if record.IsPeak {
			stats.Peaks++
		}
		if record.IsTrough {
			stats.Troughs++
		}
		if record.IsTrough8MABelow04 {
			stats.Troughs8MABelow04++
		}
	}
	stats.Breadth8MAMean = sum / float64(len(m.ordered))

	variance := 0.0
	for _, record := range m.ordered {
		diff := record.Breadth8MA - stats.Breadth8MAMean
		variance += diff * diff
	}
	stats.Breadth8MAStd = math.Sqrt(variance / float64(len(m.ordered)))

	return stats
}
