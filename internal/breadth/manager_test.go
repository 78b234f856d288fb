package breadth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/quangminh-dev/dynamic-sizing-backtest/internal/errors"
	"github.com/quangminh-dev/dynamic-sizing-backtest/pkg/types"
)

const testHeader = "Date,S&P500_Price,Breadth_Index_Raw,Breadth_Index_200MA,Breadth_Index_8MA,Breadth_200MA_Trend,Bearish_Signal,Is_Peak,Is_Trough,Is_Trough_8MA_Below_04\n"

func writeBreadthCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "breadth.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func day(value string) time.Time {
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return d
}

// TestLoad_ValidCSV tests loading a well-formed breadth CSV
func TestLoad_ValidCSV(t *testing.T) {
	path := writeBreadthCSV(t, testHeader+
		"2023-01-02,3824.14,0.45,0.52,0.48,1,False,False,False,False\n"+
		"2023-01-03,3852.97,0.41,0.51,0.44,1,True,False,True,False\n")

	m, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, m.RecordCount())

	record := m.GetMarketData(day("2023-01-03"))
	require.NotNil(t, record)
	assert.Equal(t, 0.44, record.Breadth8MA)
	assert.True(t, record.BearishSignal)
	assert.True(t, record.IsTrough)
	assert.False(t, record.IsPeak)
}

// TestLoad_BooleanCoercion tests case-insensitive boolean parsing
func TestLoad_BooleanCoercion(t *testing.T) {
	path := writeBreadthCSV(t, testHeader+
		"2023-01-02,3824.14,0.45,0.52,0.48,1,TRUE,1,true,True\n")

	m, err := Load(path)
	require.NoError(t, err)

	record := m.GetMarketData(day("2023-01-02"))
	require.NotNil(t, record)
	assert.True(t, record.BearishSignal)
	assert.True(t, record.IsPeak)
	assert.True(t, record.IsTrough)
	assert.True(t, record.IsTrough8MABelow04)
}

// TestLoad_MissingRequiredColumn tests that a CSV without the 8MA column fails
func TestLoad_MissingRequiredColumn(t *testing.T) {
	path := writeBreadthCSV(t, "Date,S&P500_Price\n2023-01-02,3824.14\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, apperrors.IsDataLoadError(err))
}

// TestLoad_DuplicateDate tests that duplicate dates are rejected
func TestLoad_DuplicateDate(t *testing.T) {
	path := writeBreadthCSV(t, testHeader+
		"2023-01-02,3824.14,0.45,0.52,0.48,1,False,False,False,False\n"+
		"2023-01-02,3824.14,0.45,0.52,0.48,1,False,False,False,False\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, apperrors.IsDataLoadError(err))
}

// TestLoad_MissingFile tests that a missing file is a data load error
func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.True(t, apperrors.IsDataLoadError(err))
}

// TestLoad_EmptyCSV tests that a header-only CSV fails
func TestLoad_EmptyCSV(t *testing.T) {
	path := writeBreadthCSV(t, testHeader)

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, apperrors.IsDataLoadError(err))
}

// TestGetMarketData_ExactMatch tests the exact-date lookup path
func TestGetMarketData_ExactMatch(t *testing.T) {
	path := writeBreadthCSV(t, testHeader+
		"2023-01-02,3824.14,0.45,0.52,0.48,1,False,False,False,False\n")

	m, err := Load(path)
	require.NoError(t, err)

	record := m.GetMarketData(day("2023-01-02"))
	require.NotNil(t, record)
	assert.Equal(t, day("2023-01-02"), record.Date)
}

// TestGetMarketData_PrefersNearestBackwardFirst tests the alternating
// offset order: at equal distance the earlier date wins
func TestGetMarketData_PrefersNearestBackwardFirst(t *testing.T) {
	path := writeBreadthCSV(t, testHeader+
		"2023-01-09,3800.00,0.45,0.52,0.40,1,False,False,False,False\n"+
		"2023-01-11,3820.00,0.45,0.52,0.60,1,False,False,False,False\n")

	m, err := Load(path)
	require.NoError(t, err)

	// 2023-01-10 has no record; both neighbors are 1 day away
	record := m.GetMarketData(day("2023-01-10"))
	require.NotNil(t, record)
	assert.Equal(t, day("2023-01-09"), record.Date)
	assert.Equal(t, 0.40, record.Breadth8MA)
}

// TestGetMarketData_NearerForwardBeatsFartherBackward tests distance priority
func TestGetMarketData_NearerForwardBeatsFartherBackward(t *testing.T) {
	path := writeBreadthCSV(t, testHeader+
		"2023-01-06,3800.00,0.45,0.52,0.40,1,False,False,False,False\n"+
		"2023-01-11,3820.00,0.45,0.52,0.60,1,False,False,False,False\n")

	m, err := Load(path)
	require.NoError(t, err)

	// 2023-01-10: backward hit is 4 days away, forward hit only 1
	record := m.GetMarketData(day("2023-01-10"))
	require.NotNil(t, record)
	assert.Equal(t, day("2023-01-11"), record.Date)
}

// TestGetMarketData_BeyondWindow tests that gaps larger than 5 days return nil
func TestGetMarketData_BeyondWindow(t *testing.T) {
	path := writeBreadthCSV(t, testHeader+
		"2023-01-02,3824.14,0.45,0.52,0.48,1,False,False,False,False\n")

	m, err := Load(path)
	require.NoError(t, err)

	assert.Nil(t, m.GetMarketData(day("2023-01-08")))
	assert.NotNil(t, m.GetMarketData(day("2023-01-07")))
}

// TestGetMarketData_TimeOfDayIgnored tests that lookups normalize timestamps
func TestGetMarketData_TimeOfDayIgnored(t *testing.T) {
	path := writeBreadthCSV(t, testHeader+
		"2023-01-02,3824.14,0.45,0.52,0.48,1,False,False,False,False\n")

	m, err := Load(path)
	require.NoError(t, err)

	afternoon := time.Date(2023, 1, 2, 15, 30, 0, 0, time.UTC)
	assert.NotNil(t, m.GetMarketData(afternoon))
}

// TestGetMarketCondition_BucketBoundaries tests the regime partition at
// every threshold
func TestGetMarketCondition_BucketBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		breadth  float64
		expected types.Regime
	}{
		{"well below extreme threshold", 0.10, types.RegimeExtremeStress},
		{"just below 0.3", 0.299, types.RegimeExtremeStress},
		{"exactly 0.3", 0.3, types.RegimeStress},
		{"just below 0.4", 0.399, types.RegimeStress},
		{"exactly 0.4", 0.4, types.RegimeNormal},
		{"mid normal", 0.55, types.RegimeNormal},
		{"just below 0.7", 0.699, types.RegimeNormal},
		{"exactly 0.7", 0.7, types.RegimeBullish},
		{"just below 0.8", 0.799, types.RegimeBullish},
		{"exactly 0.8", 0.8, types.RegimeExtremeBullish},
		{"maximum", 1.0, types.RegimeExtremeBullish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetMarketCondition(tt.breadth))
		})
	}
}

// TestValidateCoverage_FullyCovered tests coverage validation for a
// contained period
func TestValidateCoverage_FullyCovered(t *testing.T) {
	path := writeBreadthCSV(t, testHeader+
		"2023-01-02,3824.14,0.45,0.52,0.48,1,False,False,False,False\n"+
		"2023-01-03,3852.97,0.41,0.51,0.35,1,False,False,False,False\n"+
		"2023-01-04,3866.00,0.43,0.51,0.72,1,False,False,False,False\n")

	m, err := Load(path)
	require.NoError(t, err)

	cov := m.ValidateCoverage(day("2023-01-02"), day("2023-01-04"))
	assert.True(t, cov.Covered)
	assert.Equal(t, 0, cov.MissingStartDays)
	assert.Equal(t, 0, cov.MissingEndDays)
	assert.Equal(t, 3, cov.PeriodRecords)
	assert.Equal(t, 1, cov.RegimeDistribution[types.RegimeNormal])
	assert.Equal(t, 1, cov.RegimeDistribution[types.RegimeStress])
	assert.Equal(t, 1, cov.RegimeDistribution[types.RegimeBullish])
}

// TestValidateCoverage_GapsReported tests missing-day accounting on both ends
func TestValidateCoverage_GapsReported(t *testing.T) {
	path := writeBreadthCSV(t, testHeader+
		"2023-01-05,3824.14,0.45,0.52,0.48,1,False,False,False,False\n"+
		"2023-01-06,3852.97,0.41,0.51,0.44,1,False,False,False,False\n")

	m, err := Load(path)
	require.NoError(t, err)

	cov := m.ValidateCoverage(day("2023-01-01"), day("2023-01-10"))
	assert.False(t, cov.Covered)
	assert.Equal(t, 4, cov.MissingStartDays)
	assert.Equal(t, 4, cov.MissingEndDays)
	assert.Equal(t, 2, cov.PeriodRecords)
}

// TestStatistics_Summary tests series-level statistics
func TestStatistics_Summary(t *testing.T) {
	path := writeBreadthCSV(t, testHeader+
		"2023-01-02,3824.14,0.45,0.52,0.40,1,True,False,False,False\n"+
		"2023-01-03,3852.97,0.41,0.51,0.60,1,False,True,False,False\n"+
		"2023-01-04,3866.00,0.43,0.51,0.50,1,False,False,True,True\n")

	m, err := Load(path)
	require.NoError(t, err)

	stats := m.Statistics()
	assert.Equal(t, 3, stats.TotalRecords)
	assert.Equal(t, day("2023-01-02"), stats.FirstDate)
	assert.Equal(t, day("2023-01-04"), stats.LastDate)
	assert.Equal(t, 0.40, stats.Breadth8MAMin)
	assert.Equal(t, 0.60, stats.Breadth8MAMax)
	assert.InDelta(t, 0.50, stats.Breadth8MAMean, 1e-9)
	assert.Equal(t, 1, stats.BearishSignals)
	assert.Equal(t, 1, stats.Peaks)
	assert.Equal(t, 1, stats.Troughs)
	assert.Equal(t, 1, stats.Troughs8MABelow04)
	assert.Equal(t, 3, stats.RegimeDistribution[types.RegimeNormal])
}

// TestNormalizeDate tests truncation to UTC midnight
func TestNormalizeDate(t *testing.T) {
	ts := time.Date(2023, 6, 15, 18, 45, 12, 0, time.UTC)
	normalized := NormalizeDate(ts)
	assert.Equal(t, time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC), normalized)

	// Idempotent
	assert.Equal(t, normalized, NormalizeDate(normalized))
}
