package backtest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quangminh-dev/dynamic-sizing-backtest/internal/breadth"
	apperrors "github.com/quangminh-dev/dynamic-sizing-backtest/internal/errors"
	"github.com/quangminh-dev/dynamic-sizing-backtest/internal/sizing"
	"github.com/quangminh-dev/dynamic-sizing-backtest/pkg/types"
)

const breadthHeader = "Date,S&P500_Price,Breadth_Index_Raw,Breadth_Index_200MA,Breadth_Index_8MA,Breadth_200MA_Trend,Bearish_Signal,Is_Peak,Is_Trough,Is_Trough_8MA_Below_04\n"

func loadTestManager(t *testing.T, rows string) *breadth.Manager {
	t.Helper()
	path := filepath.Join(t.TempDir(), "breadth.csv")
	require.NoError(t, os.WriteFile(path, []byte(breadthHeader+rows), 0644))

	m, err := breadth.Load(path)
	require.NoError(t, err)
	return m
}

func tradeOn(date string, shares, pnl, pnlRate float64) types.TradeRecord {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		panic(err)
	}
	return types.TradeRecord{
		EntryDate:     d,
		Ticker:        "AAPL",
		Shares:        shares,
		PnL:           pnl,
		PnLRate:       pnlRate,
		HoldingPeriod: 5,
	}
}

// TestNewRescaler_RejectsNonPositiveBaseline tests the fatal baseline check
func TestNewRescaler_RejectsNonPositiveBaseline(t *testing.T) {
	manager := loadTestManager(t, "2023-01-02,3824.14,0.45,0.52,0.55,1,False,False,False,False\n")

	_, err := NewRescaler(manager, sizing.DefaultConfig(), 0, 100000)
	require.Error(t, err)
	assert.True(t, apperrors.IsConfigurationError(err))

	_, err = NewRescaler(manager, sizing.DefaultConfig(), -15, 100000)
	require.Error(t, err)
	assert.True(t, apperrors.IsConfigurationError(err))
}

// TestNewRescaler_RejectsInvalidConfig tests that config validation runs
// before any trade is touched
func TestNewRescaler_RejectsInvalidConfig(t *testing.T) {
	manager := loadTestManager(t, "2023-01-02,3824.14,0.45,0.52,0.55,1,False,False,False,False\n")

	cfg := sizing.DefaultConfig()
	cfg.NormalSize = -1

	_, err := NewRescaler(manager, cfg, 15, 100000)
	require.Error(t, err)
	assert.True(t, apperrors.IsConfigurationError(err))
}

// TestNewRescaler_RejectsNonPositiveCapital tests the capital check
func TestNewRescaler_RejectsNonPositiveCapital(t *testing.T) {
	manager := loadTestManager(t, "2023-01-02,3824.14,0.45,0.52,0.55,1,False,False,False,False\n")

	_, err := NewRescaler(manager, sizing.DefaultConfig(), 15, 0)
	require.Error(t, err)
	assert.True(t, apperrors.IsConfigurationError(err))
}

// TestRun_EmptyTrades tests that an empty sequence is a validation error
func TestRun_EmptyTrades(t *testing.T) {
	manager := loadTestManager(t, "2023-01-02,3824.14,0.45,0.52,0.55,1,False,False,False,False\n")

	rescaler, err := NewRescaler(manager, sizing.DefaultConfig(), 15, 100000)
	require.NoError(t, err)

	_, err = rescaler.Run(nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
}

// TestRun_MultiplierIdentity tests that a trade sized at the baseline is
// passed through unchanged
func TestRun_MultiplierIdentity(t *testing.T) {
	// Breadth 0.55 -> normal band -> size 15 == baseline
	manager := loadTestManager(t, "2023-01-02,3824.14,0.45,0.52,0.55,1,False,False,False,False\n")

	rescaler, err := NewRescaler(manager, sizing.DefaultConfig(), 15, 100000)
	require.NoError(t, err)

	results, err := rescaler.Run([]types.TradeRecord{tradeOn("2023-01-02", 10, 250, 0.05)})
	require.NoError(t, err)
	require.Len(t, results.Trades, 1)

	trade := results.Trades[0]
	assert.Equal(t, 1.0, trade.PositionMultiplier)
	assert.Equal(t, 10.0, trade.Shares)
	assert.Equal(t, 250.0, trade.PnL)
	assert.Equal(t, 0.05, trade.PnLRate)
	assert.Equal(t, 15.0, trade.DynamicPositionSize)
	assert.Equal(t, types.RegimeNormal, trade.MarketRegime)
}

// TestRun_ScalesSharesAndPnLNotRate tests the core rescaling rule
func TestRun_ScalesSharesAndPnLNotRate(t *testing.T) {
	// Breadth 0.75 -> bullish band -> size 20, multiplier 20/15
	manager := loadTestManager(t, "2023-01-02,3824.14,0.45,0.52,0.75,1,False,False,False,False\n")

	rescaler, err := NewRescaler(manager, sizing.DefaultConfig(), 15, 100000)
	require.NoError(t, err)

	results, err := rescaler.Run([]types.TradeRecord{tradeOn("2023-01-02", 9, 300, 0.05)})
	require.NoError(t, err)

	trade := results.Trades[0]
	assert.InDelta(t, 20.0/15.0, trade.PositionMultiplier, 1e-9)
	assert.InDelta(t, 12.0, trade.Shares, 1e-9)
	assert.InDelta(t, 400.0, trade.PnL, 1e-9)
	assert.Equal(t, 0.05, trade.PnLRate) // per-share return is size independent

	require.NotNil(t, trade.Breadth8MAAtEntry)
	assert.Equal(t, 0.75, *trade.Breadth8MAAtEntry)
	assert.Equal(t, types.RegimeBullish, trade.MarketRegime)
}

// TestRun_NoMarketData tests the default-size fallback when the covered
// period has a gap wider than the lookup window
func TestRun_NoMarketData(t *testing.T) {
	manager := loadTestManager(t,
		"2023-01-02,3824.14,0.45,0.52,0.55,1,False,False,False,False\n"+
			"2023-01-20,3898.85,0.48,0.53,0.58,1,False,False,False,False\n")

	rescaler, err := NewRescaler(manager, sizing.DefaultConfig(), 15, 100000)
	require.NoError(t, err)

	// 2023-01-11 is 9 days from both records, outside the ±5 day window
	results, err := rescaler.Run([]types.TradeRecord{tradeOn("2023-01-11", 10, 100, 0.02)})
	require.NoError(t, err)

	trade := results.Trades[0]
	assert.Equal(t, 15.0, trade.DynamicPositionSize)
	assert.Equal(t, 1.0, trade.PositionMultiplier)
	assert.Equal(t, "no_market_data", trade.PositionReason)
	assert.Nil(t, trade.Breadth8MAAtEntry)
	assert.Nil(t, trade.BearishSignalAtEntry)
	assert.Equal(t, types.RegimeUnknown, trade.MarketRegime)
}

// TestRun_OrdersTradesChronologically tests that unsorted input is
// processed in entry-date order
func TestRun_OrdersTradesChronologically(t *testing.T) {
	manager := loadTestManager(t,
		"2023-01-02,3824.14,0.45,0.52,0.55,1,False,False,False,False\n"+
			"2023-01-03,3852.97,0.41,0.51,0.35,1,False,False,False,False\n"+
			"2023-01-04,3866.00,0.43,0.51,0.75,1,False,False,False,False\n")

	rescaler, err := NewRescaler(manager, sizing.DefaultConfig(), 15, 100000)
	require.NoError(t, err)

	results, err := rescaler.Run([]types.TradeRecord{
		tradeOn("2023-01-04", 10, 100, 0.02),
		tradeOn("2023-01-02", 10, 100, 0.02),
		tradeOn("2023-01-03", 10, 100, 0.02),
	})
	require.NoError(t, err)
	require.Len(t, results.Trades, 3)

	for i := 1; i < len(results.Trades); i++ {
		assert.False(t, results.Trades[i].EntryDate.Before(results.Trades[i-1].EntryDate))
	}
	assert.Equal(t, 15.0, results.Trades[0].DynamicPositionSize)
	assert.Equal(t, 8.0, results.Trades[1].DynamicPositionSize)
	assert.Equal(t, 20.0, results.Trades[2].DynamicPositionSize)
}

// TestRun_UncoveredPeriodFails tests that trades outside the breadth
// data range abort the run instead of defaulting every lookup
func TestRun_UncoveredPeriodFails(t *testing.T) {
	manager := loadTestManager(t, "2023-01-02,3824.14,0.45,0.52,0.55,1,False,False,False,False\n")

	rescaler, err := NewRescaler(manager, sizing.DefaultConfig(), 15, 100000)
	require.NoError(t, err)

	results, err := rescaler.Run([]types.TradeRecord{
		tradeOn("2023-01-02", 10, 100, 0.02),
		tradeOn("2023-06-15", 10, 100, 0.02),
	})
	require.Error(t, err)
	assert.Nil(t, results)
	assert.True(t, apperrors.IsValidationError(err))
	assert.Contains(t, err.Error(), "2023-06-15")
}

// TestRun_InputSliceUntouched tests that the caller's slice order survives
func TestRun_InputSliceUntouched(t *testing.T) {
	manager := loadTestManager(t,
		"2023-01-02,3824.14,0.45,0.52,0.55,1,False,False,False,False\n"+
			"2023-01-03,3852.97,0.41,0.51,0.55,1,False,False,False,False\n")

	rescaler, err := NewRescaler(manager, sizing.DefaultConfig(), 15, 100000)
	require.NoError(t, err)

	input := []types.TradeRecord{
		tradeOn("2023-01-03", 10, 100, 0.02),
		tradeOn("2023-01-02", 10, 100, 0.02),
	}
	_, err = rescaler.Run(input)
	require.NoError(t, err)

	assert.Equal(t, "2023-01-03", input[0].EntryDate.Format("2006-01-02"))
}

// TestRun_MetricsAndComparison tests the recomputed aggregates against
// the fixed-size baseline
func TestRun_MetricsAndComparison(t *testing.T) {
	// Bullish regime: every trade is upsized by 4/3
	manager := loadTestManager(t,
		"2023-01-02,3824.14,0.45,0.52,0.75,1,False,False,False,False\n"+
			"2023-01-03,3852.97,0.41,0.51,0.75,1,False,False,False,False\n")

	rescaler, err := NewRescaler(manager, sizing.DefaultConfig(), 15, 100000)
	require.NoError(t, err)

	results, err := rescaler.Run([]types.TradeRecord{
		tradeOn("2023-01-02", 10, 300, 0.05),
		tradeOn("2023-01-03", 10, -150, -0.03),
	})
	require.NoError(t, err)

	assert.Equal(t, 2, results.Metrics.TotalTrades)
	assert.InDelta(t, 200.0, results.Metrics.TotalPnL, 1e-9) // (300 - 150) * 4/3
	assert.InDelta(t, 150.0, results.BaseMetrics.TotalPnL, 1e-9)
	assert.InDelta(t, 0.2, results.Comparison.DynamicTotalReturn, 1e-9)
	assert.InDelta(t, 0.15, results.Comparison.BaseTotalReturn, 1e-9)
	assert.InDelta(t, 0.05, results.Comparison.ImprovementAbs, 1e-9)

	assert.True(t, results.Coverage.Covered)
	assert.Equal(t, sizing.StrategyBreadth8MA, results.Strategy)
}

// TestRun_StatefulStrategyAcrossTrades tests that bottom_3stage state
// carries between trades within a run
func TestRun_StatefulStrategyAcrossTrades(t *testing.T) {
	manager := loadTestManager(t,
		"2023-01-02,3824.14,0.45,0.52,0.45,1,False,False,False,True\n"+
			"2023-01-05,3852.97,0.41,0.51,0.45,1,False,False,True,False\n")

	cfg := sizing.DefaultConfig().WithStrategy(sizing.StrategyBottom3Stage)
	rescaler, err := NewRescaler(manager, cfg, 15, 100000)
	require.NoError(t, err)

	results, err := rescaler.Run([]types.TradeRecord{
		tradeOn("2023-01-02", 10, 100, 0.02),
		tradeOn("2023-01-05", 10, 100, 0.02),
	})
	require.NoError(t, err)

	// First trade hits the stage 2 trigger, second rides it to stage 3
	assert.Equal(t, 19.5, results.Trades[0].DynamicPositionSize)
	assert.Equal(t, "stage2_8ma_bottom", results.Trades[0].PositionReason)
	assert.Equal(t, 24.0, results.Trades[1].DynamicPositionSize)
	assert.Equal(t, "stage3_200ma_bottom", results.Trades[1].PositionReason)
}
