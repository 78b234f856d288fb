package backtest

import (
	"fmt"
	"sort"
	"time"

	"github.com/quangminh-dev/dynamic-sizing-backtest/internal/breadth"
	apperrors "github.com/quangminh-dev/dynamic-sizing-backtest/internal/errors"
	"github.com/quangminh-dev/dynamic-sizing-backtest/internal/logger"
	"github.com/quangminh-dev/dynamic-sizing-backtest/internal/monitoring"
	"github.com/quangminh-dev/dynamic-sizing-backtest/internal/sizing"
	"github.com/quangminh-dev/dynamic-sizing-backtest/pkg/types"
)

// Rescaler replays an already-simulated trade sequence and rescales
// each trade by the position size the configured strategy would have
// chosen on its entry date. Trade outcomes are taken as given; only
// exposure changes.
type Rescaler struct {
	market         *breadth.Manager
	calc           *sizing.Calculator
	cfg            *sizing.Config
	baselineSize   float64
	initialCapital float64
	log            *logger.Logger
}

// Results bundles everything one rescaling run produces.
type Results struct {
	Strategy       sizing.Strategy        `json:"strategy"`
	BaselineSize   float64                `json:"baseline_size"`
	InitialCapital float64                `json:"initial_capital"`
	Trades         []types.AugmentedTrade `json:"trades"`
	Metrics        *RunMetrics            `json:"metrics"`
	BaseMetrics    *RunMetrics            `json:"base_metrics"`
	Comparison     *Comparison            `json:"comparison"`
	Coverage       breadth.Coverage       `json:"coverage"`
	State          sizing.StateSummary    `json:"state"`
	Duration       time.Duration          `json:"duration"`
}

// NewRescaler validates the run parameters up front. A baseline size
// of zero or below would make the multiplier undefined, so it is a
// fatal configuration error, as is an unvalidated sizing config.
func NewRescaler(market *breadth.Manager, cfg *sizing.Config, baselineSize, initialCapital float64) (*Rescaler, error) {
	if market == nil {
		return nil, apperrors.NewConfigurationError("rescaler", "new", "market breadth manager is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if baselineSize <= 0 {
		return nil, apperrors.NewConfigurationError("rescaler", "new",
			"baseline position size must be positive")
	}
	if initialCapital <= 0 {
		return nil, apperrors.NewConfigurationError("rescaler", "new",
			"initial capital must be positive")
	}

	return &Rescaler{
		market:         market,
		calc:           sizing.NewCalculator(cfg),
		cfg:            cfg,
		baselineSize:   baselineSize,
		initialCapital: initialCapital,
	}, nil
}

// SetLogger attaches an optional run logger. Without one the rescaler
// runs silently.
func (r *Rescaler) SetLogger(log *logger.Logger) {
	r.log = log
}

// Run rescales the trade sequence and recomputes aggregate metrics.
// The run either completes for every trade or returns an error before
// any results are produced; there are no partial outputs.
func (r *Rescaler) Run(trades []types.TradeRecord) (*Results, error) {
	if len(trades) == 0 {
		return nil, apperrors.NewValidationError("rescaler", "run", "no trades to rescale")
	}

	started := time.Now()

	// Stateful strategies need chronological order; sort a copy so the
	// caller's slice is untouched.
	ordered := make([]types.TradeRecord, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].EntryDate.Before(ordered[j].EntryDate)
	})

	// An uncovered period would silently default every out-of-range
	// lookup, so it aborts the run instead.
	coverage := r.market.ValidateCoverage(
		ordered[0].EntryDate, ordered[len(ordered)-1].EntryDate)
	if !coverage.Covered {
		if r.log != nil {
			r.log.Error("market data does not cover the trade period: start gap %d days, end gap %d days",
				coverage.MissingStartDays, coverage.MissingEndDays)
		}
		return nil, apperrors.NewValidationError("rescaler", "run",
			fmt.Sprintf("breadth data spans %s to %s but trades span %s to %s",
				coverage.AvailableStart.Format("2006-01-02"),
				coverage.AvailableEnd.Format("2006-01-02"),
				coverage.RequestedStart.Format("2006-01-02"),
				coverage.RequestedEnd.Format("2006-01-02")))
	}

	r.calc.ResetState()

	augmented := make([]types.AugmentedTrade, 0, len(ordered))
	for i, trade := range ordered {
		augmented = append(augmented, r.rescaleTrade(trade))

		if r.log != nil && (i+1)%100 == 0 {
			r.log.Info("processed %d/%d trades", i+1, len(ordered))
		}
	}

	monitoring.RecordTradesProcessed(string(r.cfg.Strategy), len(augmented))

	metrics := ComputeMetrics(augmented, r.initialCapital, r.cfg.DefaultSize)
	baseMetrics := ComputeBaseline(ordered, r.baselineSize, r.initialCapital)
	comparison := Compare(baseMetrics, metrics)

	monitoring.SetLastRunReturn(string(r.cfg.Strategy), metrics.TotalReturn)

	results := &Results{
		Strategy:       r.cfg.Strategy,
		BaselineSize:   r.baselineSize,
		InitialCapital: r.initialCapital,
		Trades:         augmented,
		Metrics:        metrics,
		BaseMetrics:    baseMetrics,
		Comparison:     comparison,
		Coverage:       coverage,
		State:          r.calc.StateSummary(),
		Duration:       time.Since(started),
	}

	if r.log != nil {
		r.log.LogRunSummary(string(r.cfg.Strategy), metrics.TotalTrades,
			metrics.TotalReturn, baseMetrics.TotalReturn, results.Duration)
	}

	return results, nil
}

// rescaleTrade derives the dynamic size for one trade and scales its
// shares and absolute P/L by size/baseline. The per-share return rate
// is independent of position size and stays as recorded.
func (r *Rescaler) rescaleTrade(trade types.TradeRecord) types.AugmentedTrade {
	snapshot := r.market.GetMarketData(trade.EntryDate)
	monitoring.RecordBreadthLookup(lookupResult(snapshot, trade.EntryDate))

	size, reason := r.calc.CalculateSize(snapshot, trade.EntryDate)
	multiplier := size / r.baselineSize

	monitoring.RecordSizingDecision(string(r.cfg.Strategy), string(reason.Tag))
	monitoring.ObservePositionSize(string(r.cfg.Strategy), size)

	scaled := trade
	scaled.Shares = trade.Shares * multiplier
	scaled.PnL = trade.PnL * multiplier

	out := types.AugmentedTrade{
		TradeRecord:          scaled,
		OriginalPositionSize: r.baselineSize,
		DynamicPositionSize:  size,
		PositionMultiplier:   multiplier,
		PositionReason:       string(reason.Tag),
		MarketRegime:         types.RegimeUnknown,
	}

	if snapshot != nil {
		breadth8MA := snapshot.Breadth8MA
		bearish := snapshot.BearishSignal
		out.Breadth8MAAtEntry = &breadth8MA
		out.BearishSignalAtEntry = &bearish
		out.MarketRegime = breadth.GetMarketCondition(breadth8MA)
	}

	if r.log != nil {
		r.log.LogSizingDecision(trade.EntryDate, trade.Ticker, size, multiplier, reason.String())
	}

	return out
}

func lookupResult(snapshot *types.BreadthRecord, date time.Time) string {
	switch {
	case snapshot == nil:
		return "miss"
	case snapshot.Date.Equal(breadth.NormalizeDate(date)):
		return "exact"
	default:
		return "nearby"
	}
}
