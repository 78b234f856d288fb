package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Sizing metrics
	sizingDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rescaler_sizing_decisions_total",
			Help: "Total number of per-trade sizing decisions",
		},
		[]string{"strategy", "reason"},
	)

	positionSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "rescaler_position_size",
			Help:    "Distribution of chosen position sizes (percent of capital)",
			Buckets: []float64{5, 8, 10, 15, 20, 25},
		},
		[]string{"strategy"},
	)

	// Market data metrics
	breadthLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rescaler_breadth_lookups_total",
			Help: "Breadth snapshot lookups by outcome",
		},
		[]string{"result"},
	)

	// Run metrics
	tradesProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rescaler_trades_processed_total",
			Help: "Total number of trades rescaled",
		},
		[]string{"strategy"},
	)

	lastRunReturn = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "rescaler_last_run_total_return",
			Help: "Total return percentage of the most recent run",
		},
		[]string{"strategy"},
	)

	// Error metrics
	errorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rescaler_errors_total",
			Help: "Total number of errors",
		},
		[]string{"type"},
	)
)

func init() {
	// Register metrics
	prometheus.MustRegister(sizingDecisionsTotal)
	prometheus.MustRegister(positionSize)
	prometheus.MustRegister(breadthLookupsTotal)
	prometheus.MustRegister(tradesProcessedTotal)
	prometheus.MustRegister(lastRunReturn)
	prometheus.MustRegister(errorsTotal)
}

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct{}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{}
}

// ServeHTTP serves the Prometheus metrics endpoint
func (m *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RecordSizingDecision records one sizing decision
func RecordSizingDecision(strategy, reason string) {
	sizingDecisionsTotal.WithLabelValues(strategy, reason).Inc()
}

// ObservePositionSize records a chosen position size
func ObservePositionSize(strategy string, size float64) {
	positionSize.WithLabelValues(strategy).Observe(size)
}

// RecordBreadthLookup records a breadth lookup outcome (exact, nearby, miss)
func RecordBreadthLookup(result string) {
	breadthLookupsTotal.WithLabelValues(result).Inc()
}

// RecordTradesProcessed adds to the processed-trade counter
func RecordTradesProcessed(strategy string, count int) {
	tradesProcessedTotal.WithLabelValues(strategy).Add(float64(count))
}

// SetLastRunReturn updates the last run return gauge
func SetLastRunReturn(strategy string, totalReturn float64) {
	lastRunReturn.WithLabelValues(strategy).Set(totalReturn)
}

// RecordError records an error metric
func RecordError(errorType string) {
	errorsTotal.WithLabelValues(errorType).Inc()
}
