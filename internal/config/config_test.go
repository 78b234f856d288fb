package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults checks the built-in defaults with a clean environment
func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"ENV", "LOG_LEVEL", "BREADTH_CSV", "TRADES_CSV",
		"SIZING_STRATEGY", "BASELINE_SIZE", "INITIAL_CAPITAL",
		"MONITORING_ENABLED", "PROMETHEUS_PORT", "HEALTH_PORT",
		"REPORT_OUTPUT_DIR", "REPORT_XLSX",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "data/market_breadth.csv", cfg.Data.BreadthCSV)
	assert.Equal(t, "data/trades.csv", cfg.Data.TradesCSV)
	assert.Equal(t, "breadth_8ma", cfg.Run.Strategy)
	assert.Equal(t, 15.0, cfg.Run.BaselineSize)
	assert.Equal(t, 100000.0, cfg.Run.InitialCapital)
	assert.False(t, cfg.Monitoring.Enabled)
	assert.Equal(t, 8080, cfg.Monitoring.PrometheusPort)
	assert.Equal(t, 8081, cfg.Monitoring.HealthPort)
	assert.Empty(t, cfg.Report.OutputDir)
	assert.True(t, cfg.Report.WriteXLSX)
}

// TestLoad_EnvironmentOverrides checks that set variables win over defaults
func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("BREADTH_CSV", "/srv/data/breadth.csv")
	t.Setenv("SIZING_STRATEGY", "bottom_3stage")
	t.Setenv("BASELINE_SIZE", "10")
	t.Setenv("INITIAL_CAPITAL", "250000")
	t.Setenv("MONITORING_ENABLED", "true")
	t.Setenv("PROMETHEUS_PORT", "9090")
	t.Setenv("REPORT_OUTPUT_DIR", "reports/q3")
	t.Setenv("REPORT_XLSX", "false")

	cfg := Load()

	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "/srv/data/breadth.csv", cfg.Data.BreadthCSV)
	assert.Equal(t, "bottom_3stage", cfg.Run.Strategy)
	assert.Equal(t, 10.0, cfg.Run.BaselineSize)
	assert.Equal(t, 250000.0, cfg.Run.InitialCapital)
	assert.True(t, cfg.Monitoring.Enabled)
	assert.Equal(t, 9090, cfg.Monitoring.PrometheusPort)
	assert.Equal(t, "reports/q3", cfg.Report.OutputDir)
	assert.False(t, cfg.Report.WriteXLSX)
}

// TestLoad_MalformedValuesFallBack checks unparseable values keep defaults
func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("BASELINE_SIZE", "fifteen")
	t.Setenv("PROMETHEUS_PORT", "not-a-port")
	t.Setenv("MONITORING_ENABLED", "maybe")

	cfg := Load()
	require.NotNil(t, cfg)

	assert.Equal(t, 15.0, cfg.Run.BaselineSize)
	assert.Equal(t, 8080, cfg.Monitoring.PrometheusPort)
	assert.False(t, cfg.Monitoring.Enabled)
}
