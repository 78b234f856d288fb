package config

import (
	"os"
	"strconv"
)

// Config carries environment-level settings for a rescaling run.
// Per-run parameters (strategy, baseline size, file paths) come from
// CLI flags; environment variables supply defaults that flags can
// override.
type Config struct {
	Environment string
	LogLevel    string

	Data struct {
		BreadthCSV string
		TradesCSV  string
	}

	Run struct {
		Strategy       string
		BaselineSize   float64
		InitialCapital float64
	}

	Monitoring struct {
		Enabled        bool
		PrometheusPort int
		HealthPort     int
	}

	Report struct {
		OutputDir string
		WriteXLSX bool
	}
}

// Load reads the environment into a Config. Call after the .env file
// has been loaded so file values are visible here.
func Load() *Config {
	cfg := &Config{
		Environment: getEnv("ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	cfg.Data.BreadthCSV = getEnv("BREADTH_CSV", "data/market_breadth.csv")
	cfg.Data.TradesCSV = getEnv("TRADES_CSV", "data/trades.csv")

	cfg.Run.Strategy = getEnv("SIZING_STRATEGY", "breadth_8ma")
	cfg.Run.BaselineSize = getEnvFloat("BASELINE_SIZE", 15.0)
	cfg.Run.InitialCapital = getEnvFloat("INITIAL_CAPITAL", 100000.0)

	cfg.Monitoring.Enabled = getEnvBool("MONITORING_ENABLED", false)
	cfg.Monitoring.PrometheusPort = getEnvInt("PROMETHEUS_PORT", 8080)
	cfg.Monitoring.HealthPort = getEnvInt("HEALTH_PORT", 8081)

	// Empty means the dated per-strategy default under results/
	cfg.Report.OutputDir = getEnv("REPORT_OUTPUT_DIR", "")
	cfg.Report.WriteXLSX = getEnvBool("REPORT_XLSX", true)

	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			return parsed
		}
	}
	return defaultVal
}
