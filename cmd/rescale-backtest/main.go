package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/quangminh-dev/dynamic-sizing-backtest/cmd/common"
	"github.com/quangminh-dev/dynamic-sizing-backtest/internal/backtest"
	"github.com/quangminh-dev/dynamic-sizing-backtest/internal/breadth"
	"github.com/quangminh-dev/dynamic-sizing-backtest/internal/config"
	apperrors "github.com/quangminh-dev/dynamic-sizing-backtest/internal/errors"
	"github.com/quangminh-dev/dynamic-sizing-backtest/internal/logger"
	"github.com/quangminh-dev/dynamic-sizing-backtest/internal/monitoring"
	"github.com/quangminh-dev/dynamic-sizing-backtest/internal/sizing"
	"github.com/quangminh-dev/dynamic-sizing-backtest/pkg/reporting"
	"github.com/quangminh-dev/dynamic-sizing-backtest/pkg/types"
)

const (
	AppName = "Rescale Backtest"

	// Default values
	DefaultBreadthFile    = "data/market_breadth.csv"
	DefaultTradesFile     = "data/trades.csv"
	DefaultStrategy       = "breadth_8ma"
	DefaultBaselineSize   = 15.0
	DefaultInitialCapital = 100000.0
	DefaultMetricsPort    = 8080
	DefaultHealthPort     = 8081
)

var healthChecker = monitoring.NewHealthChecker()

// runSettings are the per-run parameters after flag and environment
// resolution; flags win over environment values over built-in defaults.
type runSettings struct {
	breadthPath    string
	tradesPath     string
	baselineSize   float64
	initialCapital float64
	outputDir      string
	writeXLSX      bool
	consoleOnly    bool
}

func main() {
	// Create and parse command line flags
	flags := NewRescaleFlags()
	flag.Parse()

	// Validate flags before proceeding
	if err := ValidateRescaleFlags(flags); err != nil {
		common.Error("Flag validation error: %v", err)
		os.Exit(1)
	}

	// Version and help
	if *flags.ShowVersion {
		common.PrintVersion(AppName)
		return
	}

	if *flags.ShowHelp {
		printUsageHelp()
		return
	}

	if *flags.Quiet {
		common.DefaultLogger.SetSilentMode(true)
	}

	// Load environment
	loadEnvironment(*flags.EnvFile)
	envCfg := config.Load()
	applyLogLevel(envCfg.LogLevel)

	// Header
	printHeader(envCfg.Environment)

	settings := &runSettings{
		breadthPath:    pickString(*flags.BreadthFile, DefaultBreadthFile, envCfg.Data.BreadthCSV),
		tradesPath:     pickString(*flags.TradesFile, DefaultTradesFile, envCfg.Data.TradesCSV),
		baselineSize:   pickFloat(*flags.BaselineSize, DefaultBaselineSize, envCfg.Run.BaselineSize),
		initialCapital: pickFloat(*flags.InitialCapital, DefaultInitialCapital, envCfg.Run.InitialCapital),
		outputDir:      pickString(*flags.OutputDir, "", envCfg.Report.OutputDir),
		writeXLSX:      envCfg.Report.WriteXLSX,
		consoleOnly:    *flags.ConsoleOnly,
	}
	strategyName := pickString(*flags.Strategy, DefaultStrategy, envCfg.Run.Strategy)

	// Resolved paths can come from the environment, so check them here
	// rather than during flag validation
	v := common.NewFlagValidator()
	v.ValidateFile("breadth CSV", settings.breadthPath, true)
	v.ValidateFile("trades CSV", settings.tradesPath, true)
	if v.HasErrors() {
		common.Error("%v", v.GetError())
		os.Exit(1)
	}

	// Load sizing parameters (defaults merged with optional JSON file)
	configPath := ResolveConfigPath(*flags.ConfigFile)
	if configPath != "" && !common.FileExists(configPath) {
		fatalRunError("Configuration", apperrors.NewConfigurationError("cli", "resolve_config",
			fmt.Sprintf("sizing config file not found: %s", configPath)))
	}
	sizingCfg, err := config.LoadSizingConfig(configPath)
	if err != nil {
		fatalRunError("Configuration", err)
	}

	// Optional monitoring endpoints
	if *flags.MetricsEnabled || envCfg.Monitoring.Enabled {
		metricsPort := pickInt(*flags.MetricsPort, DefaultMetricsPort, envCfg.Monitoring.PrometheusPort)
		healthPort := pickInt(*flags.HealthPort, DefaultHealthPort, envCfg.Monitoring.HealthPort)
		startMonitoring(metricsPort, healthPort)
	}

	// Load market breadth data
	manager, err := breadth.Load(settings.breadthPath)
	if err != nil {
		fatalRunError("Market data", err)
	}

	// Load the simulated trades
	trades, err := backtest.LoadTrades(settings.tradesPath)
	if err != nil {
		fatalRunError("Trade data", err)
	}

	printDataSummary(manager, settings.breadthPath, settings.tradesPath, len(trades))

	// Execute based on options
	if *flags.CompareAll {
		runCompareAll(settings, sizingCfg, manager, trades)
	} else {
		strategy, err := sizing.ParseStrategy(strategyName)
		if err != nil {
			fatalRunError("Configuration",
				apperrors.NewConfigurationError("cli", "parse_strategy", err.Error()))
		}
		runSingle(settings, sizingCfg.WithStrategy(strategy), manager, trades)
	}
}

func printHeader(environment string) {
	fmt.Printf("🎯 %s v%s\n", strings.ToUpper(AppName), common.GetShortVersion())
	fmt.Printf("Environment: %s\n", environment)
	fmt.Printf("%s\n\n", strings.Repeat("=", 50))
}

func printUsageHelp() {
	fmt.Printf("%s v%s - Dynamic Position Sizing for Simulated Trades\n\n", AppName, common.GetShortVersion())
	fmt.Printf("USAGE:\n  %s [OPTIONS]\n\n", filepath.Base(flag.CommandLine.Name()))

	PrintUsageExamples()
	PrintFlagGroups()

	fmt.Printf("\nFor more information, see the README or documentation.\n")
}

func loadEnvironment(envFile string) {
	if err := common.LoadEnvFile(envFile); err != nil {
		common.Warn("Continuing with system environment only")
	}
}

// applyLogLevel maps the LOG_LEVEL environment value onto the console logger.
func applyLogLevel(level string) {
	switch strings.ToLower(level) {
	case "error":
		common.DefaultLogger.Level = common.LogLevelError
	case "warn":
		common.DefaultLogger.Level = common.LogLevelWarn
	case "debug":
		common.DefaultLogger.Level = common.LogLevelDebug
	default:
		common.DefaultLogger.Level = common.LogLevelInfo
	}
}

// pickString prefers an explicit flag value over the environment default.
func pickString(flagValue, flagDefault, envValue string) string {
	if flagValue != flagDefault {
		return flagValue
	}
	if envValue != "" {
		return envValue
	}
	return flagDefault
}

func pickFloat(flagValue, flagDefault, envValue float64) float64 {
	if flagValue != flagDefault {
		return flagValue
	}
	if envValue != 0 {
		return envValue
	}
	return flagDefault
}

func pickInt(flagValue, flagDefault, envValue int) int {
	if flagValue != flagDefault {
		return flagValue
	}
	if envValue != 0 {
		return envValue
	}
	return flagDefault
}

func startMonitoring(metricsPort, healthPort int) {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", monitoring.NewMetricsHandler())
		addr := fmt.Sprintf(":%d", metricsPort)
		if err := http.ListenAndServe(addr, mux); err != nil {
			common.Warn("Metrics server stopped: %v", err)
		}
	}()

	go func() {
		mux := http.NewServeMux()
		mux.Handle("/health", healthChecker)
		addr := fmt.Sprintf(":%d", healthPort)
		if err := http.ListenAndServe(addr, mux); err != nil {
			common.Warn("Health server stopped: %v", err)
		}
	}()

	common.Info("Monitoring enabled: metrics on :%d, health on :%d", metricsPort, healthPort)
}

func runSingle(settings *runSettings, cfg *sizing.Config, manager *breadth.Manager, trades []types.TradeRecord) {
	printConfigSummary(cfg, settings.baselineSize, settings.initialCapital)

	results, err := executeRun(settings, cfg, manager, trades)
	if err != nil {
		fatalRunError("Rescaling run", err)
	}

	printResults(results)

	if !settings.consoleOnly {
		saveResults(settings, results, outputDir(settings, string(cfg.Strategy)))
	}
}

func runCompareAll(settings *runSettings, cfg *sizing.Config, manager *breadth.Manager, trades []types.TradeRecord) {
	fmt.Printf("🧮 Comparing all %d strategies over %d trades\n\n", len(sizing.AllStrategies), len(trades))

	allResults := make([]*backtest.Results, 0, len(sizing.AllStrategies))
	for _, strategy := range sizing.AllStrategies {
		common.Progress("Running strategy %s", strategy)

		results, err := executeRun(settings, cfg.WithStrategy(strategy), manager, trades)
		if err != nil {
			fatalRunError(fmt.Sprintf("Strategy %s", strategy), err)
		}
		allResults = append(allResults, results)

		if !settings.consoleOnly {
			saveResults(settings, results, outputDir(settings, string(strategy)))
		}
	}

	printComparisonTable(allResults)
}

// executeRun wires one rescaler run with its file logger.
func executeRun(settings *runSettings, cfg *sizing.Config, manager *breadth.Manager, trades []types.TradeRecord) (*backtest.Results, error) {
	rescaler, err := backtest.NewRescaler(manager, cfg, settings.baselineSize, settings.initialCapital)
	if err != nil {
		return nil, err
	}

	runLog, err := logger.NewLogger(string(cfg.Strategy))
	if err != nil {
		common.Warn("Could not create run log: %v", err)
	} else {
		common.Info("Run log: %s", runLog.GetLogPath())
		runLog.LogDataLoad("market breadth", manager.RecordCount(), settings.breadthPath)
		runLog.LogDataLoad("simulated trades", len(trades), settings.tradesPath)
		rescaler.SetLogger(runLog)
		defer runLog.Close()
	}

	results, err := rescaler.Run(trades)
	if err != nil {
		if runLog != nil {
			runLog.LogError("rescaling run", err)
		}
		healthChecker.RecordError(err.Error())
		return nil, err
	}

	healthChecker.RecordRun(results.Metrics.TotalReturn)
	return results, nil
}

func outputDir(settings *runSettings, strategy string) string {
	if settings.outputDir != "" {
		return filepath.Join(settings.outputDir, strategy)
	}
	return reporting.DefaultOutputDir(strategy)
}

func saveResults(settings *runSettings, results *backtest.Results, dir string) {
	common.Section("Reports")

	if err := common.EnsureDir(dir); err != nil {
		common.Warn("Could not create output directory %s: %v", dir, err)
		return
	}

	if settings.writeXLSX {
		tradesPath := filepath.Join(dir, "trades.xlsx")
		if err := reporting.WriteResultsXLSX(results, tradesPath); err != nil {
			common.Warn("Could not write %s: %v", tradesPath, err)
		} else {
			common.Success("Trades workbook: %s", tradesPath)
		}
	}

	csvPath := filepath.Join(dir, "trades.csv")
	if err := reporting.WriteTradesCSV(results, csvPath); err != nil {
		common.Warn("Could not write %s: %v", csvPath, err)
	} else {
		common.Success("Trades CSV: %s", csvPath)
	}

	jsonPath := filepath.Join(dir, "summary.json")
	if err := reporting.WriteResultsJSON(results, jsonPath); err != nil {
		common.Warn("Could not write %s: %v", jsonPath, err)
	} else {
		common.Success("Run summary: %s", jsonPath)
	}
	fmt.Println()
}

// fatalRunError prints the error with its category and aborts. Data
// load and configuration problems are fatal before any output exists.
func fatalRunError(context string, err error) {
	monitoring.RecordError(errorCategory(err))
	common.Error("%s error: %v", context, err)
	os.Exit(1)
}

func errorCategory(err error) string {
	switch {
	case apperrors.IsDataLoadError(err):
		return "data_load"
	case apperrors.IsConfigurationError(err):
		return "config"
	default:
		return "validation"
	}
}
