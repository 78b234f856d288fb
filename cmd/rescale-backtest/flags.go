package main

import (
	"flag"
	"fmt"
	"strings"

	"github.com/quangminh-dev/dynamic-sizing-backtest/cmd/common"
	"github.com/quangminh-dev/dynamic-sizing-backtest/internal/sizing"
)

// RescaleFlags holds all command line flags for the rescale backtest command
type RescaleFlags struct {
	// Data sources
	BreadthFile *string
	TradesFile  *string

	// Sizing parameters
	ConfigFile   *string
	Strategy     *string
	BaselineSize *float64

	// Account settings
	InitialCapital *float64

	// Analysis options
	CompareAll *bool

	// Monitoring
	MetricsEnabled *bool
	MetricsPort    *int
	HealthPort     *int

	// Output options
	OutputDir   *string
	ConsoleOnly *bool
	Quiet       *bool
	EnvFile     *string

	// Help and version
	ShowVersion *bool
	ShowHelp    *bool
}

// NewRescaleFlags creates and registers all command line flags
func NewRescaleFlags() *RescaleFlags {
	flags := &RescaleFlags{
		// Data sources
		BreadthFile: flag.String("breadth", DefaultBreadthFile, "Path to market breadth CSV"),
		TradesFile:  flag.String("trades", DefaultTradesFile, "Path to simulated trades CSV"),

		// Sizing parameters
		ConfigFile:   flag.String("config", "", "Path to sizing parameter JSON file"),
		Strategy:     flag.String("strategy", DefaultStrategy, "Sizing strategy (breadth_8ma, advanced_5stage, bearish_signal, bottom_3stage)"),
		BaselineSize: flag.Float64("baseline", DefaultBaselineSize, "Baseline position size of the original run (percent of capital)"),

		// Account settings
		InitialCapital: flag.Float64("capital", DefaultInitialCapital, "Initial capital for return calculation"),

		// Analysis options
		CompareAll: flag.Bool("compare-all", false, "Run every strategy and compare results"),

		// Monitoring
		MetricsEnabled: flag.Bool("metrics", false, "Expose Prometheus metrics and health endpoints"),
		MetricsPort:    flag.Int("metrics-port", DefaultMetricsPort, "Prometheus metrics port"),
		HealthPort:     flag.Int("health-port", DefaultHealthPort, "Health check port"),

		// Output options
		OutputDir:   flag.String("output", "", "Output directory for reports (default: results/<strategy>_<date>)"),
		ConsoleOnly: flag.Bool("console-only", false, "Console output only (no files)"),
		Quiet:       flag.Bool("quiet", false, "Suppress console progress output"),
		EnvFile:     flag.String("env", common.GetEnvWithDefault("ENV_FILE", ".env"), "Environment file path"),

		// Help and version
		ShowVersion: flag.Bool("version", false, "Show version information"),
		ShowHelp:    flag.Bool("help", false, "Show detailed help"),
	}

	return flags
}

// ValidateRescaleFlags performs validation on flag combinations
func ValidateRescaleFlags(flags *RescaleFlags) error {
	v := common.NewFlagValidator()

	if *flags.BreadthFile == "" {
		v.AddError("breadth CSV path is required")
	}
	if *flags.TradesFile == "" {
		v.AddError("trades CSV path is required")
	}

	v.ValidateFloat("baseline size", *flags.BaselineSize, 0.01, 100)
	v.ValidatePositiveFloat("initial capital", *flags.InitialCapital)
	v.ValidateInt("metrics port", *flags.MetricsPort, 1, 65535)
	v.ValidateInt("health port", *flags.HealthPort, 1, 65535)

	if !*flags.CompareAll {
		choices := make([]string, 0, len(sizing.AllStrategies))
		for _, strategy := range sizing.AllStrategies {
			choices = append(choices, string(strategy))
		}
		v.ValidateChoice("strategy", *flags.Strategy, choices)
	}

	return v.GetError()
}

// ResolveConfigPath resolves the configuration file path with smart defaults:
// a bare name is looked up under configs/ with a .json extension.
func ResolveConfigPath(configFile string) string {
	return common.ResolvePath(configFile, "configs", ".json")
}

// PrintUsageExamples prints usage examples for the rescale command
func PrintUsageExamples() {
	examples := []struct {
		command     string
		description string
	}{
		{
			"rescale-backtest -breadth data/market_breadth.csv -trades data/trades.csv",
			"Rescale trades with the default breadth_8ma strategy",
		},
		{
			"rescale-backtest -strategy bottom_3stage -trades data/trades.csv",
			"Use the stateful 3-stage bottom detection strategy",
		},
		{
			"rescale-backtest -compare-all -trades data/trades.csv",
			"Run all four strategies and print a comparison table",
		},
		{
			"rescale-backtest -config configs/aggressive.json -baseline 10",
			"Load sizing parameters from file with a 10% baseline",
		},
		{
			"rescale-backtest -strategy advanced_5stage -capital 250000 -output results/q3",
			"Custom capital and output directory",
		},
		{
			"rescale-backtest -strategy bearish_signal -console-only",
			"Console output without writing report files",
		},
	}

	fmt.Printf("\n📚 USAGE EXAMPLES:\n")
	fmt.Printf("%s\n", strings.Repeat("-", 60))

	for _, example := range examples {
		fmt.Printf("\n• %s\n", example.description)
		fmt.Printf("  %s\n", example.command)
	}
}

// PrintFlagGroups prints flags organized by category for better readability
func PrintFlagGroups() {
	fmt.Printf(`
📊 DATA FLAGS:
  -breadth FILE         Market breadth CSV (default: data/market_breadth.csv)
  -trades FILE          Simulated trades CSV (default: data/trades.csv)

🎯 SIZING FLAGS:
  -strategy NAME        Sizing strategy: breadth_8ma, advanced_5stage, bearish_signal, bottom_3stage (default: breadth_8ma)
  -config FILE          Sizing parameter JSON file (overrides defaults)
  -baseline SIZE        Baseline position size of the original run (default: 15)

💰 ACCOUNT FLAGS:
  -capital AMOUNT       Initial capital for return calculation (default: 100000)

🧮 ANALYSIS FLAGS:
  -compare-all          Run every strategy and compare results

📡 MONITORING FLAGS:
  -metrics              Expose Prometheus metrics and health endpoints
  -metrics-port PORT    Prometheus metrics port (default: 8080)
  -health-port PORT     Health check port (default: 8081)

📁 OUTPUT FLAGS:
  -output DIR           Output directory for reports
  -console-only         Console output only, no file output
  -quiet                Suppress console progress output
  -env FILE             Environment file path (default: .env)

❓ HELP FLAGS:
  -version              Show version information
  -help                 Show this help message
`)
}
