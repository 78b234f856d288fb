package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quangminh-dev/dynamic-sizing-backtest/cmd/common"
)

// TestPickString_FlagBeatsEnvBeatsDefault checks the resolution order
func TestPickString_FlagBeatsEnvBeatsDefault(t *testing.T) {
	assert.Equal(t, "custom.csv", pickString("custom.csv", DefaultTradesFile, "env.csv"))
	assert.Equal(t, "env.csv", pickString(DefaultTradesFile, DefaultTradesFile, "env.csv"))
	assert.Equal(t, DefaultTradesFile, pickString(DefaultTradesFile, DefaultTradesFile, ""))
}

// TestPickFloat_FlagBeatsEnvBeatsDefault checks the numeric resolution order
func TestPickFloat_FlagBeatsEnvBeatsDefault(t *testing.T) {
	assert.Equal(t, 10.0, pickFloat(10.0, DefaultBaselineSize, 12.0))
	assert.Equal(t, 12.0, pickFloat(DefaultBaselineSize, DefaultBaselineSize, 12.0))
	assert.Equal(t, DefaultBaselineSize, pickFloat(DefaultBaselineSize, DefaultBaselineSize, 0))
}

// TestPickInt_FlagBeatsEnvBeatsDefault checks the port resolution order
func TestPickInt_FlagBeatsEnvBeatsDefault(t *testing.T) {
	assert.Equal(t, 9000, pickInt(9000, DefaultMetricsPort, 9090))
	assert.Equal(t, 9090, pickInt(DefaultMetricsPort, DefaultMetricsPort, 9090))
	assert.Equal(t, DefaultHealthPort, pickInt(DefaultHealthPort, DefaultHealthPort, 0))
}

// TestOutputDir_ExplicitDirGetsStrategySubdir checks the report directory choice
func TestOutputDir_ExplicitDirGetsStrategySubdir(t *testing.T) {
	settings := &runSettings{outputDir: "reports/q3"}
	assert.Equal(t, filepath.Join("reports/q3", "bottom_3stage"), outputDir(settings, "bottom_3stage"))
}

// TestOutputDir_EmptyFallsBackToDatedDefault checks the dated default path
func TestOutputDir_EmptyFallsBackToDatedDefault(t *testing.T) {
	settings := &runSettings{}
	dir := outputDir(settings, "breadth_8ma")
	assert.Contains(t, dir, filepath.Join("results", "breadth_8ma_"))
}

// TestResolveConfigPath checks the configs/ lookup for bare names
func TestResolveConfigPath(t *testing.T) {
	assert.Equal(t, "", ResolveConfigPath(""))
	assert.Equal(t, filepath.Join("configs", "aggressive.json"), ResolveConfigPath("aggressive"))
	assert.Equal(t, "my/params.json", ResolveConfigPath("my/params.json"))
}

// TestApplyLogLevel maps LOG_LEVEL values onto the console logger
func TestApplyLogLevel(t *testing.T) {
	previous := common.DefaultLogger.Level
	defer func() { common.DefaultLogger.Level = previous }()

	applyLogLevel("error")
	assert.Equal(t, common.LogLevelError, common.DefaultLogger.Level)

	applyLogLevel("WARN")
	assert.Equal(t, common.LogLevelWarn, common.DefaultLogger.Level)

	applyLogLevel("debug")
	assert.Equal(t, common.LogLevelDebug, common.DefaultLogger.Level)

	applyLogLevel("anything-else")
	assert.Equal(t, common.LogLevelInfo, common.DefaultLogger.Level)
}
