package common

import (
	"fmt"
	"runtime"
)

const (
	// Application information
	ProjectName    = "Dynamic Sizing Backtest"
	ProjectVersion = "1.0.0"
	ProjectRepo    = "github.com/quangminh-dev/dynamic-sizing-backtest"

	// Build information - these would normally be set during build via -ldflags
	BuildDate   = "2025-01-01" // Will be overridden during build
	BuildCommit = "dev"        // Will be overridden during build
)

// VersionInfo contains version and build information
type VersionInfo struct {
	ProjectName  string `json:"project_name"`
	Version      string `json:"version"`
	BuildDate    string `json:"build_date"`
	BuildCommit  string `json:"build_commit"`
	GoVersion    string `json:"go_version"`
	Architecture string `json:"architecture"`
	Repository   string `json:"repository"`
}

// GetVersionInfo returns complete version information
func GetVersionInfo() VersionInfo {
	return VersionInfo{
		ProjectName:  ProjectName,
		Version:      ProjectVersion,
		BuildDate:    BuildDate,
		BuildCommit:  BuildCommit,
		GoVersion:    runtime.Version(),
		Architecture: runtime.GOOS + "/" + runtime.GOARCH,
		Repository:   ProjectRepo,
	}
}

// PrintVersion prints version information in a formatted way
func PrintVersion(appName string) {
	info := GetVersionInfo()

	fmt.Printf("%s v%s\n", appName, GetFullVersion())
	if IsDevBuild() {
		fmt.Printf("Build: development\n")
	}
	fmt.Printf("Go: %s (%s)\n", info.GoVersion, info.Architecture)
}

// GetShortVersion returns a short version string
func GetShortVersion() string {
	return ProjectVersion
}

// GetFullVersion returns a full version string with build info
func GetFullVersion() string {
	info := GetVersionInfo()
	return fmt.Sprintf("%s-%s (%s)", info.Version, info.BuildCommit, info.BuildDate)
}

// IsDevBuild returns true if this is a development build
func IsDevBuild() bool {
	return BuildCommit == "dev"
}
