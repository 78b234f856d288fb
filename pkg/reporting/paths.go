package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultPathManager implements path management functionality
type DefaultPathManager struct{}

// NewDefaultPathManager creates a new path manager
func NewDefaultPathManager() *DefaultPathManager {
	return &DefaultPathManager{}
}

// GetDefaultOutputDir returns the default output directory for a strategy run
func (p *DefaultPathManager) GetDefaultOutputDir(strategy string) string {
	s := strings.ToLower(strings.TrimSpace(strategy))
	if s == "" {
		s = "unknown"
	}
	return filepath.Join("results", fmt.Sprintf("%s_%s", s, time.Now().Format("20060102")))
}

// EnsureDirectoryExists creates the parent directory if it doesn't exist
func (p *DefaultPathManager) EnsureDirectoryExists(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// Package-level convenience function
func DefaultOutputDir(strategy string) string {
	manager := NewDefaultPathManager()
	return manager.GetDefaultOutputDir(strategy)
}
