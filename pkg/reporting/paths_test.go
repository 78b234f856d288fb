package reporting

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefaultOutputDir_DatedPerStrategy checks the results/<strategy>_<date> layout
func TestDefaultOutputDir_DatedPerStrategy(t *testing.T) {
	expected := filepath.Join("results", fmt.Sprintf("bottom_3stage_%s", time.Now().Format("20060102")))
	assert.Equal(t, expected, DefaultOutputDir("bottom_3stage"))
}

// TestDefaultOutputDir_NormalizesStrategyName checks trimming, lowering, and the empty fallback
func TestDefaultOutputDir_NormalizesStrategyName(t *testing.T) {
	date := time.Now().Format("20060102")
	assert.Equal(t, filepath.Join("results", "breadth_8ma_"+date), DefaultOutputDir("  Breadth_8MA "))
	assert.Equal(t, filepath.Join("results", "unknown_"+date), DefaultOutputDir(""))
}

// TestEnsureDirectoryExists_CreatesParent checks nested parent creation
func TestEnsureDirectoryExists_CreatesParent(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "deep", "nested", "summary.json")

	manager := NewDefaultPathManager()
	require.NoError(t, manager.EnsureDirectoryExists(target))
	assert.DirExists(t, filepath.Join(dir, "deep", "nested"))
}

// TestEnsureDirectoryExists_BareFilename checks a parentless path is a no-op
func TestEnsureDirectoryExists_BareFilename(t *testing.T) {
	manager := NewDefaultPathManager()
	assert.NoError(t, manager.EnsureDirectoryExists("summary.json"))
}
