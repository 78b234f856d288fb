package common

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// LogLevel represents different logging levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// Logger provides structured logging for CLI applications
type Logger struct {
	Level      LogLevel
	ShowEmojis bool
	SilentMode bool
}

// NewLogger creates a new logger with default settings
func NewLogger() *Logger {
	return &Logger{
		Level:      LogLevelInfo,
		ShowEmojis: true,
		SilentMode: false,
	}
}

// SetSilentMode enables or disables silent mode
func (l *Logger) SetSilentMode(silent bool) {
	l.SilentMode = silent
}

// Section prints a formatted section header
func (l *Logger) Section(title string) {
	if l.SilentMode {
		return
	}

	emoji := "📋"
	if !l.ShowEmojis {
		emoji = "---"
	}

	fmt.Printf("\n%s %s\n", emoji, title)
	fmt.Printf("%s\n", strings.Repeat("-", len(title)+5))
}

// Info prints an info message
func (l *Logger) Info(format string, args ...interface{}) {
	if l.SilentMode || l.Level < LogLevelInfo {
		return
	}

	emoji := "ℹ️"
	if !l.ShowEmojis {
		emoji = "[INFO]"
	}

	fmt.Printf("%s  %s\n", emoji, fmt.Sprintf(format, args...))
}

// Error prints an error message
func (l *Logger) Error(format string, args ...interface{}) {
	emoji := "❌"
	if !l.ShowEmojis {
		emoji = "[ERROR]"
	}

	fmt.Printf("%s %s\n", emoji, fmt.Sprintf(format, args...))
}

// Success prints a success message
func (l *Logger) Success(format string, args ...interface{}) {
	if l.SilentMode {
		return
	}

	emoji := "✅"
	if !l.ShowEmojis {
		emoji = "[SUCCESS]"
	}

	fmt.Printf("%s %s\n", emoji, fmt.Sprintf(format, args...))
}

// Warn prints a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.Level < LogLevelWarn {
		return
	}

	emoji := "⚠️"
	if !l.ShowEmojis {
		emoji = "[WARN]"
	}

	fmt.Printf("%s  %s\n", emoji, fmt.Sprintf(format, args...))
}

// Progress prints a progress message
func (l *Logger) Progress(format string, args ...interface{}) {
	if l.SilentMode {
		return
	}

	emoji := "🔄"
	if !l.ShowEmojis {
		emoji = "[PROGRESS]"
	}

	fmt.Printf("%s %s\n", emoji, fmt.Sprintf(format, args...))
}

// FileUtils provides file and path utilities
type FileUtils struct{}

// NewFileUtils creates a new file utilities instance
func NewFileUtils() *FileUtils {
	return &FileUtils{}
}

// FileExists checks if a file exists
func (f *FileUtils) FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// EnsureDir ensures a directory exists, creating it if necessary
func (f *FileUtils) EnsureDir(path string) error {
	return os.MkdirAll(path, 0755)
}

// ResolvePath resolves a path with smart defaults
func (f *FileUtils) ResolvePath(path, defaultDir, defaultExt string) string {
	if path == "" {
		return ""
	}

	// Add default extension if missing
	if defaultExt != "" && !strings.HasSuffix(strings.ToLower(path), defaultExt) {
		path += defaultExt
	}

	// Add default directory if no path separators
	if defaultDir != "" && !strings.ContainsAny(path, "/\\") {
		return filepath.Join(defaultDir, path)
	}

	return path
}

// EnvLoader provides environment loading utilities
type EnvLoader struct {
	logger *Logger
}

// NewEnvLoader creates a new environment loader
func NewEnvLoader(logger *Logger) *EnvLoader {
	return &EnvLoader{logger: logger}
}

// LoadEnvFile loads environment variables from a file
func (e *EnvLoader) LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		e.logger.Warn("Environment file %s not found, using system environment", path)
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		e.logger.Warn("Could not load environment file %s: %v", path, err)
		return err
	}

	return nil
}

// GetEnvWithDefault gets an environment variable with a default value
func (e *EnvLoader) GetEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FormatUtils provides formatting utilities
type FormatUtils struct{}

// NewFormatUtils creates a new format utilities instance
func NewFormatUtils() *FormatUtils {
	return &FormatUtils{}
}

// FormatPercent formats a decimal as a percentage
func (f *FormatUtils) FormatPercent(value float64, precision int) string {
	return fmt.Sprintf("%.*f%%", precision, value*100)
}

// FormatCurrency formats a value as currency
func (f *FormatUtils) FormatCurrency(value float64) string {
	return fmt.Sprintf("$%.2f", value)
}

// Global instances for convenience
var (
	DefaultLogger    = NewLogger()
	DefaultFileUtils = NewFileUtils()
	DefaultEnvLoader = NewEnvLoader(DefaultLogger)
	DefaultFormatter = NewFormatUtils()
)

// Convenience functions using global instances
func Section(title string)                        { DefaultLogger.Section(title) }
func Info(format string, args ...interface{})     { DefaultLogger.Info(format, args...) }
func Error(format string, args ...interface{})    { DefaultLogger.Error(format, args...) }
func Success(format string, args ...interface{})  { DefaultLogger.Success(format, args...) }
func Warn(format string, args ...interface{})     { DefaultLogger.Warn(format, args...) }
func Progress(format string, args ...interface{}) { DefaultLogger.Progress(format, args...) }

func LoadEnvFile(path string) error            { return DefaultEnvLoader.LoadEnvFile(path) }
func GetEnvWithDefault(key, def string) string { return DefaultEnvLoader.GetEnvWithDefault(key, def) }

func FileExists(path string) bool { return DefaultFileUtils.FileExists(path) }
func EnsureDir(path string) error { return DefaultFileUtils.EnsureDir(path) }
func ResolvePath(path, defaultDir, defaultExt string) string {
	return DefaultFileUtils.ResolvePath(path, defaultDir, defaultExt)
}

func FormatPercent(val float64, prec int) string { return DefaultFormatter.FormatPercent(val, prec) }
func FormatCurrency(val float64) string          { return DefaultFormatter.FormatCurrency(val) }
