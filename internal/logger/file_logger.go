package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Logger represents a file logger for rescaling runs
type Logger struct {
	strategy string
	logFile  *os.File
	logger   *log.Logger
	mu       sync.Mutex
	logDir   string
}

// LogLevel represents different types of log entries
type LogLevel string

const (
	LogLevelInfo    LogLevel = "INFO"
	LogLevelWarning LogLevel = "WARN"
	LogLevelError   LogLevel = "ERROR"
	LogLevelSizing  LogLevel = "SIZING"
	LogLevelResult  LogLevel = "RESULT"
)

// NewLogger creates a new file logger for the specified strategy
func NewLogger(strategy string) (*Logger, error) {
	// Create log directory if it doesn't exist
	logDir := "logs"
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	// Create log filename with timestamp
	timestamp := time.Now().Format("2006-01-02")
	filename := fmt.Sprintf("rescale_%s_%s.log", strategy, timestamp)
	logPath := filepath.Join(logDir, filename)

	// Open or create log file
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	// Create logger with timestamp and no prefix (we'll add our own formatting)
	logger := log.New(file, "", 0)

	l := &Logger{
		strategy: strategy,
		logFile:  file,
		logger:   logger,
		logDir:   logDir,
	}

	// Write session start header
	l.writeSessionHeader()

	return l, nil
}

// writeSessionHeader writes a session start header to the log
func (l *Logger) writeSessionHeader() {
	l.mu.Lock()
	defer l.mu.Unlock()

	header := fmt.Sprintf(`
================================================================================
🚀 DYNAMIC POSITION SIZING RUN STARTED
================================================================================
Strategy: %s
Started: %s
Log File: rescale_%s_%s.log
================================================================================
`, l.strategy, time.Now().Format("2006-01-02 15:04:05"),
		l.strategy, time.Now().Format("2006-01-02"))

	l.logger.Print(header)
}

// Log writes a formatted log entry with the specified level
func (l *Logger) Log(level LogLevel, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	message := fmt.Sprintf(format, args...)
	logEntry := fmt.Sprintf("[%s] [%s] %s", timestamp, level, message)

	l.logger.Println(logEntry)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.Log(LogLevelInfo, format, args...)
}

// Warning logs a warning message
func (l *Logger) Warning(format string, args ...interface{}) {
	l.Log(LogLevelWarning, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.Log(LogLevelError, format, args...)
}

// LogSizingDecision logs one per-trade sizing decision
func (l *Logger) LogSizingDecision(entryDate time.Time, ticker string, size, multiplier float64, reason string) {
	l.Log(LogLevelSizing, "%s %s -> size %.1f%% (x%.3f) [%s]",
		entryDate.Format("2006-01-02"), ticker, size, multiplier, reason)
}

// LogRunSummary logs the run outcome versus the fixed-size baseline
func (l *Logger) LogRunSummary(strategy string, totalTrades int, dynamicReturn, baseReturn float64, duration time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	timestamp := time.Now().Format("2006-01-02 15:04:05")

	summaryLog := fmt.Sprintf(`
[%s] [RESULT] ==================== RUN COMPLETED ====================
🎯 Strategy: %s
📦 Trades Rescaled: %d
📈 Dynamic Total Return: %.2f%%
📊 Baseline Total Return: %.2f%%
💹 Improvement: %+.2f%%
⏱️ Duration: %s
=============================================================`,
		timestamp, strategy, totalTrades, dynamicReturn, baseReturn,
		dynamicReturn-baseReturn, duration.Round(time.Millisecond))

	l.logger.Println(summaryLog)
}

// LogDataLoad logs a data source load
func (l *Logger) LogDataLoad(source string, records int, path string) {
	l.Info("Loaded %d records from %s (%s)", records, source, path)
}

// LogError logs error with context
func (l *Logger) LogError(context string, err error) {
	l.Error("%s: %v", context, err)
}

// Close closes the log file
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile != nil {
		// Write session end header
		timestamp := time.Now().Format("2006-01-02 15:04:05")
		footer := fmt.Sprintf(`
================================================================================
🛑 DYNAMIC POSITION SIZING RUN ENDED
================================================================================
Ended: %s
================================================================================

`, timestamp)
		l.logger.Print(footer)

		return l.logFile.Close()
	}
	return nil
}

// GetLogPath returns the current log file path
func (l *Logger) GetLogPath() string {
	timestamp := time.Now().Format("2006-01-02")
	filename := fmt.Sprintf("rescale_%s_%s.log", l.strategy, timestamp)
	return filepath.Join(l.logDir, filename)
}
