package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

var (
	logger  = newLogger(os.Stderr, slog.LevelInfo, false)
	logFile *os.File
	mu      sync.Mutex
	isSetup bool
)

func newLogger(w io.Writer, level slog.Level, noColor bool) *slog.Logger {
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
		NoColor:    noColor,
	}))
}

// SetupLogger configures the package logger. Debug enables debug level
// records. When logFilePath is non-empty records go to that file instead of
// stderr.
func SetupLogger(logFilePath string, debug bool) error {
	mu.Lock()
	defer mu.Unlock()

	if isSetup {
		return nil
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	if logFilePath == "" {
		logger = newLogger(os.Stderr, level, false)
		isSetup = true
		return nil
	}

	f, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logFile = f
	logger = newLogger(f, level, true)
	logger.Info("log started", "at", time.Now().Format(time.RFC3339))

	isSetup = true
	return nil
}

// SetOutput points the logger at w. Intended for tests.
func SetOutput(w io.Writer, debug bool) {
	mu.Lock()
	defer mu.Unlock()

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger = newLogger(w, level, true)
}

// CloseLogger closes the log file and restores the stderr logger
func CloseLogger() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logger.Info("log closed", "at", time.Now().Format(time.RFC3339))
		logFile.Close()
		logFile = nil
	}
	logger = newLogger(os.Stderr, slog.LevelInfo, false)
	isSetup = false
}

// Logger returns the current structured logger
func Logger() *slog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// LogInfo logs an information message
func LogInfo(format string, args ...interface{}) {
	Logger().Info(fmt.Sprintf(format, args...))
}

// DebugLog logs a message if debug mode is enabled
func DebugLog(format string, args ...interface{}) {
	Logger().Debug(fmt.Sprintf(format, args...))
}

// LogError logs an error message
func LogError(format string, args ...interface{}) {
	Logger().Error(fmt.Sprintf(format, args...))
}

// LogWarning logs a warning message
func LogWarning(format string, args ...interface{}) {
	Logger().Warn(fmt.Sprintf(format, args...))
}

// LogImageProcessed logs the outcome of decoding one candidate image
func LogImageProcessed(path string, success bool, errMsg string) {
	if success {
		Logger().Debug("processed", "path", path)
		return
	}
	Logger().Debug("skipped", "path", path, "error", errMsg)
}
