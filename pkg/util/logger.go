package util

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gookit/color"
)

var (
	// Log levels
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"

	// Default log level
	currentLevel = LevelInfo
	levelMutex   sync.RWMutex

	levelColors = map[string]color.Color{
		LevelDebug: color.Blue,
		LevelInfo:  color.Green,
		LevelWarn:  color.Yellow,
		LevelError: color.Red,
	}

	logger = log.New(os.Stdout, "", 0)
)

// SetLogLevel sets the current logging level
func SetLogLevel(level string) {
	level = strings.ToUpper(strings.TrimSpace(level))

	levelMutex.Lock()
	defer levelMutex.Unlock()

	switch level {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		currentLevel = level
	default:
		logger.Printf("Invalid log level: %s, using INFO", level)
		currentLevel = LevelInfo
	}
}

// GetLogLevel returns the active logging level
func GetLogLevel() string {
	levelMutex.RLock()
	defer levelMutex.RUnlock()
	return currentLevel
}

// SetOutput redirects log lines, mostly useful in tests
func SetOutput(w io.Writer) {
	logger.SetOutput(w)
}

// shouldLog determines if a message at the given level should be logged
func shouldLog(level string) bool {
	switch GetLogLevel() {
	case LevelDebug:
		return true
	case LevelInfo:
		return level != LevelDebug
	case LevelWarn:
		return level == LevelWarn || level == LevelError
	case LevelError:
		return level == LevelError
	default:
		return level != LevelDebug
	}
}

// getCallerInfo gets the caller file and line number
func getCallerInfo() string {
	_, file, line, ok := runtime.Caller(3) // Skip getCallerInfo, logWithLevel, and the log function
	if !ok {
		return "unknown:0"
	}
	parts := strings.Split(file, "/")
	file = parts[len(parts)-1]
	return fmt.Sprintf("%s:%d", file, line)
}

// logWithLevel logs a message with the specified level
func logWithLevel(level, format string, args ...interface{}) {
	if !shouldLog(level) {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	caller := getCallerInfo()
	message := fmt.Sprintf(format, args...)

	tag := "[" + level + "]"
	if c, ok := levelColors[level]; ok {
		tag = c.Sprint(tag)
	}

	logger.Printf("%s %s %s - %s", timestamp, tag, caller, message)
}

// Debug logs a debug message
func Debug(format string, args ...interface{}) {
	logWithLevel(LevelDebug, format, args...)
}

// Info logs an info message
func Info(format string, args ...interface{}) {
	logWithLevel(LevelInfo, format, args...)
}

// Warn logs a warning message
func Warn(format string, args ...interface{}) {
	logWithLevel(LevelWarn, format, args...)
}

// Error logs an error message
func Error(format string, args ...interface{}) {
	logWithLevel(LevelError, format, args...)
}

// Fatal logs an error message and exits
func Fatal(format string, args ...interface{}) {
	logWithLevel(LevelError, format, args...)
	os.Exit(1)
}

// Init initializes the logger. An explicit level wins over LOG_LEVEL.
func Init(level string) {
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if level != "" {
		SetLogLevel(level)
	}

	// Colors are dropped automatically when stdout is not a terminal
	color.Enable = color.SupportColor()

	Info("Logger initialized with level: %s", GetLogLevel())
}
