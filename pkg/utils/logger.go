package utils

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// NewLogger creates a new configured logger instance
func NewLogger() *logrus.Logger {
	logger := logrus.New()

	// The stdio transport owns stdout, so logs always go to stderr
	logger.SetOutput(os.Stderr)

	logger.SetLevel(getLogLevel())

	if isJSONFormat() {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			DisableColors:   !isColorEnabled(),
		})
	}

	return logger
}

// getLogLevel determines log level from environment
func getLogLevel() logrus.Level {
	levelStr := strings.ToLower(os.Getenv("CSPMMCP_LOG_LEVEL"))

	switch levelStr {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}

// isJSONFormat checks if JSON log format is requested
func isJSONFormat() bool {
	return strings.ToLower(os.Getenv("CSPMMCP_LOG_FORMAT")) == "json"
}

// isColorEnabled checks if colored output is enabled
func isColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if strings.ToLower(os.Getenv("CSPMMCP_LOG_COLOR")) == "false" {
		return false
	}
	return true
}

// NewLoggerWithConfig creates a logger with specific configuration
func NewLoggerWithConfig(level, format string, color bool, file string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if parsed, err := logrus.ParseLevel(level); err == nil {
		logger.SetLevel(parsed)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	if file != "" {
		if f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666); err == nil {
			logger.SetOutput(f)
		}
	}

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			DisableColors:   !color,
		})
	}

	return logger
}
