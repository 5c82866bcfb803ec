package obs

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger from a level name (debug, info, warn, error)
// and an output format (json or console). Empty values default to info/json.
func NewLogger(level, format string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "", "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("new logger: invalid log level %q", level)
	}

	var config zap.Config
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		config = zap.NewProductionConfig()
	case "console":
		config = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("new logger: invalid log format %q", format)
	}
	config.Level = zap.NewAtomicLevelAt(zapLevel)

	log, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("new logger: %w", err)
	}
	return log, nil
}
