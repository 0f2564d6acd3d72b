// Package logging builds the zap loggers used by both binaries.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a logger for the given level and environment. Development
// gets the human-readable console encoder, everything else JSON. An empty
// file logs to stderr.
func New(level, environment, file string) (*zap.Logger, error) {
	var config zap.Config
	if environment == "development" {
		config = zap.NewDevelopmentConfig()
	} else {
		config = zap.NewProductionConfig()
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		config.Level = zap.NewAtomicLevelAt(lvl)
	}

	if file != "" {
		config.OutputPaths = []string{file}
		config.ErrorOutputPaths = []string{file}
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger, nil
}

// NewForTUI returns a logger that never writes to the terminal. Without a
// file it discards everything.
func NewForTUI(level, environment, file string) (*zap.Logger, error) {
	if file == "" {
		return zap.NewNop(), nil
	}
	return New(level, environment, file)
}
