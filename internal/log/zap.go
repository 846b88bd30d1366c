// Package log owns the process-wide zap logger. Components take named children
// of Default so their output can be told apart.
package log

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger atomic.Pointer[zap.Logger]

func init() {
	logger.Store(zap.NewNop())
}

// Default returns the current process logger. It is a no-op logger until Init
// or SetDefault is called.
func Default() *zap.Logger {
	return logger.Load()
}

// SetDefault replaces the process logger.
func SetDefault(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}

// Init builds a logger for the given level (debug, info, warn, error) and
// format ("json" for production output, anything else for console output) and
// installs it as the default.
func Init(level, format string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}

	var cfg zap.Config
	if format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	SetDefault(l)
	return nil
}
