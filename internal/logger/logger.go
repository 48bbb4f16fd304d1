// Package logger builds the process logger from the configured mode.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Modes accepted by New.
const (
	ModeWarn    = "warn"
	ModeDebug   = "debug"
	ModeRelease = "release"
	ModeQuiet   = "quiet"
)

// New returns a logger for mode. The empty mode is ModeWarn: console output
// of warnings and errors only, so commands stay quiet unless something fails.
func New(mode string) (*zap.Logger, error) {
	var (
		l   *zap.Logger
		err error
	)
	switch mode {
	case ModeWarn, "":
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		cfg.DisableStacktrace = true
		l, err = cfg.Build()
	case ModeRelease:
		l, err = zap.NewProduction()
	case ModeQuiet:
		return zap.NewNop(), nil
	case ModeDebug:
		l, err = zap.NewDevelopment()
	default:
		return nil, fmt.Errorf("logger: unknown mode %q", mode)
	}
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l, nil
}
