// Package logging builds the process-wide zap logger from LoggerConfig.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sandeepkv93/taskdesk/internal/config"
)

const (
	ModeProduction  = "production"
	ModeDevelopment = "development"
)

// New returns a logger writing to cfg.OutputPath. The TUI owns the
// terminal, so stdout and stderr are only used when named explicitly.
func New(cfg config.LoggerConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	var zc zap.Config
	switch strings.ToLower(cfg.Mode) {
	case "", ModeProduction:
		zc = zap.NewProductionConfig()
	case ModeDevelopment:
		zc = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("logging: unknown mode %q", cfg.Mode)
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	switch strings.ToLower(cfg.Encoding) {
	case "":
	case "json", "console":
		zc.Encoding = strings.ToLower(cfg.Encoding)
	default:
		return nil, fmt.Errorf("logging: unknown encoding %q", cfg.Encoding)
	}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if cfg.ColorEnabled && zc.Encoding == "console" {
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = "stderr"
	}
	if out != "stdout" && out != "stderr" {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return nil, fmt.Errorf("logging: create log dir: %w", err)
		}
	}
	zc.OutputPaths = []string{out}
	zc.ErrorOutputPaths = []string{out}

	return zc.Build()
}
