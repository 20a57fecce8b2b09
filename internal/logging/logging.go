// Package logging builds the zap logger used throughout imagenode.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/imagenode/internal/config"
)

// Logger is a zap logger whose level can change at runtime.
type Logger struct {
	*zap.Logger

	level zap.AtomicLevel
	file  *os.File
}

// ParseLevel parses a level name. "warning" is accepted for "warn".
func ParseLevel(s string) (zapcore.Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	switch s {
	case "debug", "info", "warn", "error":
		return zapcore.ParseLevel(s)
	}
	return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
}

// New builds a logger from cfg. Output goes to cfg.File when set and to
// fallback otherwise. A nil fallback discards output.
func New(cfg config.LoggingConfig, fallback io.Writer) (*Logger, error) {
	lvl, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	l := &Logger{level: zap.NewAtomicLevelAt(lvl)}

	var w io.Writer = io.Discard
	if fallback != nil {
		w = fallback
	}
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", cfg.File, err)
		}
		l.file = f
		w = f
	}

	var enc zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "json":
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	case "", "console":
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeCaller = nil
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(ec)
	default:
		if l.file != nil {
			_ = l.file.Close()
		}
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), l.level)
	l.Logger = zap.New(core).Named("imagenode")
	return l, nil
}

// Level returns the current level.
func (l *Logger) Level() zapcore.Level {
	return l.level.Level()
}

// SetLevel changes the level by name.
func (l *Logger) SetLevel(s string) error {
	lvl, err := ParseLevel(s)
	if err != nil {
		return err
	}
	l.level.SetLevel(lvl)
	return nil
}

// Apply takes the runtime-adjustable parts of cfg. Format and file changes
// need a restart.
func (l *Logger) Apply(cfg config.LoggingConfig) error {
	return l.SetLevel(cfg.Level)
}

// Close flushes the logger and closes its file.
func (l *Logger) Close() error {
	err := l.Logger.Sync()
	if l.file == nil {
		// Sync on a pipe or terminal fails with EINVAL.
		return nil
	}
	err = multierr.Append(err, l.file.Close())
	l.file = nil
	return err
}
