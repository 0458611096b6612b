// Package logging provides the structured logging contract used by every
// KeyIP-Renewals component and its zap-backed implementation.  Business code
// depends on the Logger interface only; go.uber.org/zap is not imported
// outside this package.
//
// Initialisation order in cmd/*/main.go:
//
//  1. Load configuration.
//  2. Call NewLogger(cfg.Log) and store the result with SetDefault.
//  3. Construct the remaining components, injecting the Logger.
package logging

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level names accepted by LogConfig.Level.
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// ─────────────────────────────────────────────────────────────────────────────
// Field
// ─────────────────────────────────────────────────────────────────────────────

// Field is a typed key-value pair attached to a log entry.
type Field struct {
	Key   string
	Value interface{}
}

// String constructs a Field with a string value.
func String(key, val string) Field { return Field{Key: key, Value: val} }

// Int constructs a Field with an int value.
func Int(key string, val int) Field { return Field{Key: key, Value: val} }

// Int64 constructs a Field with an int64 value.
func Int64(key string, val int64) Field { return Field{Key: key, Value: val} }

// Int64s constructs a Field carrying a list of identifiers.
func Int64s(key string, val []int64) Field { return Field{Key: key, Value: val} }

// Float64 constructs a Field with a float64 value.
func Float64(key string, val float64) Field { return Field{Key: key, Value: val} }

// Bool constructs a Field with a bool value.
func Bool(key string, val bool) Field { return Field{Key: key, Value: val} }

// Stringer constructs a Field whose value is rendered through String().
// Money amounts (decimal.Decimal) are logged this way so no precision is lost.
func Stringer(key string, val fmt.Stringer) Field { return Field{Key: key, Value: val} }

// Err constructs a Field under the canonical key "error".
func Err(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "<nil>"}
	}
	return Field{Key: "error", Value: err}
}

// Any constructs a Field with an arbitrary value.
func Any(key string, val interface{}) Field { return Field{Key: key, Value: val} }

// Duration constructs a Field with a time.Duration value.
func Duration(key string, val time.Duration) Field { return Field{Key: key, Value: val} }

// ─────────────────────────────────────────────────────────────────────────────
// Logger
// ─────────────────────────────────────────────────────────────────────────────

// Logger is the structured logging contract.  Components receive a Logger via
// constructor injection.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)

	// Fatal logs at FATAL level and exits the process.  Startup paths only.
	Fatal(msg string, fields ...Field)

	// With returns a child Logger that adds fields to every entry.
	With(fields ...Field) Logger

	// Named returns a child Logger whose name is appended with a period
	// separator (e.g. "renewal" -> "renewal.service").
	Named(name string) Logger

	// Sync flushes buffered entries.  Call it before process exit.
	Sync() error
}

// LogConfig carries the parameters required to construct a Logger.  It is
// embedded in the application configuration under the "log" key.
type LogConfig struct {
	// Level is one of debug, info, warn, error (case-insensitive).
	// Unknown values fall back to info.
	Level string `mapstructure:"level" yaml:"level"`

	// Format is "json" (default) or "console".
	Format string `mapstructure:"format" yaml:"format"`

	// OutputPaths defaults to ["stdout"] when nil.  An explicitly empty,
	// non-nil slice is rejected.
	OutputPaths []string `mapstructure:"output_paths" yaml:"output_paths"`

	// ErrorOutputPaths defaults to ["stderr"] when empty.
	ErrorOutputPaths []string `mapstructure:"error_output_paths" yaml:"error_output_paths"`

	// Service is attached to every entry as the "service" field when set.
	Service string `mapstructure:"service" yaml:"service"`
}

// ─────────────────────────────────────────────────────────────────────────────
// zapLogger
// ─────────────────────────────────────────────────────────────────────────────

type zapLogger struct {
	z *zap.Logger
}

func toZapFields(fields []Field) []zap.Field {
	out := make([]zap.Field, 0, len(fields))
	for _, f := range fields {
		switch v := f.Value.(type) {
		case string:
			out = append(out, zap.String(f.Key, v))
		case int:
			out = append(out, zap.Int(f.Key, v))
		case int64:
			out = append(out, zap.Int64(f.Key, v))
		case []int64:
			out = append(out, zap.Int64s(f.Key, v))
		case float64:
			out = append(out, zap.Float64(f.Key, v))
		case bool:
			out = append(out, zap.Bool(f.Key, v))
		case time.Duration:
			out = append(out, zap.Duration(f.Key, v))
		case error:
			out = append(out, zap.NamedError(f.Key, v))
		case fmt.Stringer:
			out = append(out, zap.Stringer(f.Key, v))
		default:
			out = append(out, zap.Any(f.Key, v))
		}
	}
	return out
}

func (l *zapLogger) Debug(msg string, fields ...Field) { l.z.Debug(msg, toZapFields(fields)...) }
func (l *zapLogger) Info(msg string, fields ...Field)  { l.z.Info(msg, toZapFields(fields)...) }
func (l *zapLogger) Warn(msg string, fields ...Field)  { l.z.Warn(msg, toZapFields(fields)...) }
func (l *zapLogger) Error(msg string, fields ...Field) { l.z.Error(msg, toZapFields(fields)...) }
func (l *zapLogger) Fatal(msg string, fields ...Field) { l.z.Fatal(msg, toZapFields(fields)...) }

func (l *zapLogger) With(fields ...Field) Logger {
	return &zapLogger{z: l.z.With(toZapFields(fields)...)}
}

func (l *zapLogger) Named(name string) Logger {
	return &zapLogger{z: l.z.Named(name)}
}

func (l *zapLogger) Sync() error {
	return l.z.Sync()
}

// ParseLevel converts a level name to a zapcore.Level.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn, "warning":
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// NewLogger builds a zap-backed Logger from cfg.
func NewLogger(cfg LogConfig) (Logger, error) {
	if cfg.OutputPaths == nil {
		cfg.OutputPaths = []string{"stdout"}
	}
	if len(cfg.OutputPaths) == 0 {
		return nil, fmt.Errorf("logging: at least one output path is required")
	}
	if len(cfg.ErrorOutputPaths) == 0 {
		cfg.ErrorOutputPaths = []string{"stderr"}
	}

	console := strings.EqualFold(cfg.Format, "console")
	encCfg := zap.NewProductionEncoderConfig()
	encoding := "json"
	if console {
		encCfg = zap.NewDevelopmentEncoderConfig()
		encoding = "console"
	}
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	zapCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(ParseLevel(cfg.Level)),
		Development:      console,
		Encoding:         encoding,
		EncoderConfig:    encCfg,
		OutputPaths:      cfg.OutputPaths,
		ErrorOutputPaths: cfg.ErrorOutputPaths,
	}

	z, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("logging: failed to build zap logger: %w", err)
	}
	if cfg.Service != "" {
		z = z.With(zap.String("service", cfg.Service))
	}
	return &zapLogger{z: z}, nil
}

// NewLoggerFromCore wraps an existing zapcore.Core.  Tests use it with
// zaptest/observer cores.
func NewLoggerFromCore(core zapcore.Core) Logger {
	return &zapLogger{z: zap.New(core, zap.AddCallerSkip(1))}
}

// NewDevelopmentLogger returns a console logger at debug level.  It is used by
// renewalctl when --verbose is set.
func NewDevelopmentLogger() Logger {
	l, err := NewLogger(LogConfig{Level: LevelDebug, Format: "console", OutputPaths: []string{"stderr"}})
	if err != nil {
		return NewNopLogger()
	}
	return l
}

// ─────────────────────────────────────────────────────────────────────────────
// nopLogger
// ─────────────────────────────────────────────────────────────────────────────

type nopLogger struct{}

func (nopLogger) Debug(_ string, _ ...Field) {}
func (nopLogger) Info(_ string, _ ...Field)  {}
func (nopLogger) Warn(_ string, _ ...Field)  {}
func (nopLogger) Error(_ string, _ ...Field) {}
func (nopLogger) Fatal(_ string, _ ...Field) {}
func (n nopLogger) With(_ ...Field) Logger   { return n }
func (n nopLogger) Named(_ string) Logger    { return n }
func (nopLogger) Sync() error                { return nil }

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger { return nopLogger{} }

// ─────────────────────────────────────────────────────────────────────────────
// Process-wide default
// ─────────────────────────────────────────────────────────────────────────────

var (
	defaultMu     sync.RWMutex
	defaultLogger Logger = nopLogger{}
)

// SetDefault replaces the process-wide default Logger.  nil is ignored.
func SetDefault(l Logger) {
	if l == nil {
		return
	}
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

// Default returns the process-wide default Logger.  Constructor injection is
// preferred; Default exists for init paths that cannot receive one.
func Default() Logger {
	defaultMu.RLock()
	l := defaultLogger
	defaultMu.RUnlock()
	return l
}

//Personal.AI order the ending
