package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func newObservedLogger(level zapcore.Level) (Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return NewLoggerFromCore(core), logs
}

func TestNewLogger_JSONFormat(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelInfo, Format: "json", OutputPaths: []string{"stdout"}})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_ConsoleFormatWithService(t *testing.T) {
	l, err := NewLogger(LogConfig{Level: LevelDebug, Format: "console", Service: "renewals-api"})
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestNewLogger_EmptyOutputPathsRejected(t *testing.T) {
	l, err := NewLogger(LogConfig{OutputPaths: []string{}})
	assert.Error(t, err)
	assert.Nil(t, l)
}

func TestParseLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"DEBUG":   zapcore.DebugLevel,
		"warn":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		" error ": zapcore.ErrorLevel,
		"info":    zapcore.InfoLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestZapLogger_LevelFiltering(t *testing.T) {
	l, logs := newObservedLogger(zapcore.WarnLevel)

	l.Debug("dropped")
	l.Info("dropped")
	l.Warn("kept")
	l.Error("kept too")

	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[1].Level)
}

func TestZapLogger_FieldTypes(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)

	l.Info("renewal priced",
		String("currency", "JPY"),
		Int("count", 4),
		Int64("renewal_id", 42),
		Int64s("ids", []int64{1, 2}),
		Float64("rate", 0.5),
		Bool("changed", true),
		Duration("took", time.Second),
		Stringer("amount", decimal.RequireFromString("5.25")),
		Err(errors.New("boom")),
		Any("meta", map[string]string{"k": "v"}),
	)

	require.Equal(t, 1, logs.Len())
	ctx := logs.All()[0].ContextMap()
	assert.Equal(t, "JPY", ctx["currency"])
	assert.Equal(t, int64(4), ctx["count"])
	assert.Equal(t, int64(42), ctx["renewal_id"])
	assert.Equal(t, 0.5, ctx["rate"])
	assert.Equal(t, true, ctx["changed"])
	assert.Equal(t, time.Second, ctx["took"])
	assert.Equal(t, "5.25", ctx["amount"])
	assert.Equal(t, "boom", ctx["error"])
}

func TestZapLogger_WithAndNamed(t *testing.T) {
	l, logs := newObservedLogger(zapcore.DebugLevel)

	child := l.Named("renewal").With(String("portfolio", "p-1"))
	child.Info("hello")
	l.Info("parent")

	require.Equal(t, 2, logs.Len())
	first := logs.All()[0]
	assert.Equal(t, "renewal", first.LoggerName)
	assert.Equal(t, "p-1", first.ContextMap()["portfolio"])
	assert.NotContains(t, logs.All()[1].ContextMap(), "portfolio")
}

func TestErr_Nil(t *testing.T) {
	f := Err(nil)
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "<nil>", f.Value)
}

func TestNopLogger_AllMethodsNoOp(t *testing.T) {
	l := NewNopLogger()
	l.Debug("msg")
	l.Info("msg")
	l.Warn("msg")
	l.Error("msg")
	assert.NotNil(t, l.With(String("k", "v")))
	assert.NotNil(t, l.Named("x"))
	assert.NoError(t, l.Sync())
}

func TestDefault_SetAndGet(t *testing.T) {
	orig := Default()
	t.Cleanup(func() { SetDefault(orig) })

	l, _ := newObservedLogger(zapcore.InfoLevel)
	SetDefault(l)
	assert.Same(t, l, Default())

	SetDefault(nil)
	assert.Same(t, l, Default())
}

//Personal.AI order the ending
