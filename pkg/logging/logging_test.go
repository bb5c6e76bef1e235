package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   DebugLevel,
		"DEBUG":   DebugLevel,
		"warning": WarnLevel,
		"warn":    WarnLevel,
		"error":   ErrorLevel,
		"info":    InfoLevel,
		"":        InfoLevel,
		"verbose": InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), "input %q", in)
	}
}

func TestWithFieldsMergesAndDoesNotMutateParent(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	parent := NewFromZap(zap.New(core)).WithFields(Fields{"component": "pitch_estimator"})
	child := parent.WithFields(Fields{"frames": 12})

	child.Debug("child entry", Fields{"extra": true})
	parent.Info("parent entry")

	entries := logs.All()
	require.Len(t, entries, 2)

	childCtx := entries[0].ContextMap()
	assert.Equal(t, "pitch_estimator", childCtx["component"])
	assert.EqualValues(t, 12, childCtx["frames"])
	assert.Equal(t, true, childCtx["extra"])

	parentCtx := entries[1].ContextMap()
	assert.NotContains(t, parentCtx, "frames")
}

func TestErrorAttachesError(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewFromZap(zap.New(core))

	logger.Error(errors.New("boom"), "decode failed", Fields{"format": "mp3"})

	entries := logs.FilterMessage("decode failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "boom", entries[0].ContextMap()["error"])
	assert.Equal(t, "mp3", entries[0].ContextMap()["format"])
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(DebugLevel, true)
	require.NoError(t, err)
	require.NotNil(t, logger)
	logger.WithFields(Fields{"component": "test"}).Debug("hello")
}

func TestDefaultLoggerIsShared(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetDefault(NewFromZap(zap.New(core)))
	defer SetDefault(nil)

	WithFields(Fields{"component": "engine"}).Warn("degenerate input")
	require.Equal(t, 1, logs.Len())
	assert.Same(t, NewDefaultLogger(), NewDefaultLogger())
}
