package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"":      zapcore.InfoLevel,
		"bogus": zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestZapAdapter_FieldsAndScopes(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := NewZapAdapter(zap.New(core)).With(map[string]interface{}{"component": "parser"})

	log.Info("parsed source", map[string]interface{}{"rows": 3})
	log.WithError(errors.New("boom")).Warn("lookup failed", nil)
	log.Debug("skipped row", map[string]interface{}{"cause": errors.New("no name")})

	entries := logs.All()
	assert.Len(t, entries, 3)

	first := entries[0].ContextMap()
	assert.Equal(t, "parser", first["component"])
	assert.EqualValues(t, 3, first["rows"])

	second := entries[1].ContextMap()
	assert.Equal(t, "boom", second["error"])

	third := entries[2].ContextMap()
	assert.Equal(t, "no name", third["cause"])
}

func TestNew_FallsBackToConsole(t *testing.T) {
	l := New("debug", "console")
	assert.NotNil(t, l)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestNewNoOpLogger(t *testing.T) {
	log := NewNoOpLogger()
	assert.NotPanics(t, func() {
		log.Error("ignored", map[string]interface{}{"k": "v"})
	})
}
