package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"INFO", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLevel(tt.input))
		})
	}
}

func TestInitLogger(t *testing.T) {
	defer SetLogger(nil)

	require.NoError(t, InitLogger("debug", "json"))
	require.NotNil(t, Logger)
	assert.True(t, Logger.Core().Enabled(zapcore.DebugLevel))

	require.NoError(t, InitLogger("error", ""))
	assert.False(t, Logger.Core().Enabled(zapcore.WarnLevel))
}

func TestGetLogger_Lazy(t *testing.T) {
	SetLogger(nil)
	defer SetLogger(nil)

	assert.NotNil(t, GetLogger())

	nop := zap.NewNop()
	SetLogger(nop)
	assert.Same(t, nop, GetLogger())
}
