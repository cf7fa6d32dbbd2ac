package logger

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"INFO", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"bogus", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.in))
		})
	}
}

func TestIsDebug(t *testing.T) {
	assert.True(t, New("debug", "json", "stdout").IsDebug())
	assert.False(t, New("info", "json", "stdout").IsDebug())
	assert.False(t, Nop().IsDebug())
}

func TestNew_UnwritableOutputFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "app.log")

	log := New("debug", "json", path)
	assert.NotNil(t, log)
	assert.True(t, log.IsDebug())
	assert.NoFileExists(t, path)
}
