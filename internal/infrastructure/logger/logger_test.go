package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestForEnvironment(t *testing.T) {
	tests := []struct {
		name       string
		env        string
		cfg        Config
		wantFormat string
		wantLevel  string
	}{
		{name: "development defaults", env: "dev", wantFormat: "console", wantLevel: "info"},
		{name: "production defaults", env: "production", wantFormat: "json", wantLevel: "info"},
		{name: "overrides win", env: "production", cfg: Config{Level: "debug", Format: "console"}, wantFormat: "console", wantLevel: "debug"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ForEnvironment(tt.env, tt.cfg)
			assert.Equal(t, tt.wantFormat, got.Format)
			assert.Equal(t, tt.wantLevel, got.Level)
			assert.Equal(t, "stdout", got.Output)
			assert.NotEmpty(t, got.TimeFormat)
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("nil config uses defaults", func(t *testing.T) {
		l, err := New(nil)
		require.NoError(t, err)
		assert.NotNil(t, l)
	})

	t.Run("unopenable file fails", func(t *testing.T) {
		_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "dir", "app.log")})
		assert.Error(t, err)
	})

	t.Run("json file output carries service fields", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		l, err := New(&Config{
			Level:   "debug",
			Format:  "json",
			Output:  path,
			Service: "carrier-transport",
			Version: "1.2.3",
		})
		require.NoError(t, err)

		l.Debug("label request done", zap.Int64("event_id", 1001))
		require.NoError(t, l.Sync())

		data, err := os.ReadFile(path)
		require.NoError(t, err)

		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
		assert.Equal(t, "label request done", entry["msg"])
		assert.Equal(t, "debug", entry["level"])
		assert.Equal(t, "carrier-transport", entry["service"])
		assert.Equal(t, "1.2.3", entry["version"])
		assert.Equal(t, float64(1001), entry["event_id"])
	})

	t.Run("level filters entries", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "app.log")
		l, err := New(&Config{Level: "warn", Format: "json", Output: path})
		require.NoError(t, err)

		l.Info("dropped")
		l.Warn("kept")
		require.NoError(t, l.Sync())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(data), "dropped")
		assert.Contains(t, string(data), "kept")
	})
}

func TestNewForEnvironment(t *testing.T) {
	for _, env := range []string{"dev", "production"} {
		t.Run(env, func(t *testing.T) {
			l, err := NewForEnvironment(env)
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"DEBUG", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"fatal", zapcore.FatalLevel},
		{"bogus", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLevel(tt.input))
		})
	}
}

func TestCreateWriter(t *testing.T) {
	for _, output := range []string{"", "stdout", "STDERR"} {
		w, err := createWriter(output)
		require.NoError(t, err)
		assert.NotNil(t, w)
	}
}
