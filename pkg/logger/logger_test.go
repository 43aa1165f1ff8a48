package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/breutil/go-common/pkg/settings"
)

func TestNewLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "breutil.log")

	log, err := NewLogger(settings.Logger{
		LogLevel:    "debug",
		FileLogName: path,
		MaxSize:     1,
	})
	require.NoError(t, err)

	log.Info("hello", zap.String("k", "v"))
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello")
	assert.Contains(t, string(data), `"k":"v"`)
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "breutil.log")

	log, err := NewLogger(settings.Logger{
		LogLevel:    "error",
		FileLogName: path,
	})
	require.NoError(t, err)

	log.Info("suppressed")
	log.Error("surfaced")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "suppressed")
	assert.Contains(t, string(data), "surfaced")
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	_, err := NewLogger(settings.Logger{LogLevel: "loud"})
	assert.Error(t, err)
}

func TestNewLogger_EmptyLevelDefaultsToInfo(t *testing.T) {
	log, err := NewLogger(settings.Logger{})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}
