package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestReplaceRoutesHelpers(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	Replace(zap.New(core))
	t.Cleanup(func() { Replace(zap.NewNop()) })

	Info("track created", String("uid", "t1"))
	Warn("orphaned blob", String("key", "t1/a.mp3"), Int("size", 2))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "track created", entries[0].Message)
	assert.Equal(t, "t1", entries[0].ContextMap()["uid"])
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
}

func TestNewWritesRotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "catalog.log")
	l, err := New(Config{Level: "debug", OutputPath: path, MaxSize: 1})
	require.NoError(t, err)

	l.Info("hello")
	_ = l.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestNewFallsBackToInfo(t *testing.T) {
	l, err := New(Config{Level: "loud"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}
