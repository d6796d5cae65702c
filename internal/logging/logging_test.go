package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_EmptyPathIsNop(t *testing.T) {
	logger, err := New(Options{})
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.ErrorLevel))
}

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "sweep.log")

	logger, err := New(Options{Path: path, Level: "warn"})
	require.NoError(t, err)
	logger.Info("dropped")
	logger.Warn("paging halted", zap.Int("offset", 101))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "paging halted", entry["msg"])
	assert.Equal(t, float64(101), entry["offset"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_UnknownLevelDefaultsToInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sweep.log")
	logger, err := New(Options{Path: path, Level: "chatty"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}
