package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"julianmorley.ca/con-plar/petmart/internal/config"
)

func TestNew_Console(t *testing.T) {
	logger, err := New(config.LoggerConfig{Mode: config.EnvProduction}, false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))

	verbose, err := New(config.LoggerConfig{Mode: config.EnvProduction}, true)
	require.NoError(t, err)
	assert.True(t, verbose.Core().Enabled(zap.DebugLevel))
}

func TestNew_RotatingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "petmart.log")
	logger, err := New(config.LoggerConfig{Mode: config.EnvDevelopment, Filename: path}, false)
	require.NoError(t, err)

	logger.Info("order finalized", zap.Int("order_num", 7))
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"order_num":7`)
}
